package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleConfig = `symbol = "PDI"
# tuning values
SCARLET_SL_LOWERLIMIT = -0.02
scarlet_sl_upperlimit = -0.005
numShares = 1000
`

func TestGetIsCaseInsensitive(t *testing.T) {
	s, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "PDI", s.Get("SYMBOL"))
	assert.Equal(t, "PDI", s.Get("symbol"))
	assert.Equal(t, "-0.005", s.Get("SCARLET_SL_UPPERLIMIT"))
}

func TestQuotesStripped(t *testing.T) {
	s, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "PDI", s.Get("symbol"))
}

func TestMissingKeyIsEmpty(t *testing.T) {
	s, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "", s.Get("NOPE"))
}

func TestCommentLinesSkipped(t *testing.T) {
	s, err := Load(writeConfig(t, "# symbol = \"DIA\"\nsymbol = \"PDI\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "PDI", s.Get("symbol"))
}

func TestRequireFloat(t *testing.T) {
	s, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	v, err := s.RequireFloat("SCARLET_SL_LOWERLIMIT")
	require.NoError(t, err)
	assert.InDelta(t, -0.02, v, 1e-9)

	_, err = s.RequireFloat("NOPE")
	assert.Error(t, err)

	_, err = s.RequireFloat("symbol")
	assert.Error(t, err)
}

func TestRequireInt(t *testing.T) {
	s, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	n, err := s.RequireInt("NUMSHARES")
	require.NoError(t, err)
	assert.Equal(t, 1000, n)

	_, err = s.RequireInt("symbol")
	assert.Error(t, err)
}

func TestNewFromMap(t *testing.T) {
	s := NewFromMap(map[string]string{"Symbol": "PDI"})
	assert.Equal(t, "PDI", s.Get("SYMBOL"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
