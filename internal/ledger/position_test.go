package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionFullCloseLong(t *testing.T) {
	p := newPosition("PDI", 500, 20.00, "2023-01-03")

	require.NoError(t, p.Close(18.00, "2023-01-05"))

	assert.False(t, p.IsOpen())
	assert.Equal(t, 0, p.Shares())
	assert.InDelta(t, -1000.00, p.Profit(), 1e-9)
	assert.Equal(t, "2023-01-05", p.CloseDate())
	assert.InDelta(t, 18.00, p.ClosePrice(), 1e-9)
	assert.Equal(t, 500, p.ClosedShares())
}

func TestPositionClosedSharesAccumulates(t *testing.T) {
	p := newPosition("PDI", -800, 20.00, "2023-01-03")

	require.NoError(t, p.Reduce(300, 19.00, "2023-01-04"))
	assert.Equal(t, -300, p.ClosedShares())

	require.NoError(t, p.Close(18.50, "2023-01-05"))
	assert.Equal(t, -800, p.ClosedShares())
}

func TestPositionShortProfitSign(t *testing.T) {
	p := newPosition("PDI", -300, 50.00, "2023-01-03")

	require.NoError(t, p.Close(45.00, "2023-01-05"))

	assert.InDelta(t, 1500.00, p.Profit(), 1e-9)
}

func TestPositionDoubleCloseFails(t *testing.T) {
	p := newPosition("PDI", 100, 10.00, "2023-01-03")
	require.NoError(t, p.Close(11.00, "2023-01-04"))

	err := p.Close(12.00, "2023-01-05")
	assert.ErrorIs(t, err, ErrPositionClosed)
}

func TestPositionReduceOnClosedFails(t *testing.T) {
	p := newPosition("PDI", 100, 10.00, "2023-01-03")
	require.NoError(t, p.Close(11.00, "2023-01-04"))

	err := p.Reduce(50, 12.00, "2023-01-05")
	assert.ErrorIs(t, err, ErrPositionClosed)
}

func TestPositionReducePartial(t *testing.T) {
	p := newPosition("PDI", 1000, 10.00, "2023-01-03")

	require.NoError(t, p.Reduce(400, 12.00, "2023-01-04"))

	assert.True(t, p.IsOpen())
	assert.Equal(t, 600, p.Shares())
	assert.InDelta(t, 800.00, p.PartialProfit(), 1e-9)
	assert.InDelta(t, 800.00, p.Profit(), 1e-9)
}

func TestPositionReduceToZeroCloses(t *testing.T) {
	p := newPosition("PDI", 200, 10.00, "2023-01-03")

	require.NoError(t, p.Reduce(200, 11.00, "2023-01-04"))

	assert.False(t, p.IsOpen())
	assert.Equal(t, 0, p.Shares())
	assert.Equal(t, "2023-01-04", p.CloseDate())
	assert.InDelta(t, 200.00, p.Profit(), 1e-9)
}

func TestPositionReduceCapsAtRemaining(t *testing.T) {
	p := newPosition("PDI", 100, 10.00, "2023-01-03")

	// Over-reduction consumes the lot, never flips the sign.
	require.NoError(t, p.Reduce(250, 11.00, "2023-01-04"))

	assert.Equal(t, 0, p.Shares())
	assert.False(t, p.IsOpen())
	assert.InDelta(t, 100.00, p.Profit(), 1e-9)
}

func TestPositionReduceShort(t *testing.T) {
	p := newPosition("PDI", -1000, 20.00, "2023-01-03")

	require.NoError(t, p.Reduce(300, 18.00, "2023-01-04"))

	assert.Equal(t, -700, p.Shares())
	assert.InDelta(t, 600.00, p.PartialProfit(), 1e-9)
}
