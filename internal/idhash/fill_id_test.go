package idhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFillID(t *testing.T) {
	id := ComputeFillID("PDI", "2023-11-24", "10:15:00", 18.45, 1000)

	assert.Len(t, id, 64)
	// Deterministic across calls.
	assert.Equal(t, id, ComputeFillID("PDI", "2023-11-24", "10:15:00", 18.45, 1000))
}

func TestComputeFillIDDistinguishesFields(t *testing.T) {
	base := ComputeFillID("PDI", "2023-11-24", "10:15:00", 18.45, 1000)

	assert.NotEqual(t, base, ComputeFillID("DIA", "2023-11-24", "10:15:00", 18.45, 1000))
	assert.NotEqual(t, base, ComputeFillID("PDI", "2023-11-25", "10:15:00", 18.45, 1000))
	assert.NotEqual(t, base, ComputeFillID("PDI", "2023-11-24", "10:15:01", 18.45, 1000))
	assert.NotEqual(t, base, ComputeFillID("PDI", "2023-11-24", "10:15:00", 18.46, 1000))
	assert.NotEqual(t, base, ComputeFillID("PDI", "2023-11-24", "10:15:00", 18.45, -1000))
}

func TestComputeFillIDShortSharesSigned(t *testing.T) {
	long := ComputeFillID("PDI", "2023-11-24", "10:15:00", 18.45, 1000)
	short := ComputeFillID("PDI", "2023-11-24", "10:15:00", 18.45, -1000)
	assert.NotEqual(t, long, short)
}
