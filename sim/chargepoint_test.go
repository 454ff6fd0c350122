package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChargeTestAGV(t *testing.T, id string) *AGV {
	t.Helper()
	a, err := NewAGV(AGVConfig{ID: id, LineID: "line1", StartPoint: "P0"})
	require.NoError(t, err)
	return a
}

func TestNewChargePoint_RejectsZeroCapacity(t *testing.T) {
	_, err := NewChargePoint("line1", "P0", 0)
	assert.ErrorContains(t, err, "capacity must be >= 1")
}

func TestChargePoint_AcquireFillsSlotsThenQueues(t *testing.T) {
	cp, err := NewChargePoint("line1", "P0", 2)
	require.NoError(t, err)
	a1 := newChargeTestAGV(t, "AGV_1")
	a2 := newChargeTestAGV(t, "AGV_2")
	a3 := newChargeTestAGV(t, "AGV_3")

	assert.True(t, cp.Acquire(a1))
	assert.True(t, cp.Acquire(a2))
	assert.False(t, cp.Acquire(a3), "third arrival waits")

	assert.Equal(t, 2, cp.ActiveCount())
	assert.Equal(t, 1, cp.WaitingCount())
	assert.Equal(t, 2, cp.Capacity())
}

func TestChargePoint_ReleasePromotesOldestWaiter(t *testing.T) {
	// GIVEN a single-slot charger with two queued AGVs
	cp, err := NewChargePoint("line1", "P0", 1)
	require.NoError(t, err)
	a1 := newChargeTestAGV(t, "AGV_1")
	a2 := newChargeTestAGV(t, "AGV_2")
	a3 := newChargeTestAGV(t, "AGV_3")
	require.True(t, cp.Acquire(a1))
	require.False(t, cp.Acquire(a2))
	require.False(t, cp.Acquire(a3))

	// WHEN the slot holder finishes
	promoted := cp.Release(a1)

	// THEN the oldest waiter takes the slot
	assert.Same(t, a2, promoted)
	assert.Equal(t, 1, cp.ActiveCount())
	assert.Equal(t, 1, cp.WaitingCount())

	assert.Same(t, a3, cp.Release(a2))
	assert.Nil(t, cp.Release(a3), "no waiter left to promote")
	assert.Equal(t, 0, cp.ActiveCount())
	assert.Equal(t, 0, cp.WaitingCount())
}

func TestChargePoint_ReleaseUnknownAGVIsHarmless(t *testing.T) {
	cp, err := NewChargePoint("line1", "P0", 1)
	require.NoError(t, err)
	a1 := newChargeTestAGV(t, "AGV_1")
	stranger := newChargeTestAGV(t, "AGV_9")
	require.True(t, cp.Acquire(a1))

	assert.Nil(t, cp.Release(stranger))
	assert.Equal(t, 1, cp.ActiveCount(), "holder keeps its slot")
}
