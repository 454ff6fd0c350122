package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFaultSystem_DefaultsAndValidation(t *testing.T) {
	fs, err := NewFaultSystem("line1", FaultConfig{})
	require.NoError(t, err)
	assert.True(t, fs.Enabled())

	rng := NewPartitionedRNG(NewSimulationKey(1)).ForSubsystem(SubsystemFaults("line1"))
	for i := 0; i < 20; i++ {
		assert.Positive(t, fs.NextInterval(rng))
	}

	disabled, err := NewFaultSystem("line1", FaultConfig{Disabled: true})
	require.NoError(t, err)
	assert.False(t, disabled.Enabled())

	_, err = NewFaultSystem("line1", FaultConfig{MeanIntervalSeconds: -1})
	assert.ErrorContains(t, err, "mean_interval_s must be positive")

	_, err = NewFaultSystem("line1", FaultConfig{MaxDurationSeconds: 5})
	assert.ErrorContains(t, err, "fault duration range [0,5] invalid")

	_, err = NewFaultSystem("line1", FaultConfig{MinDurationSeconds: 30, MaxDurationSeconds: 10})
	assert.ErrorContains(t, err, "fault duration range [30,10] invalid")
}

func TestFaultSystem_PickTargetSkipsFaulted(t *testing.T) {
	l := newTestLine(t)
	fs := l.Faults()
	rng := NewPartitionedRNG(NewSimulationKey(2)).ForSubsystem(SubsystemFaults("line1"))

	all := map[string]bool{"StationA": true, "Conveyor_AB": true, "AGV_1": true, "AGV_2": true}
	for i := 0; i < 40; i++ {
		id, _, ok := fs.PickTarget(l, rng)
		require.True(t, ok)
		assert.Contains(t, all, id)
	}

	// Faulted candidates drop out of the draw.
	for _, d := range l.Devices() {
		d.SetFault(true)
	}
	agv1, _ := l.AGV("AGV_1")
	agv1.SetFault(true)
	for i := 0; i < 20; i++ {
		id, isAGV, ok := fs.PickTarget(l, rng)
		require.True(t, ok)
		assert.Equal(t, "AGV_2", id)
		assert.True(t, isAGV)
	}

	// With everything down there is nothing left to break.
	agv2, _ := l.AGV("AGV_2")
	agv2.SetFault(true)
	_, _, ok := fs.PickTarget(l, rng)
	assert.False(t, ok)
}

func TestFaultSystem_BeginAndEndTrackActiveFaults(t *testing.T) {
	fs, err := NewFaultSystem("line1", FaultConfig{
		MinDurationSeconds: 10,
		MaxDurationSeconds: 30,
	})
	require.NoError(t, err)
	rng := NewPartitionedRNG(NewSimulationKey(3)).ForSubsystem(SubsystemFaults("line1"))

	fe := fs.Begin("StationA", false, TicksFromSeconds(50), rng)
	require.NotNil(t, fe)
	assert.Equal(t, "line1", fe.LineID)
	assert.Equal(t, "StationA", fe.TargetID)
	assert.False(t, fe.IsAGV)
	assert.Equal(t, TicksFromSeconds(50), fe.StartAt)
	assert.GreaterOrEqual(t, fe.Duration, TicksFromSeconds(10))
	assert.LessOrEqual(t, fe.Duration, TicksFromSeconds(30))

	assert.Equal(t, 1, fs.ActiveFaultCount())
	assert.Equal(t, 1, fs.InjectedCount())

	second := fs.Begin("AGV_1", true, TicksFromSeconds(55), rng)
	assert.Equal(t, 2, fs.ActiveFaultCount())
	assert.Equal(t, 2, fs.InjectedCount())

	fs.End(fe)
	assert.Equal(t, 1, fs.ActiveFaultCount())
	assert.Equal(t, 2, fs.InjectedCount(), "ending a fault does not undo the count")
	fs.End(second)
	assert.Equal(t, 0, fs.ActiveFaultCount())
}
