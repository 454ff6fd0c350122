package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T) *PathGraph {
	t.Helper()
	g := NewPathGraph()
	for _, p := range []PointID{"P0", "P1", "P2"} {
		g.AddPoint(p)
	}
	require.NoError(t, g.AddEdge("P0", "P1", 5))
	require.NoError(t, g.AddEdge("P1", "P2", 5))
	return g
}

func newTestLineConfig(t *testing.T) LineConfig {
	t.Helper()
	return LineConfig{
		ID: "line1",
		Devices: []DeviceConfig{
			{ID: DeviceStationA, Kind: DeviceKindStation, Point: "P1", Capacity: 2,
				ProcessTime: &DistSpec{Type: "constant", Params: map[string]float64{"value": 2}}},
			{ID: DeviceConveyorAB, Kind: DeviceKindConveyor, Point: "P2", Capacity: 3,
				TransitSeconds: 1},
		},
		AGVs: []AGVConfig{
			{ID: "AGV_1", StartPoint: "P1"},
			{ID: "AGV_2", StartPoint: "P0"},
		},
		Graph:        newTestGraph(t),
		PointDevices: map[PointID]DeviceID{"P1": DeviceStationA},
		Faults:       FaultConfig{Disabled: true},
	}
}

func newTestLine(t *testing.T) *Line {
	t.Helper()
	l, err := NewLine(newTestLineConfig(t))
	require.NoError(t, err)
	return l
}

func TestNewLine_Validation(t *testing.T) {
	t.Run("empty id", func(t *testing.T) {
		cfg := newTestLineConfig(t)
		cfg.ID = ""
		_, err := NewLine(cfg)
		assert.ErrorContains(t, err, "line id must not be empty")
	})

	t.Run("missing graph", func(t *testing.T) {
		cfg := newTestLineConfig(t)
		cfg.Graph = nil
		_, err := NewLine(cfg)
		assert.ErrorContains(t, err, "path graph is required")
	})

	t.Run("duplicate device", func(t *testing.T) {
		cfg := newTestLineConfig(t)
		cfg.Devices = append(cfg.Devices, cfg.Devices[0])
		_, err := NewLine(cfg)
		assert.ErrorContains(t, err, `duplicate device id "StationA"`)
	})

	t.Run("device at unknown point", func(t *testing.T) {
		cfg := newTestLineConfig(t)
		cfg.Devices[0].Point = "P99"
		_, err := NewLine(cfg)
		assert.ErrorContains(t, err, `device StationA sits at unknown point "P99"`)
	})

	t.Run("duplicate agv", func(t *testing.T) {
		cfg := newTestLineConfig(t)
		cfg.AGVs = append(cfg.AGVs, cfg.AGVs[0])
		_, err := NewLine(cfg)
		assert.ErrorContains(t, err, `duplicate agv id "AGV_1"`)
	})

	t.Run("agv at unknown point", func(t *testing.T) {
		cfg := newTestLineConfig(t)
		cfg.AGVs[0].StartPoint = "P99"
		_, err := NewLine(cfg)
		assert.ErrorContains(t, err, `agv AGV_1 starts at unknown point "P99"`)
	})

	t.Run("mapping references unknown point", func(t *testing.T) {
		cfg := newTestLineConfig(t)
		cfg.PointDevices["P99"] = DeviceStationA
		_, err := NewLine(cfg)
		assert.ErrorContains(t, err, `point mapping references unknown point "P99"`)
	})

	t.Run("charge point outside graph", func(t *testing.T) {
		cfg := newTestLineConfig(t)
		cfg.ChargePointID = "P99"
		_, err := NewLine(cfg)
		assert.ErrorContains(t, err, `charge point "P99" not in path graph`)
	})

	t.Run("invalid fault config", func(t *testing.T) {
		cfg := newTestLineConfig(t)
		cfg.Faults = FaultConfig{MinDurationSeconds: 30, MaxDurationSeconds: 10}
		_, err := NewLine(cfg)
		assert.ErrorContains(t, err, "fault duration range")
	})
}

func TestNewLine_Defaults(t *testing.T) {
	l := newTestLine(t)

	// Charging defaults to a single slot at P0.
	assert.Equal(t, PointID("P0"), l.ChargePoint().Point)
	assert.Equal(t, 1, l.ChargePoint().Capacity())

	assert.False(t, l.Faults().Enabled(), "test layout disables faults")

	enabled, err := NewLine(LineConfig{
		ID:      "line2",
		Devices: newTestLineConfig(t).Devices,
		Graph:   newTestGraph(t),
	})
	require.NoError(t, err)
	assert.True(t, enabled.Faults().Enabled(), "faults inject unless disabled")
}

func TestLine_Accessors(t *testing.T) {
	l := newTestLine(t)

	devices := l.Devices()
	require.Len(t, devices, 2)
	assert.Equal(t, DeviceStationA, devices[0].ID, "declaration order is stable")
	assert.Equal(t, DeviceConveyorAB, devices[1].ID)

	d, ok := l.Device(DeviceStationA)
	require.True(t, ok)
	assert.Same(t, devices[0], d)
	_, ok = l.Device("Nope")
	assert.False(t, ok)

	agvs := l.AGVs()
	require.Len(t, agvs, 2)
	assert.Equal(t, "AGV_1", agvs[0].ID)
	a, ok := l.AGV("AGV_2")
	require.True(t, ok)
	assert.Same(t, agvs[1], a)

	id, ok := l.DeviceAtPoint("P1")
	require.True(t, ok)
	assert.Equal(t, DeviceStationA, id)
	_, ok = l.DeviceAtPoint("P0")
	assert.False(t, ok)

	dist, err := l.Distance("P0", "P2")
	require.NoError(t, err)
	assert.Equal(t, 10.0, dist)
}
