package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTopicRoot_Precedence(t *testing.T) {
	t.Setenv("TOPIC_ROOT", "from-topic-root")
	t.Setenv("USERNAME", "from-username")
	t.Setenv("USER", "from-user")

	assert.Equal(t, "explicit", ResolveTopicRoot("explicit"))
	assert.Equal(t, "from-topic-root", ResolveTopicRoot(""))

	t.Setenv("TOPIC_ROOT", "")
	assert.Equal(t, "from-username", ResolveTopicRoot(""))

	t.Setenv("USERNAME", "")
	assert.Equal(t, "from-user", ResolveTopicRoot(""))

	t.Setenv("USER", "")
	assert.Equal(t, DefaultTopicRoot, ResolveTopicRoot(""))
}

func TestTopics_Names(t *testing.T) {
	topics := NewTopics("factory")

	assert.Equal(t, "factory", topics.Root())
	assert.Equal(t, "factory/command/+", topics.CommandSubscription())
	assert.Equal(t, "factory/command/line1", topics.Command("line1"))
	assert.Equal(t, "factory/response/line1", topics.Response("line1"))
	assert.Equal(t, "factory/line1/station/StationA/status", topics.Station("line1", "StationA"))
	assert.Equal(t, "factory/line1/conveyor/Conveyor_AB/status", topics.Conveyor("line1", "Conveyor_AB"))
	assert.Equal(t, "factory/line1/agv/AGV_1/status", topics.AGV("line1", "AGV_1"))
	assert.Equal(t, "factory/line1/alerts", topics.Alerts("line1"))
	assert.Equal(t, "factory/warehouse/Warehouse/status", topics.Warehouse("Warehouse"))
	assert.Equal(t, "factory/orders/status", topics.Orders())
	assert.Equal(t, "factory/kpi/status", topics.KPI())
	assert.Equal(t, "factory/result/status", topics.Result())
}

func TestTopics_DeviceStatusRouting(t *testing.T) {
	topics := NewTopics("factory")

	station, err := NewDevice(DeviceConfig{
		ID: "StationA", Kind: DeviceKindStation, LineID: "line1", Point: "P1", Capacity: 1,
		ProcessTime: &DistSpec{Type: "constant", Params: map[string]float64{"value": 1}},
	})
	require.NoError(t, err)
	conveyor, err := NewDevice(DeviceConfig{
		ID: "Conveyor_AB", Kind: DeviceKindConveyor, LineID: "line1", Point: "P12", Capacity: 1,
		TransitSeconds: 1,
	})
	require.NoError(t, err)
	intake, err := NewDevice(DeviceConfig{
		ID: "RawMaterial", Kind: DeviceKindRawMaterial, Point: "P_RAW", Capacity: 10,
	})
	require.NoError(t, err)
	warehouse, err := NewDevice(DeviceConfig{
		ID: "Warehouse", Kind: DeviceKindWarehouse, Point: "P_WH", Capacity: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, "factory/line1/station/StationA/status", topics.DeviceStatus("line1", station))
	assert.Equal(t, "factory/line1/conveyor/Conveyor_AB/status", topics.DeviceStatus("line1", conveyor))
	assert.Equal(t, "factory/warehouse/RawMaterial/status", topics.DeviceStatus("line1", intake))
	assert.Equal(t, "factory/warehouse/Warehouse/status", topics.DeviceStatus("line1", warehouse))
}

func TestTopics_ParseCommandLine(t *testing.T) {
	topics := NewTopics("factory")

	line, ok := topics.ParseCommandLine("factory/command/line1")
	require.True(t, ok)
	assert.Equal(t, "line1", line)

	_, ok = topics.ParseCommandLine("other/command/line1")
	assert.False(t, ok, "foreign namespace roots do not match")

	_, ok = topics.ParseCommandLine("factory/command/line1/extra")
	assert.False(t, ok, "nested segments are not command topics")

	_, ok = topics.ParseCommandLine("factory/command/")
	assert.False(t, ok, "an empty line segment is not a command topic")

	_, ok = topics.ParseCommandLine("factory/response/line1")
	assert.False(t, ok)
}
