package sim_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/internal/testutil"
	"github.com/factory-sim/factory-sim/sim/layout"
	"github.com/factory-sim/factory-sim/sim/transport"
)

// TestGoldenScenarios replays the scripted runs in
// testdata/goldendataset.json and checks their exact outcomes: response
// streams, engine counters, and battery levels. The scenarios use
// constant process times and disabled faults so every expectation is a
// closed-form consequence of the layout.
func TestGoldenScenarios(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Scenarios)

	for _, sc := range dataset.Scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			runGoldenScenario(t, sc)
		})
	}
}

func runGoldenScenario(t *testing.T, sc testutil.GoldenScenario) {
	spec, err := layout.Load(testutil.LayoutPath(t, sc.Layout))
	require.NoError(t, err)
	spec.Seed = sc.Seed

	cfg, err := spec.Build()
	require.NoError(t, err)

	bus := transport.NewBus()
	f, err := sim.NewFactory(cfg, bus, nil)
	require.NoError(t, err)

	intake, ok := f.GlobalDevice(sim.DeviceRawMaterial)
	require.True(t, ok)
	for i := 0; i < sc.Stock; i++ {
		p, err := sim.NewProduct(fmt.Sprintf("prod_%d", i+1), sim.ProductTypeP1, "order_x", "", 0)
		require.NoError(t, err)
		require.NoError(t, intake.Accept(p))
	}

	for i, gc := range sc.Commands {
		f.RunUntil(sim.TicksFromSeconds(gc.AtS))
		err := f.Submit(gc.Line, sim.Command{
			CommandID: fmt.Sprintf("c%d", i+1),
			Action:    gc.Action,
			Target:    gc.Target,
			Params: sim.CommandParams{
				TargetPoint: gc.TargetPoint,
				ProductID:   gc.ProductID,
				TargetLevel: gc.TargetLevel,
			},
		})
		require.NoError(t, err, "command %d", i+1)
	}
	f.RunUntil(sim.TicksFromSeconds(sc.HorizonS))

	want := sc.Expected
	assert.Equal(t, sim.TicksFromSeconds(want.ClockS), f.Clock(), "clock")
	m := f.Metrics()
	assert.Equal(t, want.ProductsCreated, m.ProductsCreated, "products created")
	assert.Equal(t, want.ProductsDelivered, m.ProductsDelivered, "products delivered")
	assert.Equal(t, want.ProductsScrapped, m.ProductsScrapped, "products scrapped")
	assert.Equal(t, want.OrdersCreated, m.OrdersCreated, "orders created")
	assert.Equal(t, want.CommandsAccepted, m.CommandsAccepted, "commands accepted")
	assert.Equal(t, want.CommandsRejected, m.CommandsRejected, "commands rejected")

	if len(want.Responses) > 0 {
		topic := f.Topics().Response(sc.Commands[0].Line)
		var got []testutil.GoldenResponse
		for _, msg := range bus.MessagesOn(topic) {
			resp, ok := msg.Payload.(sim.CommandResponse)
			require.True(t, ok, "payload type on %s", topic)
			got = append(got, testutil.GoldenResponse{AtS: resp.Timestamp, Text: resp.Response})
		}
		assert.Equal(t, want.Responses, got, "response stream")
	}

	for agvID, wantBattery := range want.Battery {
		found := false
		for _, line := range f.Lines() {
			if agv, ok := line.AGV(agvID); ok {
				testutil.AssertFloat64Equal(t, agvID+" battery", wantBattery, agv.Battery(), 1e-9)
				found = true
			}
		}
		require.True(t, found, "agv %s not in any line", agvID)
	}
}
