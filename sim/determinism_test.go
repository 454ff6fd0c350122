package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factory-sim/factory-sim/sim/transport"
)

// runSeededFactory drives a 120s run with orders arriving every 10s,
// fault injection enabled, and a pair of AGV commands issued mid-run,
// capturing the complete publish log.
func runSeededFactory(t *testing.T, seed int64) (*Factory, *transport.Bus) {
	t.Helper()
	cfg := newTestLayout(t)
	cfg.Seed = seed
	cfg.Orders = OrderGeneratorConfig{IntervalSeconds: 10, MaxQuantity: 3}
	cfg.Lines[0].Faults = FaultConfig{
		MeanIntervalSeconds: 15,
		MinDurationSeconds:  2,
		MaxDurationSeconds:  4,
	}
	bus := transport.NewBus()
	f, err := NewFactory(cfg, bus, nil)
	require.NoError(t, err)

	f.RunUntil(TicksFromSeconds(15))
	require.NoError(t, f.Submit("line1", Command{CommandID: "c1", Action: ActionLoad, Target: "AGV_1"}))
	require.NoError(t, f.Submit("line1", Command{CommandID: "c2", Action: ActionCharge, Target: "AGV_2"}))
	f.RunUntil(TicksFromSeconds(120))
	return f, bus
}

func TestFactory_SameSeedReproducesRunExactly(t *testing.T) {
	f1, b1 := runSeededFactory(t, 42)
	f2, b2 := runSeededFactory(t, 42)

	// Sanity: the run exercised orders, faults, and the event loop.
	require.Greater(t, f1.Metrics().OrdersCreated, 0)
	require.Greater(t, f1.Metrics().EventsExecuted, int64(120))

	assert.Equal(t, f1.Clock(), f2.Clock())
	assert.Equal(t, *f1.Metrics(), *f2.Metrics())
	assert.Equal(t, f1.Snapshot(), f2.Snapshot())

	// Byte-for-byte identical pub/sub history, in publish order.
	m1, m2 := b1.Messages(), b2.Messages()
	require.Equal(t, len(m1), len(m2))
	assert.Equal(t, m1, m2)
}

func TestFactory_DifferentSeedsDiverge(t *testing.T) {
	_, b1 := runSeededFactory(t, 1)
	_, b2 := runSeededFactory(t, 2)

	// Identity draws key the generated IDs, so any seed change shows up
	// in the published payloads.
	assert.NotEqual(t, b1.Messages(), b2.Messages())
}
