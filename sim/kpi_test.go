package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKPI(t *testing.T) *KPICalculator {
	t.Helper()
	k, err := NewKPICalculator(KPIConfig{})
	require.NoError(t, err)
	return k
}

func TestKPINoDataDefaults(t *testing.T) {
	// GIVEN a fresh calculator with no recorded activity
	k := newTestKPI(t)

	// WHEN computing a snapshot at t=0
	snap := k.Compute(kpiInputs{})

	// THEN ratio components default to 100 and utilizations to 0
	assert.Equal(t, 100.0, snap.EfficiencyComponents["order_completion"])
	assert.Equal(t, 100.0, snap.EfficiencyComponents["production_cycle"])
	assert.Equal(t, 0.0, snap.EfficiencyComponents["device_utilization"])
	assert.Equal(t, 100.0, snap.QualityCostComponent["first_pass_rate"])
	assert.Equal(t, 100.0, snap.QualityCostComponent["cost_efficiency"])
	assert.Equal(t, 100.0, snap.AGVComponents["charge_strategy"])
	assert.Equal(t, 100.0, snap.AGVComponents["energy_efficiency"])
	assert.Equal(t, 0.0, snap.AGVComponents["utilization"])
}

func TestKPIOrderCompletion(t *testing.T) {
	k := newTestKPI(t)

	snap := k.Compute(kpiInputs{ordersCreated: 4, ordersCompleted: 3})

	assert.Equal(t, 75.0, snap.EfficiencyComponents["order_completion"])
}

func TestKPIProductionCycleRatio(t *testing.T) {
	// GIVEN P1 has a 60s theoretical cycle
	k := newTestKPI(t)
	k.SetTheoreticalCycle(map[ProductType]int64{
		ProductTypeP1: TicksFromSeconds(60),
	})

	// WHEN two deliveries take 80s and 100s of wall clock
	k.RecordDelivery(ProductTypeP1, TicksFromSeconds(80))
	k.RecordDelivery(ProductTypeP1, TicksFromSeconds(100))
	snap := k.Compute(kpiInputs{})

	// THEN the ratio is 120/180
	assert.InDelta(t, 66.67, snap.EfficiencyComponents["production_cycle"], 0.01)
}

func TestKPIProductionCycleClampedAt100(t *testing.T) {
	// Deliveries faster than the baseline must not exceed 100.
	k := newTestKPI(t)
	k.SetTheoreticalCycle(map[ProductType]int64{
		ProductTypeP1: TicksFromSeconds(60),
	})

	k.RecordDelivery(ProductTypeP1, TicksFromSeconds(30))
	snap := k.Compute(kpiInputs{})

	assert.Equal(t, 100.0, snap.EfficiencyComponents["production_cycle"])
}

func TestKPIDeviceUtilization(t *testing.T) {
	k := newTestKPI(t)

	// Two processing devices, one busy for half the horizon.
	snap := k.Compute(kpiInputs{
		now:                 TicksFromSeconds(100),
		processingBusyTicks: TicksFromSeconds(100),
		processingDevices:   2,
	})

	assert.Equal(t, 50.0, snap.EfficiencyComponents["device_utilization"])
}

func TestKPIFirstPassRate(t *testing.T) {
	k := newTestKPI(t)
	for i := 0; i < 9; i++ {
		k.RecordQCPass()
	}
	k.RecordQCScrap()

	snap := k.Compute(kpiInputs{})

	assert.Equal(t, 90.0, snap.QualityCostComponent["first_pass_rate"])
}

func TestKPIChargeStrategyBand(t *testing.T) {
	k := newTestKPI(t)

	// Band is [20, 40): 20 and 39.9 are in, 40 and 19.9 are out.
	k.RecordChargeStart(20.0)
	k.RecordChargeStart(39.9)
	k.RecordChargeStart(40.0)
	k.RecordChargeStart(19.9)
	snap := k.Compute(kpiInputs{})

	assert.Equal(t, 50.0, snap.AGVComponents["charge_strategy"])
}

func TestKPIEnergyEfficiency(t *testing.T) {
	k := newTestKPI(t)

	snap := k.Compute(kpiInputs{
		agvBatterySpent: 10.0,
		agvBatteryCargo: 4.0,
	})

	assert.Equal(t, 40.0, snap.AGVComponents["energy_efficiency"])
}

func TestKPIAGVUtilizationExcludesCharging(t *testing.T) {
	// Productive ticks are fed directly; charge time never enters them.
	k := newTestKPI(t)

	snap := k.Compute(kpiInputs{
		now:                TicksFromSeconds(200),
		agvCount:           2,
		agvProductiveTicks: TicksFromSeconds(100),
	})

	assert.Equal(t, 25.0, snap.AGVComponents["utilization"])
}

func TestKPIWeightedTotal(t *testing.T) {
	// GIVEN counters that pin every component to a known value
	k := newTestKPI(t)
	k.SetTheoreticalCycle(map[ProductType]int64{
		ProductTypeP1: TicksFromSeconds(50),
	})
	k.RecordDelivery(ProductTypeP1, TicksFromSeconds(100)) // cycle 50
	k.RecordQCPass()
	k.RecordQCScrap() // first pass 50
	k.RecordChargeStart(30.0)
	k.RecordChargeStart(50.0) // strategy 50

	snap := k.Compute(kpiInputs{
		now:                 TicksFromSeconds(100),
		ordersCreated:       2,
		ordersCompleted:     1, // completion 50
		processingBusyTicks: TicksFromSeconds(50),
		processingDevices:   1, // device util 50
		agvCount:            1,
		agvProductiveTicks:  TicksFromSeconds(50), // agv util 50
		agvBatterySpent:     10.0,
		agvBatteryCargo:     5.0, // energy 50
	})

	// THEN group scores are the unweighted means of their components
	assert.Equal(t, 50.0, snap.EfficiencyScore)
	assert.InDelta(t, 75.0, snap.QualityCostScore, 0.01) // cost_efficiency stays 100 under budget
	assert.Equal(t, 50.0, snap.AGVScore)

	// AND the total applies the 0.4/0.3/0.3 weights
	want := 0.4*50.0 + 0.3*75.0 + 0.3*50.0
	assert.InDelta(t, want, snap.TotalScore, 0.01)
}

func TestKPICostEfficiencyDegradesOverBudget(t *testing.T) {
	// GIVEN a tiny budget
	k, err := NewKPICalculator(KPIConfig{Cost: CostConfig{Budget: 100}})
	require.NoError(t, err)

	// WHEN material bookings push spend to twice the budget
	k.RecordProductsCreated(20) // 20 * 10 = 200

	snap := k.Compute(kpiInputs{})

	// THEN cost efficiency is budget/total
	assert.Equal(t, 50.0, snap.QualityCostComponent["cost_efficiency"])
}

func TestKPIFaultAccounting(t *testing.T) {
	k := newTestKPI(t)

	k.RecordFault()
	k.RecordFault()
	k.RecordFaultSample(2, TicksFromSeconds(1))
	k.RecordFaultSample(1, TicksFromSeconds(1))

	assert.Equal(t, 2, k.FaultsInjected())
	assert.Equal(t, 3*TicksFromSeconds(1), k.FaultActiveTicks())
}

func TestKPISnapshotRounding(t *testing.T) {
	k := newTestKPI(t)

	// 1/3 completion produces a repeating decimal.
	snap := k.Compute(kpiInputs{ordersCreated: 3, ordersCompleted: 1})

	assert.Equal(t, 33.33, snap.EfficiencyComponents["order_completion"])
}

func TestKPIIntervalDefault(t *testing.T) {
	k := newTestKPI(t)

	assert.Equal(t, TicksFromSeconds(DefaultKPIIntervalSeconds), k.IntervalTicks())
}

func TestKPIIntervalRejectsNegative(t *testing.T) {
	_, err := NewKPICalculator(KPIConfig{IntervalSeconds: -1})

	require.Error(t, err)
}
