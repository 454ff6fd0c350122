package sim

import (
	"fmt"
	"math"
)

// KPI defaults.
const (
	DefaultKPIIntervalSeconds = 10.0

	// Just-in-time charging band: charges started inside [min, max)
	// count toward the charge strategy score.
	ChargeBandMin = 20.0
	ChargeBandMax = 40.0

	// Final score weights across the three component groups.
	WeightEfficiency  = 0.4
	WeightQualityCost = 0.3
	WeightAGV         = 0.3
)

// KPIConfig tunes scoring.
type KPIConfig struct {
	// IntervalSeconds between published KPI snapshots, default 10.
	IntervalSeconds float64
	Cost            CostConfig
}

// KPISnapshot is the scores-only wire payload published to the result
// topic. All values are percentages rounded to two decimals.
type KPISnapshot struct {
	TotalScore           float64            `json:"total_score"`
	EfficiencyScore      float64            `json:"efficiency_score"`
	EfficiencyComponents map[string]float64 `json:"efficiency_components"`
	QualityCostScore     float64            `json:"quality_cost_score"`
	QualityCostComponent map[string]float64 `json:"quality_cost_components"`
	AGVScore             float64            `json:"agv_score"`
	AGVComponents        map[string]float64 `json:"agv_components"`
}

// KPICalculator accumulates production counters and derives the
// component scores. It owns the cost ledger. Record methods are called
// by the Factory event handlers; Compute is pure with respect to the
// counters and may run at any time (get_result does exactly that).
type KPICalculator struct {
	interval int64
	ledger   *CostLedger

	theoreticalCycle map[ProductType]int64

	productsCreated   int
	qcPass            int
	qcScrap           int
	deliveredActual   int64
	deliveredBaseline int64
	chargesTotal      int
	chargesInBand     int
	faultsInjected    int
	faultActiveTicks  int64
}

// NewKPICalculator validates the config and builds the calculator.
func NewKPICalculator(cfg KPIConfig) (*KPICalculator, error) {
	interval := cfg.IntervalSeconds
	if interval == 0 {
		interval = DefaultKPIIntervalSeconds
	}
	if interval < 0 {
		return nil, fmt.Errorf("kpi interval_s must be positive, got %v", interval)
	}
	ledger, err := NewCostLedger(cfg.Cost)
	if err != nil {
		return nil, err
	}
	return &KPICalculator{
		interval:         TicksFromSeconds(interval),
		ledger:           ledger,
		theoreticalCycle: make(map[ProductType]int64),
	}, nil
}

// IntervalTicks returns the snapshot publishing period.
func (k *KPICalculator) IntervalTicks() int64 {
	return k.interval
}

// Ledger exposes the cost ledger for reporting.
func (k *KPICalculator) Ledger() *CostLedger {
	return k.ledger
}

// SetTheoreticalCycle installs the per-type minimum cycle baselines
// computed from the layout.
func (k *KPICalculator) SetTheoreticalCycle(baseline map[ProductType]int64) {
	k.theoreticalCycle = baseline
}

// RecordProductsCreated books material for newly created products.
func (k *KPICalculator) RecordProductsCreated(n int) {
	k.productsCreated += n
	k.ledger.BookMaterial(n)
}

// RecordQCPass counts a passed quality check.
func (k *KPICalculator) RecordQCPass() {
	k.qcPass++
}

// RecordQCScrap counts a failed quality check and books the scrap.
func (k *KPICalculator) RecordQCScrap() {
	k.qcScrap++
	k.ledger.BookScrap()
}

// RecordDelivery books one completed product cycle.
func (k *KPICalculator) RecordDelivery(t ProductType, cycleTicks int64) {
	k.deliveredActual += cycleTicks
	k.deliveredBaseline += k.theoreticalCycle[t]
}

// RecordChargeStart notes the battery level a charge began at.
func (k *KPICalculator) RecordChargeStart(level float64) {
	k.chargesTotal++
	if level >= ChargeBandMin && level < ChargeBandMax {
		k.chargesInBand++
	}
}

// RecordFault counts an injected fault and books its repair.
func (k *KPICalculator) RecordFault() {
	k.faultsInjected++
	k.ledger.BookMaintenance()
}

// RecordFaultSample accrues fault downtime: activeCount faults
// observed for span ticks.
func (k *KPICalculator) RecordFaultSample(activeCount int, span int64) {
	k.faultActiveTicks += int64(activeCount) * span
}

// FaultsInjected returns the total fault count.
func (k *KPICalculator) FaultsInjected() int {
	return k.faultsInjected
}

// FaultActiveTicks returns accumulated fault downtime.
func (k *KPICalculator) FaultActiveTicks() int64 {
	return k.faultActiveTicks
}

// kpiInputs carries the live readings Compute needs from the factory.
type kpiInputs struct {
	now int64

	ordersCreated   int
	ordersCompleted int

	processingBusyTicks int64
	processingDevices   int

	agvCount           int
	agvProductiveTicks int64
	agvBatterySpent    float64
	agvBatteryCargo    float64

	deviceBusyTicksAll int64
}

// Compute derives the full score snapshot from counters and live
// readings.
func (k *KPICalculator) Compute(in kpiInputs) KPISnapshot {
	elapsed := in.now

	orderCompletion := 100.0
	if in.ordersCreated > 0 {
		orderCompletion = 100.0 * float64(in.ordersCompleted) / float64(in.ordersCreated)
	}

	productionCycle := 100.0
	if k.deliveredActual > 0 && k.deliveredBaseline > 0 {
		productionCycle = 100.0 * float64(k.deliveredBaseline) / float64(k.deliveredActual)
	}

	deviceUtilization := 0.0
	if elapsed > 0 && in.processingDevices > 0 {
		deviceUtilization = 100.0 * float64(in.processingBusyTicks) /
			(float64(elapsed) * float64(in.processingDevices))
	}

	firstPassRate := 100.0
	if k.qcPass+k.qcScrap > 0 {
		firstPassRate = 100.0 * float64(k.qcPass) / float64(k.qcPass+k.qcScrap)
	}

	costEfficiency := k.ledger.EfficiencyPercent(in.agvBatterySpent, in.deviceBusyTicksAll)

	chargeStrategy := 100.0
	if k.chargesTotal > 0 {
		chargeStrategy = 100.0 * float64(k.chargesInBand) / float64(k.chargesTotal)
	}

	energyEfficiency := 100.0
	if in.agvBatterySpent > 0 {
		energyEfficiency = 100.0 * in.agvBatteryCargo / in.agvBatterySpent
	}

	agvUtilization := 0.0
	if elapsed > 0 && in.agvCount > 0 {
		agvUtilization = 100.0 * float64(in.agvProductiveTicks) /
			(float64(elapsed) * float64(in.agvCount))
	}

	efficiencyComponents := map[string]float64{
		"order_completion":   clampPercent(orderCompletion),
		"production_cycle":   clampPercent(productionCycle),
		"device_utilization": clampPercent(deviceUtilization),
	}
	qualityCostComponents := map[string]float64{
		"first_pass_rate": clampPercent(firstPassRate),
		"cost_efficiency": clampPercent(costEfficiency),
	}
	agvComponents := map[string]float64{
		"charge_strategy":   clampPercent(chargeStrategy),
		"energy_efficiency": clampPercent(energyEfficiency),
		"utilization":       clampPercent(agvUtilization),
	}

	efficiencyScore := meanOf(efficiencyComponents)
	qualityCostScore := meanOf(qualityCostComponents)
	agvScore := meanOf(agvComponents)
	total := WeightEfficiency*efficiencyScore +
		WeightQualityCost*qualityCostScore +
		WeightAGV*agvScore

	return KPISnapshot{
		TotalScore:           round2(total),
		EfficiencyScore:      round2(efficiencyScore),
		EfficiencyComponents: round2Map(efficiencyComponents),
		QualityCostScore:     round2(qualityCostScore),
		QualityCostComponent: round2Map(qualityCostComponents),
		AGVScore:             round2(agvScore),
		AGVComponents:        round2Map(agvComponents),
	}
}

func clampPercent(v float64) float64 {
	return math.Min(100.0, math.Max(0.0, v))
}

func meanOf(components map[string]float64) float64 {
	if len(components) == 0 {
		return 0
	}
	var s float64
	for _, v := range components {
		s += v
	}
	return s / float64(len(components))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round2Map(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = round2(v)
	}
	return out
}
