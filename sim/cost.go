package sim

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cost model defaults, in abstract money units.
const (
	DefaultMaterialCostPerProduct  = 10.0
	DefaultEnergyCostPerPercent    = 0.5
	DefaultEnergyCostPerBusySecond = 0.05
	DefaultMaintenanceCostPerFault = 50.0
	DefaultScrapCostPerProduct     = 20.0
	DefaultCostBudget              = 5000.0
)

// CostConfig sets the ledger rates. Zero values fall back to defaults.
type CostConfig struct {
	MaterialPerProduct  float64
	EnergyPerPercent    float64
	EnergyPerBusySecond float64
	MaintenancePerFault float64
	ScrapPerProduct     float64
	Budget              float64
}

// CostLedger books production costs with exact decimal arithmetic so
// repeated small charges (battery percent, busy seconds) cannot drift.
type CostLedger struct {
	materialRate    decimal.Decimal
	energyPctRate   decimal.Decimal
	energyBusyRate  decimal.Decimal
	maintenanceRate decimal.Decimal
	scrapRate       decimal.Decimal
	budget          decimal.Decimal

	material    decimal.Decimal
	maintenance decimal.Decimal
	scrap       decimal.Decimal
}

// NewCostLedger validates the config and fills defaults.
func NewCostLedger(cfg CostConfig) (*CostLedger, error) {
	pick := func(v, def float64) float64 {
		if v == 0 {
			return def
		}
		return v
	}
	rates := []struct {
		name  string
		value float64
	}{
		{"material_per_product", pick(cfg.MaterialPerProduct, DefaultMaterialCostPerProduct)},
		{"energy_per_percent", pick(cfg.EnergyPerPercent, DefaultEnergyCostPerPercent)},
		{"energy_per_busy_second", pick(cfg.EnergyPerBusySecond, DefaultEnergyCostPerBusySecond)},
		{"maintenance_per_fault", pick(cfg.MaintenancePerFault, DefaultMaintenanceCostPerFault)},
		{"scrap_per_product", pick(cfg.ScrapPerProduct, DefaultScrapCostPerProduct)},
		{"budget", pick(cfg.Budget, DefaultCostBudget)},
	}
	for _, r := range rates {
		if r.value < 0 {
			return nil, fmt.Errorf("cost %s must be >= 0, got %v", r.name, r.value)
		}
	}
	return &CostLedger{
		materialRate:    decimal.NewFromFloat(rates[0].value),
		energyPctRate:   decimal.NewFromFloat(rates[1].value),
		energyBusyRate:  decimal.NewFromFloat(rates[2].value),
		maintenanceRate: decimal.NewFromFloat(rates[3].value),
		scrapRate:       decimal.NewFromFloat(rates[4].value),
		budget:          decimal.NewFromFloat(rates[5].value),
	}, nil
}

// BookMaterial charges material for n created products.
func (c *CostLedger) BookMaterial(n int) {
	c.material = c.material.Add(c.materialRate.Mul(decimal.NewFromInt(int64(n))))
}

// BookMaintenance charges one fault repair.
func (c *CostLedger) BookMaintenance() {
	c.maintenance = c.maintenance.Add(c.maintenanceRate)
}

// BookScrap charges one scrapped product.
func (c *CostLedger) BookScrap() {
	c.scrap = c.scrap.Add(c.scrapRate)
}

// energyCost prices the running energy totals. Battery and device
// energy accrue in the AGV/device accumulators, so they enter as
// query-time inputs rather than incremental bookings.
func (c *CostLedger) energyCost(batteryPercent float64, busyTicks int64) decimal.Decimal {
	battery := c.energyPctRate.Mul(decimal.NewFromFloat(batteryPercent))
	seconds := decimal.NewFromInt(busyTicks).Div(decimal.NewFromInt(TicksPerSecond))
	return battery.Add(c.energyBusyRate.Mul(seconds))
}

// Total returns the cost across all categories given the current
// energy accumulator readings.
func (c *CostLedger) Total(batteryPercent float64, busyTicks int64) decimal.Decimal {
	return c.material.
		Add(c.energyCost(batteryPercent, busyTicks)).
		Add(c.maintenance).
		Add(c.scrap)
}

// Budget returns the configured budget.
func (c *CostLedger) Budget() decimal.Decimal {
	return c.budget
}

// EfficiencyPercent scores spending against budget: 100 when at or
// under budget, shrinking proportionally beyond it.
func (c *CostLedger) EfficiencyPercent(batteryPercent float64, busyTicks int64) float64 {
	total := c.Total(batteryPercent, busyTicks)
	if total.IsZero() || total.LessThanOrEqual(c.budget) {
		return 100.0
	}
	ratio, _ := c.budget.Div(total).Float64()
	return ratio * 100.0
}

// Breakdown returns per-category totals as floats for reporting.
func (c *CostLedger) Breakdown(batteryPercent float64, busyTicks int64) map[string]float64 {
	out := make(map[string]float64, 4)
	out["material"], _ = c.material.Float64()
	out["energy"], _ = c.energyCost(batteryPercent, busyTicks).Float64()
	out["maintenance"], _ = c.maintenance.Float64()
	out["scrap"], _ = c.scrap.Float64()
	return out
}
