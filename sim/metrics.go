package sim

import "fmt"

// Metrics aggregates engine-wide counters for final reporting.
type Metrics struct {
	EventsExecuted    int64 // Number of executed simulation events
	CommandsAccepted  int   // Commands that dispatched to an entity
	CommandsRejected  int   // Commands refused at validation or dispatch
	OrdersCreated     int   // Orders emitted by the generator
	OrdersCompleted   int   // Orders fully delivered to the warehouse
	ProductsCreated   int   // Products injected into raw material
	ProductsDelivered int   // Products that reached the warehouse
	ProductsScrapped  int   // Products removed at quality check
	FaultsInjected    int   // Faults raised across all lines
}

// Print displays aggregated engine counters at the end of a run.
func (m *Metrics) Print(clock int64) {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Virtual Time         : %.1f s\n", SecondsFromTicks(clock))
	fmt.Printf("Events Executed      : %d\n", m.EventsExecuted)
	fmt.Printf("Commands Accepted    : %d\n", m.CommandsAccepted)
	fmt.Printf("Commands Rejected    : %d\n", m.CommandsRejected)
	fmt.Printf("Orders Created       : %d\n", m.OrdersCreated)
	fmt.Printf("Orders Completed     : %d\n", m.OrdersCompleted)
	fmt.Printf("Products Created     : %d\n", m.ProductsCreated)
	fmt.Printf("Products Delivered   : %d\n", m.ProductsDelivered)
	fmt.Printf("Products Scrapped    : %d\n", m.ProductsScrapped)
	fmt.Printf("Faults Injected      : %d\n", m.FaultsInjected)
}

// Print displays the score report.
func (s KPISnapshot) Print() {
	fmt.Println("=== Final Scores ===")
	fmt.Printf("Total Score          : %.2f\n", s.TotalScore)
	fmt.Printf("Efficiency (40%%)     : %.2f\n", s.EfficiencyScore)
	fmt.Printf("  order_completion   : %.2f\n", s.EfficiencyComponents["order_completion"])
	fmt.Printf("  production_cycle   : %.2f\n", s.EfficiencyComponents["production_cycle"])
	fmt.Printf("  device_utilization : %.2f\n", s.EfficiencyComponents["device_utilization"])
	fmt.Printf("Quality & Cost (30%%) : %.2f\n", s.QualityCostScore)
	fmt.Printf("  first_pass_rate    : %.2f\n", s.QualityCostComponent["first_pass_rate"])
	fmt.Printf("  cost_efficiency    : %.2f\n", s.QualityCostComponent["cost_efficiency"])
	fmt.Printf("AGV (30%%)            : %.2f\n", s.AGVScore)
	fmt.Printf("  charge_strategy    : %.2f\n", s.AGVComponents["charge_strategy"])
	fmt.Printf("  energy_efficiency  : %.2f\n", s.AGVComponents["energy_efficiency"])
	fmt.Printf("  utilization        : %.2f\n", s.AGVComponents["utilization"])
}
