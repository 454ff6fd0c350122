package layout

import (
	"fmt"

	"github.com/factory-sim/factory-sim/sim"
)

// Build validates the spec and assembles the engine configuration.
// The engine constructors re-check their own semantic invariants, so a
// config produced here can still be refused by sim.NewFactory (for
// example a charge point unreachable from an AGV start).
func (s *Spec) Build() (sim.FactoryConfig, error) {
	if err := s.Validate(); err != nil {
		return sim.FactoryConfig{}, err
	}

	cfg := sim.FactoryConfig{
		Seed:                  s.Seed,
		TopicRoot:             s.TopicRoot,
		StatusIntervalSeconds: s.StatusIntervalS,
		CommandQueueCapacity:  s.CommandQueueCapacity,
		DisableFaults:         s.DisableFaults,
		Orders:                buildOrders(s.OrderGenerator),
		KPI: sim.KPIConfig{
			IntervalSeconds: s.KPI.IntervalS,
			Cost: sim.CostConfig{
				MaterialPerProduct:  s.KPI.Cost.MaterialPerProduct,
				EnergyPerPercent:    s.KPI.Cost.EnergyPerPercent,
				EnergyPerBusySecond: s.KPI.Cost.EnergyPerBusySecond,
				MaintenancePerFault: s.KPI.Cost.MaintenancePerFault,
				ScrapPerProduct:     s.KPI.Cost.ScrapPerProduct,
				Budget:              s.KPI.Cost.Budget,
			},
		},
	}

	for i := range s.ProductionLines {
		lc, err := buildLine(&s.ProductionLines[i])
		if err != nil {
			return sim.FactoryConfig{}, err
		}
		cfg.Lines = append(cfg.Lines, lc)
	}

	for _, w := range s.Warehouses {
		cfg.Globals = append(cfg.Globals, sim.DeviceConfig{
			ID:       sim.DeviceID(w.ID),
			Kind:     sim.DeviceKind(w.Type),
			Point:    sim.PointID(w.Position),
			Capacity: w.Capacity,
		})
	}

	return cfg, nil
}

func buildLine(l *LineSpec) (sim.LineConfig, error) {
	graph := sim.NewPathGraph()
	for _, d := range l.Distances {
		if err := graph.AddEdge(sim.PointID(d.From), sim.PointID(d.To), d.Meters); err != nil {
			return sim.LineConfig{}, fmt.Errorf("line %s: %w", l.Name, err)
		}
	}

	lc := sim.LineConfig{
		ID:             l.Name,
		Graph:          graph,
		ChargePointID:  sim.PointID(l.ChargePoint.Position),
		ChargeCapacity: l.ChargePoint.Capacity,
		Faults: sim.FaultConfig{
			Disabled:            l.Faults.Disabled,
			MeanIntervalSeconds: l.Faults.MeanIntervalS,
			MinDurationSeconds:  l.Faults.MinDurationS,
			MaxDurationSeconds:  l.Faults.MaxDurationS,
		},
	}

	for _, d := range l.Devices {
		dc := sim.DeviceConfig{
			ID:               sim.DeviceID(d.ID),
			Kind:             sim.DeviceKind(d.Type),
			Point:            sim.PointID(d.Position),
			Capacity:         d.Capacity,
			TransitSeconds:   d.TransitS,
			YieldProbability: d.YieldProbability,
		}
		if d.ProcessTime != nil {
			pt := sim.DistSpec{Type: d.ProcessTime.Type}
			if len(d.ProcessTime.Params) > 0 {
				pt.Params = make(map[string]float64, len(d.ProcessTime.Params))
				for k, v := range d.ProcessTime.Params {
					pt.Params[k] = v
				}
			}
			dc.ProcessTime = &pt
		}
		lc.Devices = append(lc.Devices, dc)
	}

	for _, a := range l.AGVs {
		lc.AGVs = append(lc.AGVs, sim.AGVConfig{
			ID:                   a.ID,
			StartPoint:           sim.PointID(a.Position),
			InitialBattery:       a.BatteryLevel,
			SpeedMPS:             a.SpeedMPS,
			ConsumptionPerMeter:  a.ConsumptionPerMeter,
			ConsumptionPerAction: a.ConsumptionPerAction,
			ChargeRatePerSecond:  a.ChargeRatePerSecond,
			LoadSeconds:          a.LoadS,
			UnloadSeconds:        a.UnloadS,
		})
	}

	if len(l.PointDevices) > 0 {
		lc.PointDevices = make(map[sim.PointID]sim.DeviceID, len(l.PointDevices))
		for point, device := range l.PointDevices {
			lc.PointDevices[sim.PointID(point)] = sim.DeviceID(device)
		}
	}

	return lc, nil
}

func buildOrders(o OrderSpec) sim.OrderGeneratorConfig {
	cfg := sim.OrderGeneratorConfig{
		IntervalSeconds: o.IntervalS,
		MaxQuantity:     o.MaxQuantity,
	}
	if len(o.TypeWeights) > 0 {
		cfg.TypeWeights = make(map[sim.ProductType]float64, len(o.TypeWeights))
		for name, w := range o.TypeWeights {
			cfg.TypeWeights[sim.ProductType(name)] = w
		}
	}
	if len(o.PriorityWeights) > 0 {
		cfg.PriorityWeights = make(map[sim.OrderPriority]float64, len(o.PriorityWeights))
		for name, w := range o.PriorityWeights {
			cfg.PriorityWeights[sim.OrderPriority(name)] = w
		}
	}
	return cfg
}
