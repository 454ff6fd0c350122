// Package layout loads and validates factory layout documents. A
// layout describes the production lines, their devices and AGVs, the
// travel graph, the shared warehouse devices, and the order/KPI
// tuning of one simulated factory; Build turns a validated Spec into
// the sim.FactoryConfig the engine consumes.
package layout

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/factory-sim/factory-sim/sim"
)

// Spec is the top-level layout document. Loaded from YAML via Load(path).
type Spec struct {
	// TopicRoot namespaces the pub/sub surface. Empty resolves through
	// the TOPIC_ROOT / USERNAME / USER environment chain.
	TopicRoot string `yaml:"topic_root,omitempty"`
	// Seed keys the partitioned RNG. Usually overridden by --seed.
	Seed int64 `yaml:"seed,omitempty"`

	StatusIntervalS      float64 `yaml:"status_interval_s,omitempty"`
	CommandQueueCapacity int     `yaml:"command_queue_capacity,omitempty"`
	DisableFaults        bool    `yaml:"disable_faults,omitempty"`

	ProductionLines []LineSpec   `yaml:"production_lines"`
	Warehouses      []DeviceSpec `yaml:"warehouses"`

	OrderGenerator OrderSpec `yaml:"order_generator,omitempty"`
	KPI            KPISpec   `yaml:"kpi,omitempty"`
}

// LineSpec describes one production line.
type LineSpec struct {
	Name    string       `yaml:"name"`
	Devices []DeviceSpec `yaml:"devices"`
	AGVs    []AGVSpec    `yaml:"agvs"`

	// Distances is the symmetric travel table; each pair is listed once.
	Distances []DistanceSpec `yaml:"distances"`
	// PointDevices maps a layout point to the device an AGV operates
	// there. Warehouse points map to the global device IDs.
	PointDevices map[string]string `yaml:"point_devices,omitempty"`

	ChargePoint ChargeSpec `yaml:"charge_point,omitempty"`
	Faults      FaultSpec  `yaml:"faults,omitempty"`
}

// DeviceSpec describes a station, conveyor, quality check, or one of
// the factory-global warehouse devices.
type DeviceSpec struct {
	ID       string `yaml:"id"`
	Type     string `yaml:"type"`
	Position string `yaml:"position"`
	Capacity int    `yaml:"capacity"`

	// ProcessTime applies to stations and quality checks.
	ProcessTime *sim.DistSpec `yaml:"process_time,omitempty"`
	// TransitS applies to conveyors.
	TransitS float64 `yaml:"transit_s,omitempty"`
	// YieldProbability applies to quality checks; 0 means the engine
	// default.
	YieldProbability float64 `yaml:"yield_probability,omitempty"`
}

// AGVSpec describes one AGV. Zero values fall back to engine defaults
// (100% battery, 1 m/s, 0.1%/m, 0.5%/action, 2%/s charging, 1 s
// transfer cycles).
type AGVSpec struct {
	ID       string `yaml:"id"`
	Position string `yaml:"position"`

	BatteryLevel         float64 `yaml:"battery_level,omitempty"`
	SpeedMPS             float64 `yaml:"speed_mps,omitempty"`
	ConsumptionPerMeter  float64 `yaml:"consumption_per_meter,omitempty"`
	ConsumptionPerAction float64 `yaml:"consumption_per_action,omitempty"`
	ChargeRatePerSecond  float64 `yaml:"charge_rate,omitempty"`
	LoadS                float64 `yaml:"load_s,omitempty"`
	UnloadS              float64 `yaml:"unload_s,omitempty"`
}

// DistanceSpec is one undirected edge of the travel graph.
type DistanceSpec struct {
	From   string  `yaml:"from"`
	To     string  `yaml:"to"`
	Meters float64 `yaml:"meters"`
}

// ChargeSpec anchors the line's charging resource.
type ChargeSpec struct {
	Position string `yaml:"position,omitempty"`
	Capacity int    `yaml:"capacity,omitempty"`
}

// FaultSpec tunes the line's fault injector.
type FaultSpec struct {
	Disabled      bool    `yaml:"disabled,omitempty"`
	MeanIntervalS float64 `yaml:"mean_interval_s,omitempty"`
	MinDurationS  float64 `yaml:"min_duration_s,omitempty"`
	MaxDurationS  float64 `yaml:"max_duration_s,omitempty"`
}

// OrderSpec tunes order arrival.
type OrderSpec struct {
	IntervalS       float64            `yaml:"interval_s,omitempty"`
	MaxQuantity     int                `yaml:"max_quantity,omitempty"`
	TypeWeights     map[string]float64 `yaml:"type_weights,omitempty"`
	PriorityWeights map[string]float64 `yaml:"priority_weights,omitempty"`
}

// KPISpec tunes scoring.
type KPISpec struct {
	IntervalS float64  `yaml:"interval_s,omitempty"`
	Cost      CostSpec `yaml:"cost,omitempty"`
}

// CostSpec sets the cost ledger rates. Zero values fall back to engine
// defaults.
type CostSpec struct {
	MaterialPerProduct  float64 `yaml:"material_per_product,omitempty"`
	EnergyPerPercent    float64 `yaml:"energy_per_percent,omitempty"`
	EnergyPerBusySecond float64 `yaml:"energy_per_busy_second,omitempty"`
	MaintenancePerFault float64 `yaml:"maintenance_per_fault,omitempty"`
	ScrapPerProduct     float64 `yaml:"scrap_per_product,omitempty"`
	Budget              float64 `yaml:"budget,omitempty"`
}

// Valid value registries.
var (
	validDeviceTypes = map[string]bool{
		string(sim.DeviceKindStation):      true,
		string(sim.DeviceKindConveyor):     true,
		string(sim.DeviceKindQualityCheck): true,
	}
	validGlobalTypes = map[string]bool{
		string(sim.DeviceKindRawMaterial): true,
		string(sim.DeviceKindWarehouse):   true,
	}
	validDistTypes = map[string]bool{
		"constant": true, "uniform": true, "gaussian": true, "exponential": true, "empirical": true,
	}
)

// Load reads and parses a YAML layout file. Parsing is strict:
// unrecognized keys (typos) are rejected.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML layout document.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}
	return &spec, nil
}

// Validate checks the document's structure. Value-range rules owned by
// the engine constructors (battery bounds, weight sums, rate signs)
// are re-checked there; Validate catches everything a typo in the YAML
// can produce.
func (s *Spec) Validate() error {
	if len(s.ProductionLines) == 0 {
		return fmt.Errorf("at least one production line required")
	}
	seenLines := make(map[string]bool, len(s.ProductionLines))
	for i := range s.ProductionLines {
		l := &s.ProductionLines[i]
		if err := validateLine(l, i); err != nil {
			return err
		}
		if seenLines[l.Name] {
			return fmt.Errorf("line[%d]: duplicate line name %q", i, l.Name)
		}
		seenLines[l.Name] = true
	}

	seenGlobals := make(map[string]bool, len(s.Warehouses))
	for i, w := range s.Warehouses {
		prefix := fmt.Sprintf("warehouse[%d]", i)
		if w.ID == "" {
			return fmt.Errorf("%s: id required", prefix)
		}
		if !validGlobalTypes[w.Type] {
			return fmt.Errorf("%s: unknown type %q; valid: raw_material, warehouse", prefix, w.Type)
		}
		if w.Position == "" {
			return fmt.Errorf("%s: position required", prefix)
		}
		if w.Capacity < 1 {
			return fmt.Errorf("%s: capacity must be >= 1, got %d", prefix, w.Capacity)
		}
		if seenGlobals[w.ID] {
			return fmt.Errorf("%s: duplicate warehouse id %q", prefix, w.ID)
		}
		seenGlobals[w.ID] = true
	}

	for name := range s.OrderGenerator.TypeWeights {
		if _, err := sim.WorkflowFor(sim.ProductType(name)); err != nil {
			return fmt.Errorf("order_generator: %w", err)
		}
	}

	return nil
}

func validateLine(l *LineSpec, idx int) error {
	prefix := fmt.Sprintf("line[%d]", idx)
	if l.Name == "" {
		return fmt.Errorf("%s: name required", prefix)
	}
	if len(l.Distances) == 0 {
		return fmt.Errorf("%s: at least one distance entry required", prefix)
	}

	points := make(map[string]bool)
	type pair struct{ a, b string }
	seenEdges := make(map[pair]float64)
	for j, d := range l.Distances {
		eprefix := fmt.Sprintf("%s: distance[%d]", prefix, j)
		if d.From == "" || d.To == "" {
			return fmt.Errorf("%s: from and to required", eprefix)
		}
		if d.From == d.To {
			return fmt.Errorf("%s: endpoints must differ, got %q twice", eprefix, d.From)
		}
		if d.Meters <= 0 {
			return fmt.Errorf("%s: meters must be positive, got %v", eprefix, d.Meters)
		}
		key := pair{d.From, d.To}
		if d.To < d.From {
			key = pair{d.To, d.From}
		}
		if prev, dup := seenEdges[key]; dup {
			if prev != d.Meters {
				return fmt.Errorf("%s: conflicts with earlier %s-%s distance %v", eprefix, d.From, d.To, prev)
			}
			return fmt.Errorf("%s: duplicate %s-%s entry", eprefix, d.From, d.To)
		}
		seenEdges[key] = d.Meters
		points[d.From] = true
		points[d.To] = true
	}

	seenDevices := make(map[string]bool, len(l.Devices))
	for j, d := range l.Devices {
		dprefix := fmt.Sprintf("%s: device[%d]", prefix, j)
		if d.ID == "" {
			return fmt.Errorf("%s: id required", dprefix)
		}
		if !validDeviceTypes[d.Type] {
			return fmt.Errorf("%s: unknown type %q; valid: station, conveyor, quality_check", dprefix, d.Type)
		}
		if !points[d.Position] {
			return fmt.Errorf("%s: position %q not in distance table", dprefix, d.Position)
		}
		if d.Capacity < 1 {
			return fmt.Errorf("%s: capacity must be >= 1, got %d", dprefix, d.Capacity)
		}
		switch d.Type {
		case string(sim.DeviceKindConveyor):
			if d.TransitS <= 0 {
				return fmt.Errorf("%s: conveyor requires positive transit_s", dprefix)
			}
		default:
			if d.ProcessTime == nil {
				return fmt.Errorf("%s: %s requires process_time", dprefix, d.Type)
			}
			if !validDistTypes[d.ProcessTime.Type] {
				return fmt.Errorf("%s: unknown process_time type %q; valid: constant, uniform, gaussian, exponential, empirical", dprefix, d.ProcessTime.Type)
			}
		}
		if seenDevices[d.ID] {
			return fmt.Errorf("%s: duplicate device id %q", dprefix, d.ID)
		}
		seenDevices[d.ID] = true
	}

	for j, a := range l.AGVs {
		aprefix := fmt.Sprintf("%s: agv[%d]", prefix, j)
		if a.ID == "" {
			return fmt.Errorf("%s: id required", aprefix)
		}
		if !points[a.Position] {
			return fmt.Errorf("%s: position %q not in distance table", aprefix, a.Position)
		}
		if a.BatteryLevel < 0 || a.BatteryLevel > 100 {
			return fmt.Errorf("%s: battery_level must be in [0,100], got %v", aprefix, a.BatteryLevel)
		}
	}

	for point := range l.PointDevices {
		if !points[point] {
			return fmt.Errorf("%s: point_devices references unknown point %q", prefix, point)
		}
	}

	if cp := l.ChargePoint.Position; cp != "" && !points[cp] {
		return fmt.Errorf("%s: charge_point position %q not in distance table", prefix, cp)
	}
	if l.ChargePoint.Capacity < 0 {
		return fmt.Errorf("%s: charge_point capacity must be >= 1, got %d", prefix, l.ChargePoint.Capacity)
	}

	if f := l.Faults; f.MinDurationS != 0 || f.MaxDurationS != 0 {
		if f.MinDurationS <= 0 || f.MaxDurationS < f.MinDurationS {
			return fmt.Errorf("%s: fault duration range [%v,%v] invalid", prefix, f.MinDurationS, f.MaxDurationS)
		}
	}

	return nil
}
