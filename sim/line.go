package sim

import "fmt"

// LineConfig carries construction parameters for a production line.
type LineConfig struct {
	ID      string
	Devices []DeviceConfig
	AGVs    []AGVConfig

	// Graph holds the line's travel distances between points.
	Graph *PathGraph
	// PointDevices maps layout points onto the device an AGV operates
	// there. Points of factory-global devices map to their IDs too and
	// resolve through the factory fallback.
	PointDevices map[PointID]DeviceID

	// ChargePointID is the point AGVs are routed to for charging.
	ChargePointID PointID
	// ChargeCapacity is the charger slot count, default 1.
	ChargeCapacity int

	Faults FaultConfig
}

// Line is one production line: its devices, its two (or more) AGVs,
// its path graph, one charging point, and a fault injector.
type Line struct {
	ID string

	devices     map[DeviceID]*Device
	deviceOrder []DeviceID
	agvs        map[string]*AGV
	agvOrder    []string

	graph        *PathGraph
	pointDevices map[PointID]DeviceID
	chargePoint  *ChargePoint
	faults       *FaultSystem
}

// NewLine validates the config and builds the line with its devices
// and AGVs.
func NewLine(cfg LineConfig) (*Line, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("line id must not be empty")
	}
	if cfg.Graph == nil {
		return nil, fmt.Errorf("line %s: path graph is required", cfg.ID)
	}

	l := &Line{
		ID:           cfg.ID,
		devices:      make(map[DeviceID]*Device, len(cfg.Devices)),
		agvs:         make(map[string]*AGV, len(cfg.AGVs)),
		graph:        cfg.Graph,
		pointDevices: make(map[PointID]DeviceID, len(cfg.PointDevices)),
	}

	for _, dc := range cfg.Devices {
		dc.LineID = cfg.ID
		d, err := NewDevice(dc)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", cfg.ID, err)
		}
		if _, dup := l.devices[d.ID]; dup {
			return nil, fmt.Errorf("line %s: duplicate device id %q", cfg.ID, d.ID)
		}
		if !l.graph.HasPoint(d.Point) {
			return nil, fmt.Errorf("line %s: device %s sits at unknown point %q", cfg.ID, d.ID, d.Point)
		}
		l.devices[d.ID] = d
		l.deviceOrder = append(l.deviceOrder, d.ID)
	}

	for _, ac := range cfg.AGVs {
		ac.LineID = cfg.ID
		a, err := NewAGV(ac)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", cfg.ID, err)
		}
		if _, dup := l.agvs[a.ID]; dup {
			return nil, fmt.Errorf("line %s: duplicate agv id %q", cfg.ID, a.ID)
		}
		if !l.graph.HasPoint(a.Point()) {
			return nil, fmt.Errorf("line %s: agv %s starts at unknown point %q", cfg.ID, a.ID, a.Point())
		}
		l.agvs[a.ID] = a
		l.agvOrder = append(l.agvOrder, a.ID)
	}

	for point, device := range cfg.PointDevices {
		if !l.graph.HasPoint(point) {
			return nil, fmt.Errorf("line %s: point mapping references unknown point %q", cfg.ID, point)
		}
		l.pointDevices[point] = device
	}

	chargePoint := cfg.ChargePointID
	if chargePoint == "" {
		chargePoint = "P0"
	}
	if !l.graph.HasPoint(chargePoint) {
		return nil, fmt.Errorf("line %s: charge point %q not in path graph", cfg.ID, chargePoint)
	}
	capacity := cfg.ChargeCapacity
	if capacity == 0 {
		capacity = 1
	}
	cp, err := NewChargePoint(cfg.ID, chargePoint, capacity)
	if err != nil {
		return nil, fmt.Errorf("line %s: %w", cfg.ID, err)
	}
	l.chargePoint = cp

	faults, err := NewFaultSystem(cfg.ID, cfg.Faults)
	if err != nil {
		return nil, fmt.Errorf("line %s: %w", cfg.ID, err)
	}
	l.faults = faults

	return l, nil
}

// Device returns a line-owned device by ID.
func (l *Line) Device(id DeviceID) (*Device, bool) {
	d, ok := l.devices[id]
	return d, ok
}

// Devices returns line-owned devices in declaration order.
func (l *Line) Devices() []*Device {
	out := make([]*Device, 0, len(l.deviceOrder))
	for _, id := range l.deviceOrder {
		out = append(out, l.devices[id])
	}
	return out
}

// AGV returns an AGV by ID.
func (l *Line) AGV(id string) (*AGV, bool) {
	a, ok := l.agvs[id]
	return a, ok
}

// AGVs returns the line's AGVs in declaration order.
func (l *Line) AGVs() []*AGV {
	out := make([]*AGV, 0, len(l.agvOrder))
	for _, id := range l.agvOrder {
		out = append(out, l.agvs[id])
	}
	return out
}

// DeviceAtPoint resolves the device an AGV operates at a point.
func (l *Line) DeviceAtPoint(p PointID) (DeviceID, bool) {
	id, ok := l.pointDevices[p]
	return id, ok
}

// Distance returns the shortest-path travel distance between points.
func (l *Line) Distance(from, to PointID) (float64, error) {
	return l.graph.Distance(from, to)
}

// Graph returns the line's path graph.
func (l *Line) Graph() *PathGraph {
	return l.graph
}

// ChargePoint returns the line's charging resource.
func (l *Line) ChargePoint() *ChargePoint {
	return l.chargePoint
}

// Faults returns the line's fault injector.
func (l *Line) Faults() *FaultSystem {
	return l.faults
}
