package sim

import (
	"fmt"
	"math/rand"
)

// DeviceID identifies a device within its lookup scope (line devices
// shadow factory globals).
type DeviceID string

// Default device IDs matching the standard line layout.
const (
	DeviceRawMaterial  DeviceID = "RawMaterial"
	DeviceStationA     DeviceID = "StationA"
	DeviceConveyorAB   DeviceID = "Conveyor_AB"
	DeviceStationB     DeviceID = "StationB"
	DeviceConveyorBC   DeviceID = "Conveyor_BC"
	DeviceStationC     DeviceID = "StationC"
	DeviceConveyorCQ   DeviceID = "Conveyor_CQ"
	DeviceQualityCheck DeviceID = "QualityCheck"
	DeviceWarehouse    DeviceID = "Warehouse"
)

// DeviceKind selects a device's behavior.
type DeviceKind string

const (
	DeviceKindStation      DeviceKind = "station"
	DeviceKindConveyor     DeviceKind = "conveyor"
	DeviceKindQualityCheck DeviceKind = "quality_check"
	DeviceKindRawMaterial  DeviceKind = "raw_material"
	DeviceKindWarehouse    DeviceKind = "warehouse"
)

// KnownDeviceKinds lists valid device kinds in stable order.
var KnownDeviceKinds = []DeviceKind{
	DeviceKindStation,
	DeviceKindConveyor,
	DeviceKindQualityCheck,
	DeviceKindRawMaterial,
	DeviceKindWarehouse,
}

// DeviceConfig carries construction parameters for a device.
type DeviceConfig struct {
	ID       DeviceID
	Kind     DeviceKind
	LineID   string // empty for factory-global devices
	Point    PointID
	Capacity int

	// ProcessTime applies to stations and quality checks.
	ProcessTime *DistSpec
	// TransitSeconds applies to conveyors.
	TransitSeconds float64
	// YieldProbability applies to quality checks. Zero means the
	// default of 0.95.
	YieldProbability float64
}

// DefaultYieldProbability is the quality check pass rate used when the
// layout does not set one.
const DefaultYieldProbability = 0.95

// Device is a buffered production resource. All kinds share one
// bounded FIFO buffer; behavior differences (processing, transit,
// quality draw) are orchestrated by the Factory event handlers.
//
// Not thread-safe: only the simulation goroutine touches devices.
type Device struct {
	ID     DeviceID
	Kind   DeviceKind
	LineID string
	Point  PointID

	capacity int
	buffer   []*Product

	faulted    bool
	inProgress *Product

	procSampler  DurationSampler
	transitTicks int64
	yieldProb    float64

	busyTicks int64
}

// NewDevice validates the config and builds the device.
func NewDevice(cfg DeviceConfig) (*Device, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("device id must not be empty")
	}
	if cfg.Capacity < 1 {
		return nil, fmt.Errorf("device %s: capacity must be >= 1, got %d", cfg.ID, cfg.Capacity)
	}

	d := &Device{
		ID:       cfg.ID,
		Kind:     cfg.Kind,
		LineID:   cfg.LineID,
		Point:    cfg.Point,
		capacity: cfg.Capacity,
		buffer:   make([]*Product, 0, cfg.Capacity),
	}

	switch cfg.Kind {
	case DeviceKindStation, DeviceKindQualityCheck:
		if cfg.ProcessTime == nil {
			return nil, fmt.Errorf("device %s: %s requires a process_time distribution", cfg.ID, cfg.Kind)
		}
		sampler, err := NewDurationSampler(*cfg.ProcessTime)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", cfg.ID, err)
		}
		d.procSampler = sampler
		if cfg.Kind == DeviceKindQualityCheck {
			d.yieldProb = cfg.YieldProbability
			if d.yieldProb == 0 {
				d.yieldProb = DefaultYieldProbability
			}
			if d.yieldProb < 0 || d.yieldProb > 1 {
				return nil, fmt.Errorf("device %s: yield_probability must be in [0,1], got %v", cfg.ID, d.yieldProb)
			}
		}
	case DeviceKindConveyor:
		if cfg.TransitSeconds <= 0 {
			return nil, fmt.Errorf("device %s: conveyor requires positive transit_s, got %v", cfg.ID, cfg.TransitSeconds)
		}
		d.transitTicks = TicksFromSeconds(cfg.TransitSeconds)
	case DeviceKindRawMaterial, DeviceKindWarehouse:
		// pure buffers
	default:
		return nil, fmt.Errorf("device %s: unknown kind %q", cfg.ID, cfg.Kind)
	}

	return d, nil
}

// CanAccept reports whether the device would take one more product.
func (d *Device) CanAccept() bool {
	return !d.faulted && len(d.buffer) < d.capacity
}

// Accept appends a product to the buffer and sets its buffered state
// for this device kind. Refuses when faulted or full.
func (d *Device) Accept(p *Product) error {
	if d.faulted {
		return fmt.Errorf("%s: %w", d.ID, ErrDeviceFault)
	}
	if len(d.buffer) >= d.capacity {
		return fmt.Errorf("%s: %w", d.ID, ErrBufferFull)
	}
	d.buffer = append(d.buffer, p)
	switch d.Kind {
	case DeviceKindStation, DeviceKindQualityCheck:
		p.State = ProductStateWaiting
	case DeviceKindConveyor:
		p.State = ProductStateInTransit
	case DeviceKindWarehouse:
		p.State = ProductStateDelivered
	default:
		p.State = ProductStateReady
	}
	return nil
}

// Remove takes a specific product out of the buffer.
func (d *Device) Remove(p *Product) error {
	for i, q := range d.buffer {
		if q == p {
			d.buffer = append(d.buffer[:i], d.buffer[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("product %s not in %s: %w", p.ID, d.ID, ErrBufferEmpty)
}

// ReadyProduct returns the oldest ready product, or nil.
func (d *Device) ReadyProduct() *Product {
	for _, p := range d.buffer {
		if p.State == ProductStateReady {
			return p
		}
	}
	return nil
}

// FindReadyProduct returns the ready product with the given ID, or nil.
func (d *Device) FindReadyProduct(id string) *Product {
	for _, p := range d.buffer {
		if p.ID == id && p.State == ProductStateReady {
			return p
		}
	}
	return nil
}

// OldestWaiting returns the oldest product still waiting for
// processing, or nil. Ready products ahead of it do not block.
func (d *Device) OldestWaiting() *Product {
	for _, p := range d.buffer {
		if p.State == ProductStateWaiting {
			return p
		}
	}
	return nil
}

// WorkIdle reports whether the device could start processing a product.
func (d *Device) WorkIdle() bool {
	return d.inProgress == nil
}

// Working returns the product currently being processed, or nil.
func (d *Device) Working() *Product {
	return d.inProgress
}

// BeginWork marks a product as the one being processed.
func (d *Device) BeginWork(p *Product) {
	d.inProgress = p
	p.State = ProductStateProcessing
}

// EndWork finishes the in-progress product and marks it ready.
func (d *Device) EndWork(p *Product) {
	if d.inProgress == p {
		d.inProgress = nil
	}
	p.State = ProductStateReady
}

// SampleProcessTicks draws a processing duration for this device.
func (d *Device) SampleProcessTicks(rng *rand.Rand) int64 {
	return d.procSampler.Sample(rng)
}

// MeanProcessTicks reports the expected processing duration, used for
// theoretical cycle-time baselines.
func (d *Device) MeanProcessTicks() int64 {
	if d.procSampler == nil {
		return 0
	}
	return d.procSampler.MeanTicks()
}

// TransitTicks returns the conveyor transit duration.
func (d *Device) TransitTicks() int64 {
	return d.transitTicks
}

// YieldProbability returns the quality check pass probability.
func (d *Device) YieldProbability() float64 {
	return d.yieldProb
}

// Faulted reports the fault flag.
func (d *Device) Faulted() bool {
	return d.faulted
}

// SetFault sets or clears the fault flag. In-progress work is not
// interrupted; the flag only gates new Accept calls and task starts.
func (d *Device) SetFault(on bool) {
	d.faulted = on
}

// Len returns the buffered product count.
func (d *Device) Len() int {
	return len(d.buffer)
}

// Capacity returns the buffer capacity.
func (d *Device) Capacity() int {
	return d.capacity
}

// Products returns a copy of the buffer contents in FIFO order.
func (d *Device) Products() []*Product {
	out := make([]*Product, len(d.buffer))
	copy(out, d.buffer)
	return out
}

// AddBusyTicks accrues working time for utilization accounting.
func (d *Device) AddBusyTicks(ticks int64) {
	d.busyTicks += ticks
}

// BusyTicks returns accumulated working time.
func (d *Device) BusyTicks() int64 {
	return d.busyTicks
}

// IsProcessingKind reports whether the device actively works products
// (stations and quality checks).
func (d *Device) IsProcessingKind() bool {
	return d.Kind == DeviceKindStation || d.Kind == DeviceKindQualityCheck
}
