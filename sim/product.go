package sim

import "fmt"

// ProductType identifies one of the three supported product families.
type ProductType string

const (
	ProductTypeP1 ProductType = "P1"
	ProductTypeP2 ProductType = "P2"
	ProductTypeP3 ProductType = "P3"
)

// KnownProductTypes lists valid product types in stable order.
var KnownProductTypes = []ProductType{ProductTypeP1, ProductTypeP2, ProductTypeP3}

// TransportMode says how a product reaches a workflow stage.
type TransportMode string

const (
	// TransportAuto stages are fed by the line's conveyor flow without
	// controller involvement.
	TransportAuto TransportMode = "auto"
	// TransportAGV stages require an explicit load / move / unload cycle.
	TransportAGV TransportMode = "agv"
)

// WorkflowStage is one step of a product routing: the device the
// product must enter and the transport mode that brings it there.
type WorkflowStage struct {
	Device DeviceID
	Mode   TransportMode
}

// WorkflowFor returns the stage sequence for a product type, starting
// at RawMaterial and ending at Warehouse. P3 runs a mandatory rework
// pass: after the first Conveyor_CQ transit an AGV carries it back to
// StationB for a second StationC pass before quality check.
func WorkflowFor(t ProductType) ([]WorkflowStage, error) {
	switch t {
	case ProductTypeP1, ProductTypeP2:
		return []WorkflowStage{
			{DeviceRawMaterial, TransportAuto},
			{DeviceStationA, TransportAGV},
			{DeviceConveyorAB, TransportAuto},
			{DeviceStationB, TransportAuto},
			{DeviceConveyorBC, TransportAuto},
			{DeviceStationC, TransportAuto},
			{DeviceConveyorCQ, TransportAuto},
			{DeviceQualityCheck, TransportAuto},
			{DeviceWarehouse, TransportAGV},
		}, nil
	case ProductTypeP3:
		return []WorkflowStage{
			{DeviceRawMaterial, TransportAuto},
			{DeviceStationA, TransportAGV},
			{DeviceConveyorAB, TransportAuto},
			{DeviceStationB, TransportAuto},
			{DeviceConveyorBC, TransportAuto},
			{DeviceStationC, TransportAuto},
			{DeviceConveyorCQ, TransportAuto},
			{DeviceStationB, TransportAGV},
			{DeviceConveyorBC, TransportAuto},
			{DeviceStationC, TransportAuto},
			{DeviceConveyorCQ, TransportAuto},
			{DeviceQualityCheck, TransportAuto},
			{DeviceWarehouse, TransportAGV},
		}, nil
	default:
		return nil, fmt.Errorf("unknown product type %q", t)
	}
}

// ProductState tracks where a product is in its lifecycle.
type ProductState string

const (
	// ProductStateWaiting means buffered, waiting for processing or transit.
	ProductStateWaiting ProductState = "waiting"
	// ProductStateProcessing means a station or quality check is working on it.
	ProductStateProcessing ProductState = "processing"
	// ProductStateInTransit means riding a conveyor or an AGV.
	ProductStateInTransit ProductState = "in_transit"
	// ProductStateReady means done at the current stage and eligible to
	// leave the buffer.
	ProductStateReady ProductState = "ready"
	// ProductStateScrapped means removed after a failed quality check.
	ProductStateScrapped ProductState = "scrapped"
	// ProductStateDelivered means stored in the warehouse, workflow complete.
	ProductStateDelivered ProductState = "delivered"
)

// Product is a single manufactured item flowing through a line.
type Product struct {
	ID       string
	Type     ProductType
	OrderID  string
	LineID   string
	Workflow []WorkflowStage
	// Stage indexes the workflow entry the product currently occupies.
	Stage int
	State ProductState

	CreatedAt   int64
	CompletedAt int64
}

// NewProduct creates a product positioned at its workflow origin.
func NewProduct(id string, t ProductType, orderID, lineID string, createdAt int64) (*Product, error) {
	wf, err := WorkflowFor(t)
	if err != nil {
		return nil, err
	}
	return &Product{
		ID:        id,
		Type:      t,
		OrderID:   orderID,
		LineID:    lineID,
		Workflow:  wf,
		Stage:     0,
		State:     ProductStateReady,
		CreatedAt: createdAt,
	}, nil
}

// CurrentDevice returns the device of the product's current stage.
func (p *Product) CurrentDevice() DeviceID {
	return p.Workflow[p.Stage].Device
}

// NextStage returns the upcoming workflow stage, or false when the
// product is already at its final stage.
func (p *Product) NextStage() (WorkflowStage, bool) {
	if p.Stage+1 >= len(p.Workflow) {
		return WorkflowStage{}, false
	}
	return p.Workflow[p.Stage+1], true
}

// AtFinalStage reports whether the product has reached the end of its
// workflow.
func (p *Product) AtFinalStage() bool {
	return p.Stage+1 >= len(p.Workflow)
}

// AdvanceTo moves the product to its next stage. The device must match
// the workflow; anything else is a routing error and the product stays
// where it is.
func (p *Product) AdvanceTo(device DeviceID) error {
	next, ok := p.NextStage()
	if !ok {
		return fmt.Errorf("product %s workflow already complete at %s", p.ID, p.CurrentDevice())
	}
	if next.Device != device {
		return fmt.Errorf("product %s expects %s next, not %s", p.ID, next.Device, device)
	}
	p.Stage++
	return nil
}
