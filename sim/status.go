package sim

// Wire payloads for the pub/sub surface. Every dynamic payload the
// simulation publishes has a tagged type here so the schema is checked
// at compile time instead of assembled ad hoc.

// Device wire statuses. AGV statuses reuse AGVState directly.
const (
	WireStatusIdle       = "IDLE"
	WireStatusProcessing = "PROCESSING"
	WireStatusMoving     = "MOVING"
	WireStatusFault      = "FAULT"
)

// AGVStatus is published on {root}/{line}/agv/{id}/status.
type AGVStatus struct {
	AGVID        string   `json:"agv_id"`
	Status       string   `json:"status"`
	CurrentPoint string   `json:"current_point"`
	BatteryLevel float64  `json:"battery_level"`
	Cargo        []string `json:"cargo"`
}

// StationStatus is published on {root}/{line}/station/{id}/status for
// stations and quality checks.
type StationStatus struct {
	StationID      string   `json:"station_id"`
	Status         string   `json:"status"`
	Buffer         []string `json:"buffer"`
	CurrentProduct *string  `json:"current_product"`
}

// ConveyorStatus is published on {root}/{line}/conveyor/{id}/status.
type ConveyorStatus struct {
	ConveyorID string   `json:"conveyor_id"`
	Status     string   `json:"status"`
	Buffer     []string `json:"buffer"`
}

// GlobalDeviceStatus is published on {root}/warehouse/{id}/status for
// the factory-global warehouse and raw material intake.
type GlobalDeviceStatus struct {
	DeviceID string   `json:"device_id"`
	Status   string   `json:"status"`
	Buffer   []string `json:"buffer"`
}

// Alert is published on {root}/{line}/alerts for fault starts, fault
// recoveries, and quality scrap.
type Alert struct {
	DeviceID        string  `json:"device_id"`
	FaultType       string  `json:"fault_type"`
	DurationSeconds float64 `json:"duration_s,omitempty"`
	ProductID       string  `json:"product_id,omitempty"`
}

// Alert fault_type values.
const (
	AlertFault    = "fault"
	AlertRecovery = "recovery"
	AlertScrap    = "scrap"
)

// OrderStatus is published on {root}/orders/status at order creation
// and completion.
type OrderStatus struct {
	OrderID     string   `json:"order_id"`
	ProductType string   `json:"product_type"`
	Quantity    int      `json:"quantity"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	Products    []string `json:"products"`
	Timestamp   float64  `json:"timestamp"`
}

// CommandResponse is published on {root}/response/{line}. Timestamp is
// virtual seconds at publish time.
type CommandResponse struct {
	Timestamp float64 `json:"timestamp"`
	CommandID string  `json:"command_id"`
	Response  string  `json:"response"`
}

func productIDs(products []*Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

// WireStatus derives the published AGV payload.
func (a *AGV) WireStatus() AGVStatus {
	cargo := []string{}
	if a.cargo != nil {
		cargo = append(cargo, a.cargo.ID)
	}
	status := string(a.state)
	if a.faulted {
		status = WireStatusFault
	}
	return AGVStatus{
		AGVID:        a.ID,
		Status:       status,
		CurrentPoint: string(a.currentPoint),
		BatteryLevel: a.battery,
		Cargo:        cargo,
	}
}

// WireStatus derives the published payload for any device kind. The
// result is one of StationStatus, ConveyorStatus, or
// GlobalDeviceStatus.
func (d *Device) WireStatus() any {
	switch d.Kind {
	case DeviceKindConveyor:
		status := WireStatusIdle
		switch {
		case d.faulted:
			status = WireStatusFault
		case len(d.buffer) > 0:
			status = WireStatusMoving
		}
		return ConveyorStatus{
			ConveyorID: string(d.ID),
			Status:     status,
			Buffer:     productIDs(d.buffer),
		}
	case DeviceKindRawMaterial, DeviceKindWarehouse:
		status := WireStatusIdle
		if d.faulted {
			status = WireStatusFault
		}
		return GlobalDeviceStatus{
			DeviceID: string(d.ID),
			Status:   status,
			Buffer:   productIDs(d.buffer),
		}
	default:
		status := WireStatusIdle
		switch {
		case d.faulted:
			status = WireStatusFault
		case d.inProgress != nil:
			status = WireStatusProcessing
		}
		var current *string
		if d.inProgress != nil {
			id := d.inProgress.ID
			current = &id
		}
		return StationStatus{
			StationID:      string(d.ID),
			Status:         status,
			Buffer:         productIDs(d.buffer),
			CurrentProduct: current,
		}
	}
}
