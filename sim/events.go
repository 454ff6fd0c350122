package sim

// EventType classifies simulation events for logging and dispatch.
type EventType string

const (
	EventTypeCommandArrival  EventType = "CommandArrival"
	EventTypeAGVMoveDone     EventType = "AGVMoveDone"
	EventTypeAGVTransferDone EventType = "AGVTransferDone"
	EventTypeAGVChargeDone   EventType = "AGVChargeDone"
	EventTypeProcessDone     EventType = "DeviceProcessDone"
	EventTypeConveyorArrive  EventType = "ConveyorArrive"
	EventTypeFaultStart      EventType = "FaultStart"
	EventTypeFaultEnd        EventType = "FaultEnd"
	EventTypeOrderGeneration EventType = "OrderGeneration"
	EventTypeKPITick         EventType = "KPITick"
	EventTypeStatusTick      EventType = "StatusTick"
)

// Event represents a simulation event.
// Ties at equal timestamps resolve by event ID, i.e. FIFO scheduling order.
type Event interface {
	Timestamp() int64
	EventID() uint64
	Type() EventType
	Execute(f *Factory)
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	timestamp int64
	eventID   uint64
	eventType EventType
}

func newBaseEvent(timestamp int64, eventID uint64, eventType EventType) BaseEvent {
	return BaseEvent{
		timestamp: timestamp,
		eventID:   eventID,
		eventType: eventType,
	}
}

func (e *BaseEvent) Timestamp() int64 {
	return e.timestamp
}

func (e *BaseEvent) EventID() uint64 {
	return e.eventID
}

func (e *BaseEvent) Type() EventType {
	return e.eventType
}

// CommandArrivalEvent represents an external command entering the
// simulation after being drained from the ingress queue.
type CommandArrivalEvent struct {
	BaseEvent
	Command Command
}

// NewCommandArrivalEvent creates a command arrival event.
func NewCommandArrivalEvent(timestamp int64, cmd Command, eventID uint64) *CommandArrivalEvent {
	return &CommandArrivalEvent{
		BaseEvent: newBaseEvent(timestamp, eventID, EventTypeCommandArrival),
		Command:   cmd,
	}
}

func (e *CommandArrivalEvent) Execute(f *Factory) {
	f.handleCommandArrival(e)
}

// AGVMoveDoneEvent fires when an AGV reaches its target point.
type AGVMoveDoneEvent struct {
	BaseEvent
	Line *Line
	AGV  *AGV
}

// NewAGVMoveDoneEvent creates an AGV arrival event.
func NewAGVMoveDoneEvent(timestamp int64, line *Line, agv *AGV, eventID uint64) *AGVMoveDoneEvent {
	return &AGVMoveDoneEvent{
		BaseEvent: newBaseEvent(timestamp, eventID, EventTypeAGVMoveDone),
		Line:      line,
		AGV:       agv,
	}
}

func (e *AGVMoveDoneEvent) Execute(f *Factory) {
	f.handleAGVMoveDone(e)
}

// AGVTransferDoneEvent fires when an AGV finishes a load or unload cycle.
type AGVTransferDoneEvent struct {
	BaseEvent
	Line *Line
	AGV  *AGV
}

// NewAGVTransferDoneEvent creates a load/unload completion event.
func NewAGVTransferDoneEvent(timestamp int64, line *Line, agv *AGV, eventID uint64) *AGVTransferDoneEvent {
	return &AGVTransferDoneEvent{
		BaseEvent: newBaseEvent(timestamp, eventID, EventTypeAGVTransferDone),
		Line:      line,
		AGV:       agv,
	}
}

func (e *AGVTransferDoneEvent) Execute(f *Factory) {
	f.handleAGVTransferDone(e)
}

// AGVChargeDoneEvent fires when an AGV reaches its charge target level.
type AGVChargeDoneEvent struct {
	BaseEvent
	Line *Line
	AGV  *AGV
}

// NewAGVChargeDoneEvent creates a charge completion event.
func NewAGVChargeDoneEvent(timestamp int64, line *Line, agv *AGV, eventID uint64) *AGVChargeDoneEvent {
	return &AGVChargeDoneEvent{
		BaseEvent: newBaseEvent(timestamp, eventID, EventTypeAGVChargeDone),
		Line:      line,
		AGV:       agv,
	}
}

func (e *AGVChargeDoneEvent) Execute(f *Factory) {
	f.handleAGVChargeDone(e)
}

// ProcessDoneEvent fires when a station or quality check finishes
// processing the product at the head of its buffer.
type ProcessDoneEvent struct {
	BaseEvent
	Line    *Line
	Device  *Device
	Product *Product
}

// NewProcessDoneEvent creates a processing completion event.
func NewProcessDoneEvent(timestamp int64, line *Line, device *Device, product *Product, eventID uint64) *ProcessDoneEvent {
	return &ProcessDoneEvent{
		BaseEvent: newBaseEvent(timestamp, eventID, EventTypeProcessDone),
		Line:      line,
		Device:    device,
		Product:   product,
	}
}

func (e *ProcessDoneEvent) Execute(f *Factory) {
	f.handleProcessDone(e)
}

// ConveyorArriveEvent fires when a product completes transit on a conveyor.
type ConveyorArriveEvent struct {
	BaseEvent
	Line    *Line
	Device  *Device
	Product *Product
}

// NewConveyorArriveEvent creates a conveyor transit completion event.
func NewConveyorArriveEvent(timestamp int64, line *Line, device *Device, product *Product, eventID uint64) *ConveyorArriveEvent {
	return &ConveyorArriveEvent{
		BaseEvent: newBaseEvent(timestamp, eventID, EventTypeConveyorArrive),
		Line:      line,
		Device:    device,
		Product:   product,
	}
}

func (e *ConveyorArriveEvent) Execute(f *Factory) {
	f.handleConveyorArrive(e)
}

// FaultStartEvent fires when a line's fault injector wakes up to
// disable a random target.
type FaultStartEvent struct {
	BaseEvent
	Line *Line
}

// NewFaultStartEvent creates a fault injection event.
func NewFaultStartEvent(timestamp int64, line *Line, eventID uint64) *FaultStartEvent {
	return &FaultStartEvent{
		BaseEvent: newBaseEvent(timestamp, eventID, EventTypeFaultStart),
		Line:      line,
	}
}

func (e *FaultStartEvent) Execute(f *Factory) {
	f.handleFaultStart(e)
}

// FaultEndEvent restores a faulted device or AGV.
type FaultEndEvent struct {
	BaseEvent
	Line  *Line
	Fault *FaultEvent
}

// NewFaultEndEvent creates a fault recovery event.
func NewFaultEndEvent(timestamp int64, line *Line, fault *FaultEvent, eventID uint64) *FaultEndEvent {
	return &FaultEndEvent{
		BaseEvent: newBaseEvent(timestamp, eventID, EventTypeFaultEnd),
		Line:      line,
		Fault:     fault,
	}
}

func (e *FaultEndEvent) Execute(f *Factory) {
	f.handleFaultEnd(e)
}

// OrderGenerationEvent fires on the order generator's schedule.
type OrderGenerationEvent struct {
	BaseEvent
}

// NewOrderGenerationEvent creates an order generation event.
func NewOrderGenerationEvent(timestamp int64, eventID uint64) *OrderGenerationEvent {
	return &OrderGenerationEvent{
		BaseEvent: newBaseEvent(timestamp, eventID, EventTypeOrderGeneration),
	}
}

func (e *OrderGenerationEvent) Execute(f *Factory) {
	f.handleOrderGeneration(e)
}

// KPITickEvent periodically refreshes derived KPI state and publishes
// a snapshot.
type KPITickEvent struct {
	BaseEvent
}

// NewKPITickEvent creates a KPI refresh event.
func NewKPITickEvent(timestamp int64, eventID uint64) *KPITickEvent {
	return &KPITickEvent{
		BaseEvent: newBaseEvent(timestamp, eventID, EventTypeKPITick),
	}
}

func (e *KPITickEvent) Execute(f *Factory) {
	f.handleKPITick(e)
}

// StatusTickEvent periodically republishes device and AGV statuses so
// external controllers see liveness even without state changes.
type StatusTickEvent struct {
	BaseEvent
}

// NewStatusTickEvent creates a status heartbeat event.
func NewStatusTickEvent(timestamp int64, eventID uint64) *StatusTickEvent {
	return &StatusTickEvent{
		BaseEvent: newBaseEvent(timestamp, eventID, EventTypeStatusTick),
	}
}

func (e *StatusTickEvent) Execute(f *Factory) {
	f.handleStatusTick(e)
}
