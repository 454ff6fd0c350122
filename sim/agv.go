package sim

import "fmt"

// AGVState is the AGV lifecycle state. Values match the wire format of
// status payloads.
type AGVState string

const (
	AGVStateIdle      AGVState = "IDLE"
	AGVStateMoving    AGVState = "MOVING"
	AGVStateLoading   AGVState = "LOADING"
	AGVStateUnloading AGVState = "UNLOADING"
	AGVStateCharging  AGVState = "CHARGING"
)

// AGV behavior defaults. Layout values of zero fall back to these.
const (
	DefaultInitialBattery       = 100.0
	DefaultAGVSpeedMPS          = 1.0
	DefaultConsumptionPerMeter  = 0.1
	DefaultConsumptionPerAction = 0.5
	DefaultChargeRatePerSecond  = 2.0
	DefaultChargeTargetLevel    = 80.0
	DefaultLoadSeconds          = 1.0
	DefaultUnloadSeconds        = 1.0
)

// AGVConfig carries construction parameters for an AGV.
type AGVConfig struct {
	ID         string
	LineID     string
	StartPoint PointID

	InitialBattery       float64
	SpeedMPS             float64
	ConsumptionPerMeter  float64
	ConsumptionPerAction float64
	ChargeRatePerSecond  float64
	LoadSeconds          float64
	UnloadSeconds        float64
}

type taskKind string

const (
	taskMove   taskKind = "move"
	taskLoad   taskKind = "load"
	taskUnload taskKind = "unload"
	taskCharge taskKind = "charge"
)

type chargePhase int

const (
	chargePhaseTravel chargePhase = iota
	chargePhaseWaiting
	chargePhaseCharging
)

// agvTask is the in-flight task context kept between the command that
// started it and the completion event that finishes it.
type agvTask struct {
	kind      taskKind
	commandID string
	startedAt int64

	// move
	targetPoint PointID
	distance    float64
	cost        float64

	// load / unload
	device  *Device
	product *Product

	// charge
	phase       chargePhase
	targetLevel float64
	startLevel  float64
	chargePoint *ChargePoint
}

// AGV is an automated guided vehicle bound to one production line.
//
// Not thread-safe: only the simulation goroutine touches AGVs.
type AGV struct {
	ID     string
	LineID string

	state        AGVState
	currentPoint PointID
	battery      float64
	cargo        *Product
	faulted      bool

	speed       float64
	perMeter    float64
	perAction   float64
	chargeRate  float64
	loadTicks   int64
	unloadTicks int64

	task *agvTask

	// KPI accounting
	productiveTicks   int64
	chargingTicks     int64
	batterySpent      float64
	batterySpentCargo float64
}

// NewAGV validates the config, fills defaults, and builds the AGV.
func NewAGV(cfg AGVConfig) (*AGV, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("agv id must not be empty")
	}
	if cfg.StartPoint == "" {
		return nil, fmt.Errorf("agv %s: start point must not be empty", cfg.ID)
	}

	a := &AGV{
		ID:           cfg.ID,
		LineID:       cfg.LineID,
		state:        AGVStateIdle,
		currentPoint: cfg.StartPoint,
		battery:      cfg.InitialBattery,
		speed:        cfg.SpeedMPS,
		perMeter:     cfg.ConsumptionPerMeter,
		perAction:    cfg.ConsumptionPerAction,
		chargeRate:   cfg.ChargeRatePerSecond,
		loadTicks:    TicksFromSeconds(cfg.LoadSeconds),
		unloadTicks:  TicksFromSeconds(cfg.UnloadSeconds),
	}
	if a.battery == 0 {
		a.battery = DefaultInitialBattery
	}
	if a.battery < 0 || a.battery > 100 {
		return nil, fmt.Errorf("agv %s: battery_level must be in [0,100], got %v", cfg.ID, a.battery)
	}
	if a.speed == 0 {
		a.speed = DefaultAGVSpeedMPS
	}
	if a.speed < 0 {
		return nil, fmt.Errorf("agv %s: speed_mps must be positive, got %v", cfg.ID, a.speed)
	}
	if a.perMeter == 0 {
		a.perMeter = DefaultConsumptionPerMeter
	}
	if a.perAction == 0 {
		a.perAction = DefaultConsumptionPerAction
	}
	if a.chargeRate == 0 {
		a.chargeRate = DefaultChargeRatePerSecond
	}
	if a.chargeRate < 0 {
		return nil, fmt.Errorf("agv %s: charge_rate must be positive, got %v", cfg.ID, a.chargeRate)
	}
	if a.loadTicks <= 0 {
		a.loadTicks = TicksFromSeconds(DefaultLoadSeconds)
	}
	if a.unloadTicks <= 0 {
		a.unloadTicks = TicksFromSeconds(DefaultUnloadSeconds)
	}
	return a, nil
}

// State returns the current lifecycle state.
func (a *AGV) State() AGVState { return a.state }

// Point returns the current layout point.
func (a *AGV) Point() PointID { return a.currentPoint }

// Battery returns the battery level in percent.
func (a *AGV) Battery() float64 { return a.battery }

// Cargo returns the carried product, or nil.
func (a *AGV) Cargo() *Product { return a.cargo }

// Faulted reports the fault flag.
func (a *AGV) Faulted() bool { return a.faulted }

// SetFault sets or clears the fault flag. The in-flight task, if any,
// still runs to completion; only new tasks are gated.
func (a *AGV) SetFault(on bool) { a.faulted = on }

// MoveCost returns the battery cost of traveling the given distance.
func (a *AGV) MoveCost(distance float64) float64 {
	return distance*a.perMeter + a.perAction
}

// CanCompleteTask is the pure pre-flight battery check: distance in
// meters plus a number of load/unload actions. No mutation.
func (a *AGV) CanCompleteTask(distance float64, actions int) bool {
	return a.battery >= distance*a.perMeter+float64(actions)*a.perAction
}

// TravelTicks converts a distance into travel time at this AGV's speed.
func (a *AGV) TravelTicks(distance float64) int64 {
	return TicksFromSeconds(distance / a.speed)
}

// ensureIdle gates new task acceptance.
func (a *AGV) ensureIdle() error {
	if a.faulted {
		return fmt.Errorf("agv %s: %w", a.ID, ErrDeviceFault)
	}
	if a.state != AGVStateIdle {
		return fmt.Errorf("agv %s is %s: %w", a.ID, a.state, ErrBusy)
	}
	return nil
}

// BeginMove starts a move task toward target along the given shortest
// distance. Returns the arrival tick. The position and battery update
// at arrival; a parallel command meanwhile sees the busy state.
func (a *AGV) BeginMove(target PointID, distance float64, commandID string, now int64) (int64, error) {
	if err := a.ensureIdle(); err != nil {
		return 0, err
	}
	cost := a.MoveCost(distance)
	if a.battery < cost {
		return 0, fmt.Errorf("agv %s needs %.1f%% battery for %.1fm, has %.1f%%: %w",
			a.ID, cost, distance, a.battery, ErrInsufficientBattery)
	}
	a.state = AGVStateMoving
	a.task = &agvTask{
		kind:        taskMove,
		commandID:   commandID,
		startedAt:   now,
		targetPoint: target,
		distance:    distance,
		cost:        cost,
	}
	return now + a.TravelTicks(distance), nil
}

// FinishMove commits the arrival: position, battery, accounting. The
// finished task is returned for response publishing.
func (a *AGV) FinishMove(now int64) *agvTask {
	task := a.task
	a.currentPoint = task.targetPoint
	a.spendBattery(task.cost)
	a.productiveTicks += now - task.startedAt
	a.state = AGVStateIdle
	a.task = nil
	return task
}

// BeginLoad starts a load cycle: the product leaves the device buffer
// and becomes cargo immediately so no other actor can claim it, then
// the AGV is busy for the load duration.
func (a *AGV) BeginLoad(device *Device, product *Product, commandID string, now int64) (int64, error) {
	if err := a.ensureIdle(); err != nil {
		return 0, err
	}
	if a.cargo != nil {
		return 0, fmt.Errorf("agv %s already carries %s: %w", a.ID, a.cargo.ID, ErrCargoOccupied)
	}
	if a.battery < a.perAction {
		return 0, fmt.Errorf("agv %s needs %.1f%% battery to load, has %.1f%%: %w",
			a.ID, a.perAction, a.battery, ErrInsufficientBattery)
	}
	if device.Faulted() {
		return 0, fmt.Errorf("%s: %w", device.ID, ErrDeviceFault)
	}
	if err := device.Remove(product); err != nil {
		return 0, err
	}
	a.spendBattery(a.perAction)
	a.cargo = product
	product.State = ProductStateInTransit
	a.state = AGVStateLoading
	a.task = &agvTask{
		kind:      taskLoad,
		commandID: commandID,
		startedAt: now,
		device:    device,
		product:   product,
	}
	return now + a.loadTicks, nil
}

// BeginUnload starts an unload cycle into the device at the AGV's
// point. The product must expect that device as its next workflow
// stage; it enters the buffer immediately so the slot is reserved.
func (a *AGV) BeginUnload(device *Device, commandID string, now int64) (int64, error) {
	if err := a.ensureIdle(); err != nil {
		return 0, err
	}
	if a.cargo == nil {
		return 0, fmt.Errorf("agv %s: %w", a.ID, ErrNoCargo)
	}
	if a.battery < a.perAction {
		return 0, fmt.Errorf("agv %s needs %.1f%% battery to unload, has %.1f%%: %w",
			a.ID, a.perAction, a.battery, ErrInsufficientBattery)
	}
	next, ok := a.cargo.NextStage()
	if !ok || next.Device != device.ID {
		expected := DeviceID("none")
		if ok {
			expected = next.Device
		}
		return 0, fmt.Errorf("product %s expects %s next, not %s: %w",
			a.cargo.ID, expected, device.ID, ErrUnknownDevice)
	}
	if !device.CanAccept() {
		if device.Faulted() {
			return 0, fmt.Errorf("%s: %w", device.ID, ErrDeviceFault)
		}
		return 0, fmt.Errorf("%s: %w", device.ID, ErrBufferFull)
	}

	product := a.cargo
	if err := product.AdvanceTo(device.ID); err != nil {
		return 0, err
	}
	if err := device.Accept(product); err != nil {
		return 0, err
	}
	a.cargo = nil
	a.spendBattery(a.perAction)
	a.state = AGVStateUnloading
	a.task = &agvTask{
		kind:      taskUnload,
		commandID: commandID,
		startedAt: now,
		device:    device,
		product:   product,
	}
	return now + a.unloadTicks, nil
}

// FinishTransfer completes a load or unload cycle.
func (a *AGV) FinishTransfer(now int64) *agvTask {
	task := a.task
	a.productiveTicks += now - task.startedAt
	a.state = AGVStateIdle
	a.task = nil
	return task
}

// BeginChargeTravel starts the travel leg of a charge task toward the
// line's charging point. The travel itself is battery-checked like any
// move.
func (a *AGV) BeginChargeTravel(cp *ChargePoint, distance float64, targetLevel float64, commandID string, now int64) (int64, error) {
	if err := a.ensureIdle(); err != nil {
		return 0, err
	}
	cost := a.MoveCost(distance)
	if a.battery < cost {
		return 0, fmt.Errorf("agv %s needs %.1f%% battery to reach charge point, has %.1f%%: %w",
			a.ID, cost, a.battery, ErrInsufficientBattery)
	}
	a.state = AGVStateMoving
	a.task = &agvTask{
		kind:        taskCharge,
		commandID:   commandID,
		startedAt:   now,
		targetPoint: cp.Point,
		distance:    distance,
		cost:        cost,
		phase:       chargePhaseTravel,
		targetLevel: targetLevel,
		chargePoint: cp,
	}
	return now + a.TravelTicks(distance), nil
}

// ArriveAtChargePoint commits the travel leg of a charge task.
func (a *AGV) ArriveAtChargePoint(now int64) {
	task := a.task
	a.currentPoint = task.targetPoint
	a.spendBattery(task.cost)
	a.productiveTicks += now - task.startedAt
	a.state = AGVStateCharging
	task.phase = chargePhaseWaiting
	task.startedAt = now
}

// BeginChargeInPlace starts a charge task without a travel leg, used
// when the AGV already stands at the charging point.
func (a *AGV) BeginChargeInPlace(cp *ChargePoint, targetLevel float64, commandID string, now int64) error {
	if err := a.ensureIdle(); err != nil {
		return err
	}
	a.state = AGVStateCharging
	a.task = &agvTask{
		kind:        taskCharge,
		commandID:   commandID,
		startedAt:   now,
		phase:       chargePhaseWaiting,
		targetLevel: targetLevel,
		chargePoint: cp,
	}
	return nil
}

// StartCharging begins the linear ramp once a charger slot is held.
// Returns the completion tick. The target is capped at 100.
func (a *AGV) StartCharging(now int64) int64 {
	task := a.task
	if task.targetLevel > 100 {
		task.targetLevel = 100
	}
	task.phase = chargePhaseCharging
	task.startLevel = a.battery
	deficit := task.targetLevel - a.battery
	if deficit <= 0 {
		return now
	}
	return now + TicksFromSeconds(deficit/a.chargeRate)
}

// FinishCharge commits the charge: battery lands exactly on the target
// (or stays put when it was already above).
func (a *AGV) FinishCharge(now int64) *agvTask {
	task := a.task
	if a.battery < task.targetLevel {
		a.battery = task.targetLevel
	}
	a.chargingTicks += now - task.startedAt
	a.state = AGVStateIdle
	a.task = nil
	return task
}

// spendBattery decrements the battery and books KPI counters. Cargo
// weight does not change consumption, but spend while carrying counts
// toward the energy efficiency component.
func (a *AGV) spendBattery(amount float64) {
	a.battery -= amount
	if a.battery < 0 {
		a.battery = 0
	}
	a.batterySpent += amount
	if a.cargo != nil {
		a.batterySpentCargo += amount
	}
}

// ProductiveTicks returns time spent moving, loading, and unloading.
func (a *AGV) ProductiveTicks() int64 { return a.productiveTicks }

// ChargingTicks returns time spent waiting for and holding a charger.
func (a *AGV) ChargingTicks() int64 { return a.chargingTicks }

// BatterySpent returns total battery consumed, in percent points.
func (a *AGV) BatterySpent() float64 { return a.batterySpent }

// BatterySpentWithCargo returns battery consumed while carrying.
func (a *AGV) BatterySpentWithCargo() float64 { return a.batterySpentCargo }
