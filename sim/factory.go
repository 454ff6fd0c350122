package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/factory-sim/factory-sim/sim/telemetry"
	"github.com/factory-sim/factory-sim/sim/transport"
)

// Factory orchestration defaults.
const (
	// DefaultStatusIntervalSeconds is the heartbeat cadence for
	// republishing entity statuses.
	DefaultStatusIntervalSeconds = 1.0
	// DefaultCommandQueueCapacity bounds the command ingress queue.
	DefaultCommandQueueCapacity = 1024
)

// FactoryConfig assembles a complete simulation.
type FactoryConfig struct {
	// Seed keys the partitioned RNG. Same seed, same layout: identical run.
	Seed int64
	// TopicRoot namespaces the pub/sub surface; empty resolves through
	// the environment.
	TopicRoot string

	Lines []LineConfig
	// Globals are the factory-wide devices shared by all lines: the raw
	// material intake and the finished-goods warehouse.
	Globals []DeviceConfig

	Orders OrderGeneratorConfig
	KPI    KPIConfig

	// StatusIntervalSeconds between status heartbeats, default 1.
	StatusIntervalSeconds float64
	// CommandQueueCapacity bounds pending ingress commands, default 1024.
	CommandQueueCapacity int
	// DisableFaults switches fault injection off for every line.
	DisableFaults bool
}

// pendingCommand is one queued ingress item. Raw payloads parse inside
// the simulation goroutine so validation failures and response
// timestamps observe the virtual clock without racing it.
type pendingCommand struct {
	topicLine string
	payload   []byte
	cmd       *Command
}

// Factory owns the event loop, the entity graph, and the pub/sub
// surface of one simulation. All simulation state belongs to the
// goroutine that calls RunUntil; other goroutines interact only
// through Submit and SubmitRaw.
type Factory struct {
	clock       int64
	heap        *EventHeap
	nextEventID uint64

	lines     map[string]*Line
	lineOrder []string

	globals     map[DeviceID]*Device
	globalOrder []DeviceID

	rng      *PartitionedRNG
	orderGen *OrderGenerator
	kpi      *KPICalculator

	topics    Topics
	publisher transport.Publisher
	recorder  telemetry.Recorder
	metrics   *Metrics

	statusEvery int64

	mu       sync.Mutex
	pending  []pendingCommand
	maxQueue int

	// backlog holds products that did not fit the raw material intake,
	// in arrival order.
	backlog []*Product
}

// NewFactory validates the config, builds the entity graph, and seeds
// the recurring schedules. A nil publisher discards output; a nil
// recorder skips telemetry.
func NewFactory(cfg FactoryConfig, publisher transport.Publisher, recorder telemetry.Recorder) (*Factory, error) {
	if publisher == nil {
		publisher = transport.Discard{}
	}
	if recorder == nil {
		recorder = telemetry.Noop{}
	}
	if len(cfg.Lines) == 0 {
		return nil, fmt.Errorf("factory requires at least one production line")
	}

	statusInterval := cfg.StatusIntervalSeconds
	if statusInterval == 0 {
		statusInterval = DefaultStatusIntervalSeconds
	}
	if statusInterval < 0 {
		return nil, fmt.Errorf("status interval_s must be positive, got %v", statusInterval)
	}
	queueCap := cfg.CommandQueueCapacity
	if queueCap == 0 {
		queueCap = DefaultCommandQueueCapacity
	}
	if queueCap < 1 {
		return nil, fmt.Errorf("command queue capacity must be >= 1, got %d", queueCap)
	}

	orderGen, err := NewOrderGenerator(cfg.Orders)
	if err != nil {
		return nil, err
	}
	kpi, err := NewKPICalculator(cfg.KPI)
	if err != nil {
		return nil, err
	}

	f := &Factory{
		heap:        NewEventHeap(),
		lines:       make(map[string]*Line, len(cfg.Lines)),
		globals:     make(map[DeviceID]*Device, len(cfg.Globals)),
		rng:         NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		orderGen:    orderGen,
		kpi:         kpi,
		topics:      NewTopics(cfg.TopicRoot),
		publisher:   publisher,
		recorder:    recorder,
		metrics:     &Metrics{},
		statusEvery: TicksFromSeconds(statusInterval),
		maxQueue:    queueCap,
	}

	for _, lc := range cfg.Lines {
		line, err := NewLine(lc)
		if err != nil {
			return nil, err
		}
		if _, dup := f.lines[line.ID]; dup {
			return nil, fmt.Errorf("duplicate line id %q", line.ID)
		}
		f.lines[line.ID] = line
		f.lineOrder = append(f.lineOrder, line.ID)
	}

	for _, dc := range cfg.Globals {
		if dc.Kind != DeviceKindRawMaterial && dc.Kind != DeviceKindWarehouse {
			return nil, fmt.Errorf("global device %s: kind must be raw_material or warehouse, got %q", dc.ID, dc.Kind)
		}
		d, err := NewDevice(dc)
		if err != nil {
			return nil, err
		}
		if _, dup := f.globals[d.ID]; dup {
			return nil, fmt.Errorf("duplicate global device id %q", d.ID)
		}
		f.globals[d.ID] = d
		f.globalOrder = append(f.globalOrder, d.ID)
	}

	kpi.SetTheoreticalCycle(f.theoreticalCycles())

	f.schedule(NewOrderGenerationEvent(orderGen.IntervalTicks(), f.nextID()))
	f.schedule(NewKPITickEvent(kpi.IntervalTicks(), f.nextID()))
	f.schedule(NewStatusTickEvent(f.statusEvery, f.nextID()))
	if !cfg.DisableFaults {
		for _, id := range f.lineOrder {
			line := f.lines[id]
			if !line.Faults().Enabled() {
				continue
			}
			gap := line.Faults().NextInterval(f.faultsRNG(line))
			f.schedule(NewFaultStartEvent(gap, line, f.nextID()))
		}
	}
	return f, nil
}

// theoreticalCycles sums mean stage durations per product type: mean
// processing time at stations and quality checks, transit time on
// conveyors. These are the baselines the production cycle score
// compares actual cycle times against.
func (f *Factory) theoreticalCycles() map[ProductType]int64 {
	out := make(map[ProductType]int64, len(KnownProductTypes))
	for _, t := range KnownProductTypes {
		wf, err := WorkflowFor(t)
		if err != nil {
			continue
		}
		var total int64
		for _, stage := range wf {
			d := f.stageDevice(stage.Device)
			if d == nil {
				continue
			}
			switch {
			case d.IsProcessingKind():
				total += d.MeanProcessTicks()
			case d.Kind == DeviceKindConveyor:
				total += d.TransitTicks()
			}
		}
		out[t] = total
	}
	return out
}

// stageDevice resolves a workflow device ID against the first line
// that defines it, falling back to factory globals. Lines share one
// layout pattern, so the first match prices the baseline.
func (f *Factory) stageDevice(id DeviceID) *Device {
	for _, lineID := range f.lineOrder {
		if d, ok := f.lines[lineID].Device(id); ok {
			return d
		}
	}
	return f.globals[id]
}

// Clock returns the current virtual time in ticks.
func (f *Factory) Clock() int64 { return f.clock }

// Topics returns the topic builder for this factory's namespace.
func (f *Factory) Topics() Topics { return f.topics }

// Metrics returns the engine counters.
func (f *Factory) Metrics() *Metrics { return f.metrics }

// Line returns a production line by ID.
func (f *Factory) Line(id string) (*Line, bool) {
	l, ok := f.lines[id]
	return l, ok
}

// Lines returns the production lines in declaration order.
func (f *Factory) Lines() []*Line {
	out := make([]*Line, 0, len(f.lineOrder))
	for _, id := range f.lineOrder {
		out = append(out, f.lines[id])
	}
	return out
}

// GlobalDevice returns a factory-global device by ID.
func (f *Factory) GlobalDevice(id DeviceID) (*Device, bool) {
	d, ok := f.globals[id]
	return d, ok
}

// OrderBook returns the order generator, which doubles as the order
// registry.
func (f *Factory) OrderBook() *OrderGenerator { return f.orderGen }

// Snapshot computes the current KPI scores from live accumulators.
func (f *Factory) Snapshot() KPISnapshot {
	return f.kpi.Compute(f.kpiInputs())
}

// BacklogLen returns the number of products waiting for intake space.
func (f *Factory) BacklogLen() int { return len(f.backlog) }

func (f *Factory) nextID() uint64 {
	id := f.nextEventID
	f.nextEventID++
	return id
}

func (f *Factory) schedule(ev Event) {
	f.heap.Schedule(ev)
}

func (f *Factory) faultsRNG(line *Line) *rand.Rand {
	return f.rng.ForSubsystem(SubsystemFaults(line.ID))
}

// Submit queues a pre-built command as if it had arrived on the given
// line's command topic. Safe to call from any goroutine.
func (f *Factory) Submit(topicLine string, cmd Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) >= f.maxQueue {
		return ErrQueueFull
	}
	f.pending = append(f.pending, pendingCommand{topicLine: topicLine, cmd: &cmd})
	return nil
}

// SubmitRaw queues a raw payload from a command topic. Parsing happens
// later on the simulation goroutine. Safe to call from any goroutine.
func (f *Factory) SubmitRaw(topic string, payload []byte) error {
	lineID, ok := f.topics.ParseCommandLine(topic)
	if !ok {
		return fmt.Errorf("topic %q is not a command topic", topic)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) >= f.maxQueue {
		return ErrQueueFull
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	f.pending = append(f.pending, pendingCommand{topicLine: lineID, payload: buf})
	return nil
}

// drainCommands moves queued ingress into the event heap at the
// current tick. Queue order is preserved, so equal-tick commands
// execute in submission order.
func (f *Factory) drainCommands() {
	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	f.mu.Unlock()

	for _, pc := range pending {
		cmd := pc.cmd
		if cmd == nil {
			var parsed Command
			if err := json.Unmarshal(pc.payload, &parsed); err != nil {
				f.metrics.CommandsRejected++
				f.recorder.CommandProcessed(metricAction(""), telemetry.OutcomeRejected)
				f.respond(pc.topicLine, "", fmt.Sprintf("Failed to process command: %v", err))
				continue
			}
			cmd = &parsed
		}
		cmd.Normalize(pc.topicLine)
		if err := cmd.Validate(); err != nil {
			f.metrics.CommandsRejected++
			f.recorder.CommandProcessed(metricAction(cmd.Action), telemetry.OutcomeRejected)
			f.respond(cmd.LineID, cmd.CommandID, fmt.Sprintf("Failed to validate command: %v", err))
			continue
		}
		f.schedule(NewCommandArrivalEvent(f.clock, *cmd, f.nextID()))
	}
}

// RunUntil drains queued commands, then executes events up to and
// including the given tick. The clock lands exactly on until so
// elapsed-time scores match the horizon.
func (f *Factory) RunUntil(until int64) {
	f.drainCommands()
	for {
		next := f.heap.Peek()
		if next == nil || next.Timestamp() > until {
			break
		}
		ev := f.heap.PopNext()
		if ev.Timestamp() < f.clock {
			panic(fmt.Sprintf("event %s at tick %d is before clock %d", ev.Type(), ev.Timestamp(), f.clock))
		}
		f.clock = ev.Timestamp()
		logrus.Debugf("[tick %07d] Executing %s", f.clock, ev.Type())
		ev.Execute(f)
		f.metrics.EventsExecuted++
		f.recorder.EventExecuted(string(ev.Type()))
	}
	if until > f.clock {
		f.clock = until
	}
	f.recorder.ClockSeconds(SecondsFromTicks(f.clock))
}

// RunRealTime advances one virtual second per wall second until the
// duration elapses or the context is canceled. seconds <= 0 runs until
// cancellation.
func (f *Factory) RunRealTime(ctx context.Context, seconds int64) error {
	limiter := rate.NewLimiter(1, 1)
	for i := int64(0); seconds <= 0 || i < seconds; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		f.RunUntil(f.clock + TicksPerSecond)
	}
	return nil
}

// === command dispatch ===

func (f *Factory) handleCommandArrival(e *CommandArrivalEvent) {
	cmd := e.Command
	line, ok := f.lines[cmd.LineID]
	if !ok {
		f.reject(cmd, fmt.Sprintf("Production line '%s' not found.", cmd.LineID))
		return
	}
	switch cmd.Action {
	case ActionMove:
		f.handleMove(line, cmd)
	case ActionLoad:
		f.handleLoad(line, cmd)
	case ActionUnload:
		f.handleUnload(line, cmd)
	case ActionCharge:
		f.handleCharge(line, cmd)
	case ActionGetResult:
		f.handleGetResult(cmd)
	default:
		f.reject(cmd, fmt.Sprintf("Unknown action: %s", cmd.Action))
	}
}

func (f *Factory) handleMove(line *Line, cmd Command) {
	if cmd.Params.TargetPoint == "" {
		f.reject(cmd, "'target_point' missing in move command.")
		return
	}
	agv, ok := line.AGV(cmd.Target)
	if !ok {
		f.reject(cmd, fmt.Sprintf("AGV '%s' not found in line '%s'.", cmd.Target, line.ID))
		return
	}
	target := PointID(cmd.Params.TargetPoint)
	distance, err := line.Distance(agv.Point(), target)
	if err != nil {
		f.reject(cmd, err.Error())
		return
	}
	doneAt, err := agv.BeginMove(target, distance, cmd.CommandID, f.clock)
	if err != nil {
		f.reject(cmd, err.Error())
		return
	}
	f.accept(cmd)
	f.schedule(NewAGVMoveDoneEvent(doneAt, line, agv, f.nextID()))
	f.publishAGV(line, agv)
}

func (f *Factory) handleLoad(line *Line, cmd Command) {
	agv, ok := line.AGV(cmd.Target)
	if !ok {
		f.reject(cmd, fmt.Sprintf("AGV %s not found in line %s", cmd.Target, line.ID))
		return
	}
	deviceID, ok := line.DeviceAtPoint(agv.Point())
	if !ok {
		f.reject(cmd, fmt.Sprintf("No device can be operated for %s at position %s", agv.ID, agv.Point()))
		return
	}
	device := f.findDevice(line, deviceID)
	if device == nil {
		f.reject(cmd, fmt.Sprintf("Device '%s' not found in line '%s' or factory.", deviceID, line.ID))
		return
	}
	product, err := f.pickLoadProduct(device, cmd.Params.ProductID)
	if err != nil {
		f.reject(cmd, err.Error())
		return
	}
	doneAt, err := agv.BeginLoad(device, product, cmd.CommandID, f.clock)
	if err != nil {
		f.reject(cmd, err.Error())
		return
	}
	if device.Kind == DeviceKindRawMaterial {
		// Products bind to the line that picks them up.
		product.LineID = line.ID
		if f.orderGen.MarkInProgress(product.OrderID) {
			f.publishOrder(product.OrderID)
		}
		f.drainBacklog()
	}
	f.accept(cmd)
	f.schedule(NewAGVTransferDoneEvent(doneAt, line, agv, f.nextID()))
	f.publishAGV(line, agv)
	f.publishDevice(line, device)
	f.pump(line)
}

// pickLoadProduct chooses what the AGV takes: a specific ready product
// when requested at the raw material intake, otherwise the oldest
// ready one.
func (f *Factory) pickLoadProduct(device *Device, productID string) (*Product, error) {
	if productID != "" && device.Kind == DeviceKindRawMaterial {
		if p := device.FindReadyProduct(productID); p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("product %s not in %s: %w", productID, device.ID, ErrBufferEmpty)
	}
	if p := device.ReadyProduct(); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%s has no product ready to load: %w", device.ID, ErrBufferEmpty)
}

func (f *Factory) handleUnload(line *Line, cmd Command) {
	agv, ok := line.AGV(cmd.Target)
	if !ok {
		f.reject(cmd, fmt.Sprintf("AGV %s not found in line %s", cmd.Target, line.ID))
		return
	}
	deviceID, ok := line.DeviceAtPoint(agv.Point())
	if !ok {
		f.reject(cmd, fmt.Sprintf("No device mapping found for AGV %s at position %s", agv.ID, agv.Point()))
		return
	}
	device := f.findDevice(line, deviceID)
	if device == nil {
		f.reject(cmd, fmt.Sprintf("Device %s not found in line %s or factory.", deviceID, line.ID))
		return
	}
	doneAt, err := agv.BeginUnload(device, cmd.CommandID, f.clock)
	if err != nil {
		f.reject(cmd, err.Error())
		return
	}
	f.accept(cmd)
	f.schedule(NewAGVTransferDoneEvent(doneAt, line, agv, f.nextID()))
	f.publishAGV(line, agv)
	f.publishDevice(line, device)
}

func (f *Factory) handleCharge(line *Line, cmd Command) {
	agv, ok := line.AGV(cmd.Target)
	if !ok {
		f.reject(cmd, fmt.Sprintf("AGV '%s' not found in line '%s'.", cmd.Target, line.ID))
		return
	}
	targetLevel := cmd.Params.TargetLevel
	if targetLevel == 0 {
		f.respond(cmd.LineID, cmd.CommandID, "'target_level' missing in charge command, will charge to 80 by default")
		targetLevel = DefaultChargeTargetLevel
	}
	cp := line.ChargePoint()
	if agv.Point() == cp.Point {
		if err := agv.BeginChargeInPlace(cp, targetLevel, cmd.CommandID, f.clock); err != nil {
			f.reject(cmd, err.Error())
			return
		}
		f.accept(cmd)
		f.startChargeIfSlotFree(line, agv)
		f.publishAGV(line, agv)
		return
	}
	distance, err := line.Distance(agv.Point(), cp.Point)
	if err != nil {
		f.reject(cmd, err.Error())
		return
	}
	doneAt, err := agv.BeginChargeTravel(cp, distance, targetLevel, cmd.CommandID, f.clock)
	if err != nil {
		f.reject(cmd, err.Error())
		return
	}
	f.accept(cmd)
	f.schedule(NewAGVMoveDoneEvent(doneAt, line, agv, f.nextID()))
	f.publishAGV(line, agv)
}

func (f *Factory) handleGetResult(cmd Command) {
	snapshot := f.kpi.Compute(f.kpiInputs())
	f.publishTo(f.topics.Result(), snapshot)
	f.accept(cmd)
	f.respond(cmd.LineID, cmd.CommandID, fmt.Sprintf("Results published to %s", f.topics.Result()))
}

// === task completion ===

func (f *Factory) handleAGVMoveDone(e *AGVMoveDoneEvent) {
	agv := e.AGV
	if agv.task != nil && agv.task.kind == taskCharge {
		agv.ArriveAtChargePoint(f.clock)
		f.publishAGV(e.Line, agv)
		f.startChargeIfSlotFree(e.Line, agv)
		return
	}
	done := agv.FinishMove(f.clock)
	f.respond(e.Line.ID, done.commandID, fmt.Sprintf("AGV %s moved to %s", agv.ID, done.targetPoint))
	f.publishAGV(e.Line, agv)
	f.recorder.AGVBattery(e.Line.ID, agv.ID, agv.Battery())
}

func (f *Factory) handleAGVTransferDone(e *AGVTransferDoneEvent) {
	agv := e.AGV
	line := e.Line
	done := agv.FinishTransfer(f.clock)
	switch done.kind {
	case taskLoad:
		f.respond(line.ID, done.commandID, fmt.Sprintf("AGV %s loaded %s from %s", agv.ID, done.product.ID, done.device.ID))
	case taskUnload:
		f.respond(line.ID, done.commandID, fmt.Sprintf("AGV %s unloaded %s to %s", agv.ID, done.product.ID, done.device.ID))
		f.afterUnload(line, done.device, done.product)
	}
	f.publishAGV(line, agv)
	f.recorder.AGVBattery(line.ID, agv.ID, agv.Battery())
}

// afterUnload routes post-unload bookkeeping: deliveries close out at
// the warehouse, stations may start processing, conveyors begin
// transit.
func (f *Factory) afterUnload(line *Line, device *Device, product *Product) {
	switch device.Kind {
	case DeviceKindWarehouse:
		f.recordDelivery(product)
	case DeviceKindStation, DeviceKindQualityCheck:
		f.maybeStartWork(line, device)
	case DeviceKindConveyor:
		f.scheduleConveyor(line, device, product)
	}
	f.publishDevice(line, device)
}

func (f *Factory) handleAGVChargeDone(e *AGVChargeDoneEvent) {
	agv := e.AGV
	line := e.Line
	done := agv.FinishCharge(f.clock)
	f.respond(line.ID, done.commandID, fmt.Sprintf("AGV %s charged to %.0f%%", agv.ID, agv.Battery()))
	f.publishAGV(line, agv)
	f.recorder.AGVBattery(line.ID, agv.ID, agv.Battery())
	if next := done.chargePoint.Release(agv); next != nil {
		f.beginChargeRamp(line, next)
	}
}

// startChargeIfSlotFree acquires a charger slot for an AGV standing at
// the charge point. Without a free slot the AGV stays in the wait
// queue and is promoted on Release.
func (f *Factory) startChargeIfSlotFree(line *Line, agv *AGV) {
	if !line.ChargePoint().Acquire(agv) {
		return
	}
	f.beginChargeRamp(line, agv)
}

// beginChargeRamp records the charge for scoring at its actual start
// level and schedules completion.
func (f *Factory) beginChargeRamp(line *Line, agv *AGV) {
	f.kpi.RecordChargeStart(agv.Battery())
	doneAt := agv.StartCharging(f.clock)
	f.schedule(NewAGVChargeDoneEvent(doneAt, line, agv, f.nextID()))
}

// === processing and flow ===

func (f *Factory) handleProcessDone(e *ProcessDoneEvent) {
	device := e.Device
	line := e.Line
	device.EndWork(e.Product)
	if device.Kind == DeviceKindQualityCheck {
		f.applyQualityDraw(line, device, e.Product)
	}
	f.publishDevice(line, device)
	f.maybeStartWork(line, device)
	f.pump(line)
}

// applyQualityDraw settles the quality outcome for a product leaving
// the quality check. Failures are scrapped on the spot.
func (f *Factory) applyQualityDraw(line *Line, device *Device, product *Product) {
	draw := f.rng.ForSubsystem(SubsystemQuality(line.ID)).Float64()
	if draw < device.YieldProbability() {
		f.kpi.RecordQCPass()
		return
	}
	product.State = ProductStateScrapped
	if err := device.Remove(product); err != nil {
		panic(fmt.Sprintf("scrap removal: %v", err))
	}
	f.kpi.RecordQCScrap()
	f.metrics.ProductsScrapped++
	f.recorder.ProductScrapped()
	logrus.Debugf("[tick %07d] %s scrapped %s", f.clock, device.ID, product.ID)
	f.publishTo(f.topics.Alerts(line.ID), Alert{
		DeviceID:  string(device.ID),
		FaultType: AlertScrap,
		ProductID: product.ID,
	})
}

// maybeStartWork begins processing the oldest waiting product when the
// device is free. Busy time books at start, when the duration is
// drawn. Faulted devices do not start new work.
func (f *Factory) maybeStartWork(line *Line, device *Device) {
	if !device.IsProcessingKind() || device.Faulted() || !device.WorkIdle() {
		return
	}
	product := device.OldestWaiting()
	if product == nil {
		return
	}
	rng := f.rng.ForSubsystem(SubsystemProcessing(line.ID, string(device.ID)))
	ticks := device.SampleProcessTicks(rng)
	device.BeginWork(product)
	device.AddBusyTicks(ticks)
	f.schedule(NewProcessDoneEvent(f.clock+ticks, line, device, product, f.nextID()))
	f.publishDevice(line, device)
}

func (f *Factory) handleConveyorArrive(e *ConveyorArriveEvent) {
	e.Product.State = ProductStateReady
	f.publishDevice(e.Line, e.Device)
	f.pump(e.Line)
}

// scheduleConveyor books transit for a product that just entered a
// conveyor.
func (f *Factory) scheduleConveyor(line *Line, device *Device, product *Product) {
	f.schedule(NewConveyorArriveEvent(f.clock+device.TransitTicks(), line, device, product, f.nextID()))
}

// pump advances ready products whose next stage is conveyor-fed,
// repeating until nothing can move. Devices scan in declaration order
// so same-tick moves are deterministic. AGV-fed stages always wait for
// a command.
func (f *Factory) pump(line *Line) {
	for moved := true; moved; {
		moved = false
		for _, device := range line.Devices() {
			if device.Faulted() {
				continue
			}
			for _, product := range device.Products() {
				if product.State != ProductStateReady {
					continue
				}
				next, ok := product.NextStage()
				if !ok || next.Mode != TransportAuto {
					continue
				}
				target := f.findDevice(line, next.Device)
				if target == nil || !target.CanAccept() {
					continue
				}
				f.transferAuto(line, device, target, product)
				moved = true
			}
		}
	}
}

// transferAuto commits one conveyor-fed hop. The pre-checks in pump
// make each step infallible; a failure here is a corrupted workflow.
func (f *Factory) transferAuto(line *Line, from, to *Device, p *Product) {
	if err := from.Remove(p); err != nil {
		panic(fmt.Sprintf("auto transfer %s: %v", p.ID, err))
	}
	if err := p.AdvanceTo(to.ID); err != nil {
		panic(fmt.Sprintf("auto transfer %s: %v", p.ID, err))
	}
	if err := to.Accept(p); err != nil {
		panic(fmt.Sprintf("auto transfer %s: %v", p.ID, err))
	}
	switch to.Kind {
	case DeviceKindConveyor:
		f.scheduleConveyor(line, to, p)
	case DeviceKindStation, DeviceKindQualityCheck:
		f.maybeStartWork(line, to)
	case DeviceKindWarehouse:
		f.recordDelivery(p)
	}
	if from.Kind == DeviceKindRawMaterial {
		f.drainBacklog()
	}
	f.publishDevice(line, from)
	f.publishDevice(line, to)
}

// recordDelivery closes out a product that reached the warehouse and
// completes its order when it was the last one.
func (f *Factory) recordDelivery(product *Product) {
	product.CompletedAt = f.clock
	f.kpi.RecordDelivery(product.Type, f.clock-product.CreatedAt)
	f.metrics.ProductsDelivered++
	if f.orderGen.RecordDelivered(product.OrderID, f.clock) {
		f.metrics.OrdersCompleted++
		f.recorder.OrderCompleted()
		f.publishOrder(product.OrderID)
		logrus.Debugf("[tick %07d] order %s completed", f.clock, product.OrderID)
	}
}

// === faults ===

func (f *Factory) handleFaultStart(e *FaultStartEvent) {
	line := e.Line
	faults := line.Faults()
	rng := f.faultsRNG(line)

	targetID, isAGV, ok := faults.PickTarget(line, rng)
	if ok {
		fe := faults.Begin(targetID, isAGV, f.clock, rng)
		if isAGV {
			if agv, found := line.AGV(targetID); found {
				agv.SetFault(true)
				f.publishAGV(line, agv)
			}
		} else if device, found := line.Device(DeviceID(targetID)); found {
			device.SetFault(true)
			f.publishDevice(line, device)
		}
		f.kpi.RecordFault()
		f.metrics.FaultsInjected++
		f.recorder.FaultInjected()
		logrus.Infof("[tick %07d] fault on %s/%s for %.1fs", f.clock, line.ID, targetID, SecondsFromTicks(fe.Duration))
		f.publishTo(f.topics.Alerts(line.ID), Alert{
			DeviceID:        targetID,
			FaultType:       AlertFault,
			DurationSeconds: SecondsFromTicks(fe.Duration),
		})
		f.schedule(NewFaultEndEvent(f.clock+fe.Duration, line, fe, f.nextID()))
	}
	f.schedule(NewFaultStartEvent(f.clock+faults.NextInterval(rng), line, f.nextID()))
}

func (f *Factory) handleFaultEnd(e *FaultEndEvent) {
	line := e.Line
	fe := e.Fault
	line.Faults().End(fe)
	if fe.IsAGV {
		if agv, ok := line.AGV(fe.TargetID); ok {
			agv.SetFault(false)
			f.publishAGV(line, agv)
		}
	} else if device, ok := line.Device(DeviceID(fe.TargetID)); ok {
		device.SetFault(false)
		f.publishDevice(line, device)
		f.maybeStartWork(line, device)
	}
	logrus.Infof("[tick %07d] %s/%s recovered", f.clock, line.ID, fe.TargetID)
	f.publishTo(f.topics.Alerts(line.ID), Alert{
		DeviceID:  fe.TargetID,
		FaultType: AlertRecovery,
	})
	f.pump(line)
}

// === orders ===

func (f *Factory) handleOrderGeneration(e *OrderGenerationEvent) {
	draws := f.rng.ForSubsystem(SubsystemOrders)
	ids := f.rng.ForSubsystem(SubsystemIdentity)
	order, products, err := f.orderGen.Generate(f.clock, draws, ids)
	if err != nil {
		logrus.Warnf("[tick %07d] order generation: %v", f.clock, err)
	} else {
		f.metrics.OrdersCreated++
		f.metrics.ProductsCreated += len(products)
		f.kpi.RecordProductsCreated(len(products))
		f.stockRawMaterial(products)
		f.publishOrder(order.ID)
		logrus.Debugf("[tick %07d] order %s: %d x %s (%s)", f.clock, order.ID, order.Quantity, order.ProductType, order.Priority)
	}
	f.schedule(NewOrderGenerationEvent(f.clock+f.orderGen.IntervalTicks(), f.nextID()))
}

// stockRawMaterial feeds new products into the raw material intake,
// spilling into the backlog when the buffer is full.
func (f *Factory) stockRawMaterial(products []*Product) {
	intake := f.rawMaterial()
	for _, p := range products {
		if intake != nil && intake.CanAccept() {
			if err := intake.Accept(p); err == nil {
				continue
			}
		}
		f.backlog = append(f.backlog, p)
	}
	if intake != nil {
		f.publishGlobal(intake)
	}
}

// rawMaterial returns the factory's raw material intake, or nil.
func (f *Factory) rawMaterial() *Device {
	for _, id := range f.globalOrder {
		if d := f.globals[id]; d.Kind == DeviceKindRawMaterial {
			return d
		}
	}
	return nil
}

// drainBacklog moves spilled products into freed intake slots in
// arrival order.
func (f *Factory) drainBacklog() {
	intake := f.rawMaterial()
	if intake == nil || len(f.backlog) == 0 {
		return
	}
	n := 0
	for _, p := range f.backlog {
		if !intake.CanAccept() {
			break
		}
		if err := intake.Accept(p); err != nil {
			break
		}
		n++
	}
	if n > 0 {
		f.backlog = f.backlog[n:]
		f.publishGlobal(intake)
	}
}

// === periodic ticks ===

func (f *Factory) handleKPITick(e *KPITickEvent) {
	snapshot := f.kpi.Compute(f.kpiInputs())
	f.publishTo(f.topics.KPI(), snapshot)
	f.schedule(NewKPITickEvent(f.clock+f.kpi.IntervalTicks(), f.nextID()))
}

func (f *Factory) handleStatusTick(e *StatusTickEvent) {
	var activeFaults int
	for _, lineID := range f.lineOrder {
		line := f.lines[lineID]
		for _, device := range line.Devices() {
			f.publishDevice(line, device)
		}
		for _, agv := range line.AGVs() {
			f.publishAGV(line, agv)
			f.recorder.AGVBattery(line.ID, agv.ID, agv.Battery())
		}
		activeFaults += line.Faults().ActiveFaultCount()
	}
	for _, id := range f.globalOrder {
		f.publishGlobal(f.globals[id])
	}
	f.kpi.RecordFaultSample(activeFaults, f.statusEvery)
	f.schedule(NewStatusTickEvent(f.clock+f.statusEvery, f.nextID()))
}

// kpiInputs gathers the live accumulator readings the score
// computation needs.
func (f *Factory) kpiInputs() kpiInputs {
	in := kpiInputs{
		now:             f.clock,
		ordersCreated:   f.orderGen.CreatedCount(),
		ordersCompleted: f.orderGen.CompletedCount(),
	}
	for _, lineID := range f.lineOrder {
		line := f.lines[lineID]
		for _, device := range line.Devices() {
			if device.IsProcessingKind() {
				in.processingBusyTicks += device.BusyTicks()
				in.processingDevices++
			}
			in.deviceBusyTicksAll += device.BusyTicks()
		}
		for _, agv := range line.AGVs() {
			in.agvCount++
			in.agvProductiveTicks += agv.ProductiveTicks()
			in.agvBatterySpent += agv.BatterySpent()
			in.agvBatteryCargo += agv.BatterySpentWithCargo()
		}
	}
	return in
}

// === resolution and publishing ===

// findDevice resolves a device ID against the line first, then the
// factory globals.
func (f *Factory) findDevice(line *Line, id DeviceID) *Device {
	if d, ok := line.Device(id); ok {
		return d
	}
	if d, ok := f.globals[id]; ok {
		return d
	}
	return nil
}

func (f *Factory) accept(cmd Command) {
	f.metrics.CommandsAccepted++
	f.recorder.CommandProcessed(metricAction(cmd.Action), telemetry.OutcomeAccepted)
}

func (f *Factory) reject(cmd Command, text string) {
	f.metrics.CommandsRejected++
	f.recorder.CommandProcessed(metricAction(cmd.Action), telemetry.OutcomeRejected)
	logrus.Debugf("[tick %07d] command %s rejected: %s", f.clock, cmd.Action, text)
	f.respond(cmd.LineID, cmd.CommandID, text)
}

// metricAction caps the command label set: anything outside the known
// actions reports as "invalid" so junk input cannot explode label
// cardinality.
func metricAction(action string) string {
	switch action {
	case ActionMove, ActionLoad, ActionUnload, ActionCharge, ActionGetResult:
		return action
	}
	return "invalid"
}

func (f *Factory) respond(lineID, commandID, text string) {
	f.publishTo(f.topics.Response(lineID), CommandResponse{
		Timestamp: SecondsFromTicks(f.clock),
		CommandID: commandID,
		Response:  text,
	})
}

func (f *Factory) publishTo(topic string, payload any) {
	if err := f.publisher.Publish(topic, payload); err != nil {
		logrus.Warnf("[tick %07d] publish %s: %v", f.clock, topic, err)
	}
}

func (f *Factory) publishDevice(line *Line, device *Device) {
	f.publishTo(f.topics.DeviceStatus(line.ID, device), device.WireStatus())
}

func (f *Factory) publishGlobal(device *Device) {
	f.publishTo(f.topics.Warehouse(string(device.ID)), device.WireStatus())
}

func (f *Factory) publishAGV(line *Line, agv *AGV) {
	f.publishTo(f.topics.AGV(line.ID, agv.ID), agv.WireStatus())
}

func (f *Factory) publishOrder(orderID string) {
	o, ok := f.orderGen.Order(orderID)
	if !ok {
		return
	}
	f.publishTo(f.topics.Orders(), OrderStatus{
		OrderID:     o.ID,
		ProductType: string(o.ProductType),
		Quantity:    o.Quantity,
		Priority:    string(o.Priority),
		Status:      string(o.Status),
		Products:    o.ProductIDs,
		Timestamp:   SecondsFromTicks(f.clock),
	})
}
