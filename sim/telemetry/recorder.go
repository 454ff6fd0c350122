// Package telemetry exposes operational counters from a running
// simulation. The engine reports through the Recorder interface; the
// prometheus implementation backs the serve mode /metrics endpoint and
// Noop serves batch runs and tests.
package telemetry

// Recorder receives operational events from the simulation engine.
// Implementations must be safe for calls from the simulation goroutine.
type Recorder interface {
	// EventExecuted counts one executed simulation event by type.
	EventExecuted(eventType string)
	// CommandProcessed counts one external command by action and
	// outcome ("accepted" or "rejected").
	CommandProcessed(action, outcome string)
	// OrderCompleted counts one fully delivered order.
	OrderCompleted()
	// ProductScrapped counts one quality check failure.
	ProductScrapped()
	// FaultInjected counts one injected fault.
	FaultInjected()
	// ClockSeconds reports the current virtual time.
	ClockSeconds(seconds float64)
	// AGVBattery reports one AGV's battery level.
	AGVBattery(lineID, agvID string, level float64)
}

// Noop discards all reports.
type Noop struct{}

var _ Recorder = Noop{}

func (Noop) EventExecuted(string)               {}
func (Noop) CommandProcessed(string, string)    {}
func (Noop) OrderCompleted()                    {}
func (Noop) ProductScrapped()                   {}
func (Noop) FaultInjected()                     {}
func (Noop) ClockSeconds(float64)               {}
func (Noop) AGVBattery(string, string, float64) {}
