package sim

import (
	"fmt"
	"math/rand"
)

// Fault injection defaults.
const (
	DefaultFaultMeanIntervalSeconds = 120.0
	DefaultFaultMinDurationSeconds  = 10.0
	DefaultFaultMaxDurationSeconds  = 30.0
)

// FaultConfig tunes a line's fault injector.
type FaultConfig struct {
	// Disabled switches injection off for this line. The factory-wide
	// no-faults mode overrides this.
	Disabled bool

	// MeanIntervalSeconds is the mean of the exponential gap between
	// fault starts.
	MeanIntervalSeconds float64
	// Duration is drawn uniformly from [Min,Max] seconds.
	MinDurationSeconds float64
	MaxDurationSeconds float64
}

// FaultEvent is one injected fault instance.
type FaultEvent struct {
	LineID   string
	TargetID string
	IsAGV    bool
	StartAt  int64
	Duration int64
}

// FaultSystem draws fault timing and targets for one line from the
// line's dedicated RNG stream. The Factory applies the flags and
// schedules the recovery.
type FaultSystem struct {
	lineID   string
	disabled bool

	interval DurationSampler
	duration DurationSampler

	active   map[string]*FaultEvent
	injected int
}

// NewFaultSystem validates the config, fills defaults, and builds the
// injector.
func NewFaultSystem(lineID string, cfg FaultConfig) (*FaultSystem, error) {
	mean := cfg.MeanIntervalSeconds
	if mean == 0 {
		mean = DefaultFaultMeanIntervalSeconds
	}
	if mean < 0 {
		return nil, fmt.Errorf("fault mean_interval_s must be positive, got %v", mean)
	}
	minDur := cfg.MinDurationSeconds
	maxDur := cfg.MaxDurationSeconds
	if minDur == 0 && maxDur == 0 {
		minDur = DefaultFaultMinDurationSeconds
		maxDur = DefaultFaultMaxDurationSeconds
	}
	if minDur <= 0 || maxDur < minDur {
		return nil, fmt.Errorf("fault duration range [%v,%v] invalid", minDur, maxDur)
	}

	interval, err := NewDurationSampler(DistSpec{
		Type:   "exponential",
		Params: map[string]float64{"mean": mean},
	})
	if err != nil {
		return nil, err
	}
	duration, err := NewDurationSampler(DistSpec{
		Type:   "uniform",
		Params: map[string]float64{"min": minDur, "max": maxDur},
	})
	if err != nil {
		return nil, err
	}

	return &FaultSystem{
		lineID:   lineID,
		disabled: cfg.Disabled,
		interval: interval,
		duration: duration,
		active:   make(map[string]*FaultEvent),
	}, nil
}

// Enabled reports whether this line injects faults.
func (fs *FaultSystem) Enabled() bool {
	return !fs.disabled
}

// NextInterval draws the gap until the next fault start.
func (fs *FaultSystem) NextInterval(rng *rand.Rand) int64 {
	return fs.interval.Sample(rng)
}

// PickTarget draws a fault target uniformly from the line's devices and
// AGVs that are not already faulted. Returns ok=false when every
// candidate is already down.
func (fs *FaultSystem) PickTarget(l *Line, rng *rand.Rand) (targetID string, isAGV bool, ok bool) {
	type candidate struct {
		id    string
		isAGV bool
	}
	var candidates []candidate
	for _, d := range l.Devices() {
		if !d.Faulted() {
			candidates = append(candidates, candidate{string(d.ID), false})
		}
	}
	for _, a := range l.AGVs() {
		if !a.Faulted() {
			candidates = append(candidates, candidate{a.ID, true})
		}
	}
	if len(candidates) == 0 {
		return "", false, false
	}
	pick := candidates[rng.Intn(len(candidates))]
	return pick.id, pick.isAGV, true
}

// Begin records a fault as active and returns its event record.
func (fs *FaultSystem) Begin(targetID string, isAGV bool, now int64, rng *rand.Rand) *FaultEvent {
	fe := &FaultEvent{
		LineID:   fs.lineID,
		TargetID: targetID,
		IsAGV:    isAGV,
		StartAt:  now,
		Duration: fs.duration.Sample(rng),
	}
	fs.active[targetID] = fe
	fs.injected++
	return fe
}

// End clears a fault from the active set.
func (fs *FaultSystem) End(fe *FaultEvent) {
	delete(fs.active, fe.TargetID)
}

// ActiveFaultCount returns the number of currently active faults.
func (fs *FaultSystem) ActiveFaultCount() int {
	return len(fs.active)
}

// InjectedCount returns the total number of faults started so far.
func (fs *FaultSystem) InjectedCount() int {
	return fs.injected
}
