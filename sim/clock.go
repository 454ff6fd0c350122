package sim

// TicksPerSecond is the virtual clock resolution. One tick is one
// millisecond of simulated time, so AGV travel, charging, and device
// processing durations stay exact integers.
const TicksPerSecond int64 = 1000

// TicksFromSeconds converts a duration in seconds to ticks, rounding
// to the nearest tick.
func TicksFromSeconds(seconds float64) int64 {
	return int64(seconds*float64(TicksPerSecond) + 0.5)
}

// SecondsFromTicks converts a tick count to float seconds, the unit
// exposed on the wire in response and status timestamps.
func SecondsFromTicks(ticks int64) float64 {
	return float64(ticks) / float64(TicksPerSecond)
}
