package sim

import "fmt"

// ChargePoint is a capacity-bounded charging resource anchored at a
// layout point. An AGV that arrives while all slots are taken waits in
// FIFO order; Release hands the freed slot to the oldest waiter.
//
// Not thread-safe: only the simulation goroutine touches charge points.
type ChargePoint struct {
	LineID string
	Point  PointID

	capacity int
	active   []*AGV
	waiting  []*AGV
}

// NewChargePoint creates a charge point with the given slot count.
func NewChargePoint(lineID string, point PointID, capacity int) (*ChargePoint, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("charge point %s/%s: capacity must be >= 1, got %d", lineID, point, capacity)
	}
	return &ChargePoint{
		LineID:   lineID,
		Point:    point,
		capacity: capacity,
	}, nil
}

// Acquire requests a charging slot. Returns true when the AGV may
// start charging now; false means it was appended to the wait queue.
func (c *ChargePoint) Acquire(a *AGV) bool {
	if len(c.active) < c.capacity {
		c.active = append(c.active, a)
		return true
	}
	c.waiting = append(c.waiting, a)
	return false
}

// Release frees the slot held by a and promotes the oldest waiter into
// it. Returns the promoted AGV, or nil when nobody was waiting.
func (c *ChargePoint) Release(a *AGV) *AGV {
	for i, held := range c.active {
		if held == a {
			c.active = append(c.active[:i], c.active[i+1:]...)
			break
		}
	}
	if len(c.waiting) == 0 || len(c.active) >= c.capacity {
		return nil
	}
	next := c.waiting[0]
	c.waiting = c.waiting[1:]
	c.active = append(c.active, next)
	return next
}

// ActiveCount returns the number of AGVs currently charging.
func (c *ChargePoint) ActiveCount() int {
	return len(c.active)
}

// WaitingCount returns the number of queued AGVs.
func (c *ChargePoint) WaitingCount() int {
	return len(c.waiting)
}

// Capacity returns the slot count.
func (c *ChargePoint) Capacity() int {
	return c.capacity
}
