package sim

import "container/heap"

// EventHeap is a priority queue of simulation events ordered by
// timestamp. Events at the same timestamp pop in scheduling order,
// using the monotonically increasing event ID as the tie-break, so
// same-time execution is FIFO.
type EventHeap []Event

// NewEventHeap creates an empty event heap.
func NewEventHeap() *EventHeap {
	h := &EventHeap{}
	heap.Init(h)
	return h
}

func (h EventHeap) Len() int { return len(h) }

func (h EventHeap) Less(i, j int) bool {
	if h[i].Timestamp() != h[j].Timestamp() {
		return h[i].Timestamp() < h[j].Timestamp()
	}
	return h[i].EventID() < h[j].EventID()
}

func (h EventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *EventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *EventHeap) Pop() any {
	old := *h
	n := len(old)
	event := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return event
}

// Schedule adds an event to the heap.
func (h *EventHeap) Schedule(event Event) {
	heap.Push(h, event)
}

// PopNext removes and returns the next event to execute, or nil if the
// heap is empty.
func (h *EventHeap) PopNext() Event {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(Event)
}

// Peek returns the next event without removing it, or nil if the heap
// is empty.
func (h *EventHeap) Peek() Event {
	if h.Len() == 0 {
		return nil
	}
	return (*h)[0]
}
