package sim

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
)

// Order generation defaults.
const (
	DefaultOrderIntervalSeconds = 30.0
	DefaultOrderMaxQuantity     = 3
)

// OrderPriority mirrors the wire values on order status payloads.
type OrderPriority string

const (
	OrderPriorityLow    OrderPriority = "low"
	OrderPriorityNormal OrderPriority = "normal"
	OrderPriorityHigh   OrderPriority = "high"
)

// OrderState tracks an order through its lifetime. Orders are never
// deleted.
type OrderState string

const (
	OrderStatePending    OrderState = "pending"
	OrderStateInProgress OrderState = "in_progress"
	OrderStateCompleted  OrderState = "completed"
)

// Order is a demand for a quantity of one product type.
type Order struct {
	ID          string
	ProductType ProductType
	Quantity    int
	Priority    OrderPriority
	ProductIDs  []string
	Status      OrderState
	CreatedAt   int64
	CompletedAt int64

	delivered int
}

// OrderGeneratorConfig tunes order arrival.
type OrderGeneratorConfig struct {
	// IntervalSeconds between orders, default 30.
	IntervalSeconds float64
	// MaxQuantity per order; quantity is uniform in [1, MaxQuantity].
	MaxQuantity int
	// TypeWeights for the product type draw. Defaults to
	// P1:0.4 P2:0.4 P3:0.2.
	TypeWeights map[ProductType]float64
	// PriorityWeights for the priority draw. Defaults to
	// low:0.2 normal:0.6 high:0.2.
	PriorityWeights map[OrderPriority]float64
}

// OrderGenerator creates orders on a fixed schedule and the products
// that fulfill them. Draws use the orders RNG stream; IDs come from
// the identity stream so reseeding either does not shift the other.
type OrderGenerator struct {
	interval int64

	maxQuantity     int
	typeKeys        []ProductType
	typeWeights     []float64
	priorityKeys    []OrderPriority
	priorityWeights []float64

	orders    map[string]*Order
	orderIDs  []string
	completed int
}

// NewOrderGenerator validates the config and fills defaults.
func NewOrderGenerator(cfg OrderGeneratorConfig) (*OrderGenerator, error) {
	interval := cfg.IntervalSeconds
	if interval == 0 {
		interval = DefaultOrderIntervalSeconds
	}
	if interval < 0 {
		return nil, fmt.Errorf("order interval_s must be positive, got %v", interval)
	}
	maxQuantity := cfg.MaxQuantity
	if maxQuantity == 0 {
		maxQuantity = DefaultOrderMaxQuantity
	}
	if maxQuantity < 1 {
		return nil, fmt.Errorf("order max_quantity must be >= 1, got %d", maxQuantity)
	}

	typeWeights := cfg.TypeWeights
	if len(typeWeights) == 0 {
		typeWeights = map[ProductType]float64{
			ProductTypeP1: 0.4,
			ProductTypeP2: 0.4,
			ProductTypeP3: 0.2,
		}
	}
	priorityWeights := cfg.PriorityWeights
	if len(priorityWeights) == 0 {
		priorityWeights = map[OrderPriority]float64{
			OrderPriorityLow:    0.2,
			OrderPriorityNormal: 0.6,
			OrderPriorityHigh:   0.2,
		}
	}

	og := &OrderGenerator{
		interval:    TicksFromSeconds(interval),
		maxQuantity: maxQuantity,
		orders:      make(map[string]*Order),
	}

	// Weighted draws iterate sorted keys so map ordering cannot leak
	// into the RNG stream.
	for _, t := range sortedKeys(typeWeights) {
		w := typeWeights[t]
		if w < 0 {
			return nil, fmt.Errorf("type weight for %s must be >= 0, got %v", t, w)
		}
		if _, err := WorkflowFor(t); err != nil {
			return nil, err
		}
		og.typeKeys = append(og.typeKeys, t)
		og.typeWeights = append(og.typeWeights, w)
	}
	if sum(og.typeWeights) <= 0 {
		return nil, fmt.Errorf("type weights must sum to a positive value")
	}
	for _, p := range sortedKeys(priorityWeights) {
		w := priorityWeights[p]
		if w < 0 {
			return nil, fmt.Errorf("priority weight for %s must be >= 0, got %v", p, w)
		}
		og.priorityKeys = append(og.priorityKeys, p)
		og.priorityWeights = append(og.priorityWeights, w)
	}
	if sum(og.priorityWeights) <= 0 {
		return nil, fmt.Errorf("priority weights must sum to a positive value")
	}

	return og, nil
}

// IntervalTicks returns the gap between order generations.
func (og *OrderGenerator) IntervalTicks() int64 {
	return og.interval
}

// Generate creates the next order and its products. draws is the
// orders RNG stream; ids feeds uuid generation.
func (og *OrderGenerator) Generate(now int64, draws, ids *rand.Rand) (*Order, []*Product, error) {
	productType := og.typeKeys[weightedIndex(draws, og.typeWeights)]
	quantity := 1 + draws.Intn(og.maxQuantity)
	priority := og.priorityKeys[weightedIndex(draws, og.priorityWeights)]

	order := &Order{
		ID:          "order_" + shortID(ids),
		ProductType: productType,
		Quantity:    quantity,
		Priority:    priority,
		Status:      OrderStatePending,
		CreatedAt:   now,
	}

	products := make([]*Product, 0, quantity)
	for i := 0; i < quantity; i++ {
		p, err := NewProduct("prod_"+shortID(ids), productType, order.ID, "", now)
		if err != nil {
			return nil, nil, err
		}
		order.ProductIDs = append(order.ProductIDs, p.ID)
		products = append(products, p)
	}

	og.orders[order.ID] = order
	og.orderIDs = append(og.orderIDs, order.ID)
	return order, products, nil
}

// Order returns an order by ID.
func (og *OrderGenerator) Order(id string) (*Order, bool) {
	o, ok := og.orders[id]
	return o, ok
}

// Orders returns all orders in creation sequence.
func (og *OrderGenerator) Orders() []*Order {
	out := make([]*Order, 0, len(og.orderIDs))
	for _, id := range og.orderIDs {
		out = append(out, og.orders[id])
	}
	return out
}

// CreatedCount returns how many orders have been generated.
func (og *OrderGenerator) CreatedCount() int {
	return len(og.orderIDs)
}

// CompletedCount returns how many orders have been fully delivered.
func (og *OrderGenerator) CompletedCount() int {
	return og.completed
}

// MarkInProgress flips a pending order once its first product is
// picked up. Reports whether the status changed.
func (og *OrderGenerator) MarkInProgress(orderID string) bool {
	o, ok := og.orders[orderID]
	if !ok || o.Status != OrderStatePending {
		return false
	}
	o.Status = OrderStateInProgress
	return true
}

// RecordDelivered counts one delivered product toward its order.
// Reports whether this delivery completed the order.
func (og *OrderGenerator) RecordDelivered(orderID string, now int64) bool {
	o, ok := og.orders[orderID]
	if !ok || o.Status == OrderStateCompleted {
		return false
	}
	o.delivered++
	if o.delivered < o.Quantity {
		return false
	}
	o.Status = OrderStateCompleted
	o.CompletedAt = now
	og.completed++
	return true
}

// shortID returns an 8-hex-char identifier drawn from the identity
// stream, stable for a given seed.
func shortID(ids *rand.Rand) string {
	u, err := uuid.NewRandomFromReader(ids)
	if err != nil {
		// rand.Rand.Read never fails; keep the signature honest anyway.
		panic(fmt.Sprintf("uuid generation: %v", err))
	}
	return u.String()[:8]
}

// weightedIndex draws an index proportionally to weights.
func weightedIndex(rng *rand.Rand, weights []float64) int {
	total := sum(weights)
	x := rng.Float64() * total
	for i, w := range weights {
		x -= w
		if x < 0 {
			return i
		}
	}
	return len(weights) - 1
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

// sortedKeys returns map keys in lexicographic order.
func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
