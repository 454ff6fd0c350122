package sim

import (
	"math"
	"math/rand"
	"testing"
)

// === SimulationKey Tests ===

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	vals1 := make([]float64, 3)
	vals2 := make([]float64, 3)

	for i := 0; i < 3; i++ {
		vals1[i] = rng1.ForSubsystem(SubsystemFaults("line1")).Float64()
	}
	for i := 0; i < 3; i++ {
		vals2[i] = rng2.ForSubsystem(SubsystemFaults("line1")).Float64()
	}

	for i := 0; i < 3; i++ {
		if vals1[i] != vals2[i] {
			t.Errorf("Value %d: got %v and %v, want identical", i, vals1[i], vals2[i])
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// BDD: Drawing from subsystem A doesn't affect subsystem B
	rngA := NewPartitionedRNG(NewSimulationKey(42))
	rngB := NewPartitionedRNG(NewSimulationKey(42))

	// Burn 100 values from the fault stream in A only.
	for i := 0; i < 100; i++ {
		rngA.ForSubsystem(SubsystemFaults("line1")).Float64()
	}

	// The order stream must be unaffected by the fault draws.
	for i := 0; i < 5; i++ {
		a := rngA.ForSubsystem(SubsystemOrders).Float64()
		b := rngB.ForSubsystem(SubsystemOrders).Float64()
		if a != b {
			t.Errorf("Order value %d: got %v and %v, want identical", i, a, b)
		}
	}
}

func TestPartitionedRNG_CachesInstances(t *testing.T) {
	// BDD: ForSubsystem returns the same instance per name
	prng := NewPartitionedRNG(NewSimulationKey(7))

	first := prng.ForSubsystem(SubsystemQuality("line2"))
	second := prng.ForSubsystem(SubsystemQuality("line2"))

	if first != second {
		t.Error("expected cached *rand.Rand instance for repeated subsystem lookups")
	}
}

func TestPartitionedRNG_DifferentKeysDiverge(t *testing.T) {
	// BDD: Different master seeds produce different streams
	a := NewPartitionedRNG(NewSimulationKey(1)).ForSubsystem(SubsystemOrders)
	b := NewPartitionedRNG(NewSimulationKey(2)).ForSubsystem(SubsystemOrders)

	same := true
	for i := 0; i < 8; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}
	if same {
		t.Error("streams for different keys should diverge within a few draws")
	}
}

func TestPartitionedRNG_OrdersUsesMasterSeed(t *testing.T) {
	// BDD: The order stream is seeded with the master seed directly
	prng := NewPartitionedRNG(NewSimulationKey(1234))
	reference := rand.New(rand.NewSource(1234))

	stream := prng.ForSubsystem(SubsystemOrders)
	for i := 0; i < 5; i++ {
		got := stream.Float64()
		want := reference.Float64()
		if got != want {
			t.Errorf("Draw %d: got %v, want %v from raw master seed", i, got, want)
		}
	}
}

func TestPartitionedRNG_PerLineStreamsDiffer(t *testing.T) {
	// BDD: Per-line subsystem names derive distinct streams
	prng := NewPartitionedRNG(NewSimulationKey(42))

	a := prng.ForSubsystem(SubsystemFaults("line1")).Float64()
	b := prng.ForSubsystem(SubsystemFaults("line2")).Float64()

	if a == b {
		t.Errorf("fault streams for line1 and line2 drew the same first value %v", a)
	}
}

func TestSubsystemNameHelpers(t *testing.T) {
	if got := SubsystemFaults("line1"); got != "faults/line1" {
		t.Errorf("SubsystemFaults = %q", got)
	}
	if got := SubsystemProcessing("line2", "StationA"); got != "processing/line2/StationA" {
		t.Errorf("SubsystemProcessing = %q", got)
	}
	if got := SubsystemQuality("line3"); got != "quality/line3" {
		t.Errorf("SubsystemQuality = %q", got)
	}
}
