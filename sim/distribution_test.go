package sim

import (
	"math"
	"math/rand"
	"testing"
)

func TestGaussianSampler_MeanMatchesParam(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewDurationSampler(DistSpec{
		Type:   "gaussian",
		Params: map[string]float64{"mean": 5, "std_dev": 1, "min": 0.5, "max": 30},
	})
	if err != nil {
		t.Fatal(err)
	}
	n := 10000
	var sum int64
	for i := 0; i < n; i++ {
		sum += s.Sample(rng)
	}
	mean := float64(sum) / float64(n)
	want := 5 * float64(TicksPerSecond)
	if math.Abs(mean-want)/want > 0.05 {
		t.Errorf("gaussian mean = %.1f ticks, want ≈ %.0f (within 5%%)", mean, want)
	}
}

func TestGaussianSampler_ClampedToRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewDurationSampler(DistSpec{
		Type:   "gaussian",
		Params: map[string]float64{"mean": 5, "std_dev": 10, "min": 1, "max": 9},
	})
	if err != nil {
		t.Fatal(err)
	}
	lo := 1 * TicksPerSecond
	hi := 9 * TicksPerSecond
	for i := 0; i < 10000; i++ {
		v := s.Sample(rng)
		if v < lo || v > hi {
			t.Errorf("sample %d: %d outside [%d, %d]", i, v, lo, hi)
			break
		}
	}
}

func TestExponentialSampler_MeanMatchesParam(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewDurationSampler(DistSpec{
		Type:   "exponential",
		Params: map[string]float64{"mean": 20},
	})
	if err != nil {
		t.Fatal(err)
	}
	n := 10000
	var sum int64
	for i := 0; i < n; i++ {
		sum += s.Sample(rng)
	}
	mean := float64(sum) / float64(n)
	want := 20 * float64(TicksPerSecond)
	if math.Abs(mean-want)/want > 0.05 {
		t.Errorf("exponential mean = %.1f ticks, want ≈ %.0f (within 5%%)", mean, want)
	}
}

func TestExponentialSampler_AlwaysPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewDurationSampler(DistSpec{
		Type:   "exponential",
		Params: map[string]float64{"mean": 0.001},
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10000; i++ {
		if v := s.Sample(rng); v < 1 {
			t.Errorf("sample %d: got %d, want >= 1", i, v)
			break
		}
	}
}

func TestUniformSampler_StaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewDurationSampler(DistSpec{
		Type:   "uniform",
		Params: map[string]float64{"min": 30, "max": 90},
	})
	if err != nil {
		t.Fatal(err)
	}
	lo := 30 * TicksPerSecond
	hi := 90 * TicksPerSecond
	var sum int64
	n := 10000
	for i := 0; i < n; i++ {
		v := s.Sample(rng)
		if v < lo || v > hi {
			t.Errorf("sample %d: %d outside [%d, %d]", i, v, lo, hi)
			break
		}
		sum += v
	}
	mean := float64(sum) / float64(n)
	want := 60 * float64(TicksPerSecond)
	if math.Abs(mean-want)/want > 0.05 {
		t.Errorf("uniform mean = %.1f ticks, want ≈ %.0f (within 5%%)", mean, want)
	}
}

func TestUniformSampler_MaxBelowMin_ReturnsError(t *testing.T) {
	_, err := NewDurationSampler(DistSpec{
		Type:   "uniform",
		Params: map[string]float64{"min": 90, "max": 30},
	})
	if err == nil {
		t.Fatal("expected error for max < min")
	}
}

func TestConstantSampler_AlwaysSameValue(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s, err := NewDurationSampler(DistSpec{
		Type:   "constant",
		Params: map[string]float64{"value": 2.5},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := TicksFromSeconds(2.5)
	for i := 0; i < 100; i++ {
		if v := s.Sample(rng); v != want {
			t.Errorf("sample %d: got %d, want %d", i, v, want)
		}
	}
}

func TestEmpiricalSampler_ReproducesDistribution(t *testing.T) {
	// GIVEN a simple empirical PDF: {10s: 0.5, 20s: 0.5}
	rng := rand.New(rand.NewSource(42))
	pdf := map[float64]float64{10: 0.5, 20: 0.5}
	s := NewEmpiricalSampler(pdf)

	// WHEN 10000 samples drawn
	n := 10000
	counts := make(map[int64]int)
	for i := 0; i < n; i++ {
		counts[s.Sample(rng)]++
	}

	// THEN each value appears ~50% of the time (within 5%)
	frac10 := float64(counts[10*TicksPerSecond]) / float64(n)
	if math.Abs(frac10-0.5) > 0.05 {
		t.Errorf("P(10s) = %.3f, want ≈ 0.5", frac10)
	}
}

func TestEmpiricalSampler_SingleBin_AlwaysReturnsThatValue(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pdf := map[float64]float64{42: 1.0}
	s := NewEmpiricalSampler(pdf)
	want := 42 * TicksPerSecond
	for i := 0; i < 100; i++ {
		if v := s.Sample(rng); v != want {
			t.Errorf("sample %d: got %d, want %d", i, v, want)
		}
	}
}

func TestEmpiricalSampler_NonNormalized_NormalizesAutomatically(t *testing.T) {
	// GIVEN probabilities that sum to 2.0 (not 1.0)
	rng := rand.New(rand.NewSource(42))
	pdf := map[float64]float64{10: 1.0, 20: 1.0}
	s := NewEmpiricalSampler(pdf)
	counts := make(map[int64]int)
	n := 10000
	for i := 0; i < n; i++ {
		counts[s.Sample(rng)]++
	}
	frac := float64(counts[10*TicksPerSecond]) / float64(n)
	if frac < 0.45 || frac > 0.55 {
		t.Errorf("P(10s) = %.3f, want ≈ 0.5 (non-normalized input should auto-normalize)", frac)
	}
}

func TestNewDurationSampler_EmptyEmpiricalPDF_ReturnsError(t *testing.T) {
	_, err := NewDurationSampler(DistSpec{Type: "empirical"})
	if err == nil {
		t.Fatal("expected error for empty empirical PDF")
	}
}

func TestNewDurationSampler_InvalidType_ReturnsError(t *testing.T) {
	_, err := NewDurationSampler(DistSpec{Type: "unknown"})
	if err == nil {
		t.Fatal("expected error for unknown distribution type")
	}
}
