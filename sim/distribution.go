package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
)

// DistSpec configures a duration distribution. Params are expressed in
// seconds; samplers convert to ticks.
type DistSpec struct {
	Type   string             `yaml:"type" json:"type"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

// DurationSampler generates duration samples in ticks (>= 1).
// MeanTicks reports the expected value of the distribution, used for
// theoretical cycle-time baselines.
type DurationSampler interface {
	Sample(rng *rand.Rand) int64
	MeanTicks() int64
}

// secondsToTicks converts a float seconds sample to a positive tick count.
func secondsToTicks(seconds float64) int64 {
	if math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return 1
	}
	ticks := int64(math.Round(seconds * float64(TicksPerSecond)))
	if ticks < 1 {
		return 1
	}
	return ticks
}

// GaussianSampler produces clamped Gaussian durations.
type GaussianSampler struct {
	mean, stdDev float64
	min, max     float64
}

func (s *GaussianSampler) Sample(rng *rand.Rand) int64 {
	if s.min == s.max {
		return secondsToTicks(s.min)
	}
	val := rng.NormFloat64()*s.stdDev + s.mean
	clamped := math.Min(s.max, math.Max(s.min, val))
	return secondsToTicks(clamped)
}

func (s *GaussianSampler) MeanTicks() int64 {
	clamped := math.Min(s.max, math.Max(s.min, s.mean))
	return secondsToTicks(clamped)
}

// ExponentialSampler produces exponentially-distributed durations.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) int64 {
	return secondsToTicks(rng.ExpFloat64() * s.mean)
}

func (s *ExponentialSampler) MeanTicks() int64 {
	return secondsToTicks(s.mean)
}

// UniformSampler produces durations uniform over [min, max] seconds.
type UniformSampler struct {
	min, max float64
}

func (s *UniformSampler) Sample(rng *rand.Rand) int64 {
	if s.min == s.max {
		return secondsToTicks(s.min)
	}
	return secondsToTicks(s.min + rng.Float64()*(s.max-s.min))
}

func (s *UniformSampler) MeanTicks() int64 {
	return secondsToTicks((s.min + s.max) / 2)
}

// EmpiricalSampler samples from an empirical probability distribution
// using inverse CDF via binary search.
type EmpiricalSampler struct {
	values []int64   // Sorted duration values in ticks
	cdf    []float64 // Cumulative probabilities (same length as values)
}

// NewEmpiricalSampler creates a sampler from a PDF map (seconds → probability).
// Automatically normalizes probabilities if they don't sum to 1.0.
func NewEmpiricalSampler(pdf map[float64]float64) *EmpiricalSampler {
	// Sort keys
	keys := make([]float64, 0, len(pdf))
	for k := range pdf {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	// Compute CDF with normalization
	totalProb := 0.0
	for _, k := range keys {
		totalProb += pdf[k]
	}

	values := make([]int64, 0, len(keys))
	cdf := make([]float64, 0, len(keys))
	cumulative := 0.0
	for _, k := range keys {
		p := pdf[k]
		if p <= 0 {
			continue // skip zero or negative probabilities
		}
		cumulative += p / totalProb
		values = append(values, secondsToTicks(k))
		cdf = append(cdf, cumulative)
	}
	// Ensure last CDF entry is exactly 1.0
	if len(cdf) > 0 {
		cdf[len(cdf)-1] = 1.0
	}

	return &EmpiricalSampler{values: values, cdf: cdf}
}

func (s *EmpiricalSampler) Sample(rng *rand.Rand) int64 {
	if len(s.values) == 0 {
		return 1
	}
	if len(s.values) == 1 {
		return s.values[0]
	}
	u := rng.Float64()
	idx := sort.SearchFloat64s(s.cdf, u)
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	return s.values[idx]
}

func (s *EmpiricalSampler) MeanTicks() int64 {
	if len(s.values) == 0 {
		return 1
	}
	mean := 0.0
	prev := 0.0
	for i, v := range s.values {
		mean += float64(v) * (s.cdf[i] - prev)
		prev = s.cdf[i]
	}
	ticks := int64(math.Round(mean))
	if ticks < 1 {
		return 1
	}
	return ticks
}

// ConstantSampler always returns the same fixed duration.
type ConstantSampler struct {
	ticks int64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) int64 {
	if s.ticks < 1 {
		return 1
	}
	return s.ticks
}

func (s *ConstantSampler) MeanTicks() int64 {
	if s.ticks < 1 {
		return 1
	}
	return s.ticks
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewDurationSampler creates a DurationSampler from a DistSpec.
func NewDurationSampler(spec DistSpec) (DurationSampler, error) {
	switch spec.Type {
	case "gaussian":
		if err := requireParam(spec.Params, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		return &GaussianSampler{
			mean:   spec.Params["mean"],
			stdDev: spec.Params["std_dev"],
			min:    spec.Params["min"],
			max:    spec.Params["max"],
		}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		return &ExponentialSampler{
			mean: spec.Params["mean"],
		}, nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		if spec.Params["max"] < spec.Params["min"] {
			return nil, fmt.Errorf("uniform distribution requires min <= max, got [%v, %v]",
				spec.Params["min"], spec.Params["max"])
		}
		return &UniformSampler{
			min: spec.Params["min"],
			max: spec.Params["max"],
		}, nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return &ConstantSampler{ticks: secondsToTicks(spec.Params["value"])}, nil

	case "empirical":
		if len(spec.Params) == 0 {
			return nil, fmt.Errorf("empirical distribution requires inline params")
		}
		// Inline params used as PDF (seconds → probability)
		pdf := make(map[float64]float64, len(spec.Params))
		for k, v := range spec.Params {
			seconds, err := strconv.ParseFloat(k, 64)
			if err != nil {
				return nil, fmt.Errorf("empirical PDF key %q is not a number: %w", k, err)
			}
			pdf[seconds] = v
		}
		return NewEmpiricalSampler(pdf), nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
