// Package testutil provides shared test infrastructure for the factory
// simulator: the golden scenario dataset and float assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Scenarios []GoldenScenario `json:"scenarios"`
}

// GoldenScenario is one scripted factory run with exact expectations.
// Scenarios run with faults disabled and deterministic process times so
// every expected value is derivable from the layout by hand.
type GoldenScenario struct {
	Name string `json:"name"`
	// Layout names a file under testdata/layouts/.
	Layout string `json:"layout"`
	Seed   int64  `json:"seed"`
	// HorizonS is the virtual run length in seconds.
	HorizonS float64 `json:"horizon_s"`
	// Stock pre-places products prod_1..prod_N at the raw material
	// intake before the run starts.
	Stock    int             `json:"stock,omitempty"`
	Commands []GoldenCommand `json:"commands,omitempty"`
	Expected GoldenExpect    `json:"expected"`
}

// GoldenCommand is one scripted command submission. The runner advances
// the clock to AtS before submitting.
type GoldenCommand struct {
	AtS         float64 `json:"at_s"`
	Line        string  `json:"line"`
	Action      string  `json:"action"`
	Target      string  `json:"target"`
	TargetPoint string  `json:"target_point,omitempty"`
	ProductID   string  `json:"product_id,omitempty"`
	TargetLevel float64 `json:"target_level,omitempty"`
}

// GoldenExpect holds the end-of-run expectations.
type GoldenExpect struct {
	ClockS            float64 `json:"clock_s"`
	ProductsCreated   int     `json:"products_created"`
	ProductsDelivered int     `json:"products_delivered"`
	ProductsScrapped  int     `json:"products_scrapped"`
	OrdersCreated     int     `json:"orders_created"`
	CommandsAccepted  int     `json:"commands_accepted"`
	CommandsRejected  int     `json:"commands_rejected"`

	// Responses is the full command response stream of the scenario's
	// single line, in publish order.
	Responses []GoldenResponse `json:"responses,omitempty"`
	// Battery maps AGV IDs to expected end-of-run battery percent.
	Battery map[string]float64 `json:"battery,omitempty"`
}

// GoldenResponse is one expected command response.
type GoldenResponse struct {
	AtS  float64 `json:"at_s"`
	Text string  `json:"text"`
}

// repoRoot resolves the repository root relative to this source file:
// sim/internal/testutil/ → root.
func repoRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to resolve current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..")
}

// LoadGoldenDataset loads testdata/goldendataset.json.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()
	path := filepath.Join(repoRoot(t), "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("failed to parse golden dataset: %v", err)
	}
	return &dataset
}

// LayoutPath returns the absolute path of a layout fixture under
// testdata/layouts/.
func LayoutPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(repoRoot(t), "testdata", "layouts", name)
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
