package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares a scenario's response transcript against the
// golden file testdata/golden/{result.Scenario}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, result *Result) {
	t.Helper()

	data, err := json.MarshalIndent(result.Transcript(), "", "  ")
	if err != nil {
		t.Fatalf("marshal transcript: %v", err)
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, result.Scenario, data)
}
