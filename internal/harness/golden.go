package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares the result's final-state canonical snapshot against
// testdata/golden/<name>.golden. Snapshots are deterministic because the
// harness pins time, ids and provider refs, and the snapshot records only
// the presence of credential hashes, never the salted hashes themselves.
//
// Regenerate with:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, result *Result) {
	t.Helper()

	snapshot, err := result.Final.Snapshot()
	if err != nil {
		t.Fatalf("snapshot %s: %v", result.ScenarioName, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, result.ScenarioName, snapshot)
}
