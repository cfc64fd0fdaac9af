package golden

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ohkbilal/certa/internal/assess"
	"github.com/ohkbilal/certa/internal/audit"
)

func recordAll(t *testing.T, reqs []assess.Request) []audit.Record {
	t.Helper()
	ctx := context.Background()
	s, err := audit.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "audit.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	for _, req := range reqs {
		if _, err := s.Record(ctx, assess.Run(req)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	recs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return recs
}

func TestExportRoundTrip(t *testing.T) {
	recs := recordAll(t, []assess.Request{
		{FluidID: "hf-48", Temperature: 25, Materials: []string{"carbon-steel", "ptfe"}},
		{FluidID: "water", Temperature: 194, Unit: "F", Materials: []string{"pvc"}},
		{FluidID: "mystery", Temperature: 25},
		{FluidID: "water", Temperature: -500},
	})

	f, skipped := FromRecords("exported", recs)
	if skipped != 1 {
		t.Errorf("expected 1 skipped record, got %d", skipped)
	}
	if len(f.Cases) != 4 {
		t.Fatalf("expected 4 cases, got %d", len(f.Cases))
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("exported fixture invalid: %v", err)
	}

	path := filepath.Join(t.TempDir(), "exported.json")
	if err := f.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	results := NewRunner(nil).Run(loaded)
	if s := Summarize(results); !s.AllPassed() {
		t.Fatalf("exported cases do not replay:\n%s", failureReport(results))
	}
}

func TestExportYAMLRoundTrip(t *testing.T) {
	recs := recordAll(t, []assess.Request{{FluidID: "naoh-50", Temperature: 70, Materials: []string{"titanium"}}})
	f, _ := FromRecords("exported", recs)
	path := filepath.Join(t.TempDir(), "exported.yaml")
	if err := f.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if got := loaded.Cases[0].Expect.Status; got != "FAIL" {
		t.Errorf("expected FAIL expectation, got %q", got)
	}
	if s := Summarize(NewRunner(nil).Run(loaded)); !s.AllPassed() {
		t.Fatal("yaml export does not replay")
	}
}

func TestMerge(t *testing.T) {
	a := &Fixture{Cases: []Case{{ID: "1"}, {ID: "2"}}}
	b := &Fixture{Cases: []Case{{ID: "2"}, {ID: "3"}}}
	if added := a.Merge(b); added != 1 {
		t.Errorf("expected 1 added, got %d", added)
	}
	if len(a.Cases) != 3 {
		t.Errorf("expected 3 cases, got %d", len(a.Cases))
	}
}
