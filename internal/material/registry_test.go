package material

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ohkbilal/certa/internal/regime"
)

func TestDefaultRegistryCounts(t *testing.T) {
	reg := DefaultRegistry()
	if reg.Len() != 26 {
		t.Fatalf("expected 26 materials, got %d", reg.Len())
	}
	if n := len(reg.ByStatus(Verified)); n != 16 {
		t.Errorf("expected 16 verified, got %d", n)
	}
	if n := len(reg.ByStatus(Provisional)); n != 10 {
		t.Errorf("expected 10 provisional, got %d", n)
	}
	if n := len(reg.ByType(Composite)); n != 1 {
		t.Errorf("expected 1 composite, got %d", n)
	}
}

func TestProvisionalEntriesAreDocumented(t *testing.T) {
	for _, m := range DefaultRegistry().ByStatus(Provisional) {
		if !m.IsDocumented() {
			t.Errorf("%s lacks documentation", m.ID)
		}
		for r := range m.Behavior {
			if !r.Valid() {
				t.Errorf("%s documents behavior for unknown regime %s", m.ID, r)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"316ss", "316SS"},
		{"304-stainless", "304SS"},
		{"hastelloy-c", "Hastelloy-C"},
		{"Titanium", "Titanium"},
		{"ti", "Titanium"},
		{"carbon-steel", "Carbon-Steel"},
		{"cast-iron", "Cast-Iron"},
		{"ptfe-encap", "PTFE-Encap"},
		{"ptfe", "PTFE"},
		{"cpvc", "CPVC"},
		{"pvc", "PVC"},
		{"nitrile", "NBR"},
		{"viton", "FKM"},
		{"cr", "Neoprene"},
		{"vmq", "Silicone"},
		{"grp", "FRP"},
	}
	reg := DefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, ok := reg.Resolve(tt.in)
			if !ok {
				t.Fatalf("%q did not resolve", tt.in)
			}
			if m.ID != tt.want {
				t.Errorf("expected %s, got %s", tt.want, m.ID)
			}
		})
	}
	for _, in := range []string{"", "zinc", "copper", "unobtainium"} {
		if _, ok := reg.Resolve(in); ok {
			t.Errorf("%q should not resolve", in)
		}
	}
}

func TestRegimeBehavior(t *testing.T) {
	reg := DefaultRegistry()
	if got := reg.RegimeBehavior("Monel-400", regime.OxidizingAcid); got != Fail {
		t.Errorf("expected FAIL, got %s", got)
	}
	if got := reg.RegimeBehavior("monel-400", regime.Neutral); got != Unknown {
		t.Errorf("undocumented regime: expected UNKNOWN, got %s", got)
	}
	if got := reg.RegimeBehavior("nope", regime.Neutral); got != Unknown {
		t.Errorf("unknown material: expected UNKNOWN, got %s", got)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	reg := DefaultRegistry()
	m, ok := reg.Lookup("Monel-400")
	if !ok {
		t.Fatal("Monel-400 missing")
	}
	m.Behavior[regime.OxidizingAcid] = Compatible
	m.Limits.MaxC = 9999
	again, _ := reg.Lookup("Monel-400")
	if again.Behavior[regime.OxidizingAcid] != Fail {
		t.Error("behavior map shared with caller")
	}
	if again.Limits.MaxC != 480 {
		t.Error("limits shared with caller")
	}
}

func TestWithStatusDoesNotMutate(t *testing.T) {
	reg := DefaultRegistry()
	next, err := reg.WithStatus("PEEK", Verified)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, _ := reg.Lookup("PEEK")
	after, _ := next.Lookup("PEEK")
	if before.Status != Provisional {
		t.Errorf("original registry changed: %s", before.Status)
	}
	if after.Status != Verified {
		t.Errorf("expected VERIFIED, got %s", after.Status)
	}
	if diff := cmp.Diff(before.Behavior, after.Behavior); diff != "" {
		t.Errorf("behavior changed:\n%s", diff)
	}

	_, err = reg.WithStatus("nope", Verified)
	if !errors.Is(err, ErrUnknownMaterial) {
		t.Fatalf("expected ErrUnknownMaterial, got %v", err)
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]Material{{ID: "A"}, {ID: "a"}})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
	_, err = NewRegistry([]Material{{ID: ""}})
	if err == nil {
		t.Fatal("expected empty id error")
	}
}
