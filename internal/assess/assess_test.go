package assess

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ohkbilal/certa/internal/material"
	"github.com/ohkbilal/certa/internal/regime"
	"github.com/ohkbilal/certa/internal/runctx"
	"github.com/ohkbilal/certa/internal/seal"
)

func fixedOpts() []runctx.Option {
	return []runctx.Option{
		runctx.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
		runctx.WithIDSource(func() string { return "fixed" }),
	}
}

func TestRunHydrofluoric(t *testing.T) {
	out := Run(Request{
		FluidID:     "HF-48",
		Temperature: 25,
		Materials:   []string{"carbon-steel", "ptfe", "epdm"},
	}, fixedOpts()...)

	if out.Context.PrimaryRegime != regime.FluorideAcid {
		t.Fatalf("expected FLUORIDE_ACID, got %s", out.Context.PrimaryRegime)
	}
	if out.Seal.State != seal.SeallessRequired {
		t.Errorf("expected SEALLESS_REQUIRED, got %s", out.Seal.State)
	}
	want := []material.Status{material.Fail, material.Conditional, material.Fail}
	var got []material.Status
	for _, v := range out.Materials {
		got = append(got, v.Status)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
	if len(out.Candidates.Excluded) != 2 {
		t.Errorf("expected 2 excluded, got %d", len(out.Candidates.Excluded))
	}
}

func TestRunInvalidSuppressesEverything(t *testing.T) {
	out := Run(Request{FluidID: "mystery-goo", Temperature: 25, Materials: []string{"ptfe", "316ss"}})
	if out.Context.Valid {
		t.Fatal("expected invalid context")
	}
	if out.Seal.State != seal.Suppressed {
		t.Errorf("expected suppressed seal, got %s", out.Seal.State)
	}
	for _, v := range out.Materials {
		if v.Status != material.InsufficientData {
			t.Errorf("%s: expected INSUFFICIENT_DATA, got %s", v.MaterialID, v.Status)
		}
	}
	if len(out.Candidates.Recommended) != 0 {
		t.Error("invalid context must not recommend materials")
	}
}

func TestRunRaw(t *testing.T) {
	e := NewEngine(nil, fixedOpts()...)
	out := e.RunRaw("water", "77", "F", []string{"pvc"})
	if !out.Context.Valid || out.Context.Temperature != 25 {
		t.Fatalf("unexpected context: %+v", out.Context)
	}
	out = e.RunRaw("water", nil, "C", []string{"pvc"})
	if out.Context.Valid {
		t.Fatal("nil temperature must invalidate")
	}
	if out.Materials[0].Status != material.InsufficientData {
		t.Errorf("expected INSUFFICIENT_DATA, got %s", out.Materials[0].Status)
	}
}

func TestSealAndMaterialsShareContext(t *testing.T) {
	for _, fluid := range []string{"water", "hf-48", "hno3-70", "naoh-50", "hcl-37", "ammonia", "nope"} {
		out := Run(Request{FluidID: fluid, Temperature: 25, Materials: []string{"ptfe"}})
		if out.Context.Valid == (out.Seal.State == seal.Suppressed) {
			t.Errorf("%s: validity %v disagrees with seal state %s", fluid, out.Context.Valid, out.Seal.State)
		}
		if !out.Context.Valid && out.Materials[0].Status != material.InsufficientData {
			t.Errorf("%s: invalid context produced %s", fluid, out.Materials[0].Status)
		}
	}
}

func TestHashStableForSameContext(t *testing.T) {
	e := NewEngine(nil)
	ctx := runctx.New("hno3-70", 40, "C")
	materials := []string{"titanium", "316ss", "ptfe"}

	a := e.Assess(&ctx, materials).MustHash()
	b := e.Assess(&ctx, materials).MustHash()
	if a != b {
		t.Fatalf("hash differs for same context: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}

	other := runctx.New("hno3-70", 40, "C")
	if c := e.Assess(&other, materials).MustHash(); c == a {
		t.Error("distinct run ids should produce distinct hashes")
	}
}

func TestHashFixedIdentity(t *testing.T) {
	req := Request{FluidID: "naoh-50", Temperature: 70, Materials: []string{"titanium", "aluminum"}}
	a := Run(req, fixedOpts()...).MustHash()
	b := Run(req, fixedOpts()...).MustHash()
	if a != b {
		t.Fatalf("hash not reproducible: %s vs %s", a, b)
	}
}

func TestCountsAndVerdict(t *testing.T) {
	out := Run(Request{FluidID: "hf-48", Temperature: 25, Materials: []string{"316ss", "304ss", "ptfe"}})
	counts := out.Counts()
	if counts[material.Fail] != 2 || counts[material.Conditional] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	v, ok := out.Verdict("ptfe")
	if !ok || v.Status != material.Conditional {
		t.Errorf("unexpected verdict: %+v %v", v, ok)
	}
	if _, ok := out.Verdict("nope"); ok {
		t.Error("unassessed material should not be found")
	}
}

func TestNonFiniteTemperatureStillHashes(t *testing.T) {
	e := NewEngine(nil, fixedOpts()...)
	for name, out := range map[string]Output{
		"fahrenheit overflow": e.Run(Request{FluidID: "water", Temperature: 1e308, Unit: "F", Materials: []string{"titanium"}}),
		"nan string":          e.RunRaw("water", "NaN", "C", []string{"titanium"}),
		"inf string":          e.RunRaw("water", "-Inf", "F", []string{"titanium"}),
	} {
		t.Run(name, func(t *testing.T) {
			if out.Context.Valid {
				t.Fatal("expected invalid context")
			}
			if out.Seal.State != seal.Suppressed {
				t.Errorf("expected suppressed seal, got %s", out.Seal.State)
			}
			if out.Materials[0].Status != material.InsufficientData {
				t.Errorf("expected INSUFFICIENT_DATA, got %s", out.Materials[0].Status)
			}
			h, err := out.Hash()
			if err != nil {
				t.Fatalf("hash: %v", err)
			}
			if len(h) != 64 {
				t.Errorf("expected 64 hex chars, got %d", len(h))
			}
		})
	}
}

func TestCandidatesMatchEvaluator(t *testing.T) {
	e := NewEngine(nil)
	materials := []string{"titanium", "316ss", "carbon-steel", "ptfe", "epdm", "hastelloy-c276"}
	for _, fluid := range []string{"hno3-70", "hf-48", "water", "nope"} {
		ctx := runctx.New(fluid, 40, "C")
		got := e.Assess(&ctx, materials).Candidates
		want := e.Evaluator().BuildCandidateSets(&ctx, materials)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: candidates mismatch (-want +got):\n%s", fluid, diff)
		}
	}
}
