package material

import (
	"testing"

	"github.com/ohkbilal/certa/internal/regime"
	"github.com/ohkbilal/certa/internal/runctx"
)

func ctxFor(t *testing.T, fluid string, tempC float64) *runctx.RunContext {
	t.Helper()
	ctx := runctx.New(fluid, tempC, "C")
	if !ctx.Valid {
		t.Fatalf("fixture fluid %q unexpectedly invalid: %s", fluid, ctx.InvalidReason)
	}
	return &ctx
}

func TestEvaluateCoreRules(t *testing.T) {
	tests := []struct {
		fluid    string
		temp     float64
		material string
		want     Status
	}{
		{"hf-48", 25, "carbon-steel", Fail},
		{"hf-48", 25, "316ss", Fail},
		{"hf-48", 25, "cast-iron", Fail},
		{"hf-48", 25, "epdm", Fail},
		{"hf-48", 25, "nbr", Fail},
		{"hf-70", 25, "neoprene", Fail},
		{"hf-48", 25, "silicone", Fail},
		{"hf-48", 25, "ptfe", Conditional},
		{"hf-48", 25, "hastelloy-c", Conditional},
		{"hf-48", 25, "kalrez", Conditional},
		{"naoh-50", 25, "aluminum", Fail},
		{"naoh-50", 25, "zinc", Fail},
		{"koh-50", 25, "aluminum", Fail},
		{"naoh-50", 80, "titanium", Fail},
		{"naoh-50", 25, "316ss", Compatible},
		{"naoh-50", 25, "ptfe", Compatible},
		{"naoh-50", 25, "hastelloy-c", Compatible},
		{"naoh-30", 25, "hdpe", Compatible},
		{"naoh-30", 25, "pp", Compatible},
		{"hcl-37", 25, "titanium", Fail},
		{"hcl-37", 25, "316ss", Conditional},
		{"hcl-37", 25, "hastelloy-c", Compatible},
		{"h2so4-98", 25, "hastelloy-c", Fail},
		{"h2so4-98", 25, "titanium", Fail},
		{"hno3-70", 25, "titanium", Compatible},
		{"water", 90, "pvc", Fail},
		{"water", 90, "hdpe", Fail},
		{"water", 90, "ptfe", Compatible},
		{"water", 90, "316ss", Compatible},
		{"water", 90, "copper", Compatible},
		{"water", 90, "cpvc", Compatible},
		{"water", 25, "pvc", Compatible},
	}
	for _, tt := range tests {
		t.Run(tt.fluid+"/"+tt.material, func(t *testing.T) {
			v := Evaluate(tt.material, ctxFor(t, tt.fluid, tt.temp))
			if v.Status != tt.want {
				t.Errorf("expected %s, got %s (%s: %s)", tt.want, v.Status, v.Rule, v.Reason)
			}
			if v.Reason == "" || v.Rule == "" {
				t.Error("verdict must carry a rule and reason")
			}
		})
	}
}

func TestEvaluateProvisionalMaterials(t *testing.T) {
	tests := []struct {
		fluid    string
		temp     float64
		material string
		want     Status
	}{
		{"hf-48", 25, "monel-400", Conditional},
		{"h2so4-98", 25, "monel-400", Compatible},
		{"hno3-70", 25, "monel-400", Fail},
		{"seawater", 25, "monel-400", Compatible},
		{"naoh-50", 25, "monel-400", Compatible},
		{"hno3-70", 25, "inconel-625", Conditional},
		{"seawater", 25, "inconel-625", Compatible},
		{"seawater", 25, "duplex-2205", Compatible},
		{"water", -60, "duplex-2205", Fail},
		{"naoh-50", 90, "duplex-2205", Fail},
		{"naoh-50", 50, "duplex-2205", Conditional},
		{"water", 25, "cast-iron", Compatible},
		{"h2so4-98", 25, "cast-iron", Fail},
		{"seawater", 25, "cast-iron", Fail},
		{"naoh-50", 25, "cast-iron", Conditional},
		{"naoh-50", 25, "peek", Fail},
		{"methanol", 25, "peek", Compatible},
		{"acetic-acid", 90, "uhmwpe", Fail},
		{"hno3-70", 25, "uhmwpe", Conditional},
		{"hno3-70", 25, "frp", Compatible},
		{"hf-48", 25, "frp", Fail},
		{"water", 150, "frp", Fail},
		{"hno3-70", 25, "neoprene", Fail},
		{"methanol", 25, "neoprene", Conditional},
		{"methanol", 25, "silicone", Fail},
		{"h2so4-98", 25, "silicone", Fail},
		{"naoh-50", 25, "ptfe-encap", Compatible},
		{"methanol", 25, "ptfe-encap", Compatible},
		// the HF verify-grade rule fires before registry data
		{"hf-48", 25, "ptfe-encap", Conditional},
	}
	for _, tt := range tests {
		t.Run(tt.fluid+"/"+tt.material, func(t *testing.T) {
			v := Evaluate(tt.material, ctxFor(t, tt.fluid, tt.temp))
			if v.Status != tt.want {
				t.Errorf("expected %s, got %s (%s: %s)", tt.want, v.Status, v.Rule, v.Reason)
			}
		})
	}
}

func TestEvaluateInvalidContext(t *testing.T) {
	if got := Evaluate("titanium", nil).Status; got != InsufficientData {
		t.Errorf("nil context: expected INSUFFICIENT_DATA, got %s", got)
	}
	ctx := runctx.New("unknown-xyz", 25, "C")
	for _, m := range []string{"titanium", "carbon-steel", "pvc", ""} {
		if got := Evaluate(m, &ctx).Status; got != InsufficientData {
			t.Errorf("%q: expected INSUFFICIENT_DATA, got %s", m, got)
		}
	}
}

func TestEvaluateEmptyMaterial(t *testing.T) {
	v := Evaluate("  ", ctxFor(t, "water", 25))
	if v.Status != Unknown {
		t.Fatalf("expected UNKNOWN, got %s", v.Status)
	}
}

func TestEvaluateCanonical(t *testing.T) {
	v := Evaluate("Hastelloy-C276", ctxFor(t, "water", 25))
	if v.Canonical != "Hastelloy-C" {
		t.Errorf("expected canonical Hastelloy-C, got %q", v.Canonical)
	}
	if v.MaterialID != "Hastelloy-C276" {
		t.Errorf("material id not preserved: %q", v.MaterialID)
	}
}

// A material excluded by a regime-specific rule must not come back
// COMPATIBLE in the same regime at any temperature.
func TestHardFailNeverCompatibleAcrossTemperatures(t *testing.T) {
	temps := []float64{-20, 0, 25, 40, 59, 60, 61, 80, 81, 120}
	for _, r := range hardRules {
		if r.status != Fail {
			continue
		}
		fluid, material := hardRuleFixture(r.id)
		if fluid == "" {
			t.Fatalf("no fixture for rule %s", r.id)
		}
		failed := false
		var statuses []Status
		for _, temp := range temps {
			ctx := runctx.New(fluid, temp, "C")
			v := Evaluate(material, &ctx)
			statuses = append(statuses, v.Status)
			if v.Status == Fail {
				failed = true
			}
		}
		if !failed {
			t.Errorf("%s: fixture never triggered FAIL", r.id)
			continue
		}
		for i, s := range statuses {
			if s == Compatible {
				t.Errorf("%s: %s in %s at %v°C reported COMPATIBLE", r.id, material, fluid, temps[i])
			}
		}
	}
}

func hardRuleFixture(id string) (string, string) {
	switch id {
	case "hf-metal":
		return "hf-48", "carbon-steel"
	case "hf-elastomer":
		return "hf-48", "epdm"
	case "caustic-amphoteric":
		return "naoh-50", "aluminum"
	case "caustic-titanium-hot":
		return "naoh-50", "titanium"
	case "chloride-titanium":
		return "hcl-37", "titanium"
	case "reducing-hastelloy":
		return "h2so4-98", "hastelloy-c"
	case "reducing-titanium":
		return "oleum", "titanium"
	}
	return "", ""
}

func TestIsMetalRecommendable(t *testing.T) {
	tests := []struct {
		material string
		r        regime.Regime
		want     bool
	}{
		{"titanium", regime.OxidizingAcid, true},
		{"carbon-steel", regime.OxidizingAcid, false},
		{"316ss", regime.OxidizingAcid, false},
		{"hastelloy-c", regime.OxidizingAcid, false},
		{"monel-400", regime.OxidizingAcid, false},
		{"inconel-625", regime.OxidizingAcid, false},
		{"duplex-2205", regime.OxidizingAcid, false},
		{"ptfe", regime.OxidizingAcid, true},
		{"frp", regime.OxidizingAcid, true},
		{"carbon-steel", regime.Neutral, true},
		{"316ss", regime.Halogenated, true},
	}
	for _, tt := range tests {
		t.Run(tt.material+"/"+string(tt.r), func(t *testing.T) {
			if got := IsMetalRecommendable(tt.material, tt.r); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	ctx := ctxFor(t, "hcl-37", 25)
	first := Evaluate("316ss", ctx)
	for i := 0; i < 10; i++ {
		if got := Evaluate("316ss", ctx); got != first {
			t.Fatalf("iteration %d: %+v != %+v", i, got, first)
		}
	}
}
