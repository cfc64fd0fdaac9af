package fluid

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ohkbilal/certa/internal/regime"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		fluid     string
		primary   regime.Regime
		secondary []regime.Regime
	}{
		{"water", regime.AqueousNonHazardous, []regime.Regime{}},
		{"process-water", regime.AqueousNonHazardous, []regime.Regime{}},
		{"ethylene-glycol", regime.AqueousNonHazardous, []regime.Regime{}},
		{"hf-48", regime.FluorideAcid, []regime.Regime{regime.ToxicSpecial}},
		{"hydrofluoric-acid-70", regime.FluorideAcid, []regime.Regime{regime.ToxicSpecial}},
		{"hno3-65", regime.OxidizingAcid, []regime.Regime{}},
		{"hno3-98", regime.OxidizingAcid, []regime.Regime{}},
		{"hno3-30", regime.Neutral, []regime.Regime{}},
		{"h2o2-30", regime.OxidizingAcid, []regime.Regime{}},
		{"chromic-acid", regime.OxidizingAcid, []regime.Regime{}},
		{"naoh-50", regime.StrongBase, []regime.Regime{}},
		{"koh-50", regime.StrongBase, []regime.Regime{}},
		{"naoh-10", regime.Neutral, []regime.Regime{}},
		{"benzene", regime.ToxicSpecial, []regime.Regime{}},
		{"sodium-cyanide", regime.ToxicSpecial, []regime.Regime{}},
		{"mercury", regime.ToxicSpecial, []regime.Regime{}},
		{"chlorine", regime.ToxicSpecial, []regime.Regime{}},
		{"hcl-37", regime.Halogenated, []regime.Regime{regime.AqueousCorrosive}},
		{"seawater", regime.Halogenated, []regime.Regime{regime.AqueousCorrosive}},
		{"sodium-hypochlorite", regime.Halogenated, []regime.Regime{regime.AqueousCorrosive}},
		{"ferric-chloride", regime.Halogenated, []regime.Regime{regime.AqueousCorrosive}},
		{"h2so4-98", regime.ReducingAcid, []regime.Regime{regime.Dehydrating}},
		{"oleum", regime.ReducingAcid, []regime.Regime{regime.Dehydrating}},
		{"h2so4-50", regime.AqueousCorrosive, []regime.Regime{}},
		{"h3po4-85", regime.AqueousCorrosive, []regime.Regime{}},
		{"acetic-acid", regime.AqueousCorrosive, []regime.Regime{}},
		{"methanol", regime.OrganicSolvent, []regime.Regime{}},
		{"toluene", regime.OrganicSolvent, []regime.Regime{}},
		{"diesel", regime.OrganicSolvent, []regime.Regime{}},
		{"ammonia", regime.AlkalineSpecial, []regime.Regime{regime.ToxicSpecial}},
		{"ammonium-nitrate", regime.OxidizerAdjacent, []regime.Regime{}},
		{"urea", regime.Neutral, []regime.Regime{}},
		{"totally-unknown-xyz", regime.UnknownRestricted, []regime.Regime{}},
		{"", regime.UnknownRestricted, []regime.Regime{}},
		{"  HF-48 ", regime.FluorideAcid, []regime.Regime{regime.ToxicSpecial}},
	}
	for _, tt := range tests {
		t.Run(tt.fluid, func(t *testing.T) {
			got := Classify(tt.fluid, 25)
			if got.Primary != tt.primary {
				t.Errorf("primary: expected %s, got %s", tt.primary, got.Primary)
			}
			if diff := cmp.Diff(tt.secondary, got.Secondary); diff != "" {
				t.Errorf("secondary mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	// cyanide and an acid fragment: toxic wins over aqueous-corrosive.
	if got := Classify("cyanide-acetic-mix", 25).Primary; got != regime.ToxicSpecial {
		t.Errorf("expected TOXIC_SPECIAL, got %s", got)
	}
	// fluoride outranks everything, including chloride.
	if got := Classify("fluoride-chloride-brine", 25).Primary; got != regime.FluorideAcid {
		t.Errorf("expected FLUORIDE_ACID, got %s", got)
	}
	// concentrated caustic outranks chlorine.
	if got := Classify("caustic-chlorine-50", 25).Primary; got != regime.StrongBase {
		t.Errorf("expected STRONG_BASE, got %s", got)
	}
}

func TestClassifyReturnsFreshSecondary(t *testing.T) {
	a := Classify("hf-48", 25)
	a.Secondary[0] = regime.Neutral
	b := Classify("hf-48", 25)
	if b.Secondary[0] != regime.ToxicSpecial {
		t.Fatal("secondary slice shared between calls")
	}
}

func TestClassifyDeterministic(t *testing.T) {
	first := Classify("h2so4-50", 40)
	for i := 0; i < 10; i++ {
		Classify("hf-48", 25)
		got := Classify("h2so4-50", 40)
		if diff := cmp.Diff(first, got); diff != "" {
			t.Fatalf("iteration %d differs:\n%s", i, diff)
		}
	}
}

func TestIsKnown(t *testing.T) {
	for _, id := range []string{"water", "deionized-water", "hcl-37", "MUriatic", "urea", "kerosene"} {
		if !IsKnown(id) {
			t.Errorf("%q should be known", id)
		}
	}
	for _, id := range []string{"", "   ", "unknown-xyz", "not-in-db", "invalid", "xyz", "123"} {
		if IsKnown(id) {
			t.Errorf("%q should not be known", id)
		}
	}
}

func TestRuleName(t *testing.T) {
	if got := RuleName("hf-48"); got != "fluoride" {
		t.Errorf("expected fluoride, got %q", got)
	}
	if got := RuleName("urea"); got != "" {
		t.Errorf("expected default branch, got %q", got)
	}
	if got := RuleName("nope"); got != "" {
		t.Errorf("expected empty for unknown, got %q", got)
	}
}
