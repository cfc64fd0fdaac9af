package regime

import (
	"errors"
	"testing"
)

func TestAllHasFourteenDistinctRegimes(t *testing.T) {
	got := All()
	if len(got) != 14 {
		t.Fatalf("expected 14 regimes, got %d", len(got))
	}
	seen := map[Regime]bool{}
	for _, r := range got {
		if seen[r] {
			t.Errorf("duplicate regime %s", r)
		}
		seen[r] = true
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	a := All()
	a[0] = "MUTATED"
	if All()[0] != FluorideAcid {
		t.Fatal("All() leaked internal slice")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Regime
	}{
		{"fluoride_acid", FluorideAcid},
		{" NEUTRAL ", Neutral},
		{"Unknown_Restricted", UnknownRestricted},
		{"dehydrating", Dehydrating},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("PLASMA")
	if !errors.Is(err, ErrUnknownRegime) {
		t.Fatalf("expected ErrUnknownRegime, got %v", err)
	}
}

func TestDehydratingIsNotPrimary(t *testing.T) {
	if Dehydrating.Valid() {
		t.Fatal("DEHYDRATING must not be a primary regime")
	}
}

func TestHasTag(t *testing.T) {
	tags := []Tag{TagAcid, TagChloride}
	if !HasTag(tags, TagChloride) {
		t.Error("expected CHLORIDE")
	}
	if HasTag(tags, TagBase) {
		t.Error("unexpected BASE")
	}
	if HasTag(nil, TagAcid) {
		t.Error("nil tags should contain nothing")
	}
}
