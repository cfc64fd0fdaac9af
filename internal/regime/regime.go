package regime

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRegime is returned by Parse for names outside the closed set.
var ErrUnknownRegime = errors.New("unknown regime")

// #region regime
// Regime is a closed classification bucket for a fluid's hazard behavior.
type Regime string

const (
	FluorideAcid        Regime = "FLUORIDE_ACID"
	OxidizingAcid       Regime = "OXIDIZING_ACID"
	StrongBase          Regime = "STRONG_BASE"
	ToxicSpecial        Regime = "TOXIC_SPECIAL"
	Halogenated         Regime = "HALOGENATED"
	ReducingAcid        Regime = "REDUCING_ACID"
	AqueousCorrosive    Regime = "AQUEOUS_CORROSIVE"
	OrganicSolvent      Regime = "ORGANIC_SOLVENT"
	AlkalineSpecial     Regime = "ALKALINE_SPECIAL"
	AqueousNonHazardous Regime = "AQUEOUS_NON_HAZARDOUS"
	OxidizerAdjacent    Regime = "OXIDIZER_ADJACENT"
	Neutral             Regime = "NEUTRAL"
	ExplosiveEnergetic  Regime = "EXPLOSIVE_ENERGETIC"
	UnknownRestricted   Regime = "UNKNOWN_RESTRICTED"
)

// Dehydrating is a secondary-only marker carried alongside REDUCING_ACID.
// It is never a primary regime.
const Dehydrating Regime = "DEHYDRATING"

var all = []Regime{
	FluorideAcid,
	OxidizingAcid,
	StrongBase,
	ToxicSpecial,
	Halogenated,
	ReducingAcid,
	AqueousCorrosive,
	OrganicSolvent,
	AlkalineSpecial,
	AqueousNonHazardous,
	OxidizerAdjacent,
	Neutral,
	ExplosiveEnergetic,
	UnknownRestricted,
}

// All returns every primary regime in classifier precedence order,
// followed by EXPLOSIVE_ENERGETIC and UNKNOWN_RESTRICTED.
func All() []Regime {
	out := make([]Regime, len(all))
	copy(out, all)
	return out
}

// Valid reports whether r is one of the primary regimes.
func (r Regime) Valid() bool {
	for _, v := range all {
		if v == r {
			return true
		}
	}
	return false
}

func (r Regime) String() string { return string(r) }

// Parse resolves a regime name case-insensitively.
func Parse(s string) (Regime, error) {
	r := Regime(strings.ToUpper(strings.TrimSpace(s)))
	if r.Valid() || r == Dehydrating {
		return r, nil
	}
	return "", fmt.Errorf("parse %q: %w", s, ErrUnknownRegime)
}

// #endregion regime

// #region tag
// Tag is an auxiliary hazard label derived from the fluid identifier.
type Tag string

const (
	TagAcid     Tag = "ACID"
	TagBase     Tag = "BASE"
	TagFluoride Tag = "FLUORIDE"
	TagToxic    Tag = "TOXIC"
	TagChloride Tag = "CHLORIDE"
	TagOxidizer Tag = "OXIDIZER"
	TagPeroxide Tag = "PEROXIDE"
	TagNitric   Tag = "NITRIC"
	TagCyanide  Tag = "CYANIDE"
	TagAqueous  Tag = "AQUEOUS"
	TagBenign   Tag = "BENIGN"
)

// HasTag reports whether tags contains t.
func HasTag(tags []Tag, t Tag) bool {
	for _, x := range tags {
		if x == t {
			return true
		}
	}
	return false
}

// #endregion tag
