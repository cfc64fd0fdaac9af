package fluid

import "github.com/ohkbilal/certa/internal/regime"

// #region classification

// Classification is the classifier output: one primary regime and an
// ordered list of secondary regime tags.
type Classification struct {
	Primary   regime.Regime
	Secondary []regime.Regime
}

// #endregion classification

// #region rules

// rule is a single ordered classifier predicate. conc is the trailing
// concentration already extracted from the identifier.
type rule struct {
	name      string
	match     func(id string, conc float64) bool
	primary   regime.Regime
	secondary []regime.Regime
}

// rules are evaluated top to bottom and the first match wins. Reordering
// changes classification of overlapping identifiers.
var rules = []rule{
	{
		name: "fluoride",
		match: func(id string, _ float64) bool {
			return containsAny(id, "hf", "hydrofluoric", "fluoride")
		},
		primary:   regime.FluorideAcid,
		secondary: []regime.Regime{regime.ToxicSpecial},
	},
	{
		name: "oxidizing-acid",
		match: func(id string, conc float64) bool {
			return (containsAny(id, "hno3", "nitric") && conc >= 65) ||
				(containsAny(id, "h2o2", "peroxide") && conc >= 30) ||
				containsAny(id, "chromic")
		},
		primary: regime.OxidizingAcid,
	},
	{
		name: "strong-base",
		match: func(id string, conc float64) bool {
			return containsAny(id, "naoh", "koh", "caustic", "sodium-hydroxide", "potassium-hydroxide") && conc >= 30
		},
		primary: regime.StrongBase,
	},
	{
		name: "toxic",
		match: func(id string, _ float64) bool {
			return containsAny(id, "cyanide", "arsenic", "mercury", "benzene", "chlorine")
		},
		primary: regime.ToxicSpecial,
	},
	{
		name: "halogenated",
		match: func(id string, _ float64) bool {
			return containsAny(id, "hcl", "hydrochloric", "muriatic", "chloride", "seawater", "hypochlorite", "bleach", "brine")
		},
		primary:   regime.Halogenated,
		secondary: []regime.Regime{regime.AqueousCorrosive},
	},
	{
		name: "reducing-acid",
		match: func(id string, conc float64) bool {
			return (containsAny(id, "h2so4", "sulfuric") && conc >= 90) || containsAny(id, "oleum")
		},
		primary:   regime.ReducingAcid,
		secondary: []regime.Regime{regime.Dehydrating},
	},
	{
		name: "aqueous-corrosive",
		match: func(id string, _ float64) bool {
			return containsAny(id, "h2so4", "sulfuric", "h3po4", "phosphoric", "acetic", "formic", "citric")
		},
		primary: regime.AqueousCorrosive,
	},
	{
		name: "organic-solvent",
		match: func(id string, _ float64) bool {
			return containsAny(id, "methanol", "ethanol", "acetone", "mek", "toluene", "xylene", "diesel", "gasoline", "kerosene")
		},
		primary: regime.OrganicSolvent,
	},
	{
		name: "ammonia",
		match: func(id string, _ float64) bool {
			return containsAny(id, "ammonia")
		},
		primary:   regime.AlkalineSpecial,
		secondary: []regime.Regime{regime.ToxicSpecial},
	},
	{
		name: "benign-aqueous",
		match: func(id string, _ float64) bool {
			return containsAny(id, "water", "glycol")
		},
		primary: regime.AqueousNonHazardous,
	},
	{
		name: "oxidizer-adjacent",
		match: func(id string, _ float64) bool {
			return containsAny(id, "ammonium-nitrate", "fertilizer")
		},
		primary: regime.OxidizerAdjacent,
	},
}

// #endregion rules

// #region classify

// Classify maps a fluid identifier to its regime. Identifiers that fail
// IsKnown are UNKNOWN_RESTRICTED regardless of what the rule table would
// produce. A recognised identifier that matches no rule is NEUTRAL.
// The temperature argument is reserved for temperature-dependent rules;
// none of the current rules read it.
func Classify(fluidID string, _ float64) Classification {
	if !IsKnown(fluidID) {
		return Classification{Primary: regime.UnknownRestricted, Secondary: []regime.Regime{}}
	}
	id := Normalize(fluidID)
	conc := ExtractConcentration(id)
	for _, r := range rules {
		if r.match(id, conc) {
			sec := make([]regime.Regime, len(r.secondary))
			copy(sec, r.secondary)
			return Classification{Primary: r.primary, Secondary: sec}
		}
	}
	return Classification{Primary: regime.Neutral, Secondary: []regime.Regime{}}
}

// RuleName returns the name of the first rule fluidID matches, or "" when
// it falls through to the default branch. Run contexts record it so audit
// records cite the rule behind the regime.
func RuleName(fluidID string) string {
	if !IsKnown(fluidID) {
		return ""
	}
	id := Normalize(fluidID)
	conc := ExtractConcentration(id)
	for _, r := range rules {
		if r.match(id, conc) {
			return r.name
		}
	}
	return ""
}

// #endregion classify
