package fluid

import "strings"

// #region known-fluids

// knownFluids is the validity predicate list. An identifier is recognised
// when it contains any of these fragments. Kept separate from the regime
// rule table: a fluid may be recognised yet fall through to NEUTRAL.
var knownFluids = []string{
	"water", "glycol",
	"hf", "hydrofluoric", "fluoride",
	"hno3", "nitric",
	"h2so4", "sulfuric", "oleum",
	"hcl", "hydrochloric", "muriatic",
	"h3po4", "phosphoric",
	"naoh", "caustic", "sodium-hydroxide",
	"koh", "potassium-hydroxide",
	"h2o2", "peroxide",
	"benzene", "toluene", "xylene",
	"methanol", "ethanol", "acetone", "mek",
	"cyanide", "mercury", "arsenic", "chromic",
	"ammonia",
	"chlorine", "hypochlorite", "bleach",
	"seawater", "brine", "chloride",
	"acetic", "formic", "citric",
	"diesel", "gasoline", "kerosene",
	"ammonium", "nitrate", "fertilizer", "urea",
}

// #endregion known-fluids

// #region normalize

// Normalize lowercases and trims an identifier. All matching in this
// package runs over the normalized form.
func Normalize(fluidID string) string {
	return strings.ToLower(strings.TrimSpace(fluidID))
}

// IsKnown reports whether fluidID is recognised by the validity predicate.
// Empty identifiers are never known.
func IsKnown(fluidID string) bool {
	id := Normalize(fluidID)
	if id == "" {
		return false
	}
	return containsAny(id, knownFluids...)
}

func containsAny(id string, frags ...string) bool {
	for _, f := range frags {
		if strings.Contains(id, f) {
			return true
		}
	}
	return false
}

// #endregion normalize
