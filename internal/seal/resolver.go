package seal

import (
	"github.com/ohkbilal/certa/internal/regime"
	"github.com/ohkbilal/certa/internal/runctx"
)

// #region resolve
// Resolve maps a run context to its seal eligibility. Nil and invalid
// contexts are suppressed before any regime lookup.
func Resolve(ctx *runctx.RunContext) Eligibility {
	if ctx == nil {
		return suppressed("invalid context: no run context supplied")
	}
	if !ctx.Valid {
		return suppressed("invalid context: insufficient data to classify fluid")
	}
	if ctx.PrimaryRegime == "" {
		return suppressed("invalid context: no primary regime")
	}
	return ForRegime(ctx.PrimaryRegime)
}

// ForRegime maps a primary regime to its seal eligibility. It depends on
// the regime alone.
func ForRegime(r regime.Regime) Eligibility {
	switch r {
	case regime.Neutral, regime.AqueousNonHazardous:
		return eligibility(StandardAllowed, "Policy §13.3: Benign fluid, standard seals allowed",
			Single, Double, Cartridge)
	case regime.FluorideAcid, regime.ExplosiveEnergetic:
		return eligibility(SeallessRequired, "Policy §13.4: "+string(r)+" requires sealless containment",
			MagneticDrive, CannedMotor)
	case regime.ToxicSpecial:
		return eligibility(SpecializedRequired, "Policy §13.4: Toxic service requires specialized seals",
			SpecializedCartridge, OEMEngineered, Double)
	case regime.AlkalineSpecial:
		return eligibility(SpecializedRequired, "Policy §13.4: Ammonia service requires specialized seals",
			SpecializedCartridge, OEMEngineered, Double)
	case regime.OxidizingAcid, regime.Halogenated, regime.StrongBase,
		regime.ReducingAcid, regime.AqueousCorrosive, regime.OrganicSolvent:
		return eligibility(ReinforcedRequired, "Policy §13.4: "+string(r)+" requires reinforced seals",
			Double, Cartridge)
	case regime.UnknownRestricted:
		return suppressed("Policy §9: Unknown fluid, insufficient data for seal selection")
	case "":
		return suppressed("invalid context: no primary regime")
	}
	return eligibility(StandardAllowed, "Policy §13.3: Standard seals for unmapped regime "+string(r),
		Single, Double, Cartridge)
}

// #endregion resolve

// #region helpers
func eligibility(s State, reason string, cats ...Category) Eligibility {
	out := make([]Category, len(cats))
	copy(out, cats)
	return Eligibility{State: s, Reason: reason, AllowedCategories: out}
}

func suppressed(reason string) Eligibility {
	return Eligibility{State: Suppressed, Reason: reason, AllowedCategories: []Category{}}
}

// #endregion helpers
