package material

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ohkbilal/certa/internal/regime"
	"github.com/ohkbilal/certa/internal/runctx"
)

// #region rules

// input is what a rule sees: the normalized material id, its registry
// entry if resolved, and the run context.
type input struct {
	m        string
	resolved *Material
	ctx      *runctx.RunContext
}

// hardRule is a regime-specific override. Rules are checked in order and
// the first match decides the verdict.
type hardRule struct {
	id     string
	regime regime.Regime
	match  func(in input) bool
	status Status
	reason string
}

var hardRules = []hardRule{
	{
		id: "hf-metal", regime: regime.FluorideAcid, status: Fail,
		match:  func(in input) bool { return has(in.m, "carbon", "iron", "steel", "316", "304") },
		reason: "Policy §12.2: HF attacks carbon steel, iron and stainless grades",
	},
	{
		id: "hf-elastomer", regime: regime.FluorideAcid, status: Fail,
		match:  func(in input) bool { return has(in.m, "epdm", "nbr", "neoprene", "silicone") },
		reason: "Policy §12.2: Elastomer not rated for HF service",
	},
	{
		id: "hf-verify-grade", regime: regime.FluorideAcid, status: Conditional,
		match:  func(in input) bool { return has(in.m, "ptfe", "hastelloy", "kalrez") },
		reason: "Policy §12.2: Verify HF-rated grade before use",
	},
	{
		id: "caustic-amphoteric", regime: regime.StrongBase, status: Fail,
		match:  func(in input) bool { return has(in.m, "aluminum", "aluminium", "zinc") },
		reason: "Policy §12.3: Amphoteric metal attacked by strong base",
	},
	{
		id: "caustic-titanium-hot", regime: regime.StrongBase, status: Fail,
		match:  func(in input) bool { return has(in.m, "titanium") && in.ctx.Temperature > 60 },
		reason: "Policy §12.3: Titanium attacked by hot caustic above 60°C",
	},
	{
		// Below the hot-caustic trigger titanium is still never reported
		// COMPATIBLE in this regime.
		id: "caustic-titanium", regime: regime.StrongBase, status: Conditional,
		match:  func(in input) bool { return has(in.m, "titanium") },
		reason: "Policy §12.3: Titanium in caustic limited to 60°C, verify temperature excursions",
	},
	{
		id: "chloride-titanium", regime: regime.Halogenated, status: Fail,
		match: func(in input) bool {
			return in.ctx.HasTag(regime.TagChloride) && has(in.m, "titanium")
		},
		reason: "Policy §12.4: Titanium attacked by hydrochloric acid",
	},
	{
		id: "chloride-scc", regime: regime.Halogenated, status: Conditional,
		match: func(in input) bool {
			return in.ctx.HasTag(regime.TagChloride) && has(in.m, "316", "304")
		},
		reason: "Policy §12.4: Chloride stress-corrosion cracking risk for austenitic stainless",
	},
	{
		id: "reducing-hastelloy", regime: regime.ReducingAcid, status: Fail,
		match:  func(in input) bool { return has(in.m, "hastelloy") },
		reason: "Policy §12.5: Hastelloy attacked by concentrated sulfuric acid",
	},
	{
		id: "reducing-titanium", regime: regime.ReducingAcid, status: Fail,
		match:  func(in input) bool { return has(in.m, "titanium") },
		reason: "Policy §12.5: Titanium attacked by reducing acids",
	},
	{
		id: "oxidizer-titanium", regime: regime.OxidizingAcid, status: Compatible,
		match:  func(in input) bool { return has(in.m, "titanium") },
		reason: "Policy §12.1: Titanium is excellent in oxidizing acids",
	},
}

// polymerCeilingC is the generic service ceiling for common thermoplastics
// and elastomers, applied in every regime.
const polymerCeilingC = 80

var ceilingPolymers = map[string]bool{
	"PVC": true, "PP": true, "HDPE": true, "EPDM": true, "NBR": true, "Neoprene": true,
}

var ceilingTokens = []string{"pvc", "pp", "hdpe", "epdm", "nbr", "neoprene"}

// #endregion rules

// #region evaluator

// Evaluator scores materials against a run context. It is safe for
// concurrent use.
type Evaluator struct {
	reg *Registry
}

// NewEvaluator creates an evaluator backed by reg. A nil registry uses
// DefaultRegistry.
func NewEvaluator(reg *Registry) *Evaluator {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Evaluator{reg: reg}
}

// Registry returns the backing registry.
func (e *Evaluator) Registry() *Registry { return e.reg }

// Evaluate returns the compatibility verdict for materialID under ctx.
// Invalid contexts short-circuit to INSUFFICIENT_DATA before any rule runs.
// Regime overrides are checked before the temperature ceiling, which is
// checked before registry data; the first match wins.
func (e *Evaluator) Evaluate(materialID string, ctx *runctx.RunContext) Verdict {
	v := Verdict{MaterialID: materialID}
	if ctx == nil || !ctx.Valid {
		return v.with(InsufficientData, "context-invalid", "Invalid context: insufficient data to evaluate material")
	}
	m := normalize(materialID)
	if m == "" {
		return v.with(Unknown, "material-missing", "No material identifier supplied")
	}

	in := input{m: m, ctx: ctx}
	if res, ok := e.reg.Resolve(m); ok {
		in.resolved = &res
		v.Canonical = res.ID
	}

	for _, r := range hardRules {
		if r.regime == ctx.PrimaryRegime && r.match(in) {
			return v.with(r.status, r.id, r.reason)
		}
	}

	if ctx.Temperature > polymerCeilingC && isCeilingPolymer(in) {
		return v.with(Fail, "polymer-ceiling",
			fmt.Sprintf("Policy §12.6: %.1f°C exceeds %d°C polymer service limit", ctx.Temperature, polymerCeilingC))
	}

	if in.resolved != nil {
		if out, ok := e.registryVerdict(v, *in.resolved, ctx); ok {
			return out
		}
	}

	return v.with(Compatible, "default", "No exclusion rule matched")
}

// #endregion evaluator

// #region registry-stage
func (e *Evaluator) registryVerdict(v Verdict, mat Material, ctx *runctx.RunContext) (Verdict, bool) {
	t := ctx.Temperature
	if mat.Limits != nil {
		if t > mat.Limits.MaxC {
			return v.with(Fail, "rated-max",
				fmt.Sprintf("%s rated to %.0f°C, service at %.1f°C", mat.ID, mat.Limits.MaxC, t)), true
		}
		if t < mat.Limits.MinC {
			return v.with(Fail, "rated-min",
				fmt.Sprintf("%s rated down to %.0f°C, service at %.1f°C", mat.ID, mat.Limits.MinC, t)), true
		}
	}
	if limit, ok := mat.RegimeMaxC[ctx.PrimaryRegime]; ok && t > limit {
		return v.with(Fail, "regime-rated-max",
			fmt.Sprintf("%s limited to %.0f°C in %s service", mat.ID, limit, ctx.PrimaryRegime)), true
	}
	if s := e.reg.RegimeBehavior(mat.ID, ctx.PrimaryRegime); s != Unknown {
		reason := fmt.Sprintf("%s documented %s in %s service", mat.ID, s, ctx.PrimaryRegime)
		if mat.Status == Provisional {
			reason += " (provisional data)"
		}
		return v.with(s, "registry-behavior", reason), true
	}
	return v, false
}

// #endregion registry-stage

// #region recommendable

// IsMetalRecommendable reports whether a material may surface as a top
// recommendation. Under OXIDIZING_ACID only titanium among metals is
// recommendable; every other regime allows all materials.
func (e *Evaluator) IsMetalRecommendable(materialID string, r regime.Regime) bool {
	if r != regime.OxidizingAcid {
		return true
	}
	m := normalize(materialID)
	if has(m, "titanium") {
		return true
	}
	if has(m, "carbon", "steel", "iron", "316", "304", "hastelloy", "monel") {
		return false
	}
	if res, ok := e.reg.Resolve(m); ok && res.Type == Metal {
		return false
	}
	return true
}

// #endregion recommendable

// #region package-level
var defaultEvaluator = NewEvaluator(nil)

// Evaluate scores materialID with the default registry.
func Evaluate(materialID string, ctx *runctx.RunContext) Verdict {
	return defaultEvaluator.Evaluate(materialID, ctx)
}

// IsMetalRecommendable applies the oxidizer recommendation policy with the
// default registry.
func IsMetalRecommendable(materialID string, r regime.Regime) bool {
	return defaultEvaluator.IsMetalRecommendable(materialID, r)
}

// #endregion package-level

// #region helpers
func (v Verdict) with(s Status, rule, reason string) Verdict {
	v.Status = s
	v.Rule = rule
	v.Reason = reason
	return v
}

func has(m string, frags ...string) bool {
	for _, f := range frags {
		if strings.Contains(m, f) {
			return true
		}
	}
	return false
}

func isCeilingPolymer(in input) bool {
	if in.resolved != nil && ceilingPolymers[in.resolved.ID] {
		return true
	}
	tokens := strings.FieldsFunc(in.m, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		for _, p := range ceilingTokens {
			if tok == p {
				return true
			}
		}
	}
	return false
}

// #endregion helpers
