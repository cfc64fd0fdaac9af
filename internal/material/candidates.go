package material

import (
	"github.com/ohkbilal/certa/internal/regime"
	"github.com/ohkbilal/certa/internal/runctx"
)

// #region candidate-sets

// Candidate is one material placed into a recommendation bucket.
type Candidate struct {
	Verdict
	// Demoted is set when a COMPATIBLE metal was moved to Conditional by
	// the oxidizer recommendation policy.
	Demoted bool   `json:"demoted,omitempty"`
	Note    string `json:"note,omitempty"`
}

// CandidateSets partitions evaluated materials for presentation. A FAIL
// verdict only ever lands in Excluded.
type CandidateSets struct {
	Recommended  []Candidate `json:"recommended"`
	Conditional  []Candidate `json:"conditional"`
	Excluded     []Candidate `json:"excluded"`
	Insufficient []Candidate `json:"insufficient"`
}

// BuildCandidateSets evaluates every material and sorts it into a bucket,
// preserving input order within each bucket.
func (e *Evaluator) BuildCandidateSets(ctx *runctx.RunContext, materialIDs []string) CandidateSets {
	verdicts := make([]Verdict, len(materialIDs))
	for i, id := range materialIDs {
		verdicts[i] = e.Evaluate(id, ctx)
	}
	var r regime.Regime
	if ctx != nil {
		r = ctx.PrimaryRegime
	}
	return e.CandidatesFrom(r, verdicts)
}

// CandidatesFrom sorts already computed verdicts into buckets, preserving
// their order. r is the primary regime the verdicts were evaluated under.
func (e *Evaluator) CandidatesFrom(r regime.Regime, verdicts []Verdict) CandidateSets {
	sets := CandidateSets{
		Recommended:  []Candidate{},
		Conditional:  []Candidate{},
		Excluded:     []Candidate{},
		Insufficient: []Candidate{},
	}
	for _, v := range verdicts {
		c := Candidate{Verdict: v}
		switch v.Status {
		case Fail:
			sets.Excluded = append(sets.Excluded, c)
		case Conditional:
			sets.Conditional = append(sets.Conditional, c)
		case Compatible:
			if !e.IsMetalRecommendable(v.MaterialID, r) {
				c.Demoted = true
				c.Note = "Policy §12.1: only titanium is recommended among metals for oxidizing acids"
				sets.Conditional = append(sets.Conditional, c)
				continue
			}
			sets.Recommended = append(sets.Recommended, c)
		default:
			sets.Insufficient = append(sets.Insufficient, c)
		}
	}
	return sets
}

// BuildCandidateSets uses the default registry.
func BuildCandidateSets(ctx *runctx.RunContext, materialIDs []string) CandidateSets {
	return defaultEvaluator.BuildCandidateSets(ctx, materialIDs)
}

// #endregion candidate-sets
