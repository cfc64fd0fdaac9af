package assess

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ohkbilal/certa/internal/material"
	"github.com/ohkbilal/certa/internal/runctx"
	"github.com/ohkbilal/certa/internal/seal"
)

// #region types

// Request is one assessment input.
type Request struct {
	FluidID     string   `json:"fluid_id" yaml:"fluid_id"`
	Temperature float64  `json:"temperature" yaml:"temperature"`
	Unit        string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Materials   []string `json:"materials" yaml:"materials"`
}

// Output is the final assessment: the context it was computed from, seal
// eligibility, per-material verdicts in request order, and candidate sets.
type Output struct {
	Context    runctx.Snapshot        `json:"context"`
	Seal       seal.Eligibility       `json:"seal"`
	Materials  []material.Verdict     `json:"materials"`
	Candidates material.CandidateSets `json:"candidates"`
}

// #endregion types

// #region engine

// Engine runs assessments against one material registry and a fixed set of
// context options. It holds no mutable state.
type Engine struct {
	eval *material.Evaluator
	opts []runctx.Option
}

// NewEngine creates an engine. A nil evaluator uses the default registry.
func NewEngine(eval *material.Evaluator, opts ...runctx.Option) *Engine {
	if eval == nil {
		eval = material.NewEvaluator(nil)
	}
	return &Engine{eval: eval, opts: opts}
}

// Evaluator returns the engine's material evaluator.
func (e *Engine) Evaluator() *material.Evaluator { return e.eval }

// Run builds a context for req and assesses every requested material.
func (e *Engine) Run(req Request) Output {
	ctx := runctx.New(req.FluidID, req.Temperature, req.Unit, e.opts...)
	return e.Assess(&ctx, req.Materials)
}

// RunRaw is Run for loosely typed input, such as decoded JSON values.
func (e *Engine) RunRaw(fluidID, temperature, unit any, materials []string) Output {
	ctx := runctx.FromRaw(fluidID, temperature, unit, e.opts...)
	return e.Assess(&ctx, materials)
}

// Assess evaluates materials against an existing context. Every stage reads
// the same context, so the seal state and material verdicts always agree
// on regime and validity.
func (e *Engine) Assess(ctx *runctx.RunContext, materials []string) Output {
	out := Output{
		Context:   ctx.Snapshot(),
		Seal:      seal.Resolve(ctx),
		Materials: make([]material.Verdict, 0, len(materials)),
	}
	for _, m := range materials {
		out.Materials = append(out.Materials, e.eval.Evaluate(m, ctx))
	}
	out.Candidates = e.eval.CandidatesFrom(ctx.PrimaryRegime, out.Materials)
	return out
}

// Run assesses req with the default registry.
func Run(req Request, opts ...runctx.Option) Output {
	return NewEngine(nil, opts...).Run(req)
}

// #endregion engine

// #region hash

// Hash is the hex SHA-256 of the output's JSON encoding. Struct fields
// encode in declaration order and every slice is in deterministic order,
// so the same context and materials always hash the same.
func (o Output) Hash() (string, error) {
	blob, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("marshal output: %w", err)
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:]), nil
}

// MustHash is Hash for callers that cannot handle the error. Contexts from
// runctx never carry NaN or infinite temperatures, so it only panics on an
// Output assembled by hand with such values.
func (o Output) MustHash() string {
	h, err := o.Hash()
	if err != nil {
		panic(err)
	}
	return h
}

// #endregion hash

// #region summary

// Counts tallies verdict statuses, keyed by status.
func (o Output) Counts() map[material.Status]int {
	out := map[material.Status]int{}
	for _, v := range o.Materials {
		out[v.Status]++
	}
	return out
}

// Verdict returns the verdict for materialID, if it was assessed.
func (o Output) Verdict(materialID string) (material.Verdict, bool) {
	for _, v := range o.Materials {
		if v.MaterialID == materialID {
			return v, true
		}
	}
	return material.Verdict{}, false
}

// #endregion summary
