package golden

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ohkbilal/certa/internal/assess"
	"github.com/ohkbilal/certa/internal/fluid"
	"github.com/ohkbilal/certa/internal/material"
	"github.com/ohkbilal/certa/internal/regime"
	"github.com/ohkbilal/certa/internal/runctx"
	"github.com/ohkbilal/certa/internal/seal"
)

// defaultTolerance applies to temperature comparisons.
const defaultTolerance = 0.01

// #region types

// CaseResult is the outcome of one case.
type CaseResult struct {
	ID     string
	Name   string
	Kind   string
	Passed bool
	// Material is the canonical registry id the case exercised, if any.
	Material string
	Failures []string
}

// KindCount tallies results for one case kind.
type KindCount struct {
	Total  int
	Passed int
}

// Summary provides aggregate stats from a golden run.
type Summary struct {
	Total    int
	Passed   int
	Failed   int
	ByKind   map[string]KindCount
	Failures []CaseResult
}

// AllPassed reports whether the run may gate a deployment.
func (s Summary) AllPassed() bool { return s.Total > 0 && s.Failed == 0 }

// PassRate returns Passed/Total, or 0 for an empty run.
func (s Summary) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total)
}

// #endregion types

// #region runner

// Runner executes golden cases against an evaluator. It holds no mutable
// state, so one runner may execute cases concurrently.
type Runner struct {
	eval   *material.Evaluator
	engine *assess.Engine
	opts   []runctx.Option
}

// NewRunner creates a runner. A nil evaluator uses the default registry.
func NewRunner(eval *material.Evaluator, opts ...runctx.Option) *Runner {
	if eval == nil {
		eval = material.NewEvaluator(nil)
	}
	return &Runner{eval: eval, engine: assess.NewEngine(eval, opts...), opts: opts}
}

// ForFixture applies the fixture's policy version, if any, to the runner's
// context options.
func (r *Runner) ForFixture(f *Fixture) *Runner {
	if f.PolicyVersion == "" {
		return r
	}
	opts := append(append([]runctx.Option{}, r.opts...), runctx.WithPolicyVersion(f.PolicyVersion))
	return NewRunner(r.eval, opts...)
}

// Run executes every case in order.
func (r *Runner) Run(f *Fixture) []CaseResult {
	results := make([]CaseResult, 0, len(f.Cases))
	for _, c := range f.Cases {
		results = append(results, r.RunCase(c))
	}
	return results
}

// RunParallel executes cases on up to workers goroutines. Results are
// returned in fixture order, so they compare equal to Run's.
func (r *Runner) RunParallel(ctx context.Context, f *Fixture, workers int) ([]CaseResult, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]CaseResult, len(f.Cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range f.Cases {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.RunCase(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run golden cases: %w", err)
	}
	return results, nil
}

// RunCase executes a single case. It never panics on malformed input; a
// panic inside evaluation is reported as a case failure.
func (r *Runner) RunCase(c Case) (res CaseResult) {
	res = CaseResult{ID: c.ID, Name: c.Name, Kind: c.Kind}
	chk := &checker{}
	defer func() {
		if p := recover(); p != nil {
			chk.failf("panic: %v", p)
		}
		res.Failures = chk.failures
		res.Passed = len(chk.failures) == 0
	}()

	switch c.Kind {
	case KindAssessment:
		res.Material = r.runAssessment(c, chk)
	case KindSeal:
		r.runSeal(c, chk)
	case KindExtract:
		r.runExtract(c, chk)
	case KindRecommendable:
		res.Material = r.runRecommendable(c, chk)
	case KindDeterminism:
		r.runDeterminism(c, chk)
	default:
		chk.failf("unknown kind %q", c.Kind)
	}
	return res
}

// #endregion runner

// #region kinds

func (r *Runner) context(in CaseInput) runctx.RunContext {
	return runctx.FromRaw(in.FluidID, in.Temperature, in.Unit, r.opts...)
}

func (r *Runner) runAssessment(c Case, chk *checker) string {
	ctx := r.context(c.Input)
	checkContext(chk, &ctx, c.Expect)
	checkSeal(chk, seal.Resolve(&ctx), c.Expect)

	var canonical string
	if c.Input.Material != "" || hasStatusExpectation(c.Expect) {
		v := r.eval.Evaluate(c.Input.Material, &ctx)
		canonical = v.Canonical
		checkVerdict(chk, v, c.Expect)
	}
	if len(c.Expect.Excluded) > 0 {
		sets := r.eval.BuildCandidateSets(&ctx, c.Input.Materials)
		for _, want := range c.Expect.Excluded {
			if !candidateIn(sets.Excluded, want) {
				chk.failf("expected %s in excluded set", want)
			}
		}
		for _, bucket := range [][]material.Candidate{sets.Recommended, sets.Conditional, sets.Insufficient} {
			for _, cand := range bucket {
				if cand.Status == material.Fail {
					chk.failf("FAIL material %s outside excluded set", cand.MaterialID)
				}
			}
		}
	}
	return canonical
}

func (r *Runner) runSeal(c Case, chk *checker) {
	if c.Input.Context == nil && c.Input.FluidID == nil {
		checkSeal(chk, seal.Resolve(nil), c.Expect)
		return
	}
	if c.Input.Context != nil {
		ctx := runctx.ForRegime(regime.Regime(c.Input.Context.Regime), c.Input.Context.Valid, r.opts...)
		checkSeal(chk, seal.Resolve(&ctx), c.Expect)
		return
	}
	ctx := r.context(c.Input)
	checkSeal(chk, seal.Resolve(&ctx), c.Expect)
}

func (r *Runner) runExtract(c Case, chk *checker) {
	id := fmt.Sprint(c.Input.FluidID)
	if c.Input.FluidID == nil {
		id = ""
	}
	if c.Expect.Concentration != nil {
		if got := fluid.ExtractConcentration(id); got != *c.Expect.Concentration {
			chk.failf("concentration: expected %v, got %v", *c.Expect.Concentration, got)
		}
	}
	tags := fluid.Tags(id)
	for _, want := range c.Expect.TagsInclude {
		if !regime.HasTag(tags, regime.Tag(want)) {
			chk.failf("tags %v missing %s", tags, want)
		}
	}
}

func (r *Runner) runRecommendable(c Case, chk *checker) string {
	rg := regime.Regime(c.Input.Regime)
	if rg == "" {
		ctx := r.context(c.Input)
		rg = ctx.PrimaryRegime
	}
	got := r.eval.IsMetalRecommendable(c.Input.Material, rg)
	if c.Expect.Recommendable != nil && got != *c.Expect.Recommendable {
		chk.failf("recommendable %s under %s: expected %v, got %v", c.Input.Material, rg, *c.Expect.Recommendable, got)
	}
	if m, ok := r.eval.Registry().Resolve(c.Input.Material); ok {
		return m.ID
	}
	return ""
}

// runDeterminism builds the same context repeatedly, optionally building
// unrelated contexts in between, and requires identical classification,
// seal state, verdict and output hash every time.
func (r *Runner) runDeterminism(c Case, chk *checker) {
	n := c.Input.Repeat
	if n < 2 {
		n = 5
	}
	var first *assess.Output
	runIDs := map[string]bool{}
	for i := 0; i < n; i++ {
		for _, other := range c.Input.Interleave {
			_ = runctx.FromRaw(other, c.Input.Temperature, c.Input.Unit, r.opts...)
		}
		ctx := r.context(c.Input)
		runIDs[ctx.RunID] = true
		out := r.engine.Assess(&ctx, materialsOf(c.Input))

		again := r.engine.Assess(&ctx, materialsOf(c.Input))
		h1, err1 := out.Hash()
		h2, err2 := again.Hash()
		if err1 != nil || err2 != nil || h1 != h2 {
			chk.failf("iteration %d: hash differs for the same context", i)
		}

		if first == nil {
			first = &out
			checkContext(chk, &ctx, c.Expect)
			continue
		}
		if out.Context.PrimaryRegime != first.Context.PrimaryRegime {
			chk.failf("iteration %d: regime %s != %s", i, out.Context.PrimaryRegime, first.Context.PrimaryRegime)
		}
		if out.Context.Temperature != first.Context.Temperature {
			chk.failf("iteration %d: temperature %v != %v", i, out.Context.Temperature, first.Context.Temperature)
		}
		if out.Context.Concentration != first.Context.Concentration {
			chk.failf("iteration %d: concentration %v != %v", i, out.Context.Concentration, first.Context.Concentration)
		}
		if out.Seal.State != first.Seal.State || strings.Join(cats(out.Seal), ",") != strings.Join(cats(first.Seal), ",") {
			chk.failf("iteration %d: seal %s != %s", i, out.Seal.State, first.Seal.State)
		}
		for j := range out.Materials {
			if out.Materials[j] != first.Materials[j] {
				chk.failf("iteration %d: verdict %+v != %+v", i, out.Materials[j], first.Materials[j])
			}
		}
	}
	if c.Expect.UniqueRunIDs && len(runIDs) != n {
		chk.failf("expected %d unique run ids, got %d", n, len(runIDs))
	}
}

// #endregion kinds

// #region checks

type checker struct {
	failures []string
}

func (c *checker) failf(format string, args ...any) {
	c.failures = append(c.failures, fmt.Sprintf(format, args...))
}

func checkContext(chk *checker, ctx *runctx.RunContext, e Expect) {
	if e.Valid != nil && ctx.Valid != *e.Valid {
		chk.failf("valid: expected %v, got %v (%s)", *e.Valid, ctx.Valid, ctx.InvalidReason)
	}
	if e.PrimaryRegime != "" && string(ctx.PrimaryRegime) != e.PrimaryRegime {
		chk.failf("primary regime: expected %s, got %s", e.PrimaryRegime, ctx.PrimaryRegime)
	}
	if len(e.PrimaryOneOf) > 0 && !oneOf(string(ctx.PrimaryRegime), e.PrimaryOneOf) {
		chk.failf("primary regime %s not in %v", ctx.PrimaryRegime, e.PrimaryOneOf)
	}
	if e.PrimaryNot != "" && string(ctx.PrimaryRegime) == e.PrimaryNot {
		chk.failf("primary regime must not be %s", e.PrimaryNot)
	}
	secondary := ctx.SecondaryRegimes()
	for _, want := range e.SecondaryIncludes {
		if !oneOf(want, regimeStrings(secondary)) {
			chk.failf("secondary regimes %v missing %s", secondary, want)
		}
	}
	for _, want := range e.TagsInclude {
		if !ctx.HasTag(regime.Tag(want)) {
			chk.failf("tags %v missing %s", ctx.FluidTags(), want)
		}
	}
	if e.Concentration != nil && ctx.Concentration != *e.Concentration {
		chk.failf("concentration: expected %v, got %v", *e.Concentration, ctx.Concentration)
	}
	if e.TemperatureC != nil && math.Abs(ctx.Temperature-*e.TemperatureC) > defaultTolerance {
		chk.failf("temperature: expected %v°C, got %v°C", *e.TemperatureC, ctx.Temperature)
	}
	if e.FluidID != nil && ctx.FluidID != *e.FluidID {
		chk.failf("fluid id: expected %q, got %q", *e.FluidID, ctx.FluidID)
	}
	if e.PolicyVersion != "" && ctx.PolicyVersion != e.PolicyVersion {
		chk.failf("policy version: expected %s, got %s", e.PolicyVersion, ctx.PolicyVersion)
	}
	if ctx.RunID == "" {
		chk.failf("run id missing")
	}
}

func checkSeal(chk *checker, s seal.Eligibility, e Expect) {
	if e.SealState != "" && string(s.State) != e.SealState {
		chk.failf("seal state: expected %s, got %s", e.SealState, s.State)
	}
	if len(e.SealStateOneOf) > 0 && !oneOf(string(s.State), e.SealStateOneOf) {
		chk.failf("seal state %s not in %v", s.State, e.SealStateOneOf)
	}
	if e.SealStateNot != "" && string(s.State) == e.SealStateNot {
		chk.failf("seal state must not be %s", e.SealStateNot)
	}
	for _, want := range e.CategoriesInclude {
		if !s.Allows(seal.Category(want)) {
			chk.failf("categories %v missing %s", s.AllowedCategories, want)
		}
	}
	for _, bad := range e.CategoriesExclude {
		if s.Allows(seal.Category(bad)) {
			chk.failf("categories %v must not include %s", s.AllowedCategories, bad)
		}
	}
	if e.CategoriesEmpty && len(s.AllowedCategories) != 0 {
		chk.failf("expected no categories, got %v", s.AllowedCategories)
	}
	if s.AllowedCategories == nil {
		chk.failf("categories must be a list, got nil")
	}
	if len(e.ReasonContainsAny) > 0 && !containsAnyFold(s.Reason, e.ReasonContainsAny) {
		chk.failf("seal reason %q contains none of %v", s.Reason, e.ReasonContainsAny)
	}
}

func checkVerdict(chk *checker, v material.Verdict, e Expect) {
	if e.Status != "" && string(v.Status) != e.Status {
		chk.failf("%s status: expected %s, got %s (%s)", v.MaterialID, e.Status, v.Status, v.Reason)
	}
	if len(e.StatusOneOf) > 0 && !oneOf(string(v.Status), e.StatusOneOf) {
		chk.failf("%s status %s not in %v", v.MaterialID, v.Status, e.StatusOneOf)
	}
	if e.StatusNot != "" && string(v.Status) == e.StatusNot {
		chk.failf("%s status must not be %s", v.MaterialID, e.StatusNot)
	}
}

// #endregion checks

// #region summarize

// Summarize computes aggregate stats from results.
func Summarize(results []CaseResult) Summary {
	s := Summary{Total: len(results), ByKind: map[string]KindCount{}}
	for _, r := range results {
		k := s.ByKind[r.Kind]
		k.Total++
		if r.Passed {
			s.Passed++
			k.Passed++
		} else {
			s.Failed++
			s.Failures = append(s.Failures, r)
		}
		s.ByKind[r.Kind] = k
	}
	return s
}

// MaterialCoverage counts passing and failing cases per canonical material id.
func MaterialCoverage(results []CaseResult) map[string]KindCount {
	out := map[string]KindCount{}
	for _, r := range results {
		if r.Material == "" {
			continue
		}
		k := out[r.Material]
		k.Total++
		if r.Passed {
			k.Passed++
		}
		out[r.Material] = k
	}
	return out
}

// #endregion summarize

// #region helpers

func hasStatusExpectation(e Expect) bool {
	return e.Status != "" || len(e.StatusOneOf) > 0 || e.StatusNot != ""
}

func materialsOf(in CaseInput) []string {
	if in.Material == "" {
		return in.Materials
	}
	return append([]string{in.Material}, in.Materials...)
}

func candidateIn(cs []material.Candidate, id string) bool {
	for _, c := range cs {
		if c.MaterialID == id {
			return true
		}
	}
	return false
}

func cats(e seal.Eligibility) []string {
	out := make([]string, len(e.AllowedCategories))
	for i, c := range e.AllowedCategories {
		out[i] = string(c)
	}
	return out
}

func regimeStrings(rs []regime.Regime) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

func oneOf(s string, set []string) bool {
	for _, x := range set {
		if s == x {
			return true
		}
	}
	return false
}

func containsAnyFold(s string, subs []string) bool {
	ls := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(ls, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// #endregion helpers
