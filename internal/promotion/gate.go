package promotion

import (
	"fmt"

	"github.com/ohkbilal/certa/internal/golden"
	"github.com/ohkbilal/certa/internal/material"
)

// #region gate
// Gate decides whether a provisional material may become VERIFIED.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given thresholds.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Config returns the gate thresholds.
func (g *Gate) Config() GateConfig { return g.config }

// Check evaluates materialID in reg against a completed golden run.
// A material is eligible only if it is registered as PROVISIONAL, its
// documentation is complete, the whole suite passed at the required rate,
// and enough passing cases exercised it directly.
func (g *Gate) Check(reg *material.Registry, materialID string, results []golden.CaseResult) Report {
	var metrics []Metric
	passed := true
	var failReasons []string

	fail := func(format string, args ...any) {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf(format, args...))
	}

	m, ok := reg.Lookup(materialID)
	report := Report{MaterialID: materialID}
	metrics = append(metrics, Metric{Name: "registered", Value: boolValue(ok), Pass: ok})
	if !ok {
		fail("%s is not registered", materialID)
	} else {
		report.MaterialID = m.ID
		report.FromStatus = m.Status
	}

	// 1. Lifecycle: only provisional entries can be promoted
	provisional := ok && m.Status == material.Provisional
	metrics = append(metrics, Metric{Name: "status_provisional", Value: boolValue(provisional), Pass: provisional})
	if ok && !provisional {
		fail("%s is %s, not %s", m.ID, m.Status, material.Provisional)
	}

	// 2. Documentation: taxonomy, regime mapping, failure modes, references
	documented := ok && m.IsDocumented()
	metrics = append(metrics, Metric{Name: "documentation", Value: boolValue(documented), Pass: documented})
	if ok && !documented {
		fail("%s documentation incomplete", m.ID)
	}

	// 3. Whole-suite pass rate
	s := golden.Summarize(results)
	rate := s.PassRate()
	ratePass := s.Total > 0 && rate >= g.config.RequiredPassRate
	metrics = append(metrics, Metric{Name: "golden_pass_rate", Value: rate, Pass: ratePass})
	if !ratePass {
		fail("golden pass rate %.4f below %.4f (%d/%d)", rate, g.config.RequiredPassRate, s.Passed, s.Total)
	}

	// 4. Coverage of this material
	var cov golden.KindCount
	if ok {
		cov = golden.MaterialCoverage(results)[m.ID]
	}
	covPass := cov.Total >= g.config.MinMaterialCases && cov.Passed == cov.Total
	metrics = append(metrics, Metric{Name: "material_cases", Value: float64(cov.Total), Pass: covPass})
	if ok && !covPass {
		fail("%s has %d/%d passing cases, need %d", m.ID, cov.Passed, cov.Total, g.config.MinMaterialCases)
	}

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("promotion blocked: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("promotion blocked: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	report.Eligible = passed
	report.Metrics = metrics
	report.Reason = reason
	return report
}

// CheckAll checks every provisional entry in reg.
func (g *Gate) CheckAll(reg *material.Registry, results []golden.CaseResult) []Report {
	var out []Report
	for _, m := range reg.ByStatus(material.Provisional) {
		out = append(out, g.Check(reg, m.ID, results))
	}
	return out
}

// #endregion gate

// #region helpers
func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
