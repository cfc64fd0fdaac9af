package promotion

import (
	"time"

	"github.com/ohkbilal/certa/internal/material"
)

// #region gate-config
// GateConfig holds the thresholds a provisional material must meet.
type GateConfig struct {
	RequiredPassRate float64 // whole-suite pass rate, 1.0 means every case
	MinMaterialCases int     // golden cases that must exercise the material
	ValidFor         time.Duration
}

// DefaultGateConfig returns the production promotion thresholds.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		RequiredPassRate: 1.0,
		MinMaterialCases: 3,
		ValidFor:         30 * 24 * time.Hour,
	}
}

// #endregion gate-config

// #region metric
// Metric captures a single promotion check result.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion metric

// #region report
// Report is the outcome of checking one material against the gate.
type Report struct {
	MaterialID string                  `json:"material_id"`
	FromStatus material.RegistryStatus `json:"from_status"`
	Eligible   bool                    `json:"eligible"`
	Metrics    []Metric                `json:"metrics"`
	Reason     string                  `json:"reason"`
}

// Metric returns the named metric, if present.
func (r Report) Metric(name string) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// #endregion report

// #region certificate
// Signature seals a certificate's payload.
type Signature struct {
	Algorithm string    `json:"algorithm"`
	SignedAt  time.Time `json:"signed_at"`
	Hash      string    `json:"hash"`
}

// Certificate records an approved promotion. Hash covers every field
// except the signature itself.
type Certificate struct {
	CertificateID string                  `json:"certificate_id"`
	MaterialID    string                  `json:"material_id"`
	FromStatus    material.RegistryStatus `json:"from_status"`
	ToStatus      material.RegistryStatus `json:"to_status"`
	PolicyVersion string                  `json:"policy_version"`
	GoldenTotal   int                     `json:"golden_total"`
	GoldenPassed  int                     `json:"golden_passed"`
	Metrics       []Metric                `json:"metrics"`
	IssuedAt      time.Time               `json:"issued_at"`
	ExpiresAt     time.Time               `json:"expires_at"`
	Signature     Signature               `json:"signature"`
}

// #endregion certificate
