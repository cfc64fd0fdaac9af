package audit

import (
	"time"

	"github.com/ohkbilal/certa/internal/material"
	"github.com/ohkbilal/certa/internal/regime"
	"github.com/ohkbilal/certa/internal/runctx"
	"github.com/ohkbilal/certa/internal/seal"
)

// #region record
// Record is a single row in the assessments table.
type Record struct {
	RunID           string             `json:"run_id"`
	FluidID         string             `json:"fluid_id"`
	Concentration   float64            `json:"concentration"`
	Temperature     float64            `json:"temperature_c"`
	PrimaryRegime   regime.Regime      `json:"primary_regime"`
	Valid           bool               `json:"valid"`
	SealState       seal.State         `json:"seal_state"`
	Context         runctx.Snapshot    `json:"context"`
	MaterialResults []material.Verdict `json:"material_results"`
	SealResults     seal.Eligibility   `json:"seal_results"`
	PolicyVersion   string             `json:"policy_version"`
	FAOHash         string             `json:"fao_hash"`
	CreatedAt       time.Time          `json:"created_at"`
}

// #endregion record

// #region promotion-entry
// PromotionEntry is a single row in the promotion_log table.
type PromotionEntry struct {
	MaterialID  string
	FromStatus  string
	ToStatus    string
	Decision    string // "promoted" | "rejected"
	Reason      string
	MetricsJSON string
	Signature   string
	CreatedAt   time.Time
}

// #endregion promotion-entry
