package material

import "github.com/ohkbilal/certa/internal/regime"

// #region status
// Status is a compatibility verdict.
type Status string

const (
	Compatible       Status = "COMPATIBLE"
	Conditional      Status = "CONDITIONAL"
	Fail             Status = "FAIL"
	InsufficientData Status = "INSUFFICIENT_DATA"
	Unknown          Status = "UNKNOWN"
)

// #endregion status

// #region verdict
// Verdict is the evaluator output for one material.
type Verdict struct {
	MaterialID string `json:"material_id"`
	// Canonical is the registry id the material resolved to, if any.
	Canonical string `json:"canonical,omitempty"`
	Status    Status `json:"status"`
	Reason    string `json:"reason"`
	Rule      string `json:"rule"`
}

// #endregion verdict

// #region registry-types
// Type is a material family.
type Type string

const (
	Metal     Type = "Metal"
	Plastic   Type = "Plastic"
	Elastomer Type = "Elastomer"
	Composite Type = "Composite"
)

// RegistryStatus is the lifecycle state of a registry entry.
type RegistryStatus string

const (
	Verified    RegistryStatus = "VERIFIED"
	Provisional RegistryStatus = "PROVISIONAL"
	Deprecated  RegistryStatus = "DEPRECATED"
)

// TempLimits is a continuous service range in Celsius.
type TempLimits struct {
	MinC float64 `json:"min_c" yaml:"min_c"`
	MaxC float64 `json:"max_c" yaml:"max_c"`
}

// FailureMode documents a known degradation path.
type FailureMode struct {
	Mode     string `json:"mode" yaml:"mode"`
	Trigger  string `json:"trigger" yaml:"trigger"`
	Severity string `json:"severity" yaml:"severity"`
}

// Material is a registry entry.
type Material struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        Type           `json:"type"`
	Status      RegistryStatus `json:"status"`
	Composition string         `json:"composition,omitempty"`

	// Exact ids match the whole normalized material id; Fragments match substrings.
	Exact     []string `json:"-"`
	Fragments []string `json:"-"`

	Limits   *TempLimits              `json:"temperature_limits,omitempty"`
	Behavior map[regime.Regime]Status `json:"regime_behavior,omitempty"`

	// RegimeMaxC caps service temperature within a specific regime.
	RegimeMaxC map[regime.Regime]float64 `json:"regime_max_c,omitempty"`

	FailureModes []FailureMode `json:"failure_modes,omitempty"`
	References   []string      `json:"references,omitempty"`
}

// #endregion registry-types
