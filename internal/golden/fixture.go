package golden

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrFixture marks a fixture that cannot be run.
var ErrFixture = errors.New("invalid golden fixture")

// Case kinds.
const (
	KindAssessment    = "assessment"
	KindSeal          = "seal"
	KindExtract       = "extract"
	KindRecommendable = "recommendable"
	KindDeterminism   = "determinism"
)

var kinds = map[string]bool{
	KindAssessment: true, KindSeal: true, KindExtract: true,
	KindRecommendable: true, KindDeterminism: true,
}

// #region fixture-types

// Fixture is the top-level structure of a golden fixture file.
type Fixture struct {
	Description   string `json:"description" yaml:"description"`
	PolicyVersion string `json:"policy_version,omitempty" yaml:"policy_version,omitempty"`
	Cases         []Case `json:"cases" yaml:"cases"`
}

// Case is one golden test case.
type Case struct {
	ID     string    `json:"id" yaml:"id"`
	Name   string    `json:"name" yaml:"name"`
	Ref    string    `json:"ref,omitempty" yaml:"ref,omitempty"`
	Kind   string    `json:"kind" yaml:"kind"`
	Input  CaseInput `json:"input" yaml:"input"`
	Expect Expect    `json:"expect" yaml:"expect"`
}

// CaseInput holds raw request values. FluidID, Temperature and Unit are
// decoded loosely so fixtures can carry nulls, numbers and strings exactly
// as an API client would send them.
type CaseInput struct {
	FluidID     any      `json:"fluid_id" yaml:"fluid_id"`
	Temperature any      `json:"temperature" yaml:"temperature"`
	Unit        any      `json:"unit" yaml:"unit"`
	Material    string   `json:"material,omitempty" yaml:"material,omitempty"`
	Materials   []string `json:"materials,omitempty" yaml:"materials,omitempty"`

	// Regime feeds recommendable cases and synthetic seal contexts.
	Regime string `json:"regime,omitempty" yaml:"regime,omitempty"`
	// Context builds a seal case from a bare regime and validity flag
	// instead of a fluid. A seal case without Context resolves a nil context.
	Context *RawContext `json:"context,omitempty" yaml:"context,omitempty"`

	// Repeat and Interleave drive determinism cases.
	Repeat     int      `json:"repeat,omitempty" yaml:"repeat,omitempty"`
	Interleave []string `json:"interleave,omitempty" yaml:"interleave,omitempty"`
}

// RawContext is a hand-built context for seal cases.
type RawContext struct {
	Regime string `json:"regime" yaml:"regime"`
	Valid  bool   `json:"valid" yaml:"valid"`
}

// Expect lists assertions; unset fields are not checked.
type Expect struct {
	Valid             *bool    `json:"valid,omitempty" yaml:"valid,omitempty"`
	PrimaryRegime     string   `json:"primary_regime,omitempty" yaml:"primary_regime,omitempty"`
	PrimaryOneOf      []string `json:"primary_one_of,omitempty" yaml:"primary_one_of,omitempty"`
	PrimaryNot        string   `json:"primary_not,omitempty" yaml:"primary_not,omitempty"`
	SecondaryIncludes []string `json:"secondary_includes,omitempty" yaml:"secondary_includes,omitempty"`
	TagsInclude       []string `json:"tags_include,omitempty" yaml:"tags_include,omitempty"`
	Concentration     *float64 `json:"concentration,omitempty" yaml:"concentration,omitempty"`
	TemperatureC      *float64 `json:"temperature_c,omitempty" yaml:"temperature_c,omitempty"`
	FluidID           *string  `json:"fluid_id,omitempty" yaml:"fluid_id,omitempty"`
	PolicyVersion     string   `json:"policy_version,omitempty" yaml:"policy_version,omitempty"`

	SealState         string   `json:"seal_state,omitempty" yaml:"seal_state,omitempty"`
	SealStateOneOf    []string `json:"seal_state_one_of,omitempty" yaml:"seal_state_one_of,omitempty"`
	SealStateNot      string   `json:"seal_state_not,omitempty" yaml:"seal_state_not,omitempty"`
	CategoriesInclude []string `json:"categories_include,omitempty" yaml:"categories_include,omitempty"`
	CategoriesExclude []string `json:"categories_exclude,omitempty" yaml:"categories_exclude,omitempty"`
	CategoriesEmpty   bool     `json:"categories_empty,omitempty" yaml:"categories_empty,omitempty"`
	ReasonContainsAny []string `json:"reason_contains_any,omitempty" yaml:"reason_contains_any,omitempty"`

	Status      string   `json:"status,omitempty" yaml:"status,omitempty"`
	StatusOneOf []string `json:"status_one_of,omitempty" yaml:"status_one_of,omitempty"`
	StatusNot   string   `json:"status_not,omitempty" yaml:"status_not,omitempty"`

	Recommendable *bool `json:"recommendable,omitempty" yaml:"recommendable,omitempty"`

	// Excluded lists materials that must land in the excluded candidate set.
	Excluded []string `json:"excluded,omitempty" yaml:"excluded,omitempty"`

	UniqueRunIDs bool `json:"unique_run_ids,omitempty" yaml:"unique_run_ids,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads a fixture file. Files ending in .yaml or .yml are
// decoded as YAML; everything else as JSON.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w: %w", path, ErrFixture, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks that the fixture has cases, ids are unique and every
// kind is known.
func (f *Fixture) Validate() error {
	if len(f.Cases) == 0 {
		return fmt.Errorf("no cases: %w", ErrFixture)
	}
	seen := map[string]bool{}
	for i, c := range f.Cases {
		if c.ID == "" {
			return fmt.Errorf("case %d has no id: %w", i, ErrFixture)
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate case id %s: %w", c.ID, ErrFixture)
		}
		seen[c.ID] = true
		if !kinds[c.Kind] {
			return fmt.Errorf("case %s has unknown kind %q: %w", c.ID, c.Kind, ErrFixture)
		}
	}
	return nil
}

// Save writes the fixture as indented JSON, or YAML for .yaml/.yml paths.
func (f *Fixture) Save(path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(f)
	default:
		data, err = json.MarshalIndent(f, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-loader
