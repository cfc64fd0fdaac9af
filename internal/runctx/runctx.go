package runctx

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ohkbilal/certa/internal/fluid"
	"github.com/ohkbilal/certa/internal/regime"
)

// DefaultPolicyVersion is stamped on every context unless overridden.
const DefaultPolicyVersion = "V16.0"

// absoluteZeroC is the lowest physically meaningful temperature.
const absoluteZeroC = -273.15

// #region unit
// Unit is an input temperature unit.
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

// ParseUnit accepts "C", "F", "°C", "°F" case-insensitively. Empty means Celsius.
func ParseUnit(s string) (Unit, bool) {
	u := strings.ToUpper(strings.TrimSpace(s))
	u = strings.TrimPrefix(u, "°")
	switch u {
	case "", "C":
		return Celsius, true
	case "F":
		return Fahrenheit, true
	}
	return "", false
}

// ToCelsius converts a temperature in unit u to Celsius. Fahrenheit uses
// C = (F - 32) * 5/9.
func ToCelsius(temp float64, u Unit) float64 {
	if u == Fahrenheit {
		return (temp - 32) * 5 / 9
	}
	return temp
}

// #endregion unit

// #region run-context
// RunContext is the immutable per-request classification snapshot shared
// by the seal resolver and material evaluator. Construct with New, FromRaw
// or ForRegime. Exported fields are read-only: nothing downstream writes
// them, and a literal RunContext skips every validity check.
type RunContext struct {
	RunID            string
	FluidID          string
	Temperature      float64 // Celsius
	InputTemperature float64
	InputUnit        Unit
	PrimaryRegime    regime.Regime
	secondary        []regime.Regime
	tags             []regime.Tag
	Concentration    float64
	Valid            bool
	PolicyVersion    string
	// InvalidReason is empty for valid contexts.
	InvalidReason string
	rule          string
}

// ClassifierRule names the classifier rule that produced the primary
// regime, or "" for the NEUTRAL fallback and invalid contexts.
func (c *RunContext) ClassifierRule() string { return c.rule }

// SecondaryRegimes returns a copy of the ordered secondary regime tags.
func (c *RunContext) SecondaryRegimes() []regime.Regime {
	out := make([]regime.Regime, len(c.secondary))
	copy(out, c.secondary)
	return out
}

// FluidTags returns a copy of the derived fluid tags.
func (c *RunContext) FluidTags() []regime.Tag {
	out := make([]regime.Tag, len(c.tags))
	copy(out, c.tags)
	return out
}

// HasTag reports whether the context carries tag t.
func (c *RunContext) HasTag(t regime.Tag) bool {
	return regime.HasTag(c.tags, t)
}

// Snapshot is the serialisable form of a RunContext, used for audit
// records and the final assessment output.
type Snapshot struct {
	RunID            string          `json:"run_id"`
	FluidID          string          `json:"fluid_id"`
	Temperature      float64         `json:"temperature_c"`
	InputTemperature float64         `json:"input_temperature"`
	InputUnit        Unit            `json:"input_unit"`
	PrimaryRegime    regime.Regime   `json:"primary_regime"`
	SecondaryRegimes []regime.Regime `json:"secondary_regimes"`
	FluidTags        []regime.Tag    `json:"fluid_tags"`
	Concentration    float64         `json:"concentration"`
	Valid            bool            `json:"valid"`
	PolicyVersion    string          `json:"policy_version"`
	InvalidReason    string          `json:"invalid_reason,omitempty"`
	ClassifierRule   string          `json:"classifier_rule,omitempty"`
}

// Snapshot copies the context into its serialisable form.
func (c *RunContext) Snapshot() Snapshot {
	return Snapshot{
		RunID:            c.RunID,
		FluidID:          c.FluidID,
		Temperature:      c.Temperature,
		InputTemperature: c.InputTemperature,
		InputUnit:        c.InputUnit,
		PrimaryRegime:    c.PrimaryRegime,
		SecondaryRegimes: c.SecondaryRegimes(),
		FluidTags:        c.FluidTags(),
		Concentration:    c.Concentration,
		Valid:            c.Valid,
		PolicyVersion:    c.PolicyVersion,
		InvalidReason:    c.InvalidReason,
		ClassifierRule:   c.rule,
	}
}

// #endregion run-context

// #region options
// Option customises context construction.
type Option func(*options)

type options struct {
	policyVersion string
	now           func() time.Time
	newID         func() string
}

// WithPolicyVersion overrides the stamped policy version.
func WithPolicyVersion(v string) Option {
	return func(o *options) {
		if v != "" {
			o.policyVersion = v
		}
	}
}

// WithClock replaces the clock used for the run id prefix.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDSource replaces the random suffix generator of the run id.
func WithIDSource(f func() string) Option {
	return func(o *options) { o.newID = f }
}

func buildOptions(opts []Option) options {
	o := options{
		policyVersion: DefaultPolicyVersion,
		now:           time.Now,
		newID:         func() string { return uuid.New().String() },
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// #endregion options

// #region new
// New builds a RunContext from typed input. It never panics: unrecognised
// fluids, non-finite temperatures, temperatures below absolute zero, and
// unknown units all produce an invalid context.
func New(fluidID string, temp float64, unit string, opts ...Option) RunContext {
	o := buildOptions(opts)
	ctx := RunContext{
		RunID:            newRunID(o),
		FluidID:          fluid.Normalize(fluidID),
		InputTemperature: temp,
		PolicyVersion:    o.policyVersion,
	}

	u, ok := ParseUnit(unit)
	if !ok {
		return invalidate(ctx, fmt.Sprintf("unrecognised temperature unit %q", unit))
	}
	ctx.InputUnit = u

	if !finite(temp) {
		return invalidate(ctx, "temperature is not a finite number")
	}
	ctx.Temperature = ToCelsius(temp, u)
	if math.IsInf(ctx.Temperature, 0) {
		return invalidate(ctx, "temperature overflows after unit conversion")
	}
	if ctx.Temperature < absoluteZeroC {
		return invalidate(ctx, "temperature below absolute zero")
	}

	if ctx.FluidID == "" {
		return invalidate(ctx, "fluid identifier is empty")
	}
	if !fluid.IsKnown(ctx.FluidID) {
		return invalidate(ctx, fmt.Sprintf("fluid %q not recognised", ctx.FluidID))
	}

	cls := fluid.Classify(ctx.FluidID, ctx.Temperature)
	ctx.PrimaryRegime = cls.Primary
	ctx.secondary = cls.Secondary
	ctx.tags = fluid.Tags(ctx.FluidID)
	ctx.Concentration = fluid.ExtractConcentration(ctx.FluidID)
	ctx.rule = fluid.RuleName(ctx.FluidID)
	ctx.Valid = ctx.PrimaryRegime != regime.UnknownRestricted
	if !ctx.Valid {
		return invalidate(ctx, "fluid could not be classified")
	}
	return ctx
}

// #endregion new

// #region from-raw
// FromRaw builds a RunContext from loosely typed API input such as decoded
// JSON. Nil fluid ids become empty; numeric ids are stringified. Temperatures
// may be any numeric type or a numeric string; nil or anything else
// produces an invalid context.
func FromRaw(fluidID any, temperature any, unit any, opts ...Option) RunContext {
	id := rawString(fluidID)
	u := rawString(unit)
	temp, ok := rawNumber(temperature)
	if !ok {
		o := buildOptions(opts)
		ctx := RunContext{
			RunID:         newRunID(o),
			FluidID:       fluid.Normalize(id),
			InputUnit:     Unit(strings.ToUpper(strings.TrimSpace(u))),
			PolicyVersion: o.policyVersion,
		}
		return invalidate(ctx, "temperature missing or not numeric")
	}
	return New(id, temp, u, opts...)
}

func rawString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, bool:
		return fmt.Sprint(x)
	}
	return ""
}

func rawNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// #endregion from-raw

// #region for-regime
// ForRegime builds a context that carries only a regime and a validity
// flag, for checks that depend on nothing else, such as seal resolution.
// An invalid flag still forces UNKNOWN_RESTRICTED.
func ForRegime(r regime.Regime, valid bool, opts ...Option) RunContext {
	o := buildOptions(opts)
	ctx := RunContext{
		RunID:         newRunID(o),
		PrimaryRegime: r,
		Valid:         valid,
		PolicyVersion: o.policyVersion,
		secondary:     []regime.Regime{},
		tags:          []regime.Tag{},
	}
	if !valid {
		return invalidate(ctx, "context marked invalid")
	}
	return ctx
}

// #endregion for-regime

// #region helpers
// invalidate degrades ctx to the fail-closed form. Non-finite temperatures
// are zeroed so the snapshot always encodes; InvalidReason says why.
func invalidate(ctx RunContext, reason string) RunContext {
	if !finite(ctx.InputTemperature) {
		ctx.InputTemperature = 0
	}
	if !finite(ctx.Temperature) {
		ctx.Temperature = 0
	}
	ctx.Valid = false
	ctx.PrimaryRegime = regime.UnknownRestricted
	ctx.secondary = []regime.Regime{}
	ctx.tags = []regime.Tag{}
	ctx.Concentration = 0
	ctx.InvalidReason = reason
	ctx.rule = ""
	return ctx
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func newRunID(o options) string {
	return fmt.Sprintf("RUN-%d-%s", o.now().UnixMilli(), o.newID())
}

// #endregion helpers
