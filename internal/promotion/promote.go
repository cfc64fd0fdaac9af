package promotion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ohkbilal/certa/internal/audit"
	"github.com/ohkbilal/certa/internal/golden"
	"github.com/ohkbilal/certa/internal/material"
	"github.com/ohkbilal/certa/internal/runctx"
)

// ErrBlocked is returned when a material fails the promotion gate.
var ErrBlocked = errors.New("promotion blocked")

// Recorder persists promotion decisions. *audit.Store satisfies it.
type Recorder interface {
	LogPromotion(ctx context.Context, entry audit.PromotionEntry) error
}

// #region promoter

// Promoter moves provisional materials to VERIFIED. Registries are never
// mutated; each promotion returns a new registry value.
type Promoter struct {
	gate          *Gate
	rec           Recorder
	log           *zap.Logger
	now           func() time.Time
	policyVersion string
}

// Option configures a Promoter.
type Option func(*Promoter)

// WithRecorder logs every decision to rec.
func WithRecorder(rec Recorder) Option { return func(p *Promoter) { p.rec = rec } }

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option { return func(p *Promoter) { p.log = log } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(p *Promoter) { p.now = now } }

// WithPolicyVersion stamps certificates with v.
func WithPolicyVersion(v string) Option { return func(p *Promoter) { p.policyVersion = v } }

// NewPromoter creates a promoter. A nil gate uses DefaultGateConfig.
func NewPromoter(gate *Gate, opts ...Option) *Promoter {
	if gate == nil {
		gate = NewGate(DefaultGateConfig())
	}
	p := &Promoter{
		gate:          gate,
		log:           zap.NewNop(),
		now:           time.Now,
		policyVersion: runctx.DefaultPolicyVersion,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Result is the outcome of one promotion attempt. Certificate is nil when
// the gate blocked the material; Registry is then the input registry.
type Result struct {
	Registry    *material.Registry
	Report      Report
	Certificate *Certificate
}

// Promote checks materialID and, if eligible, returns a registry in which
// it is VERIFIED together with a signed certificate. A blocked material
// yields an error wrapping ErrBlocked alongside the report.
func (p *Promoter) Promote(ctx context.Context, reg *material.Registry, materialID string, results []golden.CaseResult) (Result, error) {
	report := p.gate.Check(reg, materialID, results)
	res := Result{Registry: reg, Report: report}

	if !report.Eligible {
		p.log.Warn("promotion blocked",
			zap.String("material_id", report.MaterialID),
			zap.String("reason", report.Reason))
		if err := p.record(ctx, report, nil); err != nil {
			return res, err
		}
		return res, fmt.Errorf("promote %s: %w: %s", report.MaterialID, ErrBlocked, report.Reason)
	}

	next, err := reg.WithStatus(report.MaterialID, material.Verified)
	if err != nil {
		return res, fmt.Errorf("promote %s: %w", report.MaterialID, err)
	}

	s := golden.Summarize(results)
	issued := p.now().UTC()
	cert := &Certificate{
		CertificateID: newCertificateID(issued),
		MaterialID:    report.MaterialID,
		FromStatus:    report.FromStatus,
		ToStatus:      material.Verified,
		PolicyVersion: p.policyVersion,
		GoldenTotal:   s.Total,
		GoldenPassed:  s.Passed,
		Metrics:       report.Metrics,
		IssuedAt:      issued,
	}
	if v := p.gate.Config().ValidFor; v > 0 {
		cert.ExpiresAt = issued.Add(v)
	}
	if err := cert.Sign(issued); err != nil {
		return res, fmt.Errorf("promote %s: %w", report.MaterialID, err)
	}
	if err := p.record(ctx, report, cert); err != nil {
		return res, err
	}

	p.log.Info("material promoted",
		zap.String("material_id", cert.MaterialID),
		zap.String("certificate_id", cert.CertificateID),
		zap.String("hash", cert.Signature.Hash))

	res.Registry = next
	res.Certificate = cert
	return res, nil
}

// PromoteAll attempts every provisional material in reg, threading the
// registry through successive promotions. Blocked materials are reported
// in the results, not as errors; only recorder failures abort.
func (p *Promoter) PromoteAll(ctx context.Context, reg *material.Registry, results []golden.CaseResult) (*material.Registry, []Result, error) {
	var out []Result
	for _, m := range reg.ByStatus(material.Provisional) {
		if err := ctx.Err(); err != nil {
			return reg, out, fmt.Errorf("promote all: %w", err)
		}
		res, err := p.Promote(ctx, reg, m.ID, results)
		if err != nil && !errors.Is(err, ErrBlocked) {
			return reg, out, err
		}
		reg = res.Registry
		out = append(out, res)
	}
	return reg, out, nil
}

// #endregion promoter

// #region helpers
func (p *Promoter) record(ctx context.Context, report Report, cert *Certificate) error {
	if p.rec == nil {
		return nil
	}
	metrics, err := json.Marshal(report.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	entry := audit.PromotionEntry{
		MaterialID:  report.MaterialID,
		FromStatus:  string(report.FromStatus),
		ToStatus:    string(report.FromStatus),
		Decision:    "rejected",
		Reason:      report.Reason,
		MetricsJSON: string(metrics),
		CreatedAt:   p.now().UTC(),
	}
	if cert != nil {
		entry.ToStatus = string(cert.ToStatus)
		entry.Decision = "promoted"
		entry.Signature = cert.Signature.Hash
	}
	if err := p.rec.LogPromotion(ctx, entry); err != nil {
		return fmt.Errorf("record promotion %s: %w", report.MaterialID, err)
	}
	return nil
}

func newCertificateID(t time.Time) string {
	return fmt.Sprintf("CERT-%d-%s", t.UnixMilli(), uuid.NewString()[:8])
}

// #endregion helpers
