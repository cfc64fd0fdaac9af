package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ohkbilal/certa/internal/material"
	"github.com/ohkbilal/certa/internal/promotion"
)

type promoteFlags struct {
	materials []string
	fixtures  []string
	outDir    string
	dryRun    bool
}

func newPromoteCmd(a *app) *cobra.Command {
	var fl promoteFlags
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Promote provisional materials that pass the golden gate",
		Long: "Runs the golden suite, checks each provisional material against the\n" +
			"promotion thresholds and writes a signed certificate for every\n" +
			"material promoted to VERIFIED. Every decision is logged to the\n" +
			"audit store.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPromote(cmd, a, fl)
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&fl.materials, "material", "m", nil, "material to promote (repeatable, defaults to every provisional entry)")
	f.StringSliceVarP(&fl.fixtures, "fixture", "f", nil, "fixture file (repeatable, defaults to golden.fixtures)")
	f.StringVarP(&fl.outDir, "out", "o", ".", "directory for certificate files")
	f.BoolVar(&fl.dryRun, "dry-run", false, "report eligibility without promoting")
	return cmd
}

func (a *app) gateConfig() promotion.GateConfig {
	p := a.cfg.Promotion
	return promotion.GateConfig{
		RequiredPassRate: p.RequiredPassRate,
		MinMaterialCases: p.MinMaterialCases,
		ValidFor:         time.Duration(p.ValidForDays) * 24 * time.Hour,
	}
}

func runPromote(cmd *cobra.Command, a *app, fl promoteFlags) error {
	ctx := cmd.Context()
	res, err := a.runGate(ctx, fl.fixtures, 0)
	if err != nil {
		return err
	}

	reg := material.DefaultRegistry()
	ids := fl.materials
	if len(ids) == 0 {
		for _, m := range reg.ByStatus(material.Provisional) {
			ids = append(ids, m.ID)
		}
	}

	gate := promotion.NewGate(a.gateConfig())
	if fl.dryRun {
		reports := make([]promotion.Report, len(ids))
		for i, id := range ids {
			reports[i] = gate.Check(reg, id, res.results)
		}
		if a.jsonOut {
			return writeJSON(cmd.OutOrStdout(), reports)
		}
		renderReports(cmd.OutOrStdout(), reports, nil)
		return nil
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	p := promotion.NewPromoter(gate,
		promotion.WithRecorder(store),
		promotion.WithLogger(a.log),
		promotion.WithPolicyVersion(a.cfg.PolicyVersion))

	if err := os.MkdirAll(fl.outDir, 0o755); err != nil {
		return fmt.Errorf("create certificate dir: %w", err)
	}

	reports := make([]promotion.Report, 0, len(ids))
	certs := map[string]string{}
	for _, id := range ids {
		r, err := p.Promote(ctx, reg, id, res.results)
		reports = append(reports, r.Report)
		if r.Certificate == nil {
			if err != nil && !errors.Is(err, promotion.ErrBlocked) {
				return err
			}
			continue
		}
		reg = r.Registry
		path := filepath.Join(fl.outDir, r.Report.MaterialID+".cert.json")
		if err := promotion.SaveCertificate(path, r.Certificate); err != nil {
			return err
		}
		certs[r.Report.MaterialID] = path
	}

	if a.jsonOut {
		return writeJSON(cmd.OutOrStdout(), struct {
			Reports      []promotion.Report `json:"reports"`
			Certificates map[string]string  `json:"certificates"`
		}{reports, certs})
	}
	renderReports(cmd.OutOrStdout(), reports, certs)
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d materials promoted\n", len(certs), len(reports))
	return nil
}

func renderReports(w io.Writer, reports []promotion.Report, certs map[string]string) {
	t := newTable(w, "Promotion", "Material", "From", "Eligible", "Reason", "Certificate")
	for _, r := range reports {
		cert := "-"
		if p, ok := certs[r.MaterialID]; ok {
			cert = p
		}
		t.AppendRow([]any{r.MaterialID, r.FromStatus, yesNo(r.Eligible), r.Reason, cert})
	}
	t.SetColumnConfigs([]table.ColumnConfig{wrapped(4, 60)})
	t.Render()
}
