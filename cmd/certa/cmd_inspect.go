package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ohkbilal/certa/internal/audit"
	"github.com/ohkbilal/certa/internal/material"
	"github.com/ohkbilal/certa/internal/promotion"
)

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect the registry, audit trail and promotion history",
	}
	cmd.AddCommand(
		newInspectMaterialsCmd(a),
		newInspectRunsCmd(a),
		newInspectRunCmd(a),
		newInspectPromotionsCmd(a),
		newInspectCertificateCmd(a),
	)
	return cmd
}

// #region materials

func newInspectMaterialsCmd(a *app) *cobra.Command {
	var status, typ string
	cmd := &cobra.Command{
		Use:   "materials",
		Short: "List registry entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ms := material.DefaultRegistry().All()
			if status != "" {
				ms = filterMaterials(ms, func(m material.Material) bool { return string(m.Status) == status })
			}
			if typ != "" {
				ms = filterMaterials(ms, func(m material.Material) bool { return string(m.Type) == typ })
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), ms)
			}
			renderMaterials(cmd.OutOrStdout(), ms)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by registry status (VERIFIED, PROVISIONAL, DEPRECATED)")
	cmd.Flags().StringVar(&typ, "type", "", "filter by family (Metal, Plastic, Elastomer, Composite)")
	return cmd
}

func filterMaterials(ms []material.Material, keep func(material.Material) bool) []material.Material {
	out := ms[:0:0]
	for _, m := range ms {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func renderMaterials(w io.Writer, ms []material.Material) {
	t := newTable(w, "Material registry", "ID", "Name", "Type", "Status", "Range °C", "Documented")
	for _, m := range ms {
		rng := "-"
		if m.Limits != nil {
			rng = fmt.Sprintf("%g .. %g", m.Limits.MinC, m.Limits.MaxC)
		}
		t.AppendRow([]any{m.ID, m.Name, m.Type, m.Status, rng, yesNo(m.IsDocumented())})
	}
	t.AppendFooter(table.Row{"", "", "", "", "total", len(ms)})
	t.Render()
}

// #endregion materials

// #region runs

func newInspectRunsCmd(a *app) *cobra.Command {
	var last int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded assessments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			recs, err := store.List(cmd.Context(), last)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), recs)
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no assessments recorded")
				return nil
			}
			t := newTable(cmd.OutOrStdout(), "Assessments", "Run ID", "Fluid", "°C", "Regime", "Seal", "Materials", "Hash", "Time")
			for _, r := range recs {
				t.AppendRow([]any{r.RunID, r.FluidID, fmt.Sprintf("%.1f", r.Temperature), r.PrimaryRegime,
					r.SealState, len(r.MaterialResults), shortHash(r.FAOHash), r.CreatedAt.Format(time.RFC3339)})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent assessments")
	return cmd
}

func newInspectRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <run-id>",
		Short: "Show one recorded assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(cmd.Context(), args[0])
			if errors.Is(err, audit.ErrNotFound) {
				return fmt.Errorf("run %s: not recorded", args[0])
			}
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			renderRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
}

func renderRecord(w io.Writer, r audit.Record) {
	t := newTable(w, "Assessment "+r.RunID, "Field", "Value")
	t.AppendRow([]any{"Fluid", r.FluidID})
	t.AppendRow([]any{"Temperature", fmt.Sprintf("%.2f°C", r.Temperature)})
	t.AppendRow([]any{"Concentration", r.Concentration})
	t.AppendRow([]any{"Valid", yesNo(r.Valid)})
	if r.Context.InvalidReason != "" {
		t.AppendRow([]any{"Invalid reason", r.Context.InvalidReason})
	}
	t.AppendRow([]any{"Primary regime", r.PrimaryRegime})
	if r.Context.ClassifierRule != "" {
		t.AppendRow([]any{"Classifier rule", r.Context.ClassifierRule})
	}
	t.AppendRow([]any{"Seal", fmt.Sprintf("%s: %s", r.SealState, r.SealResults.Reason)})
	t.AppendRow([]any{"Policy", r.PolicyVersion})
	t.AppendRow([]any{"FAO hash", r.FAOHash})
	t.AppendRow([]any{"Recorded", r.CreatedAt.Format(time.RFC3339)})
	t.SetColumnConfigs([]table.ColumnConfig{wrapped(2, 70)})
	t.Render()

	if len(r.MaterialResults) > 0 {
		mt := newTable(w, "", "Material", "Status", "Rule", "Reason")
		for _, v := range r.MaterialResults {
			mt.AppendRow([]any{v.MaterialID, v.Status, v.Rule, v.Reason})
		}
		mt.SetColumnConfigs([]table.ColumnConfig{wrapped(4, 60)})
		mt.Render()
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// #endregion runs

// #region promotions

func newInspectPromotionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "promotions [material-id]",
		Short: "Show promotion decisions, oldest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Promotions(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no promotion decisions recorded")
				return nil
			}
			t := newTable(cmd.OutOrStdout(), "Promotions", "Material", "From", "To", "Decision", "Reason", "Signature", "Time")
			for _, e := range entries {
				t.AppendRow([]any{e.MaterialID, e.FromStatus, e.ToStatus, e.Decision, e.Reason,
					shortHash(e.Signature), e.CreatedAt.Format(time.RFC3339)})
			}
			t.SetColumnConfigs([]table.ColumnConfig{wrapped(5, 50)})
			t.Render()
			return nil
		},
	}
}

// #endregion promotions

// #region certificate

func newInspectCertificateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "certificate <path>",
		Short: "Verify and show a promotion certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cert, err := promotion.LoadCertificate(args[0])
			if err != nil {
				return err
			}
			verr := cert.Verify(time.Now().UTC())
			if a.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), cert); err != nil {
					return err
				}
				return verr
			}

			t := newTable(cmd.OutOrStdout(), "Certificate "+cert.CertificateID, "Field", "Value")
			t.AppendRow([]any{"Material", cert.MaterialID})
			t.AppendRow([]any{"Transition", fmt.Sprintf("%s -> %s", cert.FromStatus, cert.ToStatus)})
			t.AppendRow([]any{"Policy", cert.PolicyVersion})
			t.AppendRow([]any{"Golden", fmt.Sprintf("%d/%d", cert.GoldenPassed, cert.GoldenTotal)})
			t.AppendRow([]any{"Issued", cert.IssuedAt.Format(time.RFC3339)})
			if !cert.ExpiresAt.IsZero() {
				t.AppendRow([]any{"Expires", cert.ExpiresAt.Format(time.RFC3339)})
			}
			t.AppendRow([]any{"Signature", cert.Signature.Algorithm + " " + cert.Signature.Hash})
			valid := "valid"
			if verr != nil {
				valid = verr.Error()
			}
			t.AppendRow([]any{"Status", valid})
			t.SetColumnConfigs([]table.ColumnConfig{wrapped(2, 70)})
			t.Render()
			renderMetrics(cmd.OutOrStdout(), cert.Metrics)
			return verr
		},
	}
}

func renderMetrics(w io.Writer, ms []promotion.Metric) {
	t := newTable(w, "", "Check", "Value", "Pass")
	for _, m := range ms {
		t.AppendRow([]any{m.Name, fmt.Sprintf("%g", m.Value), yesNo(m.Pass)})
	}
	t.Render()
}

// #endregion certificate
