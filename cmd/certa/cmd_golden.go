package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ohkbilal/certa/internal/golden"
	"github.com/ohkbilal/certa/internal/runctx"
)

type goldenFlags struct {
	fixtures []string
	workers  int
}

func newGoldenCmd(a *app) *cobra.Command {
	var fl goldenFlags
	cmd := &cobra.Command{
		Use:   "golden",
		Short: "Run the golden deployment gate",
		Long: "Runs every golden fixture case. Any failure blocks deployment and\n" +
			"exits with status 2.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGolden(cmd, a, fl)
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&fl.fixtures, "fixture", "f", nil, "fixture file (repeatable, defaults to golden.fixtures)")
	f.IntVar(&fl.workers, "workers", 0, "parallel workers (defaults to golden.workers)")
	return cmd
}

func runGolden(cmd *cobra.Command, a *app, fl goldenFlags) error {
	res, err := a.runGate(cmd.Context(), fl.fixtures, fl.workers)
	if err != nil {
		return err
	}
	if a.jsonOut {
		if err := writeJSON(cmd.OutOrStdout(), res.summary); err != nil {
			return err
		}
	} else {
		renderSummary(cmd.OutOrStdout(), res.summary)
	}
	if !res.summary.AllPassed() {
		return errGateFailed
	}
	return nil
}

// #region gate

type gateRun struct {
	fixture *golden.Fixture
	results []golden.CaseResult
	summary golden.Summary
}

// runGate loads and merges fixtures, then runs them in parallel. Paths and
// workers fall back to configuration when empty.
func (a *app) runGate(ctx context.Context, paths []string, workers int) (gateRun, error) {
	if len(paths) == 0 {
		paths = a.cfg.Golden.Fixtures
	}
	if workers < 1 {
		workers = a.cfg.Golden.Workers
	}
	if len(paths) == 0 {
		return gateRun{}, fmt.Errorf("run gate: no fixtures configured")
	}

	f, err := golden.LoadFixture(paths[0])
	if err != nil {
		return gateRun{}, err
	}
	for _, p := range paths[1:] {
		extra, err := golden.LoadFixture(p)
		if err != nil {
			return gateRun{}, err
		}
		if added := f.Merge(extra); added != len(extra.Cases) {
			a.log.Warn("duplicate golden case ids skipped",
				zap.String("fixture", p), zap.Int("skipped", len(extra.Cases)-added))
		}
	}

	runner := golden.NewRunner(nil, runctx.WithPolicyVersion(a.cfg.PolicyVersion)).ForFixture(f)
	results, err := runner.RunParallel(ctx, f, workers)
	if err != nil {
		return gateRun{}, err
	}
	s := golden.Summarize(results)
	a.log.Info("golden gate complete",
		zap.Int("total", s.Total), zap.Int("passed", s.Passed), zap.Int("failed", s.Failed))
	return gateRun{fixture: f, results: results, summary: s}, nil
}

// #endregion gate

func renderSummary(w io.Writer, s golden.Summary) {
	kinds := make([]string, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	t := newTable(w, "Golden gate", "Kind", "Passed", "Total")
	for _, k := range kinds {
		c := s.ByKind[k]
		t.AppendRow([]any{k, c.Passed, c.Total})
	}
	t.AppendFooter(table.Row{"all", s.Passed, s.Total})
	t.Render()

	if len(s.Failures) > 0 {
		ft := newTable(w, "Failures", "ID", "Name", "Failures")
		for _, r := range s.Failures {
			ft.AppendRow([]any{r.ID, r.Name, strings.Join(r.Failures, "\n")})
		}
		ft.SetColumnConfigs([]table.ColumnConfig{wrapped(3, 70)})
		ft.Render()
		fmt.Fprintf(w, "BLOCKED: %d/%d cases failed\n", s.Failed, s.Total)
		return
	}
	fmt.Fprintf(w, "PASSED: %d/%d cases (%.1f%%)\n", s.Passed, s.Total, s.PassRate()*100)
}
