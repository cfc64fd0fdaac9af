package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ohkbilal/certa/internal/golden"
)

type exportFlags struct {
	out         string
	last        int
	merge       string
	description string
}

func newExportCmd(a *app) *cobra.Command {
	var fl exportFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded assessments as a golden fixture",
		Long: "Turns the most recent recorded assessments into regression cases.\n" +
			"With --merge the new cases are appended to an existing fixture,\n" +
			"skipping ids it already holds.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, a, fl)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fl.out, "out", "o", "", "output fixture path (.json or .yaml)")
	f.IntVar(&fl.last, "last", 50, "number of most recent assessments to export")
	f.StringVar(&fl.merge, "merge", "", "existing fixture to extend")
	f.StringVar(&fl.description, "description", "exported from audit trail", "fixture description")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runExport(cmd *cobra.Command, a *app, fl exportFlags) error {
	ctx := cmd.Context()
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.List(ctx, fl.last)
	if err != nil {
		return err
	}
	// List is newest first; fixtures read chronologically.
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}

	exported, skipped := golden.FromRecords(fl.description, recs)
	exported.PolicyVersion = a.cfg.PolicyVersion

	f := exported
	added := len(exported.Cases)
	if fl.merge != "" {
		if f, err = golden.LoadFixture(fl.merge); err != nil {
			return err
		}
		added = f.Merge(exported)
	}
	if len(f.Cases) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no exportable assessments")
		return nil
	}
	if err := f.Save(fl.out); err != nil {
		return err
	}

	a.log.Info("fixture exported",
		zap.String("out", fl.out), zap.Int("records", len(recs)),
		zap.Int("added", added), zap.Int("skipped", skipped))
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d cases to %s (%d added, %d invalid records skipped)\n",
		len(f.Cases), fl.out, added, skipped)
	return nil
}
