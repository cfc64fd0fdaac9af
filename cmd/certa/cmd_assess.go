package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ohkbilal/certa/internal/material"
	"github.com/ohkbilal/certa/internal/transport"
)

type assessFlags struct {
	fluid     string
	temp      string
	unit      string
	materials []string
	record    bool
	archive   bool
	remote    string
}

func newAssessCmd(a *app) *cobra.Command {
	var fl assessFlags
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess a fluid, temperature and candidate materials",
		Long: "Builds a run context, resolves seal eligibility and evaluates each\n" +
			"material. An omitted or non-numeric --temp yields an invalid context\n" +
			"with suppressed seals and INSUFFICIENT_DATA verdicts.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssess(cmd, a, fl)
		},
	}
	f := cmd.Flags()
	f.StringVar(&fl.fluid, "fluid", "", "fluid identifier, e.g. hno3-70")
	f.StringVar(&fl.temp, "temp", "", "temperature value")
	f.StringVar(&fl.unit, "unit", "C", "temperature unit: C or F")
	f.StringSliceVarP(&fl.materials, "material", "m", nil, "material to evaluate (repeatable)")
	f.BoolVar(&fl.record, "record", false, "record the assessment in the audit store")
	f.BoolVar(&fl.archive, "archive", false, "store the assessment snapshot in the evidence archive")
	f.StringVar(&fl.remote, "remote", "", "assess through a certa server at this address")
	return cmd
}

func runAssess(cmd *cobra.Command, a *app, fl assessFlags) error {
	ctx := cmd.Context()
	var temp any
	if fl.temp != "" {
		temp = fl.temp
	}

	var res transport.AssessResult
	if fl.remote != "" {
		client, err := transport.NewClient(fl.remote)
		if err != nil {
			return err
		}
		defer client.Close()
		if res, err = client.AssessRaw(ctx, fl.fluid, temp, fl.unit, fl.materials); err != nil {
			return err
		}
	} else {
		out := a.engine().RunRaw(fl.fluid, temp, fl.unit, fl.materials)
		hash, err := out.Hash()
		if err != nil {
			return err
		}
		res = transport.AssessResult{Output: out, FAOHash: hash}

		if fl.record {
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			if _, err := store.Record(ctx, out); err != nil {
				return err
			}
		}
		if fl.archive {
			arc, err := a.openArchiver(ctx)
			if err != nil {
				return err
			}
			if arc == nil {
				return fmt.Errorf("archive requested but archive.endpoint is not configured")
			}
			if res.ArchiveKey, err = arc.Put(ctx, out); err != nil {
				return err
			}
		}
	}

	a.log.Debug("assessment complete",
		zap.String("run_id", res.Output.Context.RunID),
		zap.String("regime", string(res.Output.Context.PrimaryRegime)),
		zap.String("fao_hash", res.FAOHash))

	if a.jsonOut {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	renderAssessment(cmd.OutOrStdout(), res)
	return nil
}

func renderAssessment(w io.Writer, res transport.AssessResult) {
	out := res.Output
	c := out.Context

	ct := newTable(w, "Run context", "Field", "Value")
	ct.AppendRow([]any{"Run ID", c.RunID})
	ct.AppendRow([]any{"Fluid", c.FluidID})
	ct.AppendRow([]any{"Temperature", fmt.Sprintf("%.2f°C (input %v %s)", c.Temperature, c.InputTemperature, c.InputUnit)})
	ct.AppendRow([]any{"Valid", yesNo(c.Valid)})
	if !c.Valid {
		ct.AppendRow([]any{"Invalid reason", c.InvalidReason})
	}
	ct.AppendRow([]any{"Primary regime", c.PrimaryRegime})
	if c.ClassifierRule != "" {
		ct.AppendRow([]any{"Classifier rule", c.ClassifierRule})
	}
	ct.AppendRow([]any{"Secondary regimes", joinOrDash(c.SecondaryRegimes)})
	ct.AppendRow([]any{"Tags", joinOrDash(c.FluidTags)})
	ct.AppendRow([]any{"Concentration", c.Concentration})
	ct.AppendRow([]any{"Policy", c.PolicyVersion})
	ct.Render()

	st := newTable(w, "Seal eligibility", "State", "Allowed", "Reason")
	st.AppendRow([]any{out.Seal.State, joinOrDash(out.Seal.AllowedCategories), out.Seal.Reason})
	st.SetColumnConfigs([]table.ColumnConfig{wrapped(3, 60)})
	st.Render()

	if len(out.Materials) > 0 {
		mt := newTable(w, "Materials", "Material", "Registry", "Status", "Rule", "Reason")
		for _, v := range out.Materials {
			mt.AppendRow([]any{v.MaterialID, v.Canonical, v.Status, v.Rule, v.Reason})
		}
		mt.SetColumnConfigs([]table.ColumnConfig{wrapped(5, 60)})
		counts := out.Counts()
		mt.AppendFooter(table.Row{"", "", statusSummary(counts), "", ""})
		mt.Render()

		cs := out.Candidates
		kt := newTable(w, "Candidates", "Recommended", "Conditional", "Excluded", "Insufficient")
		kt.AppendRow([]any{candidateIDs(cs.Recommended), candidateIDs(cs.Conditional), candidateIDs(cs.Excluded), candidateIDs(cs.Insufficient)})
		kt.Render()
	}

	fmt.Fprintf(w, "FAO hash: %s\n", res.FAOHash)
	if res.ArchiveKey != "" {
		fmt.Fprintf(w, "Archived: %s\n", res.ArchiveKey)
	}
}

// statusSummary renders verdict counts in severity order, e.g. "2 FAIL, 1 CONDITIONAL".
func statusSummary(counts map[material.Status]int) string {
	order := []material.Status{material.Fail, material.Conditional, material.Compatible, material.InsufficientData, material.Unknown}
	var parts []string
	for _, st := range order {
		if n := counts[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, st))
		}
	}
	return joinOrDash(parts)
}

func candidateIDs(cs []material.Candidate) string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.MaterialID
	}
	return joinOrDash(ids)
}
