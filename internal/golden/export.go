package golden

import (
	"fmt"

	"github.com/ohkbilal/certa/internal/audit"
	"github.com/ohkbilal/certa/internal/fluid"
)

// #region export

// FromRecords turns recorded assessments into regression cases: one case
// per assessed material, or one context case when no material was
// assessed. Invalid records for recognised fluids are skipped because the
// raw input that invalidated them is not stored; the count is returned.
func FromRecords(description string, records []audit.Record) (*Fixture, int) {
	f := &Fixture{Description: description, Cases: []Case{}}
	skipped := 0
	n := 0
	for _, rec := range records {
		if !rec.Valid && fluid.IsKnown(rec.FluidID) {
			skipped++
			continue
		}
		valid := rec.Valid
		base := Case{
			Kind: KindAssessment,
			Ref:  rec.RunID,
			Input: CaseInput{
				FluidID:     rec.FluidID,
				Temperature: rec.Context.InputTemperature,
				Unit:        string(rec.Context.InputUnit),
			},
			Expect: Expect{
				Valid:         &valid,
				PrimaryRegime: string(rec.PrimaryRegime),
				SealState:     string(rec.SealState),
			},
		}
		if len(rec.MaterialResults) == 0 {
			n++
			c := base
			c.ID = fmt.Sprintf("EX-%04d", n)
			c.Name = fmt.Sprintf("%s at %.1f°C", rec.FluidID, rec.Temperature)
			f.Cases = append(f.Cases, c)
			continue
		}
		for _, v := range rec.MaterialResults {
			n++
			c := base
			c.ID = fmt.Sprintf("EX-%04d", n)
			c.Name = fmt.Sprintf("%s + %s at %.1f°C", rec.FluidID, v.MaterialID, rec.Temperature)
			c.Input.Material = v.MaterialID
			c.Expect.Status = string(v.Status)
			f.Cases = append(f.Cases, c)
		}
	}
	return f, skipped
}

// Merge appends cases from extra whose ids are not already present in f.
// It returns the number of cases added.
func (f *Fixture) Merge(extra *Fixture) int {
	seen := map[string]bool{}
	for _, c := range f.Cases {
		seen[c.ID] = true
	}
	added := 0
	for _, c := range extra.Cases {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		f.Cases = append(f.Cases, c)
		added++
	}
	return added
}

// #endregion export
