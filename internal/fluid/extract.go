package fluid

import (
	"strconv"
	"strings"

	"github.com/ohkbilal/certa/internal/regime"
)

// #region concentration

// ExtractConcentration parses a trailing "-<digits>" suffix as a percentage.
// "hno3-70" yields 70. Missing, non-numeric, or overflowing suffixes yield 0.
func ExtractConcentration(fluidID string) float64 {
	id := Normalize(fluidID)
	i := strings.LastIndexByte(id, '-')
	if i < 0 || i == len(id)-1 {
		return 0
	}
	digits := id[i+1:]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return float64(n)
}

// #endregion concentration

// #region tags

type tagRule struct {
	frags []string
	tags  []regime.Tag
}

// tagRules run independently of regime classification; every matching
// row contributes its tags in table order.
var tagRules = []tagRule{
	{[]string{"acid"}, []regime.Tag{regime.TagAcid}},
	{[]string{"naoh", "koh", "sodium-hydroxide", "potassium-hydroxide"}, []regime.Tag{regime.TagBase}},
	{[]string{"hf", "hydrofluoric", "fluoride"}, []regime.Tag{regime.TagFluoride, regime.TagToxic}},
	{[]string{"hcl", "hydrochloric", "muriatic", "chloride"}, []regime.Tag{regime.TagChloride}},
	{[]string{"h2o2", "peroxide"}, []regime.Tag{regime.TagOxidizer, regime.TagPeroxide}},
	{[]string{"hno3", "nitric"}, []regime.Tag{regime.TagOxidizer, regime.TagNitric}},
	{[]string{"cyanide"}, []regime.Tag{regime.TagToxic, regime.TagCyanide}},
	{[]string{"water"}, []regime.Tag{regime.TagAqueous, regime.TagBenign}},
}

// Tags derives descriptive tags from the identifier. The result holds no
// duplicates and is never nil.
func Tags(fluidID string) []regime.Tag {
	id := Normalize(fluidID)
	out := []regime.Tag{}
	if id == "" {
		return out
	}
	for _, tr := range tagRules {
		if !containsAny(id, tr.frags...) {
			continue
		}
		for _, t := range tr.tags {
			if !regime.HasTag(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}

// #endregion tags
