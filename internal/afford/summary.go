package afford

import (
	"slices"

	"github.com/montanaflynn/stats"

	"github.com/sells-group/affordability-cli/internal/model"
	"github.com/sells-group/affordability-cli/internal/transform"
)

// Summarize describes the defined indexes of each income group. Groups are
// sorted by name; groups with no defined index are omitted.
func Summarize(facts []model.Fact) []model.GroupSummary {
	values := make(map[string]stats.Float64Data)
	for _, f := range facts {
		if f.Ranked() {
			values[f.IncomeGroup] = append(values[f.IncomeGroup], *f.AffordabilityIndex)
		}
	}

	groups := make([]string, 0, len(values))
	for g := range values {
		groups = append(groups, g)
	}
	slices.Sort(groups)

	out := make([]model.GroupSummary, 0, len(groups))
	for _, g := range groups {
		data := values[g]
		// Errors only occur on empty input, which cannot happen here.
		mean, _ := data.Mean()
		median, _ := data.Median()
		lo, _ := data.Min()
		hi, _ := data.Max()
		out = append(out, model.GroupSummary{
			IncomeGroup: g,
			Count:       data.Len(),
			Mean:        transform.Round2(mean),
			Median:      transform.Round2(median),
			Min:         lo,
			Max:         hi,
		})
	}
	return out
}
