package afford

import (
	"cmp"
	"slices"

	"github.com/sells-group/affordability-cli/internal/model"
	"github.com/sells-group/affordability-cli/internal/transform"
)

// RankCost orders regions with a parseable cost, most expensive first when
// desc is set, with ties in input order. Ranks are 1-based.
func RankCost(regions []model.RegionRecord, desc bool) []model.RegionCost {
	var out []model.RegionCost
	for _, r := range regions {
		v, ok := transform.ParseDecimal(r.CostMetric)
		if !ok {
			continue
		}
		out = append(out, model.RegionCost{RegionCode: r.RegionCode, RegionName: r.RegionName, CostMetric: v})
	}

	slices.SortStableFunc(out, func(a, b model.RegionCost) int {
		if desc {
			return cmp.Compare(b.CostMetric, a.CostMetric)
		}
		return cmp.Compare(a.CostMetric, b.CostMetric)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
