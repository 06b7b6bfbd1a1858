// Package afford joins region costs with median incomes, computes the
// affordability index, and ranks regions within each income group.
package afford

import (
	"github.com/sells-group/affordability-cli/internal/model"
	"github.com/sells-group/affordability-cli/internal/transform"
)

// JoinStats counts rows that found no partner in the join. Gaps are
// expected and are never errors.
type JoinStats struct {
	Facts            int
	UnmatchedRegions int // regions without a code or without any income row
	UnmatchedIncomes int // income rows whose code has no region
	UndefinedIndexes int // facts missing cost or income, or with zero income
}

// Index returns cost / income × 100 rounded to two decimals, or nil when
// either side is missing or the income is zero.
func Index(cost, income *float64) *float64 {
	if cost == nil || income == nil || *income == 0 {
		return nil
	}
	v := transform.Round2(*cost / *income * 100)
	return &v
}

// BuildFacts inner-joins regions and incomes on region code. Facts follow
// income order, then region order for duplicate codes.
func BuildFacts(regions []model.RegionRecord, incomes []model.IncomeRecord) ([]model.Fact, JoinStats) {
	var stats JoinStats

	byCode := make(map[string][]int, len(regions))
	for i, r := range regions {
		if !r.HasCode() {
			stats.UnmatchedRegions++
			continue
		}
		byCode[r.RegionCode] = append(byCode[r.RegionCode], i)
	}

	matched := make(map[string]bool, len(byCode))
	var facts []model.Fact
	for _, inc := range incomes {
		idx, ok := byCode[inc.RegionCode]
		if !ok || inc.RegionCode == "" {
			stats.UnmatchedIncomes++
			continue
		}
		matched[inc.RegionCode] = true
		for _, i := range idx {
			f := newFact(regions[i], inc)
			if !f.Ranked() {
				stats.UndefinedIndexes++
			}
			facts = append(facts, f)
		}
	}

	for code, idx := range byCode {
		if !matched[code] {
			stats.UnmatchedRegions += len(idx)
		}
	}
	stats.Facts = len(facts)
	return facts, stats
}

func newFact(r model.RegionRecord, inc model.IncomeRecord) model.Fact {
	f := model.Fact{
		RegionCode:   r.RegionCode,
		RegionName:   r.RegionName,
		Year:         inc.Year,
		IncomeGroup:  inc.IncomeGroup,
		CostMetric:   transform.DecimalPtr(r.CostMetric),
		MedianIncome: inc.MedianIncome,
	}
	if r.Population != nil {
		f.Population = transform.CountPtr(*r.Population)
	}
	f.AffordabilityIndex = Index(f.CostMetric, f.MedianIncome)
	return f
}

// FilterYear keeps facts for year. Year 0 keeps everything.
func FilterYear(facts []model.Fact, year int) []model.Fact {
	if year == 0 {
		return facts
	}
	var out []model.Fact
	for _, f := range facts {
		if f.Year == year {
			out = append(out, f)
		}
	}
	return out
}
