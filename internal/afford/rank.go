package afford

import (
	"cmp"
	"slices"

	"github.com/sells-group/affordability-cli/internal/model"
)

// GroupSlices holds the ranked slices of one income group. Top is the most
// burdened regions (highest index first); Bottom the least burdened.
type GroupSlices struct {
	IncomeGroup string
	Top         []model.RankedFact
	Bottom      []model.RankedFact
}

// Result is the full output of JoinAndRank.
type Result struct {
	Facts  []model.Fact
	Groups []GroupSlices
	Stats  JoinStats
}

// Top returns every group's top slice, concatenated in group order.
func (r Result) Top() []model.RankedFact {
	var out []model.RankedFact
	for _, g := range r.Groups {
		out = append(out, g.Top...)
	}
	return out
}

// Bottom returns every group's bottom slice, concatenated in group order.
func (r Result) Bottom() []model.RankedFact {
	var out []model.RankedFact
	for _, g := range r.Groups {
		out = append(out, g.Bottom...)
	}
	return out
}

// JoinAndRank builds facts from regions and incomes and ranks them per income group.
func JoinAndRank(regions []model.RegionRecord, incomes []model.IncomeRecord, k int) Result {
	facts, stats := BuildFacts(regions, incomes)
	return Result{Facts: facts, Groups: RankByGroup(facts, k), Stats: stats}
}

// RankByGroup partitions facts with a defined index by income group (groups
// sorted by name) and takes the first k of each after a stable sort by
// index: descending for Top, ascending for Bottom. Equal indexes keep their
// input order. A group with fewer than k facts yields all of them.
func RankByGroup(facts []model.Fact, k int) []GroupSlices {
	parts := make(map[string][]model.Fact)
	for _, f := range facts {
		if !f.Ranked() {
			continue
		}
		parts[f.IncomeGroup] = append(parts[f.IncomeGroup], f)
	}

	groups := make([]string, 0, len(parts))
	for g := range parts {
		groups = append(groups, g)
	}
	slices.Sort(groups)

	out := make([]GroupSlices, 0, len(groups))
	for _, g := range groups {
		part := parts[g]
		out = append(out, GroupSlices{
			IncomeGroup: g,
			Top:         takeRanked(part, k, true),
			Bottom:      takeRanked(part, k, false),
		})
	}
	return out
}

func takeRanked(part []model.Fact, k int, desc bool) []model.RankedFact {
	if k <= 0 {
		return nil
	}
	sorted := slices.Clone(part)
	slices.SortStableFunc(sorted, func(a, b model.Fact) int {
		if desc {
			return cmp.Compare(*b.AffordabilityIndex, *a.AffordabilityIndex)
		}
		return cmp.Compare(*a.AffordabilityIndex, *b.AffordabilityIndex)
	})

	n := min(k, len(sorted))
	out := make([]model.RankedFact, n)
	for i := range n {
		out[i] = model.RankedFact{Fact: sorted[i], Rank: i + 1}
	}
	return out
}
