package afford

import (
	"slices"

	"github.com/sells-group/affordability-cli/internal/model"
	"github.com/sells-group/affordability-cli/internal/transform"
)

// PctChange returns (to - from) / from × 100 rounded to two decimals, or nil
// when either value is missing or from is zero.
func PctChange(from, to *float64) *float64 {
	if from == nil || to == nil || *from == 0 {
		return nil
	}
	v := transform.Round2((*to - *from) / *from * 100)
	return &v
}

// IncomeChange compares each coded region's median income for group between
// two years. Only regions present in the cost data and in both years are
// returned, sorted by percentage change ascending (weakest growth first);
// undefined changes sort last and ties keep income order.
func IncomeChange(regions []model.RegionRecord, incomes []model.IncomeRecord, group string, fromYear, toYear int) []model.IncomeChange {
	costs := make(map[string]model.RegionRecord, len(regions))
	for _, r := range regions {
		if !r.HasCode() {
			continue
		}
		if _, dup := costs[r.RegionCode]; !dup {
			costs[r.RegionCode] = r
		}
	}

	to := make(map[string]model.IncomeRecord)
	for _, inc := range incomes {
		if inc.IncomeGroup == group && inc.Year == toYear {
			if _, dup := to[inc.RegionCode]; !dup {
				to[inc.RegionCode] = inc
			}
		}
	}

	seen := make(map[string]bool)
	var out []model.IncomeChange
	for _, from := range incomes {
		if from.IncomeGroup != group || from.Year != fromYear || seen[from.RegionCode] {
			continue
		}
		later, ok := to[from.RegionCode]
		if !ok {
			continue
		}
		region, ok := costs[from.RegionCode]
		if !ok {
			continue
		}
		seen[from.RegionCode] = true

		name := region.RegionName
		if name == "" {
			name = from.RegionName
		}
		out = append(out, model.IncomeChange{
			RegionCode:  from.RegionCode,
			RegionName:  name,
			IncomeGroup: group,
			FromYear:    fromYear,
			ToYear:      toYear,
			FromIncome:  from.MedianIncome,
			ToIncome:    later.MedianIncome,
			PctChange:   PctChange(from.MedianIncome, later.MedianIncome),
			CostMetric:  transform.DecimalPtr(region.CostMetric),
		})
	}

	slices.SortStableFunc(out, func(a, b model.IncomeChange) int {
		return compareNilLast(a.PctChange, b.PctChange)
	})
	return out
}

// compareNilLast orders defined values ascending and nil after them.
func compareNilLast(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
