package dataset

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/affordability-cli/internal/model"
	"github.com/sells-group/affordability-cli/internal/tabular"
	"github.com/sells-group/affordability-cli/internal/transform"
)

// Income table fields.
const (
	incomeCode   = "region_code"
	incomeName   = "region_name"
	incomeYear   = "year"
	incomeGroup  = "income_group"
	incomeMedian = "median_income"
)

// incomeFields resolves the flat ACS median income table. Names are matched
// the same way as report columns, so "state_code" and "Region Code" both work.
var incomeFields = []tabular.FieldSpec{
	{Name: incomeCode, Phrases: []string{"code"}, Required: true},
	{Name: incomeName, Phrases: []string{"name"}},
	{Name: incomeYear, Phrases: []string{"year"}, Required: true},
	{Name: incomeGroup, Phrases: []string{"group"}, Required: true},
	{Name: incomeMedian, Phrases: []string{"median"}, Required: true},
}

// IncomeStats counts income rows that could not be used.
type IncomeStats struct {
	Rows      int
	Skipped   int // blank code or group, or unparseable year
	Malformed int // kept rows whose income does not parse
}

// ParseIncomes reads a median income table whose first row is its header.
func ParseIncomes(g tabular.Grid) ([]model.IncomeRecord, IncomeStats, error) {
	var stats IncomeStats
	if len(g) == 0 {
		return nil, stats, &tabular.HeaderNotFoundError{Anchor: incomeCode}
	}

	res, err := tabular.Resolve(tabular.FuseRows(g[0], nil), incomeFields)
	if err != nil {
		return nil, stats, err
	}
	col := func(row int, field string) string {
		c, ok := res.Lookup(field)
		if !ok {
			return ""
		}
		return strings.TrimSpace(g.Cell(row, c.Index))
	}

	var out []model.IncomeRecord
	for i := 1; i < len(g); i++ {
		stats.Rows++

		code := strings.ToUpper(col(i, incomeCode))
		group := col(i, incomeGroup)
		year, ok := transform.ParseCount(col(i, incomeYear))
		if code == "" || group == "" || !ok {
			stats.Skipped++
			continue
		}

		rec := model.IncomeRecord{
			RegionCode:   code,
			RegionName:   col(i, incomeName),
			Year:         int(year),
			IncomeGroup:  group,
			MedianIncome: transform.DecimalPtr(col(i, incomeMedian)),
		}
		if rec.MedianIncome == nil {
			stats.Malformed++
		}
		out = append(out, rec)
	}

	zap.L().Info("parsed income table",
		zap.String("dataset", "acs"),
		zap.Int("rows", stats.Rows),
		zap.Int("records", len(out)),
		zap.Int("skipped", stats.Skipped),
		zap.Int("malformed", stats.Malformed),
	)
	return out, stats, nil
}
