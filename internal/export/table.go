// Package export turns aggregation results into CSV files, an XLSX workbook,
// and a plain-text findings summary.
package export

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/sells-group/affordability-cli/internal/model"
	"github.com/sells-group/affordability-cli/internal/transform"
)

// Table is one exported dataset. Cells hold string, int, int64, float64, or
// nil; nil is written as an empty cell.
type Table struct {
	Name   string // file name without extension
	Sheet  string // XLSX sheet name, at most 31 characters
	Header []string
	Rows   [][]any
}

// cellText renders a cell for CSV output.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return transform.FormatDecimal(x)
	default:
		return fmt.Sprint(x)
	}
}

func floatCell(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func countCell(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func textCell(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func codeCell(code string) any {
	if code == "" {
		return nil
	}
	return code
}

// RegionsTable is the cleaned cost report.
func RegionsTable(regions []model.RegionRecord) Table {
	t := Table{
		Name:   "cms_charges_clean",
		Sheet:  "cms_clean",
		Header: []string{"region_name", "region_code", "population", "cost_metric"},
	}
	for _, r := range regions {
		t.Rows = append(t.Rows, []any{r.RegionName, codeCell(r.RegionCode), textCell(r.Population), r.CostMetric})
	}
	return t
}

var factHeader = []string{
	"region_code", "region_name", "year", "income_group",
	"population", "cost_metric", "median_income", "affordability_index",
}

// FactsTable lists every fact, including those without a defined index.
func FactsTable(name, sheet string, facts []model.Fact) Table {
	t := Table{Name: name, Sheet: sheet, Header: factHeader}
	for _, f := range facts {
		t.Rows = append(t.Rows, []any{
			f.RegionCode, f.RegionName, f.Year, f.IncomeGroup,
			countCell(f.Population), floatCell(f.CostMetric), floatCell(f.MedianIncome), floatCell(f.AffordabilityIndex),
		})
	}
	return t
}

var rankedHeader = append(slices.Clone(factHeader), "rank")

// RankedTable lists a top or bottom slice: the fact columns plus the rank.
func RankedTable(name, sheet string, ranked []model.RankedFact) Table {
	t := Table{Name: name, Sheet: sheet, Header: rankedHeader}
	for _, r := range ranked {
		t.Rows = append(t.Rows, []any{
			r.RegionCode, r.RegionName, r.Year, r.IncomeGroup,
			countCell(r.Population), floatCell(r.CostMetric), floatCell(r.MedianIncome), floatCell(r.AffordabilityIndex),
			r.Rank,
		})
	}
	return t
}

// CostTable lists regions by cost.
func CostTable(costs []model.RegionCost) Table {
	t := Table{
		Name:   "cms_cost",
		Sheet:  "cms_cost",
		Header: []string{"region_code", "region_name", "cost_metric", "rank"},
	}
	for _, c := range costs {
		t.Rows = append(t.Rows, []any{codeCell(c.RegionCode), c.RegionName, c.CostMetric, c.Rank})
	}
	return t
}

// ChangeTable lists income changes for one group between two years.
func ChangeTable(group string, fromYear, toYear int, changes []model.IncomeChange) Table {
	t := Table{
		Name:  fmt.Sprintf("income_change_%s_%d_%d", group, fromYear, toYear),
		Sheet: truncateSheet(fmt.Sprintf("change_%s_%d_%d", group, fromYear, toYear)),
		Header: []string{
			"region_code", "region_name",
			fmt.Sprintf("median_income_%d", fromYear), fmt.Sprintf("median_income_%d", toYear),
			"pct_change_income", "cost_metric",
		},
	}
	for _, c := range changes {
		t.Rows = append(t.Rows, []any{
			c.RegionCode, c.RegionName,
			floatCell(c.FromIncome), floatCell(c.ToIncome), floatCell(c.PctChange), floatCell(c.CostMetric),
		})
	}
	return t
}

// SummaryTable lists per-group index statistics.
func SummaryTable(year int, summaries []model.GroupSummary) Table {
	t := Table{
		Name:   fmt.Sprintf("affordability_summary_%d", year),
		Sheet:  fmt.Sprintf("summary_%d", year),
		Header: []string{"income_group", "count", "mean", "median", "min", "max"},
	}
	for _, s := range summaries {
		t.Rows = append(t.Rows, []any{s.IncomeGroup, s.Count, s.Mean, s.Median, s.Min, s.Max})
	}
	return t
}

// truncateSheet shortens a sheet name to the 31 characters XLSX allows.
func truncateSheet(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
