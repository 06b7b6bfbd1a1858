package export

import (
	"fmt"

	"github.com/sells-group/affordability-cli/internal/afford"
	"github.com/sells-group/affordability-cli/internal/model"
)

// Options selects the report year, slice sizes, and the income change window.
type Options struct {
	Year        int
	TopK        int
	HighlightK  int
	ChangeGroup string
	ChangeFrom  int
	ChangeTo    int
	XLSX        bool
	Locale      string
}

// Report holds every aggregation an export run writes.
type Report struct {
	Options   Options
	Regions   []model.RegionRecord
	Facts     []model.Fact // all years
	YearFacts []model.Fact // Options.Year only
	Groups    []afford.GroupSlices
	CostDesc  []model.RegionCost
	CostAsc   []model.RegionCost
	Changes   []model.IncomeChange
	Summary   []model.GroupSummary
	Stats     afford.JoinStats
}

// Build joins regions and incomes and computes every aggregation in opts.
func Build(regions []model.RegionRecord, incomes []model.IncomeRecord, opts Options) *Report {
	facts, stats := afford.BuildFacts(regions, incomes)
	yearFacts := afford.FilterYear(facts, opts.Year)

	return &Report{
		Options:   opts,
		Regions:   regions,
		Facts:     facts,
		YearFacts: yearFacts,
		Groups:    afford.RankByGroup(yearFacts, opts.TopK),
		CostDesc:  afford.RankCost(regions, true),
		CostAsc:   afford.RankCost(regions, false),
		Changes:   afford.IncomeChange(regions, incomes, opts.ChangeGroup, opts.ChangeFrom, opts.ChangeTo),
		Summary:   afford.Summarize(yearFacts),
		Stats:     stats,
	}
}

// Top returns every group's top slice in group order.
func (r *Report) Top() []model.RankedFact {
	return afford.Result{Groups: r.Groups}.Top()
}

// Bottom returns every group's bottom slice in group order.
func (r *Report) Bottom() []model.RankedFact {
	return afford.Result{Groups: r.Groups}.Bottom()
}

// Tables returns the exported tables in file order.
func (r *Report) Tables() []Table {
	o := r.Options
	return []Table{
		RegionsTable(r.Regions),
		FactsTable("affordability_fact", "fact", r.Facts),
		FactsTable(fmt.Sprintf("affordability_fact_%d", o.Year), fmt.Sprintf("fact_%d", o.Year), r.YearFacts),
		CostTable(r.CostDesc),
		RankedTable(
			fmt.Sprintf("affordability_by_group_top%d_%d", o.TopK, o.Year),
			fmt.Sprintf("top%d_%d", o.TopK, o.Year),
			r.Top(),
		),
		RankedTable(
			fmt.Sprintf("affordability_by_group_bottom%d_%d", o.TopK, o.Year),
			fmt.Sprintf("bottom%d_%d", o.TopK, o.Year),
			r.Bottom(),
		),
		ChangeTable(o.ChangeGroup, o.ChangeFrom, o.ChangeTo, r.Changes),
		SummaryTable(o.Year, r.Summary),
	}
}
