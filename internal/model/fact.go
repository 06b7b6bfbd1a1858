package model

// Fact joins a region's cost with one of its income records.
// AffordabilityIndex is nil when the cost or the income is missing or the
// income is zero; such facts are never ranked.
type Fact struct {
	RegionCode         string   `json:"region_code"`
	RegionName         string   `json:"region_name"`
	Year               int      `json:"year"`
	IncomeGroup        string   `json:"income_group"`
	Population         *int64   `json:"population,omitempty"`
	CostMetric         *float64 `json:"cost_metric,omitempty"`
	MedianIncome       *float64 `json:"median_income,omitempty"`
	AffordabilityIndex *float64 `json:"affordability_index,omitempty"`
}

// Ranked reports whether the fact has a defined index.
func (f Fact) Ranked() bool { return f.AffordabilityIndex != nil }

// RankedFact is a fact placed within its income group's slice. Rank is 1-based.
type RankedFact struct {
	Fact
	Rank int `json:"rank"`
}

// RegionCost is a region with its parsed cost, used for cost rankings.
type RegionCost struct {
	RegionCode string  `json:"region_code"`
	RegionName string  `json:"region_name"`
	CostMetric float64 `json:"cost_metric"`
	Rank       int     `json:"rank"`
}

// IncomeChange compares a region's median income for one group across two years.
type IncomeChange struct {
	RegionCode  string   `json:"region_code"`
	RegionName  string   `json:"region_name"`
	IncomeGroup string   `json:"income_group"`
	FromYear    int      `json:"from_year"`
	ToYear      int      `json:"to_year"`
	FromIncome  *float64 `json:"from_income,omitempty"`
	ToIncome    *float64 `json:"to_income,omitempty"`
	PctChange   *float64 `json:"pct_change,omitempty"`
	CostMetric  *float64 `json:"cost_metric,omitempty"`
}

// GroupSummary describes the distribution of defined indexes in one income group.
type GroupSummary struct {
	IncomeGroup string  `json:"income_group"`
	Count       int     `json:"count"`
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}
