package model

// RegionRecord is one cleaned row of the cost report. Numeric fields are
// de-formatted text; they are coerced to numbers only when facts are built.
type RegionRecord struct {
	RegionName string  `json:"region_name"`
	RegionCode string  `json:"region_code,omitempty"` // "" when the name has no code
	Population *string `json:"population,omitempty"`  // nil when the report has no population column
	CostMetric string  `json:"cost_metric"`
}

// HasCode reports whether the record carries a region code.
func (r RegionRecord) HasCode() bool { return r.RegionCode != "" }

// IncomeRecord is a median income for one region, year, and income group.
type IncomeRecord struct {
	RegionCode   string   `json:"region_code"`
	RegionName   string   `json:"region_name,omitempty"`
	Year         int      `json:"year"`
	IncomeGroup  string   `json:"income_group"`
	MedianIncome *float64 `json:"median_income,omitempty"`
}
