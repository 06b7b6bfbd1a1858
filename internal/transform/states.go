package transform

// StateCodes maps full state names (exact, case-sensitive) to USPS codes:
// the 50 states, the District of Columbia, and Puerto Rico.
var StateCodes = map[string]string{
	"Alabama":              "AL",
	"Alaska":               "AK",
	"Arizona":              "AZ",
	"Arkansas":             "AR",
	"California":           "CA",
	"Colorado":             "CO",
	"Connecticut":          "CT",
	"Delaware":             "DE",
	"District of Columbia": "DC",
	"Florida":              "FL",
	"Georgia":              "GA",
	"Hawaii":               "HI",
	"Idaho":                "ID",
	"Illinois":             "IL",
	"Indiana":              "IN",
	"Iowa":                 "IA",
	"Kansas":               "KS",
	"Kentucky":             "KY",
	"Louisiana":            "LA",
	"Maine":                "ME",
	"Maryland":             "MD",
	"Massachusetts":        "MA",
	"Michigan":             "MI",
	"Minnesota":            "MN",
	"Mississippi":          "MS",
	"Missouri":             "MO",
	"Montana":              "MT",
	"Nebraska":             "NE",
	"Nevada":               "NV",
	"New Hampshire":        "NH",
	"New Jersey":           "NJ",
	"New Mexico":           "NM",
	"New York":             "NY",
	"North Carolina":       "NC",
	"North Dakota":         "ND",
	"Ohio":                 "OH",
	"Oklahoma":             "OK",
	"Oregon":               "OR",
	"Pennsylvania":         "PA",
	"Rhode Island":         "RI",
	"South Carolina":       "SC",
	"South Dakota":         "SD",
	"Tennessee":            "TN",
	"Texas":                "TX",
	"Utah":                 "UT",
	"Vermont":              "VT",
	"Virginia":             "VA",
	"Washington":           "WA",
	"West Virginia":        "WV",
	"Wisconsin":            "WI",
	"Wyoming":              "WY",
	"Puerto Rico":          "PR",
}

// AggregateLabels are region-column values that denote report totals or
// placeholders rather than a region.
var AggregateLabels = []string{"All Areas", "United States", "Total", "—", "–", ""}

// Tables holds the lookup data used during normalization. Callers pass it
// explicitly so tests can substitute their own.
type Tables struct {
	Codes     map[string]string
	Sentinels map[string]struct{}
}

// NewTables builds Tables from a name→code map and a list of sentinel labels.
func NewTables(codes map[string]string, sentinels []string) Tables {
	s := make(map[string]struct{}, len(sentinels))
	for _, v := range sentinels {
		s[v] = struct{}{}
	}
	return Tables{Codes: codes, Sentinels: s}
}

// DefaultTables returns the US state code table and the standard aggregate labels.
func DefaultTables() Tables {
	return NewTables(StateCodes, AggregateLabels)
}

// Code returns the short code for name, or "" when the name is unknown.
func (t Tables) Code(name string) string {
	return t.Codes[name]
}

// IsSentinel reports whether name is an aggregate or placeholder label.
func (t Tables) IsSentinel(name string) bool {
	_, ok := t.Sentinels[name]
	return ok
}
