package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/affordability-cli/internal/tabular"
	"github.com/sells-group/affordability-cli/internal/transform"
)

func testGrid() tabular.Grid {
	return tabular.Grid{
		{"CMS Program Statistics"},
		{"Area of Residence", "Total Original", "Program Payments", ""},
		{"", "Part A and Part B Enrollees", "Per Person with Utilization", ""},
		{"All Areas", "60,000,000", "$9,999.00"},
		{"United States", "59,000,000", "$9,000.00"},
		{"  New York ", "3,456,789", "$12,345.00"},
		{"California", "6,000,000", " $8,100.50 "},
		{"Guam", "20,000", "$4,000"},
		{"Total", "1", "$1"},
		{"", "", ""},
		{"—"},
		{"Texas", "4,000,000", "(D)"},
	}
}

func testResolution(t *testing.T, g tabular.Grid, withPop bool) (tabular.Header, tabular.Resolution) {
	t.Helper()
	h := tabular.Fuse(g, 1)
	fields := []tabular.FieldSpec{
		{Name: FieldRegion, Phrases: []string{"area of residence"}, Required: true},
		{Name: FieldCost, Phrases: []string{"program payments", "per person", "utilization"}, Required: true},
	}
	if withPop {
		fields = append(fields, tabular.FieldSpec{Name: FieldPopulation, Phrases: []string{"total", "original", "part a", "part b", "enrollee"}})
	}
	res, err := tabular.Resolve(h.Columns, fields)
	require.NoError(t, err)
	return h, res
}

func TestNormalize(t *testing.T) {
	g := testGrid()
	h, res := testResolution(t, g, true)

	recs, stats := Normalize(g, h, res, transform.DefaultTables())
	require.Len(t, recs, 4)

	assert.Equal(t, "New York", recs[0].RegionName)
	assert.Equal(t, "NY", recs[0].RegionCode)
	assert.Equal(t, "12345.00", recs[0].CostMetric)
	require.NotNil(t, recs[0].Population)
	assert.Equal(t, "3456789", *recs[0].Population)

	assert.Equal(t, "California", recs[1].RegionName)
	assert.Equal(t, "8100.50", recs[1].CostMetric)

	// Unknown names are kept without a code.
	assert.Equal(t, "Guam", recs[2].RegionName)
	assert.False(t, recs[2].HasCode())

	// Malformed cost stays as de-formatted text.
	assert.Equal(t, "Texas", recs[3].RegionName)
	assert.Equal(t, "(D)", recs[3].CostMetric)

	assert.Equal(t, 9, stats.BodyRows)
	assert.Equal(t, 5, stats.Dropped)
	assert.Equal(t, 1, stats.Uncoded)
	assert.Equal(t, 1, stats.Malformed)
}

func TestNormalize_SentinelsNeverEmitted(t *testing.T) {
	g := testGrid()
	h, res := testResolution(t, g, true)
	recs, _ := Normalize(g, h, res, transform.DefaultTables())
	for _, r := range recs {
		assert.NotContains(t, []string{"United States", "Total", "All Areas", ""}, r.RegionName)
	}
}

func TestNormalize_WithoutPopulation(t *testing.T) {
	g := testGrid()
	h, res := testResolution(t, g, false)
	recs, _ := Normalize(g, h, res, transform.DefaultTables())
	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.Nil(t, r.Population)
	}
}

func TestNormalize_CustomTables(t *testing.T) {
	g := testGrid()
	h, res := testResolution(t, g, false)
	tables := transform.NewTables(map[string]string{"Guam": "GU"}, []string{"Guam"})

	recs, stats := Normalize(g, h, res, tables)
	for _, r := range recs {
		assert.NotEqual(t, "Guam", r.RegionName)
	}
	// Empty names are dropped even when the table omits "".
	assert.Equal(t, 2, stats.Dropped)
	assert.Equal(t, len(recs), stats.Uncoded)
}

func TestNormalize_Idempotent(t *testing.T) {
	g := testGrid()
	h, res := testResolution(t, g, true)
	a, _ := Normalize(g, h, res, transform.DefaultTables())
	b, _ := Normalize(g, h, res, transform.DefaultTables())
	assert.Equal(t, a, b)
}
