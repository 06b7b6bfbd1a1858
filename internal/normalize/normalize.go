// Package normalize turns the body of a fused report table into region records.
package normalize

import (
	"strings"

	"github.com/sells-group/affordability-cli/internal/model"
	"github.com/sells-group/affordability-cli/internal/tabular"
	"github.com/sells-group/affordability-cli/internal/transform"
)

// Semantic field names shared by layouts and the normalizer.
const (
	FieldRegion     = "region"
	FieldCost       = "cost_metric"
	FieldPopulation = "population"
)

// Stats counts what happened to the body rows.
type Stats struct {
	BodyRows  int // rows below the header
	Dropped   int // aggregate or placeholder rows removed
	Uncoded   int // kept rows whose name has no code
	Malformed int // kept rows whose cost does not parse as a number
}

// Normalize reads every row below the header's two rows and returns one
// record per region, in source order. The resolution must contain the region
// and cost fields; the population field is optional.
func Normalize(g tabular.Grid, h tabular.Header, res tabular.Resolution, tables transform.Tables) ([]model.RegionRecord, Stats) {
	regionCol, _ := res.Lookup(FieldRegion)
	costCol, _ := res.Lookup(FieldCost)
	popCol, hasPop := res.Lookup(FieldPopulation)

	var (
		out   []model.RegionRecord
		stats Stats
	)
	for i := h.BodyStart; i < len(g); i++ {
		stats.BodyRows++

		name := strings.TrimSpace(g.Cell(i, regionCol.Index))
		if name == "" || tables.IsSentinel(name) {
			stats.Dropped++
			continue
		}

		rec := model.RegionRecord{
			RegionName: name,
			RegionCode: tables.Code(name),
			CostMetric: transform.CleanMoney(g.Cell(i, costCol.Index)),
		}
		if hasPop {
			pop := transform.CleanCount(g.Cell(i, popCol.Index))
			rec.Population = &pop
		}

		if !rec.HasCode() {
			stats.Uncoded++
		}
		if _, ok := transform.ParseDecimal(rec.CostMetric); !ok {
			stats.Malformed++
		}
		out = append(out, rec)
	}
	return out, stats
}
