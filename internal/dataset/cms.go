// Package dataset wires the header engine and normalizer into cleaners for
// the cost report and the income table.
package dataset

import (
	"go.uber.org/zap"

	"github.com/sells-group/affordability-cli/internal/model"
	"github.com/sells-group/affordability-cli/internal/normalize"
	"github.com/sells-group/affordability-cli/internal/tabular"
	"github.com/sells-group/affordability-cli/internal/transform"
)

// CleanResult is the output of CleanCMS.
type CleanResult struct {
	Records    []model.RegionRecord
	Header     tabular.Header
	Resolution tabular.Resolution
	Stats      normalize.Stats
}

// HasPopulation reports whether the population column was resolved.
func (r *CleanResult) HasPopulation() bool {
	_, ok := r.Resolution.Lookup(normalize.FieldPopulation)
	return ok
}

// CleanCMS locates and fuses the header, resolves the layout's fields, and
// normalizes the body. Header and column failures are returned unwrapped as
// *tabular.HeaderNotFoundError or *tabular.RequiredColumnMissingError.
func CleanCMS(g tabular.Grid, layout Layout, tables transform.Tables) (*CleanResult, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	row, err := tabular.Locate(g, layout.Anchor, layout.ScanLimit)
	if err != nil {
		return nil, err
	}

	header := tabular.Fuse(g, row)
	res, err := tabular.Resolve(header.Columns, layout.Fields)
	if err != nil {
		return nil, err
	}

	records, stats := normalize.Normalize(g, header, res, tables)

	log := zap.L().With(zap.String("dataset", "cms"))
	for _, f := range layout.Fields {
		if c, ok := res.Lookup(f.Name); ok {
			log.Debug("resolved column", zap.String("field", f.Name), zap.String("column", c.Name), zap.Int("index", c.Index))
		}
	}
	log.Info("cleaned cost report",
		zap.Int("header_row", row),
		zap.Int("columns", len(header.Columns)),
		zap.Int("body_rows", stats.BodyRows),
		zap.Int("records", len(records)),
		zap.Int("dropped", stats.Dropped),
		zap.Int("uncoded", stats.Uncoded),
		zap.Int("malformed", stats.Malformed),
	)

	return &CleanResult{
		Records:    records,
		Header:     header,
		Resolution: res,
		Stats:      stats,
	}, nil
}
