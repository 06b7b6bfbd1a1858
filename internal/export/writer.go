package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// WorkbookName is the XLSX file holding every table as a sheet.
	WorkbookName = "affordability.xlsx"
	// InsightsName is the findings summary file.
	InsightsName = "insights.txt"
)

// WriteCSV writes t to path with a header row.
func WriteCSV(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return eris.Wrapf(err, "export: write header %s", t.Name)
	}

	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = cellText(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return eris.Wrapf(err, "export: write row %s", t.Name)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "export: flush %s", t.Name)
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

// WriteXLSX writes tables to one workbook, a sheet per table.
func WriteXLSX(path string, tables []Table) error {
	file := xlsx.NewFile()
	for _, t := range tables {
		sheet, err := file.AddSheet(t.Sheet)
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %q", t.Sheet)
		}

		header := sheet.AddRow()
		for _, h := range t.Header {
			header.AddCell().SetString(h)
		}
		for _, row := range t.Rows {
			xr := sheet.AddRow()
			for _, v := range row {
				setCell(xr.AddCell(), v)
			}
		}
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}

func setCell(c *xlsx.Cell, v any) {
	switch x := v.(type) {
	case nil:
	case int:
		c.SetInt(x)
	case int64:
		c.SetInt64(x)
	case float64:
		c.SetFloat(x)
	default:
		c.SetString(cellText(x))
	}
}

// WriteAll writes every table of r as CSV into dir, plus the workbook when
// r.Options.XLSX is set and the insights summary. CSV files are written
// concurrently. Returns the written paths, sorted.
func WriteAll(ctx context.Context, dir string, r *Report) ([]string, error) {
	log := zap.L().With(zap.String("component", "export"), zap.String("dir", dir))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create %s", dir)
	}

	tables := r.Tables()
	paths := make([]string, len(tables))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, t := range tables {
		paths[i] = filepath.Join(dir, t.Name+".csv")
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			if len(t.Rows) == 0 {
				log.Warn("table is empty, writing header only", zap.String("table", t.Name))
			}
			return WriteCSV(paths[i], t)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if r.Options.XLSX {
		p := filepath.Join(dir, WorkbookName)
		if err := WriteXLSX(p, tables); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}

	insights := filepath.Join(dir, InsightsName)
	if err := WriteInsightsFile(insights, r); err != nil {
		return nil, err
	}
	paths = append(paths, insights)

	sort.Strings(paths)
	log.Info("export complete", zap.Int("files", len(paths)))
	return paths, nil
}
