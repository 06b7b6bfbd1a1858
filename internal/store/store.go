// Package store persists normalized region records, income records, and the
// load run log in PostgreSQL or SQLite.
package store

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/rotisserie/eris"

	"github.com/sells-group/affordability-cli/internal/model"
)

// IncomeFilter narrows Incomes. Zero values match everything.
type IncomeFilter struct {
	Year  int
	Group string
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus
	Limit  int
}

// Store defines the persistence interface for cleaned report data.
type Store interface {
	// Data
	SaveRegions(ctx context.Context, regions []model.RegionRecord) (int64, error)
	SaveIncomes(ctx context.Context, incomes []model.IncomeRecord) (int64, error)
	Regions(ctx context.Context) ([]model.RegionRecord, error)
	Incomes(ctx context.Context, filter IncomeFilter) ([]model.IncomeRecord, error)

	// Run log
	StartRun(ctx context.Context, source string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, counts model.RunCounts) error
	FailRun(ctx context.Context, runID string, runErr error) error
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the Store for driver ("postgres" or "sqlite").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pgx":
		return NewPostgres(ctx, dsn, nil)
	case "", "sqlite", "sqlite3":
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

var (
	regionColumns = []string{"position", "region_name", "region_code", "population", "cost_metric"}
	incomeColumns = []string{"region_code", "year", "income_group", "region_name", "median_income", "position"}
	incomeKeys    = []string{"region_code", "year", "income_group"}
	incomeUpdates = []string{"region_name", "median_income"}
	runColumns    = []string{"id", "source", "status", "regions", "incomes", "error", "started_at", "completed_at"}
)

// regionRows converts records to positional rows. Absent codes are NULL.
func regionRows(regions []model.RegionRecord) [][]any {
	rows := make([][]any, len(regions))
	for i, r := range regions {
		var code any
		if r.HasCode() {
			code = r.RegionCode
		}
		rows[i] = []any{i, r.RegionName, code, r.Population, r.CostMetric}
	}
	return rows
}

// incomeRows converts income records to rows, keeping only the last record
// for each (region_code, year, income_group) key. Rows are numbered from base
// in load order; a replaced key keeps the slot of its first occurrence.
func incomeRows(incomes []model.IncomeRecord, base int64) [][]any {
	type key struct {
		code  string
		year  int
		group string
	}
	idx := make(map[key]int, len(incomes))
	rows := make([][]any, 0, len(incomes))
	for _, in := range incomes {
		k := key{in.RegionCode, in.Year, in.IncomeGroup}
		if i, ok := idx[k]; ok {
			rows[i] = []any{in.RegionCode, in.Year, in.IncomeGroup, in.RegionName, in.MedianIncome, base + int64(i)}
			continue
		}
		row := []any{in.RegionCode, in.Year, in.IncomeGroup, in.RegionName, in.MedianIncome, base + int64(len(rows))}
		idx[k] = len(rows)
		rows = append(rows, row)
	}
	return rows
}

// nextIncomePosition selects the first free income position.
func nextIncomePosition(b sq.StatementBuilderType) sq.SelectBuilder {
	return b.Select("COALESCE(MAX(position) + 1, 0)").From("incomes")
}

// incomeQuery builds the Incomes select for a placeholder format. Rows come
// back in load order.
func incomeQuery(b sq.StatementBuilderType, filter IncomeFilter) sq.SelectBuilder {
	q := b.Select(incomeColumns[:5]...).From("incomes")
	if filter.Year != 0 {
		q = q.Where(sq.Eq{"year": filter.Year})
	}
	if filter.Group != "" {
		q = q.Where(sq.Eq{"income_group": filter.Group})
	}
	return q.OrderBy("position")
}

// runQuery builds the ListRuns select for a placeholder format.
func runQuery(b sq.StatementBuilderType, filter RunFilter) sq.SelectBuilder {
	q := b.Select(runColumns...).From("runs").OrderBy("started_at DESC")
	if filter.Status != "" {
		q = q.Where(sq.Eq{"status": string(filter.Status)})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	return q
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
