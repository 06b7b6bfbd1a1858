package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/affordability-cli/internal/model"
)

// sqliteBatchSize bounds the rows per multi-row INSERT.
const sqliteBatchSize = 500

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	sql sq.StatementBuilderType
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, sql: sq.StatementBuilder.PlaceholderFormat(sq.Question)}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS regions (
	position    INTEGER PRIMARY KEY,
	region_name TEXT NOT NULL,
	region_code TEXT,
	population  TEXT,
	cost_metric TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS incomes (
	region_code   TEXT NOT NULL,
	year          INTEGER NOT NULL,
	income_group  TEXT NOT NULL,
	region_name   TEXT NOT NULL DEFAULT '',
	median_income REAL,
	position      INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (region_code, year, income_group)
);

CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	regions      INTEGER NOT NULL DEFAULT 0,
	incomes      INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	started_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_regions_code ON regions(region_code);
CREATE INDEX IF NOT EXISTS idx_incomes_year_group ON incomes(year, income_group);
CREATE INDEX IF NOT EXISTS idx_incomes_position ON incomes(position);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRegions replaces the whole regions table with regions.
func (s *SQLiteStore) SaveRegions(ctx context.Context, regions []model.RegionRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM regions"); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear regions")
	}

	n, err := s.insertBatches(ctx, tx, s.sql.Insert("regions").Columns(regionColumns...), "", regionRows(regions))
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert regions")
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit regions")
	}
	return n, nil
}

// SaveIncomes upserts incomes keyed by region code, year, and income group.
// New keys are appended after every stored row; updated keys keep their place.
func (s *SQLiteStore) SaveIncomes(ctx context.Context, incomes []model.IncomeRecord) (int64, error) {
	if len(incomes) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	query, args, err := nextIncomePosition(s.sql).ToSql()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: build position query")
	}
	var base int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&base); err != nil {
		return 0, eris.Wrap(err, "sqlite: next income position")
	}
	rows := incomeRows(incomes, base)

	suffix := "ON CONFLICT (region_code, year, income_group) DO UPDATE SET " +
		"region_name = excluded.region_name, median_income = excluded.median_income"
	n, err := s.insertBatches(ctx, tx, s.sql.Insert("incomes").Columns(incomeColumns...), suffix, rows)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert incomes")
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit incomes")
	}
	return n, nil
}

// insertBatches runs base with rows appended as VALUES, sqliteBatchSize rows
// per statement.
func (s *SQLiteStore) insertBatches(ctx context.Context, tx *sql.Tx, base sq.InsertBuilder, suffix string, rows [][]any) (int64, error) {
	var total int64
	for start := 0; start < len(rows); start += sqliteBatchSize {
		end := min(start+sqliteBatchSize, len(rows))

		ins := base
		for _, row := range rows[start:end] {
			ins = ins.Values(row...)
		}
		if suffix != "" {
			ins = ins.Suffix(suffix)
		}

		query, args, err := ins.ToSql()
		if err != nil {
			return total, eris.Wrap(err, "build insert")
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return total, eris.Wrapf(err, "insert rows %d..%d", start, end-1)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, eris.Wrap(err, "rows affected")
		}
		total += n
	}
	return total, nil
}

func (s *SQLiteStore) Regions(ctx context.Context) ([]model.RegionRecord, error) {
	query, args, err := s.sql.Select(regionColumns[1:]...).From("regions").OrderBy("position").ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build regions query")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query regions")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.RegionRecord
	for rows.Next() {
		var r model.RegionRecord
		var code, pop sql.NullString
		if err := rows.Scan(&r.RegionName, &code, &pop, &r.CostMetric); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan region")
		}
		r.RegionCode = code.String
		if pop.Valid {
			v := pop.String
			r.Population = &v
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate regions")
}

func (s *SQLiteStore) Incomes(ctx context.Context, filter IncomeFilter) ([]model.IncomeRecord, error) {
	query, args, err := incomeQuery(s.sql, filter).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build incomes query")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query incomes")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.IncomeRecord
	for rows.Next() {
		var in model.IncomeRecord
		var median sql.NullFloat64
		if err := rows.Scan(&in.RegionCode, &in.Year, &in.IncomeGroup, &in.RegionName, &median); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan income")
		}
		if median.Valid {
			v := median.Float64
			in.MedianIncome = &v
		}
		out = append(out, in)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate incomes")
}

func (s *SQLiteStore) StartRun(ctx context.Context, source string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New().String(),
		Source:    source,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	query, args, err := s.sql.Insert("runs").
		Columns("id", "source", "status", "started_at").
		Values(run.ID, run.Source, string(run.Status), run.StartedAt).
		ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build insert run")
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, counts model.RunCounts) error {
	return s.finishRun(ctx, runID, sq.Eq{
		"status":  string(model.RunStatusComplete),
		"regions": counts.Regions,
		"incomes": counts.Incomes,
	})
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, runErr error) error {
	return s.finishRun(ctx, runID, sq.Eq{
		"status": string(model.RunStatusFailed),
		"error":  errorText(runErr),
	})
}

func (s *SQLiteStore) finishRun(ctx context.Context, runID string, set sq.Eq) error {
	set["completed_at"] = time.Now().UTC()
	query, args, err := s.sql.Update("runs").SetMap(set).Where(sq.Eq{"id": runID}).ToSql()
	if err != nil {
		return eris.Wrap(err, "sqlite: build update run")
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query, args, err := runQuery(s.sql, filter).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: build runs query")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var status string
		var completed sql.NullTime
		if err := rows.Scan(&r.ID, &r.Source, &status, &r.Regions, &r.Incomes, &r.Error, &r.StartedAt, &completed); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Status = model.RunStatus(status)
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
