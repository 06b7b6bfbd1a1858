package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/affordability-cli/internal/db"
	"github.com/sells-group/affordability-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
	sql     sq.StatementBuilderType
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return newPostgresStore(pool, pool.Close), nil
}

func newPostgresStore(pool db.Pool, closeFn func()) *PostgresStore {
	return &PostgresStore{
		pool:    pool,
		closeFn: closeFn,
		sql:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return migratePostgres(ctx, s.pool)
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SaveRegions replaces the whole regions table with regions.
func (s *PostgresStore) SaveRegions(ctx context.Context, regions []model.RegionRecord) (int64, error) {
	n, err := db.ReplaceAll(ctx, s.pool, "regions", regionColumns, regionRows(regions))
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save regions")
	}
	return n, nil
}

// SaveIncomes upserts incomes keyed by region code, year, and income group.
// New keys are appended after every stored row; updated keys keep their place.
func (s *PostgresStore) SaveIncomes(ctx context.Context, incomes []model.IncomeRecord) (int64, error) {
	if len(incomes) == 0 {
		return 0, nil
	}

	query, args, err := nextIncomePosition(s.sql).ToSql()
	if err != nil {
		return 0, eris.Wrap(err, "postgres: build position query")
	}
	var base int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&base); err != nil {
		return 0, eris.Wrap(err, "postgres: next income position")
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "incomes",
		Columns:      incomeColumns,
		ConflictKeys: incomeKeys,
		UpdateCols:   incomeUpdates,
	}, incomeRows(incomes, base))
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save incomes")
	}
	return n, nil
}

func (s *PostgresStore) Regions(ctx context.Context) ([]model.RegionRecord, error) {
	query, args, err := s.sql.Select(regionColumns[1:]...).From("regions").OrderBy("position").ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build regions query")
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query regions")
	}
	defer rows.Close()

	var out []model.RegionRecord
	for rows.Next() {
		var r model.RegionRecord
		var code *string
		if err := rows.Scan(&r.RegionName, &code, &r.Population, &r.CostMetric); err != nil {
			return nil, eris.Wrap(err, "postgres: scan region")
		}
		if code != nil {
			r.RegionCode = *code
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate regions")
}

func (s *PostgresStore) Incomes(ctx context.Context, filter IncomeFilter) ([]model.IncomeRecord, error) {
	query, args, err := incomeQuery(s.sql, filter).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build incomes query")
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query incomes")
	}
	defer rows.Close()

	var out []model.IncomeRecord
	for rows.Next() {
		var in model.IncomeRecord
		if err := rows.Scan(&in.RegionCode, &in.Year, &in.IncomeGroup, &in.RegionName, &in.MedianIncome); err != nil {
			return nil, eris.Wrap(err, "postgres: scan income")
		}
		out = append(out, in)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate incomes")
}

func (s *PostgresStore) StartRun(ctx context.Context, source string) (*model.Run, error) {
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
		return nil, eris.Wrap(err, "postgres: build insert run")
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, counts model.RunCounts) error {
	return s.finishRun(ctx, runID, sq.Eq{
		"status":  string(model.RunStatusComplete),
		"regions": counts.Regions,
		"incomes": counts.Incomes,
	})
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, runErr error) error {
	return s.finishRun(ctx, runID, sq.Eq{
		"status": string(model.RunStatusFailed),
		"error":  errorText(runErr),
	})
}

func (s *PostgresStore) finishRun(ctx context.Context, runID string, set sq.Eq) error {
	set["completed_at"] = time.Now().UTC()
	query, args, err := s.sql.Update("runs").SetMap(set).Where(sq.Eq{"id": runID}).ToSql()
	if err != nil {
		return eris.Wrap(err, "postgres: build update run")
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query, args, err := runQuery(s.sql, filter).ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build runs query")
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var status string
		if err := rows.Scan(&r.ID, &r.Source, &status, &r.Regions, &r.Incomes, &r.Error, &r.StartedAt, &r.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Status = model.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
