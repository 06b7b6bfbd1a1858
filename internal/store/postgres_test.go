package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/affordability-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return newPostgresStore(mock, nil), mock
}

func TestPostgresStore_SaveRegions(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "regions"`).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"regions"}, regionColumns).WillReturnResult(3)
	mock.ExpectCommit()

	n, err := s.SaveRegions(context.Background(), sampleRegions())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveIncomes(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(position\) \+ 1, 0\) FROM incomes`).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(7)))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_incomes"`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_incomes"}, incomeColumns).WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "incomes" .* ON CONFLICT \("region_code", "year", "income_group"\) DO UPDATE SET "region_name" = EXCLUDED."region_name", "median_income" = EXCLUDED."median_income"$`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := s.SaveIncomes(context.Background(), []model.IncomeRecord{
		{RegionCode: "NY", Year: 2024, IncomeGroup: "65plus", MedianIncome: floatPtr(50000)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Regions(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"region_name", "region_code", "population", "cost_metric"}).
		AddRow("New York", strPtr("NY"), strPtr("3500000"), "12000").
		AddRow("Guam", (*string)(nil), (*string)(nil), "9000")
	mock.ExpectQuery(`SELECT region_name, region_code, population, cost_metric FROM regions ORDER BY position`).
		WillReturnRows(rows)

	got, err := s.Regions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "NY", got[0].RegionCode)
	assert.Equal(t, "3500000", *got[0].Population)
	assert.False(t, got[1].HasCode())
	assert.Nil(t, got[1].Population)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Incomes(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"region_code", "year", "income_group", "region_name", "median_income"}).
		AddRow("NY", 2024, "65plus", "New York", floatPtr(50000))
	mock.ExpectQuery(`SELECT .* FROM incomes WHERE year = \$1 AND income_group = \$2`).
		WithArgs(2024, "65plus").
		WillReturnRows(rows)

	got, err := s.Incomes(context.Background(), IncomeFilter{Year: 2024, Group: "65plus"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 50000.0, *got[0].MedianIncome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Incomes_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .* FROM incomes`).WillReturnError(errors.New("relation does not exist"))

	_, err := s.Incomes(context.Background(), IncomeFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: query incomes")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RunLog(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO runs \(id,source,status,started_at\) VALUES \(\$1,\$2,\$3,\$4\)`).
		WithArgs(pgxmock.AnyArg(), "cms.csv", "running", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.StartRun(ctx, "cms.csv")
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)

	mock.ExpectExec(`UPDATE runs SET completed_at = \$1, incomes = \$2, regions = \$3, status = \$4 WHERE id = \$5`).
		WithArgs(pgxmock.AnyArg(), int64(10), int64(52), "complete", run.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, s.CompleteRun(ctx, run.ID, model.RunCounts{Regions: 52, Incomes: 10}))

	mock.ExpectExec(`UPDATE runs SET completed_at = \$1, error = \$2, status = \$3 WHERE id = \$4`).
		WithArgs(pgxmock.AnyArg(), "boom", "failed", "gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err = s.FailRun(ctx, "gone", errors.New("boom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	completed := started.Add(time.Minute)
	rows := pgxmock.NewRows(runColumns).
		AddRow("r1", "cms.csv", "complete", int64(52), int64(104), "", started, &completed)
	mock.ExpectQuery(`SELECT .* FROM runs ORDER BY started_at DESC LIMIT 20`).WillReturnRows(rows)

	runs, err := s.ListRuns(context.Background(), RunFilter{Limit: 20})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	assert.Equal(t, completed, *runs[0].CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`SELECT pg_advisory_lock`).WithArgs(migrationLockID).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectQuery(`SELECT filename FROM schema_migrations`).WillReturnRows(pgxmock.NewRows([]string{"filename"}))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS regions`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).WithArgs("001_affordability.sql").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`SELECT pg_advisory_unlock`).WithArgs(migrationLockID).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate_SkipsApplied(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`SELECT pg_advisory_lock`).WithArgs(migrationLockID).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectQuery(`SELECT filename FROM schema_migrations`).
		WillReturnRows(pgxmock.NewRows([]string{"filename"}).AddRow("001_affordability.sql"))
	mock.ExpectExec(`SELECT pg_advisory_unlock`).WithArgs(migrationLockID).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationNames(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_affordability.sql"}, names)
}
