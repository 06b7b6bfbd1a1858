package db

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var incomeUpsert = UpsertConfig{
	Table:        "incomes",
	Columns:      []string{"region_code", "year", "income_group", "region_name", "median_income"},
	ConflictKeys: []string{"region_code", "year", "income_group"},
}

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.TODO(), nil, incomeUpsert, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_Validation(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, UpsertConfig{Table: "incomes", ConflictKeys: []string{"id"}}, [][]any{{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")

	_, err = BulkUpsert(context.TODO(), nil, UpsertConfig{Table: "incomes", Columns: []string{"id"}}, [][]any{{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TEMP TABLE "_tmp_upsert_incomes" (LIKE "incomes" INCLUDING DEFAULTS) ON COMMIT DROP`)).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_incomes"}, incomeUpsert.Columns).WillReturnResult(2)
	mock.ExpectExec(regexp.QuoteMeta(incomeUpsert.upsertSQL())).WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	rows := [][]any{
		{"NY", 2024, "65plus", "New York", 50000.0},
		{"CA", 2024, "65plus", "California", nil},
	}
	n, err := BulkUpsert(context.Background(), mock, incomeUpsert, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_InsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_incomes"}, incomeUpsert.Columns).WillReturnResult(1)
	mock.ExpectExec("INSERT INTO").WillReturnError(fmt.Errorf("constraint violation"))
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, incomeUpsert, [][]any{{"NY", 2024, "65plus", "New York", 1.0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INSERT ON CONFLICT for incomes")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSQL(t *testing.T) {
	got := incomeUpsert.upsertSQL()
	assert.Equal(t,
		`INSERT INTO "incomes" ("region_code", "year", "income_group", "region_name", "median_income") `+
			`SELECT "region_code", "year", "income_group", "region_name", "median_income" FROM "_tmp_upsert_incomes" `+
			`ON CONFLICT ("region_code", "year", "income_group") `+
			`DO UPDATE SET "region_name" = EXCLUDED."region_name", "median_income" = EXCLUDED."median_income"`,
		got)

	keysOnly := UpsertConfig{Table: "codes", Columns: []string{"code"}, ConflictKeys: []string{"code"}}
	assert.Contains(t, keysOnly.upsertSQL(), "ON CONFLICT (\"code\") DO NOTHING")
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"incomes", `"incomes"`},
		{"afford.incomes", `"afford"."incomes"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeTable(tt.input))
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"region_code", "year"`, quoteAndJoin([]string{"region_code", "year"}))
}
