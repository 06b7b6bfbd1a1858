package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/affordability-cli/internal/export"
	"github.com/sells-group/affordability-cli/internal/tabular"
)

func TestRunCmd_Metadata(t *testing.T) {
	assert.Equal(t, "run", runCmd.Use)
	for _, name := range []string{"input", "layout", "incomes", "year", "k", "out-dir", "xlsx"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestRunCmd_EndToEnd(t *testing.T) {
	cfg = testConfig(t)
	runInput = writeFixture(t, "cms.csv", cmsCSV)
	runIncomes = []string{writeFixture(t, "incomes.csv", incomesCSV)}
	runFlagVals = reportFlags{}
	t.Cleanup(func() { runInput, runIncomes = "", nil })

	require.NoError(t, runCommand(runCmd))

	for _, name := range reportFiles {
		assert.FileExists(t, filepath.Join(cfg.Report.OutDir, name))
	}

	insights, err := os.ReadFile(filepath.Join(cfg.Report.OutDir, export.InsightsName))
	require.NoError(t, err)
	assert.Contains(t, string(insights), "Healthcare Affordability")
	assert.Contains(t, string(insights), "Alabama")
}

func TestRunCmd_NoIncomes(t *testing.T) {
	cfg = testConfig(t)
	runInput = writeFixture(t, "cms.csv", cmsCSV)
	runIncomes = nil
	runFlagVals = reportFlags{}
	t.Cleanup(func() { runInput = "" })

	require.NoError(t, runCommand(runCmd))

	data, err := os.ReadFile(filepath.Join(cfg.Report.OutDir, "affordability_fact.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"region_code,region_name,year,income_group,population,cost_metric,median_income,affordability_index\n",
		string(data))
}

func TestRunCmd_BadIncomeHeader(t *testing.T) {
	cfg = testConfig(t)
	runInput = writeFixture(t, "cms.csv", cmsCSV)
	runIncomes = []string{writeFixture(t, "incomes.csv", "state,year\nAL,2024\n")}
	t.Cleanup(func() { runInput, runIncomes = "", nil })

	err := runCommand(runCmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, tabular.ErrRequiredColumnMissing)
}
