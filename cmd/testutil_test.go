package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/affordability-cli/internal/config"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const cmsCSV = `Medicare Program Statistics
Calendar Year 2021

Area of Residence,,Total Original Medicare Part A and/or Part B Enrollees,Program Payments,Unnamed: 4
,,,Per Person with Utilization,Unnamed: 4
All Areas,,"33,781,209","$12,010",
Alabama,,"391,002","$11,200",
New York,,"1,850,000","$14,500",
Texas,,"2,200,000","$12,800",
Guam,,"12,000","$5,100",
`

const incomesCSV = `state_code,state_name,year,income_group,median_income
AL,Alabama,2021,all,"$53,913"
NY,New York,2021,all,"$74,314"
TX,Texas,2021,all,"$66,963"
AL,Alabama,2024,all,"$62,027"
NY,New York,2024,all,"$81,386"
TX,Texas,2024,all,"$75,780"
AL,Alabama,2024,65plus,"$41,000"
NY,New York,2024,65plus,"$52,000"
`

// testConfig returns a config backed by a temp SQLite file and out dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(dir, "afford.db")},
		Log:   config.LogConfig{Level: "error", Format: "json"},
		Ingest: config.IngestConfig{
			Anchor:    "Area of Residence",
			ScanLimit: 25,
		},
		Fetch: config.FetchConfig{TimeoutSecs: 5, MaxRetries: 1, TempDir: dir},
		Report: config.ReportConfig{
			Year:        2024,
			TopK:        2,
			HighlightK:  2,
			ChangeGroup: "all",
			ChangeFrom:  2021,
			ChangeTo:    2024,
			OutDir:      filepath.Join(dir, "out"),
			Locale:      "en",
		},
	}
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func runCommand(cmd *cobra.Command) error {
	cmd.SetContext(context.Background())
	return cmd.RunE(cmd, nil)
}
