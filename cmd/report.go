package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/affordability-cli/internal/store"
)

var reportFlagVals reportFlags

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Rank stored states by affordability index and write the exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		regions, err := st.Regions(ctx)
		if err != nil {
			return err
		}
		incomes, err := st.Incomes(ctx, store.IncomeFilter{})
		if err != nil {
			return err
		}

		return writeReport(ctx, regions, incomes, reportFlagVals)
	},
}

func addReportFlags(cmd *cobra.Command, f *reportFlags) {
	cmd.Flags().IntVar(&f.year, "year", 0, "income year to rank (default report.year)")
	cmd.Flags().IntVar(&f.k, "k", 0, "top/bottom slice size per income group (default report.top_k)")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "output directory (default report.out_dir)")
	cmd.Flags().BoolVar(&f.xlsx, "xlsx", false, "also write the multi-sheet workbook")
}

func init() {
	addReportFlags(reportCmd, &reportFlagVals)
	rootCmd.AddCommand(reportCmd)
}
