package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runInput    string
	runLayout   string
	runIncomes  []string
	runFlagVals reportFlags
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Clean, join, rank, and export in one pass without a store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		src := newSource()

		res, err := cleanSource(ctx, src, runInput, runLayout)
		if err != nil {
			return err
		}
		incomes, err := readIncomes(ctx, src, runIncomes)
		if err != nil {
			return err
		}

		zap.L().Info("sources read",
			zap.String("command", "run"),
			zap.Int("regions", len(res.Records)),
			zap.Int("incomes", len(incomes)),
		)
		return writeReport(ctx, res.Records, incomes, runFlagVals)
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "cost report path or URL (csv, xlsx, zip)")
	runCmd.Flags().StringVar(&runLayout, "layout", "", "layout YAML file (defaults to the CMS layout)")
	runCmd.Flags().StringSliceVar(&runIncomes, "incomes", nil, "median income table paths or URLs")
	addReportFlags(runCmd, &runFlagVals)
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}
