package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/affordability-cli/internal/model"
	"github.com/sells-group/affordability-cli/internal/store"
)

var (
	loadInput   string
	loadLayout  string
	loadIncomes []string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Clean a cost report and load it with income tables into the store",
	Long: "Cleans the cost report, parses each income table, and saves both to the " +
		"configured store. Each invocation is recorded in the run log.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.StartRun(ctx, loadInput)
		if err != nil {
			return err
		}
		log := zap.L().With(zap.String("command", "load"), zap.String("run_id", run.ID))

		counts, err := loadAll(ctx, st)
		if err != nil {
			log.Error("load failed", zap.Error(err))
			if ferr := st.FailRun(ctx, run.ID, err); ferr != nil {
				log.Warn("failed to record run failure", zap.Error(ferr))
			}
			return err
		}

		if err := st.CompleteRun(ctx, run.ID, counts); err != nil {
			return err
		}
		log.Info("load complete",
			zap.Int64("regions", counts.Regions),
			zap.Int64("incomes", counts.Incomes),
		)
		return nil
	},
}

func loadAll(ctx context.Context, st store.Store) (model.RunCounts, error) {
	var counts model.RunCounts
	src := newSource()

	res, err := cleanSource(ctx, src, loadInput, loadLayout)
	if err != nil {
		return counts, err
	}
	incomes, err := readIncomes(ctx, src, loadIncomes)
	if err != nil {
		return counts, err
	}

	if counts.Regions, err = st.SaveRegions(ctx, res.Records); err != nil {
		return counts, err
	}
	if len(incomes) > 0 {
		if counts.Incomes, err = st.SaveIncomes(ctx, incomes); err != nil {
			return counts, err
		}
	}
	return counts, nil
}

func init() {
	loadCmd.Flags().StringVar(&loadInput, "input", "", "cost report path or URL (csv, xlsx, zip)")
	loadCmd.Flags().StringVar(&loadLayout, "layout", "", "layout YAML file (defaults to the CMS layout)")
	loadCmd.Flags().StringSliceVar(&loadIncomes, "incomes", nil, "median income table paths or URLs")
	_ = loadCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(loadCmd)
}
