package main

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/affordability-cli/internal/export"
)

// CleanFileName is the cleaned cost report written by clean.
const CleanFileName = "cms_charges_clean.csv"

var (
	cleanInput  string
	cleanLayout string
	cleanOut    string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean a CMS cost report into one record per state",
	Long: "Locates the two-row header, resolves the region, cost, and population columns, " +
		"and writes the normalized state records as CSV.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "clean"), zap.String("input", cleanInput))

		res, err := cleanSource(ctx, newSource(), cleanInput, cleanLayout)
		if err != nil {
			if isStructural(err) {
				log.Error("cost report layout not recognized", zap.Error(err))
			}
			return err
		}

		out := cleanOut
		if out == "" {
			out = filepath.Join(cfg.Report.OutDir, CleanFileName)
		}
		if err := export.WriteCSV(out, export.RegionsTable(res.Records)); err != nil {
			return eris.Wrap(err, "write clean records")
		}

		log.Info("cleaned cost report",
			zap.Int("header_row", res.Header.Row),
			zap.Int("records", len(res.Records)),
			zap.Int("dropped", res.Stats.Dropped),
			zap.Int("uncoded", res.Stats.Uncoded),
			zap.Int("malformed", res.Stats.Malformed),
			zap.Bool("population", res.HasPopulation()),
			zap.String("out", out),
		)
		return nil
	},
}

func init() {
	cleanCmd.Flags().StringVar(&cleanInput, "input", "", "cost report path or URL (csv, xlsx, zip)")
	cleanCmd.Flags().StringVar(&cleanLayout, "layout", "", "layout YAML file (defaults to the CMS layout)")
	cleanCmd.Flags().StringVar(&cleanOut, "out", "", "output CSV path (default <report.out_dir>/"+CleanFileName+")")
	_ = cleanCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(cleanCmd)
}
