package main

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/affordability-cli/internal/dataset"
	"github.com/sells-group/affordability-cli/internal/export"
	"github.com/sells-group/affordability-cli/internal/fetcher"
	"github.com/sells-group/affordability-cli/internal/model"
	"github.com/sells-group/affordability-cli/internal/store"
	"github.com/sells-group/affordability-cli/internal/tabular"
	"github.com/sells-group/affordability-cli/internal/transform"
)

func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func newSource() *fetcher.Source {
	return fetcher.NewSource(fetcher.SourceOptions{
		TempDir: cfg.Fetch.TempDir,
		CSV:     fetcher.CSVOptions{Encoding: cfg.Ingest.Encoding},
		XLSX:    fetcher.XLSXOptions{SheetName: cfg.Ingest.Sheet},
		HTTP: fetcher.HTTPOptions{
			UserAgent:    cfg.Fetch.UserAgent,
			Timeout:      cfg.Fetch.Timeout(),
			MaxRetries:   cfg.Fetch.MaxRetries,
			RateLimiters: fetcher.DefaultRateLimiters(),
		},
		FTP: fetcher.FTPOptions{Timeout: cfg.Fetch.Timeout()},
	})
}

// resolveLayout returns the layout file named by path (or ingest.layout_file),
// else the CMS layout with the configured anchor and scan limit.
func resolveLayout(path string) (dataset.Layout, error) {
	if path == "" {
		path = cfg.Ingest.LayoutFile
	}
	if path != "" {
		return dataset.LoadLayout(path)
	}

	layout := dataset.CMSLayout()
	if cfg.Ingest.Anchor != "" {
		layout.Anchor = cfg.Ingest.Anchor
	}
	if cfg.Ingest.ScanLimit > 0 {
		layout.ScanLimit = cfg.Ingest.ScanLimit
	}
	return layout, nil
}

// cleanSource reads and cleans one cost report. Header and column failures
// come back unwrapped.
func cleanSource(ctx context.Context, src *fetcher.Source, input, layoutPath string) (*dataset.CleanResult, error) {
	if err := cfg.Validate("ingest"); err != nil {
		return nil, err
	}
	layout, err := resolveLayout(layoutPath)
	if err != nil {
		return nil, err
	}

	grid, err := src.ReadGrid(ctx, input)
	if err != nil {
		return nil, err
	}

	return dataset.CleanCMS(grid, layout, transform.DefaultTables())
}

// readIncomes reads and parses every income source, in order.
func readIncomes(ctx context.Context, src *fetcher.Source, inputs []string) ([]model.IncomeRecord, error) {
	var all []model.IncomeRecord
	for _, in := range inputs {
		grid, err := src.ReadGrid(ctx, in)
		if err != nil {
			return nil, err
		}
		recs, stats, err := dataset.ParseIncomes(grid)
		if err != nil {
			return nil, err
		}
		zap.L().Info("parsed income file",
			zap.String("source", in),
			zap.Int("records", len(recs)),
			zap.Int("skipped", stats.Skipped),
			zap.Int("malformed", stats.Malformed),
		)
		all = append(all, recs...)
	}
	return all, nil
}

// reportFlags carries report flag overrides; zero values keep the config.
type reportFlags struct {
	year   int
	k      int
	outDir string
	xlsx   bool
}

func reportOptions(f reportFlags) export.Options {
	opts := export.Options{
		Year:        cfg.Report.Year,
		TopK:        cfg.Report.TopK,
		HighlightK:  cfg.Report.HighlightK,
		ChangeGroup: cfg.Report.ChangeGroup,
		ChangeFrom:  cfg.Report.ChangeFrom,
		ChangeTo:    cfg.Report.ChangeTo,
		XLSX:        cfg.Report.XLSX || f.xlsx,
		Locale:      cfg.Report.Locale,
	}
	if f.year != 0 {
		opts.Year = f.year
	}
	if f.k > 0 {
		opts.TopK = f.k
	}
	return opts
}

func outDir(f reportFlags) string {
	if f.outDir != "" {
		return f.outDir
	}
	return cfg.Report.OutDir
}

// writeReport builds the report and writes every export file.
func writeReport(ctx context.Context, regions []model.RegionRecord, incomes []model.IncomeRecord, f reportFlags) error {
	if err := cfg.Validate("report"); err != nil {
		return err
	}

	r := export.Build(regions, incomes, reportOptions(f))
	zap.L().Info("aggregated facts",
		zap.Int("facts", r.Stats.Facts),
		zap.Int("year_facts", len(r.YearFacts)),
		zap.Int("groups", len(r.Groups)),
		zap.Int("unmatched_regions", r.Stats.UnmatchedRegions),
		zap.Int("unmatched_incomes", r.Stats.UnmatchedIncomes),
		zap.Int("undefined_indexes", r.Stats.UndefinedIndexes),
	)

	paths, err := export.WriteAll(ctx, outDir(f), r)
	if err != nil {
		return err
	}
	for _, p := range paths {
		zap.L().Debug("wrote file", zap.String("path", p))
	}
	return nil
}

// isStructural reports whether err is a header or required column failure.
func isStructural(err error) bool {
	return errors.Is(err, tabular.ErrHeaderNotFound) || errors.Is(err, tabular.ErrRequiredColumnMissing)
}
