package fetcher

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/affordability-cli/internal/tabular"
)

// SourceOptions configures how report sources are fetched and read.
type SourceOptions struct {
	TempDir string // working directory for downloads and extracted archives
	CSV     CSVOptions
	XLSX    XLSXOptions
	HTTP    HTTPOptions
	FTP     FTPOptions
}

// resolver is implemented by fetchers whose URLs may name a directory rather
// than a file.
type resolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}

// Source reads report grids from local paths, http(s) URLs, and ftp URLs.
// ZIP archives holding a single data file are extracted first.
type Source struct {
	opts     SourceOptions
	fetchers map[string]Fetcher
}

// NewSource creates a Source with HTTP and FTP fetchers built from opts.
func NewSource(opts SourceOptions) *Source {
	httpF := NewHTTPFetcher(opts.HTTP)
	return &Source{
		opts: opts,
		fetchers: map[string]Fetcher{
			"http":  httpF,
			"https": httpF,
			"ftp":   NewFTPFetcher(opts.FTP),
		},
	}
}

// ReadGrid fetches src if it is remote, unpacks it if it is a ZIP, and reads
// it as XLSX (".xlsx") or CSV (anything else).
func (s *Source) ReadGrid(ctx context.Context, src string) (tabular.Grid, error) {
	log := zap.L().With(zap.String("source", src))

	work, err := os.MkdirTemp(s.opts.TempDir, "afford-src-")
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create work dir")
	}
	defer os.RemoveAll(work) //nolint:errcheck

	local, err := s.localize(ctx, src, work)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(local), ".zip") {
		local, err = ExtractZIPData(local, filepath.Join(work, "unzipped"))
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: unpack %s", src)
		}
		log.Debug("extracted archive entry", zap.String("file", filepath.Base(local)))
	}

	grid, err := ReadFile(local, s.opts.CSV, s.opts.XLSX)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read %s", src)
	}
	log.Info("read source grid", zap.Int("rows", len(grid)), zap.Int("width", grid.Width()))
	return grid, nil
}

// localize returns a local path for src, downloading remote sources into work.
func (s *Source) localize(ctx context.Context, src, work string) (string, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return src, nil
	}

	f, ok := s.fetchers[strings.ToLower(u.Scheme)]
	if !ok {
		if u.Scheme == "file" {
			return u.Path, nil
		}
		return "", eris.Errorf("fetcher: unsupported scheme %q in %s", u.Scheme, src)
	}

	if r, ok := f.(resolver); ok {
		if src, err = r.Resolve(ctx, src); err != nil {
			return "", eris.Wrapf(err, "fetcher: resolve %s", u.Redacted())
		}
		if u, err = url.Parse(src); err != nil {
			return "", eris.Wrap(err, "fetcher: parse resolved url")
		}
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "download.csv"
	}
	dest := filepath.Join(work, name)
	n, err := f.DownloadToFile(ctx, src, dest)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: download %s", u.Redacted())
	}
	zap.L().Info("downloaded source", zap.String("url", u.Redacted()), zap.Int64("bytes", n))
	return dest, nil
}

// ReadFile reads a local CSV or XLSX file into a grid, choosing by extension.
func ReadFile(p string, csvOpts CSVOptions, xlsxOpts XLSXOptions) (tabular.Grid, error) {
	if strings.EqualFold(filepath.Ext(p), ".xlsx") {
		return ReadXLSX(p, xlsxOpts)
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f, csvOpts)
}
