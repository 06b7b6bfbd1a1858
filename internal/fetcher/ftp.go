package fetcher

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions configures FTP report downloads.
type FTPOptions struct {
	Timeout time.Duration
}

// FTPFetcher downloads report files from FTP servers. A URL whose path ends
// in "/" names a release directory; the newest report file in it is used.
type FTPFetcher struct {
	opts FTPOptions
}

// NewFTPFetcher creates an FTPFetcher. Timeout defaults to 30s.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &FTPFetcher{opts: opts}
}

// ftpTarget is a parsed ftp:// source. Credentials come from the URL's user
// info; without one the login is anonymous.
type ftpTarget struct {
	addr     string
	user     string
	password string
	path     string
}

func (t ftpTarget) isDir() bool { return strings.HasSuffix(t.path, "/") }

// url renders the target back to an ftp:// URL for path p.
func (t ftpTarget) url(p string) string {
	u := url.URL{Scheme: "ftp", Host: t.addr, Path: p}
	if t.user != "anonymous" {
		u.User = url.UserPassword(t.user, t.password)
	}
	return u.String()
}

func parseFTPTarget(raw string) (ftpTarget, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ftpTarget{}, eris.Wrap(err, "ftp: parse url")
	}
	if u.Scheme != "ftp" {
		return ftpTarget{}, eris.Errorf("ftp: expected ftp scheme, got %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		return ftpTarget{}, eris.Errorf("ftp: no file or directory in %s", u.Redacted())
	}

	t := ftpTarget{addr: u.Host, user: "anonymous", password: "anonymous@", path: u.Path}
	if _, _, err := net.SplitHostPort(t.addr); err != nil {
		t.addr = net.JoinHostPort(t.addr, "21")
	}
	if u.User != nil {
		t.user = u.User.Username()
		t.password, _ = u.User.Password()
	}
	return t, nil
}

// latestReport picks the newest report file among entries, breaking equal
// timestamps by name. Directories and non-report files are ignored.
func latestReport(entries []*ftp.Entry) (*ftp.Entry, bool) {
	var best *ftp.Entry
	for _, e := range entries {
		if e.Type != ftp.EntryTypeFile {
			continue
		}
		if !isDataFile(e.Name) && !strings.EqualFold(path.Ext(e.Name), ".zip") {
			continue
		}
		if best == nil || e.Time.After(best.Time) || (e.Time.Equal(best.Time) && e.Name > best.Name) {
			best = e
		}
	}
	return best, best != nil
}

// session dials and logs in, runs fn, and quits.
func (f *FTPFetcher) session(ctx context.Context, t ftpTarget, fn func(*ftp.ServerConn) error) error {
	conn, err := ftp.Dial(t.addr, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return eris.Wrapf(err, "ftp: dial %s", t.addr)
	}
	defer conn.Quit() //nolint:errcheck

	if err := conn.Login(t.user, t.password); err != nil {
		return eris.Wrapf(err, "ftp: login as %s", t.user)
	}
	return fn(conn)
}

// Resolve returns the URL of the file rawURL names. Directory URLs resolve
// to their newest report file; file URLs are returned unchanged.
func (f *FTPFetcher) Resolve(ctx context.Context, rawURL string) (string, error) {
	t, err := parseFTPTarget(rawURL)
	if err != nil {
		return "", err
	}
	if !t.isDir() {
		return rawURL, nil
	}

	var picked string
	err = f.session(ctx, t, func(conn *ftp.ServerConn) error {
		entries, err := conn.List(t.path)
		if err != nil {
			return eris.Wrapf(err, "ftp: list %s", t.path)
		}
		e, ok := latestReport(entries)
		if !ok {
			return eris.Errorf("ftp: no report file in %s", t.path)
		}
		picked = path.Join(t.path, e.Name)
		zap.L().Info("ftp: picked latest report",
			zap.String("dir", t.path),
			zap.String("file", e.Name),
			zap.Time("modified", e.Time),
		)
		return nil
	})
	if err != nil {
		return "", err
	}
	return t.url(picked), nil
}

// Download retrieves the file into memory. Directory URLs are resolved first.
func (f *FTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	var buf bytes.Buffer
	if _, err := f.fetch(ctx, rawURL, func(r io.Reader) (int64, error) {
		return buf.ReadFrom(r)
	}); err != nil {
		return nil, err
	}
	return io.NopCloser(&buf), nil
}

// DownloadToFile retrieves the file to dest. Returns bytes written.
func (f *FTPFetcher) DownloadToFile(ctx context.Context, rawURL string, dest string) (int64, error) {
	return f.fetch(ctx, rawURL, func(r io.Reader) (int64, error) {
		return writeFile(dest, r)
	})
}

func (f *FTPFetcher) fetch(ctx context.Context, rawURL string, sink func(io.Reader) (int64, error)) (int64, error) {
	resolved, err := f.Resolve(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	t, err := parseFTPTarget(resolved)
	if err != nil {
		return 0, err
	}

	var n int64
	err = f.session(ctx, t, func(conn *ftp.ServerConn) error {
		resp, err := conn.Retr(t.path)
		if err != nil {
			return eris.Wrapf(err, "ftp: retrieve %s", t.path)
		}
		defer resp.Close() //nolint:errcheck

		n, err = sink(resp)
		return err
	})
	if err != nil {
		return 0, err
	}
	zap.L().Debug("ftp: retrieved", zap.String("addr", t.addr), zap.String("path", t.path), zap.Int64("bytes", n))
	return n, nil
}
