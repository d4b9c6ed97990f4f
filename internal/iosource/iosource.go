// Package iosource acquires the FAA releasable aircraft registry. The
// registry is downloaded as a ZIP archive, or read from a local archive
// or a directory with extracted files.
package iosource

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	taillookup "github.com/taillookup/taillookup/pkg"
	"github.com/taillookup/taillookup/pkg/config"
)

const (
	// MasterFile is the name fragment of the registrations file.
	MasterFile = "MASTER"

	// AcftrefFile is the name fragment of the aircraft models file.
	AcftrefFile = "ACFTREF"

	archiveName = "ReleasableAircraft.zip"
)

// Files gives access to the contents of MASTER and ACFTREF files.
type Files struct {
	Master  io.ReadCloser
	Acftref io.ReadCloser

	// Origin is the URL or the local path the files came from.
	Origin string

	closers []io.Closer
}

// Close releases readers and the underlying archive.
func (f *Files) Close() error {
	var errs []error
	for _, c := range f.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Source locates registry files according to SourceConfig.
type Source struct {
	cfg       config.SourceConfig
	cacheDir  string
	client    *http.Client
	userAgent string
}

// New creates a Source. Downloads are cached in the cache directory.
func New(cfg *config.Config) *Source {
	return &Source{
		cfg:      cfg.Source,
		cacheDir: config.CacheDir(cfg.HomeDir),
		client: &http.Client{
			Timeout: time.Duration(cfg.Source.TimeoutSec) * time.Second,
		},
		userAgent: "taillookup-builder/" + taillookup.Version,
	}
}

// Open returns registry files from the local path when it is set, or
// downloads the archive otherwise.
func (s *Source) Open(ctx context.Context) (*Files, error) {
	if s.cfg.Path != "" {
		return OpenPath(s.cfg.Path)
	}

	path, err := s.download(ctx)
	if err != nil {
		return nil, err
	}

	res, err := openZip(path)
	if err != nil {
		return nil, err
	}
	res.Origin = s.cfg.URL
	return res, nil
}

// OpenPath opens a ZIP archive or a directory with registry files.
func OpenPath(path string) (*Files, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ArchiveError(path, err)
	}
	if info.IsDir() {
		return openDir(path)
	}
	return openZip(path)
}

// download fetches the archive into the cache directory. A failed
// attempt is repeated once after RetryWaitSec.
func (s *Source) download(ctx context.Context) (string, error) {
	path := filepath.Join(s.cacheDir, archiveName)
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return "", DownloadError(s.cfg.URL, err)
	}

	wait := time.Duration(s.cfg.RetryWaitSec) * time.Second
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(wait), 1),
		ctx,
	)
	notify := func(err error, d time.Duration) {
		slog.Warn("Download failed, retrying", "url", s.cfg.URL, "error", err)
		gn.Warn("Download failed, retrying in %s", d)
	}

	gn.Info("Downloading <em>%s</em>", s.cfg.URL)
	err := backoff.RetryNotify(func() error {
		return s.fetch(ctx, path)
	}, bo, notify)
	if err != nil {
		return "", DownloadError(s.cfg.URL, err)
	}

	if info, err := os.Stat(path); err == nil {
		gn.Info("Downloaded %s", humanize.Bytes(uint64(info.Size())))
	}
	return path, nil
}

// fetch makes one download attempt. The archive replaces the cached copy
// only when it was received completely.
func (s *Source) fetch(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(s.cacheDir, archiveName+".*.part")
	if err != nil {
		return backoff.Permanent(err)
	}
	defer os.Remove(tmp.Name())

	bar := pb.Full.Start64(max(resp.ContentLength, 0))
	bar.Set(pb.Bytes, true)
	bar.Set("prefix", "Downloading registry: ")
	bar.Set(pb.CleanOnFinish, true)

	_, err = io.Copy(tmp, bar.NewProxyReader(resp.Body))
	bar.Finish()
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func openZip(path string) (*Files, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, ArchiveError(path, err)
	}

	res := &Files{Origin: path, closers: []io.Closer{zr}}
	names := make([]string, 0, len(zr.File))
	var master, acftref *zip.File
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.FileInfo().IsDir() {
			continue
		}
		switch {
		case master == nil && matches(f.Name, MasterFile):
			master = f
		case acftref == nil && matches(f.Name, AcftrefFile):
			acftref = f
		}
	}

	for _, v := range []struct {
		file *zip.File
		name string
		dst  *io.ReadCloser
	}{
		{master, MasterFile, &res.Master},
		{acftref, AcftrefFile, &res.Acftref},
	} {
		if v.file == nil {
			res.Close()
			return nil, FileMissingError(path, v.name, names)
		}
		rc, err := v.file.Open()
		if err != nil {
			res.Close()
			return nil, ArchiveError(path, err)
		}
		res.closers = append([]io.Closer{rc}, res.closers...)
		*v.dst = rc
	}

	slog.Info("Opened registry archive",
		"path", path, "master", master.Name, "acftref", acftref.Name)
	return res, nil
}

func openDir(dir string) (*Files, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ArchiveError(dir, err)
	}

	names := make([]string, 0, len(entries))
	var master, acftref string
	for _, e := range entries {
		names = append(names, e.Name())
		if e.IsDir() {
			continue
		}
		switch {
		case master == "" && matches(e.Name(), MasterFile):
			master = e.Name()
		case acftref == "" && matches(e.Name(), AcftrefFile):
			acftref = e.Name()
		}
	}

	res := &Files{Origin: dir}
	for _, v := range []struct {
		file string
		name string
		dst  *io.ReadCloser
	}{
		{master, MasterFile, &res.Master},
		{acftref, AcftrefFile, &res.Acftref},
	} {
		if v.file == "" {
			res.Close()
			return nil, FileMissingError(dir, v.name, names)
		}
		f, err := os.Open(filepath.Join(dir, v.file))
		if err != nil {
			res.Close()
			return nil, ArchiveError(dir, err)
		}
		res.closers = append(res.closers, f)
		*v.dst = f
	}

	slog.Info("Opened registry directory",
		"path", dir, "master", master, "acftref", acftref)
	return res, nil
}

// matches compares the base name of an entry with a registry file name,
// ignoring case.
func matches(name, file string) bool {
	base := strings.ToUpper(filepath.Base(name))
	return strings.Contains(base, file)
}
