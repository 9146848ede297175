package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"media-slideshow/internal/filesystem"
	"media-slideshow/internal/logging"
	"media-slideshow/internal/metrics"
)

// ErrScan marks a root or subdirectory that could not be read.
var ErrScan = errors.New("scan error")

// Entry is a file found by a scan, tagged with the root it came from.
type Entry struct {
	Path         string
	Announcement bool
}

// Result is the ordered outcome of one scan.
type Result struct {
	// Entries lists announcement-root files first, then media-root files.
	Entries []Entry
	// Announcements is the number of entries from the announcement root.
	Announcements int
	// Errors holds the unreadable directories, each wrapping ErrScan.
	Errors []error
}

// Scanner walks the announcement and media roots.
type Scanner struct {
	announcementDir string
	mediaDir        string
	retry           filesystem.RetryConfig
	skipHidden      bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithRetryConfig overrides the retry behaviour for directory reads.
func WithRetryConfig(config filesystem.RetryConfig) Option {
	return func(s *Scanner) { s.retry = config }
}

// WithoutHidden skips dot-prefixed files and directories. Skipped entries
// do not count towards Result.Announcements.
func WithoutHidden() Option {
	return func(s *Scanner) { s.skipHidden = true }
}

// New creates a Scanner for the two roots. Either root may be empty, in
// which case it contributes no entries.
func New(announcementDir, mediaDir string, opts ...Option) *Scanner {
	s := &Scanner{
		announcementDir: announcementDir,
		mediaDir:        mediaDir,
		retry:           filesystem.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan lists both roots from scratch. It only stops early if ctx is done,
// in which case the partial result is returned.
func (s *Scanner) Scan(ctx context.Context) Result {
	start := time.Now()
	defer func() {
		metrics.ScanRunsTotal.Inc()
		metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	var result Result

	announcements, errs := s.walkRoot(ctx, s.announcementDir, "announcement")
	result.Errors = append(result.Errors, errs...)
	for _, path := range announcements {
		result.Entries = append(result.Entries, Entry{Path: path, Announcement: true})
	}
	result.Announcements = len(announcements)

	media, errs := s.walkRoot(ctx, s.mediaDir, "media")
	result.Errors = append(result.Errors, errs...)
	for _, path := range media {
		result.Entries = append(result.Entries, Entry{Path: path})
	}

	metrics.ScanFilesFound.WithLabelValues("announcement").Set(float64(len(announcements)))
	metrics.ScanFilesFound.WithLabelValues("media").Set(float64(len(media)))

	logging.Debug("Scan complete in %v: %d announcement files, %d media files, %d errors",
		time.Since(start), len(announcements), len(media), len(result.Errors))

	return result
}

// walkRoot lists the regular files under root in top-down order.
func (s *Scanner) walkRoot(ctx context.Context, root, label string) ([]string, []error) {
	if root == "" {
		return nil, nil
	}

	var files []string
	var errs []error

	var walk func(dir string)
	walk = func(dir string) {
		if ctx.Err() != nil {
			return
		}

		entries, err := filesystem.ReadDirWithRetry(dir, s.retry)
		if err != nil {
			metrics.ScanErrorsTotal.WithLabelValues(label).Inc()
			logging.Warn("Cannot read %s directory %s: %v", label, dir, err)
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrScan, dir, err))
			return
		}

		var subdirs []string
		for _, entry := range entries {
			if s.skipHidden && strings.HasPrefix(entry.Name(), ".") {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			switch {
			case entry.IsDir():
				subdirs = append(subdirs, path)
			case entry.Type().IsRegular():
				files = append(files, path)
			case entry.Type()&fs.ModeSymlink != 0:
				info, err := filesystem.StatWithRetry(path, s.retry)
				if err != nil {
					logging.Debug("Skipping dangling symlink %s: %v", path, err)
					continue
				}
				if info.Mode().IsRegular() {
					files = append(files, path)
				}
			}
		}

		for _, sub := range subdirs {
			walk(sub)
		}
	}

	walk(root)
	return files, errs
}
