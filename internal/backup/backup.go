// Package backup keeps timestamped copies of the graph snapshot file and
// prunes them with a tiered retention policy.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// stampLayout names copies so they sort chronologically.
const stampLayout = "20060102T150405.000000000"

// RetentionPolicy defines how many copies to keep at each age tier:
// hourly under 24h, daily under 7 days, weekly under 30 days and monthly
// under a year. Older copies are always removed.
type RetentionPolicy struct {
	Hourly  int
	Daily   int
	Weekly  int
	Monthly int
}

// DefaultRetention keeps a day of hourly copies and a year of monthly ones.
func DefaultRetention() RetentionPolicy {
	return RetentionPolicy{Hourly: 24, Daily: 7, Weekly: 4, Monthly: 12}
}

// BackupInfo describes one stored copy.
type BackupInfo struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

// Snapshotter copies a snapshot file into Dir before it is overwritten.
type Snapshotter struct {
	dir       string
	retention RetentionPolicy
	now       func() time.Time
}

// New returns a Snapshotter writing into dir.
func New(dir string, retention RetentionPolicy) *Snapshotter {
	return &Snapshotter{dir: dir, retention: retention, now: time.Now}
}

// Dir is the backup directory.
func (s *Snapshotter) Dir() string {
	return s.dir
}

// Capture copies path into the backup directory and applies retention. A
// missing source is not an error and yields an empty path.
func (s *Snapshotter) Capture(path string) (string, error) {
	src, err := os.Open(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open snapshot: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := fmt.Sprintf("%s-%s%s", strings.TrimSuffix(base, ext), s.now().UTC().Format(stampLayout), ext)
	dest := filepath.Join(s.dir, name)

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("copy snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("close backup: %w", err)
	}

	if err := applyRetention(s.dir, s.retention, s.now()); err != nil {
		return dest, err
	}
	return dest, nil
}

// List returns stored copies, newest first. A missing directory yields no
// copies.
func (s *Snapshotter) List() ([]BackupInfo, error) {
	backups, err := listBackups(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return backups, err
}

// Usage totals the bytes held by stored copies.
func (s *Snapshotter) Usage() (int64, error) {
	backups, err := s.List()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, b := range backups {
		total += b.Size
	}
	return total, nil
}
