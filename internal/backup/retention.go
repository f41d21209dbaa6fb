package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// listBackups lists the .json copies in backupDir, newest first.
func listBackups(backupDir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return nil, err
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(backupDir, entry.Name()),
			Timestamp: info.ModTime(),
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// applyRetention removes copies beyond the count allowed in their age tier.
func applyRetention(backupDir string, policy RetentionPolicy, now time.Time) error {
	backups, err := listBackups(backupDir)
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}

	var hourly, daily, weekly, monthly []BackupInfo
	var toDelete []string
	for _, b := range backups {
		age := now.Sub(b.Timestamp)
		switch {
		case age < 24*time.Hour:
			hourly = append(hourly, b)
		case age < 7*24*time.Hour:
			daily = append(daily, b)
		case age < 30*24*time.Hour:
			weekly = append(weekly, b)
		case age < 365*24*time.Hour:
			monthly = append(monthly, b)
		default:
			toDelete = append(toDelete, b.Path)
		}
	}

	toDelete = append(toDelete, excess(hourly, policy.Hourly)...)
	toDelete = append(toDelete, excess(daily, policy.Daily)...)
	toDelete = append(toDelete, excess(weekly, policy.Weekly)...)
	toDelete = append(toDelete, excess(monthly, policy.Monthly)...)

	var lastErr error
	for _, path := range toDelete {
		if err := os.Remove(path); err != nil {
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("delete old backups: %w", lastErr)
	}
	return nil
}

// excess returns the paths past the first keep entries of a newest-first tier.
func excess(tier []BackupInfo, keep int) []string {
	if keep < 0 {
		keep = 0
	}
	if len(tier) <= keep {
		return nil
	}
	out := make([]string, 0, len(tier)-keep)
	for _, b := range tier[keep:] {
		out = append(out, b.Path)
	}
	return out
}
