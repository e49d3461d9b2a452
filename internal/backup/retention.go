package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const snapshotPrefix = "goliath-memory-"

// listSnapshots lists all snapshot files in dir, newest first.
func listSnapshots(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var snapshots []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasPrefix(entry.Name(), snapshotPrefix) || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // skip files we can't stat
		}

		snapshots = append(snapshots, Info{
			Path:      filepath.Join(dir, entry.Name()),
			Timestamp: info.ModTime(),
			Size:      info.Size(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})
	return snapshots, nil
}

// applyRetention removes old snapshots according to the retention policy.
// Snapshots are bucketed by age tier and each tier keeps only its configured
// count, newest first.
func applyRetention(dir string, policy RetentionPolicy) error {
	snapshots, err := listSnapshots(dir)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return nil
	}

	now := time.Now()
	var toDelete []string

	var hourly, daily, weekly, monthly []Info
	for _, snap := range snapshots {
		age := now.Sub(snap.Timestamp)
		switch {
		case age < 24*time.Hour:
			hourly = append(hourly, snap)
		case age < 7*24*time.Hour:
			daily = append(daily, snap)
		case age < 30*24*time.Hour:
			weekly = append(weekly, snap)
		case age < 365*24*time.Hour:
			monthly = append(monthly, snap)
		default:
			// Snapshots older than a year are always removed.
			toDelete = append(toDelete, snap.Path)
		}
	}

	for _, tier := range []struct {
		snaps []Info
		keep  int
	}{
		{hourly, policy.Hourly},
		{daily, policy.Daily},
		{weekly, policy.Weekly},
		{monthly, policy.Monthly},
	} {
		if len(tier.snaps) > tier.keep {
			for _, snap := range tier.snaps[tier.keep:] {
				toDelete = append(toDelete, snap.Path)
			}
		}
	}

	var lastErr error
	for _, path := range toDelete {
		if err := os.Remove(path); err != nil {
			lastErr = err // keep deleting the rest
		}
	}
	if lastErr != nil {
		return fmt.Errorf("failed to delete some snapshots: %w", lastErr)
	}
	return nil
}
