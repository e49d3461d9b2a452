package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Service snapshots the memory file on demand or at a fixed interval.
type Service struct {
	memoryPath string
	dir        string
	interval   time.Duration
	retention  RetentionPolicy
	verify     bool
}

// NewService creates a backup service with the given configuration.
func NewService(cfg Config) (*Service, error) {
	if cfg.MemoryPath == "" {
		return nil, fmt.Errorf("memory path is required")
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("backup directory is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Retention.Hourly == 0 {
		cfg.Retention.Hourly = 24
	}
	if cfg.Retention.Daily == 0 {
		cfg.Retention.Daily = 7
	}
	if cfg.Retention.Weekly == 0 {
		cfg.Retention.Weekly = 4
	}
	if cfg.Retention.Monthly == 0 {
		cfg.Retention.Monthly = 12
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	return &Service{
		memoryPath: cfg.MemoryPath,
		dir:        cfg.Dir,
		interval:   cfg.Interval,
		retention:  cfg.Retention,
		verify:     cfg.Verify,
	}, nil
}

// Run snapshots the memory file at the configured interval until ctx is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("backup: service started, interval=%v dir=%s", s.interval, s.dir)

	for {
		select {
		case <-ctx.Done():
			log.Println("backup: service stopping")
			return ctx.Err()

		case <-ticker.C:
			result, err := s.SnapshotNow()
			if err != nil {
				log.Printf("backup: scheduled snapshot failed: %v", err)
				continue
			}
			log.Printf("backup: snapshot %s (%d bytes, verified=%v)",
				result.Path, result.Size, result.Verified)
		}
	}
}

// SnapshotNow copies the memory file into a timestamped snapshot, optionally
// verifies it parses as memory state, and applies the retention policy.
func (s *Service) SnapshotNow() (*Result, error) {
	start := time.Now()

	if _, err := os.Stat(s.memoryPath); err != nil {
		return nil, fmt.Errorf("memory file not found: %w", err)
	}

	// Fractional seconds keep rapid successive snapshots distinct.
	name := fmt.Sprintf("goliath-memory-%s.json", time.Now().Format("20060102-150405.000000"))
	path := filepath.Join(s.dir, name)

	if err := copyFile(s.memoryPath, path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	result := &Result{
		Path:     path,
		Duration: time.Since(start),
		Size:     info.Size(),
	}

	if s.verify {
		if err := verifySnapshot(path); err != nil {
			return result, fmt.Errorf("snapshot verification failed: %w", err)
		}
		result.Verified = true
	}

	if err := applyRetention(s.dir, s.retention); err != nil {
		// A retention failure should not fail the snapshot itself.
		log.Printf("backup: failed to apply retention policy: %v", err)
	}

	return result, nil
}

// List returns all snapshots in the backup directory, newest first.
func (s *Service) List() ([]Info, error) {
	return listSnapshots(s.dir)
}

// Restore replaces the memory file with the given snapshot. The current
// memory file, when present, is kept as a .pre-restore copy until the
// restore succeeds.
func (s *Service) Restore(snapshotPath string) error {
	if _, err := os.Stat(snapshotPath); err != nil {
		return fmt.Errorf("snapshot not found: %w", err)
	}
	if err := verifySnapshot(snapshotPath); err != nil {
		return fmt.Errorf("refusing to restore unparseable snapshot: %w", err)
	}

	preRestore := s.memoryPath + ".pre-restore"
	hadMemory := false
	if _, err := os.Stat(s.memoryPath); err == nil {
		hadMemory = true
		if err := copyFile(s.memoryPath, preRestore); err != nil {
			return fmt.Errorf("failed to create pre-restore copy: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.memoryPath), 0o755); err != nil {
		return fmt.Errorf("failed to create memory directory: %w", err)
	}
	if err := copyFile(snapshotPath, s.memoryPath); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	if hadMemory {
		_ = os.Remove(preRestore)
	}
	log.Printf("backup: memory restored from %s", snapshotPath)
	return nil
}

// verifySnapshot checks that a snapshot parses as a memory state blob with
// the two expected top-level fields.
func verifySnapshot(path string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	var state struct {
		History []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"history"`
		Facts map[string]string `json:"facts"`
	}
	if err := json.Unmarshal(blob, &state); err != nil {
		return fmt.Errorf("snapshot is not valid memory state: %w", err)
	}
	return nil
}

// copyFile copies src to dst, replacing dst if it exists.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	return out.Close()
}
