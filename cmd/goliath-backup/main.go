// Command goliath-backup snapshots the Goliath memory file.
//
// By default it performs a single snapshot and exits. With -daemon it keeps
// snapshotting at the configured interval; -list and -restore inspect and
// roll back snapshots.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zdevelops1/goliath/internal/backup"
	"github.com/zdevelops1/goliath/internal/config"
)

var (
	memoryPath = flag.String("memory", "", "Memory file path (overrides config)")
	backupDir  = flag.String("backup-dir", "", "Backup directory (overrides config)")
	interval   = flag.Duration("interval", 0, "Snapshot interval for -daemon (overrides config)")
	verify     = flag.Bool("verify", true, "Verify snapshots after creation")
	daemon     = flag.Bool("daemon", false, "Keep snapshotting at the configured interval")
	listCmd    = flag.Bool("list", false, "List all snapshots and exit")
	restore    = flag.String("restore", "", "Restore memory from snapshot file and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	memory := cfg.Memory.Path
	if *memoryPath != "" {
		memory = *memoryPath
	}

	dir := cfg.Backup.Path
	if *backupDir != "" {
		dir = *backupDir
	}

	snapInterval := 24 * time.Hour
	if d, err := time.ParseDuration(cfg.Backup.Interval); err == nil {
		snapInterval = d
	}
	if *interval > 0 {
		snapInterval = *interval
	}

	service, err := backup.NewService(backup.Config{
		MemoryPath: memory,
		Dir:        dir,
		Interval:   snapInterval,
		Retention: backup.RetentionPolicy{
			Hourly:  cfg.Backup.RetentionHourly,
			Daily:   cfg.Backup.RetentionDaily,
			Weekly:  cfg.Backup.RetentionWeekly,
			Monthly: cfg.Backup.RetentionMonthly,
		},
		Verify: *verify && cfg.Backup.Verify,
	})
	if err != nil {
		log.Fatalf("Failed to create backup service: %v", err)
	}

	switch {
	case *restore != "":
		if err := service.Restore(*restore); err != nil {
			log.Fatalf("Restore failed: %v", err)
		}
		fmt.Printf("Memory restored from %s\n", *restore)

	case *listCmd:
		snapshots, err := service.List()
		if err != nil {
			log.Fatalf("Failed to list snapshots: %v", err)
		}
		if len(snapshots) == 0 {
			fmt.Println("No snapshots found.")
			return
		}
		for _, snap := range snapshots {
			fmt.Printf("%s  %8d bytes  %s\n",
				snap.Timestamp.Format(time.RFC3339), snap.Size, snap.Path)
		}

	case *daemon:
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		if err := service.Run(ctx); err != nil && err != context.Canceled {
			log.Fatalf("Backup service failed: %v", err)
		}

	default:
		result, err := service.SnapshotNow()
		if err != nil {
			log.Fatalf("Snapshot failed: %v", err)
		}
		fmt.Printf("Snapshot written to %s (%d bytes, verified=%v)\n",
			result.Path, result.Size, result.Verified)
	}
}
