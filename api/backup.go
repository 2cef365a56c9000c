/*
backup.go - Periodic state-export scheduler

PURPOSE:
  Writes timestamped JSON exports of the whole ledger on an interval, and
  on demand via the /api/backup endpoint. The export is plain indented
  JSON, so a backup file can be inspected or restored by hand.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Ticker + stop channel + WaitGroup for clean shutdown

USAGE:
  backups := NewBackupScheduler(svc, "./backups")
  backups.Start()
  // ... later
  backups.Stop()
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/studyspace/fee-engine/ledger"
)

// BackupScheduler periodically exports the full state to disk.
type BackupScheduler struct {
	Service  *ledger.Service
	Dir      string
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewBackupScheduler creates a scheduler writing into dir.
func NewBackupScheduler(svc *ledger.Service, dir string) *BackupScheduler {
	return &BackupScheduler{
		Service:  svc,
		Dir:      dir,
		Interval: 6 * time.Hour,
		Enabled:  true,
		stop:     make(chan bool),
	}
}

// Start begins the scheduler.
func (bs *BackupScheduler) Start() {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if !bs.Enabled {
		log.Println("[Backup] Disabled, not starting")
		return
	}

	bs.ticker = time.NewTicker(bs.Interval)
	bs.wg.Add(1)

	go bs.run()

	log.Printf("[Backup] Started with interval: %v, dir: %s", bs.Interval, bs.Dir)
}

// Stop stops the scheduler.
func (bs *BackupScheduler) Stop() {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.ticker != nil {
		bs.ticker.Stop()
		close(bs.stop)
		bs.wg.Wait()
		log.Println("[Backup] Stopped")
	}
}

func (bs *BackupScheduler) run() {
	defer bs.wg.Done()

	for {
		select {
		case <-bs.ticker.C:
			if _, err := bs.RunNow(context.Background()); err != nil {
				log.Printf("[Backup] Error: %v", err)
			}
		case <-bs.stop:
			return
		}
	}
}

// RunNow writes one export immediately and returns its path.
func (bs *BackupScheduler) RunNow(ctx context.Context) (string, error) {
	state, err := bs.Service.ExportState(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to export state: %w", err)
	}

	if err := os.MkdirAll(bs.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	name := fmt.Sprintf("backup-%s.json", time.Now().Format("20060102-150405"))
	path := filepath.Join(bs.Dir, name)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	log.Printf("[Backup] Wrote %s (%d students)", path, len(state.Students))
	return path, nil
}
