/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the study hall management server. Handles
  configuration, dependency injection, seeding, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Seed defaults (owner credential, halls, shifts) on first run
  4. Create service, auth, backup scheduler, router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port             HTTP server port (default: 8080)
  -db               SQLite database path (default: studyspace.db)
                    Use ":memory:" for an in-memory database
  -backup-dir       Where JSON state exports are written (default: ./backups)
  -backup-interval  How often to export (default: 6h; 0 disables)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the backup scheduler
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/studyspace.db"

  # Run with hourly backups
  ./server -backup-interval=1h

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studyspace/fee-engine/api"
	"github.com/studyspace/fee-engine/ledger"
	"github.com/studyspace/fee-engine/store/sqlite"
)

// defaultHalls is the grid seeded on first run.
var defaultHalls = map[string]int{"A": 30, "B": 16, "C": 60}

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "studyspace.db", "SQLite database path")
	backupDir := flag.String("backup-dir", "./backups", "Directory for JSON state exports")
	backupInterval := flag.Duration("backup-interval", 6*time.Hour, "State export interval (0 disables)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	svc := ledger.NewService(store)

	if err := seedDefaults(context.Background(), svc); err != nil {
		log.Fatalf("Failed to seed defaults: %v", err)
	}

	auth, err := api.NewAuthenticator()
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}

	// Backup scheduler
	backups := api.NewBackupScheduler(svc, *backupDir)
	if *backupInterval <= 0 {
		backups.Enabled = false
	} else {
		backups.Interval = *backupInterval
	}
	backups.Start()
	defer backups.Stop()

	// Handler and router
	handler := api.NewHandler(svc, auth)
	handler.Backups = backups
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// seedDefaults installs the owner credential, hall grid, and shift table
// on a fresh database. Existing installations are left untouched.
func seedDefaults(ctx context.Context, svc *ledger.Service) error {
	if err := svc.EnsureOwner(ctx, "owner", "admin"); err != nil {
		return err
	}

	halls, err := svc.HallsConfig(ctx)
	if err != nil {
		return err
	}
	if halls == nil {
		if err := svc.ConfigureHalls(ctx, defaultHalls); err != nil {
			return err
		}
		raw, _ := json.Marshal(defaultHalls)
		log.Printf("[Seed] Installed default halls: %s", raw)
	}

	shifts, err := svc.Store.ListShifts(ctx)
	if err != nil {
		return err
	}
	if len(shifts) == 0 {
		if err := svc.Store.SaveShifts(ctx, ledger.DefaultShifts); err != nil {
			return err
		}
		log.Printf("[Seed] Installed %d default shifts", len(ledger.DefaultShifts))
	}
	return nil
}
