/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the settlement engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and environment
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Start the draft statement scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: settlement.db)
           Use ":memory:" for in-memory database

ENVIRONMENT (prefix SETTLE_, overrides flags when set):
  SETTLE_PORT                 HTTP server port
  SETTLE_DB_PATH              SQLite database path
  SETTLE_MONTHLY_PREPAYMENT   Assumed monthly prepayment when none recorded
  SETTLE_SCHEDULER_ENABLED    Draft statement scheduler on/off

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/settlement.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Draft statement scheduler
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/hauswart/settlement-engine/api"
	"github.com/hauswart/settlement-engine/store/sqlite"
)

// Config carries the environment overrides, prefix SETTLE_.
type Config struct {
	Port              int     `envconfig:"PORT"`
	DBPath            string  `envconfig:"DB_PATH"`
	MonthlyPrepayment float64 `envconfig:"MONTHLY_PREPAYMENT"`
	SchedulerEnabled  bool    `envconfig:"SCHEDULER_ENABLED" default:"true"`
}

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "settlement.db", "SQLite database path")
	flag.Parse()

	// Environment overrides
	var cfg Config
	if err := envconfig.Process("settle", &cfg); err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}
	if cfg.Port != 0 {
		*port = cfg.Port
	}
	if cfg.DBPath != "" {
		*dbPath = cfg.DBPath
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store)
	if cfg.MonthlyPrepayment > 0 {
		handler.Service.Config.AssumedMonthlyPrepayment = decimal.NewFromFloat(cfg.MonthlyPrepayment)
	}

	// Start the draft statement scheduler
	scheduler := api.NewStatementScheduler(store, handler.Service)
	scheduler.Enabled = cfg.SchedulerEnabled
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
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
