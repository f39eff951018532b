/*
scheduler.go - Automated draft statement scheduler

PURPOSE:
  Periodically checks for buildings whose billing year has ended without
  a statement and generates a draft for them. Landlords review and
  finalize drafts manually.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Considers only the most recent completed calendar year
  - Skips buildings that already have a statement for that year
  - Drafts that fail pre-checks are logged and retried on the next tick

CONFIGURATION:
  - CheckInterval: How often to check (default: 6 hours)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewStatementScheduler(store, service)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GenerateStatement endpoint (manual generation)
  - property/statement.go: StatementService
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hauswart/settlement-engine/billing"
	"github.com/hauswart/settlement-engine/property"
	"github.com/hauswart/settlement-engine/store/sqlite"
)

// StatementScheduler generates draft statements for completed billing years.
type StatementScheduler struct {
	Store         *sqlite.Store
	Service       *property.StatementService
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewStatementScheduler creates a new scheduler.
func NewStatementScheduler(store *sqlite.Store, service *property.StatementService) *StatementScheduler {
	return &StatementScheduler{
		Store:         store,
		Service:       service,
		CheckInterval: 6 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ss *StatementScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ss.ticker = time.NewTicker(ss.CheckInterval)
	ss.wg.Add(1)

	go ss.run()

	log.Printf("[Scheduler] Started with check interval: %v", ss.CheckInterval)
}

// Stop stops the scheduler.
func (ss *StatementScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker != nil {
		ss.ticker.Stop()
		close(ss.stop)
		ss.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ss *StatementScheduler) run() {
	defer ss.wg.Done()

	// Run immediately on start
	ss.checkAndGenerate()

	for {
		select {
		case <-ss.ticker.C:
			ss.checkAndGenerate()
		case <-ss.stop:
			return
		}
	}
}

func (ss *StatementScheduler) checkAndGenerate() {
	ctx := context.Background()
	year := time.Now().Year() - 1

	buildings, err := ss.Store.ListBuildings(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing buildings: %v", err)
		return
	}

	generatedCount := 0
	skippedCount := 0

	for _, building := range buildings {
		done, err := ss.Store.HasStatement(ctx, building.ID, year)
		if err != nil {
			log.Printf("[Scheduler] Error checking statements for %s: %v", building.ID, err)
			continue
		}
		if done {
			skippedCount++
			continue
		}

		statement, err := ss.Service.Generate(ctx, building.ID, billing.CalendarYear(year), true)
		if err != nil {
			// Incomplete data is expected early in the year; retried next tick.
			log.Printf("[Scheduler] Draft for %s/%d not generated: %v", building.ID, year, err)
			continue
		}

		generatedCount++
		log.Printf("[Scheduler] Draft statement %s generated for %s/%d (%d tenants)",
			statement.ID, building.ID, year, len(statement.Results))
	}

	if generatedCount > 0 || skippedCount > 0 {
		log.Printf("[Scheduler] Completed: %d drafts generated, %d skipped (already done)",
			generatedCount, skippedCount)
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (ss *StatementScheduler) RunNow() {
	ss.checkAndGenerate()
}
