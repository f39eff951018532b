/*
scheduler_test.go - Tests for the draft statement scheduler

Tests that the scheduler generates a draft for the completed billing
year and does not generate a second one once a statement exists.
*/
package api

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestScheduler_GeneratesDraftForCompletedYear(t *testing.T) {
	// GIVEN: a seeded building without a statement for last year
	h, router := newTestServer(t)

	rec := doJSON(t, router, "POST", "/api/scenarios/load", LoadScenarioRequest{
		ScenarioID: "tenant-change",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Scenario load failed: %d %s", rec.Code, rec.Body.String())
	}

	ctx := context.Background()
	buildings, err := h.Store.ListBuildings(ctx)
	if err != nil || len(buildings) != 1 {
		t.Fatalf("Expected 1 building, got %d (err %v)", len(buildings), err)
	}
	year := time.Now().Year() - 1

	scheduler := NewStatementScheduler(h.Store, h.Service)

	// WHEN: the scheduler runs
	scheduler.RunNow()

	// THEN: a draft statement exists for the completed year
	done, err := h.Store.HasStatement(ctx, buildings[0].ID, year)
	if err != nil {
		t.Fatalf("HasStatement failed: %v", err)
	}
	if !done {
		t.Error("Expected a draft statement after the scheduler run")
	}

	// AND: a second run leaves it alone
	scheduler.RunNow()
	statements, err := h.Store.ListStatements(ctx, buildings[0].ID)
	if err != nil {
		t.Fatalf("ListStatements failed: %v", err)
	}
	if len(statements) != 1 {
		t.Errorf("Expected exactly 1 statement after rerun, got %d", len(statements))
	}
}

func TestScheduler_DisabledDoesNotStart(t *testing.T) {
	h, _ := newTestServer(t)

	scheduler := NewStatementScheduler(h.Store, h.Service)
	scheduler.Enabled = false
	scheduler.Start()

	// Stop must be safe even when Start declined to run.
	scheduler.Stop()
}
