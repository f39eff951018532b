/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Period validation endpoint
- Scenario loading and end-to-end statement generation
- Pre-check reporting
- Finance summary aggregation
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hauswart/settlement-engine/property"
	"github.com/hauswart/settlement-engine/store/sqlite"
	"github.com/hauswart/settlement-engine/summary"
)

// newTestServer builds a handler over an in-memory database.
func newTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()

	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store)
	return h, NewRouter(h)
}

// doJSON performs a request with a JSON body and returns the recorder.
func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestValidatePeriod_EndBeforeStart(t *testing.T) {
	// GIVEN: a running API
	_, router := newTestServer(t)

	// WHEN: validating a period whose end precedes its start
	rec := doJSON(t, router, "POST", "/api/validate/period", ValidatePeriodRequest{
		Start: "2024-12-31",
		End:   "2024-01-01",
	})

	// THEN: the response flags the range as invalid
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var dto ValidationDTO
	decodeBody(t, rec, &dto)
	if dto.Valid {
		t.Error("Expected period to be invalid")
	}
	if dto.Errors["range"] == "" {
		t.Errorf("Expected a range error, got %v", dto.Errors)
	}
}

func TestValidatePeriod_GermanFormatAccepted(t *testing.T) {
	_, router := newTestServer(t)

	rec := doJSON(t, router, "POST", "/api/validate/period", ValidatePeriodRequest{
		Start: "1.1.2024",
		End:   "31.12.2024",
	})

	var dto ValidationDTO
	decodeBody(t, rec, &dto)
	if !dto.Valid {
		t.Errorf("Expected German-format period to validate, got errors %v", dto.Errors)
	}
}

func TestScenarioAndStatement_EndToEnd(t *testing.T) {
	// GIVEN: the single-house scenario is loaded
	_, router := newTestServer(t)

	rec := doJSON(t, router, "POST", "/api/scenarios/load", LoadScenarioRequest{
		ScenarioID: "single-house",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Scenario load failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "GET", "/api/buildings", nil)
	var buildings []property.Building
	decodeBody(t, rec, &buildings)
	if len(buildings) != 1 {
		t.Fatalf("Expected 1 building, got %d", len(buildings))
	}
	buildingID := buildings[0].ID

	// WHEN: generating the statement for the seeded year
	year := time.Now().Year() - 1
	rec = doJSON(t, router, "POST", "/api/buildings/"+buildingID+"/statements",
		GenerateStatementRequest{Year: year, Draft: true})

	// THEN: one result per tenant, with costs and prepayments settled
	if rec.Code != http.StatusCreated {
		t.Fatalf("Statement generation failed: %d %s", rec.Code, rec.Body.String())
	}
	var statement StatementDTO
	decodeBody(t, rec, &statement)
	if len(statement.Results) != 2 {
		t.Fatalf("Expected 2 tenant results, got %d", len(statement.Results))
	}
	if !statement.Draft {
		t.Error("Expected a draft statement")
	}
	for _, result := range statement.Results {
		if result.TotalCosts.IsZero() {
			t.Errorf("Tenant %s settled with zero costs", result.TenantID)
		}
		if result.PrepaymentsPaid.IsZero() {
			t.Errorf("Tenant %s settled with zero prepayments", result.TenantID)
		}
	}

	// AND: the statement can be fetched again by id
	rec = doJSON(t, router, "GET", "/api/statements/"+statement.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Statement fetch failed: %d", rec.Code)
	}
}

func TestGenerateStatement_UnknownBuilding(t *testing.T) {
	_, router := newTestServer(t)

	rec := doJSON(t, router, "POST", "/api/buildings/nope/statements",
		GenerateStatementRequest{Year: 2024})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for unknown building, got %d", rec.Code)
	}
}

func TestPrechecks_ReportUnreadMeter(t *testing.T) {
	// GIVEN: a building with a meter that has no readings
	h, router := newTestServer(t)
	ctx := context.Background()

	building, err := h.Store.CreateBuilding(ctx, property.Building{Name: "Testhaus"})
	if err != nil {
		t.Fatalf("Failed to create building: %v", err)
	}
	apartment, err := h.Store.CreateApartment(ctx, property.Apartment{
		BuildingID: building.ID,
		Label:      "EG",
		AreaSqm:    decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("Failed to create apartment: %v", err)
	}

	rec := doJSON(t, router, "POST", "/api/meters", CreateMeterRequest{
		ApartmentID: apartment.ID,
		CustomID:    "WZ-7777",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Meter creation failed: %d", rec.Code)
	}

	// WHEN: running the pre-checks
	rec = doJSON(t, router, "GET",
		fmt.Sprintf("/api/buildings/%s/prechecks?year=2024", building.ID), nil)

	// THEN: the unread meter shows up as a warning
	if rec.Code != http.StatusOK {
		t.Fatalf("Prechecks failed: %d %s", rec.Code, rec.Body.String())
	}
	var dto ValidationDTO
	decodeBody(t, rec, &dto)
	found := false
	for _, warning := range dto.Warnings {
		if strings.Contains(warning, "WZ-7777") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a warning naming meter WZ-7777, got %v", dto.Warnings)
	}
}

func TestFinanceSummary_TwelveMonths(t *testing.T) {
	// GIVEN: a building with one income and one expense entry
	h, router := newTestServer(t)
	ctx := context.Background()

	building, err := h.Store.CreateBuilding(ctx, property.Building{Name: "Testhaus"})
	if err != nil {
		t.Fatalf("Failed to create building: %v", err)
	}

	rec := doJSON(t, router, "POST", "/api/buildings/"+building.ID+"/finance",
		AddFinanceEntryRequest{
			BookedAt: "2024-03-10",
			Category: "Miete",
			Kind:     "income",
			Amount:   decimal.NewFromInt(950),
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Finance entry failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, "POST", "/api/buildings/"+building.ID+"/finance",
		AddFinanceEntryRequest{
			BookedAt: "2024-03-22",
			Category: "Reparatur",
			Kind:     "expense",
			Amount:   decimal.NewFromInt(240),
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Finance entry failed: %d %s", rec.Code, rec.Body.String())
	}

	// WHEN: requesting the yearly summary
	rec = doJSON(t, router, "GET",
		"/api/buildings/"+building.ID+"/finance/summary?year=2024", nil)

	// THEN: twelve months come back, March carrying both entries
	var months []summary.MonthTotals
	decodeBody(t, rec, &months)
	if len(months) != 12 {
		t.Fatalf("Expected 12 months, got %d", len(months))
	}
	march := months[2]
	if !march.Income.Equal(decimal.NewFromInt(950)) {
		t.Errorf("Expected March income 950, got %s", march.Income)
	}
	if !march.Expenses.Equal(decimal.NewFromInt(240)) {
		t.Errorf("Expected March expenses 240, got %s", march.Expenses)
	}
}

func TestCreateTenant_RejectsBadDate(t *testing.T) {
	h, router := newTestServer(t)
	ctx := context.Background()

	building, err := h.Store.CreateBuilding(ctx, property.Building{Name: "Testhaus"})
	if err != nil {
		t.Fatalf("Failed to create building: %v", err)
	}
	apartment, err := h.Store.CreateApartment(ctx, property.Apartment{
		BuildingID: building.ID,
		AreaSqm:    decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("Failed to create apartment: %v", err)
	}

	rec := doJSON(t, router, "POST", "/api/tenants", CreateTenantRequest{
		ApartmentID: apartment.ID,
		Name:        "Frau Test",
		MoveIn:      "not-a-date",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid move_in, got %d", rec.Code)
	}
}
