/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates a building with
	apartments, tenants, meters, cost items and prepayments so a statement
	can be generated immediately.

AVAILABLE SCENARIOS:

	single-house:   One building, two apartments, stable tenancy
	tenant-change:  Tenant moves out mid-year, successor moves in
	shared-flat:    Two co-tenants sharing one apartment and its meters

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create building and apartments
 3. Create tenants with move-in/move-out dates
 4. Register meters and readings
 5. Record cost items, water totals and prepayments

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "tenant-change"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: statement generation over the seeded data
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hauswart/settlement-engine/billing"
	"github.com/hauswart/settlement-engine/property"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "single-house",
		Name:        "Single House",
		Description: "Two apartments, full-year tenants, area and per-tenant cost items",
	},
	{
		ID:          "tenant-change",
		Name:        "Tenant Change",
		Description: "Tenant moves out in June, successor moves in July",
	},
	{
		ID:          "shared-flat",
		Name:        "Shared Flat",
		Description: "Two co-tenants in one apartment sharing two water meters",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and seeds the requested scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "single-house":
		err = h.loadSingleHouse(ctx)
	case "tenant-change":
		err = h.loadTenantChange(ctx)
	case "shared-flat":
		err = h.loadSharedFlat(ctx)
	default:
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// seedYear is the billing year all scenarios populate. Kept one year back
// so the statement scheduler sees a completed period.
func seedYear() int {
	return time.Now().Year() - 1
}

// loadSingleHouse seeds two apartments with full-year tenants.
func (h *Handler) loadSingleHouse(ctx context.Context) error {
	year := seedYear()

	building, err := h.Store.CreateBuilding(ctx, property.Building{
		Name:    "Lindenstraße 12",
		Address: "Lindenstraße 12, 50674 Köln",
	})
	if err != nil {
		return err
	}

	ground, err := h.Store.CreateApartment(ctx, property.Apartment{
		BuildingID: building.ID,
		Label:      "EG links",
		AreaSqm:    decimal.NewFromInt(72),
	})
	if err != nil {
		return err
	}
	upper, err := h.Store.CreateApartment(ctx, property.Apartment{
		BuildingID: building.ID,
		Label:      "OG rechts",
		AreaSqm:    decimal.NewFromInt(48),
	})
	if err != nil {
		return err
	}

	groundTenant, err := h.Store.CreateTenant(ctx, billing.Tenant{
		ApartmentID: ground.ID,
		Name:        "Familie Weber",
		MoveIn:      billing.NewDate(year-3, time.April, 1),
	})
	if err != nil {
		return err
	}
	upperTenant, err := h.Store.CreateTenant(ctx, billing.Tenant{
		ApartmentID: upper.ID,
		Name:        "Herr Schmitz",
		MoveIn:      billing.NewDate(year-1, time.September, 15),
	})
	if err != nil {
		return err
	}

	if err := h.seedMeterWithReadings(ctx, ground.ID, "WZ-1001", year, 84.5); err != nil {
		return err
	}
	if err := h.seedMeterWithReadings(ctx, upper.ID, "WZ-1002", year, 51.2); err != nil {
		return err
	}

	items := []billing.CostItem{
		{Name: "Grundsteuer", Total: decimal.NewFromInt(640), Policy: billing.PolicyByArea, PolicyLabel: billing.PolicyByArea.Label()},
		{Name: "Gebäudeversicherung", Total: decimal.NewFromInt(480), Policy: billing.PolicyByArea, PolicyLabel: billing.PolicyByArea.Label()},
		{Name: "Müllabfuhr", Total: decimal.NewFromInt(360), Policy: billing.PolicyByTenantCount, PolicyLabel: billing.PolicyByTenantCount.Label()},
		{Name: "Schornsteinfeger", Total: decimal.NewFromFloat(118.40), Policy: billing.PolicyByApartment, PolicyLabel: billing.PolicyByApartment.Label()},
	}
	for _, item := range items {
		if err := h.Store.AddCostItem(ctx, building.ID, year, item); err != nil {
			return err
		}
	}

	err = h.Store.SetWaterTotals(ctx, building.ID, year,
		decimal.NewFromFloat(812.30), decimal.NewFromFloat(142.7))
	if err != nil {
		return err
	}

	return h.seedMonthlyPrepayments(ctx, year, map[string]decimal.Decimal{
		groundTenant.ID: decimal.NewFromInt(120),
		upperTenant.ID:  decimal.NewFromInt(90),
	})
}

// loadTenantChange seeds an apartment whose tenant changes mid-year.
func (h *Handler) loadTenantChange(ctx context.Context) error {
	year := seedYear()

	building, err := h.Store.CreateBuilding(ctx, property.Building{
		Name:    "Am Stadtpark 3",
		Address: "Am Stadtpark 3, 04107 Leipzig",
	})
	if err != nil {
		return err
	}

	apartment, err := h.Store.CreateApartment(ctx, property.Apartment{
		BuildingID: building.ID,
		Label:      "1. OG",
		AreaSqm:    decimal.NewFromInt(65),
	})
	if err != nil {
		return err
	}

	// Frau Berger leaves end of June, Herr Yilmaz takes over in July.
	outgoing, err := h.Store.CreateTenant(ctx, billing.Tenant{
		ApartmentID: apartment.ID,
		Name:        "Frau Berger",
		MoveIn:      billing.NewDate(year-5, time.October, 1),
		MoveOut:     billing.NewDate(year, time.June, 30),
	})
	if err != nil {
		return err
	}
	incoming, err := h.Store.CreateTenant(ctx, billing.Tenant{
		ApartmentID: apartment.ID,
		Name:        "Herr Yilmaz",
		MoveIn:      billing.NewDate(year, time.July, 1),
	})
	if err != nil {
		return err
	}

	if err := h.seedMeterWithReadings(ctx, apartment.ID, "WZ-2001", year, 68.0); err != nil {
		return err
	}

	items := []billing.CostItem{
		{Name: "Grundsteuer", Total: decimal.NewFromInt(420), Policy: billing.PolicyByArea, PolicyLabel: billing.PolicyByArea.Label()},
		{Name: "Hausmeister", Total: decimal.NewFromInt(540), Policy: billing.PolicyByTenantCount, PolicyLabel: billing.PolicyByTenantCount.Label()},
	}
	for _, item := range items {
		if err := h.Store.AddCostItem(ctx, building.ID, year, item); err != nil {
			return err
		}
	}

	err = h.Store.SetWaterTotals(ctx, building.ID, year,
		decimal.NewFromFloat(402.50), decimal.NewFromFloat(68.0))
	if err != nil {
		return err
	}

	return h.seedMonthlyPrepayments(ctx, year, map[string]decimal.Decimal{
		outgoing.ID: decimal.NewFromInt(110),
		incoming.ID: decimal.NewFromInt(110),
	})
}

// loadSharedFlat seeds one apartment with two co-tenants and two meters.
func (h *Handler) loadSharedFlat(ctx context.Context) error {
	year := seedYear()

	building, err := h.Store.CreateBuilding(ctx, property.Building{
		Name:    "Hafenweg 8",
		Address: "Hafenweg 8, 20457 Hamburg",
	})
	if err != nil {
		return err
	}

	apartment, err := h.Store.CreateApartment(ctx, property.Apartment{
		BuildingID: building.ID,
		Label:      "WG Dachgeschoss",
		AreaSqm:    decimal.NewFromInt(88),
	})
	if err != nil {
		return err
	}

	first, err := h.Store.CreateTenant(ctx, billing.Tenant{
		ApartmentID: apartment.ID,
		Name:        "Lena Hartmann",
		MoveIn:      billing.NewDate(year-2, time.August, 1),
	})
	if err != nil {
		return err
	}
	// Second co-tenant joins in March, so factors shift during the year.
	second, err := h.Store.CreateTenant(ctx, billing.Tenant{
		ApartmentID: apartment.ID,
		Name:        "Jonas Petersen",
		MoveIn:      billing.NewDate(year, time.March, 1),
	})
	if err != nil {
		return err
	}

	// Kitchen and bathroom meters, summed per apartment.
	if err := h.seedMeterWithReadings(ctx, apartment.ID, "WZ-3001", year, 44.8); err != nil {
		return err
	}
	if err := h.seedMeterWithReadings(ctx, apartment.ID, "WZ-3002", year, 61.3); err != nil {
		return err
	}

	items := []billing.CostItem{
		{Name: "Grundsteuer", Total: decimal.NewFromInt(520), Policy: billing.PolicyByArea, PolicyLabel: billing.PolicyByArea.Label()},
		{Name: "Treppenhausreinigung", Total: decimal.NewFromInt(300), Policy: billing.PolicyByTenantCount, PolicyLabel: billing.PolicyByTenantCount.Label()},
	}
	for _, item := range items {
		if err := h.Store.AddCostItem(ctx, building.ID, year, item); err != nil {
			return err
		}
	}

	err = h.Store.SetWaterTotals(ctx, building.ID, year,
		decimal.NewFromFloat(598.90), decimal.NewFromFloat(106.1))
	if err != nil {
		return err
	}

	return h.seedMonthlyPrepayments(ctx, year, map[string]decimal.Decimal{
		first.ID:  decimal.NewFromInt(95),
		second.ID: decimal.NewFromInt(95),
	})
}

// =============================================================================
// SEEDING HELPERS
// =============================================================================

// seedMeterWithReadings creates a meter and splits the yearly consumption
// into two half-year readings dated inside the billing period.
func (h *Handler) seedMeterWithReadings(ctx context.Context, apartmentID, customID string, year int, total float64) error {
	meter, err := h.Store.CreateMeter(ctx, billing.WaterMeter{
		ApartmentID: apartmentID,
		CustomID:    customID,
	})
	if err != nil {
		return err
	}

	half := decimal.NewFromFloat(total).Div(decimal.NewFromInt(2))
	readings := []billing.MeterReading{
		{MeterID: meter.ID, ReadingDate: billing.NewDate(year, time.June, 30), Consumption: half},
		{MeterID: meter.ID, ReadingDate: billing.NewDate(year, time.December, 31), Consumption: decimal.NewFromFloat(total).Sub(half)},
	}
	for _, reading := range readings {
		if err := h.Store.AddReading(ctx, reading); err != nil {
			return err
		}
	}
	return nil
}

// seedMonthlyPrepayments books one prepayment per month for each tenant.
func (h *Handler) seedMonthlyPrepayments(ctx context.Context, year int, amounts map[string]decimal.Decimal) error {
	for tenantID, amount := range amounts {
		for month := time.January; month <= time.December; month++ {
			err := h.Store.AddPrepayment(ctx, property.Prepayment{
				TenantID: tenantID,
				PaidAt:   billing.NewDate(year, month, 1),
				Amount:   amount,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
