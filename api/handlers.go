/*
handlers.go - HTTP API handlers for the settlement engine

PURPOSE:
  Exposes the settlement engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Buildings:
    GET    /api/buildings                    List buildings
    POST   /api/buildings                    Create building
    GET    /api/buildings/{id}               Get building
    GET    /api/buildings/{id}/tenants       List tenants
    GET    /api/buildings/{id}/prechecks     Pre-statement checks

  Cost data:
    POST   /api/buildings/{id}/cost-items    Add cost item
    PUT    /api/buildings/{id}/water-totals  Set invoice water totals
    POST   /api/tenants/{id}/prepayments     Record prepayment

  Statements:
    POST   /api/buildings/{id}/statements          Generate and persist
    POST   /api/buildings/{id}/statements/preview  Dry run, no persist
    GET    /api/statements/{id}                    Fetch by id

  Finance:
    GET    /api/buildings/{id}/finance/summary  Monthly income/expense totals

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Service: Statement orchestration
  - validate: request body validation

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 422: Statement input rejected by pre-checks
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hauswart/settlement-engine/billing"
	"github.com/hauswart/settlement-engine/property"
	"github.com/hauswart/settlement-engine/store/sqlite"
	"github.com/hauswart/settlement-engine/summary"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Service *property.StatementService

	validate *validator.Validate

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:    store,
		Service:  property.NewStatementService(store),
		validate: validator.New(),
	}
}

// decode parses and validates a JSON request body.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}

// =============================================================================
// BUILDING HANDLERS
// =============================================================================

// ListBuildings returns all buildings.
func (h *Handler) ListBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := h.Store.ListBuildings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list buildings", err)
		return
	}
	writeJSON(w, http.StatusOK, buildings)
}

// CreateBuilding creates a building.
func (h *Handler) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	var req CreateBuildingRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	b, err := h.Store.CreateBuilding(r.Context(), property.Building{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create building", err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// GetBuilding returns one building.
func (h *Handler) GetBuilding(w http.ResponseWriter, r *http.Request) {
	b, err := h.Store.GetBuilding(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Building not found", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// =============================================================================
// APARTMENT / TENANT HANDLERS
// =============================================================================

func (h *Handler) CreateApartment(w http.ResponseWriter, r *http.Request) {
	var req CreateApartmentRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	a, err := h.Store.CreateApartment(r.Context(), property.Apartment{
		BuildingID: req.BuildingID,
		Label:      req.Label,
		AreaSqm:    req.AreaSqm,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create apartment", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) ListApartments(w http.ResponseWriter, r *http.Request) {
	apartments, err := h.Store.ListApartments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list apartments", err)
		return
	}
	writeJSON(w, http.StatusOK, apartments)
}

// CreateTenant creates a tenant. Move-in and move-out dates accept both
// ISO (2024-01-01) and German (1.1.2024) formats; empty means unset.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tenant := billing.Tenant{
		ApartmentID: req.ApartmentID,
		Name:        req.Name,
	}
	if req.MoveIn != "" {
		d, err := billing.ParseDate(req.MoveIn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid move_in date", err)
			return
		}
		tenant.MoveIn = d
	}
	if req.MoveOut != "" {
		d, err := billing.ParseDate(req.MoveOut)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid move_out date", err)
			return
		}
		tenant.MoveOut = d
	}

	created, err := h.Store.CreateTenant(r.Context(), tenant)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create tenant", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTenantDTO(created))
}

func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.Store.ListTenants(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tenants", err)
		return
	}

	dtos := make([]TenantDTO, len(tenants))
	for i, t := range tenants {
		dtos[i] = toTenantDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddPrepayment records an advance payment for the tenant in the URL.
func (h *Handler) AddPrepayment(w http.ResponseWriter, r *http.Request) {
	var req AddPrepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.TenantID = chi.URLParam(r, "id")

	paidAt, err := billing.ParseDate(req.PaidAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid paid_at date", err)
		return
	}

	err = h.Store.AddPrepayment(r.Context(), property.Prepayment{
		TenantID: req.TenantID,
		PaidAt:   paidAt,
		Amount:   req.Amount,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add prepayment", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// =============================================================================
// METER HANDLERS
// =============================================================================

func (h *Handler) CreateMeter(w http.ResponseWriter, r *http.Request) {
	var req CreateMeterRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	m, err := h.Store.CreateMeter(r.Context(), billing.WaterMeter{
		ApartmentID: req.ApartmentID,
		CustomID:    req.CustomID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create meter", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) ListMeters(w http.ResponseWriter, r *http.Request) {
	meters, err := h.Store.ListMeters(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list meters", err)
		return
	}
	writeJSON(w, http.StatusOK, meters)
}

func (h *Handler) AddReading(w http.ResponseWriter, r *http.Request) {
	var req AddReadingRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := billing.ParseDate(req.ReadingDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reading_date", err)
		return
	}

	err = h.Store.AddReading(r.Context(), billing.MeterReading{
		MeterID:     req.MeterID,
		ReadingDate: date,
		Consumption: req.Consumption,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add reading", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (h *Handler) ListReadings(w http.ResponseWriter, r *http.Request) {
	readings, err := h.Store.ListReadings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list readings", err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// =============================================================================
// COST DATA HANDLERS
// =============================================================================

// AddCostItem records a cost position for one billing year. The policy
// field accepts German labels ("pro Fläche", "pro Mieter", ...); unknown
// labels fall back to allocation by area but the label is kept.
func (h *Handler) AddCostItem(w http.ResponseWriter, r *http.Request) {
	var req AddCostItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.BuildingID = chi.URLParam(r, "id")
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item := billing.CostItem{
		Name:        req.Name,
		Total:       req.Amount,
		Policy:      billing.ParseAllocationPolicy(req.Policy),
		PolicyLabel: req.Policy,
		Individual:  req.Individual,
	}
	if item.PolicyLabel == "" {
		item.PolicyLabel = item.Policy.Label()
	}

	if err := h.Store.AddCostItem(r.Context(), req.BuildingID, req.Year, item); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add cost item", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (h *Handler) ListCostItems(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	items, err := h.Store.ListCostItems(r.Context(), chi.URLParam(r, "id"), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cost items", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// SetWaterTotals records the utility invoice figures used to price water.
func (h *Handler) SetWaterTotals(w http.ResponseWriter, r *http.Request) {
	var req SetWaterTotalsRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	err := h.Store.SetWaterTotals(r.Context(), chi.URLParam(r, "id"), req.Year,
		req.TotalCost, req.TotalConsumption)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to set water totals", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// VALIDATION / PRE-CHECK HANDLERS
// =============================================================================

// ValidatePeriod checks a start/end date pair without touching the store.
// POST /api/validate/period
func (h *Handler) ValidatePeriod(w http.ResponseWriter, r *http.Request) {
	var req ValidatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	writeJSON(w, http.StatusOK, toValidationDTO(billing.ValidateDateRange(req.Start, req.End)))
}

// RunPrechecks runs the pre-statement checks for a building and year,
// reporting problems without generating anything.
// GET /api/buildings/{id}/prechecks?year=2024
func (h *Handler) RunPrechecks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buildingID := chi.URLParam(r, "id")

	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	period := billing.CalendarYear(year)

	input, err := h.Service.LoadInput(ctx, buildingID, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load building data", err)
		return
	}

	writeJSON(w, http.StatusOK, toValidationDTO(property.ValidateStatementInput(*input)))
}

// =============================================================================
// STATEMENT HANDLERS
// =============================================================================

// GenerateStatement runs the settlement for a building and persists it.
// POST /api/buildings/{id}/statements
func (h *Handler) GenerateStatement(w http.ResponseWriter, r *http.Request) {
	var req GenerateStatementRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	statement, err := h.Service.Generate(r.Context(), chi.URLParam(r, "id"),
		billing.CalendarYear(req.Year), req.Draft)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Statement generation failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, toStatementDTO(statement))
}

// PreviewStatement runs the settlement without persisting.
// POST /api/buildings/{id}/statements/preview
func (h *Handler) PreviewStatement(w http.ResponseWriter, r *http.Request) {
	var req GenerateStatementRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	statement, err := h.Service.Preview(r.Context(), chi.URLParam(r, "id"),
		billing.CalendarYear(req.Year))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Statement preview failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementDTO(statement))
}

// GetStatement returns a persisted statement by id.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	statement, err := h.Store.GetStatement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Statement not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementDTO(statement))
}

// =============================================================================
// FINANCE HANDLERS
// =============================================================================

func (h *Handler) AddFinanceEntry(w http.ResponseWriter, r *http.Request) {
	var req AddFinanceEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.BuildingID = chi.URLParam(r, "id")
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	bookedAt, err := billing.ParseDate(req.BookedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid booked_at date", err)
		return
	}

	err = h.Store.AddFinanceEntry(r.Context(), summary.FinanceEntry{
		BuildingID: req.BuildingID,
		BookedAt:   bookedAt,
		Category:   req.Category,
		Kind:       summary.EntryKind(req.Kind),
		Amount:     req.Amount,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add finance entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (h *Handler) ListFinanceEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListFinanceEntries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list finance entries", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// FinanceSummary returns month-by-month income/expense totals for a year.
// GET /api/buildings/{id}/finance/summary?year=2024
func (h *Handler) FinanceSummary(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	entries, err := h.Store.ListFinanceEntries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list finance entries", err)
		return
	}
	writeJSON(w, http.StatusOK, summary.MonthlyTotals(entries, year))
}

// =============================================================================
// HELPERS
// =============================================================================

func yearParam(r *http.Request) (int, error) {
	return strconv.Atoi(r.URL.Query().Get("year"))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Error: message}
	if err != nil {
		resp.Error = message + ": " + err.Error()
	}
	writeJSON(w, status, resp)
}
