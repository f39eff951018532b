/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the internal
  record types. Request bodies carry validator tags; validation runs in
  the handlers before any store or engine call.

NAMING CONVENTION:
  - *Request: request body types from clients
  - *DTO: response types returned to clients

SEE ALSO:
  - handlers.go: uses these types
  - factory/statement.go: the statement definition JSON schema
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/hauswart/settlement-engine/billing"
	"github.com/hauswart/settlement-engine/property"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

type CreateBuildingRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

type CreateApartmentRequest struct {
	BuildingID string          `json:"building_id" validate:"required"`
	Label      string          `json:"label"`
	AreaSqm    decimal.Decimal `json:"area_sqm"`
}

type CreateTenantRequest struct {
	ApartmentID string `json:"apartment_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	MoveIn      string `json:"move_in"`
	MoveOut     string `json:"move_out"`
}

type CreateMeterRequest struct {
	ApartmentID string `json:"apartment_id" validate:"required"`
	CustomID    string `json:"custom_id"`
}

type AddReadingRequest struct {
	MeterID     string          `json:"meter_id" validate:"required"`
	ReadingDate string          `json:"reading_date" validate:"required"`
	Consumption decimal.Decimal `json:"consumption"`
}

type AddPrepaymentRequest struct {
	TenantID string          `json:"tenant_id" validate:"required"`
	PaidAt   string          `json:"paid_at" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

type AddCostItemRequest struct {
	BuildingID string                     `json:"building_id" validate:"required"`
	Year       int                        `json:"year" validate:"required"`
	Name       string                     `json:"name" validate:"required"`
	Amount     decimal.Decimal            `json:"amount"`
	Policy     string                     `json:"policy"`
	Individual map[string]decimal.Decimal `json:"individual,omitempty"`
}

type SetWaterTotalsRequest struct {
	Year             int             `json:"year" validate:"required"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	TotalConsumption decimal.Decimal `json:"total_consumption"`
}

type AddFinanceEntryRequest struct {
	BuildingID string          `json:"building_id" validate:"required"`
	BookedAt   string          `json:"booked_at" validate:"required"`
	Category   string          `json:"category" validate:"required"`
	Kind       string          `json:"kind" validate:"required,oneof=income expense"`
	Amount     decimal.Decimal `json:"amount"`
}

type ValidatePeriodRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type GenerateStatementRequest struct {
	Year  int  `json:"year" validate:"required"`
	Draft bool `json:"draft"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type ValidationDTO struct {
	Valid    bool              `json:"valid"`
	Errors   map[string]string `json:"errors"`
	Warnings []string          `json:"warnings"`
}

func toValidationDTO(result *billing.ValidationResult) ValidationDTO {
	return ValidationDTO{
		Valid:    result.IsValid(),
		Errors:   result.Errors,
		Warnings: result.Warnings,
	}
}

type TenantDTO struct {
	ID          string `json:"id"`
	ApartmentID string `json:"apartment_id"`
	Name        string `json:"name"`
	MoveIn      string `json:"move_in,omitempty"`
	MoveOut     string `json:"move_out,omitempty"`
	AreaSqm     string `json:"area_sqm"`
}

func toTenantDTO(t billing.Tenant) TenantDTO {
	dto := TenantDTO{
		ID:          t.ID,
		ApartmentID: t.ApartmentID,
		Name:        t.Name,
		AreaSqm:     t.AreaSqm.String(),
	}
	if !t.MoveIn.IsZero() {
		dto.MoveIn = t.MoveIn.ISO()
	}
	if !t.MoveOut.IsZero() {
		dto.MoveOut = t.MoveOut.ISO()
	}
	return dto
}

type StatementDTO struct {
	ID          string                           `json:"id"`
	BuildingID  string                           `json:"building_id"`
	PeriodStart string                           `json:"period_start"`
	PeriodEnd   string                           `json:"period_end"`
	Draft       bool                             `json:"draft"`
	Warnings    []string                         `json:"warnings,omitempty"`
	Results     []billing.TenantSettlementResult `json:"results"`
}

func toStatementDTO(s *property.Statement) StatementDTO {
	return StatementDTO{
		ID:          s.ID,
		BuildingID:  s.BuildingID,
		PeriodStart: s.Period.Start.ISO(),
		PeriodEnd:   s.Period.End.ISO(),
		Draft:       s.Draft,
		Warnings:    s.Warnings,
		Results:     s.Results,
	}
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type errorResponse struct {
	Error string `json:"error"`
}
