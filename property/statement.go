package property

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hauswart/settlement-engine/billing"
)

// =============================================================================
// STATEMENT INPUT / OUTPUT
// =============================================================================

// StatementInput bundles everything a statement run needs, already loaded.
type StatementInput struct {
	Building Building
	Period   billing.Period

	Tenants   []billing.Tenant
	CostItems []billing.CostItem
	Meters    []billing.WaterMeter
	Readings  []billing.MeterReading

	// Official building-level water figures from the utility invoice.
	// These price the water, not the sum of individual meter readings.
	TotalWaterCost        decimal.Decimal
	TotalWaterConsumption decimal.Decimal

	Prepayments []Prepayment

	Config billing.SettlementConfig
}

// Statement is the complete outcome of one statement run.
type Statement struct {
	ID          string
	BuildingID  string
	Period      billing.Period
	GeneratedAt time.Time
	Draft       bool

	Results  []billing.TenantSettlementResult
	Warnings []string
}

// =============================================================================
// STATEMENT RUN
// =============================================================================

// RunStatement executes the settlement core for every tenant of a building.
// Validation errors block the run; warnings are carried on the statement.
func RunStatement(input StatementInput) (*Statement, error) {
	validation := ValidateStatementInput(input)
	if !validation.IsValid() {
		return nil, fmt.Errorf("statement input invalid: %v", validation.Errors)
	}

	shares := billing.DistributeAll(input.Tenants, input.CostItems, input.Period)

	water := billing.WaterCosts(input.Tenants, input.Meters, input.Readings,
		input.TotalWaterCost, input.TotalWaterConsumption, input.Period)
	waterByTenant := make(map[string]billing.TenantWaterCost, len(water))
	for _, w := range water {
		waterByTenant[w.TenantID] = w
	}

	statement := &Statement{
		BuildingID:  input.Building.ID,
		Period:      input.Period,
		GeneratedAt: time.Now().UTC(),
		Warnings:    validation.Warnings,
	}
	for _, t := range input.Tenants {
		prepaid := PrepaymentsInPeriod(input.Prepayments, t.ID, input.Period)
		result := billing.Settle(t, shares[t.ID], waterByTenant[t.ID], prepaid, input.Period, input.Config)
		statement.Results = append(statement.Results, result)
	}
	return statement, nil
}

// =============================================================================
// STATEMENT SERVICE - Store-backed orchestration
// =============================================================================

// Store is the persistence surface the service needs. store/sqlite
// implements it; tests use small fakes.
type Store interface {
	GetBuilding(ctx context.Context, id string) (Building, error)
	ListTenants(ctx context.Context, buildingID string) ([]billing.Tenant, error)
	ListCostItems(ctx context.Context, buildingID string, year int) ([]billing.CostItem, error)
	ListMeters(ctx context.Context, buildingID string) ([]billing.WaterMeter, error)
	ListReadings(ctx context.Context, buildingID string) ([]billing.MeterReading, error)
	ListPrepayments(ctx context.Context, buildingID string) ([]Prepayment, error)
	GetWaterTotals(ctx context.Context, buildingID string, year int) (cost, consumption decimal.Decimal, err error)
	SaveStatement(ctx context.Context, s *Statement) error
}

// StatementService loads a building's records and runs the statement.
type StatementService struct {
	Store  Store
	Config billing.SettlementConfig
}

func NewStatementService(store Store) *StatementService {
	return &StatementService{Store: store, Config: billing.DefaultSettlementConfig()}
}

// Generate runs and persists the statement for one building and period.
func (s *StatementService) Generate(ctx context.Context, buildingID string, period billing.Period, draft bool) (*Statement, error) {
	input, err := s.LoadInput(ctx, buildingID, period)
	if err != nil {
		return nil, err
	}

	statement, err := RunStatement(*input)
	if err != nil {
		return nil, err
	}
	statement.Draft = draft

	if err := s.Store.SaveStatement(ctx, statement); err != nil {
		return nil, fmt.Errorf("saving statement: %w", err)
	}
	return statement, nil
}

// Preview runs the statement without persisting anything.
func (s *StatementService) Preview(ctx context.Context, buildingID string, period billing.Period) (*Statement, error) {
	input, err := s.LoadInput(ctx, buildingID, period)
	if err != nil {
		return nil, err
	}
	return RunStatement(*input)
}

// LoadInput gathers everything a statement run needs for one building.
func (s *StatementService) LoadInput(ctx context.Context, buildingID string, period billing.Period) (*StatementInput, error) {
	building, err := s.Store.GetBuilding(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("loading building: %w", err)
	}
	tenants, err := s.Store.ListTenants(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("loading tenants: %w", err)
	}
	costItems, err := s.Store.ListCostItems(ctx, buildingID, period.Start.Year())
	if err != nil {
		return nil, fmt.Errorf("loading cost items: %w", err)
	}
	meters, err := s.Store.ListMeters(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("loading meters: %w", err)
	}
	readings, err := s.Store.ListReadings(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("loading readings: %w", err)
	}
	prepayments, err := s.Store.ListPrepayments(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("loading prepayments: %w", err)
	}
	waterCost, waterConsumption, err := s.Store.GetWaterTotals(ctx, buildingID, period.Start.Year())
	if err != nil {
		return nil, fmt.Errorf("loading water totals: %w", err)
	}

	return &StatementInput{
		Building:              building,
		Period:                period,
		Tenants:               tenants,
		CostItems:             costItems,
		Meters:                meters,
		Readings:              readings,
		TotalWaterCost:        waterCost,
		TotalWaterConsumption: waterConsumption,
		Prepayments:           prepayments,
		Config:                s.Config,
	}, nil
}
