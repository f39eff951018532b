/*
Package billing provides the operating cost settlement core.

PURPOSE:
  This package contains the pure calculation engine for annual operating
  cost statements (Betriebskostenabrechnung): occupancy overlap with a
  billing period, cost distribution under interchangeable allocation
  policies, shared-apartment (WG) splitting, metered water allocation,
  and the per-tenant settlement rollup.

KEY CONCEPTS IN THIS FILE (types.go):
  - Tenant: occupant record with move-in/move-out dates and apartment link
  - CostItem: one building cost with a total amount and allocation policy
  - WaterMeter / MeterReading: metering records for water allocation
  - Result records: OccupancyResult, CostShare, TenantWaterCost,
    TenantSettlementResult

DESIGN PRINCIPLES:
  1. Purity: every function takes immutable inputs and returns fresh results;
     the core owns no state and performs no I/O
  2. Precision: decimal.Decimal for every currency and cubic-meter amount
  3. Degenerate-input safety: zero denominators yield zero results, never
     NaN or Infinity
  4. Per-tenant independence: one tenant's malformed record never alters
     another tenant's computed share

SEE ALSO:
  - occupancy.go:    occupancy overlap with the billing period
  - distribution.go: allocation policies
  - wg.go:           shared-apartment factors
  - water.go:        metered water allocation
  - settlement.go:   per-tenant rollup
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT RECORDS
// =============================================================================
// Inputs arrive already fetched and deserialized; the core never queries.

// Tenant is an occupant of an apartment within a building.
// ApartmentID may be empty when the link is unknown; MoveIn/MoveOut may be
// zero dates when the contract data is incomplete.
type Tenant struct {
	ID          string
	ApartmentID string
	Name        string
	MoveIn      Date
	MoveOut     Date // zero = still occupying

	// AreaSqm is the living area of the linked apartment. Zero when the
	// apartment record carries no area.
	AreaSqm decimal.Decimal
}

// occupancyGroup returns the key tenants are grouped under for apartment-level
// calculations. Tenants without an apartment link form singleton groups so the
// shared-flat logic handles them uniformly.
func (t Tenant) occupancyGroup() string {
	if t.ApartmentID != "" {
		return t.ApartmentID
	}
	return t.ID
}

// WaterMeter is a cold/warm water meter installed in an apartment.
type WaterMeter struct {
	ID          string
	ApartmentID string
	CustomID    string // optional label stamped on the meter
}

// MeterReading records the consumption delta of one meter for a sub-period.
// Only readings dated inside the billing period enter the allocation.
type MeterReading struct {
	MeterID     string
	ReadingDate Date
	Consumption decimal.Decimal // cubic meters since the previous reading
}

// =============================================================================
// RESULT RECORDS
// =============================================================================

// OccupancyResult is a tenant's overlap with a billing period.
type OccupancyResult struct {
	TenantID string
	Days     int     // inclusive days occupied within the period, >= 0
	Ratio    float64 // Days / period total days, in [0,1]
}

// CostShare is one tenant's slice of a single cost item.
type CostShare struct {
	TenantID string
	ItemName string
	Amount   decimal.Decimal

	// PricePerSqm is set for area-distributed items with a known area.
	PricePerSqm *decimal.Decimal

	// Basis is the human-readable distribution basis for the statement
	// (original policy label preserved, even for unrecognized labels).
	Basis string
}

// WGSplitDetail documents how a shared apartment's water consumption was
// divided, so a statement can show each co-tenant's percentage.
type WGSplitDetail struct {
	ApartmentConsumption decimal.Decimal
	TenantPercent        float64
	CoTenantPercents     map[string]float64 // tenantID -> percent, co-tenants only
}

// TenantWaterCost is a tenant's attributed water consumption and cost.
type TenantWaterCost struct {
	TenantID         string
	Consumption      decimal.Decimal // cubic meters
	Cost             decimal.Decimal
	PricePerCubic    decimal.Decimal
	WGSplit          *WGSplitDetail // set only for multi-tenant apartments
}

// MonthlyPrepayment is one month's assumed prepayment for display.
type MonthlyPrepayment struct {
	Year   int
	Month  int
	Amount decimal.Decimal
}

// TenantSettlementResult is the complete per-tenant outcome of a statement.
type TenantSettlementResult struct {
	TenantID   string
	TenantName string
	Occupancy  OccupancyResult

	CostShares []CostShare
	Water      TenantWaterCost

	TotalCosts      decimal.Decimal
	PrepaymentsPaid decimal.Decimal

	// FinalSettlement = TotalCosts - PrepaymentsPaid.
	// Positive: tenant owes money. Negative: refund due.
	FinalSettlement decimal.Decimal

	// RecommendedPrepayment is the suggested annual prepayment for the
	// next period (monthly figure rounded to a multiple of 5, times 12).
	RecommendedPrepayment decimal.Decimal

	MonthlyPrepayments []MonthlyPrepayment
}
