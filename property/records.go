/*
Package property orchestrates building-level statements on top of the
billing core.

PURPOSE:
  The billing package is pure calculation over plain records. This package
  owns the building/apartment record shapes, the pre-checks that run before
  a statement, and the StatementService that loads records from a store,
  runs the core for every tenant, and persists the outcome.

SEE ALSO:
  - statement.go: RunStatement / StatementService
  - prechecks.go: validation before a statement run
  - store/sqlite: the persistence implementation
*/
package property

import (
	"github.com/shopspring/decimal"

	"github.com/hauswart/settlement-engine/billing"
)

// Building is a managed property with apartments and shared costs.
type Building struct {
	ID      string
	Name    string
	Address string
}

// Apartment is one unit inside a building.
type Apartment struct {
	ID         string
	BuildingID string
	Label      string
	AreaSqm    decimal.Decimal
}

// Prepayment is one advance payment a tenant made toward operating costs.
type Prepayment struct {
	TenantID string
	PaidAt   billing.Date
	Amount   decimal.Decimal
}

// PrepaymentsInPeriod sums a tenant's prepayments dated inside the period.
func PrepaymentsInPeriod(prepayments []Prepayment, tenantID string, period billing.Period) decimal.Decimal {
	total := decimal.Zero
	for _, p := range prepayments {
		if p.TenantID != tenantID {
			continue
		}
		if !period.Contains(p.PaidAt) {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total
}
