/*
settlement.go - Per-tenant settlement rollup

PURPOSE:
  Composes occupancy, distributed cost shares and the water allocation into
  the final per-tenant result:

    totalCosts      = sum(cost item shares) + water cost
    finalSettlement = totalCosts - prepayments paid
                      (positive: tenant owes, negative: refund due)

  Also derives the recommended prepayment for the next period: monthly
  figure = totalCosts × 1.1 / 12, rounded to the nearest multiple of 5,
  then annualized. Non-positive totals recommend 0.

  The monthly prepayment breakdown shown on statements assumes a flat
  monthly amount (SettlementConfig) prorated by each month's occupancy
  ratio, used when no explicit per-month schedule exists upstream.
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// SettlementConfig carries the tunable constants of the rollup.
type SettlementConfig struct {
	// AssumedMonthlyPrepayment is the flat monthly prepayment used for the
	// per-month display breakdown when no contracted schedule is supplied.
	AssumedMonthlyPrepayment decimal.Decimal
}

// DefaultSettlementConfig returns the standard configuration: an assumed
// monthly prepayment of 100 currency units.
func DefaultSettlementConfig() SettlementConfig {
	return SettlementConfig{AssumedMonthlyPrepayment: decimal.NewFromInt(100)}
}

func (c SettlementConfig) withDefaults() SettlementConfig {
	if c.AssumedMonthlyPrepayment.IsZero() {
		return DefaultSettlementConfig()
	}
	return c
}

// =============================================================================
// SETTLEMENT AGGREGATOR
// =============================================================================

// Settle rolls one tenant's cost shares, water allocation and prepayments
// into the complete settlement result for the period.
func Settle(tenant Tenant, shares []CostShare, water TenantWaterCost,
	prepaymentsPaid decimal.Decimal, period Period, cfg SettlementConfig) TenantSettlementResult {

	cfg = cfg.withDefaults()

	total := water.Cost
	for _, s := range shares {
		total = total.Add(s.Amount)
	}

	return TenantSettlementResult{
		TenantID:              tenant.ID,
		TenantName:            tenant.Name,
		Occupancy:             Occupancy(tenant, period),
		CostShares:            shares,
		Water:                 water,
		TotalCosts:            total.Round(2),
		PrepaymentsPaid:       prepaymentsPaid,
		FinalSettlement:       total.Sub(prepaymentsPaid).Round(2),
		RecommendedPrepayment: RecommendedPrepayment(total),
		MonthlyPrepayments:    monthlyBreakdown(tenant, period, cfg),
	}
}

// RecommendedPrepayment suggests the annual prepayment for the next period:
// totalCosts plus a 10% buffer, taken monthly, rounded to the nearest
// multiple of 5, annualized again. Non-positive totals recommend 0.
func RecommendedPrepayment(totalCosts decimal.Decimal) decimal.Decimal {
	if !totalCosts.IsPositive() {
		return decimal.Zero
	}
	monthly := totalCosts.
		Mul(decimal.NewFromFloat(1.1)).
		Div(decimal.NewFromInt(12))
	five := decimal.NewFromInt(5)
	rounded := monthly.Div(five).Round(0).Mul(five)
	return rounded.Mul(decimal.NewFromInt(12))
}

// monthlyBreakdown prorates the assumed flat monthly prepayment by each
// month's occupancy ratio, clipped to the billing period.
func monthlyBreakdown(tenant Tenant, period Period, cfg SettlementConfig) []MonthlyPrepayment {
	var months []MonthlyPrepayment
	for _, month := range period.Months() {
		monthPeriod := Period{
			Start: month.Max(period.Start),
			End:   EndOfMonth(month.Year(), month.Month()).Min(period.End),
		}
		occ := Occupancy(tenant, monthPeriod)
		months = append(months, MonthlyPrepayment{
			Year:   month.Year(),
			Month:  int(month.Month()),
			Amount: cfg.AssumedMonthlyPrepayment.Mul(decimal.NewFromFloat(occ.Ratio)).Round(2),
		})
	}
	return months
}
