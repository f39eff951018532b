/*
distribution.go - Cost distribution under interchangeable allocation policies

PURPOSE:
  Turns one cost item's total amount into a per-tenant share map. Four
  policies, all occupancy-weighted:

  by_area:          weight = apartment area × occupancy ratio
  by_tenant_count:  weight = occupancy days
  by_apartment:     occupancy days aggregated per apartment, then the
                    apartment's slice split EQUALLY among its occupying
                    tenants (the second stage is deliberately not
                    occupancy-weighted)
  by_invoice:       a pre-specified individual amount per tenant, prorated
                    by that tenant's occupancy ratio

  Unrecognized policy labels fall back to by_area; the original label is
  preserved in the output for display.

SEE ALSO:
  - occupancy.go: the shared occupancy weighting
  - settlement.go: rolls the shares into the final statement
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ALLOCATION POLICY
// =============================================================================

type AllocationPolicy string

const (
	PolicyByArea        AllocationPolicy = "by_area"
	PolicyByTenantCount AllocationPolicy = "by_tenant_count"
	PolicyByApartment   AllocationPolicy = "by_apartment"
	PolicyByInvoice     AllocationPolicy = "by_invoice"
)

// Display labels as they appear on statements and in stored cost rows.
const (
	labelByArea        = "pro Fläche"
	labelByTenantCount = "pro Mieter"
	labelByApartment   = "pro Wohnung"
	labelByInvoice     = "nach Rechnung"
)

// ParseAllocationPolicy maps a stored label to a policy. Unknown labels
// map to by_area; callers keep the original label for display.
func ParseAllocationPolicy(label string) AllocationPolicy {
	switch label {
	case labelByArea, string(PolicyByArea):
		return PolicyByArea
	case labelByTenantCount, string(PolicyByTenantCount):
		return PolicyByTenantCount
	case labelByApartment, string(PolicyByApartment):
		return PolicyByApartment
	case labelByInvoice, string(PolicyByInvoice):
		return PolicyByInvoice
	default:
		return PolicyByArea
	}
}

// Label returns the display label for a policy.
func (p AllocationPolicy) Label() string {
	switch p {
	case PolicyByTenantCount:
		return labelByTenantCount
	case PolicyByApartment:
		return labelByApartment
	case PolicyByInvoice:
		return labelByInvoice
	default:
		return labelByArea
	}
}

// CostItem is one building cost to be distributed across tenants.
type CostItem struct {
	Name   string
	Total  decimal.Decimal
	Policy AllocationPolicy

	// PolicyLabel is the label the cost row carried, kept verbatim for
	// the statement even when it did not match a known policy.
	PolicyLabel string

	// Individual carries the pre-specified per-tenant amounts for
	// by_invoice items (tenantID -> amount). Ignored by other policies.
	Individual map[string]decimal.Decimal
}

// basis returns the distribution basis text shown on the statement.
func (c CostItem) basis() string {
	if c.PolicyLabel != "" {
		return c.PolicyLabel
	}
	return c.Policy.Label()
}

// =============================================================================
// DISTRIBUTION ENGINE
// =============================================================================

// Distribute allocates one cost item's total across tenants and returns a
// share per tenant id. Every tenant appears in the result, with a zero
// share when their weight is zero. A zero total weight yields all-zero
// shares rather than a division by zero.
func Distribute(tenants []Tenant, item CostItem, period Period) map[string]CostShare {
	switch item.Policy {
	case PolicyByTenantCount:
		return distributeByDays(tenants, item, period)
	case PolicyByApartment:
		return distributeByApartment(tenants, item, period)
	case PolicyByInvoice:
		return distributeByInvoice(tenants, item, period)
	default:
		return distributeByArea(tenants, item, period)
	}
}

// DistributeAll runs every cost item through the engine and returns the
// shares grouped per tenant, in item order.
func DistributeAll(tenants []Tenant, items []CostItem, period Period) map[string][]CostShare {
	byTenant := make(map[string][]CostShare, len(tenants))
	for _, item := range items {
		shares := Distribute(tenants, item, period)
		for _, t := range tenants {
			byTenant[t.ID] = append(byTenant[t.ID], shares[t.ID])
		}
	}
	return byTenant
}

func distributeByArea(tenants []Tenant, item CostItem, period Period) map[string]CostShare {
	weights := make(map[string]decimal.Decimal, len(tenants))
	totalWeight := decimal.Zero
	for _, t := range tenants {
		occ := Occupancy(t, period)
		w := t.AreaSqm.Mul(decimal.NewFromFloat(occ.Ratio))
		weights[t.ID] = w
		totalWeight = totalWeight.Add(w)
	}

	shares := make(map[string]CostShare, len(tenants))
	for _, t := range tenants {
		share := CostShare{TenantID: t.ID, ItemName: item.Name, Basis: item.basis()}
		if totalWeight.IsPositive() {
			share.Amount = item.Total.Mul(weights[t.ID]).Div(totalWeight).Round(2)
		} else {
			share.Amount = decimal.Zero
		}
		if t.AreaSqm.IsPositive() {
			perSqm := share.Amount.Div(t.AreaSqm).Round(4)
			share.PricePerSqm = &perSqm
		}
		shares[t.ID] = share
	}
	return shares
}

func distributeByDays(tenants []Tenant, item CostItem, period Period) map[string]CostShare {
	days := make(map[string]int, len(tenants))
	totalDays := 0
	for _, t := range tenants {
		occ := Occupancy(t, period)
		days[t.ID] = occ.Days
		totalDays += occ.Days
	}

	shares := make(map[string]CostShare, len(tenants))
	for _, t := range tenants {
		share := CostShare{TenantID: t.ID, ItemName: item.Name, Basis: item.basis(), Amount: decimal.Zero}
		if totalDays > 0 {
			share.Amount = item.Total.
				Mul(decimal.NewFromInt(int64(days[t.ID]))).
				Div(decimal.NewFromInt(int64(totalDays))).
				Round(2)
		}
		shares[t.ID] = share
	}
	return shares
}

func distributeByApartment(tenants []Tenant, item CostItem, period Period) map[string]CostShare {
	// Stage 1: occupancy days aggregated per apartment, summed across
	// co-tenants. Tenants without an apartment link form singleton groups.
	apartmentDays := map[string]int{}
	occupants := map[string][]string{} // apartment -> tenant ids with days > 0
	tenantDays := make(map[string]int, len(tenants))
	totalDays := 0

	for _, t := range tenants {
		occ := Occupancy(t, period)
		tenantDays[t.ID] = occ.Days
		group := t.occupancyGroup()
		apartmentDays[group] += occ.Days
		totalDays += occ.Days
		if occ.Days > 0 {
			occupants[group] = append(occupants[group], t.ID)
		}
	}

	// Stage 2: the apartment slice is split equally among its occupying
	// tenants. Relative occupancy inside an apartment does not matter here.
	shares := make(map[string]CostShare, len(tenants))
	for _, t := range tenants {
		share := CostShare{TenantID: t.ID, ItemName: item.Name, Basis: item.basis(), Amount: decimal.Zero}
		group := t.occupancyGroup()
		heads := len(occupants[group])
		if totalDays > 0 && tenantDays[t.ID] > 0 && heads > 0 {
			apartmentShare := item.Total.
				Mul(decimal.NewFromInt(int64(apartmentDays[group]))).
				Div(decimal.NewFromInt(int64(totalDays)))
			share.Amount = apartmentShare.Div(decimal.NewFromInt(int64(heads))).Round(2)
		}
		shares[t.ID] = share
	}
	return shares
}

func distributeByInvoice(tenants []Tenant, item CostItem, period Period) map[string]CostShare {
	shares := make(map[string]CostShare, len(tenants))
	for _, t := range tenants {
		share := CostShare{TenantID: t.ID, ItemName: item.Name, Basis: item.basis(), Amount: decimal.Zero}
		if individual, ok := item.Individual[t.ID]; ok {
			occ := Occupancy(t, period)
			share.Amount = individual.Mul(decimal.NewFromFloat(occ.Ratio)).Round(2)
		}
		shares[t.ID] = share
	}
	return shares
}
