/*
water.go - Metered water cost allocation

PURPOSE:
  Attributes metered water consumption and cost to tenants:

  1. Per apartment, sum consumption across all of its meters, using only
     readings dated inside the billing period.
  2. Split the apartment total among co-tenants proportional to their
     occupancy ratio (equal split when the combined ratio is zero).
  3. Price every cubic meter uniformly: building total cost / building
     total consumption, taken from the official building-level figures,
     NOT from the sum of individual readings. Unread meters therefore
     never distort the price.
  4. Tenant cost = attributed consumption × uniform price. Multi-tenant
     apartments additionally carry a WG split detail with each
     co-tenant's percentage.

  A meter with no in-period readings contributes silent zero consumption
  here; surfacing that as a warning is the job of the pre-check layer,
  not the allocator.

SEE ALSO:
  - occupancy.go: the occupancy weighting used in step 2
  - settlement.go: folds the water cost into the statement
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// WaterCosts attributes water consumption and cost to every tenant.
// Tenants with zero attributed consumption still appear, with a zero-cost
// result. Results are returned in tenant input order.
func WaterCosts(tenants []Tenant, meters []WaterMeter, readings []MeterReading,
	totalBuildingCost, totalBuildingConsumption decimal.Decimal, period Period) []TenantWaterCost {

	apartmentConsumption := consumptionByApartment(meters, readings, period)

	pricePerCubic := decimal.Zero
	if totalBuildingConsumption.IsPositive() {
		pricePerCubic = totalBuildingCost.Div(totalBuildingConsumption)
	}

	groups := map[string][]Tenant{}
	for _, t := range tenants {
		groups[t.occupancyGroup()] = append(groups[t.occupancyGroup()], t)
	}

	// Attributed consumption per tenant, computed group by group.
	attributed := make(map[string]decimal.Decimal, len(tenants))
	groupPercent := make(map[string]float64, len(tenants))
	for apartmentID, group := range groups {
		total := apartmentConsumption[apartmentID]
		splitApartmentConsumption(group, total, period, attributed, groupPercent)
	}

	results := make([]TenantWaterCost, 0, len(tenants))
	for _, t := range tenants {
		consumption := attributed[t.ID]
		result := TenantWaterCost{
			TenantID:      t.ID,
			Consumption:   consumption.Round(3),
			Cost:          consumption.Mul(pricePerCubic).Round(2),
			PricePerCubic: pricePerCubic.Round(4),
		}

		group := groups[t.occupancyGroup()]
		if len(group) > 1 {
			detail := &WGSplitDetail{
				ApartmentConsumption: apartmentConsumption[t.occupancyGroup()].Round(3),
				TenantPercent:        groupPercent[t.ID],
				CoTenantPercents:     map[string]float64{},
			}
			for _, co := range group {
				if co.ID != t.ID {
					detail.CoTenantPercents[co.ID] = groupPercent[co.ID]
				}
			}
			result.WGSplit = detail
		}
		results = append(results, result)
	}
	return results
}

// consumptionByApartment sums in-period readings over each apartment's meters.
func consumptionByApartment(meters []WaterMeter, readings []MeterReading, period Period) map[string]decimal.Decimal {
	meterApartment := make(map[string]string, len(meters))
	for _, m := range meters {
		meterApartment[m.ID] = m.ApartmentID
	}

	totals := map[string]decimal.Decimal{}
	for _, r := range readings {
		apartmentID, known := meterApartment[r.MeterID]
		if !known {
			continue
		}
		if !period.Contains(r.ReadingDate) {
			continue
		}
		totals[apartmentID] = totals[apartmentID].Add(r.Consumption)
	}
	return totals
}

// splitApartmentConsumption distributes one apartment's consumption among its
// co-tenants proportional to occupancy ratio. A combined ratio of zero falls
// back to an equal split so nobody divides by zero.
func splitApartmentConsumption(group []Tenant, total decimal.Decimal, period Period,
	attributed map[string]decimal.Decimal, percent map[string]float64) {

	ratios := make(map[string]float64, len(group))
	var sum float64
	for _, t := range group {
		r := Occupancy(t, period).Ratio
		ratios[t.ID] = r
		sum += r
	}

	for _, t := range group {
		var fraction float64
		if sum > 0 {
			fraction = ratios[t.ID] / sum
		} else {
			fraction = 1.0 / float64(len(group))
		}
		attributed[t.ID] = total.Mul(decimal.NewFromFloat(fraction))
		percent[t.ID] = fraction * 100
	}
}
