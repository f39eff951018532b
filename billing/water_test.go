package billing_test

import (
	"testing"
	"time"

	"github.com/hauswart/settlement-engine/billing"
	"github.com/shopspring/decimal"
)

func meter(id, apartment string) billing.WaterMeter {
	return billing.WaterMeter{ID: id, ApartmentID: apartment}
}

func reading(meterID string, d billing.Date, cubic float64) billing.MeterReading {
	return billing.MeterReading{MeterID: meterID, ReadingDate: d, Consumption: decimal.NewFromFloat(cubic)}
}

func waterByTenant(results []billing.TenantWaterCost) map[string]billing.TenantWaterCost {
	byID := map[string]billing.TenantWaterCost{}
	for _, r := range results {
		byID[r.TenantID] = r
	}
	return byID
}

// =============================================================================
// WATER ALLOCATION
// =============================================================================

func TestWaterCosts_UniformPriceFromBuildingTotals(t *testing.T) {
	// GIVEN: Building totals of 100 cost / 20 m³, a tenant with 10 m³ metered
	// WHEN: Allocating water costs
	// THEN: Price is 5/m³ and the tenant owes exactly 50

	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2020, time.January, 1), noDate, 50),
	}
	meters := []billing.WaterMeter{meter("m1", "apt1")}
	readings := []billing.MeterReading{
		reading("m1", date(2024, time.June, 30), 4),
		reading("m1", date(2024, time.December, 31), 6),
	}

	results := billing.WaterCosts(tenants, meters, readings, money(100), money(20), year2024())
	byID := waterByTenant(results)

	decEqual(t, byID["a"].PricePerCubic, money(5), "price per cubic")
	decEqual(t, byID["a"].Consumption, money(10), "consumption")
	decEqual(t, byID["a"].Cost, money(50), "cost")
}

func TestWaterCosts_ReadingsOutsidePeriodIgnored(t *testing.T) {
	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2020, time.January, 1), noDate, 50),
	}
	meters := []billing.WaterMeter{meter("m1", "apt1")}
	readings := []billing.MeterReading{
		reading("m1", date(2023, time.December, 31), 99),
		reading("m1", date(2024, time.March, 31), 8),
		reading("m1", date(2025, time.January, 1), 99),
	}

	results := billing.WaterCosts(tenants, meters, readings, money(100), money(20), year2024())
	decEqual(t, waterByTenant(results)["a"].Consumption, money(8), "in-period consumption")
}

func TestWaterCosts_MultipleMetersPerApartmentAreSummed(t *testing.T) {
	// Bathroom and kitchen meters feed the same apartment total.
	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2020, time.January, 1), noDate, 50),
	}
	meters := []billing.WaterMeter{meter("m-bath", "apt1"), meter("m-kitchen", "apt1")}
	readings := []billing.MeterReading{
		reading("m-bath", date(2024, time.December, 31), 12),
		reading("m-kitchen", date(2024, time.December, 31), 3),
	}

	results := billing.WaterCosts(tenants, meters, readings, money(150), money(30), year2024())
	byID := waterByTenant(results)
	decEqual(t, byID["a"].Consumption, money(15), "summed consumption")
	decEqual(t, byID["a"].Cost, money(75), "cost at 5/m³")
}

func TestWaterCosts_CoTenantsSplitByOccupancy(t *testing.T) {
	// GIVEN: apt1 shared by a full-year tenant and a half-year tenant
	// WHEN: Allocating 30 m³ of apartment consumption
	// THEN: Split 2:1 by occupancy ratio, with WG detail on both results

	tenants := []billing.Tenant{
		tenant("full", "apt1", date(2020, time.January, 1), noDate, 50),
		tenant("half", "apt1", date(2024, time.July, 2), noDate, 50),
	}
	meters := []billing.WaterMeter{meter("m1", "apt1")}
	readings := []billing.MeterReading{reading("m1", date(2024, time.December, 31), 30)}

	results := billing.WaterCosts(tenants, meters, readings, money(300), money(100), year2024())
	byID := waterByTenant(results)

	decEqual(t, byID["full"].Consumption, money(20), "full-year consumption")
	decEqual(t, byID["half"].Consumption, money(10), "half-year consumption")

	full := byID["full"]
	if full.WGSplit == nil {
		t.Fatal("WG split detail missing for shared apartment")
	}
	decEqual(t, full.WGSplit.ApartmentConsumption, money(30), "apartment consumption")
	if !approxEqual(full.WGSplit.TenantPercent, 200.0/3.0) {
		t.Errorf("tenant percent = %f, want %f", full.WGSplit.TenantPercent, 200.0/3.0)
	}
	if !approxEqual(full.WGSplit.CoTenantPercents["half"], 100.0/3.0) {
		t.Errorf("co-tenant percent = %f, want %f", full.WGSplit.CoTenantPercents["half"], 100.0/3.0)
	}
}

func TestWaterCosts_ZeroOccupancySplitsEqually(t *testing.T) {
	// Neither co-tenant has a move-in date; the apartment consumption still
	// has to go somewhere, so it splits equally instead of dividing by zero.
	tenants := []billing.Tenant{
		tenant("a", "apt1", noDate, noDate, 50),
		tenant("b", "apt1", noDate, noDate, 50),
	}
	meters := []billing.WaterMeter{meter("m1", "apt1")}
	readings := []billing.MeterReading{reading("m1", date(2024, time.June, 1), 10)}

	results := billing.WaterCosts(tenants, meters, readings, money(50), money(10), year2024())
	byID := waterByTenant(results)
	decEqual(t, byID["a"].Consumption, money(5), "equal split a")
	decEqual(t, byID["b"].Consumption, money(5), "equal split b")
}

func TestWaterCosts_UnreadMeterYieldsZeroCostResult(t *testing.T) {
	// A tenant whose meters have no in-period readings still appears in the
	// output with zero consumption and cost. Warning about the unread meter
	// is the pre-check layer's job.
	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2020, time.January, 1), noDate, 50),
	}
	meters := []billing.WaterMeter{meter("m1", "apt1")}

	results := billing.WaterCosts(tenants, meters, nil, money(100), money(20), year2024())
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	decEqual(t, results[0].Consumption, money(0), "consumption")
	decEqual(t, results[0].Cost, money(0), "cost")
}

func TestWaterCosts_ZeroBuildingConsumptionGuarded(t *testing.T) {
	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2020, time.January, 1), noDate, 50),
	}
	meters := []billing.WaterMeter{meter("m1", "apt1")}
	readings := []billing.MeterReading{reading("m1", date(2024, time.June, 1), 10)}

	results := billing.WaterCosts(tenants, meters, readings, money(100), money(0), year2024())
	decEqual(t, waterByTenant(results)["a"].PricePerCubic, money(0), "guarded price")
	decEqual(t, waterByTenant(results)["a"].Cost, money(0), "guarded cost")
}
