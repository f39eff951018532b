/*
Package factory converts JSON statement definitions into billing records.

PURPOSE:
  A statement definition - the billing period, the cost items with their
  allocation policies, and the building water totals - is configuration,
  not code. Landlords edit it in the UI, the backend stores it as JSON,
  and this package turns it into the core's record types.

JSON SCHEMA:
  {
    "period": {"start": "01.01.2024", "end": "31.12.2024"},
    "cost_items": [
      {"name": "Versicherung", "amount": "1000.00", "policy": "pro Fläche"},
      {"name": "Wartung", "amount": "400.00", "policy": "nach Rechnung",
       "individual": {"tenant-1": "400.00"}}
    ],
    "water": {"total_cost": "500.00", "total_consumption": "100"}
  }

LEGACY COLUMN FORM:
  Older stored definitions carry three parallel arrays (names, amounts,
  policies). CostItemsFromColumns rebuilds proper CostItem records from
  them and rejects mismatched lengths.

SEE ALSO:
  - billing/distribution.go: CostItem and policy parsing
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hauswart/settlement-engine/billing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// StatementJSON is the stored statement definition.
type StatementJSON struct {
	Period    PeriodJSON     `json:"period"`
	CostItems []CostItemJSON `json:"cost_items"`
	Water     WaterJSON      `json:"water"`
}

type PeriodJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type CostItemJSON struct {
	Name       string                     `json:"name"`
	Amount     decimal.Decimal            `json:"amount"`
	Policy     string                     `json:"policy"`
	Individual map[string]decimal.Decimal `json:"individual,omitempty"`
}

type WaterJSON struct {
	TotalCost        decimal.Decimal `json:"total_cost"`
	TotalConsumption decimal.Decimal `json:"total_consumption"`
}

// =============================================================================
// DEFINITION PARSING
// =============================================================================

// StatementDefinition is the parsed, validated form of a StatementJSON.
type StatementDefinition struct {
	Period                billing.Period
	CostItems             []billing.CostItem
	TotalWaterCost        decimal.Decimal
	TotalWaterConsumption decimal.Decimal
}

// ParseStatement parses and validates a JSON statement definition.
// The period must pass the full date-range validation, including the
// plausibility bounds.
func ParseStatement(raw []byte) (*StatementDefinition, error) {
	var doc StatementJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid statement JSON: %w", err)
	}

	validation := billing.ValidateDateRange(doc.Period.Start, doc.Period.End)
	if !validation.IsValid() {
		return nil, fmt.Errorf("invalid statement period: %v", validation.Errors)
	}
	period, err := billing.ParsePeriod(doc.Period.Start, doc.Period.End)
	if err != nil {
		return nil, err
	}

	def := &StatementDefinition{
		Period:                period,
		TotalWaterCost:        doc.Water.TotalCost,
		TotalWaterConsumption: doc.Water.TotalConsumption,
	}
	for i, item := range doc.CostItems {
		if item.Name == "" {
			return nil, fmt.Errorf("cost item %d has no name", i)
		}
		def.CostItems = append(def.CostItems, billing.CostItem{
			Name:        item.Name,
			Total:       item.Amount,
			Policy:      billing.ParseAllocationPolicy(item.Policy),
			PolicyLabel: item.Policy,
			Individual:  item.Individual,
		})
	}
	return def, nil
}

// =============================================================================
// LEGACY COLUMN FORM
// =============================================================================

// CostItemsFromColumns rebuilds cost items from the legacy parallel-array
// representation. The three columns must have equal length; a mismatch is
// a data error, reported as ErrColumnMismatch.
func CostItemsFromColumns(names []string, amounts []decimal.Decimal, policies []string) ([]billing.CostItem, error) {
	if len(names) != len(amounts) || len(names) != len(policies) {
		return nil, fmt.Errorf("%w: %d names, %d amounts, %d policies",
			billing.ErrColumnMismatch, len(names), len(amounts), len(policies))
	}

	items := make([]billing.CostItem, 0, len(names))
	for i := range names {
		items = append(items, billing.CostItem{
			Name:        names[i],
			Total:       amounts[i],
			Policy:      billing.ParseAllocationPolicy(policies[i]),
			PolicyLabel: policies[i],
		})
	}
	return items, nil
}
