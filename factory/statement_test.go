package factory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hauswart/settlement-engine/billing"
	"github.com/hauswart/settlement-engine/factory"
)

func TestParseStatement_FullDefinition(t *testing.T) {
	raw := []byte(`{
		"period": {"start": "01.01.2024", "end": "31.12.2024"},
		"cost_items": [
			{"name": "Versicherung", "amount": "1000.00", "policy": "pro Fläche"},
			{"name": "Wartung Therme", "amount": "400.00", "policy": "nach Rechnung",
			 "individual": {"t1": "400.00"}}
		],
		"water": {"total_cost": "500.00", "total_consumption": "100"}
	}`)

	def, err := factory.ParseStatement(raw)
	require.NoError(t, err)

	assert.Equal(t, 366, def.Period.TotalDays())
	require.Len(t, def.CostItems, 2)

	assert.Equal(t, billing.PolicyByArea, def.CostItems[0].Policy)
	assert.Equal(t, "pro Fläche", def.CostItems[0].PolicyLabel)
	assert.True(t, def.CostItems[0].Total.Equal(decimal.NewFromInt(1000)))

	assert.Equal(t, billing.PolicyByInvoice, def.CostItems[1].Policy)
	assert.True(t, def.CostItems[1].Individual["t1"].Equal(decimal.NewFromInt(400)))

	assert.True(t, def.TotalWaterCost.Equal(decimal.NewFromInt(500)))
}

func TestParseStatement_NumericAmountsAccepted(t *testing.T) {
	raw := []byte(`{
		"period": {"start": "2024-01-01", "end": "2024-12-31"},
		"cost_items": [{"name": "Müll", "amount": 640.5, "policy": "pro Mieter"}],
		"water": {"total_cost": 0, "total_consumption": 0}
	}`)

	def, err := factory.ParseStatement(raw)
	require.NoError(t, err)
	assert.True(t, def.CostItems[0].Total.Equal(decimal.NewFromFloat(640.5)))
}

func TestParseStatement_RejectsInvalidPeriod(t *testing.T) {
	raw := []byte(`{
		"period": {"start": "31.12.2024", "end": "01.01.2024"},
		"cost_items": [], "water": {"total_cost": 0, "total_consumption": 0}
	}`)

	_, err := factory.ParseStatement(raw)
	assert.Error(t, err)
}

func TestParseStatement_RejectsUnnamedCostItem(t *testing.T) {
	raw := []byte(`{
		"period": {"start": "01.01.2024", "end": "31.12.2024"},
		"cost_items": [{"amount": 100, "policy": "pro Fläche"}],
		"water": {"total_cost": 0, "total_consumption": 0}
	}`)

	_, err := factory.ParseStatement(raw)
	assert.Error(t, err)
}

func TestParseStatement_UnknownPolicyKeepsLabelFallsBackToArea(t *testing.T) {
	raw := []byte(`{
		"period": {"start": "01.01.2024", "end": "31.12.2024"},
		"cost_items": [{"name": "Sonstiges", "amount": 50, "policy": "nach Bauchgefühl"}],
		"water": {"total_cost": 0, "total_consumption": 0}
	}`)

	def, err := factory.ParseStatement(raw)
	require.NoError(t, err)
	assert.Equal(t, billing.PolicyByArea, def.CostItems[0].Policy)
	assert.Equal(t, "nach Bauchgefühl", def.CostItems[0].PolicyLabel)
}

func TestCostItemsFromColumns_RebuildsItems(t *testing.T) {
	items, err := factory.CostItemsFromColumns(
		[]string{"Versicherung", "Müll"},
		[]decimal.Decimal{decimal.NewFromInt(1000), decimal.NewFromInt(600)},
		[]string{"pro Fläche", "pro Wohnung"},
	)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, billing.PolicyByApartment, items[1].Policy)
}

func TestCostItemsFromColumns_MismatchedLengthsRejected(t *testing.T) {
	_, err := factory.CostItemsFromColumns(
		[]string{"Versicherung", "Müll"},
		[]decimal.Decimal{decimal.NewFromInt(1000)},
		[]string{"pro Fläche", "pro Wohnung"},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, billing.ErrColumnMismatch))
}
