package service

import (
	"testing"

	"flourmill/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		name  string
		total string
		paid  string
		want  string
	}{
		{"nothing paid", "1000", "0", model.PaymentPending},
		{"negative paid treated as pending", "1000", "-5", model.PaymentPending},
		{"partially paid", "1000", "400", model.PaymentPartial},
		{"one short of total", "1000", "999.99", model.PaymentPartial},
		{"exactly paid", "1000", "1000", model.PaymentPaid},
		{"overpaid", "1000", "1200", model.PaymentPaid},
		{"zero total zero paid", "0", "0", model.PaymentPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, derivePaymentStatus(d(tt.total), d(tt.paid)))
		})
	}
}

func TestBuildItemsComputesLineTotals(t *testing.T) {
	items, total, err := buildItems([]PurchaseItemRequest{
		{Product: "Wheat, grade A", QuantityKg: d("2500"), UnitPrice: d("0.42")},
		{Product: "Wheat, grade B", QuantityKg: d("1000.5"), UnitPrice: d("0.31")},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.True(t, items[0].LineTotal.Equal(d("1050")), "got %s", items[0].LineTotal)
	assert.True(t, items[1].LineTotal.Equal(d("310.155")), "got %s", items[1].LineTotal)
	assert.True(t, total.Equal(d("1360.155")), "got %s", total)
}

func TestBuildItemsRejectsEmptyOrder(t *testing.T) {
	_, _, err := buildItems(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one line item")
}

func TestBuildItemsRejectsNonPositiveQuantity(t *testing.T) {
	_, _, err := buildItems([]PurchaseItemRequest{
		{Product: "Wheat", QuantityKg: d("0"), UnitPrice: d("0.40")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity must be positive")
}

func TestBuildItemsRejectsNegativePrice(t *testing.T) {
	_, _, err := buildItems([]PurchaseItemRequest{
		{Product: "Wheat", QuantityKg: d("100"), UnitPrice: d("-0.01")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be negative")
}

func TestBuildItemsAllowsFreeStock(t *testing.T) {
	items, total, err := buildItems([]PurchaseItemRequest{
		{Product: "Sample bag", QuantityKg: d("5"), UnitPrice: d("0")},
	})
	require.NoError(t, err)
	assert.True(t, items[0].LineTotal.IsZero())
	assert.True(t, total.IsZero())
}
