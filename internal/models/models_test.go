package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEffectiveUnitPrice(t *testing.T) {
	base := decimal.NewFromInt(700)
	sale := decimal.NewFromInt(600)

	p := Product{Price: base}
	assert.True(t, p.EffectiveUnitPrice().Equal(base))

	p.SalePrice = decimal.NullDecimal{Decimal: sale, Valid: true}
	assert.True(t, p.EffectiveUnitPrice().Equal(sale))

	// A sale price above the base price violates the catalog invariant and
	// is ignored rather than charged.
	p.SalePrice = decimal.NullDecimal{Decimal: decimal.NewFromInt(800), Valid: true}
	assert.True(t, p.EffectiveUnitPrice().Equal(base))
}

func TestCartLineUnitPrice(t *testing.T) {
	l := CartLine{
		Price:     decimal.NewFromInt(700),
		SalePrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(600), Valid: true},
	}
	assert.Equal(t, "600.00", l.UnitPrice().StringFixed(2))
}

func TestValidTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusRefunded},
	}
	for _, tr := range allowed {
		assert.True(t, ValidTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}

	forbidden := []struct{ from, to string }{
		{OrderStatusPending, OrderStatusRefunded},
		{OrderStatusConfirmed, OrderStatusPending},
		{OrderStatusConfirmed, OrderStatusCancelled},
		{OrderStatusCancelled, OrderStatusConfirmed},
		{OrderStatusCancelled, OrderStatusRefunded},
		{OrderStatusRefunded, OrderStatusConfirmed},
		{OrderStatusDelivered, OrderStatusRefunded},
	}
	for _, tr := range forbidden {
		assert.False(t, ValidTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}
}
