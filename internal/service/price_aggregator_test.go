package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyagehub/reservation-checkout/internal/model"
)

func TestAggregateTotalSkipsExcludedItems(t *testing.T) {
	items := []model.LineItem{
		{Kind: model.ItemKindBase, Description: "tour", UnitAmountCents: 10000, Quantity: 1, Included: true},
		{Kind: model.ItemKindActivity, Description: "kayak", UnitAmountCents: 5000, Quantity: 2, Included: false},
		{Kind: model.ItemKindInsurance, Description: "basic cover", UnitAmountCents: 2000, Quantity: 1, Included: true},
	}
	assert.Equal(t, int64(12000), AggregateTotal(items))
}

func TestAggregateTotalOrderIndependent(t *testing.T) {
	items := []model.LineItem{
		{UnitAmountCents: 9900, Quantity: 2, Included: true},
		{UnitAmountCents: 1500, Quantity: 3, Included: true},
		{UnitAmountCents: -2500, Quantity: 1, Included: true}, // discount
		{UnitAmountCents: 7000, Quantity: 1, Included: false},
	}
	want := AggregateTotal(items)

	reversed := make([]model.LineItem, len(items))
	for i, li := range items {
		reversed[len(items)-1-i] = li
	}
	assert.Equal(t, want, AggregateTotal(reversed))
}

func TestAggregateTotalExcludedEqualsRemoved(t *testing.T) {
	withExcluded := []model.LineItem{
		{UnitAmountCents: 4200, Quantity: 1, Included: true},
		{UnitAmountCents: 100000, Quantity: 5, Included: false},
	}
	removed := withExcluded[:1]
	assert.Equal(t, AggregateTotal(removed), AggregateTotal(withExcluded))
}

func TestAggregateTotalEmpty(t *testing.T) {
	assert.Zero(t, AggregateTotal(nil))
}
