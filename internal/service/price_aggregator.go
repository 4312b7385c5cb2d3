package service

import "github.com/voyagehub/reservation-checkout/internal/model"

// AggregateTotal sums the included line items of a reservation summary:
// base tour price, per-traveler supplements, selected activities and
// insurance, minus discounts (stored as negative amounts). Optional items
// that are not selected carry Included=false and contribute zero. The
// reduction is order-independent and touches no external state.
func AggregateTotal(items []model.LineItem) int64 {
	var total int64
	for _, li := range items {
		if !li.Included {
			continue
		}
		total += li.TotalCents()
	}
	return total
}
