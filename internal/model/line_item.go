package model

// Line item kinds as stored in reservation_items.kind.  A discount row
// carries a negative unit amount already converted to an absolute value by
// the discount component.
const (
	ItemKindBase       = "BASE"
	ItemKindSupplement = "SUPPLEMENT"
	ItemKindActivity   = "ACTIVITY"
	ItemKindInsurance  = "INSURANCE"
	ItemKindDiscount   = "DISCOUNT"
)

// LineItem is a priced component of a reservation summary: the base tour
// price, a per-traveler supplement, an optional activity, insurance or a
// discount.  Items with Included=false are part of the offer but not
// selected, and contribute zero to the total.
type LineItem struct {
	Kind            string `json:"kind"`
	Description     string `json:"description"`
	UnitAmountCents int64  `json:"unit_amount_cents"`
	Quantity        int    `json:"quantity"`
	Included        bool   `json:"included"`
}

// TotalCents returns the line total regardless of the inclusion flag.
func (li LineItem) TotalCents() int64 {
	return li.UnitAmountCents * int64(li.Quantity)
}
