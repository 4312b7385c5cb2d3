package model

import "time"

// StatusCode identifies a reservation lifecycle status by its stable code.
// Numeric status ids differ between environments, so all comparisons and
// transition lookups go through codes; ids are only resolved at the
// persistence boundary.
type StatusCode string

const (
	StatusInterest  StatusCode = "INTEREST"
	StatusBudget    StatusCode = "BUDGET"
	StatusCart      StatusCode = "CART"
	StatusPrebooked StatusCode = "PREBOOKED"
	StatusReserved  StatusCode = "RESERVED"
	StatusCancelled StatusCode = "CANCELLED"
	StatusAbandoned StatusCode = "ABANDONED"
)

// Terminal reports whether no further transition except cancellation may
// leave this status.
func (s StatusCode) Terminal() bool {
	return s == StatusReserved || s == StatusCancelled
}

// ReservationStatus is the lookup entity backing a StatusCode.  Rows live in
// the reservation_statuses table and their ids are environment-specific.
type ReservationStatus struct {
	ID   uint64     // reservation_statuses.id
	Code StatusCode // reservation_statuses.code
	Name string     // reservation_statuses.name
}

// Reservation is the central aggregate: one shopper's in-progress or
// completed booking of a tour departure.  It exclusively owns its Travelers
// and RoomAssignments.  TkID is the external order-desk reference and is
// assigned exactly once, after the first successful sync.
//
// The four milestone timestamps are write-once: entering a status a second
// time never overwrites an already-set milestone.
type Reservation struct {
	ID               uint64     // reservations.id
	TkID             *string    // reservations.tk_id (nullable until mirrored)
	StatusID         uint64     // reservations.status_id
	StatusCode       StatusCode // joined from reservation_statuses.code
	RetailerID       uint64     // reservations.retailer_id
	TourID           uint64     // reservations.tour_id
	DepartureID      uint64     // reservations.departure_id
	UserID           *uint64    // reservations.user_id (nullable until login)
	TotalPassengers  int        // reservations.total_passengers
	TotalAmountCents int64      // reservations.total_amount_cents
	BudgetedAt       *time.Time // reservations.budgeted_at
	CartAt           *time.Time // reservations.cart_at
	AbandonedAt      *time.Time // reservations.abandoned_at
	ReservedAt       *time.Time // reservations.reserved_at
	CreatedAt        time.Time  // reservations.created_at
	UpdatedAt        time.Time  // reservations.updated_at
}

// HasExternalRef reports whether the reservation has already been mirrored
// into the external order-management system.
func (r *Reservation) HasExternalRef() bool {
	return r.TkID != nil && *r.TkID != ""
}
