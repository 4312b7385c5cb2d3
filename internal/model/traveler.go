package model

import "time"

// AgeGroup classifies a traveler for pricing and capacity purposes.
type AgeGroup string

const (
	AgeGroupAdult  AgeGroup = "ADULT"
	AgeGroupChild  AgeGroup = "CHILD"
	AgeGroupInfant AgeGroup = "INFANT"
)

// Traveler belongs to exactly one reservation.  TravelerNumber is ordinal
// and contiguous (1..N); exactly one traveler per reservation carries the
// lead flag and the lead is never removed by reconciliation.
type Traveler struct {
	ID             uint64    `json:"id"`
	ReservationID  uint64    `json:"reservation_id"`
	TravelerNumber int       `json:"traveler_number"`
	AgeGroup       AgeGroup  `json:"age_group"`
	IsLead         bool      `json:"is_lead"`
	CreatedAt      time.Time `json:"created_at"`
}

// TravelerCounts holds the desired traveler composition for a reservation,
// as edited on the customize step.
type TravelerCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

// Total returns the total number of travelers across all age groups.
func (c TravelerCounts) Total() int {
	return c.Adults + c.Children + c.Infants
}
