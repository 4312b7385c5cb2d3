package model

// RoomAssignment maps a room type to a quantity for one reservation on one
// departure.  The sum of room capacities must cover the traveler count
// before the reservation may leave the customize step; that check lives in
// the service layer.
type RoomAssignment struct {
	ID            uint64 `json:"id"`
	ReservationID uint64 `json:"reservation_id"`
	DepartureID   uint64 `json:"departure_id"`
	RoomType      string `json:"room_type"` // e.g. DOUBLE
	Quantity      int    `json:"quantity"`
}
