package service

import "github.com/voyagehub/reservation-checkout/internal/model"

// defaultRoomCapacities maps room type codes to the number of travelers a
// single room of that type sleeps.
var defaultRoomCapacities = map[string]int{
	"SINGLE": 1,
	"DOUBLE": 2,
	"TRIPLE": 3,
	"QUAD":   4,
	"FAMILY": 5,
}

// RoomValidator checks that a room selection can host the travelers of a
// reservation and detects unsaved selection edits. Both operations are
// pure; the validator holds no mutable state.
type RoomValidator struct {
	capacities map[string]int
}

// NewRoomValidator returns a validator with the standard capacity table.
func NewRoomValidator() *RoomValidator {
	return &RoomValidator{capacities: defaultRoomCapacities}
}

// Capacity returns the total number of travelers the selection sleeps.
// Unknown room types count as zero capacity, which can only make the check
// stricter.
func (v *RoomValidator) Capacity(rooms []model.RoomAssignment) int {
	total := 0
	for _, ra := range rooms {
		total += v.capacities[ra.RoomType] * ra.Quantity
	}
	return total
}

// HasSufficientCapacity reports whether the selection sleeps at least
// totalTravelers.
func (v *RoomValidator) HasSufficientCapacity(rooms []model.RoomAssignment, totalTravelers int) bool {
	return v.Capacity(rooms) >= totalTravelers
}

// HasUnsavedChanges reports whether the current selection differs
// structurally from the persisted one, ignoring row ids and ordering. A
// save round-trip is only required when this returns true.
func (v *RoomValidator) HasUnsavedChanges(current, original []model.RoomAssignment) bool {
	return !sameSelection(current, original)
}

func sameSelection(a, b []model.RoomAssignment) bool {
	qty := func(rooms []model.RoomAssignment) map[string]int {
		m := map[string]int{}
		for _, ra := range rooms {
			if ra.Quantity != 0 {
				m[ra.RoomType] += ra.Quantity
			}
		}
		return m
	}
	qa, qb := qty(a), qty(b)
	if len(qa) != len(qb) {
		return false
	}
	for t, n := range qa {
		if qb[t] != n {
			return false
		}
	}
	return true
}
