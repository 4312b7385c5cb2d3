package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyagehub/reservation-checkout/internal/model"
)

func rooms(pairs ...interface{}) []model.RoomAssignment {
	var out []model.RoomAssignment
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, model.RoomAssignment{RoomType: pairs[i].(string), Quantity: pairs[i+1].(int)})
	}
	return out
}

func TestHasSufficientCapacity(t *testing.T) {
	v := NewRoomValidator()

	tests := []struct {
		name      string
		rooms     []model.RoomAssignment
		travelers int
		want      bool
	}{
		{"one double hosts two", rooms("DOUBLE", 1), 2, true},
		{"one double cannot host three", rooms("DOUBLE", 1), 3, false},
		{"mixed selection", rooms("DOUBLE", 1, "TRIPLE", 1), 5, true},
		{"unknown room type counts as zero", rooms("PENTHOUSE", 3), 1, false},
		{"no rooms, no travelers", nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.HasSufficientCapacity(tt.rooms, tt.travelers))
		})
	}
}

// Raising a quantity never lowers capacity, and dropping travelers with a
// fixed selection can only help.
func TestCapacityMonotonic(t *testing.T) {
	v := NewRoomValidator()
	base := rooms("DOUBLE", 1, "SINGLE", 1)

	for extra := 0; extra <= 4; extra++ {
		grown := rooms("DOUBLE", 1+extra, "SINGLE", 1)
		assert.GreaterOrEqual(t, v.Capacity(grown), v.Capacity(base))
	}

	for travelers := 6; travelers >= 0; travelers-- {
		if v.HasSufficientCapacity(base, travelers) {
			// once sufficient, every smaller count stays sufficient
			for smaller := travelers; smaller >= 0; smaller-- {
				assert.True(t, v.HasSufficientCapacity(base, smaller))
			}
			break
		}
	}
}

func TestHasUnsavedChanges(t *testing.T) {
	v := NewRoomValidator()

	a := rooms("DOUBLE", 2, "SINGLE", 1)
	sameDifferentOrder := rooms("SINGLE", 1, "DOUBLE", 2)
	changedQty := rooms("DOUBLE", 1, "SINGLE", 1)
	withZeroRow := rooms("DOUBLE", 2, "SINGLE", 1, "TRIPLE", 0)

	assert.False(t, v.HasUnsavedChanges(a, sameDifferentOrder))
	assert.True(t, v.HasUnsavedChanges(a, changedQty))
	assert.True(t, v.HasUnsavedChanges(a, nil))
	// zero-quantity rows are not a structural difference
	assert.False(t, v.HasUnsavedChanges(a, withZeroRow))
}
