package repository

import (
	"context"
	"database/sql"

	"github.com/voyagehub/reservation-checkout/internal/model"
)

// RoomAssignmentRepo persists the room selection of a reservation. The
// selection is always replaced as a whole; the customize step edits it as
// one unit and partial room updates have no meaning.
type RoomAssignmentRepo struct {
	db *sql.DB
}

// NewRoomAssignmentRepo returns a new RoomAssignmentRepo bound to the given database.
func NewRoomAssignmentRepo(db *sql.DB) *RoomAssignmentRepo { return &RoomAssignmentRepo{db: db} }

// ListByReservation returns the current room selection ordered by room type.
func (r *RoomAssignmentRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.RoomAssignment, error) {
	const q = `SELECT id, reservation_id, departure_id, room_type, quantity
		FROM room_assignments WHERE reservation_id = ? ORDER BY room_type`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []model.RoomAssignment
	for rows.Next() {
		var ra model.RoomAssignment
		if err := rows.Scan(&ra.ID, &ra.ReservationID, &ra.DepartureID, &ra.RoomType, &ra.Quantity); err != nil {
			return nil, err
		}
		rooms = append(rooms, ra)
	}
	return rooms, rows.Err()
}

// Replace swaps the full room selection in one transaction. Passing an
// empty slice clears the selection.
func (r *RoomAssignmentRepo) Replace(ctx context.Context, reservationID uint64, rooms []model.RoomAssignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM room_assignments WHERE reservation_id = ?`, reservationID); err != nil {
		return err
	}
	if len(rooms) > 0 {
		query := `INSERT INTO room_assignments (reservation_id, departure_id, room_type, quantity) VALUES `
		args := make([]interface{}, 0, len(rooms)*4)
		for i, ra := range rooms {
			if i > 0 {
				query += ", "
			}
			query += "(?, ?, ?, ?)"
			args = append(args, reservationID, ra.DepartureID, ra.RoomType, ra.Quantity)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}
