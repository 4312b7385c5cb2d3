package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/voyagehub/reservation-checkout/internal/model"
)

// TravelerRepo provides CRUD operations on the travelers owned by a
// reservation. Traveler numbers are ordinal and contiguous; keeping them
// that way is the reconciler's job, the repository only persists what it is
// told.
type TravelerRepo struct {
	db *sql.DB
}

// NewTravelerRepo returns a new TravelerRepo bound to the given database.
func NewTravelerRepo(db *sql.DB) *TravelerRepo { return &TravelerRepo{db: db} }

// ListByReservation returns all travelers of a reservation ordered by
// traveler number.
func (r *TravelerRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Traveler, error) {
	const q = `SELECT id, reservation_id, traveler_number, age_group, is_lead, created_at
		FROM travelers WHERE reservation_id = ? ORDER BY traveler_number`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var travelers []model.Traveler
	for rows.Next() {
		var t model.Traveler
		if err := rows.Scan(&t.ID, &t.ReservationID, &t.TravelerNumber, &t.AgeGroup, &t.IsLead, &t.CreatedAt); err != nil {
			return nil, err
		}
		travelers = append(travelers, t)
	}
	return travelers, rows.Err()
}

// GetByID loads a single traveler. Missing rows yield ErrNotFound.
func (r *TravelerRepo) GetByID(ctx context.Context, id uint64) (*model.Traveler, error) {
	const q = `SELECT id, reservation_id, traveler_number, age_group, is_lead, created_at
		FROM travelers WHERE id = ?`
	var t model.Traveler
	err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.ReservationID, &t.TravelerNumber, &t.AgeGroup, &t.IsLead, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("traveler %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a traveler and populates the generated id.
func (r *TravelerRepo) Create(ctx context.Context, t *model.Traveler) error {
	const q = `INSERT INTO travelers (reservation_id, traveler_number, age_group, is_lead) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, t.ReservationID, t.TravelerNumber, t.AgeGroup, t.IsLead)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// Update persists a traveler's age group. Number and lead flag are managed
// exclusively by the reconciler and never change through this method.
func (r *TravelerRepo) Update(ctx context.Context, t *model.Traveler) error {
	const q = `UPDATE travelers SET age_group = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, t.AgeGroup, t.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("traveler %d: %w", t.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a traveler by id.
func (r *TravelerRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM travelers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("traveler %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountByReservation returns the number of persisted travelers.
func (r *TravelerRepo) CountByReservation(ctx context.Context, reservationID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM travelers WHERE reservation_id = ?`, reservationID).Scan(&n)
	return n, err
}
