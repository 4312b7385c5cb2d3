package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/voyagehub/reservation-checkout/internal/model"
)

// ReservationRepo provides CRUD operations for the reservation aggregate
// and its summary projection. All timestamp columns are assumed to be
// stored in UTC. Status codes are always read through a JOIN on
// reservation_statuses so callers never see a bare numeric status id.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `r.id, r.tk_id, r.status_id, s.code, r.retailer_id, r.tour_id,
	r.departure_id, r.user_id, r.total_passengers, r.total_amount_cents,
	r.budgeted_at, r.cart_at, r.abandoned_at, r.reserved_at, r.created_at, r.updated_at`

// Create inserts a new reservation and populates the generated id plus the
// timestamps assigned by the database. The caller must have resolved the
// status id beforehand.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
		(status_id, retailer_id, tour_id, departure_id, user_id, total_passengers, total_amount_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.StatusID, res.RetailerID, res.TourID, res.DepartureID,
		nullableID(res.UserID), res.TotalPassengers, res.TotalAmountCents,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	fresh, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = *fresh
	return nil
}

// GetByID loads the full aggregate row, including the status code resolved
// through the lookup table. Missing rows yield ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + `
		FROM reservations r JOIN reservation_statuses s ON s.id = r.status_id
		WHERE r.id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Update applies a full reservation update: retailer, tour, departure,
// owning user and totals. Status and milestone timestamps are deliberately
// excluded; those only change through UpdateStatus.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations
		SET retailer_id = ?, tour_id = ?, departure_id = ?, user_id = ?,
		    total_passengers = ?, total_amount_cents = ?, updated_at = UTC_TIMESTAMP()
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q,
		res.RetailerID, res.TourID, res.DepartureID, nullableID(res.UserID),
		res.TotalPassengers, res.TotalAmountCents, res.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result, res.ID)
}

// UpdateStatus persists the status id and the four milestone timestamps of
// the aggregate as currently held in memory. The status machine is the only
// caller; it guarantees milestones are write-once.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations
		SET status_id = ?, budgeted_at = ?, cart_at = ?, abandoned_at = ?, reserved_at = ?,
		    updated_at = UTC_TIMESTAMP()
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q,
		res.StatusID, res.BudgetedAt, res.CartAt, res.AbandonedAt, res.ReservedAt, res.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result, res.ID)
}

// SetExternalRef assigns the external order-desk reference exactly once.
// A reservation that already carries a tk_id yields ErrConflict.
func (r *ReservationRepo) SetExternalRef(ctx context.Context, id uint64, tkID string) error {
	const q = `UPDATE reservations SET tk_id = ?, updated_at = UTC_TIMESTAMP()
		WHERE id = ? AND tk_id IS NULL`
	result, err := r.db.ExecContext(ctx, q, tkID, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("reservation %d already has an external reference: %w", id, ErrConflict)
	}
	return nil
}

// UpdateTotalPassengers stores the authoritative traveler count after a
// reconciliation pass.
func (r *ReservationRepo) UpdateTotalPassengers(ctx context.Context, id uint64, count int) error {
	const q = `UPDATE reservations SET total_passengers = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, count, id)
	if err != nil {
		return err
	}
	return requireRow(result, id)
}

// UpdateTotalAmount stores the recomputed reservation total in cents.
func (r *ReservationRepo) UpdateTotalAmount(ctx context.Context, id uint64, cents int64) error {
	const q = `UPDATE reservations SET total_amount_cents = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, cents, id)
	if err != nil {
		return err
	}
	return requireRow(result, id)
}

// ListItems returns the line items making up the reservation summary,
// in insertion order.
func (r *ReservationRepo) ListItems(ctx context.Context, reservationID uint64) ([]model.LineItem, error) {
	const q = `SELECT kind, description, unit_amount_cents, quantity, included
		FROM reservation_items WHERE reservation_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.LineItem
	for rows.Next() {
		var li model.LineItem
		if err := rows.Scan(&li.Kind, &li.Description, &li.UnitAmountCents, &li.Quantity, &li.Included); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

// ReplaceItems swaps the full selection set of a reservation in one
// transaction. The bulk insert mirrors the current selection exactly, so
// deselected optional items are stored with included = false.
func (r *ReservationRepo) ReplaceItems(ctx context.Context, reservationID uint64, items []model.LineItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_items WHERE reservation_id = ?`, reservationID); err != nil {
		return err
	}
	if len(items) > 0 {
		query := `INSERT INTO reservation_items (reservation_id, kind, description, unit_amount_cents, quantity, included) VALUES `
		args := make([]interface{}, 0, len(items)*6)
		for i, li := range items {
			if i > 0 {
				query += ", "
			}
			query += "(?, ?, ?, ?, ?, ?)"
			args = append(args, reservationID, li.Kind, li.Description, li.UnitAmountCents, li.Quantity, li.Included)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func scanReservation(row *sql.Row) (*model.Reservation, error) {
	var res model.Reservation
	var tkID sql.NullString
	var userID sql.NullInt64
	var budgetedAt, cartAt, abandonedAt, reservedAt sql.NullTime
	err := row.Scan(
		&res.ID, &tkID, &res.StatusID, &res.StatusCode, &res.RetailerID, &res.TourID,
		&res.DepartureID, &userID, &res.TotalPassengers, &res.TotalAmountCents,
		&budgetedAt, &cartAt, &abandonedAt, &reservedAt, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tkID.Valid {
		v := tkID.String
		res.TkID = &v
	}
	if userID.Valid {
		v := uint64(userID.Int64)
		res.UserID = &v
	}
	res.BudgetedAt = timePtr(budgetedAt)
	res.CartAt = timePtr(cartAt)
	res.AbandonedAt = timePtr(abandonedAt)
	res.ReservedAt = timePtr(reservedAt)
	return &res, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullableID(id *uint64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

// requireRow maps "zero rows affected" onto ErrNotFound so callers do not
// silently update nothing.
func requireRow(result sql.Result, id uint64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	return nil
}
