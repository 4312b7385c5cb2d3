package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/voyagehub/reservation-checkout/internal/model"
)

// StatusRepo resolves reservation statuses. Statuses are looked up by code
// because the numeric ids differ between environments; resolved rows are
// cached for the lifetime of the process since the lookup table is static.
type StatusRepo struct {
	db *sql.DB

	mu     sync.RWMutex
	byCode map[model.StatusCode]model.ReservationStatus
}

// NewStatusRepo returns a new StatusRepo bound to the given database.
func NewStatusRepo(db *sql.DB) *StatusRepo {
	return &StatusRepo{db: db, byCode: make(map[model.StatusCode]model.ReservationStatus)}
}

// ByCode resolves a status by its stable code. Unknown codes yield
// ErrNotFound.
func (r *StatusRepo) ByCode(ctx context.Context, code model.StatusCode) (model.ReservationStatus, error) {
	r.mu.RLock()
	if st, ok := r.byCode[code]; ok {
		r.mu.RUnlock()
		return st, nil
	}
	r.mu.RUnlock()

	const q = `SELECT id, code, name FROM reservation_statuses WHERE code = ?`
	var st model.ReservationStatus
	err := r.db.QueryRowContext(ctx, q, string(code)).Scan(&st.ID, &st.Code, &st.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReservationStatus{}, fmt.Errorf("status %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return model.ReservationStatus{}, err
	}

	r.mu.Lock()
	r.byCode[code] = st
	r.mu.Unlock()
	return st, nil
}
