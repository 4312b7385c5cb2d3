package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/voyagehub/reservation-checkout/internal/model"
)

// StatusLookup resolves reservation statuses by code.
type StatusLookup interface {
	ByCode(ctx context.Context, code model.StatusCode) (model.ReservationStatus, error)
}

// StatusWriter persists the status and milestone timestamps of an aggregate.
type StatusWriter interface {
	UpdateStatus(ctx context.Context, res *model.Reservation) error
}

// StatusMachine is the authoritative lifecycle controller for reservations.
// The regular path is INTEREST -> BUDGET -> CART -> PREBOOKED -> RESERVED;
// CANCELLED and ABANDONED are reachable from any non-terminal status, and
// CANCELLED additionally from RESERVED. All lookups go by code, never by
// numeric id.
type StatusMachine struct {
	statuses StatusLookup
	writer   StatusWriter

	mu    sync.Mutex
	fired map[string]struct{} // reservation-scoped milestone flags for MarkStatusOnce
}

// NewStatusMachine constructs a StatusMachine.
func NewStatusMachine(statuses StatusLookup, writer StatusWriter) *StatusMachine {
	return &StatusMachine{
		statuses: statuses,
		writer:   writer,
		fired:    make(map[string]struct{}),
	}
}

// milestoneFor returns the pointer to the milestone timestamp a status
// entry stamps, or nil when the status has none.
func milestoneFor(res *model.Reservation, code model.StatusCode) **time.Time {
	switch code {
	case model.StatusBudget:
		return &res.BudgetedAt
	case model.StatusCart:
		return &res.CartAt
	case model.StatusAbandoned:
		return &res.AbandonedAt
	case model.StatusReserved:
		return &res.ReservedAt
	}
	return nil
}

// Transition moves the reservation into the target status and persists the
// change. Entering a status is idempotent: transitioning to the current
// code is a no-op and an already-set milestone timestamp is never
// overwritten. Unknown codes and transitions out of a terminal status
// (other than into CANCELLED) fail with ErrInvalidTransition.
func (m *StatusMachine) Transition(ctx context.Context, res *model.Reservation, target model.StatusCode) error {
	status, err := m.statuses.ByCode(ctx, target)
	if err != nil {
		return fmt.Errorf("%w: unknown status code %q", ErrInvalidTransition, target)
	}

	if res.StatusCode == target {
		return nil
	}
	if res.StatusCode.Terminal() && target != model.StatusCancelled {
		return fmt.Errorf("%w: %s is terminal, cannot enter %s", ErrInvalidTransition, res.StatusCode, target)
	}

	res.StatusID = status.ID
	res.StatusCode = status.Code
	if slot := milestoneFor(res, target); slot != nil && *slot == nil {
		now := time.Now().UTC()
		*slot = &now
	}
	if err := m.writer.UpdateStatus(ctx, res); err != nil {
		return fmt.Errorf("persist status %s for reservation %d: %w", target, res.ID, err)
	}
	return nil
}

// MarkStatusOnce transitions the reservation into the given status the
// first time it is called for that reservation/code pair within this
// process; later calls are no-ops returning false. The checkout uses it to
// push a reservation into BUDGET on first view only, not on every
// navigation.
func (m *StatusMachine) MarkStatusOnce(ctx context.Context, res *model.Reservation, code model.StatusCode) (bool, error) {
	key := fmt.Sprintf("%d:%s", res.ID, code)

	m.mu.Lock()
	if _, done := m.fired[key]; done {
		m.mu.Unlock()
		return false, nil
	}
	m.fired[key] = struct{}{}
	m.mu.Unlock()

	if err := m.Transition(ctx, res, code); err != nil {
		// Allow a retry after a failed first attempt.
		m.mu.Lock()
		delete(m.fired, key)
		m.mu.Unlock()
		return false, err
	}
	return true, nil
}
