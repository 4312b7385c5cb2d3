package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/voyagehub/reservation-checkout/internal/config"
	"github.com/voyagehub/reservation-checkout/internal/model"
	"github.com/voyagehub/reservation-checkout/internal/queue"
)

// RoomReader loads the persisted room selection of a reservation.
type RoomReader interface {
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.RoomAssignment, error)
}

// TravelerReader loads the persisted travelers of a reservation.
type TravelerReader interface {
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.Traveler, error)
}

// Decision is the outcome of a step-advance request. Reason is a
// human-readable blocking message, empty when the step is allowed.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// stepRule describes what advancing past a step requires and which status
// it enters.
type stepRule struct {
	target              model.StatusCode
	requiresConsistency bool
}

var stepRules = map[model.CheckoutStep]stepRule{
	model.StepCustomize: {target: model.StatusCart, requiresConsistency: true},
	model.StepTravelers: {target: model.StatusPrebooked, requiresConsistency: true},
	model.StepConfirm:   {target: model.StatusReserved},
}

// CheckoutGate decides whether the shopper may advance from one checkout
// step to the next. It is the single writer for traveler/room state and
// status transitions during checkout: every other component requests
// changes through it. Sub-steps of one CanAdvance call run strictly
// sequentially, and ambiguous state always resolves to "blocked".
type CheckoutGate struct {
	reconciler   *TravelerReconciler
	travelers    TravelerReader
	rooms        RoomReader
	validator    *RoomValidator
	machine      *StatusMachine
	reservations ReservationReader
	notifier     Notifier
	graceWait    time.Duration
	wait         func(time.Duration) // test seam; defaults to time.Sleep
}

// NewCheckoutGate constructs a CheckoutGate.
func NewCheckoutGate(
	reconciler *TravelerReconciler,
	travelers TravelerReader,
	rooms RoomReader,
	validator *RoomValidator,
	machine *StatusMachine,
	reservations ReservationReader,
	notifier Notifier,
	cfg config.CheckoutConfig,
) *CheckoutGate {
	return &CheckoutGate{
		reconciler:   reconciler,
		travelers:    travelers,
		rooms:        rooms,
		validator:    validator,
		machine:      machine,
		reservations: reservations,
		notifier:     notifier,
		graceWait:    cfg.GraceWait,
		wait:         time.Sleep,
	}
}

// EnterCheckout pushes the reservation into BUDGET the first time the
// checkout is opened for it; later calls are no-ops.
func (g *CheckoutGate) EnterCheckout(ctx context.Context, reservationID uint64) error {
	res, err := g.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	_, err = g.machine.MarkStatusOnce(ctx, res, model.StatusBudget)
	return err
}

// CanAdvance runs the step's checks in order: reconcile travelers, wait out
// the write grace period, re-read the authoritative state, verify room
// capacity, and only then request the status transition. A blocked step
// never mutates status. The returned Decision carries the blocking reason;
// a non-nil error means the operation itself failed rather than being
// denied.
func (g *CheckoutGate) CanAdvance(ctx context.Context, reservationID uint64, step model.CheckoutStep, desired model.TravelerCounts) (Decision, error) {
	rule, known := stepRules[step]
	if !known {
		// Unknown defaults to blocked, not allowed.
		return Decision{Reason: fmt.Sprintf("unknown checkout step %q", step)}, nil
	}

	if rule.requiresConsistency {
		if blocked, d, err := g.ensureConsistent(ctx, reservationID, desired); blocked || err != nil {
			return d, err
		}
	}

	res, err := g.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return Decision{}, err
	}
	if err := g.machine.Transition(ctx, res, rule.target); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			g.notify(ctx, reservationID, queue.SeverityError, "invalid_transition", err.Error())
		}
		return Decision{}, err
	}
	return Decision{Allowed: true}, nil
}

// ensureConsistent reconciles the traveler rows against the desired counts
// and validates room capacity against the re-read state. blocked=true means
// the decision is final and the caller must not transition.
func (g *CheckoutGate) ensureConsistent(ctx context.Context, reservationID uint64, desired model.TravelerCounts) (bool, Decision, error) {
	if _, err := g.reconciler.Apply(ctx, reservationID, desired); err != nil {
		var partial *PartialApplyError
		if errors.As(err, &partial) {
			reason := fmt.Sprintf("traveler update incomplete: %d of %d changes failed", partial.Failed, partial.Applied+partial.Failed)
			g.notify(ctx, reservationID, queue.SeverityWarn, "travelers_partial", reason)
			return true, Decision{Reason: reason}, nil
		}
		return true, Decision{}, err
	}

	// Give the just-issued writes a moment to settle before re-reading.
	if g.graceWait > 0 {
		g.wait(g.graceWait)
	}

	travelers, err := g.travelers.ListByReservation(ctx, reservationID)
	if err != nil {
		return true, Decision{}, err
	}
	rooms, err := g.rooms.ListByReservation(ctx, reservationID)
	if err != nil {
		return true, Decision{}, err
	}

	if !g.validator.HasSufficientCapacity(rooms, len(travelers)) {
		reason := fmt.Sprintf("selected rooms sleep %d travelers but %d are booked",
			g.validator.Capacity(rooms), len(travelers))
		g.notify(ctx, reservationID, queue.SeverityWarn, "insufficient_capacity", reason)
		return true, Decision{Reason: reason}, nil
	}
	return false, Decision{}, nil
}

func (g *CheckoutGate) notify(ctx context.Context, reservationID uint64, sev queue.Severity, code, msg string) {
	if g.notifier == nil {
		return
	}
	if err := g.notifier.Notify(ctx, reservationID, sev, code, msg); err != nil {
		log.Printf("checkout-gate: notify %s failed: %v", code, err)
	}
}
