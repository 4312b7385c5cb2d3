package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagehub/reservation-checkout/internal/config"
	"github.com/voyagehub/reservation-checkout/internal/model"
)

type gateFixture struct {
	gate      *CheckoutGate
	store     *memReservations
	travelers *memTravelers
	rooms     *memRooms
	notifier  *recordingNotifier
}

func newGateFixture(res model.Reservation, selection []model.RoomAssignment, seed ...model.Traveler) *gateFixture {
	store := newMemReservations(res)
	travelers := newMemTravelers(seed...)
	roomStore := &memRooms{rooms: selection}
	notifier := &recordingNotifier{}

	g := NewCheckoutGate(
		NewTravelerReconciler(travelers, store),
		travelers,
		roomStore,
		NewRoomValidator(),
		NewStatusMachine(statusTable{}, store),
		store,
		notifier,
		config.CheckoutConfig{GraceWait: 250 * time.Millisecond},
	)
	g.wait = func(time.Duration) {} // no real sleeping in tests

	return &gateFixture{gate: g, store: store, travelers: travelers, rooms: roomStore, notifier: notifier}
}

func TestCanAdvanceHappyPath(t *testing.T) {
	f := newGateFixture(interestReservation(1), rooms("DOUBLE", 1, "SINGLE", 1))

	d, err := f.gate.CanAdvance(context.Background(), 1, model.StepCustomize,
		model.TravelerCounts{Adults: 2, Children: 1})
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Reason)

	res, err := f.store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCart, res.StatusCode)
	assert.Equal(t, 3, res.TotalPassengers, "travelers are reconciled before the transition")
}

func TestCanAdvanceBlockedByCapacity(t *testing.T) {
	// Two singles sleep 2, but 4 travelers are booked.
	f := newGateFixture(interestReservation(1), rooms("SINGLE", 2))

	d, err := f.gate.CanAdvance(context.Background(), 1, model.StepCustomize,
		model.TravelerCounts{Adults: 3, Children: 1})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, "selected rooms sleep 2 travelers but 4 are booked", d.Reason)

	res, err := f.store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInterest, res.StatusCode, "a blocked step must not move the status")
	assert.Contains(t, f.notifier.codes(), "insufficient_capacity")
}

func TestCanAdvanceUnknownStepBlocks(t *testing.T) {
	f := newGateFixture(interestReservation(1), rooms("QUAD", 1))

	d, err := f.gate.CanAdvance(context.Background(), 1, model.CheckoutStep("payment"), model.TravelerCounts{Adults: 1})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "unknown checkout step")
	assert.Equal(t, 0, f.store.statusWrites)
}

func TestCanAdvanceBlockedByPartialApply(t *testing.T) {
	f := newGateFixture(interestReservation(1), rooms("FAMILY", 1))
	f.travelers.failCreates = 1

	d, err := f.gate.CanAdvance(context.Background(), 1, model.StepCustomize,
		model.TravelerCounts{Adults: 2})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "traveler update incomplete")
	assert.Contains(t, f.notifier.codes(), "travelers_partial")
	assert.Equal(t, 0, f.store.statusWrites)
}

func TestCanAdvanceInvalidTransition(t *testing.T) {
	// A cancelled reservation is terminal; confirming it must be refused.
	cancelled := model.Reservation{ID: 1, StatusID: statusIDs[model.StatusCancelled], StatusCode: model.StatusCancelled}
	f := newGateFixture(cancelled, rooms("DOUBLE", 1))

	d, err := f.gate.CanAdvance(context.Background(), 1, model.StepConfirm, model.TravelerCounts{})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Decision{}, d, "errors carry no decision; only denials populate one")
	assert.Contains(t, f.notifier.codes(), "invalid_transition")
}

func TestConfirmStepSkipsReconciliation(t *testing.T) {
	// The confirm step trusts the state frozen at PREBOOKED; no rooms and no
	// traveler counts are consulted.
	res := model.Reservation{ID: 1, StatusID: statusIDs[model.StatusPrebooked], StatusCode: model.StatusPrebooked}
	f := newGateFixture(res, nil)

	d, err := f.gate.CanAdvance(context.Background(), 1, model.StepConfirm, model.TravelerCounts{})
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	got, err := f.store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReserved, got.StatusCode)
	require.NotNil(t, got.ReservedAt)
}

func TestEnterCheckoutFiresOnce(t *testing.T) {
	f := newGateFixture(interestReservation(1), nil)

	require.NoError(t, f.gate.EnterCheckout(context.Background(), 1))
	res, err := f.store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBudget, res.StatusCode)
	writes := f.store.statusWrites

	require.NoError(t, f.gate.EnterCheckout(context.Background(), 1))
	assert.Equal(t, writes, f.store.statusWrites, "re-entering checkout is a no-op")
}
