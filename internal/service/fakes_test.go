package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/voyagehub/reservation-checkout/internal/model"
	"github.com/voyagehub/reservation-checkout/internal/queue"
	"github.com/voyagehub/reservation-checkout/internal/repository"
)

// statusTable resolves codes against a fixed in-memory lookup with
// arbitrary ids, the way a seeded reservation_statuses table would.
type statusTable struct{}

var statusIDs = map[model.StatusCode]uint64{
	model.StatusInterest:  11,
	model.StatusBudget:    12,
	model.StatusCart:      13,
	model.StatusPrebooked: 14,
	model.StatusReserved:  15,
	model.StatusCancelled: 16,
	model.StatusAbandoned: 17,
}

func (statusTable) ByCode(_ context.Context, code model.StatusCode) (model.ReservationStatus, error) {
	id, ok := statusIDs[code]
	if !ok {
		return model.ReservationStatus{}, fmt.Errorf("status %q: %w", code, repository.ErrNotFound)
	}
	return model.ReservationStatus{ID: id, Code: code, Name: string(code)}, nil
}

// memReservations is an in-memory reservation store covering every
// persistence surface the services need.
type memReservations struct {
	mu   sync.Mutex
	byID map[uint64]model.Reservation

	statusWrites int
}

func newMemReservations(seed ...model.Reservation) *memReservations {
	m := &memReservations{byID: map[uint64]model.Reservation{}}
	for _, r := range seed {
		m.byID[r.ID] = r
	}
	return m
}

func (m *memReservations) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("reservation %d: %w", id, repository.ErrNotFound)
	}
	out := r
	return &out, nil
}

func (m *memReservations) UpdateStatus(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[res.ID]; !ok {
		return fmt.Errorf("reservation %d: %w", res.ID, repository.ErrNotFound)
	}
	m.byID[res.ID] = *res
	m.statusWrites++
	return nil
}

func (m *memReservations) SetExternalRef(_ context.Context, id uint64, tkID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("reservation %d: %w", id, repository.ErrNotFound)
	}
	if r.TkID != nil {
		return fmt.Errorf("reservation %d: %w", id, repository.ErrConflict)
	}
	r.TkID = &tkID
	m.byID[id] = r
	return nil
}

func (m *memReservations) UpdateTotalPassengers(_ context.Context, id uint64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("reservation %d: %w", id, repository.ErrNotFound)
	}
	r.TotalPassengers = count
	m.byID[id] = r
	return nil
}

// memTravelers is an in-memory traveler store with optional failure
// injection for partial-apply tests.
type memTravelers struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.Traveler

	failCreates int // fail this many creates before succeeding again
	failDeletes int
}

func newMemTravelers(seed ...model.Traveler) *memTravelers {
	m := &memTravelers{rows: map[uint64]model.Traveler{}, nextID: 1}
	for _, t := range seed {
		if t.ID == 0 {
			t.ID = m.nextID
		}
		m.rows[t.ID] = t
		if t.ID >= m.nextID {
			m.nextID = t.ID + 1
		}
	}
	return m
}

func (m *memTravelers) ListByReservation(_ context.Context, reservationID uint64) ([]model.Traveler, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Traveler
	for _, t := range m.rows {
		if t.ReservationID == reservationID {
			out = append(out, t)
		}
	}
	// callers expect traveler-number order
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].TravelerNumber < out[i].TravelerNumber {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *memTravelers) Create(_ context.Context, t *model.Traveler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreates > 0 {
		m.failCreates--
		return errors.New("injected create failure")
	}
	t.ID = m.nextID
	m.nextID++
	m.rows[t.ID] = *t
	return nil
}

func (m *memTravelers) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeletes > 0 {
		m.failDeletes--
		return errors.New("injected delete failure")
	}
	if _, ok := m.rows[id]; !ok {
		return fmt.Errorf("traveler %d: %w", id, repository.ErrNotFound)
	}
	delete(m.rows, id)
	return nil
}

// memRooms serves a fixed room selection.
type memRooms struct {
	rooms []model.RoomAssignment
}

func (m *memRooms) ListByReservation(context.Context, uint64) ([]model.RoomAssignment, error) {
	return m.rooms, nil
}

// recordingNotifier captures emitted notifications.
type recordingNotifier struct {
	mu     sync.Mutex
	events []queue.NotificationEvent
}

func (n *recordingNotifier) Notify(_ context.Context, reservationID uint64, sev queue.Severity, code, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, queue.NotificationEvent{
		ReservationID: reservationID,
		Severity:      sev,
		Code:          code,
		Message:       message,
	})
	return nil
}

func (n *recordingNotifier) codes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Code)
	}
	return out
}

// scriptedDesk plays back a fixed sequence of job states. Reading past the
// end keeps returning the final state.
type scriptedDesk struct {
	mu       sync.Mutex
	jobID    string
	states   []model.JobState
	errAt    map[int]error // 1-based probe index -> transport error
	probes   int
	accepted bool

	enqueueErr error
	enqueues   int
}

func (d *scriptedDesk) EnqueueSync(context.Context, uint64) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enqueues++
	if d.enqueueErr != nil {
		return "", d.enqueueErr
	}
	return d.jobID, nil
}

func (d *scriptedDesk) JobState(context.Context, string) (model.JobState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.probes++
	if err, ok := d.errAt[d.probes]; ok {
		return "", err
	}
	idx := d.probes - 1
	if idx >= len(d.states) {
		idx = len(d.states) - 1
	}
	return d.states[idx], nil
}

func (d *scriptedDesk) EnqueueReverseSync(context.Context, string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accepted, nil
}

func (d *scriptedDesk) probeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.probes
}

func strPtr(s string) *string { return &s }
