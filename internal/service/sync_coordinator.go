package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/voyagehub/reservation-checkout/internal/config"
	"github.com/voyagehub/reservation-checkout/internal/model"
	"github.com/voyagehub/reservation-checkout/internal/queue"
)

// OrderDesk is the transport surface of the external order-management
// system.
type OrderDesk interface {
	EnqueueSync(ctx context.Context, reservationID uint64) (string, error)
	JobState(ctx context.Context, jobID string) (model.JobState, error)
	EnqueueReverseSync(ctx context.Context, tkID string) (bool, error)
}

// ReservationReader loads aggregates for eligibility checks.
type ReservationReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
}

// ExternalRefWriter stores the order-desk reference after a successful
// push.
type ExternalRefWriter interface {
	SetExternalRef(ctx context.Context, id uint64, tkID string) error
}

// JobSnapshot is one observed state of a sync job. Err is set only on the
// final snapshot when polling itself failed (transport error); the loop
// then reports FAILED rather than retrying indefinitely.
type JobSnapshot struct {
	JobID   string
	State   model.JobState
	Attempt int
	At      time.Time
	Err     error
}

// SyncCoordinator bridges the reservation lifecycle to the external order
// desk. Only one enqueue may be in flight per reservation; the guard is
// process-local and the order desk is expected to dedupe across processes.
type SyncCoordinator struct {
	desk         OrderDesk
	reservations ReservationReader
	refs         ExternalRefWriter
	notifier     Notifier
	cfg          config.SyncConfig

	mu       sync.Mutex
	inflight map[uint64]struct{}
}

// NewSyncCoordinator constructs a SyncCoordinator.
func NewSyncCoordinator(desk OrderDesk, reservations ReservationReader, refs ExternalRefWriter, notifier Notifier, cfg config.SyncConfig) *SyncCoordinator {
	return &SyncCoordinator{
		desk:         desk,
		reservations: reservations,
		refs:         refs,
		notifier:     notifier,
		cfg:          cfg,
		inflight:     make(map[uint64]struct{}),
	}
}

// Enqueue submits a push job for the reservation. Preconditions: status
// PREBOOKED and no external reference yet, otherwise ErrNotEligibleForSync;
// no unresolved job for the same reservation, otherwise
// ErrSyncAlreadyInProgress. The caller owns releasing the guard via
// release() once the job is resolved; Run wires that up.
func (c *SyncCoordinator) Enqueue(ctx context.Context, reservationID uint64) (string, error) {
	res, err := c.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return "", err
	}
	if res.StatusCode != model.StatusPrebooked {
		return "", fmt.Errorf("%w: reservation %d is %s, want %s", ErrNotEligibleForSync, reservationID, res.StatusCode, model.StatusPrebooked)
	}
	if res.HasExternalRef() {
		return "", fmt.Errorf("%w: reservation %d is already mirrored as %s", ErrNotEligibleForSync, reservationID, *res.TkID)
	}

	c.mu.Lock()
	if _, busy := c.inflight[reservationID]; busy {
		c.mu.Unlock()
		return "", ErrSyncAlreadyInProgress
	}
	c.inflight[reservationID] = struct{}{}
	c.mu.Unlock()

	jobID, err := c.desk.EnqueueSync(ctx, reservationID)
	if err != nil {
		c.release(reservationID)
		return "", fmt.Errorf("enqueue sync for reservation %d: %w", reservationID, err)
	}
	return jobID, nil
}

func (c *SyncCoordinator) release(reservationID uint64) {
	c.mu.Lock()
	delete(c.inflight, reservationID)
	c.mu.Unlock()
}

// PollUntilTerminal probes the job state at the configured interval,
// starting immediately, and sends every observed snapshot on the returned
// channel. The channel closes after the first terminal snapshot (which is
// still delivered), after a transport error (delivered as a FAILED
// snapshot carrying the error), after the attempt budget is exhausted
// (delivered as TIMED_OUT), or as soon as ctx is cancelled (nothing more
// is delivered). The internal ticker is always stopped before the channel
// closes; no timer outlives the loop.
func (c *SyncCoordinator) PollUntilTerminal(ctx context.Context, jobID string) <-chan JobSnapshot {
	out := make(chan JobSnapshot)
	go func() {
		defer close(out)
		ticker := time.NewTicker(c.cfg.PollInterval)
		defer ticker.Stop()

		for attempt := 1; ; attempt++ {
			if ctx.Err() != nil {
				return
			}
			state, err := c.desk.JobState(ctx, jobID)
			snap := JobSnapshot{JobID: jobID, State: state, Attempt: attempt, At: time.Now().UTC()}
			if err != nil {
				// A flaky transport must not keep the client in
				// "processing" forever.
				snap.State = model.JobStateFailed
				snap.Err = err
				deliver(ctx, out, snap)
				return
			}
			if !deliver(ctx, out, snap) {
				return
			}
			if state.Terminal() {
				return
			}
			if attempt >= c.cfg.PollMaxAttempts {
				deliver(ctx, out, JobSnapshot{
					JobID:   jobID,
					State:   model.JobStateTimedOut,
					Attempt: attempt,
					At:      time.Now().UTC(),
					Err:     fmt.Errorf("job %s still not terminal after %d probes", jobID, attempt),
				})
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}

func deliver(ctx context.Context, out chan<- JobSnapshot, snap JobSnapshot) bool {
	select {
	case out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

// Run executes enqueue plus poll-until-terminal as one logical unit for a
// reservation. It returns the job id and a channel replaying every
// observed snapshot. When the loop ends, terminal side effects are
// applied: a succeeded job stores the external reference, failures and
// timeouts emit notification events, and the per-reservation guard is
// released. Cancelling ctx stops polling without applying any side
// effects.
func (c *SyncCoordinator) Run(ctx context.Context, reservationID uint64) (string, <-chan JobSnapshot, error) {
	jobID, err := c.Enqueue(ctx, reservationID)
	if err != nil {
		return "", nil, err
	}

	out := make(chan JobSnapshot)
	go func() {
		defer close(out)
		defer c.release(reservationID)

		var last JobSnapshot
		for snap := range c.PollUntilTerminal(ctx, jobID) {
			last = snap
			if !deliver(ctx, out, snap) {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		c.resolve(ctx, reservationID, last)
	}()
	return jobID, out, nil
}

// resolve applies the side effects of the terminal snapshot.
func (c *SyncCoordinator) resolve(ctx context.Context, reservationID uint64, last JobSnapshot) {
	switch last.State {
	case model.JobStateSucceeded:
		// The order desk keys the mirrored order by the job id it issued.
		if err := c.refs.SetExternalRef(ctx, reservationID, last.JobID); err != nil {
			log.Printf("sync-coordinator: store external ref for reservation %d failed: %v", reservationID, err)
			c.notify(ctx, reservationID, queue.SeverityError, "sync_ref_store_failed",
				"reservation was mirrored but storing the reference failed")
			return
		}
		c.notify(ctx, reservationID, queue.SeveritySuccess, "sync_succeeded",
			"reservation was pushed to the order desk")
	case model.JobStateFailed, model.JobStateDeleted:
		msg := "push to the order desk failed, try again later"
		if last.Err != nil {
			msg = fmt.Sprintf("push to the order desk failed: %v", last.Err)
		}
		c.notify(ctx, reservationID, queue.SeverityError, "sync_failed", msg)
	case model.JobStateTimedOut:
		c.notify(ctx, reservationID, queue.SeverityWarn, "sync_timed_out",
			"the order desk did not finish the push in time")
	default:
		// Loop ended without a terminal snapshot (cancelled mid-delivery);
		// nothing to apply.
	}
}

// JobState exposes a single probe for the job status endpoint.
func (c *SyncCoordinator) JobState(ctx context.Context, jobID string) (model.JobState, error) {
	return c.desk.JobState(ctx, jobID)
}

// EnqueueReverseSync asks the order desk to pull authoritative data for an
// already-mirrored reservation back into the local copy. Fire-and-forget:
// only the acceptance flag comes back, there is no job to poll.
func (c *SyncCoordinator) EnqueueReverseSync(ctx context.Context, tkID string) (bool, error) {
	if tkID == "" {
		return false, fmt.Errorf("%w: no external reference", ErrNotEligibleForSync)
	}
	accepted, err := c.desk.EnqueueReverseSync(ctx, tkID)
	if err != nil {
		return false, fmt.Errorf("reverse sync for %s: %w", tkID, err)
	}
	return accepted, nil
}

func (c *SyncCoordinator) notify(ctx context.Context, reservationID uint64, sev queue.Severity, code, msg string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, reservationID, sev, code, msg); err != nil {
		log.Printf("sync-coordinator: notify %s failed: %v", code, err)
	}
}
