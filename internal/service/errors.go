// Package service holds the reservation checkout core: the status
// lifecycle machine, the traveler/room reconciliation logic, the price
// aggregator, the checkout step gate and the coordinator that bridges
// reservations to the external order-management system.
package service

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a status transition targets an
// unknown code or would leave a terminal status. It is fatal to the
// requested operation and never retried automatically.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrNotEligibleForSync is returned when a reservation is not in the
// PREBOOKED status or already carries an external reference.
var ErrNotEligibleForSync = errors.New("reservation not eligible for sync")

// ErrSyncAlreadyInProgress is returned when a sync job for the same
// reservation is still unresolved.
var ErrSyncAlreadyInProgress = errors.New("sync already in progress")

// PartialApplyError reports a traveler reconciliation batch in which some
// creates or deletes failed while others succeeded. Successfully applied
// siblings are not rolled back; callers must re-fetch the authoritative
// traveler list instead of trusting optimistic local state.
type PartialApplyError struct {
	Applied int // creates/deletes that went through
	Failed  int // creates/deletes that did not
}

func (e *PartialApplyError) Error() string {
	return fmt.Sprintf("traveler reconciliation partially applied: %d applied, %d failed", e.Applied, e.Failed)
}
