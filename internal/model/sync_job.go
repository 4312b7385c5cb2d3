package model

import "strings"

// JobState is the client-observed state of one sync job in the external
// order-management system.  The external system reports lowercase codes;
// TIMED_OUT is synthesized locally when polling gives up and is never
// reported by the external system itself.
type JobState string

const (
	JobStateEnqueued   JobState = "ENQUEUED"
	JobStateProcessing JobState = "PROCESSING"
	JobStateSucceeded  JobState = "SUCCEEDED"
	JobStateFailed     JobState = "FAILED"
	JobStateDeleted    JobState = "DELETED"
	JobStateTimedOut   JobState = "TIMED_OUT"
)

// Terminal reports whether no further job state change can follow.
func (s JobState) Terminal() bool {
	switch s {
	case JobStateSucceeded, JobStateFailed, JobStateDeleted, JobStateTimedOut:
		return true
	}
	return false
}

// ParseJobState maps an external state code onto a JobState.  Unrecognized
// intermediate codes default to PROCESSING: the coordinator never invents a
// terminal state the external system did not report.
func ParseJobState(raw string) JobState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "enqueued":
		return JobStateEnqueued
	case "succeeded":
		return JobStateSucceeded
	case "failed":
		return JobStateFailed
	case "deleted":
		return JobStateDeleted
	default:
		return JobStateProcessing
	}
}

// SyncJob describes one in-flight or completed push to the external system.
// It is never persisted locally; its truth lives in the external queue and
// only the resulting TkID survives on the reservation.
type SyncJob struct {
	ID            string   // opaque id issued by the external queue
	ReservationID uint64   // owning reservation
	State         JobState // last observed state
}
