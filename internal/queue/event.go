// Package queue defines the message payloads exchanged over the broker and
// the background consumer that turns notification events into log lines.
package queue

// Severity grades a notification the way the storefront renders toasts.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
)

// NotificationEvent is published whenever the checkout core has something
// the shopper must see: a blocked step, a sync outcome, a partial
// reconciliation failure. Failures are never silent; every one of them
// becomes exactly one event. Downstream consumers log, notify or feed
// analytics without querying the primary database.
type NotificationEvent struct {
	ID            string   `json:"id"`
	ReservationID uint64   `json:"reservation_id"`
	Severity      Severity `json:"severity"`
	Code          string   `json:"code"`
	Message       string   `json:"message"`
	EmittedAt     string   `json:"emitted_at"`
}
