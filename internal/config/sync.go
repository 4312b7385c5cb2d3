package config

import "time"

// SyncConfig tunes the bridge to the external order-management system.
// PollInterval and PollMaxAttempts bound the polling loop: the first probe
// fires immediately, then one probe per interval until a terminal state is
// observed or the attempt budget is exhausted, at which point the job is
// reported as timed out rather than left polling forever.
type SyncConfig struct {
	BaseURL         string        // base URL of the order-desk HTTP API
	RequestTimeout  time.Duration // per-request timeout for order-desk calls
	PollInterval    time.Duration // delay between job state probes
	PollMaxAttempts int           // maximum number of probes before giving up
}

// LoadSyncConfig reads sync tuning from environment variables, applying
// defaults when unset.
func LoadSyncConfig() SyncConfig {
	cfg := SyncConfig{
		BaseURL:         getenv("ORDERDESK_BASE_URL", "http://localhost:9090"),
		RequestTimeout:  envDur("ORDERDESK_TIMEOUT", 10*time.Second),
		PollInterval:    envDur("SYNC_POLL_INTERVAL", 3*time.Second),
		PollMaxAttempts: envInt("SYNC_POLL_MAX_ATTEMPTS", 60),
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.PollMaxAttempts < 1 {
		cfg.PollMaxAttempts = 1
	}
	return cfg
}

// CheckoutConfig tunes the checkout step gate.
type CheckoutConfig struct {
	// GraceWait is how long the gate waits after issuing traveler/room
	// writes before re-reading, to let just-issued writes settle.
	GraceWait time.Duration
}

// LoadCheckoutConfig reads checkout tuning from environment variables.
func LoadCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{
		GraceWait: envDur("CHECKOUT_GRACE_WAIT", 300*time.Millisecond),
	}
}
