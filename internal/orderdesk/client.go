// Package orderdesk is the HTTP client for the external order-management
// system. The order desk has no synchronous API: pushes and pulls are
// accepted as queued jobs and callers observe progress by polling job
// state. This package only translates HTTP; all orchestration (guards,
// polling cadence, timeouts) lives in the service layer.
package orderdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/voyagehub/reservation-checkout/internal/model"
)

// Client talks to the order-desk HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the given base URL. The timeout applies to each
// individual request.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// EnqueueSync asks the order desk to queue a push of the given reservation
// and returns the opaque job id it issues.
func (c *Client) EnqueueSync(ctx context.Context, reservationID uint64) (string, error) {
	var out struct {
		JobID string `json:"job_id"`
	}
	path := "/reservation-sync/" + strconv.FormatUint(reservationID, 10) + "/enqueue"
	if err := c.do(ctx, http.MethodPost, path, &out); err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", fmt.Errorf("order desk accepted sync for reservation %d but returned no job id", reservationID)
	}
	return out.JobID, nil
}

// JobState fetches the current state of a sync job. Unrecognized codes map
// to PROCESSING, never to a terminal state.
func (c *Client) JobState(ctx context.Context, jobID string) (model.JobState, error) {
	var out struct {
		State string `json:"state"`
	}
	path := "/reservation-sync/job/" + url.PathEscape(jobID)
	if err := c.do(ctx, http.MethodGet, path, &out); err != nil {
		return "", err
	}
	return model.ParseJobState(out.State), nil
}

// EnqueueReverseSync asks the order desk to queue a pull of authoritative
// data for the given external reference back into the local reservation.
// The order desk answers with a bare acceptance flag; there is no job to
// poll.
func (c *Client) EnqueueReverseSync(ctx context.Context, tkID string) (bool, error) {
	var out struct {
		Accepted bool `json:"accepted"`
	}
	path := "/reservation-sync/by-external-id/" + url.PathEscape(tkID) + "/enqueue"
	if err := c.do(ctx, http.MethodPost, path, &out); err != nil {
		return false, err
	}
	return out.Accepted, nil
}

func (c *Client) do(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("order desk: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("order desk: %s %s returned status %d", method, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("order desk: decode %s %s: %w", method, path, err)
	}
	return nil
}
