package orderdesk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagehub/reservation-checkout/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, time.Second)
}

func TestEnqueueSync(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reservation-sync/42/enqueue", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"job_id":"abc123"}`))
	}))

	jobID, err := c.EnqueueSync(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "abc123", jobID)
}

func TestEnqueueSyncRejectsEmptyJobID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))

	_, err := c.EnqueueSync(context.Background(), 42)
	assert.Error(t, err)
}

func TestJobState(t *testing.T) {
	cases := []struct {
		body string
		want model.JobState
	}{
		{`{"state":"enqueued"}`, model.JobStateEnqueued},
		{`{"state":"succeeded"}`, model.JobStateSucceeded},
		{`{"state":"shipping_labels"}`, model.JobStateProcessing},
	}
	for _, tc := range cases {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/reservation-sync/job/abc123", r.URL.Path)
			w.Write([]byte(tc.body))
		}))
		got, err := c.JobState(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "body %s", tc.body)
	}
}

func TestEnqueueReverseSync(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reservation-sync/by-external-id/TK-7/enqueue", r.URL.Path)
		w.Write([]byte(`{"accepted":true}`))
	}))

	accepted, err := c.EnqueueReverseSync(context.Background(), "TK-7")
	require.NoError(t, err)
	assert.True(t, accepted)
}

func TestNon2xxIsAnError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "queue unavailable", http.StatusBadGateway)
	}))

	_, err := c.JobState(context.Background(), "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
