package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyagehub/reservation-checkout/internal/model"
	"github.com/voyagehub/reservation-checkout/internal/service"
)

// fakeSync answers the sync endpoints without touching any order desk.
type fakeSync struct {
	jobID  string
	runErr error

	state    model.JobState
	stateErr error

	accepted   bool
	reverseErr error
}

func (f *fakeSync) Run(context.Context, uint64) (string, <-chan service.JobSnapshot, error) {
	if f.runErr != nil {
		return "", nil, f.runErr
	}
	snaps := make(chan service.JobSnapshot)
	close(snaps)
	return f.jobID, snaps, nil
}

func (f *fakeSync) JobState(context.Context, string) (model.JobState, error) {
	return f.state, f.stateErr
}

func (f *fakeSync) EnqueueReverseSync(context.Context, string) (bool, error) {
	return f.accepted, f.reverseErr
}

func TestSyncEnqueueAccepted(t *testing.T) {
	h := NewSyncHandler(&fakeSync{jobID: "abc123"})

	rec := doJSON(t, h.Enqueue, http.MethodPost, "/v1/reservation-sync/1/enqueue", "", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"job_id":"abc123"}`, rec.Body.String())
}

func TestSyncEnqueueConflictWhileInFlight(t *testing.T) {
	h := NewSyncHandler(&fakeSync{runErr: service.ErrSyncAlreadyInProgress})

	rec := doJSON(t, h.Enqueue, http.MethodPost, "/v1/reservation-sync/1/enqueue", "", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSyncEnqueueNotEligible(t *testing.T) {
	h := NewSyncHandler(&fakeSync{runErr: service.ErrNotEligibleForSync})

	rec := doJSON(t, h.Enqueue, http.MethodPost, "/v1/reservation-sync/1/enqueue", "", map[string]string{"id": "1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSyncJobState(t *testing.T) {
	h := NewSyncHandler(&fakeSync{state: model.JobStateProcessing})

	rec := doJSON(t, h.JobState, http.MethodGet, "/v1/reservation-sync/job/abc123", "", map[string]string{"jobID": "abc123"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"state":"PROCESSING"}`, rec.Body.String())
}

func TestSyncJobStateDeskDown(t *testing.T) {
	h := NewSyncHandler(&fakeSync{stateErr: errors.New("dial tcp: connection refused")})

	rec := doJSON(t, h.JobState, http.MethodGet, "/v1/reservation-sync/job/abc123", "", map[string]string{"jobID": "abc123"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSyncReverseEnqueue(t *testing.T) {
	h := NewSyncHandler(&fakeSync{accepted: true})

	rec := doJSON(t, h.ReverseEnqueue, http.MethodPost, "/v1/reservation-sync/by-external-id/TK-7/enqueue", "", map[string]string{"tkID": "TK-7"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"accepted":true}`, rec.Body.String())
}
