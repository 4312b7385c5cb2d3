package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voyagehub/reservation-checkout/internal/model"
	"github.com/voyagehub/reservation-checkout/internal/service"
)

// SyncService is the coordinator surface the sync endpoints need.
type SyncService interface {
	Run(ctx context.Context, reservationID uint64) (string, <-chan service.JobSnapshot, error)
	JobState(ctx context.Context, jobID string) (model.JobState, error)
	EnqueueReverseSync(ctx context.Context, tkID string) (bool, error)
}

// SyncHandler serves the order-desk synchronization endpoints.
type SyncHandler struct {
	Sync SyncService
}

// NewSyncHandler constructs a SyncHandler.
func NewSyncHandler(sync SyncService) *SyncHandler {
	if sync == nil {
		panic("nil sync service passed to NewSyncHandler")
	}
	return &SyncHandler{Sync: sync}
}

// Enqueue handles POST /v1/reservation-sync/:id/enqueue. The job is
// accepted and polled in the background; the response only carries the job
// id. Polling continues after the HTTP request ends, so the loop runs on a
// context detached from the request's cancellation.
func (h *SyncHandler) Enqueue(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := context.WithoutCancel(c.Request().Context())
	jobID, snapshots, err := h.Sync.Run(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSyncAlreadyInProgress):
			return c.JSON(http.StatusConflict, echo.Map{"error": "a sync for this reservation is already processing"})
		case errors.Is(err, service.ErrNotEligibleForSync):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		return repoError(c, err)
	}

	// Drain in the background; the coordinator applies terminal side
	// effects itself.
	go func() {
		for range snapshots {
		}
	}()

	return c.JSON(http.StatusAccepted, echo.Map{"job_id": jobID})
}

// JobState handles GET /v1/reservation-sync/job/:jobID with a single
// probe against the order desk.
func (h *SyncHandler) JobState(c echo.Context) error {
	jobID := c.Param("jobID")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid jobID"})
	}
	state, err := h.Sync.JobState(c.Request().Context(), jobID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "order desk unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"state": state})
}

// ReverseEnqueue handles POST /v1/reservation-sync/by-external-id/:tkID/enqueue,
// the pull direction. Fire-and-forget: only the acceptance flag is
// returned.
func (h *SyncHandler) ReverseEnqueue(c echo.Context) error {
	tkID := c.Param("tkID")
	if tkID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tkID"})
	}
	accepted, err := h.Sync.EnqueueReverseSync(c.Request().Context(), tkID)
	if err != nil {
		if errors.Is(err, service.ErrNotEligibleForSync) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "order desk unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"accepted": accepted})
}
