package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voyagehub/reservation-checkout/internal/model"
	"github.com/voyagehub/reservation-checkout/internal/repository"
	"github.com/voyagehub/reservation-checkout/internal/service"
)

// TravelerHandler serves the traveler sub-resource of a reservation.
// Individual CRUD exists for manual edits on the personal-data step; the
// counts-based PUT runs the reconciler, which is the only path that may
// change how many travelers exist.
type TravelerHandler struct {
	Travelers  *repository.TravelerRepo
	Reconciler *service.TravelerReconciler
}

// NewTravelerHandler constructs a TravelerHandler. All dependencies must be
// non-nil.
func NewTravelerHandler(travelers *repository.TravelerRepo, reconciler *service.TravelerReconciler) *TravelerHandler {
	if travelers == nil || reconciler == nil {
		panic("nil dependency passed to NewTravelerHandler")
	}
	return &TravelerHandler{Travelers: travelers, Reconciler: reconciler}
}

// List handles GET /v1/reservations/:id/travelers.
func (h *TravelerHandler) List(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	travelers, err := h.Travelers.ListByReservation(c.Request().Context(), id)
	if err != nil {
		return repoError(c, err)
	}
	if travelers == nil {
		travelers = []model.Traveler{}
	}
	return c.JSON(http.StatusOK, echo.Map{"travelers": travelers})
}

// Reconcile handles PUT /v1/reservations/:id/travelers with the desired
// counts body. On a partial failure the response still carries the
// authoritative traveler list so the client can drop its optimistic state.
func (h *TravelerHandler) Reconcile(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var desired model.TravelerCounts
	if err := c.Bind(&desired); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if desired.Adults < 0 || desired.Children < 0 || desired.Infants < 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "traveler counts must not be negative"})
	}
	if desired.Total() < 1 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "at least one traveler is required"})
	}

	ctx := c.Request().Context()
	result, applyErr := h.Reconciler.Apply(ctx, id, desired)

	travelers, err := h.Travelers.ListByReservation(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	body := echo.Map{"result": result, "travelers": travelers}

	if applyErr != nil {
		var partial *service.PartialApplyError
		if errors.As(applyErr, &partial) {
			body["error"] = partial.Error()
			return c.JSON(http.StatusMultiStatus, body)
		}
		return repoError(c, applyErr)
	}
	return c.JSON(http.StatusOK, body)
}

type createTravelerRequest struct {
	AgeGroup model.AgeGroup `json:"age_group"`
}

// Create handles POST /v1/reservations/:id/travelers, a manual single-
// traveler add. The new traveler takes the next contiguous number and
// becomes lead only when the reservation has none yet.
func (h *TravelerHandler) Create(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req createTravelerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch req.AgeGroup {
	case model.AgeGroupAdult, model.AgeGroupChild, model.AgeGroupInfant:
	default:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown age group"})
	}

	ctx := c.Request().Context()
	existing, err := h.Travelers.ListByReservation(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	next := 1
	lead := true
	for _, t := range existing {
		if t.TravelerNumber >= next {
			next = t.TravelerNumber + 1
		}
		if t.IsLead {
			lead = false
		}
	}
	traveler := model.Traveler{
		ReservationID:  id,
		TravelerNumber: next,
		AgeGroup:       req.AgeGroup,
		IsLead:         lead,
	}
	if err := h.Travelers.Create(ctx, &traveler); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, traveler)
}

type updateTravelerRequest struct {
	AgeGroup model.AgeGroup `json:"age_group"`
}

// Update handles PUT /v1/reservations/:id/travelers/:travelerID. Only the
// age group may change; numbering and the lead flag belong to the
// reconciler.
func (h *TravelerHandler) Update(c echo.Context) error {
	reservationID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	travelerID, err := pathID(c, "travelerID")
	if err != nil {
		return err
	}
	var req updateTravelerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch req.AgeGroup {
	case model.AgeGroupAdult, model.AgeGroupChild, model.AgeGroupInfant:
	default:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown age group"})
	}

	ctx := c.Request().Context()
	traveler, err := h.Travelers.GetByID(ctx, travelerID)
	if err != nil {
		return repoError(c, err)
	}
	if traveler.ReservationID != reservationID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	traveler.AgeGroup = req.AgeGroup
	if err := h.Travelers.Update(ctx, traveler); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, traveler)
}

// Delete handles DELETE /v1/reservations/:id/travelers/:travelerID. The
// lead traveler is protected; reduce counts through the reconciler
// instead.
func (h *TravelerHandler) Delete(c echo.Context) error {
	reservationID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	travelerID, err := pathID(c, "travelerID")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	traveler, err := h.Travelers.GetByID(ctx, travelerID)
	if err != nil {
		return repoError(c, err)
	}
	if traveler.ReservationID != reservationID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	if traveler.IsLead {
		return c.JSON(http.StatusConflict, echo.Map{"error": "the lead traveler cannot be removed"})
	}
	if err := h.Travelers.Delete(ctx, travelerID); err != nil {
		return repoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
