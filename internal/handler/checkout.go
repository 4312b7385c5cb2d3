package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voyagehub/reservation-checkout/internal/model"
	"github.com/voyagehub/reservation-checkout/internal/service"
)

// StepGate is the checkout orchestration surface the handler needs.
type StepGate interface {
	EnterCheckout(ctx context.Context, reservationID uint64) error
	CanAdvance(ctx context.Context, reservationID uint64, step model.CheckoutStep, desired model.TravelerCounts) (service.Decision, error)
}

// CheckoutHandler serves the step-transition endpoints. It is a thin
// transport shell: the gate owns every decision.
type CheckoutHandler struct {
	Gate StepGate
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(gate StepGate) *CheckoutHandler {
	if gate == nil {
		panic("nil gate passed to NewCheckoutHandler")
	}
	return &CheckoutHandler{Gate: gate}
}

// Enter handles POST /v1/reservations/:id/checkout. The first call pushes
// the reservation into BUDGET; navigating back into checkout later changes
// nothing.
func (h *CheckoutHandler) Enter(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Gate.EnterCheckout(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrInvalidTransition) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return repoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type advanceRequest struct {
	Step     model.CheckoutStep `json:"step"`
	Adults   int                `json:"adults"`
	Children int                `json:"children"`
	Infants  int                `json:"infants"`
}

// Advance handles POST /v1/reservations/:id/advance. The response always
// carries the gate's decision; a blocked step is a regular 200 with
// allowed=false, while an invalid transition is a 409 because retrying the
// same request cannot succeed.
func (h *CheckoutHandler) Advance(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req advanceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	desired := model.TravelerCounts{Adults: req.Adults, Children: req.Children, Infants: req.Infants}
	decision, err := h.Gate.CanAdvance(c.Request().Context(), id, req.Step, desired)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTransition) {
			return c.JSON(http.StatusConflict, echo.Map{"allowed": false, "reason": err.Error()})
		}
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, decision)
}
