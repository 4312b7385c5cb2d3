package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voyagehub/reservation-checkout/internal/middleware"
	"github.com/voyagehub/reservation-checkout/internal/model"
	"github.com/voyagehub/reservation-checkout/internal/repository"
	"github.com/voyagehub/reservation-checkout/internal/service"
)

// ReservationHandler serves the reservation aggregate endpoints: create,
// fetch, full update, summary and the cancel/abandon lifecycle branches.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Statuses     *repository.StatusRepo
	Machine      *service.StatusMachine
}

// NewReservationHandler constructs a ReservationHandler. All dependencies
// must be non-nil.
func NewReservationHandler(reservations *repository.ReservationRepo, statuses *repository.StatusRepo, machine *service.StatusMachine) *ReservationHandler {
	if reservations == nil || statuses == nil || machine == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations, Statuses: statuses, Machine: machine}
}

type createReservationRequest struct {
	RetailerID  uint64 `json:"retailer_id"`
	TourID      uint64 `json:"tour_id"`
	DepartureID uint64 `json:"departure_id"`
}

// Create handles POST /v1/reservations. A reservation is born in INTEREST
// when the shopper first shows interest in a tour; the owning user stays
// empty until login.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RetailerID == 0 || req.TourID == 0 || req.DepartureID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "retailer_id, tour_id and departure_id are required"})
	}

	ctx := c.Request().Context()
	interest, err := h.Statuses.ByCode(ctx, model.StatusInterest)
	if err != nil {
		return repoError(c, err)
	}

	res := model.Reservation{
		StatusID:    interest.ID,
		RetailerID:  req.RetailerID,
		TourID:      req.TourID,
		DepartureID: req.DepartureID,
	}
	if userID, ok := middleware.UserID(c); ok {
		res.UserID = &userID
	}
	if err := h.Reservations.Create(ctx, &res); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, reservationView(&res))
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.Reservations.GetByID(c.Request().Context(), id)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, reservationView(res))
}

type updateReservationRequest struct {
	RetailerID       uint64  `json:"retailer_id"`
	TourID           uint64  `json:"tour_id"`
	DepartureID      uint64  `json:"departure_id"`
	UserID           *uint64 `json:"user_id"`
	TotalPassengers  int     `json:"total_passengers"`
	TotalAmountCents int64   `json:"total_amount_cents"`
	SkipValidation   bool    `json:"skip_validation"`
}

// Update handles PUT /v1/reservations/:id, a full aggregate update. The
// skip_validation flag is honored only for callers carrying the trusted
// back-office role; for everyone else it is ignored. A reserved
// reservation is immutable except through cancellation.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}

	skip := req.SkipValidation && middleware.IsBackOffice(c)
	if !skip {
		if res.StatusCode.Terminal() {
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation can no longer be edited"})
		}
		if req.TotalPassengers < 1 {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "total_passengers must be at least 1"})
		}
		if req.TotalAmountCents < 0 {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "total_amount_cents must not be negative"})
		}
		if req.RetailerID == 0 || req.TourID == 0 || req.DepartureID == 0 {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "retailer_id, tour_id and departure_id are required"})
		}
	}

	res.RetailerID = req.RetailerID
	res.TourID = req.TourID
	res.DepartureID = req.DepartureID
	res.UserID = req.UserID
	res.TotalPassengers = req.TotalPassengers
	res.TotalAmountCents = req.TotalAmountCents
	if err := h.Reservations.Update(ctx, res); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, reservationView(res))
}

// Summary handles GET /v1/reservations/:id/summary. The total is
// recomputed from the current selection set on every fetch and written
// back to the aggregate, so the persisted amount can never drift from what
// the shopper was shown.
func (h *ReservationHandler) Summary(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.Reservations.GetByID(ctx, id); err != nil {
		return repoError(c, err)
	}
	items, err := h.Reservations.ListItems(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	total := service.AggregateTotal(items)
	if err := h.Reservations.UpdateTotalAmount(ctx, id, total); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":           items,
		"total_cents":     total,
		"total_formatted": formatCents(total),
	})
}

// Cancel handles POST /v1/reservations/:id/cancel. Cancellation is the
// only transition allowed out of RESERVED.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	return h.transitionTo(c, model.StatusCancelled)
}

// Abandon handles POST /v1/reservations/:id/abandon.
func (h *ReservationHandler) Abandon(c echo.Context) error {
	return h.transitionTo(c, model.StatusAbandoned)
}

func (h *ReservationHandler) transitionTo(c echo.Context, code model.StatusCode) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if err := h.Machine.Transition(ctx, res, code); err != nil {
		if errors.Is(err, service.ErrInvalidTransition) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, reservationView(res))
}

// reservationView shapes the aggregate for JSON responses.
func reservationView(r *model.Reservation) echo.Map {
	view := echo.Map{
		"id":                 r.ID,
		"status":             r.StatusCode,
		"retailer_id":        r.RetailerID,
		"tour_id":            r.TourID,
		"departure_id":       r.DepartureID,
		"total_passengers":   r.TotalPassengers,
		"total_amount_cents": r.TotalAmountCents,
		"created_at":         r.CreatedAt,
		"updated_at":         r.UpdatedAt,
	}
	if r.TkID != nil {
		view["tk_id"] = *r.TkID
	}
	if r.UserID != nil {
		view["user_id"] = *r.UserID
	}
	for name, ts := range map[string]*time.Time{
		"budgeted_at":  r.BudgetedAt,
		"cart_at":      r.CartAt,
		"abandoned_at": r.AbandonedAt,
		"reserved_at":  r.ReservedAt,
	} {
		if ts != nil {
			view[name] = *ts
		}
	}
	return view
}

// formatCents renders a cents amount in the 2-decimal currency unit.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
