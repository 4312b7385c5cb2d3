package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voyagehub/reservation-checkout/internal/model"
	"github.com/voyagehub/reservation-checkout/internal/repository"
	"github.com/voyagehub/reservation-checkout/internal/service"
)

// RoomHandler serves the room selection of a reservation. The selection is
// read and replaced as a whole.
type RoomHandler struct {
	Rooms     *repository.RoomAssignmentRepo
	Validator *service.RoomValidator
}

// NewRoomHandler constructs a RoomHandler.
func NewRoomHandler(rooms *repository.RoomAssignmentRepo, validator *service.RoomValidator) *RoomHandler {
	if rooms == nil || validator == nil {
		panic("nil dependency passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Validator: validator}
}

// List handles GET /v1/reservations/:id/rooms.
func (h *RoomHandler) List(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	rooms, err := h.Rooms.ListByReservation(c.Request().Context(), id)
	if err != nil {
		return repoError(c, err)
	}
	if rooms == nil {
		rooms = []model.RoomAssignment{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"rooms":    rooms,
		"capacity": h.Validator.Capacity(rooms),
	})
}

type replaceRoomsRequest struct {
	DepartureID uint64 `json:"departure_id"`
	Rooms       []struct {
		RoomType string `json:"room_type"`
		Quantity int    `json:"quantity"`
	} `json:"rooms"`
}

// Replace handles PUT /v1/reservations/:id/rooms. When the submitted
// selection is structurally identical to the persisted one the write is
// skipped entirely; the client may call this unconditionally before a step
// transition.
func (h *RoomHandler) Replace(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req replaceRoomsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.DepartureID == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "departure_id is required"})
	}

	incoming := make([]model.RoomAssignment, 0, len(req.Rooms))
	for _, r := range req.Rooms {
		if r.Quantity < 0 {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "room quantity must not be negative"})
		}
		incoming = append(incoming, model.RoomAssignment{
			ReservationID: id,
			DepartureID:   req.DepartureID,
			RoomType:      r.RoomType,
			Quantity:      r.Quantity,
		})
	}

	ctx := c.Request().Context()
	current, err := h.Rooms.ListByReservation(ctx, id)
	if err != nil {
		return repoError(c, err)
	}

	saved := false
	if h.Validator.HasUnsavedChanges(incoming, current) {
		if err := h.Rooms.Replace(ctx, id, incoming); err != nil {
			return repoError(c, err)
		}
		saved = true
	}
	return c.JSON(http.StatusOK, echo.Map{
		"rooms":    incoming,
		"capacity": h.Validator.Capacity(incoming),
		"saved":    saved,
	})
}
