package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"reservation-service/internal/export"
	"reservation-service/internal/service"
)

type ReservationHandler struct {
	reservationService ReservationService
}

func NewReservationHandler(reservationService ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

type createReservationRequest struct {
	RestaurantID int64  `json:"restaurant_id" validate:"required"`
	Date         string `json:"reservation_date" validate:"required"`
	Time         string `json:"reservation_time" validate:"required"`
	PeopleCount  int    `json:"people_count" validate:"required"`
}

type updateReservationRequest struct {
	Date        string `json:"reservation_date" validate:"required"`
	Time        string `json:"reservation_time" validate:"required"`
	PeopleCount int    `json:"people_count" validate:"required"`
}

// CreateReservation --> POST /api/reservations
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	identity, _ := service.IdentityFrom(c.Request().Context())

	req := createReservationRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("invalid request payload"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	res, err := h.reservationService.Create(c.Request().Context(), identity.ID, req.RestaurantID, req.Date, req.Time, req.PeopleCount)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":     "reservation created",
		"reservation": res,
	})
}

// UpdateReservation --> PUT /api/reservations/:id
func (h *ReservationHandler) UpdateReservation(c echo.Context) error {
	identity, _ := service.IdentityFrom(c.Request().Context())

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, message("invalid reservation id"))
	}
	req := updateReservationRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("invalid request payload"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	res, err := h.reservationService.Update(c.Request().Context(), id, identity.ID, req.Date, req.Time, req.PeopleCount)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "reservation updated",
		"reservation": res,
	})
}

// DeleteReservation --> DELETE /api/reservations/:id
func (h *ReservationHandler) DeleteReservation(c echo.Context) error {
	identity, _ := service.IdentityFrom(c.Request().Context())

	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, message("invalid reservation id"))
	}

	if err := h.reservationService.Delete(c.Request().Context(), id, identity.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, message("reservation deleted"))
}

// GetUserReservations --> GET /api/reservations/user
func (h *ReservationHandler) GetUserReservations(c echo.Context) error {
	identity, _ := service.IdentityFrom(c.Request().Context())

	reservations, err := h.reservationService.ListForUser(c.Request().Context(), identity.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, reservations)
}

// ExportUserReservations --> GET /api/reservations/user/export
func (h *ReservationHandler) ExportUserReservations(c echo.Context) error {
	identity, _ := service.IdentityFrom(c.Request().Context())

	data, err := h.reservationService.ExportForUser(c.Request().Context(), identity.ID)
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("reservations-%d.xlsx", identity.ID)))
	return c.Blob(http.StatusOK, export.ContentType, data)
}
