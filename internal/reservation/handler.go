package reservation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"venueslot/internal/api"
	"venueslot/internal/auth"
	"venueslot/internal/ledger"
	"venueslot/internal/notify"
	"venueslot/internal/venue"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	svc Service
}

func NewHandler(db *sqlx.DB, notifier notify.Publisher) *Handler {
	return &Handler{
		svc: NewService(NewRepository(db), venue.NewRepository(db), notifier),
	}
}

// CreateReservation godoc
// @Summary      Book a venue slot
// @Description  Atomically checks capacity for every spanned hourly bucket and admits the reservation as confirmed.
// @Tags         reservations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body AdmitRequest true "Booking request"
// @Success      201 {object} Reservation
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.CapacityErrorResponse
// @Router       /reservations [post]
func (h *Handler) CreateReservation(c *gin.Context) {
	requesterID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req AdmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	res, err := h.svc.Admit(c.Request.Context(), requesterID, req, false)
	if err != nil {
		respondError(c, err, req.Attendees)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// CreateAppointment godoc
// @Summary      Create a business-initiated appointment
// @Description  Admits capacity immediately but starts the reservation in the pending state.
// @Tags         reservations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body AdmitRequest true "Appointment request"
// @Success      201 {object} Reservation
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.CapacityErrorResponse
// @Router       /business/appointments [post]
func (h *Handler) CreateAppointment(c *gin.Context) {
	businessID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req AdmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	res, err := h.svc.Admit(c.Request.Context(), businessID, req, true)
	if err != nil {
		respondError(c, err, req.Attendees)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// ListMyReservations godoc
// @Summary      List the caller's reservations
// @Tags         reservations
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} Reservation
// @Failure      500 {object} api.ErrorResponse
// @Router       /reservations [get]
func (h *Handler) ListMyReservations(c *gin.Context) {
	requesterID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	reservations, err := h.svc.GetUserReservations(c.Request.Context(), requesterID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, reservations)
}

// CancelReservation godoc
// @Summary      Cancel a reservation
// @Description  Marks the reservation cancelled and releases its capacity units in the same transaction.
// @Tags         reservations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        reservationID path int true "Reservation ID"
// @Param        request body CancelRequest false "Cancellation reason"
// @Success      200 {object} Reservation
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /reservations/{reservationID}/cancel [post]
func (h *Handler) CancelReservation(c *gin.Context) {
	actorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	role, _ := auth.GetRole(c)

	reservationID, err := strconv.Atoi(c.Param("reservationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid reservation ID"})
		return
	}

	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	res, err := h.svc.Cancel(c.Request.Context(), actorID, role, reservationID, req.Reason)
	if err != nil {
		respondError(c, err, 0)
		return
	}

	c.JSON(http.StatusOK, res)
}

// UpdateSchedule godoc
// @Summary      Move a reservation to a different slot
// @Description  Releases the old buckets and reserves the new ones atomically; fails without side effects when the new slot lacks capacity.
// @Tags         reservations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        reservationID path int true "Reservation ID"
// @Param        request body UpdateScheduleRequest true "New schedule"
// @Success      200 {object} Reservation
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.CapacityErrorResponse
// @Router       /reservations/{reservationID}/schedule [patch]
func (h *Handler) UpdateSchedule(c *gin.Context) {
	actorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	reservationID, err := strconv.Atoi(c.Param("reservationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid reservation ID"})
		return
	}

	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	res, err := h.svc.UpdateSchedule(c.Request.Context(), actorID, reservationID, req)
	if err != nil {
		respondError(c, err, 0)
		return
	}

	c.JSON(http.StatusOK, res)
}

// ConfirmReservation godoc
// @Summary      Confirm a pending appointment
// @Tags         reservations
// @Security     BearerAuth
// @Produce      json
// @Param        reservationID path int true "Reservation ID"
// @Success      200 {object} Reservation
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /business/reservations/{reservationID}/confirm [post]
func (h *Handler) ConfirmReservation(c *gin.Context) {
	h.transition(c, h.svc.Confirm)
}

// CompleteReservation godoc
// @Summary      Mark a confirmed reservation as completed
// @Tags         reservations
// @Security     BearerAuth
// @Produce      json
// @Param        reservationID path int true "Reservation ID"
// @Success      200 {object} Reservation
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /business/reservations/{reservationID}/complete [post]
func (h *Handler) CompleteReservation(c *gin.Context) {
	h.transition(c, h.svc.Complete)
}

// ListVenueReservations godoc
// @Summary      List reservations for a venue
// @Tags         reservations
// @Security     BearerAuth
// @Produce      json
// @Param        venueID path int true "Venue ID"
// @Success      200 {array} Reservation
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /business/venues/{venueID}/reservations [get]
func (h *Handler) ListVenueReservations(c *gin.Context) {
	actorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	role, _ := auth.GetRole(c)

	venueID, err := strconv.Atoi(c.Param("venueID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid venue ID"})
		return
	}

	reservations, err := h.svc.GetVenueReservations(c.Request.Context(), actorID, role, venueID)
	if err != nil {
		respondError(c, err, 0)
		return
	}

	c.JSON(http.StatusOK, reservations)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, actorID int, role string, reservationID int) (*Reservation, error)) {
	actorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	role, _ := auth.GetRole(c)

	reservationID, err := strconv.Atoi(c.Param("reservationID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid reservation ID"})
		return
	}

	res, err := fn(c.Request.Context(), actorID, role, reservationID)
	if err != nil {
		respondError(c, err, 0)
		return
	}

	c.JSON(http.StatusOK, res)
}

func respondError(c *gin.Context, err error, requested int) {
	var capErr *ledger.InsufficientCapacityError

	switch {
	case errors.As(err, &capErr):
		c.JSON(http.StatusConflict, api.CapacityErrorResponse{
			Error:     fmt.Sprintf("only %d units available", capErr.Available),
			Available: capErr.Available,
			Requested: requested,
		})
	case errors.Is(err, ledger.ErrInvalidDate),
		errors.Is(err, ledger.ErrInvalidSlot),
		errors.Is(err, ledger.ErrInvalidUnits),
		errors.Is(err, ledger.ErrInvalidDuration),
		errors.Is(err, ledger.ErrSpanPastMidnight),
		errors.Is(err, ErrPastSlot):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrReservationNotFound), errors.Is(err, venue.ErrVenueNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrVenueInactive):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal error"})
	}
}
