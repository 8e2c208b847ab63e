package availability

import (
	"errors"
	"net/http"
	"strconv"

	"venueslot/internal/api"
	"venueslot/internal/ledger"
	"venueslot/internal/venue"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	svc Service
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		svc: NewService(venue.NewRepository(db), ledger.NewRepository(db)),
	}
}

// GetAvailability godoc
// @Summary      Free units for one time slot
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Param        venueID path  int    true "Venue ID"
// @Param        date    query string true "Date (YYYY-MM-DD)"
// @Param        time    query string true "Time slot (HH:00)"
// @Success      200 {object} Availability
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /venues/{venueID}/availability [get]
func (h *Handler) GetAvailability(c *gin.Context) {
	venueID, err := strconv.Atoi(c.Param("venueID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid venue ID"})
		return
	}

	date := c.Query("date")
	timeSlot := c.Query("time")

	result, err := h.svc.ComputeAvailability(c.Request.Context(), venueID, date, timeSlot)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDayAvailability godoc
// @Summary      Free units for all 24 buckets of a date
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Param        venueID path  int    true "Venue ID"
// @Param        date    query string true "Date (YYYY-MM-DD)"
// @Success      200 {object} DayAvailability
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /venues/{venueID}/availability/day [get]
func (h *Handler) GetDayAvailability(c *gin.Context) {
	venueID, err := strconv.Atoi(c.Param("venueID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid venue ID"})
		return
	}

	result, err := h.svc.ComputeDayAvailability(c.Request.Context(), venueID, c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidDate), errors.Is(err, ledger.ErrInvalidSlot):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, venue.ErrVenueNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Venue not found"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
	}
}
