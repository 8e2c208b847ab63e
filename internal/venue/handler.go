package venue

import (
	"errors"
	"net/http"
	"strconv"

	"venueslot/internal/api"
	"venueslot/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// ListVenues godoc
// @Summary      List venues
// @Tags         venues
// @Produce      json
// @Success      200 {array} Venue
// @Failure      500 {object} api.ErrorResponse
// @Router       /venues [get]
func (h *Handler) ListVenues(c *gin.Context) {
	venues, err := h.repo.GetAllVenues(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, venues)
}

// GetVenue godoc
// @Summary      Get venue by ID
// @Tags         venues
// @Produce      json
// @Param        venueID path int true "Venue ID"
// @Success      200 {object} Venue
// @Failure      404 {object} api.ErrorResponse
// @Router       /venues/{venueID} [get]
func (h *Handler) GetVenue(c *gin.Context) {
	venueID, err := strconv.Atoi(c.Param("venueID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid venue ID"})
		return
	}

	v, err := h.repo.GetVenueByID(c.Request.Context(), venueID)
	if err != nil {
		if errors.Is(err, ErrVenueNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Venue not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, v)
}

// CreateVenue godoc
// @Summary      Create venue
// @Tags         venues
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateVenueRequest true "Venue details"
// @Success      201 {object} Venue
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /business/venues [post]
func (h *Handler) CreateVenue(c *gin.Context) {
	businessID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	v, err := h.repo.CreateVenue(c.Request.Context(), businessID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create venue"})
		return
	}

	c.JSON(http.StatusCreated, v)
}

// UpdateVenue godoc
// @Summary      Update venue capacity, status or location
// @Description  Capacity changes apply to future bookings only.
// @Tags         venues
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        venueID path int true "Venue ID"
// @Param        request body UpdateVenueRequest true "Fields to update"
// @Success      200 {object} Venue
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /business/venues/{venueID} [patch]
func (h *Handler) UpdateVenue(c *gin.Context) {
	businessID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	venueID, err := strconv.Atoi(c.Param("venueID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid venue ID"})
		return
	}

	var req UpdateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	v, err := h.repo.UpdateVenue(c.Request.Context(), venueID, businessID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrVenueNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Venue not found"})
		case errors.Is(err, ErrNotVenueOwner):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Venue belongs to another business"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		}
		return
	}

	c.JSON(http.StatusOK, v)
}

// ListBusinessVenues godoc
// @Summary      List venues owned by the authenticated business
// @Tags         venues
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} Venue
// @Failure      500 {object} api.ErrorResponse
// @Router       /business/venues [get]
func (h *Handler) ListBusinessVenues(c *gin.Context) {
	businessID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	venues, err := h.repo.GetVenuesByBusiness(c.Request.Context(), businessID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, venues)
}
