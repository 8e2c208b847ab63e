package server

import (
	"context"
	"net/http"
	"time"

	"venueslot/internal/auth"
	"venueslot/internal/availability"
	"venueslot/internal/config"
	"venueslot/internal/notify"
	"venueslot/internal/reservation"
	"venueslot/internal/venue"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, notifier *notify.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	venueHandler := venue.NewHandler(db)
	availabilityHandler := availability.NewHandler(db)
	reservationHandler := reservation.NewHandler(db, notifier)

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	router.GET("/venues", venueHandler.ListVenues)
	router.GET("/venues/:venueID", venueHandler.GetVenue)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)

	member := router.Group("/")
	member.Use(authMiddleware)
	{
		member.GET("/venues/:venueID/availability", availabilityHandler.GetAvailability)
		member.GET("/venues/:venueID/availability/day", availabilityHandler.GetDayAvailability)
		member.POST("/reservations", reservationHandler.CreateReservation)
		member.GET("/reservations", reservationHandler.ListMyReservations)
		member.POST("/reservations/:reservationID/cancel", reservationHandler.CancelReservation)
		member.PATCH("/reservations/:reservationID/schedule", reservationHandler.UpdateSchedule)
	}

	business := router.Group("/business")
	business.Use(authMiddleware, auth.RequireRole("business"))
	{
		business.POST("/venues", venueHandler.CreateVenue)
		business.GET("/venues", venueHandler.ListBusinessVenues)
		business.PATCH("/venues/:venueID", venueHandler.UpdateVenue)
		business.POST("/appointments", reservationHandler.CreateAppointment)
		business.POST("/reservations/:reservationID/confirm", reservationHandler.ConfirmReservation)
		business.POST("/reservations/:reservationID/complete", reservationHandler.CompleteReservation)
		business.GET("/venues/:venueID/reservations", reservationHandler.ListVenueReservations)
	}

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
