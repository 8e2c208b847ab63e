package reservation

import (
	"context"
	"errors"
	"time"

	"venueslot/internal/ledger"
	"venueslot/internal/logger"
	"venueslot/internal/metrics"
	"venueslot/internal/notify"
	"venueslot/internal/venue"
)

var (
	ErrForbidden     = errors.New("actor does not own this reservation or venue")
	ErrVenueInactive = errors.New("venue is not accepting bookings")
	ErrPastSlot      = errors.New("cannot book a slot in the past")
)

const (
	RoleMember   = "member"
	RoleBusiness = "business"
	RoleAdmin    = "admin"
)

type Service interface {
	Admit(ctx context.Context, requesterID int, req AdmitRequest, pending bool) (*Reservation, error)
	Cancel(ctx context.Context, actorID int, role string, reservationID int, reason string) (*Reservation, error)
	UpdateSchedule(ctx context.Context, actorID, reservationID int, req UpdateScheduleRequest) (*Reservation, error)
	Confirm(ctx context.Context, actorID int, role string, reservationID int) (*Reservation, error)
	Complete(ctx context.Context, actorID int, role string, reservationID int) (*Reservation, error)
	GetUserReservations(ctx context.Context, requesterID int) ([]Reservation, error)
	GetVenueReservations(ctx context.Context, actorID int, role string, venueID int) ([]Reservation, error)
}

type service struct {
	repo      Repository
	venueRepo venue.Repository
	notifier  notify.Publisher
}

func NewService(repo Repository, venueRepo venue.Repository, notifier notify.Publisher) Service {
	return &service{
		repo:      repo,
		venueRepo: venueRepo,
		notifier:  notifier,
	}
}

// Admit validates the request, loads the venue, and runs the atomic
// check-and-reserve. The venue lookup happens before the transaction so no
// network or cross-table reads occur while ledger rows are locked. Pricing
// is computed here and frozen onto the reservation.
func (s *service) Admit(ctx context.Context, requesterID int, req AdmitRequest, pending bool) (*Reservation, error) {
	if !ledger.ValidDate(req.Date) {
		return nil, ledger.ErrInvalidDate
	}
	if _, err := ledger.SpanSlots(req.StartTime, req.DurationHours); err != nil {
		return nil, err
	}
	if req.Attendees < 1 {
		return nil, ledger.ErrInvalidUnits
	}

	v, err := s.venueRepo.GetVenueByID(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}
	if !v.IsActive {
		return nil, ErrVenueInactive
	}

	start, err := ledger.SlotStart(req.Date, req.StartTime, time.Local)
	if err != nil {
		return nil, err
	}
	if start.Before(time.Now()) {
		return nil, ErrPastSlot
	}

	status := StatusConfirmed
	if pending {
		status = StatusPending
	}

	res, err := s.repo.Admit(ctx, AdmitParams{
		VenueID:         req.VenueID,
		RequesterID:     requesterID,
		Date:            req.Date,
		StartSlot:       req.StartTime,
		DurationHours:   req.DurationHours,
		Attendees:       req.Attendees,
		Status:          status,
		TotalPriceCents: v.PricePerHourCents * int64(req.DurationHours) * int64(req.Attendees),
		VenueCapacity:   v.Capacity,
	})
	if err != nil {
		var capErr *ledger.InsufficientCapacityError
		if errors.As(err, &capErr) {
			metrics.RecordAdmission("rejected")
		}
		return nil, err
	}

	metrics.RecordAdmission(string(status))
	s.publish(ctx, eventForStatus(status), res)

	return res, nil
}

// Cancel releases exactly the units the reservation consumed. A reservation
// already cancelled or completed fails with ErrInvalidState and never
// touches the ledger again.
func (s *service) Cancel(ctx context.Context, actorID int, role string, reservationID int, reason string) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, role, res); err != nil {
		return nil, err
	}

	cancelled, err := s.repo.Cancel(ctx, reservationID, reason)
	if err != nil {
		return nil, err
	}

	metrics.RecordCancellation()
	s.publish(ctx, notify.EventReservationCancelled, cancelled)

	return cancelled, nil
}

// UpdateSchedule moves the reservation to a new slot. The whole move is one
// atomic unit: if the new slot lacks capacity the original reservation and
// its ledger consumption are left untouched.
func (s *service) UpdateSchedule(ctx context.Context, actorID, reservationID int, req UpdateScheduleRequest) (*Reservation, error) {
	if !ledger.ValidDate(req.Date) {
		return nil, ledger.ErrInvalidDate
	}
	if _, err := ledger.SpanSlots(req.StartTime, req.DurationHours); err != nil {
		return nil, err
	}

	res, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.RequesterID != actorID {
		return nil, ErrForbidden
	}
	if res.Status.Terminal() {
		return nil, ErrInvalidState
	}

	v, err := s.venueRepo.GetVenueByID(ctx, res.VenueID)
	if err != nil {
		return nil, err
	}
	if !v.IsActive {
		return nil, ErrVenueInactive
	}

	start, err := ledger.SlotStart(req.Date, req.StartTime, time.Local)
	if err != nil {
		return nil, err
	}
	if start.Before(time.Now()) {
		return nil, ErrPastSlot
	}

	updated, err := s.repo.UpdateSchedule(ctx, reservationID, ScheduleParams{
		Date:            req.Date,
		StartSlot:       req.StartTime,
		DurationHours:   req.DurationHours,
		TotalPriceCents: v.PricePerHourCents * int64(req.DurationHours) * int64(res.Attendees),
		VenueCapacity:   v.Capacity,
	})
	if err != nil {
		var capErr *ledger.InsufficientCapacityError
		if errors.As(err, &capErr) {
			metrics.RecordScheduleUpdate("rejected")
		}
		return nil, err
	}

	metrics.RecordScheduleUpdate("moved")
	s.publish(ctx, notify.EventReservationRescheduled, updated)

	return updated, nil
}

// Confirm moves a pending appointment to confirmed. Only the venue's
// business (or an admin) may confirm.
func (s *service) Confirm(ctx context.Context, actorID int, role string, reservationID int) (*Reservation, error) {
	return s.transition(ctx, actorID, role, reservationID, StatusPending, StatusConfirmed, notify.EventReservationConfirmed)
}

// Complete marks a confirmed reservation as used up.
func (s *service) Complete(ctx context.Context, actorID int, role string, reservationID int) (*Reservation, error) {
	return s.transition(ctx, actorID, role, reservationID, StatusConfirmed, StatusCompleted, notify.EventReservationCompleted)
}

func (s *service) transition(ctx context.Context, actorID int, role string, reservationID int, from, to Status, event string) (*Reservation, error) {
	if !from.CanTransitionTo(to) {
		return nil, ErrInvalidState
	}

	res, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if role != RoleAdmin {
		if err := s.requireVenueOwner(ctx, actorID, res.VenueID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, reservationID, from, to)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event, updated)
	return updated, nil
}

func (s *service) GetUserReservations(ctx context.Context, requesterID int) ([]Reservation, error) {
	return s.repo.ListByRequester(ctx, requesterID)
}

func (s *service) GetVenueReservations(ctx context.Context, actorID int, role string, venueID int) ([]Reservation, error) {
	if role != RoleAdmin {
		if err := s.requireVenueOwner(ctx, actorID, venueID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListByVenue(ctx, venueID)
}

// authorize allows the requester themselves, the business owning the venue,
// and admins.
func (s *service) authorize(ctx context.Context, actorID int, role string, res *Reservation) error {
	switch role {
	case RoleAdmin:
		return nil
	case RoleBusiness:
		return s.requireVenueOwner(ctx, actorID, res.VenueID)
	default:
		if res.RequesterID != actorID {
			return ErrForbidden
		}
		return nil
	}
}

func (s *service) requireVenueOwner(ctx context.Context, actorID, venueID int) error {
	v, err := s.venueRepo.GetVenueByID(ctx, venueID)
	if err != nil {
		return err
	}
	if v.BusinessID != actorID {
		return ErrForbidden
	}
	return nil
}

// publish is fire-and-forget: a notification failure is logged, never
// propagated, and never rolls back the reservation.
func (s *service) publish(ctx context.Context, eventType string, res *Reservation) {
	err := s.notifier.Publish(ctx, notify.Event{
		Type:          eventType,
		ReservationID: res.ID,
		VenueID:       res.VenueID,
		RequesterID:   res.RequesterID,
		Date:          res.Date,
		StartSlot:     res.StartSlot,
		Attendees:     res.Attendees,
	})
	if err != nil {
		logger.Errorf("Failed to publish %s for reservation %d: %v", eventType, res.ID, err)
	}
}

func eventForStatus(status Status) string {
	if status == StatusPending {
		return notify.EventReservationPending
	}
	return notify.EventReservationConfirmed
}
