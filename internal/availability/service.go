package availability

import (
	"context"
	"errors"
	"fmt"

	"venueslot/internal/ledger"
	"venueslot/internal/venue"
)

// Availability is a point-in-time snapshot. It is informational only: the
// binding capacity check happens again on locked rows inside the admission
// transaction, never here.
type Availability struct {
	VenueID        int    `json:"venue_id"`
	Date           string `json:"date"`
	TimeSlot       string `json:"time_slot"`
	TotalUnits     int    `json:"total_units"`
	AvailableUnits int    `json:"available_units"`
	IsAvailable    bool   `json:"is_available"`
}

// DayAvailability is the full 24-bucket grid for one venue and date.
type DayAvailability struct {
	VenueID int            `json:"venue_id"`
	Date    string         `json:"date"`
	Slots   []Availability `json:"slots"`
}

type Service interface {
	ComputeAvailability(ctx context.Context, venueID int, date, timeSlot string) (*Availability, error)
	ComputeDayAvailability(ctx context.Context, venueID int, date string) (*DayAvailability, error)
}

type service struct {
	venueRepo  venue.Repository
	ledgerRepo ledger.Repository
}

func NewService(venueRepo venue.Repository, ledgerRepo ledger.Repository) Service {
	return &service{venueRepo: venueRepo, ledgerRepo: ledgerRepo}
}

// ComputeAvailability reads the ledger without creating rows: a bucket that
// was never booked simply falls back to the venue capacity.
func (s *service) ComputeAvailability(ctx context.Context, venueID int, date, timeSlot string) (*Availability, error) {
	if !ledger.ValidDate(date) {
		return nil, ledger.ErrInvalidDate
	}
	if !ledger.ValidSlot(timeSlot) {
		return nil, ledger.ErrInvalidSlot
	}

	v, err := s.venueRepo.GetVenueByID(ctx, venueID)
	if err != nil {
		return nil, err
	}

	total := v.Capacity
	booked := 0

	entry, err := s.ledgerRepo.GetEntry(ctx, venueID, date, timeSlot)
	switch {
	case err == nil:
		total = entry.TotalSlots
		booked = entry.BookedSlots
	case errors.Is(err, ledger.ErrEntryNotFound):
		// no row yet, bucket is untouched
	default:
		return nil, err
	}

	available := total - booked
	if available < 0 {
		available = 0
	}

	return &Availability{
		VenueID:        venueID,
		Date:           date,
		TimeSlot:       timeSlot,
		TotalUnits:     total,
		AvailableUnits: available,
		IsAvailable:    available > 0,
	}, nil
}

func (s *service) ComputeDayAvailability(ctx context.Context, venueID int, date string) (*DayAvailability, error) {
	if !ledger.ValidDate(date) {
		return nil, ledger.ErrInvalidDate
	}

	v, err := s.venueRepo.GetVenueByID(ctx, venueID)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledgerRepo.GetEntriesForDay(ctx, venueID, date)
	if err != nil {
		return nil, err
	}

	bySlot := make(map[string]ledger.Entry, len(entries))
	for _, e := range entries {
		bySlot[e.TimeSlot] = e
	}

	day := &DayAvailability{VenueID: venueID, Date: date, Slots: make([]Availability, 0, 24)}
	for hour := 0; hour < 24; hour++ {
		slot, total, booked := fmt.Sprintf("%02d:00", hour), v.Capacity, 0
		if e, ok := bySlot[slot]; ok {
			total, booked = e.TotalSlots, e.BookedSlots
		}
		available := total - booked
		if available < 0 {
			available = 0
		}
		day.Slots = append(day.Slots, Availability{
			VenueID:        venueID,
			Date:           date,
			TimeSlot:       slot,
			TotalUnits:     total,
			AvailableUnits: available,
			IsAvailable:    available > 0,
		})
	}

	return day, nil
}
