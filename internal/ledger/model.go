package ledger

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DateLayout is the calendar-date key format for ledger rows.
	DateLayout = "2006-01-02"
	// SlotLayout is the time-bucket key format. Buckets are hourly, so the
	// minute part must be "00".
	SlotLayout = "15:04"

	slotsPerDay = 24
)

var (
	ErrInvalidDate     = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidSlot     = errors.New("time slot must be HH:00")
	ErrInvalidUnits    = errors.New("units must be positive")
	ErrInvalidDuration = errors.New("duration must be at least one hour")
	ErrSpanPastMidnight = errors.New("booking may not cross midnight")
	ErrReleaseUnderflow = errors.New("cannot release more units than booked")
	ErrEntryNotFound    = errors.New("ledger entry not found")
)

// InsufficientCapacityError reports how many units the slot still has, so
// callers can offer a reduced-size booking.
type InsufficientCapacityError struct {
	Available int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("insufficient capacity: %d units available", e.Available)
}

// Entry is one (venue, date, time slot) capacity record. TotalSlots is a
// snapshot of the venue capacity at first write; later capacity changes on
// the venue do not touch existing rows.
type Entry struct {
	VenueID     int    `db:"venue_id" json:"venue_id"`
	Date        string `db:"date" json:"date"`
	TimeSlot    string `db:"time_slot" json:"time_slot"`
	TotalSlots  int    `db:"total_slots" json:"total_slots"`
	BookedSlots int    `db:"booked_slots" json:"booked_slots"`
}

func (e *Entry) Available() int {
	if e.BookedSlots >= e.TotalSlots {
		return 0
	}
	return e.TotalSlots - e.BookedSlots
}

// Reserve consumes units from the entry. It is the only place booked_slots
// may grow, which keeps 0 <= booked <= total checkable in one spot.
func (e *Entry) Reserve(units int) error {
	if units <= 0 {
		return ErrInvalidUnits
	}
	if units > e.Available() {
		return &InsufficientCapacityError{Available: e.Available()}
	}
	e.BookedSlots += units
	return nil
}

// Release gives units back, e.g. on cancellation. Releasing more than is
// booked means the caller's accounting is broken and is rejected.
func (e *Entry) Release(units int) error {
	if units <= 0 {
		return ErrInvalidUnits
	}
	if units > e.BookedSlots {
		return ErrReleaseUnderflow
	}
	e.BookedSlots -= units
	return nil
}

// ValidDate reports whether s is a well-formed calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidSlot reports whether s is a well-formed hourly bucket key.
func ValidSlot(s string) bool {
	t, err := time.Parse(SlotLayout, s)
	if err != nil {
		return false
	}
	return t.Minute() == 0
}

// SpanSlots expands a start bucket plus a duration in whole hours into the
// ascending list of bucket keys the booking covers. Bookings may not cross
// midnight, so every reservation maps to buckets of a single date key.
func SpanSlots(start string, durationHours int) ([]string, error) {
	if durationHours < 1 {
		return nil, ErrInvalidDuration
	}
	t, err := time.Parse(SlotLayout, start)
	if err != nil || t.Minute() != 0 {
		return nil, ErrInvalidSlot
	}
	if t.Hour()+durationHours > slotsPerDay {
		return nil, ErrSpanPastMidnight
	}

	slots := make([]string, 0, durationHours)
	for i := 0; i < durationHours; i++ {
		slots = append(slots, fmt.Sprintf("%02d:00", t.Hour()+i))
	}
	return slots, nil
}

// SlotStart resolves a (date, slot) pair to the wall-clock start of the
// bucket in loc.
func SlotStart(date, slot string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+SlotLayout, date+" "+slot, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
