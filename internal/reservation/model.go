package reservation

import (
	"time"

	"venueslot/internal/ledger"
)

type Status string

const (
	// StatusPending is the start state for business-initiated appointments.
	// Member self-service bookings are admitted directly as confirmed.
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal states admit no further transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

type Reservation struct {
	ID              int        `db:"id" json:"id"`
	VenueID         int        `db:"venue_id" json:"venue_id"`
	RequesterID     int        `db:"requester_id" json:"requester_id"`
	Date            string     `db:"date" json:"date"`
	StartSlot       string     `db:"start_slot" json:"start_slot"`
	DurationHours   int        `db:"duration_hours" json:"duration_hours"`
	Attendees       int        `db:"attendees" json:"attendees"`
	Status          Status     `db:"status" json:"status"`
	TotalPriceCents int64      `db:"total_price_cents" json:"total_price_cents"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	CancelledAt     *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancelReason    *string    `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

// Buckets returns the ascending ledger bucket keys this reservation spans.
func (r *Reservation) Buckets() ([]string, error) {
	return ledger.SpanSlots(r.StartSlot, r.DurationHours)
}

type AdmitRequest struct {
	VenueID       int    `json:"venue_id" binding:"required"`
	Date          string `json:"date" binding:"required"`
	StartTime     string `json:"start_time" binding:"required"`
	DurationHours int    `json:"duration_hours" binding:"required,min=1"`
	Attendees     int    `json:"attendees" binding:"required,min=1"`
}

type UpdateScheduleRequest struct {
	Date          string `json:"date" binding:"required"`
	StartTime     string `json:"start_time" binding:"required"`
	DurationHours int    `json:"duration_hours" binding:"required,min=1"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}
