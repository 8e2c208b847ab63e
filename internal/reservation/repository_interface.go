package reservation

import "context"

// AdmitParams is everything the admission transaction needs. Venue capacity
// and price are loaded by the service before the transaction starts so no
// lookups happen while ledger rows are locked.
type AdmitParams struct {
	VenueID         int
	RequesterID     int
	Date            string
	StartSlot       string
	DurationHours   int
	Attendees       int
	Status          Status
	TotalPriceCents int64
	VenueCapacity   int
}

// ScheduleParams carries the target slot for a schedule update.
type ScheduleParams struct {
	Date            string
	StartSlot       string
	DurationHours   int
	TotalPriceCents int64
	VenueCapacity   int
}

// Repository owns the transactional boundary: Admit, Cancel and
// UpdateSchedule each run as one atomic unit against the ledger rows they
// touch, and either fully apply or fully roll back.
type Repository interface {
	Admit(ctx context.Context, params AdmitParams) (*Reservation, error)
	Cancel(ctx context.Context, id int, reason string) (*Reservation, error)
	UpdateSchedule(ctx context.Context, id int, params ScheduleParams) (*Reservation, error)
	UpdateStatus(ctx context.Context, id int, from, to Status) (*Reservation, error)
	GetByID(ctx context.Context, id int) (*Reservation, error)
	ListByRequester(ctx context.Context, requesterID int) ([]Reservation, error)
	ListByVenue(ctx context.Context, venueID int) ([]Reservation, error)
}
