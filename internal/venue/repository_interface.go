package venue

import "context"

// Repository is the read side the booking engine consumes plus the authoring
// operations the business role uses. Capacity changes apply to future
// admissions only; already-admitted reservations keep their ledger rows.
type Repository interface {
	GetVenueByID(ctx context.Context, id int) (*Venue, error)
	GetAllVenues(ctx context.Context) ([]Venue, error)
	GetVenuesByBusiness(ctx context.Context, businessID int) ([]Venue, error)
	CreateVenue(ctx context.Context, businessID int, req CreateVenueRequest) (*Venue, error)
	UpdateVenue(ctx context.Context, id, businessID int, req UpdateVenueRequest) (*Venue, error)
}
