package venue

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrVenueNotFound = errors.New("venue not found")
	ErrNotVenueOwner = errors.New("venue belongs to another business")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetVenueByID(ctx context.Context, id int) (*Venue, error) {
	query := `
		SELECT id, business_id, name, category, location, capacity, price_per_hour_cents, is_active, created_at
		FROM venues
		WHERE id = $1 AND deleted_at IS NULL
	`

	var v Venue
	err := r.db.GetContext(ctx, &v, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	return &v, nil
}

func (r *repository) GetAllVenues(ctx context.Context) ([]Venue, error) {
	query := `
		SELECT id, business_id, name, category, location, capacity, price_per_hour_cents, is_active, created_at
		FROM venues
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	var venues []Venue
	err := r.db.SelectContext(ctx, &venues, query)
	if err != nil {
		return nil, err
	}

	return venues, nil
}

func (r *repository) GetVenuesByBusiness(ctx context.Context, businessID int) ([]Venue, error) {
	query := `
		SELECT id, business_id, name, category, location, capacity, price_per_hour_cents, is_active, created_at
		FROM venues
		WHERE business_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	var venues []Venue
	err := r.db.SelectContext(ctx, &venues, query, businessID)
	if err != nil {
		return nil, err
	}

	return venues, nil
}

func (r *repository) CreateVenue(ctx context.Context, businessID int, req CreateVenueRequest) (*Venue, error) {
	query := `
		INSERT INTO venues (business_id, name, category, location, capacity, price_per_hour_cents, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id, business_id, name, category, location, capacity, price_per_hour_cents, is_active, created_at
	`

	var v Venue
	err := r.db.GetContext(ctx, &v, query,
		businessID, req.Name, req.Category, req.Location, req.Capacity, req.PricePerHourCents)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// UpdateVenue applies partial updates. Capacity changes are prospective:
// existing ledger rows keep the total_slots snapshot taken when they were
// first written.
func (r *repository) UpdateVenue(ctx context.Context, id, businessID int, req UpdateVenueRequest) (*Venue, error) {
	existing, err := r.GetVenueByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.BusinessID != businessID {
		return nil, ErrNotVenueOwner
	}

	capacity := existing.Capacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	isActive := existing.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	location := existing.Location
	if req.Location != "" {
		location = req.Location
	}

	query := `
		UPDATE venues
		SET capacity = $1, is_active = $2, location = $3
		WHERE id = $4 AND deleted_at IS NULL
		RETURNING id, business_id, name, category, location, capacity, price_per_hour_cents, is_active, created_at
	`

	var v Venue
	err = r.db.GetContext(ctx, &v, query, capacity, isActive, location, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}

	return &v, nil
}
