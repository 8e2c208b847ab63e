package venue

import "time"

type Category string

const (
	CategoryGym      Category = "gym"
	CategoryCoaching Category = "coaching"
	CategoryLibrary  Category = "library"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGym, CategoryCoaching, CategoryLibrary:
		return true
	}
	return false
}

type Venue struct {
	ID                int       `db:"id" json:"id"`
	BusinessID        int       `db:"business_id" json:"business_id"`
	Name              string    `db:"name" json:"name"`
	Category          Category  `db:"category" json:"category"`
	Location          string    `db:"location" json:"location"`
	Capacity          int       `db:"capacity" json:"capacity"`
	PricePerHourCents int64     `db:"price_per_hour_cents" json:"price_per_hour_cents"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

type CreateVenueRequest struct {
	Name              string `json:"name" binding:"required"`
	Category          string `json:"category" binding:"required,oneof=gym coaching library"`
	Location          string `json:"location" binding:"required"`
	Capacity          int    `json:"capacity" binding:"required,min=1"`
	PricePerHourCents int64  `json:"price_per_hour_cents" binding:"required,min=0"`
}

type UpdateVenueRequest struct {
	Capacity *int   `json:"capacity" binding:"omitempty,min=1"`
	IsActive *bool  `json:"is_active"`
	Location string `json:"location"`
}
