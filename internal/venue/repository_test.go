package venue

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

var venueCols = []string{"id", "business_id", "name", "category", "location", "capacity", "price_per_hour_cents", "is_active", "created_at"}

func venueRow(id, businessID, capacity int, isActive bool) *sqlmock.Rows {
	return sqlmock.NewRows(venueCols).
		AddRow(id, businessID, "Downtown Gym", "gym", "12 Main St", capacity, int64(1500), isActive, time.Now())
}

func TestGetVenueByID(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs(1).
		WillReturnRows(venueRow(1, 7, 20, true))

	v, err := repo.GetVenueByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 7, v.BusinessID)
	assert.Equal(t, CategoryGym, v.Category)
	assert.Equal(t, int64(1500), v.PricePerHourCents)
}

func TestGetVenueByIDNotFound(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery("SELECT id, business_id").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(venueCols))

	_, err := repo.GetVenueByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrVenueNotFound)
}

func TestGetVenuesByBusiness(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	rows := sqlmock.NewRows(venueCols).
		AddRow(1, 7, "Downtown Gym", "gym", "12 Main St", 20, int64(1500), true, time.Now()).
		AddRow(2, 7, "Quiet Library", "library", "4 Oak Ave", 40, int64(500), false, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE business_id = $1 AND deleted_at IS NULL")).
		WithArgs(7).
		WillReturnRows(rows)

	venues, err := repo.GetVenuesByBusiness(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, venues, 2)
	assert.Equal(t, CategoryLibrary, venues[1].Category)
	assert.False(t, venues[1].IsActive)
}

func TestCreateVenue(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO venues")).
		WithArgs(7, "Downtown Gym", "gym", "12 Main St", 20, int64(1500)).
		WillReturnRows(venueRow(1, 7, 20, true))

	v, err := repo.CreateVenue(context.Background(), 7, CreateVenueRequest{
		Name:              "Downtown Gym",
		Category:          "gym",
		Location:          "12 Main St",
		Capacity:          20,
		PricePerHourCents: 1500,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v.ID)
	assert.True(t, v.IsActive)
}

func TestUpdateVenuePartial(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs(1).
		WillReturnRows(venueRow(1, 7, 20, true))

	// only capacity changes, the rest carries over from the existing row
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE venues")).
		WithArgs(25, true, "12 Main St", 1).
		WillReturnRows(venueRow(1, 7, 25, true))

	newCapacity := 25
	v, err := repo.UpdateVenue(context.Background(), 1, 7, UpdateVenueRequest{Capacity: &newCapacity})
	require.NoError(t, err)
	assert.Equal(t, 25, v.Capacity)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateVenueWrongOwner(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs(1).
		WillReturnRows(venueRow(1, 7, 20, true))

	deactivate := false
	_, err := repo.UpdateVenue(context.Background(), 1, 99, UpdateVenueRequest{IsActive: &deactivate})
	assert.ErrorIs(t, err, ErrNotVenueOwner)
}
