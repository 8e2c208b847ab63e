package availability

import (
	"context"
	"testing"

	"venueslot/internal/ledger"
	"venueslot/internal/venue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVenueRepo struct{ mock.Mock }

func (m *MockVenueRepo) GetVenueByID(ctx context.Context, id int) (*venue.Venue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*venue.Venue), args.Error(1)
}

func (m *MockVenueRepo) GetAllVenues(ctx context.Context) ([]venue.Venue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]venue.Venue), args.Error(1)
}

func (m *MockVenueRepo) GetVenuesByBusiness(ctx context.Context, businessID int) ([]venue.Venue, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]venue.Venue), args.Error(1)
}

func (m *MockVenueRepo) CreateVenue(ctx context.Context, businessID int, req venue.CreateVenueRequest) (*venue.Venue, error) {
	args := m.Called(ctx, businessID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*venue.Venue), args.Error(1)
}

func (m *MockVenueRepo) UpdateVenue(ctx context.Context, id, businessID int, req venue.UpdateVenueRequest) (*venue.Venue, error) {
	args := m.Called(ctx, id, businessID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*venue.Venue), args.Error(1)
}

type MockLedgerRepo struct{ mock.Mock }

func (m *MockLedgerRepo) GetEntry(ctx context.Context, venueID int, date, timeSlot string) (*ledger.Entry, error) {
	args := m.Called(ctx, venueID, date, timeSlot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) GetEntriesForDay(ctx context.Context, venueID int, date string) ([]ledger.Entry, error) {
	args := m.Called(ctx, venueID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Entry), args.Error(1)
}

func testVenue() *venue.Venue {
	return &venue.Venue{ID: 1, BusinessID: 7, Capacity: 5, PricePerHourCents: 1000, IsActive: true}
}

func TestComputeAvailabilityNoLedgerRow(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	ledgerRepo := new(MockLedgerRepo)
	svc := NewService(venueRepo, ledgerRepo)

	venueRepo.On("GetVenueByID", mock.Anything, 1).Return(testVenue(), nil)
	ledgerRepo.On("GetEntry", mock.Anything, 1, "2024-06-01", "10:00").Return(nil, ledger.ErrEntryNotFound)

	a, err := svc.ComputeAvailability(context.Background(), 1, "2024-06-01", "10:00")
	require.NoError(t, err)
	assert.Equal(t, 5, a.TotalUnits)
	assert.Equal(t, 5, a.AvailableUnits)
	assert.True(t, a.IsAvailable)
}

func TestComputeAvailabilityWithLedgerRow(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	ledgerRepo := new(MockLedgerRepo)
	svc := NewService(venueRepo, ledgerRepo)

	venueRepo.On("GetVenueByID", mock.Anything, 1).Return(testVenue(), nil)
	ledgerRepo.On("GetEntry", mock.Anything, 1, "2024-06-01", "10:00").
		Return(&ledger.Entry{VenueID: 1, TotalSlots: 5, BookedSlots: 3}, nil)

	a, err := svc.ComputeAvailability(context.Background(), 1, "2024-06-01", "10:00")
	require.NoError(t, err)
	assert.Equal(t, 5, a.TotalUnits)
	assert.Equal(t, 2, a.AvailableUnits)
	assert.True(t, a.IsAvailable)
}

func TestComputeAvailabilityFullSlot(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	ledgerRepo := new(MockLedgerRepo)
	svc := NewService(venueRepo, ledgerRepo)

	venueRepo.On("GetVenueByID", mock.Anything, 1).Return(testVenue(), nil)
	ledgerRepo.On("GetEntry", mock.Anything, 1, "2024-06-01", "10:00").
		Return(&ledger.Entry{VenueID: 1, TotalSlots: 5, BookedSlots: 5}, nil)

	a, err := svc.ComputeAvailability(context.Background(), 1, "2024-06-01", "10:00")
	require.NoError(t, err)
	assert.Equal(t, 0, a.AvailableUnits)
	assert.False(t, a.IsAvailable)
}

// Reads have no side effects: two identical calls return identical results.
func TestComputeAvailabilityIdempotent(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	ledgerRepo := new(MockLedgerRepo)
	svc := NewService(venueRepo, ledgerRepo)

	venueRepo.On("GetVenueByID", mock.Anything, 1).Return(testVenue(), nil).Twice()
	ledgerRepo.On("GetEntry", mock.Anything, 1, "2024-06-01", "10:00").
		Return(&ledger.Entry{VenueID: 1, TotalSlots: 5, BookedSlots: 2}, nil).Twice()

	first, err := svc.ComputeAvailability(context.Background(), 1, "2024-06-01", "10:00")
	require.NoError(t, err)
	second, err := svc.ComputeAvailability(context.Background(), 1, "2024-06-01", "10:00")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	ledgerRepo.AssertExpectations(t)
}

func TestComputeAvailabilityValidation(t *testing.T) {
	svc := NewService(new(MockVenueRepo), new(MockLedgerRepo))

	_, err := svc.ComputeAvailability(context.Background(), 1, "bad-date", "10:00")
	assert.ErrorIs(t, err, ledger.ErrInvalidDate)

	_, err = svc.ComputeAvailability(context.Background(), 1, "2024-06-01", "10:30")
	assert.ErrorIs(t, err, ledger.ErrInvalidSlot)
}

func TestComputeAvailabilityVenueNotFound(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	svc := NewService(venueRepo, new(MockLedgerRepo))

	venueRepo.On("GetVenueByID", mock.Anything, 42).Return(nil, venue.ErrVenueNotFound)

	_, err := svc.ComputeAvailability(context.Background(), 42, "2024-06-01", "10:00")
	assert.ErrorIs(t, err, venue.ErrVenueNotFound)
}

func TestComputeDayAvailability(t *testing.T) {
	venueRepo := new(MockVenueRepo)
	ledgerRepo := new(MockLedgerRepo)
	svc := NewService(venueRepo, ledgerRepo)

	venueRepo.On("GetVenueByID", mock.Anything, 1).Return(testVenue(), nil)
	ledgerRepo.On("GetEntriesForDay", mock.Anything, 1, "2024-06-01").Return([]ledger.Entry{
		{VenueID: 1, Date: "2024-06-01", TimeSlot: "10:00", TotalSlots: 5, BookedSlots: 5},
		{VenueID: 1, Date: "2024-06-01", TimeSlot: "14:00", TotalSlots: 5, BookedSlots: 1},
	}, nil)

	day, err := svc.ComputeDayAvailability(context.Background(), 1, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, day.Slots, 24)

	assert.Equal(t, "00:00", day.Slots[0].TimeSlot)
	assert.Equal(t, 5, day.Slots[0].AvailableUnits)

	assert.Equal(t, "10:00", day.Slots[10].TimeSlot)
	assert.Equal(t, 0, day.Slots[10].AvailableUnits)
	assert.False(t, day.Slots[10].IsAvailable)

	assert.Equal(t, 4, day.Slots[14].AvailableUnits)
}
