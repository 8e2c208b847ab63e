package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetEntry(ctx context.Context, venueID int, date, timeSlot string) (*Entry, error) {
	query := `
		SELECT venue_id, date, time_slot, total_slots, booked_slots
		FROM slot_ledger
		WHERE venue_id = $1 AND date = $2 AND time_slot = $3
	`

	var e Entry
	err := r.db.GetContext(ctx, &e, query, venueID, date, timeSlot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	return &e, nil
}

func (r *repository) GetEntriesForDay(ctx context.Context, venueID int, date string) ([]Entry, error) {
	query := `
		SELECT venue_id, date, time_slot, total_slots, booked_slots
		FROM slot_ledger
		WHERE venue_id = $1 AND date = $2
		ORDER BY time_slot ASC
	`

	var entries []Entry
	err := r.db.SelectContext(ctx, &entries, query, venueID, date)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// LockEntries lazily creates the ledger rows for the given buckets and takes
// row-level locks on them. Rows are always locked in ascending time_slot
// order so two overlapping multi-bucket bookings cannot deadlock each other.
// The rows stay locked until the surrounding transaction commits or rolls
// back.
func LockEntries(ctx context.Context, tx *sqlx.Tx, venueID int, date string, slots []string, defaultTotal int) ([]Entry, error) {
	ordered := make([]string, len(slots))
	copy(ordered, slots)
	sort.Strings(ordered)

	upsert := `
		INSERT INTO slot_ledger (venue_id, date, time_slot, total_slots, booked_slots)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (venue_id, date, time_slot) DO NOTHING
	`
	for _, slot := range ordered {
		if _, err := tx.ExecContext(ctx, upsert, venueID, date, slot, defaultTotal); err != nil {
			return nil, fmt.Errorf("upsert ledger row %s: %w", slot, err)
		}
	}

	query := `
		SELECT venue_id, date, time_slot, total_slots, booked_slots
		FROM slot_ledger
		WHERE venue_id = $1 AND date = $2 AND time_slot = ANY($3)
		ORDER BY time_slot ASC
		FOR UPDATE
	`

	var entries []Entry
	if err := tx.SelectContext(ctx, &entries, query, venueID, date, pq.Array(ordered)); err != nil {
		return nil, fmt.Errorf("lock ledger rows: %w", err)
	}
	if len(entries) != len(ordered) {
		return nil, fmt.Errorf("lock ledger rows: expected %d rows, got %d", len(ordered), len(entries))
	}

	return entries, nil
}

// SaveEntries writes back booked_slots for rows previously locked by
// LockEntries in the same transaction.
func SaveEntries(ctx context.Context, tx *sqlx.Tx, entries []Entry) error {
	query := `
		UPDATE slot_ledger
		SET booked_slots = $1
		WHERE venue_id = $2 AND date = $3 AND time_slot = $4
	`

	for i := range entries {
		e := &entries[i]
		res, err := tx.ExecContext(ctx, query, e.BookedSlots, e.VenueID, e.Date, e.TimeSlot)
		if err != nil {
			return fmt.Errorf("save ledger row %s: %w", e.TimeSlot, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrEntryNotFound
		}
	}

	return nil
}
