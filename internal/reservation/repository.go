package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"venueslot/internal/db"
	"venueslot/internal/ledger"

	"github.com/jmoiron/sqlx"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidState        = errors.New("reservation is in a terminal state")
)

const reservationColumns = `id, venue_id, requester_id, date, start_slot, duration_hours, attendees, status, total_price_cents, created_at, cancelled_at, cancel_reason`

type repository struct {
	db *sqlx.DB
}

func NewRepository(database *sqlx.DB) Repository {
	return &repository{db: database}
}

// Admit checks and consumes capacity as one atomic unit. Every spanned
// bucket is locked (ascending), availability is recomputed on the locked
// rows, and only then are booked_slots incremented and the reservation row
// inserted. A shortfall on any bucket rolls the whole thing back and reports
// the minimum available units across the span.
func (r *repository) Admit(ctx context.Context, params AdmitParams) (*Reservation, error) {
	slots, err := ledger.SpanSlots(params.StartSlot, params.DurationHours)
	if err != nil {
		return nil, err
	}

	var created *Reservation
	err = db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		entries, err := ledger.LockEntries(ctx, tx, params.VenueID, params.Date, slots, params.VenueCapacity)
		if err != nil {
			return err
		}

		minAvailable := entries[0].Available()
		for _, e := range entries[1:] {
			if a := e.Available(); a < minAvailable {
				minAvailable = a
			}
		}
		if minAvailable < params.Attendees {
			return &ledger.InsufficientCapacityError{Available: minAvailable}
		}

		for i := range entries {
			if err := entries[i].Reserve(params.Attendees); err != nil {
				return err
			}
		}
		if err := ledger.SaveEntries(ctx, tx, entries); err != nil {
			return err
		}

		query := `
			INSERT INTO reservations (venue_id, requester_id, date, start_slot, duration_hours, attendees, status, total_price_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING ` + reservationColumns

		var res Reservation
		if err := tx.GetContext(ctx, &res, query,
			params.VenueID, params.RequesterID, params.Date, params.StartSlot,
			params.DurationHours, params.Attendees, params.Status, params.TotalPriceCents); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		created = &res
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Cancel flips the status and gives back exactly the units the reservation
// consumed, in the same transaction. A reservation already in a terminal
// state is rejected before any ledger row is touched, so a second cancel can
// never decrement twice.
func (r *repository) Cancel(ctx context.Context, id int, reason string) (*Reservation, error) {
	var cancelled *Reservation
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := lockReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if res.Status.Terminal() {
			return ErrInvalidState
		}

		slots, err := res.Buckets()
		if err != nil {
			return err
		}

		entries, err := ledger.LockEntries(ctx, tx, res.VenueID, res.Date, slots, 0)
		if err != nil {
			return err
		}
		for i := range entries {
			if err := entries[i].Release(res.Attendees); err != nil {
				return err
			}
		}
		if err := ledger.SaveEntries(ctx, tx, entries); err != nil {
			return err
		}

		query := `
			UPDATE reservations
			SET status = 'cancelled', cancelled_at = NOW(), cancel_reason = $1
			WHERE id = $2
			RETURNING ` + reservationColumns

		var updated Reservation
		if err := tx.GetContext(ctx, &updated, query, nullable(reason), id); err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}
		cancelled = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

// UpdateSchedule moves a reservation to a new slot as one atomic
// release-then-reserve. Ledger rows for the old and new span are locked in
// one globally ascending (date, time_slot) order; if the new span lacks
// capacity the transaction rolls back and the reservation keeps its original
// schedule and ledger consumption.
func (r *repository) UpdateSchedule(ctx context.Context, id int, params ScheduleParams) (*Reservation, error) {
	newSlots, err := ledger.SpanSlots(params.StartSlot, params.DurationHours)
	if err != nil {
		return nil, err
	}

	var updated *Reservation
	err = db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := lockReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if res.Status.Terminal() {
			return ErrInvalidState
		}

		oldSlots, err := res.Buckets()
		if err != nil {
			return err
		}

		// Group the union of old and new buckets by date and lock the
		// groups in ascending date order. Callers moving in opposite
		// directions between two dates therefore lock in the same order.
		groups := map[string]map[string]bool{}
		addSlots(groups, res.Date, oldSlots)
		addSlots(groups, params.Date, newSlots)

		dates := make([]string, 0, len(groups))
		for d := range groups {
			dates = append(dates, d)
		}
		sort.Strings(dates)

		locked := map[string]*ledger.Entry{}
		for _, d := range dates {
			slots := make([]string, 0, len(groups[d]))
			for s := range groups[d] {
				slots = append(slots, s)
			}
			sort.Strings(slots)

			entries, err := ledger.LockEntries(ctx, tx, res.VenueID, d, slots, params.VenueCapacity)
			if err != nil {
				return err
			}
			for i := range entries {
				locked[d+" "+entries[i].TimeSlot] = &entries[i]
			}
		}

		for _, s := range oldSlots {
			if err := locked[res.Date+" "+s].Release(res.Attendees); err != nil {
				return err
			}
		}

		minAvailable := -1
		for _, s := range newSlots {
			if a := locked[params.Date+" "+s].Available(); minAvailable < 0 || a < minAvailable {
				minAvailable = a
			}
		}
		if minAvailable < res.Attendees {
			return &ledger.InsufficientCapacityError{Available: minAvailable}
		}
		for _, s := range newSlots {
			if err := locked[params.Date+" "+s].Reserve(res.Attendees); err != nil {
				return err
			}
		}

		all := make([]ledger.Entry, 0, len(locked))
		for _, e := range locked {
			all = append(all, *e)
		}
		if err := ledger.SaveEntries(ctx, tx, all); err != nil {
			return err
		}

		query := `
			UPDATE reservations
			SET date = $1, start_slot = $2, duration_hours = $3, total_price_cents = $4
			WHERE id = $5
			RETURNING ` + reservationColumns

		var moved Reservation
		if err := tx.GetContext(ctx, &moved, query,
			params.Date, params.StartSlot, params.DurationHours, params.TotalPriceCents, id); err != nil {
			return fmt.Errorf("update reservation schedule: %w", err)
		}
		updated = &moved
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// UpdateStatus performs a guarded transition: the row is only updated when
// it is still in the expected source state.
func (r *repository) UpdateStatus(ctx context.Context, id int, from, to Status) (*Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING ` + reservationColumns

	var res Reservation
	err := r.db.GetContext(ctx, &res, query, to, id, from)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// distinguish a missing row from a lost transition race
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrInvalidState
		}
		return nil, err
	}

	return &res, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	var res Reservation
	err := r.db.GetContext(ctx, &res, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	return &res, nil
}

func (r *repository) ListByRequester(ctx context.Context, requesterID int) ([]Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE requester_id = $1
		ORDER BY created_at DESC
	`

	var reservations []Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, requesterID); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (r *repository) ListByVenue(ctx context.Context, venueID int) ([]Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE venue_id = $1
		ORDER BY date DESC, start_slot DESC, created_at DESC
	`

	var reservations []Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, venueID); err != nil {
		return nil, err
	}

	return reservations, nil
}

func lockReservation(ctx context.Context, tx *sqlx.Tx, id int) (*Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`

	var res Reservation
	err := tx.GetContext(ctx, &res, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("lock reservation: %w", err)
	}

	return &res, nil
}

func addSlots(groups map[string]map[string]bool, date string, slots []string) {
	if groups[date] == nil {
		groups[date] = map[string]bool{}
	}
	for _, s := range slots {
		groups[date][s] = true
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
