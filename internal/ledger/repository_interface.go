package ledger

import "context"

// Repository is the read-only view of the ledger. Mutations never go through
// it; they run on locked rows inside a transaction via LockEntries and
// SaveEntries.
type Repository interface {
	GetEntry(ctx context.Context, venueID int, date, timeSlot string) (*Entry, error)
	GetEntriesForDay(ctx context.Context, venueID int, date string) ([]Entry, error)
}
