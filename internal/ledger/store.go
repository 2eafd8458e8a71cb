package ledger

import (
	"context"

	"ticket-ledger/internal/model"
)

// Store persists ledger mutations and reloads state at boot.  Every
// method that writes more than one row must do so atomically: the
// ledger applies a mutation to its in-memory state only after the
// store reports the mutation durably committed, so a store error
// aborts the whole operation with no effect.
type Store interface {
	// Load returns the full persisted ledger state.  Called once at
	// startup before the ledger serves any operation.
	Load(ctx context.Context) (*Snapshot, error)

	// CreateEvent inserts a new event record.
	CreateEvent(ctx context.Context, ev model.Event) error

	// RecordPurchase atomically inserts the ticket, writes the updated
	// sold counter and balance for its event, and appends the ticket id
	// to the buyer's owner-index sequence.
	RecordPurchase(ctx context.Context, ev model.Event, t model.Ticket) error

	// RecordTransfer atomically writes the ticket's new owner and
	// appends the ticket id to the recipient's owner-index sequence.
	// The previous owner's sequence is left untouched.
	RecordTransfer(ctx context.Context, t model.Ticket) error

	// UpdateEvent overwrites the mutable event fields (sold, balance,
	// active).  Used by withdraw and close, and by the withdraw
	// compensation path when a payout fails.
	UpdateEvent(ctx context.Context, ev model.Event) error
}

// Snapshot is the persisted ledger state handed back by Store.Load.
// Maps are keyed by record id; OwnerIndex preserves append order.
type Snapshot struct {
	Events     map[uint64]*model.Event
	Tickets    map[uint64]*model.Ticket
	OwnerIndex map[string][]uint64
	// NextEventID and NextTicketID continue the two independent
	// monotonic sequences.  Ids are never reused.
	NextEventID  uint64
	NextTicketID uint64
}

// NopStore discards all writes and loads an empty state.  It backs a
// purely in-memory ledger, useful for tests and local development.
type NopStore struct{}

func (NopStore) Load(ctx context.Context) (*Snapshot, error) { return nil, nil }

func (NopStore) CreateEvent(ctx context.Context, ev model.Event) error { return nil }

func (NopStore) RecordPurchase(ctx context.Context, ev model.Event, t model.Ticket) error {
	return nil
}

func (NopStore) RecordTransfer(ctx context.Context, t model.Ticket) error { return nil }

func (NopStore) UpdateEvent(ctx context.Context, ev model.Event) error { return nil }
