package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ticket-ledger/internal/ledger"
	"ticket-ledger/internal/model"
)

// LedgerStore is the MySQL implementation of ledger.Store.  It is a
// write-through durability layer: the ledger validates every operation
// against its in-memory state and calls exactly one store method per
// mutation.  Methods that touch more than one table run inside a
// transaction so the whole mutation commits or rolls back as one.
//
// The owner_index table is append-only, mirroring the in-memory index:
// transfers insert a new row for the recipient and never delete the
// previous owner's rows.
type LedgerStore struct {
	db *sql.DB
}

// NewLedgerStore returns a LedgerStore bound to the given database.
func NewLedgerStore(db *sql.DB) *LedgerStore { return &LedgerStore{db: db} }

// CreateEvent inserts an event row.  The id comes from the ledger's
// own sequence, not from AUTO_INCREMENT, so restarts resume the
// sequence from the persisted maximum.
func (s *LedgerStore) CreateEvent(ctx context.Context, ev model.Event) error {
	const q = `INSERT INTO events
		(id, organizer, name, event_date, price_cents, capacity, sold, balance_cents, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		ev.ID, ev.Organizer, ev.Name, ev.Date, ev.PriceCents,
		ev.Capacity, ev.Sold, ev.BalanceCents, ev.Active, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event %d: %w", ev.ID, err)
	}
	return nil
}

// RecordPurchase inserts the ticket, writes the event's updated sold
// counter and balance, and appends the ticket id to the buyer's index
// sequence, all in one transaction.
func (s *LedgerStore) RecordPurchase(ctx context.Context, ev model.Event, t model.Ticket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purchase tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tickets (id, event_id, owner, purchased_at) VALUES (?, ?, ?, ?)`,
		t.ID, t.EventID, t.Owner, t.PurchasedAt); err != nil {
		return fmt.Errorf("insert ticket %d: %w", t.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET sold = ?, balance_cents = ? WHERE id = ?`,
		ev.Sold, ev.BalanceCents, ev.ID); err != nil {
		return fmt.Errorf("update event %d: %w", ev.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO owner_index (identity, ticket_id) VALUES (?, ?)`,
		t.Owner, t.ID); err != nil {
		return fmt.Errorf("append owner index for %s: %w", t.Owner, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit purchase tx: %w", err)
	}
	committed = true
	return nil
}

// RecordTransfer writes the ticket's new owner and appends the ticket
// id to the recipient's index sequence in one transaction.
func (s *LedgerStore) RecordTransfer(ctx context.Context, t model.Ticket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transfer tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`UPDATE tickets SET owner = ? WHERE id = ?`, t.Owner, t.ID); err != nil {
		return fmt.Errorf("update ticket %d owner: %w", t.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO owner_index (identity, ticket_id) VALUES (?, ?)`,
		t.Owner, t.ID); err != nil {
		return fmt.Errorf("append owner index for %s: %w", t.Owner, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer tx: %w", err)
	}
	committed = true
	return nil
}

// UpdateEvent overwrites the mutable event columns.
func (s *LedgerStore) UpdateEvent(ctx context.Context, ev model.Event) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE events SET sold = ?, balance_cents = ?, active = ? WHERE id = ?`,
		ev.Sold, ev.BalanceCents, ev.Active, ev.ID)
	if err != nil {
		return fmt.Errorf("update event %d: %w", ev.ID, err)
	}
	return nil
}

// Load reads the whole persisted ledger state and computes the next
// ids for the two independent sequences.
func (s *LedgerStore) Load(ctx context.Context) (*ledger.Snapshot, error) {
	snap := &ledger.Snapshot{
		Events:       make(map[uint64]*model.Event),
		Tickets:      make(map[uint64]*model.Ticket),
		OwnerIndex:   make(map[string][]uint64),
		NextEventID:  1,
		NextTicketID: 1,
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, organizer, name, event_date, price_cents, capacity, sold, balance_cents, active, created_at
		 FROM events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ev model.Event
		var date sql.NullTime
		if err := rows.Scan(&ev.ID, &ev.Organizer, &ev.Name, &date, &ev.PriceCents,
			&ev.Capacity, &ev.Sold, &ev.BalanceCents, &ev.Active, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if date.Valid {
			d := date.Time
			ev.Date = &d
		}
		snap.Events[ev.ID] = &ev
		if ev.ID >= snap.NextEventID {
			snap.NextEventID = ev.ID + 1
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	trows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, owner, purchased_at FROM tickets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}
	defer trows.Close()
	for trows.Next() {
		var t model.Ticket
		if err := trows.Scan(&t.ID, &t.EventID, &t.Owner, &t.PurchasedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		snap.Tickets[t.ID] = &t
		if t.ID >= snap.NextTicketID {
			snap.NextTicketID = t.ID + 1
		}
	}
	if err := trows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}

	// seq preserves the append order of each identity's sequence.
	irows, err := s.db.QueryContext(ctx,
		`SELECT identity, ticket_id FROM owner_index ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load owner index: %w", err)
	}
	defer irows.Close()
	for irows.Next() {
		var identity string
		var ticketID uint64
		if err := irows.Scan(&identity, &ticketID); err != nil {
			return nil, fmt.Errorf("scan owner index: %w", err)
		}
		snap.OwnerIndex[identity] = append(snap.OwnerIndex[identity], ticketID)
	}
	if err := irows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owner index: %w", err)
	}

	return snap, nil
}
