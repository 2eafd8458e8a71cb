package model

import "time"

// Ticket is a proof of purchase for one seat at one event.  Tickets are
// created only by a successful purchase and are never deleted.  The
// owner changes on transfer; everything else is immutable for the life
// of the ticket, including the purchase timestamp.
//
// Fields:
//  ID          – ledger-assigned identifier, monotonic from 1, a
//                sequence independent of event ids.
//  EventID     – event the ticket belongs to, fixed forever.
//  Owner       – current owner identity; the single source of truth for
//                ownership (the owner index is a historical hint only).
//  PurchasedAt – when the ticket was bought; unchanged by transfers.
type Ticket struct {
	ID          uint64    // tickets.id
	EventID     uint64    // tickets.event_id
	Owner       string    // tickets.owner
	PurchasedAt time.Time // tickets.purchased_at
}
