package model

import "time"

// Event is a ticketed occasion registered on the ledger.  Events are
// append-only: they are never deleted, only closed.  The organizer is
// fixed at creation and is the sole identity allowed to withdraw the
// accrued balance or close the event.
//
// Fields:
//  ID           – ledger-assigned identifier, monotonic from 1.
//  Organizer    – identity that created the event, immutable.
//  Name         – display name.
//  Date         – optional scheduled date; advisory only, never validated.
//  PriceCents   – exact price of one ticket in cents.
//  Capacity     – maximum number of tickets, fixed at creation, always > 0.
//  Sold         – tickets sold so far; never exceeds Capacity.
//  BalanceCents – accrued purchase payments not yet withdrawn.
//  Active       – true until the organizer closes the event; one-way.
//  CreatedAt    – creation timestamp.
type Event struct {
	ID           uint64     // events.id
	Organizer    string     // events.organizer
	Name         string     // events.name
	Date         *time.Time // events.event_date (nullable)
	PriceCents   uint64     // events.price_cents
	Capacity     uint32     // events.capacity
	Sold         uint32     // events.sold
	BalanceCents uint64     // events.balance_cents
	Active       bool       // events.active
	CreatedAt    time.Time  // events.created_at
}

// SoldOut reports whether every ticket for the event has been sold.
func (e *Event) SoldOut() bool { return e.Sold >= e.Capacity }
