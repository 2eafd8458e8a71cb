// Package queue defines the notifications the ledger emits over the
// message broker, one per successful mutating operation, plus the
// consumer that turns them into an audit log.
package queue

// Notification kinds, used as the envelope discriminator.
const (
	KindEventCreated      = "event.created"
	KindTicketPurchased   = "ticket.purchased"
	KindTicketTransferred = "ticket.transferred"
	KindFundsWithdrawn    = "funds.withdrawn"
	KindEventClosed       = "event.closed"
)

// EventCreatedNotice is emitted when an organizer registers an event.
type EventCreatedNotice struct {
	EventID    uint64 `json:"event_id"`
	Organizer  string `json:"organizer"`
	Name       string `json:"name"`
	PriceCents uint64 `json:"price_cents"`
	Capacity   uint32 `json:"capacity"`
}

// TicketPurchasedNotice is emitted for every successful purchase.
type TicketPurchasedNotice struct {
	EventID     uint64 `json:"event_id"`
	TicketID    uint64 `json:"ticket_id"`
	Buyer       string `json:"buyer"`
	AmountCents uint64 `json:"amount_cents"`
}

// TicketTransferredNotice is emitted when a ticket changes owner.
type TicketTransferredNotice struct {
	TicketID uint64 `json:"ticket_id"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// FundsWithdrawnNotice is emitted when an organizer drains an event's
// balance.
type FundsWithdrawnNotice struct {
	EventID     uint64 `json:"event_id"`
	Organizer   string `json:"organizer"`
	AmountCents uint64 `json:"amount_cents"`
}

// EventClosedNotice is emitted when an organizer closes an event.
type EventClosedNotice struct {
	EventID uint64 `json:"event_id"`
}
