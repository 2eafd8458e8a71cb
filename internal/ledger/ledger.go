package ledger

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"ticket-ledger/internal/model"
	"ticket-ledger/internal/payout"
)

// Ledger holds the authoritative ticketing state: events and tickets
// keyed by id, plus the append-only owner index.  One mutex guards
// every operation, so operations execute in a single global sequence
// with no interleaving.  Durability is write-through: a mutation is
// applied in memory only after the Store has committed it, which keeps
// "no partial effect on failure" intact across process restarts.
//
// The owner index is a historical convenience listing and is never
// pruned: after a transfer the ticket id remains in the previous
// owner's sequence.  Current ownership is decided solely by the
// ticket record's Owner field.
type Ledger struct {
	mu sync.Mutex

	store   Store
	payouts payout.Gateway

	events     map[uint64]*model.Event
	tickets    map[uint64]*model.Ticket
	ownerIndex map[string][]uint64

	// Two independent monotonic sequences, starting at 1, never reused.
	nextEventID  uint64
	nextTicketID uint64

	now func() time.Time
}

// New returns an empty ledger backed by the given store and payout
// gateway.  Call Load before serving requests to restore persisted
// state.
func New(store Store, payouts payout.Gateway) *Ledger {
	return &Ledger{
		store:        store,
		payouts:      payouts,
		events:       make(map[uint64]*model.Event),
		tickets:      make(map[uint64]*model.Ticket),
		ownerIndex:   make(map[string][]uint64),
		nextEventID:  1,
		nextTicketID: 1,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Load restores ledger state from the store.  A nil snapshot (empty
// store) leaves the ledger empty with both id sequences at 1.
func (l *Ledger) Load(ctx context.Context) error {
	snap, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger state: %w", err)
	}
	if snap == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = snap.Events
	l.tickets = snap.Tickets
	l.ownerIndex = snap.OwnerIndex
	if snap.NextEventID > 0 {
		l.nextEventID = snap.NextEventID
	}
	if snap.NextTicketID > 0 {
		l.nextTicketID = snap.NextTicketID
	}
	return nil
}

// CreateEvent registers a new event with the caller as organizer.  The
// date is advisory and may be nil.  Capacity must be positive.
func (l *Ledger) CreateEvent(ctx context.Context, organizer, name string, date *time.Time, priceCents uint64, capacity uint32) (model.Event, error) {
	if capacity == 0 {
		return model.Event{}, ErrInvalidCapacity
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ev := model.Event{
		ID:         l.nextEventID,
		Organizer:  organizer,
		Name:       name,
		Date:       date,
		PriceCents: priceCents,
		Capacity:   capacity,
		Active:     true,
		CreatedAt:  l.now(),
	}
	if err := l.store.CreateEvent(ctx, ev); err != nil {
		return model.Event{}, fmt.Errorf("persist event: %w", err)
	}
	l.nextEventID++
	stored := ev
	l.events[ev.ID] = &stored
	return ev, nil
}

// BuyTicket purchases one ticket for the event, paying amountCents.
// The payment must equal the event price exactly; overpayment is
// rejected the same as underpayment so the event balance is always the
// sum of exact prices paid.  Guards run in order: existence, active,
// capacity, payment.
func (l *Ledger) BuyTicket(ctx context.Context, buyer string, eventID, amountCents uint64) (model.Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev, ok := l.events[eventID]
	if !ok {
		return model.Ticket{}, ErrEventNotFound
	}
	if !ev.Active {
		return model.Ticket{}, ErrEventClosed
	}
	if ev.SoldOut() {
		return model.Ticket{}, ErrSoldOut
	}
	if amountCents != ev.PriceCents {
		return model.Ticket{}, ErrIncorrectPayment
	}

	t := model.Ticket{
		ID:          l.nextTicketID,
		EventID:     eventID,
		Owner:       buyer,
		PurchasedAt: l.now(),
	}
	updated := *ev
	updated.Sold++
	updated.BalanceCents += amountCents

	if err := l.store.RecordPurchase(ctx, updated, t); err != nil {
		return model.Ticket{}, fmt.Errorf("persist purchase: %w", err)
	}

	l.nextTicketID++
	*ev = updated
	stored := t
	l.tickets[t.ID] = &stored
	l.ownerIndex[buyer] = append(l.ownerIndex[buyer], t.ID)
	return t, nil
}

// TransferTicket reassigns a ticket to a new owner.  Only the current
// owner may transfer, and the recipient identity must be non-empty.
// The ticket id is appended to the recipient's index sequence; the
// previous owner's sequence keeps the stale entry.
func (l *Ledger) TransferTicket(ctx context.Context, caller string, ticketID uint64, to string) (model.Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.tickets[ticketID]
	if !ok {
		return model.Ticket{}, ErrTicketNotFound
	}
	if t.Owner != caller {
		return model.Ticket{}, ErrNotOwner
	}
	if to == "" {
		return model.Ticket{}, ErrEmptyRecipient
	}

	updated := *t
	updated.Owner = to
	if err := l.store.RecordTransfer(ctx, updated); err != nil {
		return model.Ticket{}, fmt.Errorf("persist transfer: %w", err)
	}

	*t = updated
	l.ownerIndex[to] = append(l.ownerIndex[to], t.ID)
	return updated, nil
}

// WithdrawFunds pays the event's accrued balance out to its organizer
// and resets the balance to zero.  The balance is zeroed and persisted
// before the external payout runs, so a reentrant call can never
// observe a stale non-zero balance.  If the payout itself fails, the
// balance is restored and the operation reports ErrPayoutFailed.
func (l *Ledger) WithdrawFunds(ctx context.Context, caller string, eventID uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev, ok := l.events[eventID]
	if !ok {
		return 0, ErrEventNotFound
	}
	if ev.Organizer != caller {
		return 0, ErrNotOrganizer
	}
	amount := ev.BalanceCents
	if amount == 0 {
		return 0, ErrNothingToWithdraw
	}

	zeroed := *ev
	zeroed.BalanceCents = 0
	if err := l.store.UpdateEvent(ctx, zeroed); err != nil {
		return 0, fmt.Errorf("persist withdrawal: %w", err)
	}
	*ev = zeroed

	ref := fmt.Sprintf("withdraw-event-%d", eventID)
	if err := l.payouts.Transfer(ctx, ev.Organizer, amount, ref); err != nil {
		// Roll the withdrawal back: the balance was zeroed but no value
		// left the ledger.
		restored := *ev
		restored.BalanceCents = amount
		if rerr := l.store.UpdateEvent(ctx, restored); rerr != nil {
			log.Printf("ledger: restoring balance for event %d after failed payout: %v", eventID, rerr)
		}
		*ev = restored
		return 0, fmt.Errorf("%w: %v", ErrPayoutFailed, err)
	}
	return amount, nil
}

// CloseEvent deactivates the event, permanently.  There is no path to
// reopen a closed event.  Already-sold tickets and any pending balance
// are unaffected.
func (l *Ledger) CloseEvent(ctx context.Context, caller string, eventID uint64) (model.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev, ok := l.events[eventID]
	if !ok {
		return model.Event{}, ErrEventNotFound
	}
	if ev.Organizer != caller {
		return model.Event{}, ErrNotOrganizer
	}

	closed := *ev
	closed.Active = false
	if err := l.store.UpdateEvent(ctx, closed); err != nil {
		return model.Event{}, fmt.Errorf("persist close: %w", err)
	}
	*ev = closed
	return closed, nil
}

// GetEvent returns a copy of the event record.
func (l *Ledger) GetEvent(eventID uint64) (model.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ev, ok := l.events[eventID]
	if !ok {
		return model.Event{}, ErrEventNotFound
	}
	return *ev, nil
}

// GetTicket returns a copy of the ticket record.
func (l *Ledger) GetTicket(ticketID uint64) (model.Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.tickets[ticketID]
	if !ok {
		return model.Ticket{}, ErrTicketNotFound
	}
	return *t, nil
}

// TicketsOf returns the owner-index sequence for an identity.  The
// sequence is historical: it may contain ids the identity no longer
// owns and the same id more than once.  Identities with no history get
// an empty slice.
func (l *Ledger) TicketsOf(identity string) []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := l.ownerIndex[identity]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}
