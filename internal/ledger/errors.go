// Package ledger implements the ticketing ledger: an append-only
// registry of events and tickets with single-owner transfer and
// organizer fund withdrawal.  All mutating operations run under one
// mutex so the ledger observes a single global operation sequence, and
// a failure anywhere in an operation leaves no partial effect.
package ledger

import "errors"

// Sentinel errors returned by ledger operations.  Handlers compare
// against these with errors.Is to pick HTTP status codes.  Any other
// error from a ledger operation is a storage or payout infrastructure
// failure.
var (
	// ErrEventNotFound is returned when the referenced event id was
	// never allocated.
	ErrEventNotFound = errors.New("event not found")

	// ErrTicketNotFound is returned when the referenced ticket id was
	// never allocated.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrEventClosed rejects purchases on an event whose organizer has
	// closed it.
	ErrEventClosed = errors.New("event is closed")

	// ErrSoldOut rejects purchases once sold == capacity.
	ErrSoldOut = errors.New("event is sold out")

	// ErrIncorrectPayment rejects purchases whose attached amount is
	// not exactly the event price, in either direction.
	ErrIncorrectPayment = errors.New("payment must equal the ticket price exactly")

	// ErrNotOrganizer is returned when a caller other than the event's
	// organizer attempts to withdraw or close.
	ErrNotOrganizer = errors.New("caller is not the event organizer")

	// ErrNotOwner is returned when a caller other than the ticket's
	// current owner attempts a transfer.
	ErrNotOwner = errors.New("caller is not the ticket owner")

	// ErrInvalidCapacity rejects event creation with capacity == 0.
	ErrInvalidCapacity = errors.New("capacity must be greater than zero")

	// ErrEmptyRecipient rejects transfers to the empty identity.
	ErrEmptyRecipient = errors.New("recipient identity must not be empty")

	// ErrNothingToWithdraw is returned when the event balance is zero.
	ErrNothingToWithdraw = errors.New("nothing to withdraw")

	// ErrPayoutFailed wraps a failure of the external payout step; the
	// withdraw is rolled back and the balance restored.
	ErrPayoutFailed = errors.New("payout failed")
)
