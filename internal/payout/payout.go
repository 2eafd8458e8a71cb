// Package payout abstracts the transfer of withdrawn funds to an
// organizer.  The ledger only ever talks to the Gateway interface; the
// concrete provider behind it is deployment configuration.
package payout

import (
	"context"
	"log"
)

// Gateway pays out an amount to an external identity.  Transfer must
// be synchronous: when it returns nil the funds are considered
// irrevocably sent, and on error the caller rolls the withdrawal back.
type Gateway interface {
	// Transfer sends amountCents to the account registered for the
	// identity `to`.  The reference ties the payout to a ledger event
	// for reconciliation.
	Transfer(ctx context.Context, to string, amountCents uint64, reference string) error
}

// BankTransfer is a stand-in provider that records payouts in the log
// and always succeeds.  A real deployment substitutes a provider
// integration behind the same interface.
type BankTransfer struct{}

func NewBankTransfer() *BankTransfer { return &BankTransfer{} }

func (BankTransfer) Transfer(ctx context.Context, to string, amountCents uint64, reference string) error {
	log.Printf("payout: transferred %d cents to %s (ref=%s)", amountCents, to, reference)
	return nil
}
