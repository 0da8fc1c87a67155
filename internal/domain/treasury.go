package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TreasuryAccountID is the id of the single treasury row. The row is
// provisioned by migration; no runtime code path creates it.
const TreasuryAccountID = "main"

// TreasuryAccount is the agency's single running cash balance. Negative
// balances are permitted and represent real-world overdraft or lag.
type TreasuryAccount struct {
	ID        string
	Name      string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Apply returns the balance after applying a signed delta.
func (a *TreasuryAccount) Apply(delta decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(delta)
}

// EntryDirection tells whether money entered or left the till.
type EntryDirection string

const (
	DirectionIn  EntryDirection = "in"
	DirectionOut EntryDirection = "out"
)

// DirectionOf derives the entry direction from the sign of a delta.
// A zero delta counts as in, matching the balance update semantics.
func DirectionOf(delta decimal.Decimal) EntryDirection {
	if delta.IsNegative() {
		return DirectionOut
	}
	return DirectionIn
}

// OriginKind identifies the business entity that caused a ledger entry.
// This is a closed set; the treasury rejects anything outside it.
type OriginKind string

const (
	OriginBooking       OriginKind = "booking"
	OriginPayment       OriginKind = "payment"
	OriginExpense       OriginKind = "expense"
	OriginAdvance       OriginKind = "advance"
	OriginIssuerPayment OriginKind = "issuer_payment"
	OriginOther         OriginKind = "other"
)

var validOriginKinds = map[OriginKind]bool{
	OriginBooking:       true,
	OriginPayment:       true,
	OriginExpense:       true,
	OriginAdvance:       true,
	OriginIssuerPayment: true,
	OriginOther:         true,
}

// Valid reports whether the origin kind belongs to the closed set.
func (k OriginKind) Valid() bool {
	return validOriginKinds[k]
}

// LedgerEntry is one immutable row of the treasury history. Amount is
// always stored as an absolute value with the sign carried by Direction.
// Entries are never edited or deleted; a reversal is a new entry with the
// opposite direction. Replaying all entries in insertion order must
// reconstruct the account balance exactly.
type LedgerEntry struct {
	ID           string
	Amount       decimal.Decimal
	Direction    EntryDirection
	Description  string
	OriginKind   OriginKind
	OriginID     string
	Actor        string
	BalanceAfter decimal.Decimal
	CreatedAt    time.Time
}

// SignedAmount returns the entry's contribution to the running balance.
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Direction == DirectionOut {
		return e.Amount.Neg()
	}
	return e.Amount
}
