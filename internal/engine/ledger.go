package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// Ledger owns the coin balance. The balance never goes negative: Debit refuses
// any amount above it.
type Ledger struct {
	balance int
	entries []domain.LedgerEntry
	events  emitter
}

// NewLedger creates a ledger holding the given opening balance. sink may be nil.
func NewLedger(balance int, sink domain.EventSink, now func() time.Time) *Ledger {
	return &Ledger{balance: max(0, balance), events: newEmitter(sink, now)}
}

// Credit adds amount to the balance and returns the new balance. Non-positive
// amounts are ignored.
func (l *Ledger) Credit(amount int, reason string) int {
	if amount <= 0 {
		return l.balance
	}
	l.balance += amount
	l.record(domain.EntryCredit, amount, reason)
	return l.balance
}

// Debit subtracts amount and reports true, or reports false without any
// change when amount is not positive or exceeds the balance.
func (l *Ledger) Debit(amount int, reason string) bool {
	if amount <= 0 || amount > l.balance {
		return false
	}
	l.balance -= amount
	l.record(domain.EntryDebit, amount, reason)
	return true
}

// Balance returns the current balance.
func (l *Ledger) Balance() int { return l.balance }

// Entries returns the session audit trail, oldest first.
func (l *Ledger) Entries() []domain.LedgerEntry {
	out := make([]domain.LedgerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) record(kind domain.EntryKind, amount int, reason string) {
	entry := domain.LedgerEntry{
		ID:        uuid.New().String(),
		Kind:      kind,
		Amount:    amount,
		Reason:    reason,
		Balance:   l.balance,
		CreatedAt: l.events.clock(),
	}
	l.entries = append(l.entries, entry)

	typ := domain.EventLedgerCredit
	if kind == domain.EntryDebit {
		typ = domain.EventLedgerDebit
	}
	l.events.emit(domain.Event{Type: typ, Ledger: &entry})
}
