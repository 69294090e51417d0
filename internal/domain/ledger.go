package domain

import "time"

// EntryKind is the direction of a ledger movement.
type EntryKind string

const (
	EntryCredit EntryKind = "credit"
	EntryDebit  EntryKind = "debit"
)

// Starting balances and grants.
const (
	StartingBalance   = 100
	NewUserBonus      = 50
	DailyReward       = 20
	LoyaltyBonus      = 50
	LoyaltyStreakDays = 7
)

// LedgerEntry is one audited coin movement. Balance is the balance after it.
type LedgerEntry struct {
	ID        string    `json:"id"`
	Kind      EntryKind `json:"kind"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	Balance   int       `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}
