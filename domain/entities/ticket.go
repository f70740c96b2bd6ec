package entities

import (
	"time"
)

// Ticket is a player's combination for one round
type Ticket struct {
	ID               int64     `db:"id"`
	RoundID          int64     `db:"round_id"`
	Wallet           string    `db:"wallet"`
	Numbers          string    `db:"numbers"`            // "NN-NN-NN-NN-NN-NN"
	PurchaseTxHash   *string   `db:"purchase_tx_hash"`   // Payment that bought the ticket
	IsCompleted      bool      `db:"is_completed"`       // Settlement processed
	IsWinner         bool      `db:"is_winner"`
	SettlementTxHash *string   `db:"settlement_tx_hash"` // Prize transfer, winners only
	CreatedAt        time.Time `db:"created_at"`
}

// Combination parses the ticket numbers
func (t *Ticket) Combination() (Combination, error) {
	return ParseCombination(t.Numbers)
}
