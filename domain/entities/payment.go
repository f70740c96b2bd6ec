package entities

import (
	"time"
)

// PaymentStatus is the outcome of a prize transfer
type PaymentStatus string

const (
	PaymentStatusSent   PaymentStatus = "sent"
	PaymentStatusFailed PaymentStatus = "failed"
)

// Payment is an append-only record of one prize transfer attempt
type Payment struct {
	ID        int64         `db:"id"`
	RoundID   int64         `db:"round_id"`
	TicketID  int64         `db:"ticket_id"`
	Wallet    string        `db:"wallet"`
	Amount    float64       `db:"amount"`
	TxHash    *string       `db:"tx_hash"` // NULL when the transfer failed
	Hits      HitCount      `db:"hits"`
	Status    PaymentStatus `db:"status"`
	Error     *string       `db:"error"`
	CreatedAt time.Time     `db:"created_at"`
}

// NewSentPayment builds a ledger row for a successful transfer
func NewSentPayment(entry *WinningEntry, roundID int64, amount float64, txHash string) *Payment {
	return &Payment{
		RoundID:  roundID,
		TicketID: entry.TicketID,
		Wallet:   entry.Wallet,
		Amount:   amount,
		TxHash:   &txHash,
		Hits:     entry.Hits,
		Status:   PaymentStatusSent,
	}
}

// NewFailedPayment builds a ledger row for a rejected transfer
func NewFailedPayment(entry *WinningEntry, roundID int64, amount float64, cause error) *Payment {
	detail := "Unknown error"
	if cause != nil && cause.Error() != "" {
		detail = cause.Error()
	}
	return &Payment{
		RoundID:  roundID,
		TicketID: entry.TicketID,
		Wallet:   entry.Wallet,
		Amount:   amount,
		Hits:     entry.Hits,
		Status:   PaymentStatusFailed,
		Error:    &detail,
	}
}
