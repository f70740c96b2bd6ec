package dto

import (
	"time"

	"ronlotto/domain/entities"
)

// RoundDTO is the JSON view of a round
type RoundDTO struct {
	ID           int64      `json:"id"`
	Deadline     time.Time  `json:"deadline"`
	State        string     `json:"state"`
	IsLocked     bool       `json:"is_locked"`
	IsCompleted  bool       `json:"is_completed"`
	DrawnNumbers *string    `json:"drawn_numbers,omitempty"`
	DrawnAt      *time.Time `json:"drawn_at,omitempty"`
	TicketCount  int64      `json:"ticket_count"`
}

// PaymentDTO is the JSON view of one ledger row
type PaymentDTO struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	Wallet    string    `json:"wallet"`
	Amount    float64   `json:"amount"`
	Hits      int       `json:"hits"`
	Status    string    `json:"status"`
	TxHash    *string   `json:"tx_hash,omitempty"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RoundPaymentsDTO lists the ledger of a round
type RoundPaymentsDTO struct {
	RoundID  int64        `json:"round_id"`
	Sent     int          `json:"sent"`
	Failed   int          `json:"failed"`
	Payments []PaymentDTO `json:"payments"`
}

// TicketDTO is returned once a paid ticket has been issued
type TicketDTO struct {
	ID             int64     `json:"id"`
	RoundID        int64     `json:"round_id"`
	Wallet         string    `json:"wallet"`
	Numbers        string    `json:"numbers"`
	PurchaseTxHash *string   `json:"purchase_tx_hash,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewRoundDTO converts a round and its ticket count
func NewRoundDTO(round *entities.Round, ticketCount int64) RoundDTO {
	return RoundDTO{
		ID:           round.ID,
		Deadline:     round.Deadline,
		State:        string(round.State()),
		IsLocked:     round.IsLocked,
		IsCompleted:  round.IsCompleted,
		DrawnNumbers: round.DrawnNumbers,
		DrawnAt:      round.DrawnAt,
		TicketCount:  ticketCount,
	}
}

// NewRoundPaymentsDTO converts the ledger of a round and tallies outcomes
func NewRoundPaymentsDTO(roundID int64, payments []*entities.Payment) RoundPaymentsDTO {
	result := RoundPaymentsDTO{
		RoundID:  roundID,
		Payments: make([]PaymentDTO, 0, len(payments)),
	}

	for _, p := range payments {
		switch p.Status {
		case entities.PaymentStatusSent:
			result.Sent++
		case entities.PaymentStatusFailed:
			result.Failed++
		}

		result.Payments = append(result.Payments, PaymentDTO{
			ID:        p.ID,
			TicketID:  p.TicketID,
			Wallet:    p.Wallet,
			Amount:    p.Amount,
			Hits:      int(p.Hits),
			Status:    string(p.Status),
			TxHash:    p.TxHash,
			Error:     p.Error,
			CreatedAt: p.CreatedAt,
		})
	}

	return result
}

// NewTicketDTO converts an issued ticket
func NewTicketDTO(ticket *entities.Ticket) TicketDTO {
	return TicketDTO{
		ID:             ticket.ID,
		RoundID:        ticket.RoundID,
		Wallet:         ticket.Wallet,
		Numbers:        ticket.Numbers,
		PurchaseTxHash: ticket.PurchaseTxHash,
		CreatedAt:      ticket.CreatedAt,
	}
}
