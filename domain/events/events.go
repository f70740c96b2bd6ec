package events

import "time"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeRoundOpened     EventType = "round_opened"
	EventTypeRoundLocked     EventType = "round_locked"
	EventTypeRoundDrawn      EventType = "round_drawn"
	EventTypePayoutSent      EventType = "payout_sent"
	EventTypePayoutFailed    EventType = "payout_failed"
	EventTypeTicketPurchased EventType = "ticket_purchased"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// RoundOpenedEvent is published when a new round is created
type RoundOpenedEvent struct {
	RoundID  int64     `json:"round_id"`
	Deadline time.Time `json:"deadline"`
}

func (e RoundOpenedEvent) Type() EventType {
	return EventTypeRoundOpened
}

// RoundLockedEvent is published when ticket sales for a round close
type RoundLockedEvent struct {
	RoundID  int64     `json:"round_id"`
	Deadline time.Time `json:"deadline"`
}

func (e RoundLockedEvent) Type() EventType {
	return EventTypeRoundLocked
}

// RoundDrawnEvent is published once the drawn numbers are persisted and settled
type RoundDrawnEvent struct {
	RoundID        int64  `json:"round_id"`
	DrawnNumbers   string `json:"drawn_numbers"`
	TicketsScanned int    `json:"tickets_scanned"`
	WinnerCount    int    `json:"winner_count"`
	PaidCount      int    `json:"paid_count"`
	FailedCount    int    `json:"failed_count"`
}

func (e RoundDrawnEvent) Type() EventType {
	return EventTypeRoundDrawn
}

// PayoutSentEvent is published after a prize transfer is recorded as sent
type PayoutSentEvent struct {
	RoundID  int64   `json:"round_id"`
	TicketID int64   `json:"ticket_id"`
	Wallet   string  `json:"wallet"`
	Hits     int     `json:"hits"`
	Amount   float64 `json:"amount"`
	TxHash   string  `json:"tx_hash"`
}

func (e PayoutSentEvent) Type() EventType {
	return EventTypePayoutSent
}

// PayoutFailedEvent is published after a prize transfer is recorded as failed
type PayoutFailedEvent struct {
	RoundID  int64   `json:"round_id"`
	TicketID int64   `json:"ticket_id"`
	Wallet   string  `json:"wallet"`
	Hits     int     `json:"hits"`
	Amount   float64 `json:"amount"`
	Error    string  `json:"error"`
}

func (e PayoutFailedEvent) Type() EventType {
	return EventTypePayoutFailed
}

// TicketPurchasedEvent is published when a confirmed payment materializes a ticket
type TicketPurchasedEvent struct {
	RoundID        int64  `json:"round_id"`
	TicketID       int64  `json:"ticket_id"`
	Wallet         string `json:"wallet"`
	Numbers        string `json:"numbers"`
	PurchaseTxHash string `json:"purchase_tx_hash"`
}

func (e TicketPurchasedEvent) Type() EventType {
	return EventTypeTicketPurchased
}
