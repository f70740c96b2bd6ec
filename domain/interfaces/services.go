package interfaces

import (
	"context"
	"time"

	"ronlotto/domain/entities"
	"ronlotto/domain/events"
)

// ChainClient is the on-chain transfer primitive
type ChainClient interface {
	// SendTransfer signs and broadcasts a native transfer of amount (in whole
	// RON) to the wallet and returns the transaction hash
	SendTransfer(ctx context.Context, toWallet string, amount float64) (string, error)

	// GetTransaction returns the transaction, nil if unknown
	GetTransaction(ctx context.Context, txHash string) (*entities.ChainTransaction, error)

	// GetTransactionReceipt returns the receipt, nil if not mined yet
	GetTransactionReceipt(ctx context.Context, txHash string) (*entities.ChainReceipt, error)
}

// WinnerNotifier delivers winner announcements. Delivery is best effort.
type WinnerNotifier interface {
	NotifyWinner(ctx context.Context, announcement *entities.WinnerAnnouncement) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// MetricsRecorder receives lifecycle and payout measurements
type MetricsRecorder interface {
	RecordRoundAction(action string)
	RecordPayout(status entities.PaymentStatus, hits entities.HitCount, amount float64)
	RecordPaymentVerification(outcome string)
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// RandomSource supplies uniformly distributed integers in [0, n)
type RandomSource interface {
	Intn(n int) int
}

// RoundController advances the round lifecycle by at most one transition
type RoundController interface {
	Advance(ctx context.Context) (*AdvanceResult, error)
}

// PaymentVerifier confirms a ticket payment on chain and issues the ticket
type PaymentVerifier interface {
	Verify(ctx context.Context, request *PaymentVerificationRequest) (*entities.Ticket, error)
}

// RoundAction names the transition an Advance call performed
type RoundAction string

const (
	RoundActionOpened            RoundAction = "opened"
	RoundActionCooldown          RoundAction = "cooldown"
	RoundActionLocked            RoundAction = "locked"
	RoundActionNotReady          RoundAction = "not_ready"
	RoundActionDrawn             RoundAction = "drawn"
	RoundActionAlreadyApplied    RoundAction = "already_applied"
	RoundActionSettlementResumed RoundAction = "settlement_resumed"
)

// AdvanceResult describes the outcome of one controller invocation
type AdvanceResult struct {
	Action     RoundAction
	RoundID    int64
	Message    string
	Settlement *SettlementSummary
}

// SettlementSummary reports a winner selection and payout pass
type SettlementSummary struct {
	RoundID        int64
	DrawnNumbers   string
	TicketsScanned int
	Winners        int
	Sent           int
	Failed         int
	Skipped        int
}

// PaymentVerificationRequest is the settlement-confirmation input
type PaymentVerificationRequest struct {
	TransactionReference string
	Wallet               string
	TicketPayload        string
}

