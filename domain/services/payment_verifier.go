package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ronlotto/domain/entities"
	"ronlotto/domain/events"
	"ronlotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultConfirmAttempts is how many times a payment is looked up before giving up
	DefaultConfirmAttempts = 5
	// DefaultConfirmInterval is the delay between confirmation attempts
	DefaultConfirmInterval = 5 * time.Second
	// DefaultMinTicketPrice is the minimum confirmed payment for one ticket, in RON
	DefaultMinTicketPrice = 2.0
)

// Verification outcomes reported to metrics
const (
	VerificationIssued       = "issued"
	VerificationInvalid      = "invalid"
	VerificationInsufficient = "insufficient"
	VerificationUnconfirmed  = "unconfirmed"
	VerificationRejected     = "rejected"
)

var (
	// ErrInvalidPaymentRequest is returned for a request missing its transaction reference
	ErrInvalidPaymentRequest = errors.New("invalid payment request")

	// ErrInsufficientPayment is returned when the confirmed value is below the ticket price
	ErrInsufficientPayment = errors.New("insufficient amount")

	// ErrPaymentRecipientMismatch is returned when the payment was not sent to the treasury
	ErrPaymentRecipientMismatch = errors.New("payment was not sent to the lottery treasury")

	// ErrPaymentNotConfirmed is returned when the transaction is not confirmed after all attempts
	ErrPaymentNotConfirmed = errors.New("transaction not confirmed or found after multiple attempts")
)

// PaymentVerifierConfig holds the verifier's tunables
type PaymentVerifierConfig struct {
	MinTicketPrice  float64
	TreasuryAddress string // Optional; when set the payment must be addressed to it
	ConfirmAttempts int
	ConfirmInterval time.Duration
}

// paymentVerifier implements the ticket payment intake path
type paymentVerifier struct {
	chainClient    interfaces.ChainClient
	issuer         interfaces.TicketIssuer
	eventPublisher interfaces.EventPublisher
	metrics        interfaces.MetricsRecorder
	clock          interfaces.Clock
	cfg            PaymentVerifierConfig
}

// NewPaymentVerifier creates a new payment verifier
func NewPaymentVerifier(
	chainClient interfaces.ChainClient,
	issuer interfaces.TicketIssuer,
	eventPublisher interfaces.EventPublisher,
	metrics interfaces.MetricsRecorder,
	clock interfaces.Clock,
	cfg PaymentVerifierConfig,
) interfaces.PaymentVerifier {
	if clock == nil {
		clock = SystemClock{}
	}
	if cfg.MinTicketPrice <= 0 {
		cfg.MinTicketPrice = DefaultMinTicketPrice
	}
	if cfg.ConfirmAttempts <= 0 {
		cfg.ConfirmAttempts = DefaultConfirmAttempts
	}
	if cfg.ConfirmInterval < 0 {
		cfg.ConfirmInterval = DefaultConfirmInterval
	}
	return &paymentVerifier{
		chainClient:    chainClient,
		issuer:         issuer,
		eventPublisher: eventPublisher,
		metrics:        metrics,
		clock:          clock,
		cfg:            cfg,
	}
}

// Verify validates the request, waits for the payment to confirm on chain,
// checks its value and issues the ticket. Nothing is written unless every
// check passes.
func (v *paymentVerifier) Verify(ctx context.Context, request *interfaces.PaymentVerificationRequest) (*entities.Ticket, error) {
	txHash := strings.TrimSpace(request.TransactionReference)
	if txHash == "" {
		v.recordOutcome(VerificationInvalid)
		return nil, fmt.Errorf("%w: transaction reference is required", ErrInvalidPaymentRequest)
	}

	wallet := strings.TrimSpace(request.Wallet)
	if _, err := entities.NormalizeWallet(wallet); err != nil {
		v.recordOutcome(VerificationInvalid)
		return nil, err
	}

	numbers, err := entities.ParseCombination(request.TicketPayload)
	if err != nil {
		v.recordOutcome(VerificationInvalid)
		return nil, err
	}

	logger := log.WithFields(log.Fields{
		"tx_hash": txHash,
		"wallet":  wallet,
	})

	tx, err := v.waitForConfirmation(ctx, txHash)
	if err != nil {
		logger.WithError(err).Warn("Payment not confirmed")
		v.recordOutcome(VerificationUnconfirmed)
		return nil, err
	}

	minValue, err := entities.ToWei(v.cfg.MinTicketPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to convert ticket price: %w", err)
	}
	if tx.Value == nil || tx.Value.Cmp(minValue) < 0 {
		logger.WithField("value_wei", tx.Value).Warn("Insufficient payment amount")
		v.recordOutcome(VerificationInsufficient)
		return nil, fmt.Errorf("%w: paid %v RON, need %v RON", ErrInsufficientPayment, entities.FromWei(tx.Value), v.cfg.MinTicketPrice)
	}

	if v.cfg.TreasuryAddress != "" && !strings.EqualFold(tx.To, v.cfg.TreasuryAddress) {
		logger.WithField("to", tx.To).Warn("Payment sent to unexpected recipient")
		v.recordOutcome(VerificationInvalid)
		return nil, fmt.Errorf("%w: sent to %s", ErrPaymentRecipientMismatch, tx.To)
	}

	ticket, err := v.issuer.Issue(ctx, wallet, numbers.Sorted(), txHash, v.clock.Now())
	if err != nil {
		logger.WithError(err).Error("Failed to issue ticket")
		v.recordOutcome(VerificationRejected)
		return nil, fmt.Errorf("failed to issue ticket: %w", err)
	}

	logger.WithFields(log.Fields{
		"round_id":  ticket.RoundID,
		"ticket_id": ticket.ID,
		"numbers":   ticket.Numbers,
	}).Info("Payment confirmed, ticket issued")
	v.recordOutcome(VerificationIssued)

	if v.eventPublisher != nil {
		event := events.TicketPurchasedEvent{
			RoundID:        ticket.RoundID,
			TicketID:       ticket.ID,
			Wallet:         ticket.Wallet,
			Numbers:        ticket.Numbers,
			PurchaseTxHash: txHash,
		}
		if err := v.eventPublisher.Publish(event); err != nil {
			logger.WithError(err).Warn("Failed to publish ticket purchased event")
		}
	}

	return ticket, nil
}

// waitForConfirmation polls the transaction and its receipt a bounded number
// of times with a fixed delay between attempts
func (v *paymentVerifier) waitForConfirmation(ctx context.Context, txHash string) (*entities.ChainTransaction, error) {
	for attempt := 1; attempt <= v.cfg.ConfirmAttempts; attempt++ {
		logger := log.WithFields(log.Fields{
			"tx_hash": txHash,
			"attempt": attempt,
		})

		tx, receipt, err := v.lookup(ctx, txHash)
		switch {
		case err != nil:
			logger.WithError(err).Debug("Failed to fetch transaction")
		case tx != nil && receipt != nil && receipt.Success:
			logger.Debug("Transaction confirmed")
			return tx, nil
		case receipt != nil && !receipt.Success:
			return nil, fmt.Errorf("%w: transaction %s reverted", ErrPaymentNotConfirmed, txHash)
		default:
			logger.Debug("Transaction not yet confirmed or not found")
		}

		if attempt == v.cfg.ConfirmAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrPaymentNotConfirmed, ctx.Err())
		case <-time.After(v.cfg.ConfirmInterval):
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrPaymentNotConfirmed, txHash)
}

func (v *paymentVerifier) lookup(ctx context.Context, txHash string) (*entities.ChainTransaction, *entities.ChainReceipt, error) {
	tx, err := v.chainClient.GetTransaction(ctx, txHash)
	if err != nil {
		return nil, nil, err
	}
	receipt, err := v.chainClient.GetTransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, nil, err
	}
	return tx, receipt, nil
}

func (v *paymentVerifier) recordOutcome(outcome string) {
	if v.metrics != nil {
		v.metrics.RecordPaymentVerification(outcome)
	}
}
