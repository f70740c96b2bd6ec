package services

import (
	"context"
	"fmt"
	"time"

	"ronlotto/domain/entities"
	"ronlotto/domain/events"
	"ronlotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// DefaultNotifyTimeout bounds a single winner announcement
const DefaultNotifyTimeout = 5 * time.Second

// PayoutSummary counts the outcomes of one disbursement pass
type PayoutSummary struct {
	Winners int
	Sent    int
	Failed  int
	Skipped int
}

// PayoutDisburser apportions prize pools and transfers each winner's share
type PayoutDisburser struct {
	paymentRepo    interfaces.PaymentRepository
	chainClient    interfaces.ChainClient
	notifier       interfaces.WinnerNotifier
	eventPublisher interfaces.EventPublisher
	metrics        interfaces.MetricsRecorder
	rewards        entities.RewardTable
	explorerTxURL  string
	notifyTimeout  time.Duration
}

// PayoutDisburserConfig holds the disburser's tunables
type PayoutDisburserConfig struct {
	Rewards       entities.RewardTable
	ExplorerTxURL string // Prefix the transaction hash is appended to
	NotifyTimeout time.Duration
}

// NewPayoutDisburser creates a new payout disburser
func NewPayoutDisburser(
	paymentRepo interfaces.PaymentRepository,
	chainClient interfaces.ChainClient,
	notifier interfaces.WinnerNotifier,
	eventPublisher interfaces.EventPublisher,
	metrics interfaces.MetricsRecorder,
	cfg PayoutDisburserConfig,
) *PayoutDisburser {
	if cfg.Rewards == nil {
		cfg.Rewards = entities.DefaultRewardTable()
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = DefaultNotifyTimeout
	}
	return &PayoutDisburser{
		paymentRepo:    paymentRepo,
		chainClient:    chainClient,
		notifier:       notifier,
		eventPublisher: eventPublisher,
		metrics:        metrics,
		rewards:        cfg.Rewards,
		explorerTxURL:  cfg.ExplorerTxURL,
		notifyTimeout:  cfg.NotifyTimeout,
	}
}

// Share returns the amount each member of a group of groupSize receives for
// the given hit count. The remainder lost to float division is not redistributed.
func (d *PayoutDisburser) Share(hits entities.HitCount, groupSize int) float64 {
	pool := d.rewards.Reward(hits)
	if pool <= 0 || groupSize <= 0 {
		return 0
	}
	return pool / float64(groupSize)
}

// Disburse pays every winner of the round. Each winner is independent: a
// failed transfer is recorded and processing continues. Failed transfers are
// not retried; the ticket is already settled and needs manual remediation.
func (d *PayoutDisburser) Disburse(ctx context.Context, roundID int64, groups entities.WinningGroups) *PayoutSummary {
	summary := &PayoutSummary{Winners: groups.Total()}

	for _, hits := range entities.WinningHitCounts {
		winners := groups[hits]
		share := d.Share(hits, len(winners))
		if share <= 0 {
			continue
		}

		for _, entry := range winners {
			switch d.payWinner(ctx, roundID, entry, share) {
			case entities.PaymentStatusSent:
				summary.Sent++
			case entities.PaymentStatusFailed:
				summary.Failed++
			default:
				summary.Skipped++
			}
		}
	}

	return summary
}

// payWinner transfers the share and records the outcome. Returns an empty
// status when the winner was skipped.
func (d *PayoutDisburser) payWinner(ctx context.Context, roundID int64, entry *entities.WinningEntry, share float64) entities.PaymentStatus {
	logger := log.WithFields(log.Fields{
		"round_id":  roundID,
		"ticket_id": entry.TicketID,
		"wallet":    entry.Wallet,
		"hits":      entry.Hits,
		"amount":    share,
	})

	// The ledger is the source of truth for "already paid"
	paid, err := d.paymentRepo.ExistsForTicket(ctx, entry.TicketID)
	if err != nil {
		// The ticket is already claimed, so it is recorded as failed rather
		// than left without a ledger row. UNIQUE(ticket_id) rejects the row
		// if a payment does exist.
		logger.WithError(err).Error("Failed to check payment ledger")
		return d.fail(ctx, logger, roundID, entry, share, fmt.Errorf("failed to check payment ledger: %w", err))
	}
	if paid {
		logger.Warn("Ticket already has a payment record, skipping")
		return ""
	}

	txHash, err := d.chainClient.SendTransfer(ctx, entry.Wallet, share)
	if err != nil {
		logger.WithError(err).Error("Failed to pay winner")
		return d.fail(ctx, logger, roundID, entry, share, err)
	}

	logger = logger.WithField("tx_hash", txHash)
	logger.Info("Paid winner")

	payment := entities.NewSentPayment(entry, roundID, share, txHash)
	if err := d.paymentRepo.RecordSent(ctx, payment); err != nil {
		// The transfer is on chain; only the bookkeeping is missing
		logger.WithError(err).Error("Failed to record sent payment, ledger needs reconciliation")
	}
	d.recordPayout(entities.PaymentStatusSent, entry.Hits, share)
	d.publish(events.PayoutSentEvent{
		RoundID:  roundID,
		TicketID: entry.TicketID,
		Wallet:   entry.Wallet,
		Hits:     int(entry.Hits),
		Amount:   share,
		TxHash:   txHash,
	})
	d.notify(ctx, &entities.WinnerAnnouncement{
		RoundID:     roundID,
		TicketID:    entry.TicketID,
		Wallet:      entry.Wallet,
		Hits:        entry.Hits,
		Amount:      share,
		TxHash:      txHash,
		ExplorerURL: d.explorerTxURL + txHash,
	})

	return entities.PaymentStatusSent
}

// fail records a failed payment for the winner
func (d *PayoutDisburser) fail(ctx context.Context, logger *log.Entry, roundID int64, entry *entities.WinningEntry, share float64, cause error) entities.PaymentStatus {
	payment := entities.NewFailedPayment(entry, roundID, share, cause)
	if err := d.paymentRepo.RecordFailed(ctx, payment); err != nil {
		logger.WithError(err).Error("Failed to record failed payment")
	}
	d.recordPayout(entities.PaymentStatusFailed, entry.Hits, share)
	d.publish(events.PayoutFailedEvent{
		RoundID:  roundID,
		TicketID: entry.TicketID,
		Wallet:   entry.Wallet,
		Hits:     int(entry.Hits),
		Amount:   share,
		Error:    *payment.Error,
	})
	return entities.PaymentStatusFailed
}

func (d *PayoutDisburser) notify(ctx context.Context, announcement *entities.WinnerAnnouncement) {
	if d.notifier == nil {
		return
	}

	notifyCtx, cancel := context.WithTimeout(ctx, d.notifyTimeout)
	defer cancel()

	if err := d.notifier.NotifyWinner(notifyCtx, announcement); err != nil {
		log.WithFields(log.Fields{
			"round_id": announcement.RoundID,
			"wallet":   announcement.Wallet,
		}).WithError(err).Warn("Failed to notify winner")
	}
}

func (d *PayoutDisburser) publish(event events.Event) {
	if d.eventPublisher == nil {
		return
	}
	if err := d.eventPublisher.Publish(event); err != nil {
		log.WithField("event_type", event.Type()).WithError(err).Warn("Failed to publish event")
	}
}

func (d *PayoutDisburser) recordPayout(status entities.PaymentStatus, hits entities.HitCount, amount float64) {
	if d.metrics != nil {
		d.metrics.RecordPayout(status, hits, amount)
	}
}
