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

// DefaultRoundDuration is how long a new round stays open for ticket sales
const DefaultRoundDuration = 15 * time.Minute

// Status messages returned to the invoking scheduler
const (
	MessageNoActiveRound    = "No current lotto round found."
	MessageRoundOpened      = "No current lotto round found. New round opened."
	MessageRoundLocked      = "Less than 2 minutes left. Lotto locked."
	MessageNotReady         = "Draw not finished yet. Please wait."
	MessageDrawn            = "Lotto numbers registered and rewards sent."
	MessageAlreadyApplied   = "Round transition already applied."
	MessageSettlementResume = "Settlement resumed for the last drawn round."
)

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// roundController implements the polling-driven round state machine
type roundController struct {
	roundRepo      interfaces.RoundRepository
	ticketRepo     interfaces.TicketRepository
	generator      *NumberGenerator
	selector       *WinnerSelector
	disburser      *PayoutDisburser
	eventPublisher interfaces.EventPublisher
	metrics        interfaces.MetricsRecorder
	clock          interfaces.Clock
	roundDuration  time.Duration
}

// NewRoundController creates a new round lifecycle controller
func NewRoundController(
	roundRepo interfaces.RoundRepository,
	ticketRepo interfaces.TicketRepository,
	generator *NumberGenerator,
	disburser *PayoutDisburser,
	eventPublisher interfaces.EventPublisher,
	metrics interfaces.MetricsRecorder,
	clock interfaces.Clock,
	roundDuration time.Duration,
) interfaces.RoundController {
	if clock == nil {
		clock = SystemClock{}
	}
	if roundDuration <= 0 {
		roundDuration = DefaultRoundDuration
	}
	return &roundController{
		roundRepo:      roundRepo,
		ticketRepo:     ticketRepo,
		generator:      generator,
		selector:       NewWinnerSelector(ticketRepo),
		disburser:      disburser,
		eventPublisher: eventPublisher,
		metrics:        metrics,
		clock:          clock,
		roundDuration:  roundDuration,
	}
}

// Advance reads the current round and applies at most one transition:
// open, lock, or draw and settle. Every write is conditional, so concurrent
// or repeated invocations apply each transition once.
func (c *roundController) Advance(ctx context.Context) (*interfaces.AdvanceResult, error) {
	now := c.clock.Now()

	round, err := c.roundRepo.GetCurrentOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current round: %w", err)
	}
	if round == nil {
		return c.record(c.handleNoOpenRound(ctx, now))
	}

	if entities.NearClose(round.Deadline, now) && !round.IsLocked {
		return c.record(c.lock(ctx, round))
	}

	// Late ticket writes must land before the draw snapshot
	if !entities.PastCloseGrace(round.Deadline, now) {
		return c.record(&interfaces.AdvanceResult{
			Action:  interfaces.RoundActionNotReady,
			RoundID: round.ID,
			Message: MessageNotReady,
		}, nil)
	}

	return c.record(c.draw(ctx, round, now))
}

func (c *roundController) handleNoOpenRound(ctx context.Context, now time.Time) (*interfaces.AdvanceResult, error) {
	last, err := c.roundRepo.GetLatestCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest completed round: %w", err)
	}

	if last != nil {
		pending, err := c.ticketRepo.CountUnsettledByRound(ctx, last.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count unsettled tickets: %w", err)
		}
		if pending > 0 {
			return c.resumeSettlement(ctx, last)
		}

		if !entities.PastCooldown(last.Deadline, now) {
			return &interfaces.AdvanceResult{
				Action:  interfaces.RoundActionCooldown,
				RoundID: last.ID,
				Message: MessageNoActiveRound,
			}, nil
		}
	}

	round, created, err := c.roundRepo.Create(ctx, now.Add(c.roundDuration))
	if err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}
	if !created {
		return &interfaces.AdvanceResult{
			Action:  interfaces.RoundActionAlreadyApplied,
			Message: MessageAlreadyApplied,
		}, nil
	}

	log.WithFields(log.Fields{
		"round_id": round.ID,
		"deadline": round.Deadline,
	}).Info("Opened new round")
	c.publish(events.RoundOpenedEvent{RoundID: round.ID, Deadline: round.Deadline})

	return &interfaces.AdvanceResult{
		Action:  interfaces.RoundActionOpened,
		RoundID: round.ID,
		Message: MessageRoundOpened,
	}, nil
}

func (c *roundController) lock(ctx context.Context, round *entities.Round) (*interfaces.AdvanceResult, error) {
	applied, err := c.roundRepo.Lock(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock round %d: %w", round.ID, err)
	}
	if !applied {
		return &interfaces.AdvanceResult{
			Action:  interfaces.RoundActionAlreadyApplied,
			RoundID: round.ID,
			Message: MessageAlreadyApplied,
		}, nil
	}

	log.WithFields(log.Fields{
		"round_id": round.ID,
		"deadline": round.Deadline,
	}).Info("Locked round")
	c.publish(events.RoundLockedEvent{RoundID: round.ID, Deadline: round.Deadline})

	return &interfaces.AdvanceResult{
		Action:  interfaces.RoundActionLocked,
		RoundID: round.ID,
		Message: MessageRoundLocked,
	}, nil
}

func (c *roundController) draw(ctx context.Context, round *entities.Round, now time.Time) (*interfaces.AdvanceResult, error) {
	drawn := c.generator.Draw()

	// Numbers and completion are written together, and only once
	applied, err := c.roundRepo.CompleteWithNumbers(ctx, round.ID, drawn.String(), now)
	if err != nil {
		return nil, fmt.Errorf("failed to complete round %d: %w", round.ID, err)
	}
	if !applied {
		return &interfaces.AdvanceResult{
			Action:  interfaces.RoundActionAlreadyApplied,
			RoundID: round.ID,
			Message: MessageAlreadyApplied,
		}, nil
	}

	log.WithFields(log.Fields{
		"round_id":      round.ID,
		"drawn_numbers": drawn.String(),
	}).Info("Drew round numbers")

	summary, err := c.settle(ctx, round.ID, drawn)
	if err != nil {
		return nil, err
	}

	return &interfaces.AdvanceResult{
		Action:     interfaces.RoundActionDrawn,
		RoundID:    round.ID,
		Message:    MessageDrawn,
		Settlement: summary,
	}, nil
}

func (c *roundController) resumeSettlement(ctx context.Context, round *entities.Round) (*interfaces.AdvanceResult, error) {
	drawn, err := round.Drawn()
	if err != nil {
		return nil, fmt.Errorf("failed to read drawn numbers of round %d: %w", round.ID, err)
	}
	if drawn == nil {
		return nil, fmt.Errorf("completed round %d has no drawn numbers", round.ID)
	}

	log.WithField("round_id", round.ID).Warn("Resuming settlement of drawn round")

	summary, err := c.settle(ctx, round.ID, drawn)
	if err != nil {
		return nil, err
	}

	return &interfaces.AdvanceResult{
		Action:     interfaces.RoundActionSettlementResumed,
		RoundID:    round.ID,
		Message:    MessageSettlementResume,
		Settlement: summary,
	}, nil
}

// settle runs winner selection and payout against the drawn snapshot
func (c *roundController) settle(ctx context.Context, roundID int64, drawn entities.Combination) (*interfaces.SettlementSummary, error) {
	selection, selectErr := c.selector.Select(ctx, roundID, drawn)
	if selection == nil {
		return nil, fmt.Errorf("failed to select winners for round %d: %w", roundID, selectErr)
	}

	// Claimed winners are paid even when the scan stopped early; unclaimed
	// tickets are picked up by the next settlement resume
	payout := c.disburser.Disburse(ctx, roundID, selection.Groups)

	summary := &interfaces.SettlementSummary{
		RoundID:        roundID,
		DrawnNumbers:   drawn.String(),
		TicketsScanned: selection.Scanned,
		Winners:        payout.Winners,
		Sent:           payout.Sent,
		Failed:         payout.Failed,
		Skipped:        payout.Skipped,
	}

	if selectErr != nil {
		log.WithFields(log.Fields{
			"round_id":        roundID,
			"tickets_scanned": summary.TicketsScanned,
			"sent":            summary.Sent,
			"failed":          summary.Failed,
		}).WithError(selectErr).Warn("Settlement interrupted, paid the winners claimed so far")
		return nil, fmt.Errorf("failed to select winners for round %d: %w", roundID, selectErr)
	}

	log.WithFields(log.Fields{
		"round_id":        roundID,
		"drawn_numbers":   summary.DrawnNumbers,
		"tickets_scanned": summary.TicketsScanned,
		"winners":         summary.Winners,
		"sent":            summary.Sent,
		"failed":          summary.Failed,
		"skipped":         summary.Skipped,
	}).Info("Completed round settlement")

	c.publish(events.RoundDrawnEvent{
		RoundID:        roundID,
		DrawnNumbers:   summary.DrawnNumbers,
		TicketsScanned: summary.TicketsScanned,
		WinnerCount:    summary.Winners,
		PaidCount:      summary.Sent,
		FailedCount:    summary.Failed,
	})

	return summary, nil
}

func (c *roundController) record(result *interfaces.AdvanceResult, err error) (*interfaces.AdvanceResult, error) {
	if err == nil && c.metrics != nil {
		c.metrics.RecordRoundAction(string(result.Action))
	}
	return result, err
}

func (c *roundController) publish(event events.Event) {
	if c.eventPublisher == nil {
		return
	}
	if err := c.eventPublisher.Publish(event); err != nil {
		log.WithField("event_type", event.Type()).WithError(err).Warn("Failed to publish event")
	}
}
