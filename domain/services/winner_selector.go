package services

import (
	"context"
	"fmt"

	"ronlotto/domain/entities"
	"ronlotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// SelectionResult is the outcome of scanning a round's tickets
type SelectionResult struct {
	Scanned int
	Groups  entities.WinningGroups
}

// WinnerSelector scans a round's unsettled tickets and groups the winners
type WinnerSelector struct {
	ticketRepo interfaces.TicketRepository
}

// NewWinnerSelector creates a new winner selector
func NewWinnerSelector(ticketRepo interfaces.TicketRepository) *WinnerSelector {
	return &WinnerSelector{ticketRepo: ticketRepo}
}

// Select claims every unsettled ticket of the round and returns the winners
// grouped by hit count. A ticket already claimed by a concurrent pass is
// skipped, so each ticket is settled by exactly one pass. When a claim fails
// the scan stops and the winners claimed so far are returned with the error;
// they are settled and must still be paid.
func (s *WinnerSelector) Select(ctx context.Context, roundID int64, drawn entities.Combination) (*SelectionResult, error) {
	tickets, err := s.ticketRepo.ListUnsettledByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unsettled tickets: %w", err)
	}

	result := &SelectionResult{Groups: entities.WinningGroups{}}
	for _, ticket := range tickets {
		claimed, err := s.ticketRepo.Claim(ctx, ticket.ID)
		if err != nil {
			return result, fmt.Errorf("failed to claim ticket %d: %w", ticket.ID, err)
		}
		if !claimed {
			continue
		}
		result.Scanned++

		numbers, err := ticket.Combination()
		if err != nil {
			log.WithFields(log.Fields{
				"round_id":  roundID,
				"ticket_id": ticket.ID,
				"numbers":   ticket.Numbers,
			}).WithError(err).Warn("Skipping ticket with unreadable numbers")
			continue
		}

		hits := numbers.Hits(drawn)
		if !hits.IsWinning() {
			continue
		}

		result.Groups.Add(&entities.WinningEntry{
			TicketID: ticket.ID,
			Wallet:   ticket.Wallet,
			Hits:     hits,
		})
	}

	return result, nil
}
