package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ronlotto/database"
	"ronlotto/domain/entities"
	"ronlotto/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// TicketIssuer writes paid tickets into the round accepting them
type TicketIssuer struct {
	db *database.DB
}

// NewTicketIssuer creates a new ticket issuer
func NewTicketIssuer(db *database.DB) interfaces.TicketIssuer {
	return &TicketIssuer{db: db}
}

// Issue inserts the ticket under a share lock on the open round, so a
// concurrent lock or draw waits until the ticket is visible
func (i *TicketIssuer) Issue(ctx context.Context, wallet string, numbers entities.Combination, purchaseTxHash string, now time.Time) (*entities.Ticket, error) {
	if err := numbers.Validate(); err != nil {
		return nil, err
	}

	var ticket *entities.Ticket
	err := i.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		roundQuery := `
			SELECT ` + roundColumns + `
			FROM rounds
			WHERE NOT is_completed
			ORDER BY id DESC
			LIMIT 1
			FOR SHARE
		`

		round, err := scanRound(tx.QueryRow(ctx, roundQuery))
		if err != nil {
			return fmt.Errorf("failed to get open round: %w", err)
		}
		if round == nil || !round.AcceptsTickets(now) {
			return entities.ErrNoOpenRound
		}

		insertQuery := `
			INSERT INTO tickets (round_id, wallet, numbers, purchase_tx_hash)
			VALUES ($1, $2, $3, $4)
			RETURNING ` + ticketColumns

		ticket, err = scanTicket(tx.QueryRow(ctx, insertQuery, round.ID, wallet, numbers.String(), purchaseTxHash))
		if isUniqueViolation(err, "tickets_purchase_tx_hash_unique") {
			return entities.ErrPaymentAlreadyRedeemed
		}
		if err != nil {
			return fmt.Errorf("failed to insert ticket: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, entities.ErrNoOpenRound) || errors.Is(err, entities.ErrPaymentAlreadyRedeemed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to issue ticket: %w", err)
	}

	return ticket, nil
}
