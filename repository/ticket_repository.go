package repository

import (
	"context"
	"fmt"

	"ronlotto/domain/entities"
	"ronlotto/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const ticketColumns = `id, round_id, wallet, numbers, purchase_tx_hash, is_completed, is_winner, settlement_tx_hash, created_at`

// TicketRepository implements ticket data access
type TicketRepository struct {
	q Queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(q Queryable) interfaces.TicketRepository {
	return &TicketRepository{q: q}
}

// ListUnsettledByRound returns the round's tickets that have not been settled
func (r *TicketRepository) ListUnsettledByRound(ctx context.Context, roundID int64) ([]*entities.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE round_id = $1 AND NOT is_completed
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unsettled tickets for round %d: %w", roundID, err)
	}
	defer rows.Close()

	var tickets []*entities.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// CountUnsettledByRound counts the round's tickets that have not been settled
func (r *TicketRepository) CountUnsettledByRound(ctx context.Context, roundID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE round_id = $1 AND NOT is_completed`

	var count int64
	if err := r.q.QueryRow(ctx, query, roundID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unsettled tickets: %w", err)
	}
	return count, nil
}

// CountByRound counts every ticket of the round
func (r *TicketRepository) CountByRound(ctx context.Context, roundID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE round_id = $1`

	var count int64
	if err := r.q.QueryRow(ctx, query, roundID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

// Claim marks the ticket settled. Only one caller can claim a ticket.
func (r *TicketRepository) Claim(ctx context.Context, ticketID int64) (bool, error) {
	query := `
		UPDATE tickets
		SET is_completed = TRUE
		WHERE id = $1 AND NOT is_completed
	`

	result, err := r.q.Exec(ctx, query, ticketID)
	if err != nil {
		return false, fmt.Errorf("failed to claim ticket %d: %w", ticketID, err)
	}
	return result.RowsAffected() == 1, nil
}

func scanTicket(row pgx.Row) (*entities.Ticket, error) {
	var ticket entities.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.RoundID,
		&ticket.Wallet,
		&ticket.Numbers,
		&ticket.PurchaseTxHash,
		&ticket.IsCompleted,
		&ticket.IsWinner,
		&ticket.SettlementTxHash,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
