package repository

import (
	"context"
	"fmt"

	"ronlotto/domain/entities"
	"ronlotto/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// PaymentRepository implements the append-only payment ledger
type PaymentRepository struct {
	q Queryable
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(q Queryable) interfaces.PaymentRepository {
	return &PaymentRepository{q: q}
}

// RecordSent inserts the sent payment and flags the ticket as a winner with
// the transfer hash. Both rows change in the same statement.
func (r *PaymentRepository) RecordSent(ctx context.Context, payment *entities.Payment) error {
	if payment.TxHash == nil {
		return fmt.Errorf("sent payment for ticket %d has no transaction hash", payment.TicketID)
	}

	query := `
		WITH inserted AS (
			INSERT INTO payments (round_id, ticket_id, wallet, amount, tx_hash, hits, status)
			VALUES ($1, $2, $3, $4, $5, $6, 'sent')
			RETURNING id, ticket_id, tx_hash, created_at
		), marked AS (
			UPDATE tickets
			SET is_winner = TRUE,
			    is_completed = TRUE,
			    settlement_tx_hash = inserted.tx_hash
			FROM inserted
			WHERE tickets.id = inserted.ticket_id
		)
		SELECT id, created_at FROM inserted
	`

	err := r.q.QueryRow(ctx, query,
		payment.RoundID,
		payment.TicketID,
		payment.Wallet,
		payment.Amount,
		*payment.TxHash,
		int16(payment.Hits),
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record sent payment for ticket %d: %w", payment.TicketID, err)
	}

	return nil
}

// RecordFailed inserts a failed payment. The ticket stays settled without a prize reference.
func (r *PaymentRepository) RecordFailed(ctx context.Context, payment *entities.Payment) error {
	query := `
		INSERT INTO payments (round_id, ticket_id, wallet, amount, hits, status, error)
		VALUES ($1, $2, $3, $4, $5, 'failed', $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		payment.RoundID,
		payment.TicketID,
		payment.Wallet,
		payment.Amount,
		int16(payment.Hits),
		payment.Error,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record failed payment for ticket %d: %w", payment.TicketID, err)
	}

	return nil
}

// ExistsForTicket reports whether the ledger already holds a row for the ticket
func (r *PaymentRepository) ExistsForTicket(ctx context.Context, ticketID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE ticket_id = $1)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, ticketID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check payment for ticket %d: %w", ticketID, err)
	}
	return exists, nil
}

// ListByRound returns the round's ledger in insertion order
func (r *PaymentRepository) ListByRound(ctx context.Context, roundID int64) ([]*entities.Payment, error) {
	query := `
		SELECT id, round_id, ticket_id, wallet, amount::float8, tx_hash, hits, status, error, created_at
		FROM payments
		WHERE round_id = $1
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments for round %d: %w", roundID, err)
	}
	defer rows.Close()

	var payments []*entities.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

func scanPayment(row pgx.Row) (*entities.Payment, error) {
	var (
		payment entities.Payment
		hits    int16
		status  string
	)
	err := row.Scan(
		&payment.ID,
		&payment.RoundID,
		&payment.TicketID,
		&payment.Wallet,
		&payment.Amount,
		&payment.TxHash,
		&hits,
		&status,
		&payment.Error,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	payment.Hits = entities.HitCount(hits)
	payment.Status = entities.PaymentStatus(status)
	return &payment, nil
}
