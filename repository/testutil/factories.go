package testutil

import (
	"context"
	"testing"
	"time"

	"ronlotto/database"
	"ronlotto/domain/entities"

	"github.com/stretchr/testify/require"
)

// InsertRound inserts a round directly, bypassing the lifecycle guards
func InsertRound(t *testing.T, db *database.DB, deadline time.Time, isLocked bool, drawnNumbers *string) *entities.Round {
	t.Helper()

	round := &entities.Round{
		Deadline:     deadline,
		IsLocked:     isLocked || drawnNumbers != nil,
		IsCompleted:  drawnNumbers != nil,
		DrawnNumbers: drawnNumbers,
	}
	err := db.QueryRow(context.Background(), `
		INSERT INTO rounds (deadline, is_locked, is_completed, drawn_numbers)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, round.Deadline, round.IsLocked, round.IsCompleted, round.DrawnNumbers).Scan(&round.ID, &round.CreatedAt)
	require.NoError(t, err)

	return round
}

// InsertTicket inserts an unsettled ticket for the round
func InsertTicket(t *testing.T, db *database.DB, roundID int64, wallet, numbers string) *entities.Ticket {
	t.Helper()

	ticket := &entities.Ticket{
		RoundID: roundID,
		Wallet:  wallet,
		Numbers: numbers,
	}
	err := db.QueryRow(context.Background(), `
		INSERT INTO tickets (round_id, wallet, numbers)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, roundID, wallet, numbers).Scan(&ticket.ID, &ticket.CreatedAt)
	require.NoError(t, err)

	return ticket
}

// GetTicket reads back a ticket's settlement columns
func GetTicket(t *testing.T, db *database.DB, id int64) *entities.Ticket {
	t.Helper()

	ticket := &entities.Ticket{ID: id}
	err := db.QueryRow(context.Background(), `
		SELECT round_id, wallet, numbers, purchase_tx_hash, is_completed, is_winner, settlement_tx_hash
		FROM tickets WHERE id = $1
	`, id).Scan(
		&ticket.RoundID,
		&ticket.Wallet,
		&ticket.Numbers,
		&ticket.PurchaseTxHash,
		&ticket.IsCompleted,
		&ticket.IsWinner,
		&ticket.SettlementTxHash,
	)
	require.NoError(t, err)

	return ticket
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
