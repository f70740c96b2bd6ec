package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ronlotto/domain/entities"
	"ronlotto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRepository_Ledger(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewPaymentRepository(testDB.DB)
	ticketRepo := NewTicketRepository(testDB.DB)

	round := testutil.InsertRound(t, testDB.DB, time.Now().UTC(), true, testutil.StringPtr("01-02-03-04-05-06"))
	winner := testutil.InsertTicket(t, testDB.DB, round.ID, "0xaaa", "01-02-03-10-11-12")
	unlucky := testutil.InsertTicket(t, testDB.DB, round.ID, "0xbbb", "01-02-03-20-21-22")

	for _, id := range []int64{winner.ID, unlucky.ID} {
		claimed, err := ticketRepo.Claim(ctx, id)
		require.NoError(t, err)
		require.True(t, claimed)
	}

	sent := entities.NewSentPayment(&entities.WinningEntry{TicketID: winner.ID, Wallet: "0xaaa", Hits: entities.HitsThree}, round.ID, 2, "0xprize")
	require.NoError(t, repo.RecordSent(ctx, sent))
	assert.NotZero(t, sent.ID)

	failed := entities.NewFailedPayment(&entities.WinningEntry{TicketID: unlucky.ID, Wallet: "0xbbb", Hits: entities.HitsThree}, round.ID, 2, errors.New("nonce too low"))
	require.NoError(t, repo.RecordFailed(ctx, failed))

	// The winner flag and settlement reference land with the sent row
	stored := testutil.GetTicket(t, testDB.DB, winner.ID)
	assert.True(t, stored.IsWinner)
	require.NotNil(t, stored.SettlementTxHash)
	assert.Equal(t, "0xprize", *stored.SettlementTxHash)

	stored = testutil.GetTicket(t, testDB.DB, unlucky.ID)
	assert.False(t, stored.IsWinner)
	assert.True(t, stored.IsCompleted)
	assert.Nil(t, stored.SettlementTxHash)

	exists, err := repo.ExistsForTicket(ctx, winner.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	payments, err := repo.ListByRound(ctx, round.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, entities.PaymentStatusSent, payments[0].Status)
	assert.Equal(t, 2.0, payments[0].Amount)
	assert.Equal(t, entities.HitsThree, payments[0].Hits)
	assert.Equal(t, entities.PaymentStatusFailed, payments[1].Status)
	require.NotNil(t, payments[1].Error)
	assert.Equal(t, "nonce too low", *payments[1].Error)
	assert.Nil(t, payments[1].TxHash)

	// One ledger row per ticket
	duplicate := entities.NewSentPayment(&entities.WinningEntry{TicketID: winner.ID, Wallet: "0xaaa", Hits: entities.HitsThree}, round.ID, 2, "0xagain")
	assert.Error(t, repo.RecordSent(ctx, duplicate))

	// Rows are never rewritten or removed
	_, err = testDB.DB.Exec(ctx, `UPDATE payments SET amount = 0 WHERE id = $1`, sent.ID)
	assert.ErrorContains(t, err, "append-only")
	_, err = testDB.DB.Exec(ctx, `DELETE FROM payments WHERE id = $1`, sent.ID)
	assert.ErrorContains(t, err, "append-only")
}

func TestPaymentRepository_FractionalShares(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewPaymentRepository(testDB.DB)

	round := testutil.InsertRound(t, testDB.DB, time.Now().UTC(), true, testutil.StringPtr("01-02-03-04-05-06"))
	ticket := testutil.InsertTicket(t, testDB.DB, round.ID, "0xaaa", "01-02-03-04-05-06")

	share := 200.0 / 3
	payment := entities.NewSentPayment(&entities.WinningEntry{TicketID: ticket.ID, Wallet: "0xaaa", Hits: entities.HitsSix}, round.ID, share, "0xsplit")
	require.NoError(t, repo.RecordSent(ctx, payment))

	payments, err := repo.ListByRound(ctx, round.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.InDelta(t, share, payments[0].Amount, 1e-8)
}
