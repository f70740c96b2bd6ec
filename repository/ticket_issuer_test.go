package repository

import (
	"context"
	"testing"
	"time"

	"ronlotto/domain/entities"
	"ronlotto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketIssuer_Issue(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	issuer := NewTicketIssuer(testDB.DB)
	roundRepo := NewRoundRepository(testDB.DB)

	now := time.Now().UTC()
	numbers := entities.Combination{5, 12, 23, 31, 36, 39}

	// No round at all
	_, err := issuer.Issue(ctx, "0xaaa", numbers, "0xtx0", now)
	assert.ErrorIs(t, err, entities.ErrNoOpenRound)

	round, created, err := roundRepo.Create(ctx, now.Add(10*time.Minute))
	require.NoError(t, err)
	require.True(t, created)

	ticket, err := issuer.Issue(ctx, "0xaaa", numbers, "0xtx1", now)
	require.NoError(t, err)
	assert.Equal(t, round.ID, ticket.RoundID)
	assert.Equal(t, "05-12-23-31-36-39", ticket.Numbers)
	require.NotNil(t, ticket.PurchaseTxHash)
	assert.Equal(t, "0xtx1", *ticket.PurchaseTxHash)
	assert.False(t, ticket.IsCompleted)

	// The same payment cannot buy a second ticket
	_, err = issuer.Issue(ctx, "0xaaa", numbers, "0xtx1", now)
	assert.ErrorIs(t, err, entities.ErrPaymentAlreadyRedeemed)

	// Past the deadline
	_, err = issuer.Issue(ctx, "0xaaa", numbers, "0xtx2", now.Add(11*time.Minute))
	assert.ErrorIs(t, err, entities.ErrNoOpenRound)

	// Locked round
	applied, err := roundRepo.Lock(ctx, round.ID)
	require.NoError(t, err)
	require.True(t, applied)

	_, err = issuer.Issue(ctx, "0xaaa", numbers, "0xtx3", now)
	assert.ErrorIs(t, err, entities.ErrNoOpenRound)

	// Invalid combinations never reach the database
	_, err = issuer.Issue(ctx, "0xaaa", entities.Combination{1, 1, 2, 3, 4, 5}, "0xtx4", now)
	assert.ErrorIs(t, err, entities.ErrInvalidCombination)
}
