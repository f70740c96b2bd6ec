package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ronlotto/domain/entities"
	"ronlotto/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const roundColumns = `id, deadline, is_locked, is_completed, drawn_numbers, drawn_at, created_at`

// RoundRepository implements round data access
type RoundRepository struct {
	q Queryable
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(q Queryable) interfaces.RoundRepository {
	return &RoundRepository{q: q}
}

// GetCurrentOpen returns the round that is not completed yet
func (r *RoundRepository) GetCurrentOpen(ctx context.Context) (*entities.Round, error) {
	query := `
		SELECT ` + roundColumns + `
		FROM rounds
		WHERE NOT is_completed
		ORDER BY id DESC
		LIMIT 1
	`

	round, err := scanRound(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to get current round: %w", err)
	}
	return round, nil
}

// GetLatestCompleted returns the completed round with the latest deadline
func (r *RoundRepository) GetLatestCompleted(ctx context.Context) (*entities.Round, error) {
	query := `
		SELECT ` + roundColumns + `
		FROM rounds
		WHERE is_completed
		ORDER BY deadline DESC, id DESC
		LIMIT 1
	`

	round, err := scanRound(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest completed round: %w", err)
	}
	return round, nil
}

// GetByID retrieves a round by its ID
func (r *RoundRepository) GetByID(ctx context.Context, id int64) (*entities.Round, error) {
	query := `
		SELECT ` + roundColumns + `
		FROM rounds
		WHERE id = $1
	`

	round, err := scanRound(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get round %d: %w", id, err)
	}
	return round, nil
}

// Create inserts an open round. The single-open-round index turns a
// concurrent create into a no-op.
func (r *RoundRepository) Create(ctx context.Context, deadline time.Time) (*entities.Round, bool, error) {
	query := `
		INSERT INTO rounds (deadline)
		VALUES ($1)
		ON CONFLICT DO NOTHING
		RETURNING ` + roundColumns

	round, err := scanRound(r.q.QueryRow(ctx, query, deadline))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create round: %w", err)
	}
	if round == nil {
		return nil, false, nil
	}
	return round, true, nil
}

// Lock closes ticket sales for an open round
func (r *RoundRepository) Lock(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE rounds
		SET is_locked = TRUE
		WHERE id = $1 AND NOT is_locked AND NOT is_completed
	`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to lock round %d: %w", id, err)
	}
	return result.RowsAffected() == 1, nil
}

// CompleteWithNumbers stores the draw and completes the round in one statement
func (r *RoundRepository) CompleteWithNumbers(ctx context.Context, id int64, drawnNumbers string, drawnAt time.Time) (bool, error) {
	query := `
		UPDATE rounds
		SET drawn_numbers = $2,
		    drawn_at = $3,
		    is_locked = TRUE,
		    is_completed = TRUE
		WHERE id = $1 AND NOT is_completed
	`

	result, err := r.q.Exec(ctx, query, id, drawnNumbers, drawnAt)
	if err != nil {
		return false, fmt.Errorf("failed to complete round %d: %w", id, err)
	}
	return result.RowsAffected() == 1, nil
}

// scanRound scans a single round, returning nil when there is no row
func scanRound(row pgx.Row) (*entities.Round, error) {
	var round entities.Round
	err := row.Scan(
		&round.ID,
		&round.Deadline,
		&round.IsLocked,
		&round.IsCompleted,
		&round.DrawnNumbers,
		&round.DrawnAt,
		&round.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &round, nil
}
