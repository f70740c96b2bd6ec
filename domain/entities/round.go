package entities

import (
	"time"
)

// RoundState is the lifecycle position of a round
type RoundState string

const (
	RoundStateOpen      RoundState = "open"
	RoundStateLocked    RoundState = "locked"
	RoundStateCompleted RoundState = "completed"
)

// Round represents a single lottery cycle
type Round struct {
	ID           int64      `db:"id"`
	Deadline     time.Time  `db:"deadline"`      // Ticket sales close, the draw follows after DrawGrace
	IsLocked     bool       `db:"is_locked"`     // Set once the round is NearClose
	IsCompleted  bool       `db:"is_completed"`  // Set together with DrawnNumbers
	DrawnNumbers *string    `db:"drawn_numbers"` // NULL until the draw
	DrawnAt      *time.Time `db:"drawn_at"`
	CreatedAt    time.Time  `db:"created_at"`
}

// State derives the lifecycle state from the flags
func (r *Round) State() RoundState {
	switch {
	case r.IsCompleted:
		return RoundStateCompleted
	case r.IsLocked:
		return RoundStateLocked
	default:
		return RoundStateOpen
	}
}

// AcceptsTickets reports whether a ticket may still be issued for this round
func (r *Round) AcceptsTickets(now time.Time) bool {
	return !r.IsLocked && !r.IsCompleted && now.Before(r.Deadline)
}

// Drawn returns the parsed drawn combination, nil when not drawn yet
func (r *Round) Drawn() (Combination, error) {
	if r.DrawnNumbers == nil {
		return nil, nil
	}
	return ParseCombination(*r.DrawnNumbers)
}
