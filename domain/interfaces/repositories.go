package interfaces

import (
	"context"
	"time"

	"ronlotto/domain/entities"
)

// RoundRepository defines the interface for round data access. Conditional
// writes report whether this call applied the transition; a concurrent caller
// that already applied it yields false with a nil error.
type RoundRepository interface {
	// GetCurrentOpen returns the round with is_completed = false, nil if none
	GetCurrentOpen(ctx context.Context) (*entities.Round, error)

	// GetLatestCompleted returns the completed round with the latest deadline, nil if none
	GetLatestCompleted(ctx context.Context) (*entities.Round, error)

	// GetByID retrieves a round by ID, nil if not found
	GetByID(ctx context.Context, id int64) (*entities.Round, error)

	// Create opens a new round unless another open round exists
	Create(ctx context.Context, deadline time.Time) (*entities.Round, bool, error)

	// Lock sets is_locked where is_locked = false and is_completed = false
	Lock(ctx context.Context, id int64) (bool, error)

	// CompleteWithNumbers writes the drawn numbers and is_completed in one
	// update guarded on is_completed = false
	CompleteWithNumbers(ctx context.Context, id int64, drawnNumbers string, drawnAt time.Time) (bool, error)
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// ListUnsettledByRound returns tickets of the round with is_completed = false, in id order
	ListUnsettledByRound(ctx context.Context, roundID int64) ([]*entities.Ticket, error)

	// CountUnsettledByRound counts tickets of the round with is_completed = false
	CountUnsettledByRound(ctx context.Context, roundID int64) (int64, error)

	// CountByRound counts all tickets of the round
	CountByRound(ctx context.Context, roundID int64) (int64, error)

	// Claim marks the ticket completed where is_completed = false
	Claim(ctx context.Context, ticketID int64) (bool, error)
}

// PaymentRepository defines the interface for the append-only payment ledger
type PaymentRepository interface {
	// RecordSent inserts a sent payment and marks the ticket as winner with
	// the transfer reference in a single statement
	RecordSent(ctx context.Context, payment *entities.Payment) error

	// RecordFailed inserts a failed payment; the ticket is left untouched
	RecordFailed(ctx context.Context, payment *entities.Payment) error

	// ExistsForTicket reports whether any payment row exists for the ticket
	ExistsForTicket(ctx context.Context, ticketID int64) (bool, error)

	// ListByRound returns the ledger of a round in insertion order
	ListByRound(ctx context.Context, roundID int64) ([]*entities.Payment, error)
}

// TicketIssuer materializes a paid ticket in the round that is currently
// accepting tickets
type TicketIssuer interface {
	// Issue creates the ticket. Returns entities.ErrNoOpenRound when no round
	// accepts tickets and entities.ErrPaymentAlreadyRedeemed when the purchase
	// transaction already produced a ticket.
	Issue(ctx context.Context, wallet string, numbers entities.Combination, purchaseTxHash string, now time.Time) (*entities.Ticket, error)
}
