package decision

import (
	"context"
	"time"

	"github.com/ignite/inbox-triage/internal/domain"
)

// Repository defines the data access contract for decisions.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Insert persists a new decision row. It never updates an existing row.
	Insert(ctx context.Context, d *domain.Decision) error

	// Get returns a single decision owned by userID. Returns ErrNotFound
	// both when the row is missing and when it belongs to another user.
	Get(ctx context.Context, userID, id string) (*domain.Decision, error)

	// Pending returns unreviewed decisions created at or after cutoff,
	// newest first: everything SUGGESTED or YOUR_CALL plus HANDLED rows
	// still inside the audit window.
	Pending(ctx context.Context, userID string, cutoff time.Time, limit int) ([]domain.Decision, error)

	// Review applies the one-time terminal transition. The update must be
	// conditional on the current status being non-terminal so concurrent
	// reviews serialize: the second caller gets ErrAlreadyReviewed, a
	// missing or foreign row gets ErrNotFound.
	Review(ctx context.Context, userID, id string, status domain.DecisionStatus, reviewedAt time.Time, correction *domain.DecisionData, correctionReasoning string) error

	// History returns decisions matching the filter, newest first.
	History(ctx context.Context, userID string, f HistoryFilter) ([]domain.Decision, error)
}

// HistoryFilter controls the decision history and analytics queries.
// Zero values mean "don't filter on this".
type HistoryFilter struct {
	MessageID    string
	DecisionType domain.DecisionType
	Since        time.Time
	OnlyReviewed bool
	OnlyStatus   domain.DecisionStatus
	Limit        int
}
