package scoring

import (
	"context"

	"github.com/ignite/inbox-triage/internal/domain"
)

// SenderHistoryProvider resolves the derived behavioral history for one
// (user, sender) pair. A sender with no recorded interactions resolves to a
// zero-value SenderHistory and a nil error; absence is never an error.
type SenderHistoryProvider interface {
	SenderHistory(ctx context.Context, userID, senderEmail string) (domain.SenderHistory, error)
}

// TrustProvider resolves the explicit trust designation for a sender.
// Missing designations resolve to TrustNeutral, not an error.
type TrustProvider interface {
	TrustDesignation(ctx context.Context, userID, senderEmail string) (domain.TrustDesignation, error)
}

// UserContextProvider resolves the user's profile slice (role, priorities,
// communication style). A missing profile resolves to DefaultUserContext.
type UserContextProvider interface {
	UserContext(ctx context.Context, userID string) (domain.UserContext, error)
}

// BehaviorSummaryProvider aggregates the user's consistent behaviors for the
// escalation prompt. Implementations read the same counters the history
// provider does.
type BehaviorSummaryProvider interface {
	BehaviorSummary(ctx context.Context, userID string) (domain.BehaviorSummary, error)
}

// AdjustmentProvider returns the learned correction-pattern adjustment for a
// sender, already clamped by the memory layer. Zero means no learned
// influence: the classifier output stands on its own.
type AdjustmentProvider interface {
	LearnedAdjustment(ctx context.Context, userID, senderEmail string) (float64, error)
}
