package memory

import (
	"context"
	"time"

	"github.com/ignite/inbox-triage/internal/domain"
)

// PatternOverride is the user-set state layered over a mined correction
// pattern. Adjustment, when set, replaces the pattern's computed average
// adjustment. Deleted tombstones the pattern: it stays invisible and
// contributes nothing to scoring, even if later corrections would re-form it.
type PatternOverride struct {
	Adjustment *float64 `json:"adjustment,omitempty"`
	Deleted    bool     `json:"deleted"`
}

// Repository defines the data access contract for learned memory state.
// Implementations must be safe for concurrent use.
type Repository interface {
	// CorrectedDecisions returns the user's USER_CORRECTED decisions since
	// the given time, newest first. This is the raw material patterns are
	// mined from; the rows themselves are owned by the decision store and
	// are never modified here.
	CorrectedDecisions(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Decision, error)

	// SenderStatsList returns the user's per-sender counters ordered by
	// interaction volume, most active first.
	SenderStatsList(ctx context.Context, userID string, limit int) ([]domain.SenderStats, error)

	// UpdateSenderWeight sets the learned importance weight for a sender the
	// user already has counters for. A sender with no counters is ErrNotFound.
	UpdateSenderWeight(ctx context.Context, userID, senderEmail string, weight float64) error

	// ResetSenderWeight clears the learned prior for a sender, returning it
	// to "no history" as far as scoring is concerned.
	ResetSenderWeight(ctx context.Context, userID, senderEmail string) error

	// PatternOverrides returns the user's per-pattern override state keyed by
	// pattern key.
	PatternOverrides(ctx context.Context, userID string) (map[string]PatternOverride, error)

	// SetPatternOverride upserts the override state for one pattern key.
	SetPatternOverride(ctx context.Context, userID, patternKey string, o PatternOverride) error
}
