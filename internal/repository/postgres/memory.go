package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/service/decision"
	"github.com/ignite/inbox-triage/internal/service/memory"
)

// MemoryRepo implements memory.Repository. Corrections and sender counters
// are served by the decision and sender repos; only the pattern override
// table is owned here.
type MemoryRepo struct {
	db        *sql.DB
	decisions *DecisionRepo
	senders   *SenderRepo
}

// NewMemoryRepo creates a Postgres-backed memory repository on top of the
// decision and sender repos.
func NewMemoryRepo(db *sql.DB, decisions *DecisionRepo, senders *SenderRepo) *MemoryRepo {
	return &MemoryRepo{db: db, decisions: decisions, senders: senders}
}

func (r *MemoryRepo) CorrectedDecisions(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Decision, error) {
	return r.decisions.History(ctx, userID, decision.HistoryFilter{
		Since:      since,
		OnlyStatus: domain.StatusUserCorrected,
		Limit:      limit,
	})
}

func (r *MemoryRepo) SenderStatsList(ctx context.Context, userID string, limit int) ([]domain.SenderStats, error) {
	return r.senders.SenderStatsList(ctx, userID, limit)
}

func (r *MemoryRepo) UpdateSenderWeight(ctx context.Context, userID, senderEmail string, weight float64) error {
	return r.senders.UpdateSenderWeight(ctx, userID, senderEmail, weight)
}

func (r *MemoryRepo) ResetSenderWeight(ctx context.Context, userID, senderEmail string) error {
	return r.senders.ResetSenderWeight(ctx, userID, senderEmail)
}

func (r *MemoryRepo) PatternOverrides(ctx context.Context, userID string) (map[string]memory.PatternOverride, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pattern_key, adjustment, deleted
		FROM triage_pattern_overrides
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("pattern overrides: %w", err)
	}
	defer rows.Close()

	out := make(map[string]memory.PatternOverride)
	for rows.Next() {
		var key string
		var adj sql.NullFloat64
		var o memory.PatternOverride
		if err := rows.Scan(&key, &adj, &o.Deleted); err != nil {
			return nil, fmt.Errorf("scan pattern override: %w", err)
		}
		if adj.Valid {
			v := adj.Float64
			o.Adjustment = &v
		}
		out[key] = o
	}
	return out, rows.Err()
}

func (r *MemoryRepo) SetPatternOverride(ctx context.Context, userID, patternKey string, o memory.PatternOverride) error {
	var adj interface{}
	if o.Adjustment != nil {
		adj = *o.Adjustment
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO triage_pattern_overrides (user_id, pattern_key, adjustment, deleted, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, pattern_key)
		DO UPDATE SET adjustment = EXCLUDED.adjustment, deleted = EXCLUDED.deleted, updated_at = NOW()
	`, userID, patternKey, adj, o.Deleted)
	if err != nil {
		return fmt.Errorf("set pattern override: %w", err)
	}
	return nil
}
