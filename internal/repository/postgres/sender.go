package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/service/memory"
)

// SenderRepo reads and adjusts the per-sender interaction counters. It backs
// the scoring history and behavior-summary providers and the sender half of
// the memory surface. The counters themselves are written by the
// behavior-tracking collaborator; the only columns this repo ever updates are
// the learned importance weight.
type SenderRepo struct {
	db  *sql.DB
	cfg config.ScoringConfig
}

// NewSenderRepo creates a Postgres-backed sender stats repository.
func NewSenderRepo(db *sql.DB, cfg config.ScoringConfig) *SenderRepo {
	return &SenderRepo{db: db, cfg: cfg}
}

const senderColumns = `user_id, sender_email, total_messages, responded, archived, trashed,
	       marked_important, marked_interesting, marked_unimportant,
	       importance_weight, COALESCE(last_interaction, 'epoch'::timestamptz)`

// SenderHistory resolves the derived behavioral view for one sender. A sender
// with no counters resolves to the zero value, never an error.
func (r *SenderRepo) SenderHistory(ctx context.Context, userID, senderEmail string) (domain.SenderHistory, error) {
	st, err := r.get(ctx, userID, senderEmail)
	if err == sql.ErrNoRows {
		return domain.SenderHistory{SenderEmail: senderEmail}, nil
	}
	if err != nil {
		return domain.SenderHistory{}, fmt.Errorf("sender history: %w", err)
	}
	return st.History(), nil
}

// BehaviorSummary aggregates the user's consistent behaviors across their
// most active senders, for the escalation prompt.
func (r *SenderRepo) BehaviorSummary(ctx context.Context, userID string) (domain.BehaviorSummary, error) {
	stats, err := r.SenderStatsList(ctx, userID, 100)
	if err != nil {
		return domain.BehaviorSummary{}, err
	}

	var sum domain.BehaviorSummary
	for _, st := range stats {
		sum.TotalActions += st.Responded + st.Archived + st.Trashed +
			st.MarkedImportant + st.MarkedInteresting + st.MarkedUnimportant
		if st.TotalMessages < r.cfg.NoiseMinMessages {
			continue
		}
		h := st.History()
		if h.ArchiveRate > r.cfg.NoiseArchiveRate {
			sum.ConsistentArchives = append(sum.ConsistentArchives, st.SenderEmail)
		}
		if h.ResponseRate > r.cfg.VIPResponseRate {
			sum.ConsistentOpens = append(sum.ConsistentOpens, st.SenderEmail)
		}
	}
	return sum, nil
}

// SenderStatsList returns the user's counters ordered by volume.
func (r *SenderRepo) SenderStatsList(ctx context.Context, userID string, limit int) ([]domain.SenderStats, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+senderColumns+`
		FROM triage_sender_stats
		WHERE user_id = $1
		ORDER BY total_messages DESC, sender_email
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sender stats: %w", err)
	}
	defer rows.Close()

	var out []domain.SenderStats
	for rows.Next() {
		var st domain.SenderStats
		if err := scanSenderStats(rows, &st); err != nil {
			return nil, fmt.Errorf("scan sender stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpdateSenderWeight sets the learned importance weight for a known sender.
func (r *SenderRepo) UpdateSenderWeight(ctx context.Context, userID, senderEmail string, weight float64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE triage_sender_stats
		SET importance_weight = $1
		WHERE user_id = $2 AND sender_email = $3
	`, weight, userID, senderEmail)
	if err != nil {
		return fmt.Errorf("update sender weight: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return memory.ErrNotFound
	}
	return nil
}

// ResetSenderWeight clears the learned prior for a sender. NULL, not zero:
// an explicit weight of 0 is a real prior, absence of one is not. Resetting a
// sender that was never weighted is a no-op, not an error.
func (r *SenderRepo) ResetSenderWeight(ctx context.Context, userID, senderEmail string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE triage_sender_stats
		SET importance_weight = NULL
		WHERE user_id = $1 AND sender_email = $2
	`, userID, senderEmail)
	if err != nil {
		return fmt.Errorf("reset sender weight: %w", err)
	}
	return nil
}

func (r *SenderRepo) get(ctx context.Context, userID, senderEmail string) (domain.SenderStats, error) {
	var st domain.SenderStats
	err := scanSenderStats(r.db.QueryRowContext(ctx, `
		SELECT `+senderColumns+`
		FROM triage_sender_stats
		WHERE user_id = $1 AND sender_email = $2
	`, userID, senderEmail), &st)
	return st, err
}

func scanSenderStats(row rowScanner, st *domain.SenderStats) error {
	var weight sql.NullFloat64
	err := row.Scan(
		&st.UserID, &st.SenderEmail, &st.TotalMessages, &st.Responded, &st.Archived,
		&st.Trashed, &st.MarkedImportant, &st.MarkedInteresting, &st.MarkedUnimportant,
		&weight, &st.LastInteraction,
	)
	if err != nil {
		return err
	}
	st.ImportanceWeight = weight.Float64
	st.HasImportancePrior = weight.Valid
	return nil
}
