package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/inbox-triage/internal/domain"
)

// TrustRepo reads explicit sender trust designations. The designation store
// is owned by profile management; scoring only ever reads it.
type TrustRepo struct{ db *sql.DB }

// NewTrustRepo creates a Postgres-backed trust designation reader.
func NewTrustRepo(db *sql.DB) *TrustRepo { return &TrustRepo{db: db} }

// TrustDesignation resolves a sender's trust level. A missing record resolves
// to neutral, never an error.
func (r *TrustRepo) TrustDesignation(ctx context.Context, userID, senderEmail string) (domain.TrustDesignation, error) {
	d := domain.TrustDesignation{}
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, sender_email, trust_level, created_at
		FROM triage_trust_designations
		WHERE user_id = $1 AND sender_email = $2
	`, userID, senderEmail).Scan(&d.UserID, &d.SenderEmail, &d.TrustLevel, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.NeutralTrust(userID, senderEmail), nil
	}
	if err != nil {
		return domain.TrustDesignation{}, fmt.Errorf("trust designation: %w", err)
	}
	return d, nil
}
