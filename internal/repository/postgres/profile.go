package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/ignite/inbox-triage/internal/domain"
)

// ProfileRepo reads the user profile slice the scorer consumes. Owned by
// profile management; read-only here.
type ProfileRepo struct{ db *sql.DB }

// NewProfileRepo creates a Postgres-backed user context reader.
func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// UserContext resolves the user's role, priorities and communication style.
// A missing profile resolves to the default professional context.
func (r *ProfileRepo) UserContext(ctx context.Context, userID string) (domain.UserContext, error) {
	u := domain.UserContext{}
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, COALESCE(role,''), COALESCE(priorities, '{}'), COALESCE(communication_style,'')
		FROM triage_user_profiles
		WHERE user_id = $1
	`, userID).Scan(&u.UserID, &u.Role, pq.Array(&u.Priorities), &u.CommunicationStyle)
	if err == sql.ErrNoRows {
		return domain.DefaultUserContext(userID), nil
	}
	if err != nil {
		return domain.UserContext{}, fmt.Errorf("user context: %w", err)
	}
	if u.Role == "" {
		u.Role = domain.DefaultUserContext(userID).Role
	}
	return u, nil
}
