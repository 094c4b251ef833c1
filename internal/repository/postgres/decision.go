package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/service/decision"
)

// DecisionRepo implements decision.Repository against PostgreSQL.
// decision_data and correction are stored as JSONB so the tagged union
// round-trips without a column per decision type.
type DecisionRepo struct{ db *sql.DB }

// NewDecisionRepo creates a Postgres-backed decision repository.
func NewDecisionRepo(db *sql.DB) *DecisionRepo { return &DecisionRepo{db: db} }

const decisionColumns = `id, user_id, COALESCE(message_id,''), COALESCE(sender_email,''),
	       decision_type, decision_data, reasoning, confidence, status, created_at,
	       reviewed_at, correction, COALESCE(correction_reasoning,'')`

func (r *DecisionRepo) Insert(ctx context.Context, d *domain.Decision) error {
	data, err := json.Marshal(d.DecisionData)
	if err != nil {
		return fmt.Errorf("marshal decision data: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO triage_decisions
			(id, user_id, message_id, sender_email, decision_type, decision_data,
			 reasoning, confidence, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, d.ID, d.UserID, d.MessageID, d.SenderEmail, d.DecisionType, data,
		d.Reasoning, d.Confidence, d.Status, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func (r *DecisionRepo) Get(ctx context.Context, userID, id string) (*domain.Decision, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+decisionColumns+`
		FROM triage_decisions
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	d, err := scanDecision(row)
	if err == sql.ErrNoRows {
		return nil, decision.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get decision: %w", err)
	}
	return d, nil
}

func (r *DecisionRepo) Pending(ctx context.Context, userID string, cutoff time.Time, limit int) ([]domain.Decision, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+decisionColumns+`
		FROM triage_decisions
		WHERE user_id = $1
		  AND (status IN ('suggested','your_call')
		       OR (status = 'handled' AND created_at >= $2))
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("pending decisions: %w", err)
	}
	defer rows.Close()
	return collectDecisions(rows)
}

func (r *DecisionRepo) Review(ctx context.Context, userID, id string, status domain.DecisionStatus, reviewedAt time.Time, correction *domain.DecisionData, correctionReasoning string) error {
	var corrJSON interface{}
	if correction != nil {
		data, err := json.Marshal(correction)
		if err != nil {
			return fmt.Errorf("marshal correction: %w", err)
		}
		corrJSON = data
	}

	// Conditional on the row still being non-terminal: of two concurrent
	// reviews exactly one updates, the other falls through below.
	res, err := r.db.ExecContext(ctx, `
		UPDATE triage_decisions
		SET status = $1, reviewed_at = $2, correction = $3, correction_reasoning = $4
		WHERE id = $5 AND user_id = $6
		  AND status NOT IN ('user_approved','user_corrected')
	`, status, reviewedAt, corrJSON, correctionReasoning, id, userID)
	if err != nil {
		return fmt.Errorf("review decision: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	// Zero rows means either a lost race or a missing/foreign row.
	var existing string
	err = r.db.QueryRowContext(ctx, `
		SELECT status FROM triage_decisions WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&existing)
	if err == sql.ErrNoRows {
		return decision.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("review decision recheck: %w", err)
	}
	return decision.ErrAlreadyReviewed
}

func (r *DecisionRepo) History(ctx context.Context, userID string, f decision.HistoryFilter) ([]domain.Decision, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 200
	}

	q := `
		SELECT ` + decisionColumns + `
		FROM triage_decisions
		WHERE user_id = $1`
	args := []interface{}{userID}
	idx := 2

	if f.MessageID != "" {
		q += fmt.Sprintf(" AND message_id = $%d", idx)
		args = append(args, f.MessageID)
		idx++
	}
	if f.DecisionType != "" {
		q += fmt.Sprintf(" AND decision_type = $%d", idx)
		args = append(args, f.DecisionType)
		idx++
	}
	if !f.Since.IsZero() {
		q += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, f.Since)
		idx++
	}
	if f.OnlyReviewed {
		q += " AND reviewed_at IS NOT NULL"
	}
	if f.OnlyStatus != "" {
		q += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, f.OnlyStatus)
		idx++
	}
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", idx)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("decision history: %w", err)
	}
	defer rows.Close()
	return collectDecisions(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDecision(row rowScanner) (*domain.Decision, error) {
	d := &domain.Decision{}
	var data []byte
	var corr []byte
	var reviewedAt sql.NullTime

	err := row.Scan(
		&d.ID, &d.UserID, &d.MessageID, &d.SenderEmail,
		&d.DecisionType, &data, &d.Reasoning, &d.Confidence, &d.Status, &d.CreatedAt,
		&reviewedAt, &corr, &d.CorrectionReasoning,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &d.DecisionData); err != nil {
		return nil, fmt.Errorf("unmarshal decision data: %w", err)
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		d.ReviewedAt = &t
	}
	if len(corr) > 0 {
		c := &domain.DecisionData{}
		if err := json.Unmarshal(corr, c); err != nil {
			return nil, fmt.Errorf("unmarshal correction: %w", err)
		}
		d.Correction = c
	}
	return d, nil
}

func collectDecisions(rows *sql.Rows) ([]domain.Decision, error) {
	var out []domain.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
