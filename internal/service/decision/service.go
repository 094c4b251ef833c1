package decision

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/pkg/logger"
)

// Learner is the correction feedback hook. Review invokes it after a
// successful correction transition; failures are logged, never propagated,
// so a broken learning path can't block the user's review.
type Learner interface {
	LearnFromCorrection(ctx context.Context, d domain.Decision)
}

// Service implements the decision audit trail business logic. Safe for
// concurrent use if the underlying repository is; record and review are each
// a single atomic repository write.
type Service struct {
	repo      Repository
	lifecycle config.LifecycleConfig
	learner   Learner
	now       func() time.Time
}

// NewService creates a decision service backed by the given repository.
// learner may be nil when no correction learning is wired in.
func NewService(repo Repository, lifecycle config.LifecycleConfig, learner Learner) *Service {
	return &Service{repo: repo, lifecycle: lifecycle, learner: learner, now: time.Now}
}

// statusFor derives a decision's initial lifecycle status from confidence
// alone. The boundaries are exact: 0.9 is handled, 0.899999 is suggested.
func (s *Service) statusFor(confidence float64) domain.DecisionStatus {
	switch {
	case confidence >= s.lifecycle.HandledConfidence:
		return domain.StatusHandled
	case confidence >= s.lifecycle.SuggestedConfidence:
		return domain.StatusSuggested
	default:
		return domain.StatusYourCall
	}
}

// Record persists one decision and returns its new globally unique id.
// It never mutates an earlier decision for the same message; re-scoring a
// message appends a fresh row.
func (s *Service) Record(ctx context.Context, userID string, decisionType domain.DecisionType, data domain.DecisionData, reasoning string, confidence float64, messageID string) (string, error) {
	return s.record(ctx, userID, decisionType, data, reasoning, confidence, messageID, "")
}

// RecordForSender is Record with the sender attached. The scoring pipeline
// uses it so that corrections on its decisions can feed sender-matched
// learning.
func (s *Service) RecordForSender(ctx context.Context, userID, senderEmail string, decisionType domain.DecisionType, data domain.DecisionData, reasoning string, confidence float64, messageID string) (string, error) {
	return s.record(ctx, userID, decisionType, data, reasoning, confidence, messageID, senderEmail)
}

func (s *Service) record(ctx context.Context, userID string, decisionType domain.DecisionType, data domain.DecisionData, reasoning string, confidence float64, messageID, senderEmail string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if !decisionType.Valid() {
		return "", fmt.Errorf("%w: unknown decision type %q", ErrValidation, decisionType)
	}
	if err := data.ValidateFor(decisionType); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	confidence = domain.ClampConfidence(confidence)
	d := &domain.Decision{
		ID:           uuid.New().String(),
		UserID:       userID,
		MessageID:    messageID,
		SenderEmail:  senderEmail,
		DecisionType: decisionType,
		DecisionData: data,
		Reasoning:    reasoning,
		Confidence:   confidence,
		Status:       s.statusFor(confidence),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.Insert(ctx, d); err != nil {
		return "", fmt.Errorf("%w: insert: %v", ErrInternal, err)
	}

	logger.Info("decision recorded",
		"decision_id", d.ID, "type", string(decisionType),
		"confidence", fmt.Sprintf("%.2f", confidence), "status", string(d.Status))
	return d.ID, nil
}

// PendingReviews returns the decisions awaiting user review: everything
// SUGGESTED or YOUR_CALL, plus HANDLED decisions still inside the audit
// window (recent enough that the user can sanity-check what was automated).
func (s *Service) PendingReviews(ctx context.Context, userID string, limit int) ([]domain.Decision, error) {
	if limit <= 0 {
		limit = 50
	}
	cutoff := s.now().UTC().Add(-time.Duration(s.lifecycle.PendingWindowHours) * time.Hour)
	decisions, err := s.repo.Pending(ctx, userID, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: pending: %v", ErrInternal, err)
	}
	return decisions, nil
}

// Review applies the user's one-time verdict on a decision.
//
// Approval must not carry a correction; rejection must. The status update is
// conditional on the row being non-terminal, so of two concurrent reviews
// exactly one succeeds and the other fails with ErrAlreadyReviewed.
func (s *Service) Review(ctx context.Context, decisionID, userID string, approved bool, correction *domain.DecisionData, correctionReasoning string) error {
	if approved && correction != nil {
		return fmt.Errorf("%w: approval does not take a correction", ErrValidation)
	}
	if !approved && (correction == nil || correction.IsZero()) {
		return fmt.Errorf("%w: a correction payload is required when rejecting", ErrValidation)
	}

	d, err := s.repo.Get(ctx, userID, decisionID)
	if err != nil {
		return err
	}
	if d.Status.Terminal() {
		return ErrAlreadyReviewed
	}

	reviewedAt := s.now().UTC()
	if approved {
		if err := s.repo.Review(ctx, userID, decisionID, domain.StatusUserApproved, reviewedAt, nil, ""); err != nil {
			return err
		}
		logger.Info("decision approved", "decision_id", decisionID)
		return nil
	}

	if err := correction.ValidateFor(d.DecisionType); err != nil {
		return fmt.Errorf("%w: correction schema: %v", ErrValidation, err)
	}
	if err := s.repo.Review(ctx, userID, decisionID, domain.StatusUserCorrected, reviewedAt, correction, correctionReasoning); err != nil {
		return err
	}
	logger.Info("decision corrected", "decision_id", decisionID, "reasoning", correctionReasoning)

	if s.learner != nil {
		d.Status = domain.StatusUserCorrected
		d.ReviewedAt = &reviewedAt
		d.Correction = correction
		d.CorrectionReasoning = correctionReasoning
		s.learner.LearnFromCorrection(ctx, *d)
	}
	return nil
}

// History returns the decision audit trail for a user inside a day window,
// optionally narrowed to one message or one decision type.
func (s *Service) History(ctx context.Context, userID, messageID string, decisionType domain.DecisionType, days int) ([]domain.Decision, error) {
	if days <= 0 {
		days = 30
	}
	f := HistoryFilter{
		MessageID:    messageID,
		DecisionType: decisionType,
		Since:        s.now().UTC().AddDate(0, 0, -days),
	}
	decisions, err := s.repo.History(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("%w: history: %v", ErrInternal, err)
	}
	return decisions, nil
}

// Summary groups a decision list for the review dashboard.
type Summary struct {
	NeedsReview     []domain.Decision `json:"needs_review"`
	RecentlyHandled []domain.Decision `json:"recently_handled"`
	YouApproved     []domain.Decision `json:"you_approved"`
	YouCorrected    []domain.Decision `json:"you_corrected"`
	Totals          SummaryTotals     `json:"summary"`
}

// SummaryTotals carries the dashboard headline numbers. ApprovalRate is nil
// until at least one decision has been reviewed.
type SummaryTotals struct {
	Total                int      `json:"total"`
	NeedsAttention       int      `json:"needs_attention"`
	HandledAutomatically int      `json:"handled_automatically"`
	ApprovalRate         *float64 `json:"approval_rate"`
}

// Summarize groups decisions by status. Pure; used by the pending-reviews
// endpoint and by anything else that renders a decision list.
func Summarize(decisions []domain.Decision) Summary {
	var sum Summary
	for _, d := range decisions {
		switch d.Status {
		case domain.StatusSuggested, domain.StatusYourCall:
			sum.NeedsReview = append(sum.NeedsReview, d)
		case domain.StatusHandled:
			sum.RecentlyHandled = append(sum.RecentlyHandled, d)
		case domain.StatusUserApproved:
			sum.YouApproved = append(sum.YouApproved, d)
		case domain.StatusUserCorrected:
			sum.YouCorrected = append(sum.YouCorrected, d)
		}
	}
	sum.Totals.Total = len(decisions)
	sum.Totals.NeedsAttention = len(sum.NeedsReview)
	sum.Totals.HandledAutomatically = len(sum.RecentlyHandled)
	if reviewed := len(sum.YouApproved) + len(sum.YouCorrected); reviewed > 0 {
		rate := float64(len(sum.YouApproved)) / float64(reviewed)
		sum.Totals.ApprovalRate = &rate
	}
	return sum
}
