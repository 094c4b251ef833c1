package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/pkg/logger"
)

// urgencyKeywords is the fixed subject-line urgency set. Matching is
// case-insensitive substring; the set itself is not configurable so that
// reasoning strings stay reproducible across deployments.
var urgencyKeywords = []string{"urgent", "asap", "deadline", "today", "approval needed", "review needed"}

// Inputs carries everything one scoring call needs. All fields are plain
// values; Compute on a fixed Inputs is deterministic.
type Inputs struct {
	History       domain.SenderHistory
	User          domain.UserContext
	Trust         domain.TrustDesignation
	Signals       domain.PlatformSignals
	Subject       string
	Snippet       string
	LearnedAdjust float64
}

// Service combines the signal providers with the composite scorer. Safe for
// concurrent use: it holds no mutable state, so concurrent calls for
// different messages or users never contend.
type Service struct {
	history SenderHistoryProvider
	trust   TrustProvider
	users   UserContextProvider
	adjust  AdjustmentProvider
	cfg     config.ScoringConfig
}

// NewService creates a scoring service over the given signal providers.
// adjust may be nil when no correction learning is wired in.
func NewService(history SenderHistoryProvider, trust TrustProvider, users UserContextProvider, adjust AdjustmentProvider, cfg config.ScoringConfig) *Service {
	return &Service{history: history, trust: trust, users: users, adjust: adjust, cfg: cfg}
}

// Score resolves signals for a message and computes its importance.
// Provider lookups are the only I/O. The sender-history read is load-bearing
// and fails the call on error; the auxiliary lookups (profile, trust, learned
// adjustment) degrade to their neutral defaults instead.
func (s *Service) Score(ctx context.Context, userID, senderEmail, subject, snippet string, signals domain.PlatformSignals) (domain.ScoringResult, error) {
	in := Inputs{Subject: subject, Snippet: snippet, Signals: signals}

	var err error
	if in.History, err = s.history.SenderHistory(ctx, userID, senderEmail); err != nil {
		return domain.ScoringResult{}, fmt.Errorf("sender history: %w", err)
	}
	if in.User, err = s.users.UserContext(ctx, userID); err != nil {
		logger.Warn("user context lookup failed, using default", "user_id", userID, "error", err)
		in.User = domain.DefaultUserContext(userID)
	}
	if in.Trust, err = s.trust.TrustDesignation(ctx, userID, senderEmail); err != nil {
		logger.Warn("trust lookup failed, treating as neutral", "sender", senderEmail, "error", err)
		in.Trust = domain.NeutralTrust(userID, senderEmail)
	}
	if s.adjust != nil {
		if in.LearnedAdjust, err = s.adjust.LearnedAdjustment(ctx, userID, senderEmail); err != nil {
			logger.Warn("learned adjustment lookup failed, ignoring", "sender", senderEmail, "error", err)
			in.LearnedAdjust = 0
		}
	}

	return s.Compute(in), nil
}

// Compute runs the composite scoring algorithm. Pure: no I/O, no clock, no
// randomness. Out-of-range provider values are clamped, never rejected.
func (s *Service) Compute(in Inputs) domain.ScoringResult {
	cfg := s.cfg
	relationship := ClassifyRelationship(in.History, cfg)

	score := cfg.BaseScore

	// Sender relationship carries the highest weight.
	switch relationship {
	case domain.RelationshipVIP:
		score += cfg.VIPBoost
	case domain.RelationshipImportant:
		score += cfg.ImportantBoost
	case domain.RelationshipOccasional:
		score += cfg.OccasionalBoost
	case domain.RelationshipInformational:
		score += cfg.InfoBoost
	case domain.RelationshipNoise:
		score -= cfg.NoisePenalty
	}

	// Learned prior: deviation from neutral, scaled.
	if in.History.HasPrior {
		prior := domain.ClampConfidence(in.History.ImportanceScore)
		score += (prior - 0.5) * cfg.HistoryWeight
	}

	blocked := in.Trust.TrustLevel == domain.TrustBlocked
	switch in.Trust.TrustLevel {
	case domain.TrustTrusted:
		score += cfg.TrustedBoost
	case domain.TrustBlocked:
		score -= cfg.BlockedPenalty
	}

	if in.Signals.IsStarred {
		score += cfg.StarredBoost
	}
	if in.Signals.IsFlaggedImportant {
		score += cfg.FlaggedBoost
	}
	switch in.Signals.Category {
	case domain.CategoryPromotional:
		score -= cfg.PromoPenalty
	case domain.CategoryPrimary:
		score += cfg.PrimaryBoost
	}

	urgent := subjectLooksUrgent(in.Subject)
	if urgent {
		score += cfg.UrgencyBoost
	}
	if in.Signals.HasUnsubscribeLink {
		score -= cfg.UnsubPenalty
	}

	// Correction-pattern influence, already clamped by the memory layer.
	// Clamped again here so a misbehaving provider can't dominate.
	if in.LearnedAdjust > cfg.MaxLearnedAdjust {
		in.LearnedAdjust = cfg.MaxLearnedAdjust
	} else if in.LearnedAdjust < -cfg.MaxLearnedAdjust {
		in.LearnedAdjust = -cfg.MaxLearnedAdjust
	}
	score += in.LearnedAdjust

	// An explicit block dominates every other signal: the score is capped
	// below the read-later band and the action can never reach reply_now.
	if blocked && score > cfg.ArchiveScore {
		score = cfg.ArchiveScore
	}

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	return domain.ScoringResult{
		ImportanceScore: domain.ClampScore(score),
		Confidence:      Confidence(in.History.TotalMessages),
		Relationship:    relationship,
		Reasoning:       buildReasoning(relationship, in, urgent),
		SuggestedAction: suggestAction(score, relationship, in.History, cfg),
	}
}

// suggestAction maps a raw score onto the action ladder. Evaluated in order,
// first match wins, so the auto-archive rule only applies below every score
// band.
func suggestAction(score float64, relationship domain.RelationshipType, h domain.SenderHistory, cfg config.ScoringConfig) domain.SuggestedAction {
	switch {
	case score >= cfg.ReplyNowScore:
		return domain.ActionReplyNow
	case score >= cfg.ReviewTodayScore:
		return domain.ActionReviewToday
	case score >= cfg.ReadLaterScore:
		return domain.ActionReadLater
	case score >= cfg.ArchiveScore:
		return domain.ActionArchiveIfNotUrgent
	case relationship == domain.RelationshipNoise && h.ArchiveRate > cfg.AutoArchiveRate:
		return domain.ActionAutoArchive
	default:
		return domain.ActionUserDecides
	}
}

func subjectLooksUrgent(subject string) bool {
	subject = strings.ToLower(subject)
	for _, kw := range urgencyKeywords {
		if strings.Contains(subject, kw) {
			return true
		}
	}
	return false
}

// buildReasoning concatenates the signals that actually fired. Same inputs
// always yield the same string; the UI shows it verbatim next to the score.
func buildReasoning(relationship domain.RelationshipType, in Inputs, urgent bool) string {
	var reasons []string

	switch relationship {
	case domain.RelationshipVIP:
		reasons = append(reasons, "You frequently engage with this sender")
	case domain.RelationshipImportant:
		reasons = append(reasons, "You've marked this sender as important before")
	case domain.RelationshipNoise:
		reasons = append(reasons, fmt.Sprintf("You archive %d%% of emails from this sender", int(in.History.ArchiveRate*100)))
	case domain.RelationshipUnknown:
		reasons = append(reasons, "New sender - no history available")
	}

	switch in.Trust.TrustLevel {
	case domain.TrustTrusted:
		reasons = append(reasons, "Explicitly trusted contact")
	case domain.TrustBlocked:
		reasons = append(reasons, "Blocked sender")
	}

	if in.Signals.IsStarred {
		reasons = append(reasons, "Starred by your mail provider")
	}
	if in.Signals.IsFlaggedImportant {
		reasons = append(reasons, "Flagged important by your mail provider")
	}
	if in.Signals.Category == domain.CategoryPromotional {
		reasons = append(reasons, "Promotional content")
	}
	if urgent {
		reasons = append(reasons, "Urgent language in subject")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Standard email with no strong signals")
	}
	return strings.Join(reasons, " • ")
}
