package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/pkg/logger"
)

const (
	senderIDPrefix  = "sender_"
	patternIDPrefix = "correction_"

	// learnWindowDays bounds how far back pattern mining looks. Old
	// corrections age out of the learned influence instead of pinning it
	// forever.
	learnWindowDays = 90

	// significantShift is the score delta at which a correction earns a
	// learning-timeline entry.
	significantShift = 30.0

	maxSenderMemories = 50
	maxCorrections    = 500
)

// HistoryInvalidator drops any cached derived view of one sender's history.
// Implemented by the redis sender-history cache; without it, a weight edit
// would keep scoring on the stale cached prior until the TTL ran out.
type HistoryInvalidator interface {
	Invalidate(ctx context.Context, userID, senderEmail string)
}

// Service implements the memory surface and the correction feedback loop.
type Service struct {
	repo        Repository
	invalidator HistoryInvalidator
	cfg         config.ScoringConfig
	now         func() time.Time
}

// NewService creates a memory service backed by the given repository.
func NewService(repo Repository, cfg config.ScoringConfig) *Service {
	return &Service{repo: repo, cfg: cfg, now: time.Now}
}

// SetHistoryInvalidator wires in the cache invalidation hook. Optional: with
// no cache in front of the history provider there is nothing to invalidate.
func (s *Service) SetHistoryInvalidator(inv HistoryInvalidator) {
	s.invalidator = inv
}

func (s *Service) invalidateHistory(ctx context.Context, userID, senderEmail string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, userID, senderEmail)
	}
}

// MemorySet is everything the engine has learned about one user, grouped the
// way the memory dashboard renders it.
type MemorySet struct {
	SenderMemories     []domain.Memory `json:"sender_memories"`
	CorrectionMemories []domain.Memory `json:"correction_memories"`
	Summary            Summary         `json:"summary"`
}

// Summary carries the memory dashboard headline numbers.
type Summary struct {
	TotalMemories      int      `json:"total_memories"`
	SenderMemories     int      `json:"sender_memories"`
	CorrectionMemories int      `json:"correction_memories"`
	MostInfluential    []string `json:"most_influential,omitempty"`
}

// AllMemories assembles the full learned-state view for a user: sender
// memories projected from the interaction counters, plus correction patterns
// mined from the decision audit trail with the user's overrides applied.
func (s *Service) AllMemories(ctx context.Context, userID string) (MemorySet, error) {
	var set MemorySet

	stats, err := s.repo.SenderStatsList(ctx, userID, maxSenderMemories)
	if err != nil {
		return set, fmt.Errorf("%w: sender stats: %v", ErrInternal, err)
	}
	for _, st := range stats {
		if st.TotalMessages < s.cfg.MinMessagesForHistory {
			continue
		}
		set.SenderMemories = append(set.SenderMemories, senderMemory(st))
	}

	patterns, err := s.visiblePatterns(ctx, userID)
	if err != nil {
		return set, err
	}
	for _, p := range patterns {
		set.CorrectionMemories = append(set.CorrectionMemories, patternMemory(p))
	}

	set.Summary = Summary{
		TotalMemories:      len(set.SenderMemories) + len(set.CorrectionMemories),
		SenderMemories:     len(set.SenderMemories),
		CorrectionMemories: len(set.CorrectionMemories),
	}
	if m := mostInfluentialSender(set.SenderMemories); m != "" {
		set.Summary.MostInfluential = append(set.Summary.MostInfluential, m)
	}
	if len(patterns) > 0 {
		p := patterns[0]
		set.Summary.MostInfluential = append(set.Summary.MostInfluential,
			fmt.Sprintf("%s (%d corrections)", p.Title, p.Count))
	}
	return set, nil
}

// visiblePatterns mines the correction patterns and applies override state:
// tombstoned patterns are dropped, adjustment overrides replace the computed
// average, and patterns under the visibility cut are filtered out.
func (s *Service) visiblePatterns(ctx context.Context, userID string) ([]*Pattern, error) {
	since := s.now().UTC().AddDate(0, 0, -learnWindowDays)
	corrections, err := s.repo.CorrectedDecisions(ctx, userID, since, maxCorrections)
	if err != nil {
		return nil, fmt.Errorf("%w: corrected decisions: %v", ErrInternal, err)
	}
	overrides, err := s.repo.PatternOverrides(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern overrides: %v", ErrInternal, err)
	}

	var visible []*Pattern
	for _, p := range MinePatterns(corrections) {
		if p.Count < MinVisibleCorrections {
			continue
		}
		o, ok := overrides[p.Key]
		if ok && o.Deleted {
			continue
		}
		if ok && o.Adjustment != nil {
			p.AverageAdjustment = *o.Adjustment
		}
		visible = append(visible, p)
	}
	return visible, nil
}

func senderMemory(st domain.SenderStats) domain.Memory {
	last := st.LastInteraction
	m := domain.Memory{
		ID:               senderIDPrefix + st.SenderEmail,
		UserID:           st.UserID,
		Type:             domain.MemorySenderPattern,
		SenderEmail:      st.SenderEmail,
		ImportanceWeight: st.ImportanceWeight,
		InteractionCount: st.TotalMessages,
		Reasoning:        explainSenderWeight(st),
		LearnedFrom:      "observed email interactions",
		Editable:         true,
		Deletable:        true,
	}
	if !last.IsZero() {
		m.LastReinforced = &last
	}
	return m
}

func patternMemory(p *Pattern) domain.Memory {
	m := domain.Memory{
		ID:                patternIDPrefix + p.Key,
		Type:              domain.MemoryCorrectionPattern,
		PatternName:       p.Title,
		PatternKey:        p.Key,
		CorrectionCount:   p.Count,
		AverageAdjustment: p.AverageAdjustment,
		OriginalScoreAvg:  p.OriginalAvg,
		CorrectedScoreAvg: p.CorrectedAvg,
		Reasoning: fmt.Sprintf("Learned from %d corrections where you adjusted scores by %+.0f points on average",
			p.Count, p.AverageAdjustment),
		LearnedFrom: "your corrections",
		Editable:    true,
		Deletable:   true,
	}
	if !p.LastCorrection.IsZero() {
		last := p.LastCorrection
		m.LastReinforced = &last
	}
	return m
}

// explainSenderWeight states why the sender carries the weight it does, in
// terms of the user's own behavior rather than internal counters.
func explainSenderWeight(st domain.SenderStats) string {
	h := st.History()
	switch {
	case h.ResponseRate > 0.5:
		return "You respond to most emails from this sender"
	case h.ImportanceRate > 0.6:
		return "You often mark this sender as important"
	case h.ArchiveRate > 0.7:
		return "You archive nearly everything from this sender"
	default:
		return fmt.Sprintf("Learned from %d interactions with this sender", st.TotalMessages)
	}
}

func mostInfluentialSender(memories []domain.Memory) string {
	best := ""
	bestDelta := 0.0
	for _, m := range memories {
		// Influence is distance from the neutral prior, in either direction.
		delta := m.ImportanceWeight - 0.5
		if delta < 0 {
			delta = -delta
		}
		if delta > bestDelta {
			bestDelta = delta
			best = m.SenderEmail
		}
	}
	return best
}

// InfluentialMemory is a sender memory ranked by how much it shapes scoring:
// the learned weight times how often the sender shows up.
type InfluentialMemory struct {
	domain.Memory
	ImpactScore float64 `json:"impact_score"`
}

// InfluentialMemories returns the sender memories with the biggest impact on
// decisions: strongly weighted senders the user interacts with a lot. Editing
// these has the largest effect on future scores.
func (s *Service) InfluentialMemories(ctx context.Context, userID string, limit int) ([]InfluentialMemory, error) {
	if limit <= 0 {
		limit = 10
	}
	stats, err := s.repo.SenderStatsList(ctx, userID, maxSenderMemories)
	if err != nil {
		return nil, fmt.Errorf("%w: sender stats: %v", ErrInternal, err)
	}

	var out []InfluentialMemory
	for _, st := range stats {
		if st.ImportanceWeight < 0.7 || st.TotalMessages < 5 {
			continue
		}
		out = append(out, InfluentialMemory{
			Memory:      senderMemory(st),
			ImpactScore: st.ImportanceWeight * float64(st.TotalMessages),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ImpactScore > out[j].ImpactScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateMemory applies a user edit to one memory. Sender memories take a new
// importance weight in [0,1]; correction memories take an adjustment override
// bounded by the learned-adjustment cap.
func (s *Service) UpdateMemory(ctx context.Context, userID, memoryID string, upd domain.MemoryUpdate) error {
	switch {
	case strings.HasPrefix(memoryID, senderIDPrefix):
		sender := strings.TrimPrefix(memoryID, senderIDPrefix)
		if upd.ImportanceWeight == nil {
			return fmt.Errorf("%w: importance_score is required for sender memories", ErrValidation)
		}
		w := *upd.ImportanceWeight
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: importance_score must be in [0,1]", ErrValidation)
		}
		if err := s.repo.UpdateSenderWeight(ctx, userID, sender, w); err != nil {
			return err
		}
		s.invalidateHistory(ctx, userID, sender)
		logger.Info("sender memory updated",
			"sender", logger.RedactEmail(sender), "weight", fmt.Sprintf("%.2f", w))
		return nil

	case strings.HasPrefix(memoryID, patternIDPrefix):
		key := strings.TrimPrefix(memoryID, patternIDPrefix)
		if _, known := patternTitles[key]; !known {
			return ErrNotFound
		}
		if upd.WeightOverride == nil {
			return fmt.Errorf("%w: weight_override is required for correction memories", ErrValidation)
		}
		adj := *upd.WeightOverride
		if adj < -s.cfg.MaxLearnedAdjust || adj > s.cfg.MaxLearnedAdjust {
			return fmt.Errorf("%w: weight_override must be in [%.0f,%.0f]",
				ErrValidation, -s.cfg.MaxLearnedAdjust, s.cfg.MaxLearnedAdjust)
		}
		if err := s.repo.SetPatternOverride(ctx, userID, key, PatternOverride{Adjustment: &adj}); err != nil {
			return fmt.Errorf("%w: set override: %v", ErrInternal, err)
		}
		logger.Info("correction memory updated", "pattern", key, "adjustment", fmt.Sprintf("%+.0f", adj))
		return nil

	default:
		return ErrNotFound
	}
}

// DeleteMemory removes one memory's learned influence. For a sender this
// clears the prior; for a correction pattern it writes a tombstone so the
// pattern stays gone even though the decisions it was mined from remain in
// the audit trail.
func (s *Service) DeleteMemory(ctx context.Context, userID, memoryID string) error {
	switch {
	case strings.HasPrefix(memoryID, senderIDPrefix):
		sender := strings.TrimPrefix(memoryID, senderIDPrefix)
		if err := s.repo.ResetSenderWeight(ctx, userID, sender); err != nil {
			return err
		}
		s.invalidateHistory(ctx, userID, sender)
		logger.Info("sender memory deleted", "sender", logger.RedactEmail(sender))
		return nil

	case strings.HasPrefix(memoryID, patternIDPrefix):
		key := strings.TrimPrefix(memoryID, patternIDPrefix)
		if _, known := patternTitles[key]; !known {
			return ErrNotFound
		}
		if err := s.repo.SetPatternOverride(ctx, userID, key, PatternOverride{Deleted: true}); err != nil {
			return fmt.Errorf("%w: tombstone: %v", ErrInternal, err)
		}
		logger.Info("correction memory deleted", "pattern", key)
		return nil

	default:
		return ErrNotFound
	}
}

// Timeline returns the learning timeline: the corrections inside the window
// that shifted a score enough to have visibly changed what the engine
// believes, newest first.
func (s *Service) Timeline(ctx context.Context, userID string, days int) ([]domain.TimelineEvent, error) {
	if days <= 0 {
		days = 30
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	corrections, err := s.repo.CorrectedDecisions(ctx, userID, since, maxCorrections)
	if err != nil {
		return nil, fmt.Errorf("%w: corrected decisions: %v", ErrInternal, err)
	}

	events := make([]domain.TimelineEvent, 0, len(corrections))
	for _, d := range corrections {
		if d.Correction == nil {
			continue
		}
		original := d.DecisionData.Score()
		corrected := d.Correction.Score()
		shift := corrected - original
		if shift < significantShift && shift > -significantShift {
			continue
		}
		impact := "raised importance"
		if shift < 0 {
			impact = "lowered importance"
		}
		events = append(events, domain.TimelineEvent{
			Timestamp:   correctionTime(d),
			EventType:   "significant_correction",
			Description: fmt.Sprintf("You corrected an importance score from %.0f to %.0f", original, corrected),
			Reasoning:   d.CorrectionReasoning,
			Impact:      impact,
		})
	}
	return events, nil
}

// LearnFromCorrection is the decision.Learner hook. Patterns are mined on
// read, so there is nothing to persist here; the hook exists to make the
// learning visible in the logs the moment it happens.
func (s *Service) LearnFromCorrection(ctx context.Context, d domain.Decision) {
	key := PatternKey(d.CorrectionReasoning)
	fields := []interface{}{"decision_id", d.ID, "pattern", key}
	if d.SenderEmail != "" {
		fields = append(fields, "sender", logger.RedactEmail(d.SenderEmail))
	}
	logger.Info("correction absorbed into pattern memory", fields...)
}

// LearnedAdjustment is the scoring.AdjustmentProvider hook: the summed
// adjustment of every visible pattern this sender has contributed
// corrections to, clamped to the learned-adjustment cap. Senders with no
// corrected decisions get zero.
func (s *Service) LearnedAdjustment(ctx context.Context, userID, senderEmail string) (float64, error) {
	if senderEmail == "" {
		return 0, nil
	}
	patterns, err := s.visiblePatterns(ctx, userID)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, p := range patterns {
		if p.Senders[senderEmail] > 0 {
			total += p.AverageAdjustment
		}
	}
	if total > s.cfg.MaxLearnedAdjust {
		total = s.cfg.MaxLearnedAdjust
	} else if total < -s.cfg.MaxLearnedAdjust {
		total = -s.cfg.MaxLearnedAdjust
	}
	return total, nil
}
