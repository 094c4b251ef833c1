// Package inmem is the zero-dependency storage backend: every repository and
// provider interface implemented on guarded maps. It backs local development
// and tests when no DATABASE_URL is configured; semantics mirror the postgres
// package, including the conditional review update.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/service/decision"
	"github.com/ignite/inbox-triage/internal/service/memory"
)

// Store holds all state for the in-memory backend. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	cfg config.ScoringConfig

	// Keyed by decision id; the nested maps are user -> sender or
	// user -> pattern key.
	decisions map[string]*domain.Decision
	senders   map[string]map[string]*domain.SenderStats
	trust     map[string]map[string]domain.TrustDesignation
	profiles  map[string]domain.UserContext
	overrides map[string]map[string]memory.PatternOverride
}

// NewStore creates an empty in-memory backend.
func NewStore(cfg config.ScoringConfig) *Store {
	return &Store{
		cfg:       cfg,
		decisions: make(map[string]*domain.Decision),
		senders:   make(map[string]map[string]*domain.SenderStats),
		trust:     make(map[string]map[string]domain.TrustDesignation),
		profiles:  make(map[string]domain.UserContext),
		overrides: make(map[string]map[string]memory.PatternOverride),
	}
}

// --- decision.Repository ---

func (s *Store) Insert(_ context.Context, d *domain.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.decisions[d.ID] = &cp
	return nil
}

func (s *Store) Get(_ context.Context, userID, id string) (*domain.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decisions[id]
	if !ok || d.UserID != userID {
		return nil, decision.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *Store) Pending(_ context.Context, userID string, cutoff time.Time, limit int) ([]domain.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Decision
	for _, d := range s.decisions {
		if d.UserID != userID {
			continue
		}
		switch d.Status {
		case domain.StatusSuggested, domain.StatusYourCall:
			out = append(out, *d)
		case domain.StatusHandled:
			if !d.CreatedAt.Before(cutoff) {
				out = append(out, *d)
			}
		}
	}
	sortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Review(_ context.Context, userID, id string, status domain.DecisionStatus, reviewedAt time.Time, correction *domain.DecisionData, correctionReasoning string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.decisions[id]
	if !ok || d.UserID != userID {
		return decision.ErrNotFound
	}
	if d.Status.Terminal() {
		return decision.ErrAlreadyReviewed
	}
	d.Status = status
	t := reviewedAt
	d.ReviewedAt = &t
	if correction != nil {
		cp := *correction
		d.Correction = &cp
	}
	d.CorrectionReasoning = correctionReasoning
	return nil
}

func (s *Store) History(_ context.Context, userID string, f decision.HistoryFilter) ([]domain.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Decision
	for _, d := range s.decisions {
		if d.UserID != userID {
			continue
		}
		if f.MessageID != "" && d.MessageID != f.MessageID {
			continue
		}
		if f.DecisionType != "" && d.DecisionType != f.DecisionType {
			continue
		}
		if !f.Since.IsZero() && d.CreatedAt.Before(f.Since) {
			continue
		}
		if f.OnlyReviewed && d.ReviewedAt == nil {
			continue
		}
		if f.OnlyStatus != "" && d.Status != f.OnlyStatus {
			continue
		}
		out = append(out, *d)
	}
	sortNewestFirst(out)
	limit := f.Limit
	if limit <= 0 {
		limit = 200
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- memory.Repository ---

func (s *Store) CorrectedDecisions(ctx context.Context, userID string, since time.Time, limit int) ([]domain.Decision, error) {
	return s.History(ctx, userID, decision.HistoryFilter{
		Since:      since,
		OnlyStatus: domain.StatusUserCorrected,
		Limit:      limit,
	})
}

func (s *Store) SenderStatsList(_ context.Context, userID string, limit int) ([]domain.SenderStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.SenderStats
	for _, st := range s.senders[userID] {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMessages != out[j].TotalMessages {
			return out[i].TotalMessages > out[j].TotalMessages
		}
		return out[i].SenderEmail < out[j].SenderEmail
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UpdateSenderWeight(_ context.Context, userID, senderEmail string, weight float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.senders[userID][senderEmail]
	if !ok {
		return memory.ErrNotFound
	}
	st.ImportanceWeight = weight
	st.HasImportancePrior = true
	return nil
}

func (s *Store) ResetSenderWeight(_ context.Context, userID, senderEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.senders[userID][senderEmail]; ok {
		st.ImportanceWeight = 0
		st.HasImportancePrior = false
	}
	return nil
}

func (s *Store) PatternOverrides(_ context.Context, userID string) (map[string]memory.PatternOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]memory.PatternOverride, len(s.overrides[userID]))
	for k, v := range s.overrides[userID] {
		out[k] = v
	}
	return out, nil
}

func (s *Store) SetPatternOverride(_ context.Context, userID, patternKey string, o memory.PatternOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overrides[userID] == nil {
		s.overrides[userID] = make(map[string]memory.PatternOverride)
	}
	s.overrides[userID][patternKey] = o
	return nil
}

// --- scoring providers ---

func (s *Store) SenderHistory(_ context.Context, userID, senderEmail string) (domain.SenderHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.senders[userID][senderEmail]
	if !ok {
		return domain.SenderHistory{SenderEmail: senderEmail}, nil
	}
	return st.History(), nil
}

func (s *Store) TrustDesignation(_ context.Context, userID, senderEmail string) (domain.TrustDesignation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.trust[userID][senderEmail]; ok {
		return d, nil
	}
	return domain.NeutralTrust(userID, senderEmail), nil
}

func (s *Store) UserContext(_ context.Context, userID string) (domain.UserContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.profiles[userID]; ok {
		return u, nil
	}
	return domain.DefaultUserContext(userID), nil
}

func (s *Store) BehaviorSummary(_ context.Context, userID string) (domain.BehaviorSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum domain.BehaviorSummary
	var emails []string
	for e := range s.senders[userID] {
		emails = append(emails, e)
	}
	sort.Strings(emails)
	for _, e := range emails {
		st := s.senders[userID][e]
		sum.TotalActions += st.Responded + st.Archived + st.Trashed +
			st.MarkedImportant + st.MarkedInteresting + st.MarkedUnimportant
		if st.TotalMessages < s.cfg.NoiseMinMessages {
			continue
		}
		h := st.History()
		if h.ArchiveRate > s.cfg.NoiseArchiveRate {
			sum.ConsistentArchives = append(sum.ConsistentArchives, e)
		}
		if h.ResponseRate > s.cfg.VIPResponseRate {
			sum.ConsistentOpens = append(sum.ConsistentOpens, e)
		}
	}
	return sum, nil
}

// --- seeding ---

// SeedSenderStats loads counters for a sender, replacing any existing entry.
// The counters are normally owned by the behavior-tracking collaborator; this
// is the dev-backend stand-in for its writes.
func (s *Store) SeedSenderStats(st domain.SenderStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.senders[st.UserID] == nil {
		s.senders[st.UserID] = make(map[string]*domain.SenderStats)
	}
	cp := st
	s.senders[st.UserID][st.SenderEmail] = &cp
}

// SeedTrust loads an explicit trust designation.
func (s *Store) SeedTrust(d domain.TrustDesignation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trust[d.UserID] == nil {
		s.trust[d.UserID] = make(map[string]domain.TrustDesignation)
	}
	s.trust[d.UserID][d.SenderEmail] = d
}

// SeedProfile loads a user profile.
func (s *Store) SeedProfile(u domain.UserContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[u.UserID] = u
}

func sortNewestFirst(ds []domain.Decision) {
	sort.Slice(ds, func(i, j int) bool {
		if !ds[i].CreatedAt.Equal(ds[j].CreatedAt) {
			return ds[i].CreatedAt.After(ds[j].CreatedAt)
		}
		return ds[i].ID < ds[j].ID
	})
}
