package inmem

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/service/decision"
)

func testDecision(id, userID string, status domain.DecisionStatus, createdAt time.Time) *domain.Decision {
	return &domain.Decision{
		ID:           id,
		UserID:       userID,
		DecisionType: domain.DecisionImportanceScoring,
		DecisionData: domain.DecisionData{
			ImportanceScore: &domain.ImportanceScoreData{ImportanceScore: 60},
		},
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestStoreGetScopedToUser(t *testing.T) {
	s := NewStore(config.Default().Scoring)
	ctx := context.Background()
	s.Insert(ctx, testDecision("d1", "u1", domain.StatusSuggested, time.Now()))

	if _, err := s.Get(ctx, "u1", "d1"); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if _, err := s.Get(ctx, "u2", "d1"); err != decision.ErrNotFound {
		t.Errorf("cross-user Get() error = %v, want ErrNotFound", err)
	}
}

func TestStoreReviewIsOneTime(t *testing.T) {
	s := NewStore(config.Default().Scoring)
	ctx := context.Background()
	s.Insert(ctx, testDecision("d1", "u1", domain.StatusSuggested, time.Now()))

	now := time.Now().UTC()
	if err := s.Review(ctx, "u1", "d1", domain.StatusUserApproved, now, nil, ""); err != nil {
		t.Fatalf("first Review() error: %v", err)
	}
	if err := s.Review(ctx, "u1", "d1", domain.StatusUserApproved, now, nil, ""); err != decision.ErrAlreadyReviewed {
		t.Errorf("second Review() error = %v, want ErrAlreadyReviewed", err)
	}

	d, _ := s.Get(ctx, "u1", "d1")
	if d.Status != domain.StatusUserApproved || d.ReviewedAt == nil {
		t.Errorf("review not applied: %+v", d)
	}
}

func TestStoreReviewConcurrentSingleWinner(t *testing.T) {
	s := NewStore(config.Default().Scoring)
	ctx := context.Background()
	s.Insert(ctx, testDecision("d1", "u1", domain.StatusSuggested, time.Now()))

	const reviewers = 16
	errs := make(chan error, reviewers)
	var wg sync.WaitGroup
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Review(ctx, "u1", "d1", domain.StatusUserApproved, time.Now().UTC(), nil, "")
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, decision.ErrAlreadyReviewed):
			lost++
		default:
			t.Fatalf("unexpected Review() error: %v", err)
		}
	}
	if won != 1 || lost != reviewers-1 {
		t.Errorf("concurrent reviews: %d succeeded, %d rejected; want exactly 1 and %d", won, lost, reviewers-1)
	}
}

func TestStorePendingWindow(t *testing.T) {
	s := NewStore(config.Default().Scoring)
	ctx := context.Background()
	now := time.Now().UTC()
	cutoff := now.Add(-24 * time.Hour)

	s.Insert(ctx, testDecision("sug", "u1", domain.StatusSuggested, now.Add(-72*time.Hour)))
	s.Insert(ctx, testDecision("recent-handled", "u1", domain.StatusHandled, now.Add(-time.Hour)))
	s.Insert(ctx, testDecision("old-handled", "u1", domain.StatusHandled, now.Add(-48*time.Hour)))
	s.Insert(ctx, testDecision("approved", "u1", domain.StatusUserApproved, now))

	out, err := s.Pending(ctx, "u1", cutoff, 10)
	if err != nil {
		t.Fatalf("Pending() error: %v", err)
	}
	got := map[string]bool{}
	for _, d := range out {
		got[d.ID] = true
	}
	if !got["sug"] || !got["recent-handled"] {
		t.Errorf("Pending() missing expected rows: %v", got)
	}
	if got["old-handled"] || got["approved"] {
		t.Errorf("Pending() leaked rows outside the window: %v", got)
	}
}

func TestStoreHistoryFiltersAndOrder(t *testing.T) {
	s := NewStore(config.Default().Scoring)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	older := testDecision("older", "u1", domain.StatusSuggested, base)
	newer := testDecision("newer", "u1", domain.StatusSuggested, base.Add(time.Hour))
	s.Insert(ctx, older)
	s.Insert(ctx, newer)
	s.Review(ctx, "u1", "older", domain.StatusUserCorrected, base.Add(2*time.Hour),
		&domain.DecisionData{ImportanceScore: &domain.ImportanceScoreData{ImportanceScore: 10}}, "spam")

	all, err := s.History(ctx, "u1", decision.HistoryFilter{})
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(all) != 2 || all[0].ID != "newer" {
		t.Errorf("History() order wrong: %+v", all)
	}

	corrected, _ := s.History(ctx, "u1", decision.HistoryFilter{OnlyStatus: domain.StatusUserCorrected})
	if len(corrected) != 1 || corrected[0].ID != "older" {
		t.Errorf("OnlyStatus filter wrong: %+v", corrected)
	}

	reviewed, _ := s.History(ctx, "u1", decision.HistoryFilter{OnlyReviewed: true})
	if len(reviewed) != 1 {
		t.Errorf("OnlyReviewed filter wrong: %+v", reviewed)
	}
}

func TestStoreSenderWeightLifecycle(t *testing.T) {
	s := NewStore(config.Default().Scoring)
	ctx := context.Background()
	s.SeedSenderStats(domain.SenderStats{
		UserID: "u1", SenderEmail: "boss@corp.example.com",
		TotalMessages: 10, Responded: 6, ImportanceWeight: 0.8,
	})

	h, err := s.SenderHistory(ctx, "u1", "boss@corp.example.com")
	if err != nil {
		t.Fatalf("SenderHistory() error: %v", err)
	}
	if !h.HasPrior || h.ImportanceScore != 0.8 {
		t.Errorf("seeded prior missing: %+v", h)
	}

	if err := s.UpdateSenderWeight(ctx, "u1", "boss@corp.example.com", 0.3); err != nil {
		t.Fatalf("UpdateSenderWeight() error: %v", err)
	}
	h, _ = s.SenderHistory(ctx, "u1", "boss@corp.example.com")
	if h.ImportanceScore != 0.3 {
		t.Errorf("weight update not visible: %+v", h)
	}

	// An explicit edit to 0 keeps the prior; only a reset clears it.
	if err := s.UpdateSenderWeight(ctx, "u1", "boss@corp.example.com", 0); err != nil {
		t.Fatalf("UpdateSenderWeight() error: %v", err)
	}
	h, _ = s.SenderHistory(ctx, "u1", "boss@corp.example.com")
	if !h.HasPrior || h.ImportanceScore != 0 {
		t.Errorf("explicit zero weight should remain a prior: %+v", h)
	}

	s.ResetSenderWeight(ctx, "u1", "boss@corp.example.com")
	h, _ = s.SenderHistory(ctx, "u1", "boss@corp.example.com")
	if h.HasPrior {
		t.Errorf("reset should clear the prior: %+v", h)
	}
}
