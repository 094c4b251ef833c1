package rediscache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/domain"
	"github.com/ignite/inbox-triage/internal/repository/inmem"
	"github.com/ignite/inbox-triage/internal/service/memory"
	"github.com/ignite/inbox-triage/internal/service/scoring"
)

type countingProvider struct {
	calls   int
	history domain.SenderHistory
}

func (p *countingProvider) SenderHistory(_ context.Context, _, senderEmail string) (domain.SenderHistory, error) {
	p.calls++
	h := p.history
	h.SenderEmail = senderEmail
	return h, nil
}

func setupCache(t *testing.T, src *countingProvider) (*SenderHistoryCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewSenderHistoryCache(src, client, 60), mr
}

func TestSenderHistoryReadThrough(t *testing.T) {
	src := &countingProvider{history: domain.SenderHistory{TotalMessages: 7, ResponseRate: 0.6, HasPrior: true, ImportanceScore: 0.8}}
	cache, _ := setupCache(t, src)
	ctx := context.Background()

	h1, err := cache.SenderHistory(ctx, "u1", "boss@corp.example.com")
	if err != nil {
		t.Fatalf("SenderHistory() error: %v", err)
	}
	h2, err := cache.SenderHistory(ctx, "u1", "boss@corp.example.com")
	if err != nil {
		t.Fatalf("SenderHistory() error: %v", err)
	}

	if src.calls != 1 {
		t.Errorf("source called %d times, want 1", src.calls)
	}
	if h1 != h2 {
		t.Errorf("cached history diverged: %+v vs %+v", h1, h2)
	}
	if h2.ResponseRate != 0.6 || !h2.HasPrior {
		t.Errorf("history did not round-trip through the cache: %+v", h2)
	}
}

func TestSenderHistoryKeysAreScoped(t *testing.T) {
	src := &countingProvider{history: domain.SenderHistory{TotalMessages: 3}}
	cache, _ := setupCache(t, src)
	ctx := context.Background()

	cache.SenderHistory(ctx, "u1", "a@example.com")
	cache.SenderHistory(ctx, "u2", "a@example.com")
	cache.SenderHistory(ctx, "u1", "b@example.com")

	if src.calls != 3 {
		t.Errorf("source called %d times, want 3 distinct keys", src.calls)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	src := &countingProvider{history: domain.SenderHistory{TotalMessages: 5}}
	cache, _ := setupCache(t, src)
	ctx := context.Background()

	cache.SenderHistory(ctx, "u1", "boss@corp.example.com")
	cache.Invalidate(ctx, "u1", "boss@corp.example.com")
	cache.SenderHistory(ctx, "u1", "boss@corp.example.com")

	if src.calls != 2 {
		t.Errorf("source called %d times, want 2 after invalidate", src.calls)
	}
}

// Deleting or editing a sender memory must change the very next score even
// with the cache in front of the history provider, long before the TTL.
func TestWeightEditTakesEffectThroughCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := config.Default()
	store := inmem.NewStore(cfg.Scoring)
	store.SeedSenderStats(domain.SenderStats{
		UserID: "u1", SenderEmail: "vendor@example.com",
		TotalMessages: 10, Responded: 3, Archived: 6,
		ImportanceWeight: 0.9,
	})

	cache := NewSenderHistoryCache(store, client, 300)
	memSvc := memory.NewService(store, cfg.Scoring)
	memSvc.SetHistoryInvalidator(cache)
	scoreSvc := scoring.NewService(cache, store, store, memSvc, cfg.Scoring)
	ctx := context.Background()

	score := func() int {
		t.Helper()
		r, err := scoreSvc.Score(ctx, "u1", "vendor@example.com", "Monthly invoice", "", domain.PlatformSignals{})
		if err != nil {
			t.Fatalf("Score() error: %v", err)
		}
		return r.ImportanceScore
	}

	// Occasional sender with a 0.9 prior: 50 + 10 + 12, now cached.
	if got := score(); got != 72 {
		t.Fatalf("initial score = %d, want 72", got)
	}

	// An explicit edit to 0 is a minimum prior, not a delete: 50 + 10 - 15.
	w := 0.0
	if err := memSvc.UpdateMemory(ctx, "u1", "sender_vendor@example.com", domain.MemoryUpdate{ImportanceWeight: &w}); err != nil {
		t.Fatalf("UpdateMemory() error: %v", err)
	}
	if got := score(); got != 45 {
		t.Errorf("score after weight edit = %d, want 45", got)
	}

	// Deleting the memory drops the prior entirely: 50 + 10.
	if err := memSvc.DeleteMemory(ctx, "u1", "sender_vendor@example.com"); err != nil {
		t.Fatalf("DeleteMemory() error: %v", err)
	}
	if got := score(); got != 60 {
		t.Errorf("score after memory deletion = %d, want 60", got)
	}
}

func TestExpiredEntryRefetches(t *testing.T) {
	src := &countingProvider{history: domain.SenderHistory{TotalMessages: 5}}
	cache, mr := setupCache(t, src)
	ctx := context.Background()

	cache.SenderHistory(ctx, "u1", "boss@corp.example.com")
	mr.FastForward(cache.ttl)
	cache.SenderHistory(ctx, "u1", "boss@corp.example.com")

	if src.calls != 2 {
		t.Errorf("source called %d times, want 2 after TTL expiry", src.calls)
	}
}
