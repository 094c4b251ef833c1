package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/inbox-triage/internal/api"
	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/pkg/logger"
	"github.com/ignite/inbox-triage/internal/reasoner"
	"github.com/ignite/inbox-triage/internal/repository/inmem"
	"github.com/ignite/inbox-triage/internal/repository/postgres"
	"github.com/ignite/inbox-triage/internal/repository/rediscache"
	"github.com/ignite/inbox-triage/internal/service/decision"
	"github.com/ignite/inbox-triage/internal/service/memory"
	"github.com/ignite/inbox-triage/internal/service/scoring"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies the target port is not already in use, so a
// stale process doesn't silently answer in our place.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

// backends groups the provider and repository implementations selected once
// at startup. There is no per-call fallback between storage backends.
type backends struct {
	history   scoring.SenderHistoryProvider
	trust     scoring.TrustProvider
	users     scoring.UserContextProvider
	behavior  scoring.BehaviorSummaryProvider
	decisions decision.Repository
	memories  memory.Repository
}

func buildPostgresBackends(cfg *config.Config) (backends, *sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Storage.DatabaseURL)
	if err != nil {
		return backends{}, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return backends{}, nil, fmt.Errorf("ping database: %w", err)
	}

	decisionRepo := postgres.NewDecisionRepo(db)
	senderRepo := postgres.NewSenderRepo(db, cfg.Scoring)
	return backends{
		history:   senderRepo,
		trust:     postgres.NewTrustRepo(db),
		users:     postgres.NewProfileRepo(db),
		behavior:  senderRepo,
		decisions: decisionRepo,
		memories:  postgres.NewMemoryRepo(db, decisionRepo, senderRepo),
	}, db, nil
}

func buildMemoryBackends(cfg *config.Config) backends {
	store := inmem.NewStore(cfg.Scoring)
	return backends{
		history:   store,
		trust:     store,
		users:     store,
		behavior:  store,
		decisions: store,
		memories:  store,
	}
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	// Storage backend, selected once.
	var (
		be backends
		db *sql.DB
	)
	switch cfg.Storage.Backend {
	case "postgres":
		be, db, err = buildPostgresBackends(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize postgres storage: %v", err)
		}
		defer db.Close()
		log.Println("[storage] postgres backend")
	default:
		be = buildMemoryBackends(cfg)
		log.Println("[storage] in-memory backend (set DATABASE_URL for postgres)")
	}

	// Optional Redis cache in front of the sender-history provider.
	var (
		redisClient *redis.Client
		histCache   *rediscache.SenderHistoryCache
	)
	if cfg.Redis.Enabled && cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Printf("[redis] unreachable, scoring will hit storage directly: %v", err)
			redisClient.Close()
			redisClient = nil
		} else {
			histCache = rediscache.NewSenderHistoryCache(be.history, redisClient, cfg.Redis.TTLSeconds)
			be.history = histCache
			defer redisClient.Close()
			log.Println("[redis] sender-history cache enabled")
		}
	}

	// Services. The memory service doubles as the correction learner and the
	// learned-adjustment provider, closing the feedback loop. When the cache
	// is up it also invalidates cached histories on weight edits, so deleting
	// a sender memory takes effect on the next score rather than at TTL.
	memSvc := memory.NewService(be.memories, cfg.Scoring)
	if histCache != nil {
		memSvc.SetHistoryInvalidator(histCache)
	}
	decSvc := decision.NewService(be.decisions, cfg.Lifecycle, memSvc)
	scoreSvc := scoring.NewService(be.history, be.trust, be.users, memSvc, cfg.Scoring)

	// Optional deep-escalation path through Bedrock.
	var escalator *scoring.Escalator
	if cfg.Reasoner.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		bedrock, err := reasoner.NewBedrockClient(ctx, cfg.Reasoner)
		cancel()
		if err != nil {
			log.Printf("[reasoner] unavailable, scoring stays composite-only: %v", err)
		} else {
			escalator = scoring.NewEscalator(bedrock, be.users, be.behavior, cfg.Reasoner)
			log.Printf("[reasoner] bedrock escalation enabled (model %s)", cfg.Reasoner.ModelID)
		}
	}

	handlers := api.NewHandlers(scoreSvc, escalator, decSvc, memSvc)
	healthChecker := api.NewHealthChecker(db, redisClient)
	server := api.NewServer(cfg.Server, handlers, healthChecker)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	addr := fmt.Sprintf("%s:%d", host, port)
	go func() {
		log.Printf("inbox-triage listening on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
