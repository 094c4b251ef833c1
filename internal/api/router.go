package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router: health unauthenticated at the root,
// everything else under /api.
func SetupRoutes(h *Handlers, hc *HealthChecker) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", hc.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/score", h.HandleScore)

		r.Route("/decisions", func(r chi.Router) {
			r.Post("/", h.HandleRecordDecision)
			r.Get("/pending", h.HandlePendingDecisions)
			r.Get("/history", h.HandleDecisionHistory)
			r.Get("/accuracy", h.HandleDecisionAccuracy)
			r.Get("/message/{messageID}", h.HandleMessageDecisions)
			r.Post("/{id}/review", h.HandleReviewDecision)
		})

		r.Route("/memory", func(r chi.Router) {
			r.Get("/", h.HandleAllMemories)
			r.Get("/timeline", h.HandleMemoryTimeline)
			r.Get("/influential", h.HandleInfluentialMemories)
			r.Put("/{memoryID}", h.HandleUpdateMemory)
			r.Delete("/{memoryID}", h.HandleDeleteMemory)
		})
	})

	return r
}
