package scoring

import (
	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/domain"
)

// ClassifyRelationship buckets a sender by behavioral history. It is pure
// and deterministic; the rules are evaluated strictly in order, so overlaps
// (a sender who both responds and archives a lot) resolve to the earlier
// rule:
//
//  1. responds often with enough history        → vip
//  2. marked important often with history       → important
//  3. archived consistently with enough volume  → noise
//  4. too little data to say                    → unknown
//  5. responds sometimes                        → occasional
//  6. reads but never engages                   → informational
func ClassifyRelationship(h domain.SenderHistory, cfg config.ScoringConfig) domain.RelationshipType {
	switch {
	case h.ResponseRate > cfg.VIPResponseRate && h.TotalMessages >= cfg.MinMessagesForHistory:
		return domain.RelationshipVIP
	case h.ImportanceRate > cfg.ImportantRate && h.TotalMessages >= cfg.MinMessagesForHistory:
		return domain.RelationshipImportant
	case h.ArchiveRate > cfg.NoiseArchiveRate && h.TotalMessages >= cfg.NoiseMinMessages:
		return domain.RelationshipNoise
	case h.TotalMessages < cfg.MinMessagesForHistory:
		return domain.RelationshipUnknown
	case h.ResponseRate > cfg.OccasionalResponseRate:
		return domain.RelationshipOccasional
	default:
		return domain.RelationshipInformational
	}
}

// Confidence maps history volume to the engine's self-assessed reliability.
// It is a step function of total message count only; it must not be smoothed
// or interpolated, so downstream lifecycle boundaries stay exact.
func Confidence(totalMessages int) float64 {
	switch {
	case totalMessages == 0:
		return 0.3
	case totalMessages < 3:
		return 0.5
	case totalMessages < 10:
		return 0.7
	default:
		return 0.9
	}
}
