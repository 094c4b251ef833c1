package domain

import "time"

// RelationshipType classifies a sender's historical engagement with the user.
type RelationshipType string

const (
	RelationshipVIP           RelationshipType = "vip"
	RelationshipImportant     RelationshipType = "important"
	RelationshipOccasional    RelationshipType = "occasional"
	RelationshipInformational RelationshipType = "informational"
	RelationshipNoise         RelationshipType = "noise"
	RelationshipUnknown       RelationshipType = "unknown"
)

// SenderStats holds the raw interaction counters for one (user, sender) pair.
// The counters are owned by the behavior-tracking collaborator; the engine
// only reads them. Rates are always derived on read via History(), never
// stored alongside the counters.
type SenderStats struct {
	UserID            string    `json:"user_id" db:"user_id"`
	SenderEmail       string    `json:"sender_email" db:"sender_email"`
	TotalMessages     int       `json:"total_messages" db:"total_messages"`
	Responded         int       `json:"responded" db:"responded"`
	Archived          int       `json:"archived" db:"archived"`
	Trashed           int       `json:"trashed" db:"trashed"`
	MarkedImportant   int       `json:"marked_important" db:"marked_important"`
	MarkedInteresting int       `json:"marked_interesting" db:"marked_interesting"`
	MarkedUnimportant int       `json:"marked_unimportant" db:"marked_unimportant"`

	// ImportanceWeight is the learned prior for this sender in [0,1].
	// Adjustable through the memory surface; 0.5 is neutral.
	ImportanceWeight float64 `json:"importance_weight" db:"importance_weight"`

	// HasImportancePrior marks that the weight was explicitly set, so an
	// edit down to 0 still reads as a prior instead of "never weighted".
	// Stored as NULL-vs-value on the weight column in postgres.
	HasImportancePrior bool `json:"has_importance_prior,omitempty" db:"-"`

	LastInteraction time.Time `json:"last_interaction" db:"last_interaction"`
}

// SenderHistory is the derived behavioral view of a sender. All rates are in
// [0,1]. A zero-value SenderHistory (TotalMessages == 0) means "no history",
// which is not an error condition anywhere in the engine.
type SenderHistory struct {
	SenderEmail     string    `json:"sender_email"`
	TotalMessages   int       `json:"total_messages"`
	ResponseRate    float64   `json:"response_rate"`
	ArchiveRate     float64   `json:"archive_rate"`
	ImportanceRate  float64   `json:"importance_rate"`
	ImportanceScore float64   `json:"importance_score"` // learned prior, [0,1]
	HasPrior        bool      `json:"has_prior"`
	LastInteraction time.Time `json:"last_interaction"`
}

// BehaviorSummary aggregates consistent user behaviors across senders. It
// feeds the deep-escalation prompt so the reasoning service sees what the
// user reliably does, without shipping raw per-message history.
type BehaviorSummary struct {
	ConsistentArchives []string `json:"consistent_archives"`
	ConsistentOpens    []string `json:"consistent_opens"`
	TotalActions       int      `json:"total_actions_tracked"`
}

// History derives the behavioral rates from the raw counters.
// Rates are computed over all recorded interactions, not TotalMessages,
// so a sender whose mail is never touched stays at zero rates.
func (s SenderStats) History() SenderHistory {
	h := SenderHistory{
		SenderEmail:     s.SenderEmail,
		TotalMessages:   s.TotalMessages,
		ImportanceScore: s.ImportanceWeight,
		HasPrior:        s.HasImportancePrior || s.ImportanceWeight != 0,
		LastInteraction: s.LastInteraction,
	}
	interactions := s.Responded + s.Archived + s.Trashed +
		s.MarkedImportant + s.MarkedInteresting + s.MarkedUnimportant
	if interactions > 0 {
		h.ResponseRate = float64(s.Responded) / float64(interactions)
		h.ArchiveRate = float64(s.Archived) / float64(interactions)
		h.ImportanceRate = float64(s.MarkedImportant) / float64(interactions)
	}
	return h
}
