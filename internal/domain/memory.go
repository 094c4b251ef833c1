package domain

import "time"

// MemoryType categorizes what a learned memory was derived from.
type MemoryType string

const (
	MemorySenderPattern      MemoryType = "sender_pattern"
	MemoryCorrectionPattern  MemoryType = "correction_pattern"
	MemoryBehaviorPattern    MemoryType = "behavior_pattern"
	MemoryCategoryPreference MemoryType = "category_preference"
)

// Memory is one inspectable, user-controllable piece of learned state.
//
// Sender memories carry ImportanceWeight/InteractionCount; correction
// memories carry the pattern fields. A correction pattern only becomes a
// visible memory once it has at least two corrections behind it.
type Memory struct {
	ID         string     `json:"memory_id"`
	UserID     string     `json:"-"`
	Type       MemoryType `json:"memory_type"`

	// Sender pattern fields.
	SenderEmail      string  `json:"sender_email,omitempty"`
	ImportanceWeight float64 `json:"importance_score,omitempty"`
	InteractionCount int     `json:"interaction_count,omitempty"`

	// Correction pattern fields.
	PatternName       string  `json:"pattern_name,omitempty"`
	PatternKey        string  `json:"pattern_key,omitempty"`
	CorrectionCount   int     `json:"correction_count,omitempty"`
	AverageAdjustment float64 `json:"average_adjustment,omitempty"`
	OriginalScoreAvg  float64 `json:"original_score_avg,omitempty"`
	CorrectedScoreAvg float64 `json:"corrected_score_avg,omitempty"`

	Reasoning      string     `json:"reasoning"`
	LearnedFrom    string     `json:"learned_from"`
	LastReinforced *time.Time `json:"last_correction,omitempty"`
	Editable       bool       `json:"editable"`
	Deletable      bool       `json:"deletable"`
}

// MemoryUpdate holds the user-adjustable fields of a memory. Nil fields are
// left unchanged.
type MemoryUpdate struct {
	ImportanceWeight *float64 `json:"importance_score,omitempty"`
	WeightOverride   *float64 `json:"weight_override,omitempty"`
}

// TimelineEvent is one entry in the learning timeline: a moment where a user
// correction significantly reshaped what the engine believes.
type TimelineEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	Reasoning   string    `json:"reasoning,omitempty"`
	Impact      string    `json:"impact"`
}
