package domain

import "math"

// SuggestedAction is what the engine recommends doing with a message.
type SuggestedAction string

const (
	ActionReplyNow           SuggestedAction = "reply_now"
	ActionReviewToday        SuggestedAction = "review_today"
	ActionReadLater          SuggestedAction = "read_later"
	ActionArchiveIfNotUrgent SuggestedAction = "archive_if_not_urgent"
	ActionAutoArchive        SuggestedAction = "auto_archive"
	ActionUserDecides        SuggestedAction = "user_decides"
)

// ScoringResult is the output of one scoring call. ImportanceScore is always
// in [0,100] and Confidence in [0,1]; the scorer clamps, it never errors on
// out-of-range inputs. Reasoning is reproducible: same inputs, same string.
type ScoringResult struct {
	ImportanceScore int              `json:"importance_score"`
	Confidence      float64          `json:"confidence"`
	Relationship    RelationshipType `json:"sender_relationship"`
	Reasoning       string           `json:"reasoning"`
	SuggestedAction SuggestedAction  `json:"suggested_action"`

	// Escalated is set when the score was refined by the external reasoning
	// service rather than the composite algorithm alone.
	Escalated bool `json:"escalated,omitempty"`
}

// ClampScore bounds an importance score to [0,100].
func ClampScore(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}

// ClampConfidence bounds a confidence value to [0,1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
