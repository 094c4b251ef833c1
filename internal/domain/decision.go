package domain

import (
	"errors"
	"time"
)

// DecisionType enumerates the kinds of automated judgments the engine records.
type DecisionType string

const (
	DecisionImportanceScoring  DecisionType = "importance_scoring"
	DecisionCategoryAssignment DecisionType = "category_assignment"
	DecisionSuggestedAction    DecisionType = "suggested_action"
	DecisionAutoArchive        DecisionType = "auto_archive"
	DecisionAutoStar           DecisionType = "auto_star"
	DecisionPriorityRanking    DecisionType = "priority_ranking"
)

// Valid reports whether t is a known decision type.
func (t DecisionType) Valid() bool {
	switch t {
	case DecisionImportanceScoring, DecisionCategoryAssignment, DecisionSuggestedAction,
		DecisionAutoArchive, DecisionAutoStar, DecisionPriorityRanking:
		return true
	}
	return false
}

// DecisionStatus is the lifecycle state of a recorded decision.
//
// SUGGESTED, HANDLED and YOUR_CALL are assigned at creation, purely as a
// function of confidence. USER_APPROVED and USER_CORRECTED are terminal and
// reachable only through a one-time review.
type DecisionStatus string

const (
	StatusSuggested     DecisionStatus = "suggested"
	StatusHandled       DecisionStatus = "handled"
	StatusYourCall      DecisionStatus = "your_call"
	StatusUserApproved  DecisionStatus = "user_approved"
	StatusUserCorrected DecisionStatus = "user_corrected"
)

// Terminal reports whether the status admits no further transitions.
func (s DecisionStatus) Terminal() bool {
	return s == StatusUserApproved || s == StatusUserCorrected
}

// ErrDecisionDataMismatch is returned when a decision payload doesn't carry
// exactly the schema its decision type requires.
var ErrDecisionDataMismatch = errors.New("decision data does not match decision type")

// ImportanceScoreData is the payload for importance_scoring decisions.
type ImportanceScoreData struct {
	ImportanceScore int             `json:"importance_score"`
	SuggestedAction SuggestedAction `json:"suggested_action,omitempty"`
}

// CategoryAssignmentData is the payload for category_assignment decisions.
type CategoryAssignmentData struct {
	Category Category `json:"category"`
}

// SuggestedActionData is the payload for suggested_action decisions.
type SuggestedActionData struct {
	Action SuggestedAction `json:"action"`
}

// AutoArchiveData is the payload for auto_archive decisions.
type AutoArchiveData struct {
	Archived bool   `json:"archived"`
	Reason   string `json:"reason,omitempty"`
}

// AutoStarData is the payload for auto_star decisions.
type AutoStarData struct {
	Starred bool `json:"starred"`
}

// PriorityRankingData is the payload for priority_ranking decisions.
type PriorityRankingData struct {
	Rank  int `json:"rank"`
	OutOf int `json:"out_of"`
}

// DecisionData is a tagged union keyed by DecisionType: exactly one arm is
// set, and it must match the decision's type. The same shape carries both the
// original decision payload and a user correction.
type DecisionData struct {
	ImportanceScore    *ImportanceScoreData    `json:"importance_scoring,omitempty"`
	CategoryAssignment *CategoryAssignmentData `json:"category_assignment,omitempty"`
	SuggestedAction    *SuggestedActionData    `json:"suggested_action,omitempty"`
	AutoArchive        *AutoArchiveData        `json:"auto_archive,omitempty"`
	AutoStar           *AutoStarData           `json:"auto_star,omitempty"`
	PriorityRanking    *PriorityRankingData    `json:"priority_ranking,omitempty"`
}

// IsZero reports whether no arm of the union is set.
func (d DecisionData) IsZero() bool {
	return d.ImportanceScore == nil && d.CategoryAssignment == nil &&
		d.SuggestedAction == nil && d.AutoArchive == nil &&
		d.AutoStar == nil && d.PriorityRanking == nil
}

// ValidateFor checks that exactly the arm matching t is set.
func (d DecisionData) ValidateFor(t DecisionType) error {
	arms := 0
	var match bool
	if d.ImportanceScore != nil {
		arms++
		match = match || t == DecisionImportanceScoring
	}
	if d.CategoryAssignment != nil {
		arms++
		match = match || t == DecisionCategoryAssignment
	}
	if d.SuggestedAction != nil {
		arms++
		match = match || t == DecisionSuggestedAction
	}
	if d.AutoArchive != nil {
		arms++
		match = match || t == DecisionAutoArchive
	}
	if d.AutoStar != nil {
		arms++
		match = match || t == DecisionAutoStar
	}
	if d.PriorityRanking != nil {
		arms++
		match = match || t == DecisionPriorityRanking
	}
	if arms != 1 || !match {
		return ErrDecisionDataMismatch
	}
	return nil
}

// Score returns the importance score carried by the payload, defaulting to 50
// (neutral) when the payload doesn't carry one. Used by the correction
// pattern miner to compute average adjustments.
func (d DecisionData) Score() float64 {
	if d.ImportanceScore != nil {
		return float64(d.ImportanceScore.ImportanceScore)
	}
	return 50
}

// Decision is one append-only audit record of a single automated judgment.
// Creating a new decision never mutates an earlier one; only the review
// fields (Status, ReviewedAt, Correction, CorrectionReasoning) on the same
// row may be set, exactly once.
type Decision struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	// MessageID and SenderEmail tie the decision back to the message it was
	// made about. SenderEmail is what lets corrected decisions feed sender-
	// matched learning; decisions recorded without it still audit fine but
	// don't contribute learned adjustments.
	MessageID   string `json:"message_id,omitempty" db:"message_id"`
	SenderEmail string `json:"sender_email,omitempty" db:"sender_email"`

	DecisionType DecisionType   `json:"decision_type" db:"decision_type"`
	DecisionData DecisionData   `json:"decision_data" db:"decision_data"`
	Reasoning    string         `json:"reasoning" db:"reasoning"`
	Confidence   float64        `json:"confidence" db:"confidence"`
	Status       DecisionStatus `json:"status" db:"status"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`

	ReviewedAt          *time.Time    `json:"reviewed_at,omitempty" db:"reviewed_at"`
	Correction          *DecisionData `json:"correction,omitempty" db:"correction"`
	CorrectionReasoning string        `json:"correction_reasoning,omitempty" db:"correction_reasoning"`
}

// Reviewed reports whether the decision has been through its one-time review.
func (d Decision) Reviewed() bool {
	return d.ReviewedAt != nil
}
