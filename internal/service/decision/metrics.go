package decision

import (
	"context"
	"fmt"

	"github.com/ignite/inbox-triage/internal/domain"
)

// CalibrationBucket summarizes review outcomes for one confidence band.
type CalibrationBucket struct {
	Count    int     `json:"count"`
	Approved int     `json:"approved"`
	Rate     float64 `json:"rate"`
}

// AccuracyMetrics reports how often the user agreed with the engine inside a
// window, split by the same confidence bands that drive the lifecycle. A
// well-calibrated engine shows a higher approval rate in the high band than
// in the low one.
type AccuracyMetrics struct {
	Total         int     `json:"total_decisions"`
	Approved      int     `json:"user_approved"`
	Corrected     int     `json:"user_corrected"`
	ApprovalRate  float64 `json:"approval_rate"`
	AvgConfidence float64 `json:"avg_confidence"`

	High   CalibrationBucket `json:"high_confidence"`
	Medium CalibrationBucket `json:"medium_confidence"`
	Low    CalibrationBucket `json:"low_confidence"`

	// Message is the "no data yet" sentinel: set when Total == 0, which is
	// an empty result, not an error.
	Message string `json:"message,omitempty"`
}

// Accuracy computes approval-rate and confidence-calibration statistics over
// the reviewed decisions in the window.
func (s *Service) Accuracy(ctx context.Context, userID string, decisionType domain.DecisionType, days int) (AccuracyMetrics, error) {
	if days <= 0 {
		days = 30
	}
	f := HistoryFilter{
		DecisionType: decisionType,
		Since:        s.now().UTC().AddDate(0, 0, -days),
		OnlyReviewed: true,
	}
	decisions, err := s.repo.History(ctx, userID, f)
	if err != nil {
		return AccuracyMetrics{}, fmt.Errorf("%w: accuracy query: %v", ErrInternal, err)
	}

	if len(decisions) == 0 {
		return AccuracyMetrics{Message: "no reviewed decisions yet"}, nil
	}

	var m AccuracyMetrics
	var confidenceSum float64
	for _, d := range decisions {
		m.Total++
		confidenceSum += d.Confidence
		approved := d.Status == domain.StatusUserApproved
		if approved {
			m.Approved++
		} else if d.Status == domain.StatusUserCorrected {
			m.Corrected++
		}

		bucket := &m.Low
		switch {
		case d.Confidence >= s.lifecycle.HandledConfidence:
			bucket = &m.High
		case d.Confidence >= s.lifecycle.SuggestedConfidence:
			bucket = &m.Medium
		}
		bucket.Count++
		if approved {
			bucket.Approved++
		}
	}

	m.ApprovalRate = float64(m.Approved) / float64(m.Total)
	m.AvgConfidence = confidenceSum / float64(m.Total)
	for _, b := range []*CalibrationBucket{&m.High, &m.Medium, &m.Low} {
		if b.Count > 0 {
			b.Rate = float64(b.Approved) / float64(b.Count)
		}
	}
	return m, nil
}
