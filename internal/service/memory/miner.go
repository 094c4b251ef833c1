package memory

import (
	"sort"
	"strings"
	"time"

	"github.com/ignite/inbox-triage/internal/domain"
)

// MinVisibleCorrections is how many corrections a pattern needs before it
// surfaces as a memory. A single correction is treated as a one-off, not a
// pattern.
const MinVisibleCorrections = 2

// Pattern is one mined correction pattern: a named group of corrections that
// share a theme in the user's stated reasoning.
type Pattern struct {
	Key   string
	Title string
	Count int

	// Score averages across the pattern's corrections. AverageAdjustment is
	// corrected minus original: negative means the user keeps pushing this
	// kind of mail down.
	OriginalAvg       float64
	CorrectedAvg      float64
	AverageAdjustment float64

	LastCorrection time.Time

	// Senders maps sender email to how many of the pattern's corrections it
	// contributed. Used to decide which senders a learned adjustment applies
	// to.
	Senders map[string]int
}

var patternTitles = map[string]string{
	"automated_reports":   "Automated Reports",
	"promotional_content": "Promotional Content",
	"importance_override": "Importance Override",
	"other_corrections":   "Other Corrections",
}

// PatternKey buckets a correction by keywords in the user's reasoning. The
// first matching bucket wins; corrections with no recognizable theme land in
// other_corrections so they still count toward a pattern.
func PatternKey(correctionReasoning string) string {
	r := strings.ToLower(correctionReasoning)
	switch {
	case strings.Contains(r, "automated") || strings.Contains(r, "report"):
		return "automated_reports"
	case strings.Contains(r, "spam") || strings.Contains(r, "promotional"):
		return "promotional_content"
	case strings.Contains(r, "important"):
		return "importance_override"
	default:
		return "other_corrections"
	}
}

// MinePatterns groups corrected decisions into patterns. It includes every
// pattern regardless of count; callers apply the MinVisibleCorrections cut
// where visibility matters. Results are sorted by count descending, then key,
// so output is stable for identical input.
func MinePatterns(corrections []domain.Decision) []*Pattern {
	byKey := make(map[string]*Pattern)
	for _, d := range corrections {
		if d.Correction == nil {
			continue
		}
		key := PatternKey(d.CorrectionReasoning)
		p := byKey[key]
		if p == nil {
			p = &Pattern{Key: key, Title: patternTitles[key], Senders: make(map[string]int)}
			byKey[key] = p
		}
		p.Count++
		p.OriginalAvg += d.DecisionData.Score()
		p.CorrectedAvg += d.Correction.Score()
		if d.SenderEmail != "" {
			p.Senders[d.SenderEmail]++
		}
		if ts := correctionTime(d); ts.After(p.LastCorrection) {
			p.LastCorrection = ts
		}
	}

	patterns := make([]*Pattern, 0, len(byKey))
	for _, p := range byKey {
		p.OriginalAvg /= float64(p.Count)
		p.CorrectedAvg /= float64(p.Count)
		p.AverageAdjustment = p.CorrectedAvg - p.OriginalAvg
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].Key < patterns[j].Key
	})
	return patterns
}

func correctionTime(d domain.Decision) time.Time {
	if d.ReviewedAt != nil {
		return *d.ReviewedAt
	}
	return d.CreatedAt
}
