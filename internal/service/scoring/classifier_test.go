package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/domain"
)

func TestClassifyRelationship(t *testing.T) {
	cfg := config.Default().Scoring

	tests := []struct {
		name string
		h    domain.SenderHistory
		want domain.RelationshipType
	}{
		{"responds often", domain.SenderHistory{TotalMessages: 10, ResponseRate: 0.6}, domain.RelationshipVIP},
		{"vip needs history", domain.SenderHistory{TotalMessages: 2, ResponseRate: 0.9}, domain.RelationshipUnknown},
		{"marked important", domain.SenderHistory{TotalMessages: 5, ImportanceRate: 0.7}, domain.RelationshipImportant},
		{"archived consistently", domain.SenderHistory{TotalMessages: 8, ArchiveRate: 0.8}, domain.RelationshipNoise},
		{"noise needs volume", domain.SenderHistory{TotalMessages: 4, ArchiveRate: 0.9}, domain.RelationshipInformational},
		{"no history", domain.SenderHistory{}, domain.RelationshipUnknown},
		{"responds sometimes", domain.SenderHistory{TotalMessages: 6, ResponseRate: 0.3}, domain.RelationshipOccasional},
		{"reads but never engages", domain.SenderHistory{TotalMessages: 6, ResponseRate: 0.1}, domain.RelationshipInformational},
		// Rule order: vip wins over noise when both match.
		{"responder who also archives", domain.SenderHistory{TotalMessages: 10, ResponseRate: 0.6, ArchiveRate: 0.8}, domain.RelationshipVIP},
		// Boundaries are strict: exactly at the threshold does not qualify.
		{"response rate exactly at threshold", domain.SenderHistory{TotalMessages: 10, ResponseRate: 0.5}, domain.RelationshipOccasional},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRelationship(tt.h, cfg))
		})
	}
}

func TestConfidenceSteps(t *testing.T) {
	steps := map[int]float64{
		0:   0.3,
		1:   0.5,
		2:   0.5,
		3:   0.7,
		9:   0.7,
		10:  0.9,
		500: 0.9,
	}
	for total, want := range steps {
		assert.Equal(t, want, Confidence(total), "total=%d", total)
	}
}

func TestConfidenceMonotonic(t *testing.T) {
	prev := 0.0
	for total := 0; total <= 50; total++ {
		c := Confidence(total)
		assert.GreaterOrEqual(t, c, prev, "confidence dipped at total=%d", total)
		prev = c
	}
}
