package decision

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/inbox-triage/internal/config"
	"github.com/ignite/inbox-triage/internal/domain"
)

type fakeRepo struct {
	rows map[string]*domain.Decision
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[string]*domain.Decision)}
}

func (f *fakeRepo) Insert(_ context.Context, d *domain.Decision) error {
	cp := *d
	f.rows[d.ID] = &cp
	return nil
}

func (f *fakeRepo) Get(_ context.Context, userID, id string) (*domain.Decision, error) {
	d, ok := f.rows[id]
	if !ok || d.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) Pending(_ context.Context, userID string, cutoff time.Time, limit int) ([]domain.Decision, error) {
	var out []domain.Decision
	for _, d := range f.rows {
		if d.UserID != userID {
			continue
		}
		switch d.Status {
		case domain.StatusSuggested, domain.StatusYourCall:
			out = append(out, *d)
		case domain.StatusHandled:
			if !d.CreatedAt.Before(cutoff) {
				out = append(out, *d)
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) Review(_ context.Context, userID, id string, status domain.DecisionStatus, reviewedAt time.Time, correction *domain.DecisionData, correctionReasoning string) error {
	d, ok := f.rows[id]
	if !ok || d.UserID != userID {
		return ErrNotFound
	}
	if d.Status.Terminal() {
		return ErrAlreadyReviewed
	}
	d.Status = status
	t := reviewedAt
	d.ReviewedAt = &t
	d.Correction = correction
	d.CorrectionReasoning = correctionReasoning
	return nil
}

func (f *fakeRepo) History(_ context.Context, userID string, hf HistoryFilter) ([]domain.Decision, error) {
	var out []domain.Decision
	for _, d := range f.rows {
		if d.UserID != userID {
			continue
		}
		if hf.OnlyReviewed && d.ReviewedAt == nil {
			continue
		}
		if hf.DecisionType != "" && d.DecisionType != hf.DecisionType {
			continue
		}
		if !hf.Since.IsZero() && d.CreatedAt.Before(hf.Since) {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

type recordingLearner struct {
	learned []domain.Decision
}

func (l *recordingLearner) LearnFromCorrection(_ context.Context, d domain.Decision) {
	l.learned = append(l.learned, d)
}

func newTestService(repo Repository, learner Learner) *Service {
	svc := NewService(repo, config.Default().Lifecycle, learner)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func scoreData(score int) domain.DecisionData {
	return domain.DecisionData{
		ImportanceScore: &domain.ImportanceScoreData{ImportanceScore: score},
	}
}

func TestRecordAssignsStatusFromConfidence(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	cases := []struct {
		confidence float64
		want       domain.DecisionStatus
	}{
		{0.9, domain.StatusHandled},
		{0.95, domain.StatusHandled},
		{0.899999, domain.StatusSuggested},
		{0.6, domain.StatusSuggested},
		{0.599999, domain.StatusYourCall},
		{0.3, domain.StatusYourCall},
		{0, domain.StatusYourCall},
	}
	for _, tc := range cases {
		id, err := svc.Record(ctx, "u1", domain.DecisionImportanceScoring, scoreData(60), "r", tc.confidence, "m1")
		require.NoError(t, err, "confidence %v", tc.confidence)
		assert.Equal(t, tc.want, repo.rows[id].Status, "confidence %v", tc.confidence)
	}
}

func TestRecordValidation(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	ctx := context.Background()

	_, err := svc.Record(ctx, "", domain.DecisionImportanceScoring, scoreData(60), "r", 0.5, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Record(ctx, "u1", "guessing", scoreData(60), "r", 0.5, "")
	assert.ErrorIs(t, err, ErrValidation)

	// Payload arm must match the decision type.
	_, err = svc.Record(ctx, "u1", domain.DecisionAutoArchive, scoreData(60), "r", 0.5, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Record(ctx, "u1", domain.DecisionImportanceScoring, domain.DecisionData{}, "r", 0.5, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordClampsConfidence(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)

	id, err := svc.Record(context.Background(), "u1", domain.DecisionImportanceScoring, scoreData(60), "r", 1.7, "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, repo.rows[id].Confidence)
	assert.Equal(t, domain.StatusHandled, repo.rows[id].Status)
}

func TestRecordAppendsNeverMutates(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	id1, _ := svc.Record(ctx, "u1", domain.DecisionImportanceScoring, scoreData(60), "r", 0.5, "m1")
	id2, _ := svc.Record(ctx, "u1", domain.DecisionImportanceScoring, scoreData(80), "r", 0.5, "m1")

	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 60, repo.rows[id1].DecisionData.ImportanceScore.ImportanceScore)
	assert.Equal(t, 80, repo.rows[id2].DecisionData.ImportanceScore.ImportanceScore)
}

func TestReviewApprove(t *testing.T) {
	repo := newFakeRepo()
	learner := &recordingLearner{}
	svc := newTestService(repo, learner)
	ctx := context.Background()

	id, _ := svc.Record(ctx, "u1", domain.DecisionImportanceScoring, scoreData(60), "r", 0.5, "m1")

	require.NoError(t, svc.Review(ctx, id, "u1", true, nil, ""))
	assert.Equal(t, domain.StatusUserApproved, repo.rows[id].Status)
	assert.NotNil(t, repo.rows[id].ReviewedAt)
	assert.Empty(t, learner.learned, "approval must not trigger learning")

	// Reviews are one-time.
	assert.ErrorIs(t, svc.Review(ctx, id, "u1", true, nil, ""), ErrAlreadyReviewed)
}

func TestReviewCorrectionRules(t *testing.T) {
	repo := newFakeRepo()
	learner := &recordingLearner{}
	svc := newTestService(repo, learner)
	ctx := context.Background()

	id, _ := svc.Record(ctx, "u1", domain.DecisionImportanceScoring, scoreData(60), "r", 0.5, "m1")

	// Approval with a correction payload is contradictory.
	corr := scoreData(10)
	err := svc.Review(ctx, id, "u1", true, &corr, "")
	assert.ErrorIs(t, err, ErrValidation)

	// Rejection without a correction payload is incomplete.
	err = svc.Review(ctx, id, "u1", false, nil, "too high")
	assert.ErrorIs(t, err, ErrValidation)

	// Correction payload must match the decision's type.
	wrong := domain.DecisionData{AutoArchive: &domain.AutoArchiveData{Archived: true}}
	err = svc.Review(ctx, id, "u1", false, &wrong, "")
	assert.ErrorIs(t, err, ErrValidation)

	// A proper correction lands and reaches the learner.
	require.NoError(t, svc.Review(ctx, id, "u1", false, &corr, "automated report"))
	assert.Equal(t, domain.StatusUserCorrected, repo.rows[id].Status)
	require.Len(t, learner.learned, 1)
	assert.Equal(t, "automated report", learner.learned[0].CorrectionReasoning)
	assert.Equal(t, 10, learner.learned[0].Correction.ImportanceScore.ImportanceScore)
}

func TestReviewUnknownDecision(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	err := svc.Review(context.Background(), "ghost", "u1", true, nil, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSummarizeGroupsAndRates(t *testing.T) {
	decisions := []domain.Decision{
		{ID: "a", Status: domain.StatusSuggested},
		{ID: "b", Status: domain.StatusYourCall},
		{ID: "c", Status: domain.StatusHandled},
		{ID: "d", Status: domain.StatusUserApproved},
		{ID: "e", Status: domain.StatusUserApproved},
		{ID: "f", Status: domain.StatusUserCorrected},
	}

	sum := Summarize(decisions)
	assert.Len(t, sum.NeedsReview, 2)
	assert.Len(t, sum.RecentlyHandled, 1)
	assert.Equal(t, 6, sum.Totals.Total)
	assert.Equal(t, 2, sum.Totals.NeedsAttention)
	require.NotNil(t, sum.Totals.ApprovalRate)
	assert.InDelta(t, 2.0/3.0, *sum.Totals.ApprovalRate, 1e-9)
}

func TestSummarizeEmptyHasNilRate(t *testing.T) {
	sum := Summarize(nil)
	assert.Nil(t, sum.Totals.ApprovalRate)
	assert.Equal(t, 0, sum.Totals.Total)
}

func TestAccuracyBuckets(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	reviewed := func(confidence float64, approved bool) {
		id, err := svc.Record(ctx, "u1", domain.DecisionImportanceScoring, scoreData(60), "r", confidence, "")
		require.NoError(t, err)
		if approved {
			require.NoError(t, svc.Review(ctx, id, "u1", true, nil, ""))
		} else {
			corr := scoreData(10)
			require.NoError(t, svc.Review(ctx, id, "u1", false, &corr, "too high"))
		}
	}

	reviewed(0.95, true)
	reviewed(0.9, true)
	reviewed(0.7, true)
	reviewed(0.7, false)
	reviewed(0.3, false)

	m, err := svc.Accuracy(ctx, "u1", "", 30)
	require.NoError(t, err)

	assert.Equal(t, 5, m.Total)
	assert.Equal(t, 3, m.Approved)
	assert.Equal(t, 2, m.Corrected)
	assert.InDelta(t, 0.6, m.ApprovalRate, 1e-9)

	assert.Equal(t, 2, m.High.Count)
	assert.InDelta(t, 1.0, m.High.Rate, 1e-9)
	assert.Equal(t, 2, m.Medium.Count)
	assert.InDelta(t, 0.5, m.Medium.Rate, 1e-9)
	assert.Equal(t, 1, m.Low.Count)
	assert.InDelta(t, 0.0, m.Low.Rate, 1e-9)
	assert.Empty(t, m.Message)
}

func TestAccuracyNoData(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	m, err := svc.Accuracy(context.Background(), "u1", "", 30)
	require.NoError(t, err)
	assert.Equal(t, "no reviewed decisions yet", m.Message)
	assert.Zero(t, m.Total)
}
