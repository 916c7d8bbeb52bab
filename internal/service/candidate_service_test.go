package service

import (
	"context"
	"testing"
	"time"

	"github.com/astraid/intervox-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCompleted(t *testing.T, store *memInterviewStore, candidateID uuid.UUID, score float64, completedAt time.Time, questions int) uuid.UUID {
	t.Helper()
	iv := &model.Interview{Status: model.StatusWaiting, Questions: []model.QuestionRecord{}}
	require.NoError(t, store.Create(context.Background(), iv))

	qs := make([]model.QuestionRecord, questions)
	for i := range qs {
		s := score / float64(questions)
		qs[i] = model.QuestionRecord{Question: "q", UserAnswer: "a", Score: &s}
	}
	iv.Status = model.StatusCompleted
	iv.Questions = qs
	iv.CurrentQuestionIndex = questions
	iv.TotalScore = &score
	iv.CompletedAt = &completedAt
	iv.CandidateID = &candidateID
	require.NoError(t, store.Update(context.Background(), iv))
	return iv.ID
}

func TestGetOrCreateRefreshesProfile(t *testing.T) {
	store := newMemInterviewStore()
	candidates := newMemCandidateStore()
	svc := NewCandidateService(candidates, store, zerolog.Nop())
	ctx := context.Background()

	age := 31
	cand, err := svc.GetOrCreate(ctx, "x@example.com", "X", &age)
	require.NoError(t, err)
	assert.Equal(t, 0, cand.TotalInterviews)
	assert.Nil(t, cand.AverageScore)

	newAge := 32
	again, err := svc.GetOrCreate(ctx, "x@example.com", "Xavier", &newAge)
	require.NoError(t, err)
	assert.Equal(t, cand.ID, again.ID)
	assert.Equal(t, "Xavier", again.Username)
	require.NotNil(t, again.Age)
	assert.Equal(t, 32, *again.Age)
}

func TestRecordCompletionRecomputesAggregates(t *testing.T) {
	store := newMemInterviewStore()
	candidates := newMemCandidateStore()
	svc := NewCandidateService(candidates, store, zerolog.Nop())
	ctx := context.Background()

	cand, err := svc.GetOrCreate(ctx, "agg@example.com", "Agg", nil)
	require.NoError(t, err)

	now := time.Now()
	seedCompleted(t, store, cand.ID, 30, now.Add(-2*time.Hour), 5)
	seedCompleted(t, store, cand.ID, 40, now.Add(-time.Hour), 5)
	// The finishing session is already persisted as completed when the
	// statistics update runs; it must not be counted twice.
	finishing := seedCompleted(t, store, cand.ID, 35, now, 5)

	require.NoError(t, svc.RecordCompletion(ctx, cand.ID, finishing, 35))

	updated, err := candidates.GetByID(ctx, cand.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.TotalInterviews)
	require.NotNil(t, updated.AverageScore)
	assert.Equal(t, 35.0, *updated.AverageScore)
	assert.NotNil(t, updated.LastInterviewDate)
}

func TestRecordCompletionUnknownCandidate(t *testing.T) {
	svc := NewCandidateService(newMemCandidateStore(), newMemInterviewStore(), zerolog.Nop())
	err := svc.RecordCompletion(context.Background(), uuid.New(), uuid.New(), 10)
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestGetHistoryNewestFirst(t *testing.T) {
	store := newMemInterviewStore()
	candidates := newMemCandidateStore()
	svc := NewCandidateService(candidates, store, zerolog.Nop())
	ctx := context.Background()

	cand, err := svc.GetOrCreate(ctx, "hist@example.com", "Hist", nil)
	require.NoError(t, err)

	now := time.Now()
	seedCompleted(t, store, cand.ID, 20, now.Add(-time.Hour), 4)
	seedCompleted(t, store, cand.ID, 28, now, 5)

	history, err := svc.GetHistory(ctx, "hist@example.com")
	require.NoError(t, err)
	require.NotNil(t, history.Candidate)
	require.Len(t, history.Interviews, 2)
	assert.Equal(t, 28.0, history.Interviews[0].Score)
	assert.Equal(t, 5, history.Interviews[0].Questions)
	assert.Equal(t, 20.0, history.Interviews[1].Score)
	assert.True(t, history.Interviews[0].Date.After(history.Interviews[1].Date))
}

func TestGetHistoryUnknownEmail(t *testing.T) {
	svc := NewCandidateService(newMemCandidateStore(), newMemInterviewStore(), zerolog.Nop())
	_, err := svc.GetHistory(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestWipeAll(t *testing.T) {
	store := newMemInterviewStore()
	candidates := newMemCandidateStore()
	queue := &memQueue{}
	candSvc := NewCandidateService(candidates, store, zerolog.Nop())
	admin := NewAdminService(store, candidates, queue, zerolog.Nop())
	ctx := context.Background()

	cand, err := candSvc.GetOrCreate(ctx, "wipe@example.com", "W", nil)
	require.NoError(t, err)
	seedCompleted(t, store, cand.ID, 10, time.Now(), 2)
	require.NoError(t, queue.Enqueue(ctx, EvaluationTask{InterviewID: uuid.New()}))

	require.NoError(t, admin.WipeAll(ctx))

	_, err = candidates.GetByEmail(ctx, "wipe@example.com")
	assert.Error(t, err)
	listed, err := store.ListCompletedByCandidate(ctx, cand.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Equal(t, 0, queue.len())
}
