package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/astraid/intervox-backend/internal/model"
	"github.com/astraid/intervox-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memInterviewStore mimics the postgres repository including the version
// compare-and-swap, so the service's conflict retry paths are exercised
// for real.
type memInterviewStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Interview

	createErr error
	failNext  int
}

func newMemInterviewStore() *memInterviewStore {
	return &memInterviewStore{rows: map[uuid.UUID]model.Interview{}}
}

func (m *memInterviewStore) Create(ctx context.Context, iv *model.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		return err
	}
	if iv.SessionCode != nil {
		for _, row := range m.rows {
			if row.SessionCode != nil && *row.SessionCode == *iv.SessionCode &&
				(row.Status == model.StatusWaiting || row.Status == model.StatusInitializing) {
				return repository.ErrCodeTaken
			}
		}
	}
	iv.ID = uuid.New()
	iv.CreatedAt = time.Now()
	iv.Version = 1
	m.rows[iv.ID] = cloneInterview(*iv)
	return nil
}

func (m *memInterviewStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneInterview(row)
	return &out, nil
}

func (m *memInterviewStore) GetBySessionCode(ctx context.Context, code string) (*model.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *model.Interview
	for _, row := range m.rows {
		if row.SessionCode == nil || *row.SessionCode != code {
			continue
		}
		if row.Status != model.StatusWaiting && row.Status != model.StatusInitializing {
			continue
		}
		if found == nil || row.CreatedAt.After(found.CreatedAt) {
			out := cloneInterview(row)
			found = &out
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (m *memInterviewStore) Update(ctx context.Context, iv *model.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return repository.ErrVersionConflict
	}
	row, ok := m.rows[iv.ID]
	if !ok || row.Version != iv.Version {
		return repository.ErrVersionConflict
	}
	iv.Version++
	m.rows[iv.ID] = cloneInterview(*iv)
	return nil
}

func (m *memInterviewStore) ListCompletedByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Interview
	for _, row := range m.rows {
		if row.Status == model.StatusCompleted && row.CandidateID != nil && *row.CandidateID == candidateID {
			out = append(out, cloneInterview(row))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(*out[j].CompletedAt)
	})
	return out, nil
}

func (m *memInterviewStore) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = map[uuid.UUID]model.Interview{}
	return nil
}

func cloneInterview(iv model.Interview) model.Interview {
	qs := make([]model.QuestionRecord, len(iv.Questions))
	copy(qs, iv.Questions)
	iv.Questions = qs
	return iv
}

type memCandidateStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Candidate
}

func newMemCandidateStore() *memCandidateStore {
	return &memCandidateStore{rows: map[uuid.UUID]model.Candidate{}}
}

func (m *memCandidateStore) GetByEmail(ctx context.Context, email string) (*model.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == email {
			out := row
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCandidateStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := row
	return &out, nil
}

func (m *memCandidateStore) Create(ctx context.Context, c *model.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	m.rows[c.ID] = *c
	return nil
}

func (m *memCandidateStore) Update(ctx context.Context, c *model.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[c.ID]; !ok {
		return repository.ErrNotFound
	}
	m.rows[c.ID] = *c
	return nil
}

func (m *memCandidateStore) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = map[uuid.UUID]model.Candidate{}
	return nil
}

type fakeGenerator struct {
	questions []string
	err       error
	calls     int
}

func (f *fakeGenerator) Generate(ctx context.Context, cfg model.InterviewConfig) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type memQueue struct {
	mu    sync.Mutex
	tasks []EvaluationTask
	err   error
}

func (m *memQueue) Enqueue(ctx context.Context, task EvaluationTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *memQueue) Purge(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = nil
	return nil
}

func (m *memQueue) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

type memNotifier struct {
	mu    sync.Mutex
	count int
}

func (m *memNotifier) NotifyStateChange(ctx context.Context, interviewID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
}

type fixture struct {
	store      *memInterviewStore
	candidates *memCandidateStore
	generator  *fakeGenerator
	queue      *memQueue
	notifier   *memNotifier
	candSvc    *CandidateService
	svc        *InterviewService
}

func newFixture() *fixture {
	f := &fixture{
		store:      newMemInterviewStore(),
		candidates: newMemCandidateStore(),
		generator:  &fakeGenerator{questions: []string{"Q1", "Q2", "Q3"}},
		queue:      &memQueue{},
		notifier:   &memNotifier{},
	}
	log := zerolog.Nop()
	f.candSvc = NewCandidateService(f.candidates, f.store, log)
	f.svc = NewInterviewService(f.store, f.candSvc, f.generator, f.queue, f.notifier, log)
	return f
}

// startActive drives a fresh session through connect so tests can start
// from an active state.
func (f *fixture) startActive(t *testing.T) *model.Interview {
	t.Helper()
	ctx := context.Background()
	iv, err := f.svc.Create(ctx)
	require.NoError(t, err)
	active, err := f.svc.Connect(ctx, *iv.SessionCode)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, active.Status)
	return active
}

func TestCreateInterview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	iv, err := f.svc.Create(ctx)
	require.NoError(t, err)
	require.NotNil(t, iv.SessionCode)
	assert.Len(t, *iv.SessionCode, 4)
	assert.Equal(t, model.StatusWaiting, iv.Status)
	assert.Empty(t, iv.Questions)
	assert.Equal(t, 0, iv.CurrentQuestionIndex)
}

func TestCreateRetriesOnCodeCollision(t *testing.T) {
	f := newFixture()
	f.store.createErr = repository.ErrCodeTaken
	ctx := context.Background()

	iv, err := f.svc.Create(ctx)
	require.NoError(t, err)
	assert.NotNil(t, iv.SessionCode)
}

func TestConnectActivatesSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	iv, err := f.svc.Create(ctx)
	require.NoError(t, err)

	active, err := f.svc.Connect(ctx, *iv.SessionCode)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, active.Status)
	assert.Equal(t, 0, active.CurrentQuestionIndex)
	require.Len(t, active.Questions, 3)
	assert.Equal(t, "Q1", active.Questions[0].Question)
	assert.Nil(t, active.Questions[0].Score)
}

func TestConnectUnknownCode(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Connect(context.Background(), "0000")
	assert.ErrorIs(t, err, ErrInvalidSessionCode)
}

func TestConnectCodeIsSingleUse(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	iv, err := f.svc.Create(ctx)
	require.NoError(t, err)
	code := *iv.SessionCode

	_, err = f.svc.Connect(ctx, code)
	require.NoError(t, err)

	_, err = f.svc.Connect(ctx, code)
	assert.ErrorIs(t, err, ErrInvalidSessionCode)
}

func TestConnectRetriesAfterGenerationFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	iv, err := f.svc.Create(ctx)
	require.NoError(t, err)
	code := *iv.SessionCode

	f.generator.err = errors.New("backend down")
	_, err = f.svc.Connect(ctx, code)
	require.Error(t, err)

	stuck, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInitializing, stuck.Status)
	assert.Empty(t, stuck.Questions)

	f.generator.err = nil
	active, err := f.svc.Connect(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, active.Status)
	assert.Len(t, active.Questions, 3)
}

func TestSaveUserInfoLinksCandidate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	iv, err := f.svc.Create(ctx)
	require.NoError(t, err)

	info := model.UserInfo{"email": "jo@example.com", "username": "Jo", "age": "29"}
	cfg := &model.InterviewConfig{Topic: "Go backend", NumberOfQuestions: 3}

	candID, err := f.svc.SaveUserInfo(ctx, iv.ID, info, cfg)
	require.NoError(t, err)
	require.NotNil(t, candID)

	stored, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", stored.UserInfo.Email())
	require.NotNil(t, stored.InterviewConfig)
	assert.Equal(t, "Go backend", stored.InterviewConfig.Topic)
	require.NotNil(t, stored.CandidateID)
	assert.Equal(t, *candID, *stored.CandidateID)

	cand, err := f.candidates.GetByID(ctx, *candID)
	require.NoError(t, err)
	assert.Equal(t, "Jo", cand.Username)
	require.NotNil(t, cand.Age)
	assert.Equal(t, 29, *cand.Age)
}

func TestSaveUserInfoIsFrozenAfterLink(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	iv, err := f.svc.Create(ctx)
	require.NoError(t, err)

	first, err := f.svc.SaveUserInfo(ctx, iv.ID, model.UserInfo{"email": "a@example.com"}, nil)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := f.svc.SaveUserInfo(ctx, iv.ID, model.UserInfo{"email": "b@example.com"}, nil)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)

	stored, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", stored.UserInfo.Email())
}

func TestSaveUserInfoAnonymousUsername(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	iv, err := f.svc.Create(ctx)
	require.NoError(t, err)

	candID, err := f.svc.SaveUserInfo(ctx, iv.ID, model.UserInfo{"email": "no-name@example.com"}, nil)
	require.NoError(t, err)
	require.NotNil(t, candID)

	cand, err := f.candidates.GetByID(ctx, *candID)
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", cand.Username)
}

func TestSaveUserInfoWithoutEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	iv, err := f.svc.Create(ctx)
	require.NoError(t, err)

	candID, err := f.svc.SaveUserInfo(ctx, iv.ID, model.UserInfo{"username": "Ghost"}, nil)
	require.NoError(t, err)
	assert.Nil(t, candID)
}

func TestUpdateDraftAnswer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	iv := f.startActive(t)

	require.NoError(t, f.svc.UpdateDraftAnswer(ctx, iv.ID, "partial ans"))
	require.NoError(t, f.svc.UpdateDraftAnswer(ctx, iv.ID, "partial answer"))
	// Repeating the same text must not bump the version.
	require.NoError(t, f.svc.UpdateDraftAnswer(ctx, iv.ID, "partial answer"))

	stored, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, "partial answer", stored.Questions[0].UserAnswer)
	assert.Equal(t, 0, f.queue.len())
}

func TestSubmitAnswerDispatchesEvaluation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	iv := f.startActive(t)

	answer := "channels and goroutines"
	require.NoError(t, f.svc.SubmitAnswer(ctx, iv.ID, &answer))

	require.Equal(t, 1, f.queue.len())
	task := f.queue.tasks[0]
	assert.Equal(t, iv.ID, task.InterviewID)
	assert.Equal(t, 0, task.QuestionIndex)
	assert.Equal(t, "Q1", task.Question)
	assert.Equal(t, answer, task.Answer)

	stored, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	assert.True(t, stored.Questions[0].EvaluationPending)
	// The index only moves when the evaluation lands.
	assert.Equal(t, 0, stored.CurrentQuestionIndex)
}

func TestSubmitAnswerUsesDraftWhenNil(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	iv := f.startActive(t)

	require.NoError(t, f.svc.UpdateDraftAnswer(ctx, iv.ID, "drafted"))
	require.NoError(t, f.svc.SubmitAnswer(ctx, iv.ID, nil))

	require.Equal(t, 1, f.queue.len())
	assert.Equal(t, "drafted", f.queue.tasks[0].Answer)
}

func TestSubmitAnswerSuppressesDuplicateDispatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	iv := f.startActive(t)

	first := "first"
	require.NoError(t, f.svc.SubmitAnswer(ctx, iv.ID, &first))
	second := "second"
	require.NoError(t, f.svc.SubmitAnswer(ctx, iv.ID, &second))

	// The re-submit updates the text but no second task is dispatched.
	assert.Equal(t, 1, f.queue.len())
	stored, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", stored.Questions[0].UserAnswer)
}

func TestApplyEvaluationAdvancesIndex(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	iv := f.startActive(t)

	ans := "a"
	require.NoError(t, f.svc.SubmitAnswer(ctx, iv.ID, &ans))
	require.NoError(t, f.svc.ApplyEvaluation(ctx, iv.ID, 0, 8, "solid"))

	stored, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Questions[0].Score)
	assert.Equal(t, 8.0, *stored.Questions[0].Score)
	require.NotNil(t, stored.Questions[0].Feedback)
	assert.Equal(t, "solid", *stored.Questions[0].Feedback)
	assert.False(t, stored.Questions[0].EvaluationPending)
	assert.Equal(t, 1, stored.CurrentQuestionIndex)
	assert.Equal(t, model.StatusActive, stored.Status)
}

func TestApplyEvaluationIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	iv := f.startActive(t)

	ans := "a"
	require.NoError(t, f.svc.SubmitAnswer(ctx, iv.ID, &ans))
	require.NoError(t, f.svc.ApplyEvaluation(ctx, iv.ID, 0, 8, "solid"))
	// Redelivery of the same result must not overwrite or re-advance.
	require.NoError(t, f.svc.ApplyEvaluation(ctx, iv.ID, 0, 3, "other"))

	stored, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, *stored.Questions[0].Score)
	assert.Equal(t, 1, stored.CurrentQuestionIndex)
}

func TestApplyEvaluationRejectsOutOfRangeIndex(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	iv := f.startActive(t)

	// A corrupt task must surface an error so the consumer can stop
	// redelivering it, not silently succeed.
	require.Error(t, f.svc.ApplyEvaluation(ctx, iv.ID, 7, 5, "fb"))
	require.Error(t, f.svc.ApplyEvaluation(ctx, iv.ID, -1, 5, "fb"))

	stored, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentQuestionIndex)
	assert.Equal(t, model.StatusActive, stored.Status)
}

func TestLastEvaluationCompletesInterview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	iv := f.startActive(t)

	scores := []float64{6, 7, 9}
	for i, score := range scores {
		ans := "answer"
		require.NoError(t, f.svc.SubmitAnswer(ctx, iv.ID, &ans))
		require.NoError(t, f.svc.ApplyEvaluation(ctx, iv.ID, i, score, "fb"))
	}

	stored, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	assert.Equal(t, 3, stored.CurrentQuestionIndex)
	require.NotNil(t, stored.TotalScore)
	assert.Equal(t, 22.0, *stored.TotalScore)
	assert.NotNil(t, stored.CompletedAt)

	// Terminal sessions reject further mutations.
	ans := "late"
	assert.ErrorIs(t, f.svc.SubmitAnswer(ctx, iv.ID, &ans), ErrInterviewCompleted)
	assert.ErrorIs(t, f.svc.AdvanceQuestion(ctx, iv.ID, 2), ErrInterviewCompleted)
}

func TestCompletionUpdatesCandidateStatistics(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	iv, err := f.svc.Create(ctx)
	require.NoError(t, err)
	candID, err := f.svc.SaveUserInfo(ctx, iv.ID, model.UserInfo{"email": "stat@example.com"}, nil)
	require.NoError(t, err)
	require.NotNil(t, candID)

	_, err = f.svc.Connect(ctx, *iv.SessionCode)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ans := "answer"
		require.NoError(t, f.svc.SubmitAnswer(ctx, iv.ID, &ans))
		require.NoError(t, f.svc.ApplyEvaluation(ctx, iv.ID, i, 5, "fb"))
	}

	cand, err := f.candidates.GetByID(ctx, *candID)
	require.NoError(t, err)
	assert.Equal(t, 1, cand.TotalInterviews)
	require.NotNil(t, cand.AverageScore)
	assert.Equal(t, 15.0, *cand.AverageScore)

	// Redelivering the final evaluation must not double-count.
	require.NoError(t, f.svc.ApplyEvaluation(ctx, iv.ID, 2, 5, "fb"))
	cand, err = f.candidates.GetByID(ctx, *candID)
	require.NoError(t, err)
	assert.Equal(t, 1, cand.TotalInterviews)
	assert.Equal(t, 15.0, *cand.AverageScore)
}

func TestAdvanceQuestionGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	iv := f.startActive(t)

	require.NoError(t, f.svc.AdvanceQuestion(ctx, iv.ID, 2))
	stored, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentQuestionIndex)

	assert.ErrorIs(t, f.svc.AdvanceQuestion(ctx, iv.ID, 1), ErrInvalidTransition)
	assert.ErrorIs(t, f.svc.AdvanceQuestion(ctx, iv.ID, 3), ErrInvalidTransition)
	require.NoError(t, f.svc.AdvanceQuestion(ctx, iv.ID, 2))
}

func TestConnectRetriesClaimOnVersionConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	iv, err := f.svc.Create(ctx)
	require.NoError(t, err)

	// A concurrent writer (such as a user-info save) bumping the version
	// while the session is still waiting must not be mistaken for a
	// competing peer: the claim re-reads and re-validates.
	f.store.failNext = 1
	active, err := f.svc.Connect(ctx, *iv.SessionCode)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, active.Status)
	require.Len(t, active.Questions, 3)
}

func TestUpdateRetriesOnVersionConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	iv := f.startActive(t)

	f.store.failNext = 2
	require.NoError(t, f.svc.UpdateDraftAnswer(ctx, iv.ID, "retried"))

	stored, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, "retried", stored.Questions[0].UserAnswer)
}

func TestSubmitAnswerEnqueueFailureKeepsPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	iv := f.startActive(t)

	f.queue.err = errors.New("redis down")
	ans := "a"
	require.Error(t, f.svc.SubmitAnswer(ctx, iv.ID, &ans))

	stored, err := f.svc.GetState(ctx, iv.ID)
	require.NoError(t, err)
	assert.True(t, stored.Questions[0].EvaluationPending)

	// Advance is the escape path past a stuck evaluation.
	require.NoError(t, f.svc.AdvanceQuestion(ctx, iv.ID, 1))
}
