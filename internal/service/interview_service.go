package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/astraid/intervox-backend/internal/model"
	"github.com/astraid/intervox-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// maxUpdateRetries bounds the re-read/re-validate loop on version
	// conflicts before giving up.
	maxUpdateRetries = 5

	// maxCodeAttempts bounds session code regeneration on collisions.
	maxCodeAttempts = 100

	sessionCodeMin  = 1000
	sessionCodeSpan = 9000
)

// InterviewService is the session state machine: it creates sessions,
// validates transitions, applies answer submissions, dispatches scoring,
// and finalizes completion. Every mutation is a guarded compare-and-swap
// patch against the store; version conflicts are retried internally.
type InterviewService struct {
	store      InterviewStore
	candidates *CandidateService
	questions  QuestionGenerator
	queue      EvaluationQueue
	notifier   StateNotifier
	log        zerolog.Logger
}

// NewInterviewService creates a new InterviewService.
func NewInterviewService(
	store InterviewStore,
	candidates *CandidateService,
	questions QuestionGenerator,
	queue EvaluationQueue,
	notifier StateNotifier,
	log zerolog.Logger,
) *InterviewService {
	return &InterviewService{
		store:      store,
		candidates: candidates,
		questions:  questions,
		queue:      queue,
		notifier:   notifier,
		log:        log.With().Str("component", "interview_service").Logger(),
	}
}

// Create allocates a new waiting session with a unique 4-digit code.
// Collisions against not-yet-matched sessions regenerate the code; the
// store's partial unique index backstops the race.
func (s *InterviewService) Create(ctx context.Context) (*model.Interview, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := generateSessionCode()
		iv := &model.Interview{
			SessionCode: &code,
			Status:      model.StatusWaiting,
			Questions:   []model.QuestionRecord{},
		}

		err := s.store.Create(ctx, iv)
		if errors.Is(err, repository.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create interview: %w", err)
		}

		s.log.Info().
			Str("interview_id", iv.ID.String()).
			Str("session_code", code).
			Msg("Interview created")
		return iv, nil
	}
	return nil, errors.New("could not allocate a unique session code")
}

// GetState returns the full session snapshot.
func (s *InterviewService) GetState(ctx context.Context, id uuid.UUID) (*model.Interview, error) {
	iv, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get interview: %w", err)
	}
	return iv, nil
}

// Connect joins the peer client to the session matching the given code and
// runs question generation. The code is single-use: once the session
// leaves waiting it never resolves to a match again, except that an
// initializing session with no questions may retry a failed generation.
func (s *InterviewService) Connect(ctx context.Context, code string) (*model.Interview, error) {
	iv, err := s.store.GetBySessionCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidSessionCode
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session code: %w", err)
	}

	var claimed bool
	fresh, err := s.update(ctx, iv.ID, func(cur *model.Interview) (bool, error) {
		claimed = false
		switch cur.Status {
		case model.StatusWaiting:
			cur.Status = model.StatusInitializing
			claimed = true
			return true, nil
		case model.StatusInitializing:
			if len(cur.Questions) > 0 {
				return false, ErrAlreadyConnected
			}
			// A previous generation attempt failed; let this connect retry it.
			return false, nil
		default:
			return false, ErrAlreadyConnected
		}
	})
	if err != nil {
		return nil, err
	}
	if claimed {
		s.notify(ctx, fresh.ID)
	}

	return s.activate(ctx, fresh)
}

// activate runs the question pipeline with the stored config snapshot and
// transitions initializing → active. A pipeline failure leaves the session
// initializing so a repeat connect can retry.
func (s *InterviewService) activate(ctx context.Context, iv *model.Interview) (*model.Interview, error) {
	var cfg model.InterviewConfig
	if iv.InterviewConfig != nil {
		cfg = *iv.InterviewConfig
	}

	questions, err := s.questions.Generate(ctx, cfg)
	if err != nil {
		s.log.Error().Err(err).
			Str("interview_id", iv.ID.String()).
			Msg("Question generation failed, session stays initializing")
		return nil, err
	}

	updated, err := s.update(ctx, iv.ID, func(iv *model.Interview) (bool, error) {
		if iv.Status != model.StatusInitializing {
			return false, ErrInvalidTransition
		}
		records := make([]model.QuestionRecord, len(questions))
		for i, q := range questions {
			records[i] = model.QuestionRecord{Question: q}
		}
		iv.Questions = records
		iv.CurrentQuestionIndex = 0
		iv.Status = model.StatusActive
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, updated.ID)
	s.log.Info().
		Str("interview_id", updated.ID.String()).
		Int("questions", len(updated.Questions)).
		Msg("Interview active")
	return updated, nil
}

// SaveUserInfo attaches candidate info and the config snapshot to the
// session, linking (or creating) a candidate profile when an email is
// present. Once a candidate is linked the info is frozen: repeat calls
// return the existing linkage without mutating.
func (s *InterviewService) SaveUserInfo(ctx context.Context, id uuid.UUID, info model.UserInfo, cfg *model.InterviewConfig) (*uuid.UUID, error) {
	current, err := s.GetState(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.CandidateID != nil {
		return current.CandidateID, nil
	}

	var candidateID *uuid.UUID
	if email := info.Email(); email != "" {
		username := info.Username()
		if username == "" {
			username = "Anonymous"
		}
		cand, err := s.candidates.GetOrCreate(ctx, email, username, info.Age())
		if err != nil {
			return nil, err
		}
		candidateID = &cand.ID
	}

	_, err = s.update(ctx, id, func(iv *model.Interview) (bool, error) {
		if iv.CandidateID != nil {
			candidateID = iv.CandidateID
			return false, nil
		}
		iv.UserInfo = info
		iv.InterviewConfig = cfg
		iv.CandidateID = candidateID
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return candidateID, nil
}

// UpdateDraftAnswer overwrites the current question's answer text without
// triggering scoring. Pushes outside an answerable state are ignored,
// matching the best-effort nature of streaming transcript updates.
func (s *InterviewService) UpdateDraftAnswer(ctx context.Context, id uuid.UUID, answer string) error {
	_, err := s.updateNotify(ctx, id, func(iv *model.Interview) (bool, error) {
		idx := iv.CurrentQuestionIndex
		if idx >= len(iv.Questions) {
			return false, nil
		}
		if iv.Questions[idx].UserAnswer == answer {
			return false, nil
		}
		iv.Questions[idx].UserAnswer = answer
		return true, nil
	})
	return err
}

// SubmitAnswer finalizes the current question's answer and dispatches
// asynchronous scoring. A nil answer submits the stored draft. The index
// does not move here: advancement is driven by the scoring result.
// An index whose evaluation is already pending only updates the answer
// text; no second task is dispatched.
func (s *InterviewService) SubmitAnswer(ctx context.Context, id uuid.UUID, answer *string) error {
	var task *EvaluationTask

	_, err := s.update(ctx, id, func(iv *model.Interview) (bool, error) {
		task = nil
		if iv.Status == model.StatusCompleted {
			return false, ErrInterviewCompleted
		}
		if iv.Status != model.StatusActive {
			return false, ErrInvalidTransition
		}
		idx := iv.CurrentQuestionIndex
		if idx >= len(iv.Questions) {
			return false, ErrInterviewCompleted
		}

		q := &iv.Questions[idx]
		if q.Score != nil {
			// Re-submitting an already-scored index is an application error.
			return false, ErrInvalidTransition
		}

		final := q.UserAnswer
		if answer != nil {
			final = *answer
			q.UserAnswer = final
		}

		if !q.EvaluationPending {
			q.EvaluationPending = true
			task = &EvaluationTask{
				InterviewID:   iv.ID,
				QuestionIndex: idx,
				Question:      q.Question,
				Answer:        final,
			}
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	if task != nil {
		if err := s.queue.Enqueue(ctx, *task); err != nil {
			// The pending marker stays set; advance is the escape path.
			s.log.Error().Err(err).
				Str("interview_id", id.String()).
				Int("question_index", task.QuestionIndex).
				Msg("Failed to dispatch evaluation task")
			return fmt.Errorf("dispatch evaluation: %w", err)
		}
	}

	s.notify(ctx, id)
	return nil
}

// AdvanceQuestion forces navigation to a later question without scoring.
// The index never moves backwards and never reaches len(questions); only a
// scoring result can complete the session.
func (s *InterviewService) AdvanceQuestion(ctx context.Context, id uuid.UUID, nextIndex int) error {
	_, err := s.updateNotify(ctx, id, func(iv *model.Interview) (bool, error) {
		if iv.Status == model.StatusCompleted {
			return false, ErrInterviewCompleted
		}
		if iv.Status != model.StatusActive {
			return false, ErrInvalidTransition
		}
		if nextIndex < iv.CurrentQuestionIndex || nextIndex >= len(iv.Questions) {
			return false, ErrInvalidTransition
		}
		if nextIndex == iv.CurrentQuestionIndex {
			return false, nil
		}
		iv.CurrentQuestionIndex = nextIndex
		return true, nil
	})
	return err
}

// ApplyEvaluation attaches a scoring result and advances the index. It is
// the completion callback of the asynchronous scoring flow and tolerates
// at-least-once delivery: a result for an already-scored index, or for a
// completed session, is a no-op. Completing the last question finalizes
// the session and updates the linked candidate's statistics exactly once
// (the compare-and-swap that flips the status is the once-guard).
func (s *InterviewService) ApplyEvaluation(ctx context.Context, id uuid.UUID, index int, score float64, feedback string) error {
	var completed bool

	updated, err := s.update(ctx, id, func(iv *model.Interview) (bool, error) {
		completed = false
		if iv.Status == model.StatusCompleted {
			return false, nil
		}
		if iv.Status != model.StatusActive {
			return false, ErrInvalidTransition
		}
		if index < 0 || index >= len(iv.Questions) {
			return false, fmt.Errorf("evaluation index %d out of range", index)
		}

		q := &iv.Questions[index]
		if q.Score != nil {
			return false, nil
		}

		sc, fb := score, feedback
		q.Score = &sc
		q.Feedback = &fb
		q.EvaluationPending = false

		if next := index + 1; next > iv.CurrentQuestionIndex {
			iv.CurrentQuestionIndex = next
		}

		if iv.CurrentQuestionIndex >= len(iv.Questions) {
			iv.Status = model.StatusCompleted
			total := iv.SumScores()
			iv.TotalScore = &total
			now := time.Now()
			iv.CompletedAt = &now
			completed = true
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, id)

	if completed {
		s.log.Info().
			Str("interview_id", id.String()).
			Float64("total_score", *updated.TotalScore).
			Msg("Interview completed")

		if updated.CandidateID != nil {
			if err := s.candidates.RecordCompletion(ctx, *updated.CandidateID, updated.ID, *updated.TotalScore); err != nil {
				// The session is already finalized; statistics failures
				// must not fail the evaluation application.
				s.log.Error().Err(err).
					Str("candidate_id", updated.CandidateID.String()).
					Msg("Failed to update candidate statistics")
			}
		}
	}
	return nil
}

// update runs a guarded read-modify-write cycle. The mutate callback
// validates guards against the freshly read record and reports whether a
// write is needed; version conflicts re-read and re-validate.
func (s *InterviewService) update(ctx context.Context, id uuid.UUID, mutate func(iv *model.Interview) (bool, error)) (*model.Interview, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		iv, err := s.store.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("get interview: %w", err)
		}

		write, err := mutate(iv)
		if err != nil {
			return nil, err
		}
		if !write {
			return iv, nil
		}

		err = s.store.Update(ctx, iv)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update interview: %w", err)
		}
		return iv, nil
	}
	return nil, fmt.Errorf("update interview %s: %w", id, repository.ErrVersionConflict)
}

// updateNotify is update plus a state-change notification when a write
// happened.
func (s *InterviewService) updateNotify(ctx context.Context, id uuid.UUID, mutate func(iv *model.Interview) (bool, error)) (bool, error) {
	written := false
	_, err := s.update(ctx, id, func(iv *model.Interview) (bool, error) {
		write, err := mutate(iv)
		written = write && err == nil
		return write, err
	})
	if err != nil {
		return false, err
	}
	if written {
		s.notify(ctx, id)
	}
	return written, nil
}

func (s *InterviewService) notify(ctx context.Context, id uuid.UUID) {
	if s.notifier != nil {
		s.notifier.NotifyStateChange(ctx, id)
	}
}

func generateSessionCode() string {
	return strconv.Itoa(sessionCodeMin + rand.IntN(sessionCodeSpan))
}
