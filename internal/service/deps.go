package service

import (
	"context"

	"github.com/astraid/intervox-backend/internal/model"
	"github.com/google/uuid"
)

// InterviewStore is the durable session record contract. The pgx-backed
// implementation lives in internal/repository; tests use in-memory fakes.
type InterviewStore interface {
	Create(ctx context.Context, iv *model.Interview) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Interview, error)
	GetBySessionCode(ctx context.Context, code string) (*model.Interview, error)
	Update(ctx context.Context, iv *model.Interview) error
	ListCompletedByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.Interview, error)
	DeleteAll(ctx context.Context) error
}

// CandidateStore is the candidate profile record contract.
type CandidateStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Candidate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
	Create(ctx context.Context, c *model.Candidate) error
	Update(ctx context.Context, c *model.Candidate) error
	DeleteAll(ctx context.Context) error
}

// QuestionGenerator produces the ordered question list for a session from
// its stored configuration snapshot.
type QuestionGenerator interface {
	Generate(ctx context.Context, cfg model.InterviewConfig) ([]string, error)
}

// EvaluationTask is one queued scoring request, keyed by session and
// question index so the consumer can re-validate before applying.
// Attempts counts failed delivery attempts so the worker can stop
// requeueing a task that will never apply.
type EvaluationTask struct {
	InterviewID   uuid.UUID `json:"interview_id"`
	QuestionIndex int       `json:"question_index"`
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	Attempts      int       `json:"attempts,omitempty"`
}

// EvaluationQueue dispatches scoring work to the background worker.
type EvaluationQueue interface {
	Enqueue(ctx context.Context, task EvaluationTask) error
	Purge(ctx context.Context) error
}

// StateNotifier announces that a session's state changed, so live
// subscriptions can push a fresh snapshot.
type StateNotifier interface {
	NotifyStateChange(ctx context.Context, interviewID uuid.UUID)
}
