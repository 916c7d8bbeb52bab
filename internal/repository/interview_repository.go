package repository

import (
	"context"
	"errors"

	"github.com/astraid/intervox-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const interviewColumns = `id, session_code, status, current_question_index, questions,
	total_score, user_info, interview_config, candidate_id, completed_at, created_at, version`

// InterviewRepository handles interview session data access.
type InterviewRepository struct {
	pool *pgxpool.Pool
}

// NewInterviewRepository creates a new InterviewRepository.
func NewInterviewRepository(pool *pgxpool.Pool) *InterviewRepository {
	return &InterviewRepository{pool: pool}
}

// Create inserts a new interview session in waiting status. A partial
// unique index over not-yet-matched session codes backstops code
// generation races; a collision surfaces as ErrCodeTaken.
func (r *InterviewRepository) Create(ctx context.Context, iv *model.Interview) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO interviews (session_code, status, current_question_index, questions)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, version`,
		iv.SessionCode, iv.Status, iv.CurrentQuestionIndex, iv.Questions,
	).Scan(&iv.ID, &iv.CreatedAt, &iv.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrCodeTaken
		}
		return err
	}
	return nil
}

// GetByID retrieves one interview by id.
func (r *InterviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Interview, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id))
}

// GetBySessionCode resolves a code to its not-yet-matched session. Sessions
// that already left the matching phase never resolve again, which keeps a
// consumed code from hijacking an in-progress interview.
func (r *InterviewRepository) GetBySessionCode(ctx context.Context, code string) (*model.Interview, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+interviewColumns+`
		 FROM interviews
		 WHERE session_code = $1 AND status IN ($2, $3)
		 ORDER BY created_at DESC
		 LIMIT 1`,
		code, model.StatusWaiting, model.StatusInitializing))
}

// Update persists the full session row guarded by the optimistic version
// token. A lost race returns ErrVersionConflict; the caller re-reads and
// re-validates.
func (r *InterviewRepository) Update(ctx context.Context, iv *model.Interview) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE interviews
		 SET session_code = $1,
		     status = $2,
		     current_question_index = $3,
		     questions = $4,
		     total_score = $5,
		     user_info = $6,
		     interview_config = $7,
		     candidate_id = $8,
		     completed_at = $9,
		     version = version + 1
		 WHERE id = $10 AND version = $11
		 RETURNING version`,
		iv.SessionCode, iv.Status, iv.CurrentQuestionIndex, iv.Questions,
		iv.TotalScore, iv.UserInfo, iv.InterviewConfig, iv.CandidateID,
		iv.CompletedAt, iv.ID, iv.Version,
	).Scan(&iv.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrVersionConflict
	}
	return err
}

// ListCompletedByCandidate retrieves all completed sessions linked to a
// candidate, newest completion first.
func (r *InterviewRepository) ListCompletedByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.Interview, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+interviewColumns+`
		 FROM interviews
		 WHERE candidate_id = $1 AND status = $2
		 ORDER BY completed_at DESC`,
		candidateID, model.StatusCompleted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interviews []model.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, *iv)
	}
	return interviews, rows.Err()
}

// DeleteAll wipes every interview row. Operator use only.
func (r *InterviewRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM interviews`)
	return err
}

func (r *InterviewRepository) scanOne(row pgx.Row) (*model.Interview, error) {
	iv, err := scanInterview(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return iv, nil
}

func scanInterview(row pgx.Row) (*model.Interview, error) {
	iv := &model.Interview{}
	err := row.Scan(
		&iv.ID, &iv.SessionCode, &iv.Status, &iv.CurrentQuestionIndex, &iv.Questions,
		&iv.TotalScore, &iv.UserInfo, &iv.InterviewConfig, &iv.CandidateID,
		&iv.CompletedAt, &iv.CreatedAt, &iv.Version,
	)
	if err != nil {
		return nil, err
	}
	if iv.Questions == nil {
		iv.Questions = []model.QuestionRecord{}
	}
	return iv, nil
}
