package repository

import (
	"context"
	"errors"

	"github.com/astraid/intervox-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const candidateColumns = `id, email, username, age, total_interviews, average_score,
	last_interview_date, created_at`

// CandidateRepository handles candidate profile data access.
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

// GetByEmail retrieves a profile by its unique email.
func (r *CandidateRepository) GetByEmail(ctx context.Context, email string) (*model.Candidate, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE email = $1`, email))
}

// GetByID retrieves a profile by id.
func (r *CandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
}

// Create inserts a new candidate profile.
func (r *CandidateRepository) Create(ctx context.Context, c *model.Candidate) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO candidates (email, username, age, total_interviews, average_score, last_interview_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		c.Email, c.Username, c.Age, c.TotalInterviews, c.AverageScore, c.LastInterviewDate,
	).Scan(&c.ID, &c.CreatedAt)
}

// Update persists profile fields (last write wins).
func (r *CandidateRepository) Update(ctx context.Context, c *model.Candidate) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE candidates
		 SET username = $1, age = $2, total_interviews = $3,
		     average_score = $4, last_interview_date = $5
		 WHERE id = $6`,
		c.Username, c.Age, c.TotalInterviews, c.AverageScore, c.LastInterviewDate, c.ID)
	return err
}

// DeleteAll wipes every candidate row. Operator use only.
func (r *CandidateRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM candidates`)
	return err
}

func (r *CandidateRepository) scanOne(row pgx.Row) (*model.Candidate, error) {
	c := &model.Candidate{}
	err := row.Scan(
		&c.ID, &c.Email, &c.Username, &c.Age, &c.TotalInterviews,
		&c.AverageScore, &c.LastInterviewDate, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
