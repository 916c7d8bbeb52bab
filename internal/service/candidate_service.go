package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/astraid/intervox-backend/internal/model"
	"github.com/astraid/intervox-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CandidateService maintains candidate profiles and their rolling
// interview statistics.
type CandidateService struct {
	candidateStore CandidateStore
	interviewStore InterviewStore
	log            zerolog.Logger
}

// NewCandidateService creates a new CandidateService.
func NewCandidateService(candidateStore CandidateStore, interviewStore InterviewStore, log zerolog.Logger) *CandidateService {
	return &CandidateService{
		candidateStore: candidateStore,
		interviewStore: interviewStore,
		log:            log.With().Str("component", "candidate_service").Logger(),
	}
}

// GetOrCreate returns the profile matching the email, refreshing
// username/age and the last-touch timestamp, or creates a fresh profile
// with zero interviews.
func (s *CandidateService) GetOrCreate(ctx context.Context, email, username string, age *int) (*model.Candidate, error) {
	now := time.Now()

	cand, err := s.candidateStore.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("get candidate: %w", err)
	}

	if cand == nil {
		cand = &model.Candidate{
			Email:             email,
			Username:          username,
			Age:               age,
			TotalInterviews:   0,
			LastInterviewDate: &now,
		}
		if err := s.candidateStore.Create(ctx, cand); err != nil {
			return nil, fmt.Errorf("create candidate: %w", err)
		}
		s.log.Info().Str("email", email).Msg("Candidate profile created")
		return cand, nil
	}

	cand.Username = username
	cand.Age = age
	cand.LastInterviewDate = &now
	if err := s.candidateStore.Update(ctx, cand); err != nil {
		return nil, fmt.Errorf("update candidate: %w", err)
	}
	return cand, nil
}

// RecordCompletion recomputes the profile's aggregate statistics for a
// session that just completed. Aggregates are rebuilt from a fresh query
// of completed sessions plus the finishing one, never patched
// incrementally. The finishing session is excluded from the query result
// by id since its completion may already be persisted.
func (s *CandidateService) RecordCompletion(ctx context.Context, candidateID, sessionID uuid.UUID, sessionScore float64) error {
	cand, err := s.candidateStore.GetByID(ctx, candidateID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCandidateNotFound
	}
	if err != nil {
		return fmt.Errorf("get candidate: %w", err)
	}

	completed, err := s.interviewStore.ListCompletedByCandidate(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("list completed interviews: %w", err)
	}

	sum := sessionScore
	count := 1
	for _, iv := range completed {
		if iv.ID == sessionID {
			continue
		}
		if iv.TotalScore != nil {
			sum += *iv.TotalScore
		}
		count++
	}

	avg := sum / float64(count)
	now := time.Now()

	cand.TotalInterviews = count
	cand.AverageScore = &avg
	cand.LastInterviewDate = &now

	if err := s.candidateStore.Update(ctx, cand); err != nil {
		return fmt.Errorf("update candidate statistics: %w", err)
	}

	s.log.Info().
		Str("candidate_id", candidateID.String()).
		Int("total_interviews", count).
		Float64("average_score", avg).
		Msg("Candidate statistics updated")
	return nil
}

// GetHistory returns the profile and its completed interview summaries,
// newest first.
func (s *CandidateService) GetHistory(ctx context.Context, email string) (*model.CandidateHistory, error) {
	cand, err := s.candidateStore.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}

	completed, err := s.interviewStore.ListCompletedByCandidate(ctx, cand.ID)
	if err != nil {
		return nil, fmt.Errorf("list completed interviews: %w", err)
	}

	entries := make([]model.HistoryEntry, 0, len(completed))
	for _, iv := range completed {
		entry := model.HistoryEntry{Questions: len(iv.Questions)}
		if iv.CompletedAt != nil {
			entry.Date = *iv.CompletedAt
		}
		if iv.TotalScore != nil {
			entry.Score = *iv.TotalScore
		}
		entries = append(entries, entry)
	}

	return &model.CandidateHistory{Candidate: cand, Interviews: entries}, nil
}
