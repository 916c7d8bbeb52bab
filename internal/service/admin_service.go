package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// AdminService exposes operator-only maintenance operations.
type AdminService struct {
	interviewStore InterviewStore
	candidateStore CandidateStore
	queue          EvaluationQueue
	log            zerolog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(interviewStore InterviewStore, candidateStore CandidateStore, queue EvaluationQueue, log zerolog.Logger) *AdminService {
	return &AdminService{
		interviewStore: interviewStore,
		candidateStore: candidateStore,
		queue:          queue,
		log:            log.With().Str("component", "admin_service").Logger(),
	}
}

// WipeAll deletes every interview and candidate and purges pending
// evaluation tasks. This is the only deletion path in the system.
func (s *AdminService) WipeAll(ctx context.Context) error {
	if err := s.interviewStore.DeleteAll(ctx); err != nil {
		return fmt.Errorf("wipe interviews: %w", err)
	}
	if err := s.candidateStore.DeleteAll(ctx); err != nil {
		return fmt.Errorf("wipe candidates: %w", err)
	}
	if s.queue != nil {
		if err := s.queue.Purge(ctx); err != nil {
			return fmt.Errorf("purge evaluation queue: %w", err)
		}
	}

	s.log.Warn().Msg("All interview and candidate data wiped")
	return nil
}
