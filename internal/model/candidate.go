package model

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is the persistent per-email record of aggregate interview
// statistics. It is independently owned and may outlive any session.
type Candidate struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	Username          string     `json:"username"`
	Age               *int       `json:"age,omitempty"`
	TotalInterviews   int        `json:"total_interviews"`
	AverageScore      *float64   `json:"average_score,omitempty"`
	LastInterviewDate *time.Time `json:"last_interview_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// HistoryEntry summarizes one completed interview for history views and
// the performance analysis pipeline.
type HistoryEntry struct {
	Date      time.Time `json:"date"`
	Score     float64   `json:"score"`
	Questions int       `json:"questions"`
}

// CandidateHistory pairs a profile with its completed interview summaries,
// newest first.
type CandidateHistory struct {
	Candidate  *Candidate     `json:"candidate"`
	Interviews []HistoryEntry `json:"interviews"`
}

// PerformanceInsights is the AI-produced analysis of a candidate's history.
type PerformanceInsights struct {
	Analysis    string   `json:"analysis"`
	Prediction  *float64 `json:"prediction,omitempty"`
	TrendStatus string   `json:"trend_status"`
}

// AnalyzeHistoryRequest is the payload for the history analysis operation.
type AnalyzeHistoryRequest struct {
	History []HistoryEntry `json:"history" binding:"required"`
}
