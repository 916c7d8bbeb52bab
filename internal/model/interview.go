package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// InterviewStatus enumerates interview session states.
type InterviewStatus string

const (
	StatusWaiting      InterviewStatus = "waiting"
	StatusInitializing InterviewStatus = "initializing"
	StatusActive       InterviewStatus = "active"
	StatusCompleted    InterviewStatus = "completed"
)

// QuestionRecord is a single question within an interview, mutated
// field-by-field as the interview proceeds. Score and Feedback stay nil
// until the evaluation for this question has been applied.
type QuestionRecord struct {
	Question          string   `json:"question"`
	UserAnswer        string   `json:"user_answer"`
	Score             *float64 `json:"score,omitempty"`
	Feedback          *string  `json:"feedback,omitempty"`
	EvaluationPending bool     `json:"evaluation_pending,omitempty"`
}

// InterviewConfig is the configuration snapshot captured at session
// creation so later pipeline invocations are deterministic.
type InterviewConfig struct {
	Topic             string   `json:"topic,omitempty"`
	NumberOfQuestions int      `json:"number_of_questions,omitempty"`
	CustomQuestions   []string `json:"custom_questions,omitempty"`
	AutoGenerate      bool     `json:"auto_generate,omitempty"`
}

// UserInfo holds free-form candidate-supplied fields from the intake form.
type UserInfo map[string]any

// Email returns the candidate email, or "" when absent.
func (u UserInfo) Email() string {
	return u.stringField("email")
}

// Username returns the candidate display name, or "" when absent.
func (u UserInfo) Username() string {
	return u.stringField("username")
}

// Age returns the candidate age if present and parseable. The intake form
// may deliver it as either a number or a string.
func (u UserInfo) Age() *int {
	switch v := u["age"].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		return &v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return &n
		}
	}
	return nil
}

func (u UserInfo) stringField(key string) string {
	if v, ok := u[key].(string); ok {
		return v
	}
	return ""
}

// Interview is one interview session: status, question list, answers,
// scores, and the linkage to a candidate profile.
type Interview struct {
	ID                   uuid.UUID        `json:"id"`
	SessionCode          *string          `json:"session_code,omitempty"`
	Status               InterviewStatus  `json:"status"`
	CurrentQuestionIndex int              `json:"current_question_index"`
	Questions            []QuestionRecord `json:"questions"`
	TotalScore           *float64         `json:"total_score,omitempty"`
	UserInfo             UserInfo         `json:"user_info,omitempty"`
	InterviewConfig      *InterviewConfig `json:"interview_config,omitempty"`
	CandidateID          *uuid.UUID       `json:"candidate_id,omitempty"`
	CompletedAt          *time.Time       `json:"completed_at,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`

	// Version is the optimistic concurrency token; every guarded patch
	// bumps it by one.
	Version int64 `json:"-"`
}

// SumScores returns the sum of all recorded scores. Unscored questions
// count as zero.
func (i *Interview) SumScores() float64 {
	var total float64
	for _, q := range i.Questions {
		if q.Score != nil {
			total += *q.Score
		}
	}
	return total
}

// ConnectRequest is the payload for the peer client joining by code.
type ConnectRequest struct {
	SessionCode string `json:"session_code" binding:"required,len=4,numeric"`
}

// SaveUserInfoRequest is the payload linking candidate info to a session.
type SaveUserInfoRequest struct {
	UserInfo        UserInfo         `json:"user_info" binding:"required"`
	InterviewConfig *InterviewConfig `json:"interview_config"`
}

// DraftAnswerRequest carries an incremental transcript update.
type DraftAnswerRequest struct {
	Answer string `json:"answer"`
}

// SubmitAnswerRequest finalizes an answer. A nil Answer submits the draft.
type SubmitAnswerRequest struct {
	Answer *string `json:"answer"`
}

// AdvanceQuestionRequest forces navigation to a later question.
type AdvanceQuestionRequest struct {
	NextIndex *int `json:"next_index" binding:"required"`
}
