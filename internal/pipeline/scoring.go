package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/astraid/intervox-backend/internal/ai"
	"github.com/rs/zerolog"
)

const scoringRubric = "You are an expert AI interviewer. Evaluate the candidate's answer to the question. " +
	"Score the answer from 1 to 10. " +
	"1-3: Wrong or nonsense. " +
	"4-7: Partial or incomplete understanding. " +
	"8-10: Correct and well-explained. " +
	"Return a JSON object with two fields: 'score' (number) and 'feedback' (string, brief comment)."

// Evaluation is one scoring result.
type Evaluation struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// degradedEvaluation is recorded when the backend fails or returns garbage,
// so the interview always advances instead of stalling.
var degradedEvaluation = Evaluation{Score: 0, Feedback: "evaluation failed"}

// ScoringPipeline turns (question, answer) pairs into scored evaluations.
type ScoringPipeline struct {
	provider ai.Provider
	timeout  time.Duration
	log      zerolog.Logger
}

// NewScoringPipeline creates a ScoringPipeline.
func NewScoringPipeline(provider ai.Provider, timeout time.Duration, log zerolog.Logger) *ScoringPipeline {
	return &ScoringPipeline{
		provider: provider,
		timeout:  timeout,
		log:      log.With().Str("component", "scoring_pipeline").Logger(),
	}
}

// Evaluate scores a single answer. It never returns an error: any backend
// or parse failure degrades to a zero score with explanatory feedback.
func (p *ScoringPipeline) Evaluate(ctx context.Context, question, answer string) Evaluation {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Question: %s\nAnswer: %s", question, answer)

	content, err := p.provider.Generate(ctx, scoringRubric, userPrompt)
	if err != nil {
		p.log.Warn().Err(err).Msg("Evaluation backend failed, degrading to zero score")
		return degradedEvaluation
	}

	raw, err := extractJSONObject(content)
	if err != nil {
		p.log.Warn().Str("content", content).Msg("No JSON object in evaluation response")
		return degradedEvaluation
	}

	var result Evaluation
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		p.log.Warn().Err(err).Str("content", content).Msg("Failed to parse evaluation")
		return degradedEvaluation
	}

	return result
}
