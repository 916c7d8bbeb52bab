package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/astraid/intervox-backend/internal/ai"
	"github.com/astraid/intervox-backend/internal/model"
	"github.com/rs/zerolog"
)

// ErrGenerationFailed signals that the question backend produced no usable
// list. Callers must surface it rather than substitute an empty set.
var ErrGenerationFailed = fmt.Errorf("question generation failed")

// QuestionPipeline turns an interview configuration into an ordered list of
// question strings.
type QuestionPipeline struct {
	provider     ai.Provider
	timeout      time.Duration
	defaultTopic string
	defaultCount int
	log          zerolog.Logger
}

// NewQuestionPipeline creates a QuestionPipeline. defaultTopic and
// defaultCount fill in when the stored config omits them.
func NewQuestionPipeline(provider ai.Provider, timeout time.Duration, defaultTopic string, defaultCount int, log zerolog.Logger) *QuestionPipeline {
	return &QuestionPipeline{
		provider:     provider,
		timeout:      timeout,
		defaultTopic: defaultTopic,
		defaultCount: defaultCount,
		log:          log.With().Str("component", "question_pipeline").Logger(),
	}
}

// Generate produces the interview's question list. Custom questions with
// auto-generation disabled are returned verbatim without any backend call.
func (p *QuestionPipeline) Generate(ctx context.Context, cfg model.InterviewConfig) ([]string, error) {
	if len(cfg.CustomQuestions) > 0 && !cfg.AutoGenerate {
		return cfg.CustomQuestions, nil
	}

	topic := cfg.Topic
	if topic == "" {
		topic = p.defaultTopic
	}
	count := cfg.NumberOfQuestions
	if count <= 0 {
		count = p.defaultCount
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	systemPrompt := fmt.Sprintf(
		"You are a technical interviewer for a %s. Generate %d distinct, challenging, but fair interview questions. Return them as a JSON array of strings.",
		topic, count,
	)
	userPrompt := fmt.Sprintf("Generate %d interview questions about %s.", count, topic)

	content, err := p.provider.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	raw, err := extractJSONArray(content)
	if err != nil {
		p.log.Error().Str("content", content).Msg("No JSON array in generation response")
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	var questions []string
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		p.log.Error().Err(err).Str("content", content).Msg("Failed to parse generated questions")
		return nil, fmt.Errorf("%w: parse: %v", ErrGenerationFailed, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: backend returned an empty list", ErrGenerationFailed)
	}

	return questions, nil
}
