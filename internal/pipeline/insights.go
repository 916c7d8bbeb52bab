package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/astraid/intervox-backend/internal/ai"
	"github.com/astraid/intervox-backend/internal/model"
	"github.com/rs/zerolog"
)

const insightsPrompt = "You are a career coach analyzing a candidate's interview performance history. " +
	"Provide a JSON object with: 'analysis' (a brief, encouraging analysis), " +
	"'prediction' (number, the projected next score), and " +
	"'trend_status' (a one-line summary status, e.g. 'Consistently Improving', 'Needs Focus', 'Top Performer')."

// noHistoryInsights is the fixed payload for candidates without any
// completed interviews.
var noHistoryInsights = model.PerformanceInsights{
	Analysis:    "No history available yet. Complete your first interview to get AI insights!",
	TrendStatus: "New User",
}

// InsightsPipeline analyzes a candidate's completed-interview history.
type InsightsPipeline struct {
	provider ai.Provider
	timeout  time.Duration
	log      zerolog.Logger
}

// NewInsightsPipeline creates an InsightsPipeline.
func NewInsightsPipeline(provider ai.Provider, timeout time.Duration, log zerolog.Logger) *InsightsPipeline {
	return &InsightsPipeline{
		provider: provider,
		timeout:  timeout,
		log:      log.With().Str("component", "insights_pipeline").Logger(),
	}
}

// Analyze produces performance insights over the given history. An empty
// history short-circuits to the fixed no-history payload.
func (p *InsightsPipeline) Analyze(ctx context.Context, history []model.HistoryEntry) (*model.PerformanceInsights, error) {
	if len(history) == 0 {
		insights := noHistoryInsights
		return &insights, nil
	}

	var lines []string
	for _, h := range history {
		lines = append(lines, fmt.Sprintf("Date: %s, Score: %.0f (%d questions)",
			h.Date.Format("2006-01-02"), h.Score, h.Questions))
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Here is the candidate's history:\n%s\n\nAnalyze their progress.", strings.Join(lines, "\n"))

	content, err := p.provider.Generate(ctx, insightsPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("analyze history: %w", err)
	}

	raw, err := extractJSONObject(content)
	if err != nil {
		p.log.Error().Str("content", content).Msg("No JSON object in insights response")
		return nil, fmt.Errorf("analyze history: %w", err)
	}

	var insights model.PerformanceInsights
	if err := json.Unmarshal([]byte(raw), &insights); err != nil {
		return nil, fmt.Errorf("analyze history: parse: %w", err)
	}

	return &insights, nil
}
