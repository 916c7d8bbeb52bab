package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/astraid/intervox-backend/internal/config"
	"github.com/astraid/intervox-backend/internal/pipeline"
	"github.com/astraid/intervox-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// maxTaskAttempts bounds requeues per task so a payload that can never
// apply (deleted interview, out-of-range index) does not loop forever.
const maxTaskAttempts = 5

// EvaluationWorker consumes evaluate_answers_queue, scores each answer
// and applies the result to the session. Scoring never fails hard: the
// pipeline degrades to a zero score, so a consumed task always produces
// an applied evaluation.
type EvaluationWorker struct {
	rdb        *redis.Client
	scoring    *pipeline.ScoringPipeline
	interviews *service.InterviewService
	log        zerolog.Logger
}

// NewEvaluationWorker creates a new EvaluationWorker.
func NewEvaluationWorker(rdb *redis.Client, scoring *pipeline.ScoringPipeline, interviews *service.InterviewService, log zerolog.Logger) *EvaluationWorker {
	return &EvaluationWorker{
		rdb:        rdb,
		scoring:    scoring,
		interviews: interviews,
		log:        log.With().Str("component", "evaluation_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *EvaluationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *EvaluationWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.EvaluateAnswersQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var task service.EvaluationTask
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.evaluate(ctx, &task); err != nil {
		raw, retry := nextRetry(&task)
		if !retry {
			w.log.Error().Err(err).
				Str("interview_id", task.InterviewID.String()).
				Int("question_index", task.QuestionIndex).
				Int("attempts", task.Attempts).
				Msg("Dropping evaluation task after repeated failures")
			return
		}

		w.log.Error().Err(err).
			Str("interview_id", task.InterviewID.String()).
			Int("question_index", task.QuestionIndex).
			Msg("Apply error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.EvaluateAnswersQueue, raw)
		time.Sleep(5 * time.Second)
	}
}

// nextRetry charges one attempt against the task's retry budget and
// returns the payload to requeue, or false once the budget is spent.
func nextRetry(task *service.EvaluationTask) ([]byte, bool) {
	task.Attempts++
	if task.Attempts >= maxTaskAttempts {
		return nil, false
	}
	raw, err := json.Marshal(task)
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (w *EvaluationWorker) evaluate(ctx context.Context, task *service.EvaluationTask) error {
	ev := w.scoring.Evaluate(ctx, task.Question, task.Answer)
	return w.interviews.ApplyEvaluation(ctx, task.InterviewID, task.QuestionIndex, ev.Score, ev.Feedback)
}

// drain processes all remaining items in the queue before shutdown.
func (w *EvaluationWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.EvaluateAnswersQueue).Result()
		if err != nil {
			break
		}

		var task service.EvaluationTask
		if err := json.Unmarshal([]byte(result), &task); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.evaluate(ctx, &task); err != nil {
			w.log.Error().Err(err).Msg("Drain apply error")
			if raw, retry := nextRetry(&task); retry {
				w.rdb.RPush(ctx, config.WorkerKey.EvaluateAnswersQueue, raw)
			}
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
