package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ReinaldoAssis/multi-language-books/internal/book"
)

// ProgressFunc receives a completion fraction in [0,1] and a status message.
type ProgressFunc func(progress float64, message string)

// Engine runs the translation pipeline: plan batches, send each to the
// backend with bounded retry, parse replies onto the sentences, and collect
// run-level stats. Batches are processed strictly one after another; a failed
// batch falls back to original text and the run continues.
type Engine struct {
	backend Backend
	planner *Planner
	logger  *logrus.Logger

	maxRetries     int
	retryDelay     time.Duration
	requestTimeout time.Duration
	limiter        *rate.Limiter

	// sleep is swappable so retry backoff is testable without real time.
	sleep func(time.Duration)
}

type EngineConfig struct {
	MaxRetries     int
	RetryDelay     time.Duration
	RequestTimeout time.Duration

	// RequestsPerMinute throttles backend calls; 0 disables the limiter.
	RequestsPerMinute int
}

func NewEngine(backend Backend, planner *Planner, cfg EngineConfig, logger *logrus.Logger) *Engine {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), 1)
	}

	return &Engine{
		backend:        backend,
		planner:        planner,
		logger:         logger,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
		requestTimeout: cfg.RequestTimeout,
		limiter:        limiter,
		sleep:          time.Sleep,
	}
}

// TranslateDocument translates every sentence the analyzer flagged, mutating
// the document in place. Per-batch failures are recorded in the returned
// stats, not propagated; the context cancels the run between requests.
func (e *Engine) TranslateDocument(ctx context.Context, doc *book.Document, progress ProgressFunc) book.TranslationStats {
	start := time.Now()
	stats := book.TranslationStats{}

	toTranslate := doc.ToTranslate()
	stats.TotalSentences = len(toTranslate)

	if len(toTranslate) == 0 {
		if progress != nil {
			progress(1.0, "No sentences to translate")
		}
		return stats
	}

	batches := e.planner.Plan(doc.Sentences, toTranslate)
	stats.TotalBatches = len(batches)

	e.logger.Infof("Translating %d sentences in %d batches via %s",
		len(toTranslate), len(batches), e.backend.Name())
	if progress != nil {
		progress(0.0, fmt.Sprintf("Prepared %d batches", len(batches)))
	}

	for i, batch := range batches {
		if ctx.Err() != nil {
			e.logger.Warnf("Translation canceled after %d/%d batches", i, len(batches))
			e.failBatch(batch, &stats)
			for _, rest := range batches[i+1:] {
				e.failBatch(rest, &stats)
			}
			break
		}

		if progress != nil {
			progress(float64(i)/float64(len(batches)), fmt.Sprintf("Translating batch %d/%d...", i+1, len(batches)))
		}

		reply, err := e.sendWithRetry(ctx, batch)
		if err != nil {
			msg := fmt.Sprintf("batch %d/%d failed: %v", i+1, len(batches), err)
			e.logger.Errorf("⚠️ %s", msg)
			stats.Errors = append(stats.Errors, msg)
			e.failBatch(batch, &stats)
			continue
		}

		translated, failed := ParseReply(reply, batch.Translate, e.logger)
		stats.TranslatedSentences += translated
		stats.FailedSentences += failed
	}

	stats.TotalTime = time.Since(start)

	e.logger.Infof("Translation finished: %d/%d sentences in %s (%d failed)",
		stats.TranslatedSentences, stats.TotalSentences, stats.TotalTime.Round(time.Second), stats.FailedSentences)
	if progress != nil {
		progress(1.0, fmt.Sprintf("Translated %d/%d sentences", stats.TranslatedSentences, stats.TotalSentences))
	}

	return stats
}

// sendWithRetry sends one batch, retrying transport failures and empty
// replies with a growing delay. The delay grows linearly with the attempt
// number, matching the backoff the backends' rate limits expect.
func (e *Engine) sendWithRetry(ctx context.Context, batch *Batch) (string, error) {
	requestID := uuid.New().String()
	var lastErr error

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		if attempt > 1 {
			e.logger.Debugf("Retrying batch (attempt %d/%d, request %s)", attempt, e.maxRetries, requestID)
			e.sleep(e.retryDelay * time.Duration(attempt-1))
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return "", err
		}

		reply, err := e.translateOnce(ctx, batch.Prompt, batch.EstimatedTokens)
		if err != nil {
			lastErr = err
			e.logger.Warnf("Batch request failed (attempt %d, request %s): %v", attempt, requestID, err)
			continue
		}

		if strings.TrimSpace(reply) == "" {
			lastErr = fmt.Errorf("empty reply from %s", e.backend.Name())
			e.logger.Warnf("Empty reply (attempt %d, request %s)", attempt, requestID)
			continue
		}

		return reply, nil
	}

	return "", fmt.Errorf("max retries exceeded, last error: %w", lastErr)
}

func (e *Engine) translateOnce(ctx context.Context, prompt string, estimatedTokens int) (string, error) {
	if e.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.requestTimeout)
		defer cancel()
	}
	return e.backend.Translate(ctx, prompt, estimatedTokens)
}

// failBatch applies the identity fallback to every translate sentence of a
// batch that never produced a usable reply.
func (e *Engine) failBatch(batch *Batch, stats *book.TranslationStats) {
	for _, s := range batch.Translate {
		if !s.Translated() {
			s.TranslatedText = s.Text
		}
		stats.FailedSentences++
	}
}

// TranslateText translates a single standalone text, for smoke-testing a
// backend. Returns the original text when translation fails.
func (e *Engine) TranslateText(ctx context.Context, text string, prompts *PromptBuilder) string {
	sentence := &book.Sentence{Index: 0, Text: text}
	prompt := prompts.Build([]*book.Sentence{sentence}, nil)

	reply, err := e.sendWithRetry(ctx, &Batch{
		Translate:       []*book.Sentence{sentence},
		Prompt:          prompt,
		EstimatedTokens: len(prompt) / charsPerToken,
	})
	if err != nil {
		e.logger.Errorf("Single-text translation failed: %v", err)
		return text
	}

	ParseReply(reply, []*book.Sentence{sentence}, e.logger)
	return sentence.FinalText()
}
