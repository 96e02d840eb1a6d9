// Package batch renders prompt expansions end to end: expand the
// template, generate an image per expansion, save it, and record the
// generation. Item failures are collected, not raised; a run keeps going.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/jackzampolin/easel/internal/expand"
	"github.com/jackzampolin/easel/internal/imagefile"
	"github.com/jackzampolin/easel/internal/provider"
	"github.com/jackzampolin/easel/internal/store"
)

const (
	defaultAttempts   = 3
	defaultRetryDelay = 2 * time.Second
)

// Config configures a new Runner.
type Config struct {
	Store    *store.Store
	Provider provider.ImageProvider
	Files    *imagefile.Files
	Logger   *slog.Logger

	// Attempts is how many times each provider call is tried (default 3).
	Attempts int

	// RetryDelay is the base backoff between tries (default 2s). Rate
	// limit responses carrying a retry-after override it.
	RetryDelay time.Duration
}

// Runner drives generation batches against a provider and the store.
type Runner struct {
	store    *store.Store
	provider provider.ImageProvider
	files    *imagefile.Files
	logger   *slog.Logger
	attempts uint
	delay    time.Duration
}

// NewRunner creates a Runner from the config.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("image provider is required")
	}
	if cfg.Files == nil {
		return nil, fmt.Errorf("file store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	return &Runner{
		store:    cfg.Store,
		provider: cfg.Provider,
		files:    cfg.Files,
		logger:   logger.With("component", "batch"),
		attempts: uint(attempts),
		delay:    delay,
	}, nil
}

// Options selects what a run generates and how.
type Options struct {
	// Limit and Selections control combination expansion (see
	// expand.Options). Ignored when Random is set.
	Limit      int
	Selections map[string][]string

	// Random renders Count items, each resolving placeholders with
	// independent random pool draws instead of enumerating combinations.
	Random bool
	Count  int

	// Seed makes random draws reproducible; zero uses a time seed.
	Seed int64

	// Request parameters forwarded to the provider.
	Size    string
	Quality string
	Style   string
	Model   string

	// DryRun expands and reports the prompts without calling the
	// provider or writing anything.
	DryRun bool
}

// ProgressFunc is called before each item is rendered. Index counts from 1.
type ProgressFunc func(index, total int)

// ItemResult is the outcome of one rendered expansion.
type ItemResult struct {
	Index        int            `json:"index"`
	Prompt       string         `json:"prompt"`
	Outcome      expand.Outcome `json:"outcome"`
	ImagePath    string         `json:"image_path,omitempty"`
	GenerationID int64          `json:"generation_id,omitempty"`
	TokenUsage   int            `json:"token_usage,omitempty"`
	CostUSD      float64        `json:"cost_usd,omitempty"`
	Success      bool           `json:"success"`
	ErrorMessage string         `json:"error,omitempty"`
}

// Report summarizes a completed (or cancelled) run.
type Report struct {
	RunID       string        `json:"run_id"`
	Template    string        `json:"template"`
	Total       int           `json:"total"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	DryRun      bool          `json:"dry_run,omitempty"`
	TotalTokens int           `json:"total_tokens"`
	TotalCost   float64       `json:"total_cost"`
	Elapsed     time.Duration `json:"elapsed"`
	Items       []ItemResult  `json:"items"`
}

// Run expands text and renders every expansion. The context is checked
// between items; cancelling stops the run and returns the partial report
// with the context error. Individual item failures are recorded in the
// report and do not stop the run.
func (r *Runner) Run(ctx context.Context, text string, opts Options, progress ProgressFunc) (*Report, error) {
	var rng *rand.Rand
	if opts.Seed != 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	}
	expander := expand.NewExpander(r.store, rng)

	var (
		seq *expand.Sequence
		err error
	)
	if opts.Random {
		seq, err = expander.ExpandRandom(text, opts.Count)
	} else {
		seq, err = expander.Expand(text, expand.Options{
			Limit:      opts.Limit,
			Selections: opts.Selections,
		})
	}
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:    uuid.New().String(),
		Template: text,
		Total:    seq.Total(),
		DryRun:   opts.DryRun,
		Items:    make([]ItemResult, 0, seq.Total()),
	}
	start := time.Now()
	r.logger.Info("batch started",
		"run_id", report.RunID, "total", report.Total, "dry_run", opts.DryRun)

	for seq.Next() {
		if err := ctx.Err(); err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}

		item := seq.Item()
		if progress != nil {
			progress(item.Index, report.Total)
		}

		result := r.renderItem(ctx, item, opts)
		if result.Success {
			report.Succeeded++
			report.TotalTokens += result.TokenUsage
			report.TotalCost += result.CostUSD
		} else {
			report.Failed++
			r.logger.Warn("batch item failed",
				"run_id", report.RunID, "index", item.Index, "error", result.ErrorMessage)
		}
		report.Items = append(report.Items, result)
	}

	report.Elapsed = time.Since(start)
	r.logger.Info("batch finished",
		"run_id", report.RunID,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"cost_usd", report.TotalCost,
		"elapsed", report.Elapsed)
	return report, nil
}

// renderItem generates, saves, and records a single expansion.
func (r *Runner) renderItem(ctx context.Context, item expand.Expansion, opts Options) ItemResult {
	result := ItemResult{
		Index:   item.Index,
		Prompt:  item.Text,
		Outcome: item.Outcome,
	}

	if opts.DryRun {
		result.Success = true
		return result
	}

	gen, err := r.generateWithRetry(ctx, item.Text, opts)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	path, err := r.files.Save(gen.Data, item.Text)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("saving image: %v", err)
		return result
	}
	result.ImagePath = path

	prompt, err := r.store.AddPrompt(item.Text)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("recording prompt: %v", err)
		return result
	}

	rec, err := r.store.RecordGeneration(store.GenerationRecord{
		PromptID:  prompt.ID,
		ImagePath: path,
		Params: store.GenerationParams{
			Size:    opts.Size,
			Model:   gen.ModelUsed,
			Quality: opts.Quality,
			Style:   opts.Style,
		},
		TokenUsage: gen.TokenEstimate,
		Cost:       gen.CostUSD,
	})
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("recording generation: %v", err)
		return result
	}

	result.GenerationID = rec.ID
	result.TokenUsage = gen.TokenEstimate
	result.CostUSD = gen.CostUSD
	result.Success = true
	return result
}

// generateWithRetry calls the provider, retrying transient failures with
// backoff. Rate limit waits advertised by the provider take precedence
// over the configured delay.
func (r *Runner) generateWithRetry(ctx context.Context, prompt string, opts Options) (*provider.ImageResult, error) {
	var out *provider.ImageResult
	err := retry.Do(
		func() error {
			res, err := r.provider.Generate(ctx, &provider.ImageRequest{
				Prompt:  prompt,
				Model:   opts.Model,
				Size:    opts.Size,
				Quality: opts.Quality,
				Style:   opts.Style,
			})
			if err != nil {
				return err
			}
			out = res
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			if rle, ok := provider.IsRateLimitError(err); ok && rle.RetryAfter > 0 {
				return rle.RetryAfter
			}
			return retry.BackOffDelay(n, err, config)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}
