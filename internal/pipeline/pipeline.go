// Package pipeline runs a research topic through search, extraction,
// ranking, synthesis, and report assembly as one cancellable operation.
package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/deepresearch-ai/deepresearch/internal/extract"
	"github.com/deepresearch-ai/deepresearch/internal/fetch"
	"github.com/deepresearch-ai/deepresearch/internal/llm"
	"github.com/deepresearch-ai/deepresearch/internal/rank"
	"github.com/deepresearch-ai/deepresearch/internal/report"
	"github.com/deepresearch-ai/deepresearch/internal/search"
	"github.com/deepresearch-ai/deepresearch/internal/synth"
)

// Orchestrator wires the run stages together. Construct with New for the
// default wiring, or populate the fields directly to substitute fakes.
type Orchestrator struct {
	Search    *search.Fetcher
	Extractor *extract.Extractor
	Synth     *synth.Synthesizer
	Config    Config
	Observer  Observer
}

// RunStats summarizes what happened to the candidate set during a run.
type RunStats struct {
	Discovered int
	Extracted  int
	Failed     int
	Skipped    int
	Selected   int
}

// RunResult is the successful outcome of a run. Failed runs return no
// partial result.
type RunResult struct {
	RunID  string
	Report report.Report
	Ranked []rank.Ranked
	Stats  RunStats
}

// New builds an Orchestrator from configuration with the default HTTP,
// search, extraction, and model wiring.
func New(cfg Config) (*Orchestrator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.PerSourceTimeout}
	fetcher := &fetch.Client{
		HTTPClient:        httpClient,
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       2,
		PerRequestTimeout: cfg.PerSourceTimeout,
		Limiter:           &fetch.HostLimiter{MinInterval: cfg.HostDelay},
	}

	return &Orchestrator{
		Search: &search.Fetcher{
			Provider: &search.SearxNG{
				BaseURL:    cfg.SearxURL,
				APIKey:     cfg.SearxKey,
				HTTPClient: httpClient,
				UserAgent:  cfg.UserAgent,
			},
		},
		Extractor: &extract.Extractor{
			Client:        fetcher,
			ContentLength: cfg.ContentLength,
			Timeout:       cfg.PerSourceTimeout,
		},
		Synth: &synth.Synthesizer{
			Client:  llm.New(cfg.LLMBaseURL, cfg.LLMAPIKey),
			Model:   cfg.LLMModel,
			Retries: cfg.SynthRetries,
		},
		Config: cfg,
	}, nil
}

// Run executes the full pipeline for one topic. The topic is validated
// before any network activity; cancellation of ctx aborts the current stage
// promptly. On failure the returned error carries the stage it happened in.
func (o *Orchestrator) Run(ctx context.Context, topic string) (*RunResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, o.fail(StageIdle, ErrEmptyTopic)
	}
	if len([]rune(topic)) > maxTopicChars {
		return nil, o.fail(StageIdle, ErrTopicTooLong)
	}

	cfg := o.Config
	cfg.ApplyDefaults()

	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()
	logger.Info().Str("topic", topic).Msg("run started")
	started := time.Now()

	o.emit(StageSearching, 0)
	candidates, err := o.Search.Fetch(ctx, topic, cfg.MaxResults)
	if err != nil {
		return nil, o.fail(StageSearching, err)
	}
	logger.Info().Int("candidates", len(candidates)).Msg("search complete")

	o.emit(StageExtracting, 0)
	sources, stats, err := o.extractAll(ctx, candidates)
	if err != nil {
		return nil, o.fail(StageExtracting, err)
	}
	logger.Info().
		Int("ok", stats.Extracted).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Msg("extraction complete")

	o.emit(StageRanking, 0)
	ranked := rank.Rank(topic, sources, rank.Options{
		MaxSources:    cfg.MaxSources,
		MinQualifying: cfg.MinQualifying,
	})
	if len(ranked) == 0 {
		return nil, o.fail(StageRanking, ErrInsufficientSources)
	}
	stats.Selected = len(ranked)
	logger.Info().Int("selected", len(ranked)).Msg("ranking complete")

	o.emit(StageSynthesizing, 0)
	result, err := o.Synth.Synthesize(ctx, topic, ranked)
	if err != nil {
		return nil, o.fail(StageSynthesizing, err)
	}

	o.emit(StageAssembling, 0)
	rep, err := report.Assemble(topic, result, ranked, time.Now().UTC())
	if err != nil {
		return nil, o.fail(StageAssembling, err)
	}

	o.emit(StageDone, 1)
	logger.Info().Dur("elapsed", time.Since(started)).Msg("run complete")
	return &RunResult{RunID: runID, Report: rep, Ranked: ranked, Stats: stats}, nil
}

// extractAll fans candidates out to a bounded worker pool. Results land in
// a slice addressed by discovery index, so downstream order never depends on
// completion order. One slow or failing source never blocks the batch; only
// context cancellation aborts it.
func (o *Orchestrator) extractAll(ctx context.Context, candidates []search.Result) ([]extract.Source, RunStats, error) {
	stats := RunStats{Discovered: len(candidates)}
	sources := make([]extract.Source, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency())
	var done atomic.Int64
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sources[i] = o.Extractor.Extract(gctx, c, i)
			o.emit(StageExtracting, float64(done.Add(1))/float64(len(candidates)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	for _, src := range sources {
		switch src.Status {
		case extract.StatusOK:
			stats.Extracted++
		case extract.StatusSkipped:
			stats.Skipped++
		default:
			stats.Failed++
			log.Debug().Str("url", src.URL).Str("reason", src.FailureReason).Msg("source dropped")
		}
	}
	return sources, stats, nil
}

func (o *Orchestrator) concurrency() int {
	if o.Config.ExtractionConcurrency > 0 {
		return o.Config.ExtractionConcurrency
	}
	return defaultExtractionConcurrency
}

// Classify maps a run error onto the coarse failure categories the CLI
// reports. It unwraps StageError transparently.
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyTopic), errors.Is(err, ErrTopicTooLong):
		return "invalid_topic"
	case errors.Is(err, search.ErrAllQueriesFailed):
		return "search_failed"
	case errors.Is(err, ErrInsufficientSources):
		return "insufficient_sources"
	case errors.Is(err, synth.ErrAuth):
		return "synthesis_auth"
	case isParseError(err):
		return "synthesis_parse"
	case isInvariantError(err):
		return "assembly_invariant"
	case isStage(err, StageSynthesizing):
		return "synthesis_transport"
	default:
		return "failed"
	}
}

func isParseError(err error) bool {
	var pe *synth.ParseError
	return errors.As(err, &pe)
}

func isInvariantError(err error) bool {
	var ie *report.InvariantError
	return errors.As(err, &ie)
}

func isStage(err error, stage Stage) bool {
	var se *StageError
	return errors.As(err, &se) && se.Stage == stage
}
