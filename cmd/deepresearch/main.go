package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/deepresearch-ai/deepresearch/internal/pipeline"
	"github.com/deepresearch-ai/deepresearch/internal/render"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		topic       string
		configPath  string
		outputDir   string
		formats     string
		searxURL    string
		searxKey    string
		searxUA     string
		llmBaseURL  string
		llmModel    string
		llmKey      string
		maxResults  int
		maxSources  int
		minSources  int
		perChars    int
		concurrency int
		perTimeout  time.Duration
		hostDelay   time.Duration
		synthRetry  int
		verbose     bool
	)

	flag.StringVar(&topic, "topic", os.Getenv("RESEARCH_TOPIC"), "Research topic to investigate")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "Path to YAML or JSON config file")
	flag.StringVar(&outputDir, "output.dir", ".", "Directory to write report files into")
	flag.StringVar(&formats, "output.formats", "md", "Comma-separated output formats: md, html, pdf")
	flag.StringVar(&searxURL, "searx.url", os.Getenv("SEARX_URL"), "SearxNG base URL")
	flag.StringVar(&searxKey, "searx.key", os.Getenv("SEARX_KEY"), "SearxNG API key (optional)")
	flag.StringVar(&searxUA, "searx.ua", "", "Custom User-Agent for outbound requests")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Model name")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for OpenAI-compatible server")
	flag.IntVar(&maxResults, "max.results", 0, "Maximum search candidates to collect")
	flag.IntVar(&maxSources, "max.sources", 0, "Maximum sources selected for synthesis")
	flag.IntVar(&minSources, "min.sources", 0, "Minimum usable sources required to proceed")
	flag.IntVar(&perChars, "max.contentChars", 0, "Maximum characters extracted per source")
	flag.IntVar(&concurrency, "extract.concurrency", 0, "Parallel extraction workers")
	flag.DurationVar(&perTimeout, "extract.timeout", 0, "Per-source fetch and extraction timeout")
	flag.DurationVar(&hostDelay, "extract.hostDelay", 0, "Minimum interval between requests to one host")
	flag.IntVar(&synthRetry, "synth.retries", 0, "Retries for transient synthesis failures (-1 disables)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if topic == "" && flag.NArg() > 0 {
		topic = strings.Join(flag.Args(), " ")
	}

	cfg := pipeline.Config{}
	if configPath != "" {
		fc, err := pipeline.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("load config file")
			os.Exit(2)
		}
		cfg = fc.Merge(cfg)
		if topic == "" {
			topic = fc.Topic
		}
		if fc.Output.Dir != "" && outputDir == "." {
			outputDir = fc.Output.Dir
		}
		if len(fc.Output.Formats) > 0 && formats == "md" {
			formats = strings.Join(fc.Output.Formats, ",")
		}
	}

	// Flags and environment take precedence over the config file.
	overlayString(&cfg.SearxURL, searxURL)
	overlayString(&cfg.SearxKey, searxKey)
	overlayString(&cfg.UserAgent, searxUA)
	overlayString(&cfg.LLMBaseURL, llmBaseURL)
	overlayString(&cfg.LLMModel, llmModel)
	overlayString(&cfg.LLMAPIKey, llmKey)
	overlayInt(&cfg.MaxResults, maxResults)
	overlayInt(&cfg.MaxSources, maxSources)
	overlayInt(&cfg.MinQualifying, minSources)
	overlayInt(&cfg.ContentLength, perChars)
	overlayInt(&cfg.ExtractionConcurrency, concurrency)
	if perTimeout > 0 {
		cfg.PerSourceTimeout = perTimeout
	}
	if hostDelay > 0 {
		cfg.HostDelay = hostDelay
	}
	if synthRetry != 0 {
		cfg.SynthRetries = synthRetry
	}
	cfg.ApplyDefaults()

	if strings.TrimSpace(topic) == "" {
		fmt.Fprintln(os.Stderr, "usage: deepresearch -topic \"...\" [flags] (see -h)")
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(2)
	}

	if err := run(cfg, topic, outputDir, splitFormats(formats)); err != nil {
		log.Error().Err(err).Str("category", pipeline.Classify(err)).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg pipeline.Config, topic, outputDir string, formats []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}
	orch.Observer = func(stage pipeline.Stage, fraction float64) {
		log.Debug().Stringer("stage", stage).Float64("fraction", fraction).Msg("progress")
	}

	res, err := orch.Run(ctx, topic)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	base := filepath.Join(outputDir, render.SanitizeFilename(topic))
	for _, format := range formats {
		if err := writeReport(res, base, format); err != nil {
			return err
		}
	}
	log.Info().
		Str("run_id", res.RunID).
		Int("sources", len(res.Report.Bibliography)).
		Msg("report written")
	return nil
}

func writeReport(res *pipeline.RunResult, base, format string) error {
	switch format {
	case "md", "markdown":
		return writeFile(base+".md", []byte(render.Markdown(res.Report)))
	case "html":
		out, err := render.HTML(res.Report)
		if err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		return writeFile(base+".html", []byte(out))
	case "pdf":
		if err := render.PDF(res.Report, base+".pdf"); err != nil {
			return fmt.Errorf("render pdf: %w", err)
		}
		log.Info().Str("path", base+".pdf").Msg("wrote report")
		return nil
	default:
		return errors.New("unknown output format: " + format)
	}
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("wrote report")
	return nil
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func splitFormats(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.ToLower(strings.TrimSpace(p)); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		out = []string{"md"}
	}
	return out
}
