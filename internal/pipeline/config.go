package pipeline

import (
	"errors"
	"strings"
	"time"
)

// Config carries every knob a run needs. Zero values take documented
// defaults via ApplyDefaults; Validate catches what cannot be defaulted.
type Config struct {
	// SearxURL is the SearxNG instance base URL.
	SearxURL string
	// SearxKey is an optional API key for the SearxNG instance.
	SearxKey string
	// UserAgent is sent on search and page requests.
	UserAgent string

	// LLMBaseURL is an OpenAI-compatible endpoint base URL.
	LLMBaseURL string
	// LLMModel is the model name used for synthesis.
	LLMModel string
	// LLMAPIKey authenticates against the model endpoint.
	LLMAPIKey string

	// MaxResults caps candidates collected from search.
	MaxResults int
	// MaxSources caps sources selected for synthesis.
	MaxSources int
	// MinQualifying is the minimum number of usable sources required to
	// proceed to synthesis.
	MinQualifying int
	// ContentLength caps extracted characters per source.
	ContentLength int

	// PerSourceTimeout bounds one source's fetch and extraction.
	PerSourceTimeout time.Duration
	// ExtractionConcurrency bounds parallel extractions.
	ExtractionConcurrency int
	// HostDelay is the minimum interval between requests to one host.
	HostDelay time.Duration
	// SynthRetries is the retry count for transient synthesis failures.
	// Negative disables retrying; zero keeps the synthesizer default.
	SynthRetries int
}

const (
	defaultMaxResults            = 10
	defaultMaxSources            = 5
	defaultMinQualifying         = 1
	defaultContentLength         = 5000
	defaultPerSourceTimeout      = 15 * time.Second
	defaultExtractionConcurrency = 4
	defaultHostDelay             = 500 * time.Millisecond

	// maxTopicChars is the accepted ceiling for a research topic.
	maxTopicChars = 500
)

// ApplyDefaults fills unset fields in place.
func (c *Config) ApplyDefaults() {
	if c.MaxResults <= 0 {
		c.MaxResults = defaultMaxResults
	}
	if c.MaxSources <= 0 {
		c.MaxSources = defaultMaxSources
	}
	if c.MinQualifying <= 0 {
		c.MinQualifying = defaultMinQualifying
	}
	if c.ContentLength <= 0 {
		c.ContentLength = defaultContentLength
	}
	if c.PerSourceTimeout <= 0 {
		c.PerSourceTimeout = defaultPerSourceTimeout
	}
	if c.ExtractionConcurrency <= 0 {
		c.ExtractionConcurrency = defaultExtractionConcurrency
	}
	if c.HostDelay < 0 {
		c.HostDelay = defaultHostDelay
	}
	if c.UserAgent == "" {
		c.UserAgent = "deepresearch/1.0 (+https://github.com/deepresearch-ai/deepresearch)"
	}
}

// Validate reports the first configuration problem that defaults cannot
// paper over.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SearxURL) == "" {
		return errors.New("search base URL is required")
	}
	if strings.TrimSpace(c.LLMModel) == "" {
		return errors.New("model name is required")
	}
	if c.MinQualifying > c.MaxSources {
		return errors.New("minimum qualifying sources exceeds maximum sources")
	}
	return nil
}
