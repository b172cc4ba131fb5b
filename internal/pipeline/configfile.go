package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration schema. Nested sections map
// naturally to the flag namespace used by the CLI.
type FileConfig struct {
	Topic string `yaml:"topic" json:"topic"`

	Output struct {
		Dir     string   `yaml:"dir" json:"dir"`
		Formats []string `yaml:"formats" json:"formats"`
	} `yaml:"output" json:"output"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Searx struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
		UA  string `yaml:"ua" json:"ua"`
	} `yaml:"searx" json:"searx"`

	Max struct {
		Results       int `yaml:"results" json:"results"`
		Sources       int `yaml:"sources" json:"sources"`
		ContentChars  int `yaml:"contentChars" json:"contentChars"`
		MinQualifying int `yaml:"minQualifying" json:"minQualifying"`
	} `yaml:"max" json:"max"`

	Extraction struct {
		Concurrency int           `yaml:"concurrency" json:"concurrency"`
		Timeout     time.Duration `yaml:"timeout" json:"timeout"`
		HostDelay   time.Duration `yaml:"hostDelay" json:"hostDelay"`
	} `yaml:"extraction" json:"extraction"`

	Synth struct {
		Retries int `yaml:"retries" json:"retries"`
	} `yaml:"synth" json:"synth"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig based on extension,
// trying YAML first for unknown extensions.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if yerr := yaml.Unmarshal(b, &fc); yerr != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", yerr, jerr)
			}
		}
	}
	return fc, nil
}

// Merge overlays non-zero file values onto cfg and returns the result.
// Flags and environment keep precedence by being applied after the merge.
func (fc FileConfig) Merge(cfg Config) Config {
	if fc.Searx.URL != "" {
		cfg.SearxURL = fc.Searx.URL
	}
	if fc.Searx.Key != "" {
		cfg.SearxKey = fc.Searx.Key
	}
	if fc.Searx.UA != "" {
		cfg.UserAgent = fc.Searx.UA
	}
	if fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if fc.Max.Results > 0 {
		cfg.MaxResults = fc.Max.Results
	}
	if fc.Max.Sources > 0 {
		cfg.MaxSources = fc.Max.Sources
	}
	if fc.Max.MinQualifying > 0 {
		cfg.MinQualifying = fc.Max.MinQualifying
	}
	if fc.Max.ContentChars > 0 {
		cfg.ContentLength = fc.Max.ContentChars
	}
	if fc.Extraction.Concurrency > 0 {
		cfg.ExtractionConcurrency = fc.Extraction.Concurrency
	}
	if fc.Extraction.Timeout > 0 {
		cfg.PerSourceTimeout = fc.Extraction.Timeout
	}
	if fc.Extraction.HostDelay > 0 {
		cfg.HostDelay = fc.Extraction.HostDelay
	}
	if fc.Synth.Retries != 0 {
		cfg.SynthRetries = fc.Synth.Retries
	}
	return cfg
}
