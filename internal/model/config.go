package model

import "time"

// Config is the complete, resolved configuration for a verification run.
// It is built once by the CLI and passed down by value/pointer; nothing below
// the CLI reads the environment.
type Config struct {
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Search       SearchConfig      `yaml:"search" mapstructure:"search"`
	Video        VideoConfig       `yaml:"video" mapstructure:"video"`
	Document     DocumentConfig    `yaml:"document" mapstructure:"document"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Authority    AuthorityConfig   `yaml:"authority" mapstructure:"authority"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls the evidence fetchers' HTTP behavior
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`               // Per tool call
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`         // Realistic browser identity
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"` // Response read cap
	MaxTextChars  int           `yaml:"max_text_chars" mapstructure:"max_text_chars"` // Cleaned text cap before truncation marker
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LLMConfig selects the reasoning backend used by every stage
type LLMConfig struct {
	Provider      string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic
	Model         string  `yaml:"model" mapstructure:"model"`
	APIKey        string  `yaml:"-" mapstructure:"api_key"` // From environment only, never written to disk
	BaseURL       string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout       int     `yaml:"timeout" mapstructure:"timeout"` // seconds, per backend call
	MaxTokens     int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature   float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxIterations int     `yaml:"max_iterations" mapstructure:"max_iterations"` // Tool-call rounds per stage
}

// SearchConfig configures the optional web search backend
type SearchConfig struct {
	APIKey     string `yaml:"-" mapstructure:"api_key"` // Presence enables the web search tool
	Endpoint   string `yaml:"endpoint" mapstructure:"endpoint"`
	NumResults int    `yaml:"num_results" mapstructure:"num_results"`
	Country    string `yaml:"country,omitempty" mapstructure:"country"`
	Language   string `yaml:"language,omitempty" mapstructure:"language"`
}

// VideoConfig configures the transcript fetcher
type VideoConfig struct {
	BaseURL   string   `yaml:"base_url" mapstructure:"base_url"`
	Languages []string `yaml:"languages" mapstructure:"languages"` // Caption language preference, in order
}

// DocumentConfig configures uploaded document decoding
type DocumentConfig struct {
	MaxBytes  int64    `yaml:"max_bytes" mapstructure:"max_bytes"`
	Encodings []string `yaml:"encodings" mapstructure:"encodings"` // Plain-text candidates, tried in order
}

// ConcurrencyConfig controls batch parallelism. A single run is always sequential.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitConfig controls per-domain request pacing for evidence fetches
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// AuthorityConfig drives source authority classification of search hits
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
	PathPatterns     []PathPattern     `yaml:"path_patterns,omitempty" mapstructure:"path_patterns"`
}

// PathPattern maps a URL path regex to an authority tier name
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tier    string `yaml:"tier" mapstructure:"tier"`
}

// OutputConfig controls report rendering and logging
type OutputConfig struct {
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool   `yaml:"include_footer" mapstructure:"include_footer"`
	LogFormat     string `yaml:"log_format" mapstructure:"log_format"` // console, json
}

// DefaultUserAgent mimics a desktop browser; several news sites refuse unknown agents
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    DefaultUserAgent,
			MaxBodyBytes: 5_000_000,
			MaxTextChars: 5000,
		},
		LLM: LLMConfig{
			Provider:      "openai",
			Model:         "gpt-4o-mini",
			Timeout:       120,
			MaxTokens:     2000,
			Temperature:   0.2,
			MaxIterations: 6,
		},
		Search: SearchConfig{
			Endpoint:   "https://google.serper.dev/search",
			NumResults: 8,
		},
		Video: VideoConfig{
			BaseURL:   "https://www.youtube.com",
			Languages: []string{"en"},
		},
		Document: DocumentConfig{
			MaxBytes:  20 << 20,
			Encodings: []string{"utf-8", "utf-16", "latin-1", "cp1252"},
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"who.int", "cdc.gov", "nih.gov", "europa.eu", "un.org",
				"doi.org", "nature.com", "science.org", "thelancet.com", "nejm.org",
				"legislation.gov.uk", "gov.uk", "arxiv.org", "pubmed.ncbi.nlm.nih.gov",
			},
			SecondaryDomains: []string{
				"wikipedia.org", "britannica.com", "reuters.com", "apnews.com", "bbc.co.uk",
				"bbc.com", "snopes.com", "politifact.com", "factcheck.org", "fullfact.org",
				"nytimes.com", "theguardian.com", "washingtonpost.com",
			},
		},
		Output: OutputConfig{
			IncludeFooter: true,
			LogFormat:     "console",
		},
	}
}

// HasLLMCredential reports whether a reasoning backend credential is configured
func (c *Config) HasLLMCredential() bool {
	return c.LLM.APIKey != ""
}

// HasSearchCredential reports whether the optional search backend is configured
func (c *Config) HasSearchCredential() bool {
	return c.Search.APIKey != ""
}
