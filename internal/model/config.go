package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
	Provider  ProviderConfig  `yaml:"provider" mapstructure:"provider"`
	Segment   SegmentConfig   `yaml:"segment" mapstructure:"segment"`
	Runner    RunnerConfig    `yaml:"runner" mapstructure:"runner"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls outbound requests to the search provider
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// MatchMode selects how the "no results" marker is located in a response body
type MatchMode string

const (
	MatchLiteral MatchMode = "literal" // Plain substring match on the raw body
	MatchStrict  MatchMode = "strict"  // Visible text, alphanumerics only, on both sides
)

// ProviderConfig describes the search provider used as the originality oracle
type ProviderConfig struct {
	Endpoint        string    `yaml:"endpoint" mapstructure:"endpoint"`
	QueryParam      string    `yaml:"query_param" mapstructure:"query_param"`
	QueryPrefix     string    `yaml:"query_prefix" mapstructure:"query_prefix"`           // Prepended before the quoted phrase (e.g. "+")
	NoResultsMarker string    `yaml:"no_results_marker" mapstructure:"no_results_marker"` // Template, {query} is replaced by the unit text
	ResultsMarker   string    `yaml:"results_marker" mapstructure:"results_marker"`       // Raw fragment present on a results page (optional)
	MatchMode       MatchMode `yaml:"match_mode" mapstructure:"match_mode"`
	RespectRobots   bool      `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// SegmentConfig controls document segmentation
type SegmentConfig struct {
	FullSentence bool `yaml:"full_sentence" mapstructure:"full_sentence"`
	MinLength    int  `yaml:"min_length" mapstructure:"min_length"`
	MinWords     int  `yaml:"min_words" mapstructure:"min_words"`
	WindowSize   int  `yaml:"window_size" mapstructure:"window_size"`
}

// Strategy returns the configured segmentation strategy
func (c SegmentConfig) Strategy() Strategy {
	return StrategyFromFlag(c.FullSentence)
}

// RunnerConfig controls the check runner
type RunnerConfig struct {
	Yield time.Duration `yaml:"yield" mapstructure:"yield"` // Pause after each unit so collaborators can render and cancel
}

// RateLimitConfig throttles requests to the provider host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig controls the in-process verdict cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ServerConfig controls the HTTP collaborator
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// OutputConfig controls terminal and report output
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	Links         bool `yaml:"links" mapstructure:"links"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Mozilla/5.0 (compatible; Originality/0.1; +https://github.com/ppiankov/originality)",
			MaxBodyBytes: 4_000_000,
		},
		Provider: ProviderConfig{
			Endpoint:        "https://www.bing.com/search",
			QueryParam:      "q",
			QueryPrefix:     "+",
			NoResultsMarker: "There are no results for {query}",
			ResultsMarker:   "b_algo",
			MatchMode:       MatchStrict,
		},
		Segment: SegmentConfig{
			FullSentence: true,
			MinLength:    10,
			MinWords:     5,
			WindowSize:   10,
		},
		Runner: RunnerConfig{
			Yield: 10 * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             1,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8390",
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
