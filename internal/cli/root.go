package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/originality/internal/model"
)

// version is overridden at build time with -ldflags "-X .../internal/cli.version=..."
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	noCache bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "originality",
	Short: "Originality - check how much of a text already exists on the web",
	Long: `Originality splits a document into sentences (or fixed 10-word windows) and
asks a web search provider for an exact-phrase match of each one.

A unit is reported as plagiarised when the provider returns results for it and as
original when it reports none. The final figure is the share of original units.

A search hit is not proof of copying: common phrases and quotations match too.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("originality %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.originality/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.Bool("full-sentence", true, "split on sentences; --full-sentence=false uses fixed 10-word windows")
	flags.String("ua", "", "HTTP User-Agent sent to the search provider")
	flags.Bool("insecure", false, "skip TLS certificate verification")
	flags.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	flags.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	flags.Float64("rps", 0, "max search requests per second")
	flags.Bool("respect-robots", false, "honour the provider's robots.txt")
	flags.BoolVar(&noCache, "no-cache", false, "disable the in-memory verdict cache")

	bindings := map[string]string{
		"output.verbose":                 "verbose",
		"segment.full_sentence":          "full-sentence",
		"http.user_agent":                "ua",
		"http.insecure_tls":              "insecure",
		"http.http_proxy":                "http-proxy",
		"http.https_proxy":               "https-proxy",
		"rate_limit.requests_per_second": "rps",
		"provider.respect_robots":        "respect-robots",
	}
	for key, name := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and ENV variables
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) && verbose {
		fmt.Fprintf(os.Stderr, "Warning: .env: %v\n", err)
	}

	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".originality"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// ORIGINALITY_PROVIDER_ENDPOINT overrides provider.endpoint, and so on
	viper.SetEnvPrefix("ORIGINALITY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env vars and Unmarshal can see it
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.max_body_bytes", d.HTTP.MaxBodyBytes)
	v.SetDefault("http.insecure_tls", d.HTTP.InsecureTLS)
	v.SetDefault("http.http_proxy", d.HTTP.HTTPProxy)
	v.SetDefault("http.https_proxy", d.HTTP.HTTPSProxy)
	v.SetDefault("http.no_proxy", d.HTTP.NoProxy)

	v.SetDefault("provider.endpoint", d.Provider.Endpoint)
	v.SetDefault("provider.query_param", d.Provider.QueryParam)
	v.SetDefault("provider.query_prefix", d.Provider.QueryPrefix)
	v.SetDefault("provider.no_results_marker", d.Provider.NoResultsMarker)
	v.SetDefault("provider.results_marker", d.Provider.ResultsMarker)
	v.SetDefault("provider.match_mode", string(d.Provider.MatchMode))
	v.SetDefault("provider.respect_robots", d.Provider.RespectRobots)

	v.SetDefault("segment.full_sentence", d.Segment.FullSentence)
	v.SetDefault("segment.min_length", d.Segment.MinLength)
	v.SetDefault("segment.min_words", d.Segment.MinWords)
	v.SetDefault("segment.window_size", d.Segment.WindowSize)

	v.SetDefault("runner.yield", d.Runner.Yield)

	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("server.addr", d.Server.Addr)

	v.SetDefault("output.verbose", d.Output.Verbose)
	v.SetDefault("output.links", d.Output.Links)
	v.SetDefault("output.include_footer", d.Output.IncludeFooter)
}

// loadConfig resolves flags, env, config file and defaults into a model.Config
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}
