package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/verifact/internal/llm"
	"github.com/ppiankov/verifact/internal/model"
)

// Version is set at build time via -ldflags
var Version = "v0.1.0"

var (
	cfgFile       string
	envFile       string
	verbose       bool
	logFormat     string
	llmProvider   string
	llmModel      string
	runTimeout    time.Duration
	respectRobots bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "verifact",
	Short: "VeriFact - multi-stage claim verification",
	Long: `VeriFact checks a claim, web page, YouTube video or document by running it
through three analysis stages:

  1. Research          - identify claims and gather evidence
  2. Content analysis  - examine context, framing and verifiability
  3. Verification      - cross-check sources and state a verdict

Each stage is driven by an LLM that can fetch web pages, video transcripts
and (when SERPER_API_KEY is set) web search results. The final report is
mapped to one of TRUE, MOSTLY TRUE, MISLEADING, MOSTLY FALSE, FALSE,
INCONCLUSIVE or NEEDS REVIEW.`,
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
	Long:  `Display the version number and build information for VeriFact.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "verifact %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.verifact/config.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	flags.StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic)")
	flags.StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
	flags.DurationVar(&runTimeout, "timeout", 5*time.Minute, "overall timeout for one verification")
	flags.BoolVar(&respectRobots, "respect-robots", false, "honor robots.txt when fetching web pages")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("output.log_format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("llm.provider", flags.Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", flags.Lookup("llm-model"))
	_ = viper.BindPFlag("http.respect_robots", flags.Lookup("respect-robots"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in the dotenv file, config file and ENV variables
func initConfig() {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", envFile, err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.verifact")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match VERIFACT_*, e.g. VERIFACT_LLM_MODEL
	viper.SetEnvPrefix("VERIFACT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{
		"llm.base_url", "llm.max_iterations", "http.timeout", "http.user_agent",
		"http.http_proxy", "http.https_proxy", "http.no_proxy",
		"search.endpoint", "concurrency.workers", "output.include_footer",
	} {
		_ = viper.BindEnv(key)
	}

	// Credentials keep their conventional names
	_ = viper.BindEnv("credentials.openai", "OPENAI_API_KEY")
	_ = viper.BindEnv("credentials.anthropic", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("credentials.serper", "SERPER_API_KEY")

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig resolves flags > env > config file > defaults into one Config.
// Nothing below the CLI reads the environment.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	switch llm.APIKeyEnv(cfg.LLM.Provider) {
	case "ANTHROPIC_API_KEY":
		cfg.LLM.APIKey = viper.GetString("credentials.anthropic")
		if !rootCmd.PersistentFlags().Changed("llm-model") && cfg.LLM.Model == model.DefaultConfig().LLM.Model {
			// The OpenAI default model means nothing to Anthropic; let the provider pick
			cfg.LLM.Model = ""
		}
	default:
		cfg.LLM.APIKey = viper.GetString("credentials.openai")
	}
	cfg.Search.APIKey = viper.GetString("credentials.serper")

	return cfg, nil
}
