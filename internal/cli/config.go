package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/verifact/internal/llm"
	"github.com/ppiankov/verifact/internal/model"
)

const configHeader = `# VeriFact configuration
#
# Precedence: flags > VERIFACT_* environment > this file > defaults.
# Credentials are read from the environment only and never stored here:
#   OPENAI_API_KEY or ANTHROPIC_API_KEY  reasoning backend (required)
#   SERPER_API_KEY                       web search tool (optional)

`

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the VeriFact configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Long:  `Print the configuration a check would run with. Credentials are reported as set or missing, never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return showConfig(cmd.OutOrStdout(), cfg, viper.ConfigFileUsed())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to ~/.verifact/config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}
		path := filepath.Join(home, ".verifact", "config.yaml")
		if err := initConfigFile(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// showConfig prints cfg as YAML followed by the credential state of each backend
func showConfig(w io.Writer, cfg *model.Config, configFile string) error {
	if configFile == "" {
		configFile = "none (defaults)"
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	fmt.Fprintf(w, "# source: %s\n", configFile)
	_, _ = w.Write(data)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-18s %s\n", llm.APIKeyEnv(cfg.LLM.Provider)+":", credentialState(cfg.HasLLMCredential()))
	fmt.Fprintf(w, "%-18s %s\n", "SERPER_API_KEY:", credentialState(cfg.HasSearchCredential()))
	return nil
}

// initConfigFile writes the default configuration to path, refusing to overwrite
func initConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("check config file: %w", err)
	}

	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(configHeader)
	buf.Write(data)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func credentialState(set bool) string {
	if set {
		return "set"
	}
	return "missing"
}
