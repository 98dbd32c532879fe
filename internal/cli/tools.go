package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/verifact/internal/logging"
	"github.com/ppiankov/verifact/internal/model"
	"github.com/ppiankov/verifact/internal/pipeline"
	"github.com/ppiankov/verifact/internal/tools"
)

// toolsCmd represents the tools command
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List evidence tools and which stages use them",
	Long: `Tools shows every evidence tool, whether it is available with the current
configuration, and which analysis stages may call it.

The web search tool is only available when SERPER_API_KEY is set.`,
	Args: cobra.NoArgs,
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.Must(cfg.Output.Verbose, cfg.Output.LogFormat)

	set, err := tools.BuildSet(cfg, tools.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("build tools: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔧 Evidence tools:")
	for _, id := range []model.ToolID{model.ToolVideoTranscript, model.ToolWebPage, model.ToolWebSearch} {
		t, ok := set.Get(id)
		if !ok {
			fmt.Fprintf(out, "  ✗ %s: disabled (set SERPER_API_KEY to enable)\n", id)
			continue
		}
		spec := t.Spec()
		fmt.Fprintf(out, "  ✓ %s (%s): %s\n", spec.Name, spec.ID, spec.Description)
		fmt.Fprintf(out, "      argument: %s - %s\n", spec.Argument, spec.ArgumentDoc)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Stages:")
	for i, st := range pipeline.DefaultStages() {
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, st.Name, st.Role)
		if len(st.RequiredTools) > 0 {
			fmt.Fprintf(out, "      requires: %v\n", st.RequiredTools)
		}
		if len(st.PreferredTools) > 0 {
			fmt.Fprintf(out, "      prefers:  %v\n", st.PreferredTools)
		}
	}

	return nil
}
