package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for bulkcomplete
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulkcomplete",
		Short: "Answer and complete assessments in bulk",
		Long: `bulkcomplete loads the assessments of an audit (or your own assessments)
from the GRC backend, applies answers to their custom attributes from a
YAML or Markdown file, validates every assessment and submits a single
bulk completion request.

Configuration is loaded from .bulkcomplete/config.yaml if present.
Credentials may come from a .env file or the environment
(BULKCOMPLETE_BASE_URL, BULKCOMPLETE_API_TOKEN, BULKCOMPLETE_USER_EMAIL).
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default: .bulkcomplete/config.yaml)")
	flags.String("env-file", ".env", "Path to an env file with credentials")
	flags.String("base-url", "", "Backend base URL")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.String("log-dir", "", "Directory for log files")
	flags.Bool("my-assessments", false, "List your own assessments instead of an audit's")
	flags.String("parent", "", "Object the assessments are relevant to, as Type:ID (e.g. Audit:42)")

	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewCompleteCommand())
	cmd.AddCommand(NewTemplateCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
