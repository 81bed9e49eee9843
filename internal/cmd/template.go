package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/bulkcomplete/internal/answers"
	"github.com/harrison/bulkcomplete/internal/display"
	"github.com/harrison/bulkcomplete/internal/filelock"
)

// NewTemplateCommand creates the 'bulkcomplete template' command
func NewTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an answers file for the listed assessments",
		Long: `Write a YAML answers skeleton for every listed assessment, pre-filled with
the current answers. Each attribute carries a comment with its type, whether
it is mandatory and the options it accepts.

Edit the file and pass it to 'bulkcomplete complete --answers'.

Examples:
  bulkcomplete template --parent Audit:42 > answers.yaml
  bulkcomplete template --out answers.yaml --force`,
		Args: cobra.NoArgs,
		RunE: runTemplate,
	}

	cmd.Flags().StringP("out", "o", "", "Write to this file instead of stdout")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")

	return cmd
}

func runTemplate(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	agg := s.aggregator(nil, false)
	defer agg.Close()

	if err := agg.LoadItems(cmd.Context()); err != nil {
		return err
	}
	if agg.IsGridEmpty() {
		display.WarnEmptyGrid().Display(cmd.ErrOrStderr())
		return nil
	}

	data, err := answers.Template(snapshots(agg))
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := filelock.WriteNew(outPath, data, force); err != nil {
		return err
	}
	s.log.LogInfo(fmt.Sprintf("Wrote answers template for %d assessment(s) to %s", len(agg.Rows()), outPath))
	return nil
}
