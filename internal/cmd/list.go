package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/bulkcomplete/internal/bulk"
	"github.com/harrison/bulkcomplete/internal/display"
	"github.com/harrison/bulkcomplete/internal/models"
)

// NewListCommand creates the 'bulkcomplete list' command
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the assessments that can be completed",
		Long: `List the assessments in a completable status (Not Started, In Progress,
Rework Needed) together with their readiness.

An assessment is ready when every applicable custom attribute has a valid
answer, including the comment, evidence or URL its dropdown answer requires.

Examples:
  bulkcomplete list --parent Audit:42
  bulkcomplete list --my-assessments --blockers
  bulkcomplete list --count`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().Bool("count", false, "Only print the number of assessments eligible for completion")
	cmd.Flags().Bool("blockers", false, "Show the attributes that keep each assessment from being ready")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	rows := snapshots(agg)

	if count, _ := cmd.Flags().GetBool("count"); count {
		fmt.Fprintln(out, len(rows))
		return nil
	}

	if agg.IsGridEmpty() {
		display.WarnEmptyGrid().Display(cmd.ErrOrStderr())
		return nil
	}

	printer := display.NewGridPrinter(out)
	printer.ShowBlockers, _ = cmd.Flags().GetBool("blockers")
	printer.Print(rows)
	s.log.LogReadiness(agg.CountReadyToComplete(), len(rows))
	return nil
}

// snapshots copies the current state of every loaded row.
func snapshots(agg *bulk.Aggregator) []models.Row {
	states := agg.Rows()
	rows := make([]models.Row, len(states))
	for i, r := range states {
		rows[i] = r.Row()
	}
	return rows
}
