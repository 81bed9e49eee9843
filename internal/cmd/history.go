package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/bulkcomplete/internal/history"
)

// NewHistoryCommand creates the 'bulkcomplete history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the submitted completion and save requests",
		Long: `Show the requests submitted from this machine, newest first:
  - Kind (complete or save) and background task id
  - Assessments sent and number of answers
  - Outcome of the background task`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of submissions to show (0 = all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	output := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		fmt.Fprintln(output, "Submission history is disabled (history.enabled: false).")
		return nil
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(output, "No submissions recorded yet.")
		return nil
	}

	printHistory(output, records, time.Now())
	return nil
}

// printHistory formats the submissions, newest first.
func printHistory(w io.Writer, records []*history.Record, now time.Time) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(w, "\n=== Submission History (%d) ===\n\n", len(records))

	for _, rec := range records {
		cyan.Fprintf(w, "#%d %s", rec.ID, rec.Kind)
		if rec.TaskID != 0 {
			fmt.Fprintf(w, "  task %d", rec.TaskID)
		}
		fmt.Fprintln(w)

		fmt.Fprintf(w, "  Time: %s ", formatTimestamp(rec.CreatedAt.Local()))
		gray.Fprintf(w, "(%s ago)\n", formatDuration(now.Sub(rec.CreatedAt)))

		fmt.Fprintf(w, "  Assessments: %s\n", joinIDs(rec.AssessmentIDs))
		fmt.Fprintf(w, "  Answers: %d\n", rec.Attributes)

		fmt.Fprint(w, "  Status: ")
		switch rec.Status {
		case history.StatusSucceeded:
			green.Fprintln(w, rec.Status)
		case history.StatusFailed:
			red.Fprintln(w, rec.Status)
		default:
			yellow.Fprintln(w, rec.Status)
		}
		if rec.FinishedAt != nil {
			fmt.Fprintf(w, "  Finished after: %s\n", formatDuration(rec.FinishedAt.Sub(rec.CreatedAt)))
		}
		if rec.Error != "" {
			red.Fprintf(w, "  Error: %s\n", rec.Error)
		}
		gray.Fprintf(w, "  Request: %s\n\n", rec.RequestID)
	}
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatDuration formats a duration for human-readable display
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	days := int(d.Hours() / 24)
	return fmt.Sprintf("%dd", days)
}
