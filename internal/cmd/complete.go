package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/bulkcomplete/internal/answers"
	"github.com/harrison/bulkcomplete/internal/bulk"
	"github.com/harrison/bulkcomplete/internal/display"
	"github.com/harrison/bulkcomplete/internal/filelock"
	"github.com/harrison/bulkcomplete/internal/models"
	"github.com/harrison/bulkcomplete/internal/validation"
)

// errNothingReady is returned when completion is requested but no assessment is ready.
var errNothingReady = errors.New("no assessment is ready to complete")

// NewCompleteCommand creates the 'bulkcomplete complete' command
func NewCompleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Apply answers and complete the ready assessments",
		Long: `Apply an answers file to the listed assessments and submit one bulk
completion request for every assessment that is ready. Answers given to
assessments that are not ready are saved without completing them.

The answers file is YAML or Markdown (see 'bulkcomplete template').
A confirmation is asked before submitting unless --yes is given.

Examples:
  bulkcomplete complete --answers answers.yaml
  bulkcomplete complete --answers answers.md --yes
  bulkcomplete complete --answers answers.yaml --dry-run
  bulkcomplete complete --answers answers.yaml --save-only`,
		Args: cobra.NoArgs,
		RunE: runComplete,
	}

	cmd.Flags().StringP("answers", "a", "", "Answers file (.yaml, .yml, .md)")
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().Bool("save-only", false, "Save the answers without completing any assessment")
	cmd.Flags().Bool("dry-run", false, "Print the request that would be sent and exit")
	cmd.Flags().Bool("no-wait", false, "Do not wait for the background task to finish")

	return cmd
}

func runComplete(cmd *cobra.Command, args []string) error {
	answersPath, _ := cmd.Flags().GetString("answers")
	assumeYes, _ := cmd.Flags().GetBool("yes")
	saveOnly, _ := cmd.Flags().GetBool("save-only")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noWait, _ := cmd.Flags().GetBool("no-wait")

	var doc *answers.Document
	if answersPath != "" {
		var err error
		doc, err = answers.Load(answersPath)
		if err != nil {
			return err
		}
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if !dryRun {
		lock, err := filelock.AcquireSubmissionLock(s.cfg.LockPath)
		if err != nil {
			return err
		}
		defer lock.Unlock()
	}

	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	prompter := display.NewPrompter(cmd.InOrStdin(), errOut, assumeYes)
	agg := s.aggregator(prompter, !noWait)
	defer agg.Close()

	if err := agg.LoadItems(ctx); err != nil {
		return err
	}
	if agg.IsGridEmpty() {
		display.WarnEmptyGrid().Display(errOut)
		return nil
	}

	if doc != nil {
		applyAnswers(agg, doc, errOut)
	}

	rows := snapshots(agg)
	printer := display.NewGridPrinter(out)
	printer.ShowBlockers = true
	printer.Print(rows)
	s.log.LogReadiness(agg.CountReadyToComplete(), len(rows))

	if dryRun {
		return printPayload(out, agg.BuildCompletionPayload(saveOnly))
	}

	if saveOnly {
		if len(agg.BuildCompletionPayload(true).Attributes) == 0 {
			fmt.Fprintln(out, "No changed answers to save.")
			return nil
		}
		taskID, err := agg.SaveAnswers(ctx)
		if err != nil {
			return err
		}
		return finishSubmission(s, out, taskID, noWait)
	}

	if !agg.IsCompleteEnabled() {
		report := validation.Report(rows)
		items := make([]string, len(report.Errors))
		for i, e := range report.Errors {
			items[i] = e.Error()
		}
		display.Warning{
			Title:      "No Assessment Is Ready To Complete",
			Items:      items,
			Suggestion: "Answer the listed attributes, or use --save-only to keep the answers given so far",
		}.Display(errOut)
		return errNothingReady
	}

	confirmed, err := agg.OnCompleteClick(ctx)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(out, "Completion cancelled.")
		return nil
	}
	return finishSubmission(s, out, agg.LastTaskID(), noWait)
}

// applyAnswers feeds doc into the loaded rows and warns about answers that
// could not be applied.
func applyAnswers(agg *bulk.Aggregator, doc *answers.Document, w io.Writer) {
	progress := display.NewProgressIndicator(w, len(doc.Entries))
	progress.Start()
	result := answers.Apply(agg, doc, progress.Step)
	progress.Complete()

	if len(result.Errors) > 0 {
		display.Warning{
			Title:      "Some Answers Were Not Applied",
			Message:    fmt.Sprintf("%d answer(s) were skipped.", len(result.Errors)),
			Items:      result.Messages(),
			Suggestion: "Fix the answers file and run the command again",
		}.Display(w)
	}
}

// finishSubmission reports the task id and, unless noWait, waits for the
// background task to end.
func finishSubmission(s *session, out io.Writer, taskID int64, noWait bool) error {
	if taskID == 0 {
		return nil
	}
	fmt.Fprintf(out, "Background task: %d\n", taskID)
	if noWait {
		fmt.Fprintf(out, "Check it with: bulkcomplete status %d --wait\n", taskID)
		return nil
	}
	err := s.wait()
	if errors.Is(err, models.ErrTrackingLost) {
		fmt.Fprintf(out, "Check it with: bulkcomplete status %d --wait\n", taskID)
	}
	return err
}

func printPayload(w io.Writer, payload models.CompletionRequest) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
