package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/bulkcomplete/internal/api"
	"github.com/harrison/bulkcomplete/internal/models"
)

// NewStatusCommand creates the 'bulkcomplete status' command
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <task-id>",
		Short: "Show the status of a background task",
		Long: `Show the status of the background task started by a completion or
save request. With --wait the task is polled until it finishes and the
submission history is updated.`,
		Args: cobra.ExactArgs(1),
		RunE: runStatus,
	}

	cmd.Flags().Bool("wait", false, "Poll until the task finishes")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	taskID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || taskID <= 0 {
		return fmt.Errorf("invalid task id %q", args[0])
	}
	wait, _ := cmd.Flags().GetBool("wait")

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	var task models.BackgroundTask
	var pollErr error
	if wait {
		task, pollErr = s.tracker.Poll(ctx, taskID)
	} else {
		task, pollErr = s.client.TaskStatus(ctx, taskID)
	}

	kind := "task"
	if s.history != nil {
		if rec, err := s.history.FindByTask(ctx, taskID); err == nil {
			kind = rec.Kind
		}
	}

	if task.Status != "" {
		printTaskStatus(cmd, taskID, task.Status)
	}
	if task.Status == models.TaskStatusFailure && pollErr == nil {
		pollErr = fmt.Errorf("task %d: %w", taskID, api.ErrTaskFailed)
	}
	if task.IsFinished() {
		s.finishTask(kind, taskID, pollErr)
	}
	return pollErr
}

func printTaskStatus(cmd *cobra.Command, taskID int64, status string) {
	c := color.New(color.FgYellow)
	switch status {
	case models.TaskStatusSuccess:
		c = color.New(color.FgGreen)
	case models.TaskStatusFailure:
		c = color.New(color.FgRed)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d: ", taskID)
	c.Fprintln(cmd.OutOrStdout(), status)
}
