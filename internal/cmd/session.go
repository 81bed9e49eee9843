package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/bulkcomplete/internal/api"
	"github.com/harrison/bulkcomplete/internal/bulk"
	"github.com/harrison/bulkcomplete/internal/config"
	"github.com/harrison/bulkcomplete/internal/history"
	"github.com/harrison/bulkcomplete/internal/logger"
	"github.com/harrison/bulkcomplete/internal/models"
	"github.com/harrison/bulkcomplete/internal/validation"
)

// session wires the configured collaborators of one command run.
type session struct {
	cfg     *config.Config
	log     logger.Logger
	client  *api.Client
	tracker *api.Tracker
	history *history.Store // nil when history is disabled

	fileLog *logger.FileLogger
	started map[int64]time.Time

	mu      sync.Mutex
	taskErr error // first failed tracked task
}

// loadConfig resolves the configuration from the config file, the env file,
// the environment and the persistent flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}

	home, err := config.GetHome()
	if err != nil {
		return nil, err
	}

	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfig(filepath.Join(home, "config.yaml"))
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg.ApplyEnv()

	var baseURLPtr, logLevelPtr, logDirPtr *string
	var myPtr *bool
	var parentPtr *models.ObjectRef
	if cmd.Flags().Changed("base-url") {
		v, _ := cmd.Flags().GetString("base-url")
		baseURLPtr = &v
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		logDirPtr = &v
	}
	if cmd.Flags().Changed("my-assessments") {
		v, _ := cmd.Flags().GetBool("my-assessments")
		myPtr = &v
	}
	if cmd.Flags().Changed("parent") {
		v, _ := cmd.Flags().GetString("parent")
		ref, err := parseObjectRef(v)
		if err != nil {
			return nil, err
		}
		parentPtr = &ref
	}
	cfg.MergeWithFlags(baseURLPtr, logLevelPtr, logDirPtr, myPtr, parentPtr)
	cfg.ResolvePaths(home)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parseObjectRef reads "Type:ID", e.g. "Audit:42".
func parseObjectRef(s string) (models.ObjectRef, error) {
	typ, rawID, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(typ) == "" {
		return models.ObjectRef{}, fmt.Errorf("invalid --parent %q, expected Type:ID", s)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		return models.ObjectRef{}, fmt.Errorf("invalid --parent id %q", rawID)
	}
	return models.ObjectRef{Type: strings.TrimSpace(typ), ID: id}, nil
}

// newSession builds the logger, API client, tracker and history store.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, started: make(map[int64]time.Time)}

	console := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if cfg.LogDir != "" {
		s.fileLog, err = logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create file logger: %w", err)
		}
		s.log = logger.NewMultiLogger(console, s.fileLog)
	} else {
		s.log = console
	}

	s.client = api.NewClient(cfg.API)
	s.tracker = api.NewTracker(s.client, cfg.Tracking.PollInterval, cfg.Tracking.PollTimeout, s.log)

	if cfg.History.Enabled {
		s.history, err = history.NewStore(cfg.History.DBPath)
		if err != nil {
			s.log.LogWarn(fmt.Sprintf("Submission history disabled: %v", err))
			s.history = nil
		}
	}
	return s, nil
}

// aggregator creates the bulk session. A nil confirmer completes without asking.
func (s *session) aggregator(confirmer bulk.Confirmer, track bool) *bulk.Aggregator {
	deps := bulk.Dependencies{
		Requester:  s.client,
		Authorizer: api.NewDriveAuth(s.client, s.cfg.Drive.CheckPath),
		Confirmer:  confirmer,
		Notifier:   s.log,
		Validator:  validation.NewValidator(validation.NewPlainTextExtractor()),
	}
	if track {
		deps.Tracker = s.tracker
	}

	return bulk.NewAggregator(deps, bulk.Options{
		MyAssessments: s.cfg.Context.MyAssessments,
		Parent:        s.cfg.Context.Parent,
		Statuses:      s.cfg.Context.StatusFilter,
		CurrentUser: models.PersonRef{
			ID:    s.cfg.CurrentUser.ID,
			Type:  "Person",
			Email: s.cfg.CurrentUser.Email,
		},
		Hooks: bulk.Hooks{
			Submitted:    s.onSubmitted,
			TaskFinished: s.onTaskFinished,
		},
	})
}

func (s *session) onSubmitted(kind bulk.SubmissionKind, taskID int64, payload models.CompletionRequest) {
	ids := payload.AssessmentsIDs
	if kind == bulk.KindSave {
		ids = make([]int64, 0, len(payload.Attributes))
		for _, a := range payload.Attributes {
			ids = append(ids, a.Assessment.ID)
		}
	}
	values := 0
	for _, a := range payload.Attributes {
		values += len(a.Values)
	}

	s.started[taskID] = time.Now()
	s.log.LogSubmission(string(kind), len(ids), taskID)

	if s.history == nil {
		return
	}
	rec := &history.Record{
		Kind:          string(kind),
		TaskID:        taskID,
		AssessmentIDs: ids,
		Attributes:    values,
	}
	if taskID == 0 {
		rec.Status = history.StatusSucceeded
	}
	if _, err := s.history.RecordSubmission(context.Background(), rec); err != nil {
		s.log.LogWarn(fmt.Sprintf("Failed to record submission: %v", err))
	}
}

// onTaskFinished may run on the tracker goroutine.
func (s *session) onTaskFinished(kind bulk.SubmissionKind, taskID int64, err error) {
	s.finishTask(string(kind), taskID, err)
}

func (s *session) finishTask(kind string, taskID int64, taskErr error) {
	var elapsed time.Duration
	if start, ok := s.started[taskID]; ok {
		elapsed = time.Since(start)
	}
	s.log.LogTaskFinished(kind, taskID, elapsed, taskErr)

	if taskErr != nil {
		s.mu.Lock()
		if s.taskErr == nil {
			s.taskErr = taskErr
		}
		s.mu.Unlock()
	}

	// The outcome is unknown, so the record stays pending for the status command.
	if s.history == nil || errors.Is(taskErr, models.ErrTrackingLost) {
		return
	}
	if err := s.history.FinishTask(context.Background(), taskID, taskErr); err != nil && !errors.Is(err, history.ErrNotFound) {
		s.log.LogWarn(fmt.Sprintf("Failed to update submission history: %v", err))
	}
}

// wait blocks until every tracked task has ended and returns the first failure.
func (s *session) wait() error {
	s.tracker.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskErr
}

// Close waits for tracked tasks and releases the store and log file.
func (s *session) Close() {
	s.tracker.Wait()
	if s.history != nil {
		s.history.Close()
	}
	if s.fileLog != nil {
		s.fileLog.Close()
	}
}
