package logger

import (
	"time"

	"github.com/harrison/bulkcomplete/internal/models"
)

// Logger is the logging surface used by the commands.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	Notify(level models.NoticeLevel, message string)
	LogReadiness(ready, total int)
	LogSubmission(kind string, count int, taskID int64)
	LogTaskFinished(kind string, taskID int64, elapsed time.Duration, err error)
}

// MultiLogger delegates to multiple loggers. Nil entries are skipped.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines loggers into one.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	ml := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			ml.loggers = append(ml.loggers, l)
		}
	}
	return ml
}

// LogDebug forwards to all loggers
func (ml *MultiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

// LogInfo forwards to all loggers
func (ml *MultiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

// LogWarn forwards to all loggers
func (ml *MultiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

// LogError forwards to all loggers
func (ml *MultiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}

// Notify forwards to all loggers
func (ml *MultiLogger) Notify(level models.NoticeLevel, message string) {
	for _, l := range ml.loggers {
		l.Notify(level, message)
	}
}

// LogReadiness forwards to all loggers
func (ml *MultiLogger) LogReadiness(ready, total int) {
	for _, l := range ml.loggers {
		l.LogReadiness(ready, total)
	}
}

// LogSubmission forwards to all loggers
func (ml *MultiLogger) LogSubmission(kind string, count int, taskID int64) {
	for _, l := range ml.loggers {
		l.LogSubmission(kind, count, taskID)
	}
}

// LogTaskFinished forwards to all loggers
func (ml *MultiLogger) LogTaskFinished(kind string, taskID int64, elapsed time.Duration, err error) {
	for _, l := range ml.loggers {
		l.LogTaskFinished(kind, taskID, elapsed, err)
	}
}
