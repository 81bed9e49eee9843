package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/harrison/bulkcomplete/internal/models"
)

// LogFileName is the name of the rotated log file inside the log directory.
const LogFileName = "bulkcomplete.log"

// FileLogger appends every message to a size-rotated log file.
// It is thread-safe and supports log level filtering.
type FileLogger struct {
	path     string
	out      *lumberjack.Logger
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing to logDir/bulkcomplete.log.
// The directory is created if it doesn't exist.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, LogFileName)
	fl := &FileLogger{
		path: path,
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		},
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeLine(fmt.Sprintf("=== bulkcomplete run started at %s ===\n", time.Now().Format(time.RFC3339)))
	return fl, nil
}

// Path returns the active log file.
func (fl *FileLogger) Path() string {
	return fl.path
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

// Notify records an operator notice.
func (fl *FileLogger) Notify(level models.NoticeLevel, message string) {
	if !fl.shouldLog(noticeLogLevel(level)) {
		return
	}
	fl.writeLine(fmt.Sprintf("[%s] [%s] %s\n", fileTimestamp(), strings.ToUpper(string(level)), message))
}

// LogReadiness records the readiness snapshot of the loaded grid.
func (fl *FileLogger) LogReadiness(ready, total int) {
	fl.logWithLevel("INFO", fmt.Sprintf("Ready to complete: %d/%d", ready, total))
}

// LogSubmission records an accepted request.
func (fl *FileLogger) LogSubmission(kind string, count int, taskID int64) {
	fl.logWithLevel("INFO", fmt.Sprintf("Submitted %s: assessments=%d task=%d", kind, count, taskID))
}

// LogTaskFinished records the outcome of a tracked background task.
func (fl *FileLogger) LogTaskFinished(kind string, taskID int64, elapsed time.Duration, err error) {
	if err != nil {
		fl.logWithLevel("ERROR", fmt.Sprintf("%s task %d failed after %s: %v", kind, taskID, formatDuration(elapsed), err))
		return
	}
	fl.logWithLevel("INFO", fmt.Sprintf("%s task %d succeeded after %s", kind, taskID, formatDuration(elapsed)))
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeLine(fmt.Sprintf("[%s] [%s] %s\n", fileTimestamp(), level, message))
}

// Close closes the underlying log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.out == nil {
		return nil
	}
	err := fl.out.Close()
	fl.out = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// writeLine is a thread-safe helper to append to the log file.
func (fl *FileLogger) writeLine(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.out != nil {
		fl.out.Write([]byte(message))
	}
}

func fileTimestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
