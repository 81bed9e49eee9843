// Package logger provides logging implementations for bulk completion runs.
//
// Loggers record operator notices, readiness snapshots and the lifecycle of
// submitted background tasks. Implementations are thread-safe because task
// tracking reports from its own goroutine.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/bulkcomplete/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger writes timestamped messages to a writer.
// All output is prefixed with [HH:MM:SS].
// Color output is enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// false when NO_COLOR is set or the stream is not a TTY
		return !color.NoColor
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// shouldLog reports whether messageLevel passes the configured threshold.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// noticeLogLevel maps a notice onto the level used for filtering.
func noticeLogLevel(level models.NoticeLevel) string {
	if level == models.NoticeError {
		return "error"
	}
	return "info"
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
// Format: "[HH:MM:SS] [DEBUG] <message>"
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// Notify prints an operator notice.
// Format: "[HH:MM:SS] [SUCCESS] <message>"
func (cl *ConsoleLogger) Notify(level models.NoticeLevel, message string) {
	if cl.writer == nil || !cl.shouldLog(noticeLogLevel(level)) {
		return
	}

	label := strings.ToUpper(string(level))
	if cl.colorOutput {
		label = newColorScheme().forNotice(level).Sprint(label)
	}
	cl.write(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), label, message))
}

// LogReadiness prints how many loaded assessments are ready to complete.
// Format: "[HH:MM:SS] Ready: [====      ] 2/5 (40%)"
func (cl *ConsoleLogger) LogReadiness(ready, total int) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	pb := NewProgressBar(total, 10, cl.colorOutput)
	pb.SetPrefix("Ready: ")
	pb.Update(ready)
	cl.write(fmt.Sprintf("[%s] %s\n", timestamp(), pb.Render()))
}

// LogSubmission records an accepted request and its background task.
func (cl *ConsoleLogger) LogSubmission(kind string, count int, taskID int64) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	msg := fmt.Sprintf("Submitted %s for %d assessment(s)", kind, count)
	if taskID != 0 {
		msg += fmt.Sprintf(", background task %d", taskID)
	}
	cl.write(fmt.Sprintf("[%s] %s\n", timestamp(), msg))
}

// LogTaskFinished records the outcome of a tracked background task.
// Format: "[HH:MM:SS] complete task 12 finished in 4s: ok"
func (cl *ConsoleLogger) LogTaskFinished(kind string, taskID int64, elapsed time.Duration, err error) {
	level := "info"
	if err != nil {
		level = "error"
	}
	if cl.writer == nil || !cl.shouldLog(level) {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = err.Error()
	}
	if cl.colorOutput {
		scheme := newColorScheme()
		if err != nil {
			outcome = scheme.fail.Sprint(outcome)
		} else {
			outcome = scheme.success.Sprint(outcome)
		}
	}
	cl.write(fmt.Sprintf("[%s] %s task %d finished in %s: %s\n", timestamp(), kind, taskID, formatDuration(elapsed), outcome))
}

// logWithLevel logs a message at the specified level if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}
	cl.write(formatted)
}

func (cl *ConsoleLogger) write(s string) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.writer.Write([]byte(s))
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	}
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) Notify(models.NoticeLevel, string) {}
func (n *NoOpLogger) LogReadiness(int, int) {}
func (n *NoOpLogger) LogSubmission(string, int, int64) {}
func (n *NoOpLogger) LogTaskFinished(string, int64, time.Duration, error) {}
