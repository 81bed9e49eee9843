package logger

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/bulkcomplete/internal/models"
)

// TestNewConsoleLogger verifies the constructor keeps the writer and normalizes the level.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "DEBUG")

		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.logLevel != "debug" {
			t.Errorf("expected log level %q, got %q", "debug", logger.logLevel)
		}
		if logger.colorOutput {
			t.Error("expected no color for a buffer")
		}
	})

	t.Run("invalid level defaults to info", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "verbose")
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
	})

	t.Run("nil writer discards", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "info")
		logger.LogInfo("nothing")
		logger.Notify(models.NoticeError, "nothing")
		logger.LogReadiness(1, 2)
	})
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		want    []string
		notWant []string
	}{
		{level: "debug", want: []string{"[DEBUG] d", "[INFO] i", "[ERROR] e"}},
		{level: "info", want: []string{"[INFO] i", "[WARN] w"}, notWant: []string{"[DEBUG]"}},
		{level: "error", want: []string{"[ERROR] e"}, notWant: []string{"[INFO]", "[WARN]"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, tt.level)
			logger.LogDebug("d")
			logger.LogInfo("i")
			logger.LogWarn("w")
			logger.LogError("e")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %q in output:\n%s", w, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("did not expect %q in output:\n%s", nw, out)
				}
			}
		})
	}
}

func TestConsoleLogger_Notify(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.Notify(models.NoticeSuccess, "Answers are saved successfully.")
	logger.Notify(models.NoticeError, "Failed")

	out := buf.String()
	if !strings.Contains(out, "[SUCCESS] Answers are saved successfully.") {
		t.Errorf("missing success notice:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] Failed") {
		t.Errorf("missing error notice:\n%s", out)
	}

	buf.Reset()
	quiet := NewConsoleLogger(buf, "error")
	quiet.Notify(models.NoticeProgress, "in progress")
	if buf.Len() != 0 {
		t.Errorf("progress notice should be filtered at error level, got %q", buf.String())
	}
}

func TestConsoleLogger_LogReadiness(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogReadiness(2, 5)

	if !strings.Contains(buf.String(), "Ready: [====      ] 2/5 (40%)") {
		t.Errorf("unexpected readiness line: %q", buf.String())
	}
}

func TestConsoleLogger_Submissions(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogSubmission("complete", 3, 42)
	logger.LogSubmission("save", 1, 0)
	logger.LogTaskFinished("complete", 42, 90*time.Second, nil)
	logger.LogTaskFinished("save", 7, time.Second, errors.New("background task failed"))

	out := buf.String()
	for _, want := range []string{
		"Submitted complete for 3 assessment(s), background task 42",
		"Submitted save for 1 assessment(s)\n",
		"complete task 42 finished in 1m30s: ok",
		"save task 7 finished in 1s: background task failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

// TestConsoleLogger_Concurrent verifies lines are not interleaved.
func TestConsoleLogger_Concurrent(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Notify(models.NoticeInfo, "tick")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "[INFO] tick") {
			t.Errorf("malformed line %q", line)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{time.Hour + time.Second, "1h0m1s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestProgressBarRender(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		width    int
		expected string
	}{
		{"empty progress", 0, 10, 10, "[          ] 0/10 (0%)"},
		{"half progress", 5, 10, 10, "[=====     ] 5/10 (50%)"},
		{"full progress", 10, 10, 10, "[==========] 10/10 (100%)"},
		{"over total", 12, 10, 4, "[====] 12/10 (100%)"},
		{"zero total", 0, 0, 4, "[    ] 0/0 (0%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := NewProgressBar(tt.total, tt.width, false)
			pb.Update(tt.current)
			if got := pb.Render(); got != tt.expected {
				t.Errorf("Render() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProgressBarIncrement(t *testing.T) {
	pb := NewProgressBar(4, 0, false)
	pb.Increment()
	pb.Increment()
	if pb.Percentage() != 50 {
		t.Errorf("Percentage() = %d, want 50", pb.Percentage())
	}
}

func TestMultiLogger(t *testing.T) {
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	ml := NewMultiLogger(NewConsoleLogger(a, "info"), nil, NewConsoleLogger(b, "info"))

	ml.Notify(models.NoticeSuccess, "done")
	ml.LogReadiness(1, 1)

	for _, buf := range []*bytes.Buffer{a, b} {
		if !strings.Contains(buf.String(), "[SUCCESS] done") {
			t.Errorf("notice not forwarded: %q", buf.String())
		}
		if !strings.Contains(buf.String(), "1/1 (100%)") {
			t.Errorf("readiness not forwarded: %q", buf.String())
		}
	}
}
