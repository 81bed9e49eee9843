package logger

import (
	"github.com/fatih/color"

	"github.com/harrison/bulkcomplete/internal/models"
)

// colorScheme defines consistent colors for notices.
// Green: success
// Red: errors
// Cyan: progress and labels
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	label   *color.Color
	info    *color.Color
}

// newColorScheme creates the standard color scheme.
func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		label:   color.New(color.FgCyan),
		info:    color.New(color.FgBlue),
	}
}

// forNotice picks the color for a notice level.
func (s *colorScheme) forNotice(level models.NoticeLevel) *color.Color {
	switch level {
	case models.NoticeSuccess:
		return s.success
	case models.NoticeError:
		return s.fail
	case models.NoticeProgress:
		return s.label
	default:
		return s.info
	}
}
