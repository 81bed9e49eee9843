package display

import (
	"fmt"
	"io"
	"strings"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Items      []string // Affected assessments or attributes (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("\x1b[33m")
	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Items) > 0 {
		if len(w.Items) == 1 {
			b.WriteString("    Affected item:\n")
		} else {
			b.WriteString("    Affected items:\n")
		}
		for i, item := range w.Items {
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, item))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	b.WriteString("\x1b[0m")
	fmt.Fprint(out, b.String())
}

// WarnEmptyGrid is shown when the filter matched no assessments.
func WarnEmptyGrid() Warning {
	return Warning{
		Title:      "No Assessments Found",
		Message:    "Nothing matches the current scope and status filter.",
		Suggestion: "Check context.parent, context.my_assessments and context.status_filter in the config",
	}
}
