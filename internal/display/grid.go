package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/harrison/bulkcomplete/internal/models"
	"github.com/harrison/bulkcomplete/internal/validation"
)

const (
	readyMark    = "✓"
	notReadyMark = "✗"
	columnGap    = "  "
	minTitle     = 10
)

// GridPrinter renders assessments as an aligned table.
type GridPrinter struct {
	out   io.Writer
	color bool
	width int // terminal columns, 0 = unlimited

	// ShowBlockers lists the attributes that keep a row from being ready.
	ShowBlockers bool
}

// NewGridPrinter creates a printer for out. Color and truncation are only
// enabled when out is a terminal.
func NewGridPrinter(out io.Writer) *GridPrinter {
	return &GridPrinter{
		out:   out,
		color: useColor(out),
		width: terminalWidth(out),
	}
}

// Print writes one line per row followed by a readiness summary.
func (p *GridPrinter) Print(rows []models.Row) {
	headers := []string{"SLUG", "STATUS", "EDITED"}
	cells := make([][]string, len(rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for i, r := range rows {
		cells[i] = []string{r.Slug, r.Status, strconv.Itoa(r.ModifiedCount())}
		for j, c := range cells[i] {
			if w := runewidth.StringWidth(c); w > widths[j] {
				widths[j] = w
			}
		}
	}

	titleWidth := 0
	if p.width > 0 {
		used := 1 + len(columnGap)
		for _, w := range widths {
			used += w + len(columnGap)
		}
		if avail := p.width - used; avail >= minTitle {
			titleWidth = avail
		}
	}

	var b strings.Builder
	b.WriteString(" " + columnGap)
	for i, h := range headers {
		b.WriteString(runewidth.FillRight(h, widths[i]) + columnGap)
	}
	b.WriteString("TITLE\n")

	ready := 0
	for i, r := range rows {
		if r.IsReadyToComplete {
			ready++
		}
		b.WriteString(p.mark(r.IsReadyToComplete) + columnGap)
		for j, c := range cells[i] {
			b.WriteString(runewidth.FillRight(c, widths[j]) + columnGap)
		}
		title := r.Title
		if titleWidth > 0 {
			title = runewidth.Truncate(title, titleWidth, "…")
		}
		b.WriteString(title + "\n")

		if p.ShowBlockers && !r.IsReadyToComplete {
			for k := range r.Attributes {
				if msg := validation.MissingInfo(&r.Attributes[k]); msg != "" {
					fmt.Fprintf(&b, "      - %s: %s\n", r.Attributes[k].Title, msg)
				}
			}
		}
	}

	fmt.Fprintf(&b, "\n%d of %d assessment(s) ready to complete\n", ready, len(rows))
	fmt.Fprint(p.out, b.String())
}

func (p *GridPrinter) mark(ready bool) string {
	if !p.color {
		if ready {
			return readyMark
		}
		return notReadyMark
	}
	if ready {
		return color.New(color.FgGreen).Sprint(readyMark)
	}
	return color.New(color.FgRed).Sprint(notReadyMark)
}
