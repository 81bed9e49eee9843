// Package display provides terminal output for the bulkcomplete commands.
//
// It covers four kinds of output:
//
// # Assessment Grid
//
// GridPrinter renders loaded assessments as an aligned table with a readiness
// mark per row and, optionally, the attributes that still block completion:
//
//	grid := display.NewGridPrinter(os.Stdout)
//	grid.ShowBlockers = true
//	grid.Print(agg.Rows())
//
// Column widths are measured with go-runewidth so titles in any script line up.
// Titles are truncated to fit the terminal when stdout is a TTY.
//
// # Confirmation
//
// Prompter asks the operator before anything is submitted. It refuses to
// prompt when stdin is not a terminal unless it was created with assumeYes:
//
//	prompt := display.NewPrompter(os.Stdin, os.Stderr, yes)
//	ok, err := prompt.Confirm(ctx, confirmation)
//
// # Progress Indicators
//
// ProgressIndicator reports each assessment an answers file is applied to:
//
//	progress := display.NewProgressIndicator(os.Stdout, len(entries))
//	progress.Start()
//	for _, e := range entries {
//	    progress.Step(e.Key)
//	}
//	progress.Complete()
//
// # Warning Messages
//
//	warning := display.Warning{
//	    Title:      "Answers Not Applied",
//	    Items:      []string{"ASSESSMENT-9: not loaded"},
//	    Suggestion: "Check the status filter",
//	}
//	warning.Display(os.Stderr)
//
// All printers accept io.Writer for testability.
package display
