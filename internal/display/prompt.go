package display

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harrison/bulkcomplete/internal/models"
)

// ErrNotInteractive is returned when confirmation is needed but stdin is not a terminal.
var ErrNotInteractive = errors.New("confirmation required but stdin is not a terminal (use --yes)")

// Prompter asks yes/no questions on a terminal.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	assumeYes   bool
	interactive bool
}

// NewPrompter creates a Prompter reading answers from in. When in is an
// *os.File it must be a terminal; other readers are treated as interactive.
func NewPrompter(in io.Reader, out io.Writer, assumeYes bool) *Prompter {
	interactive := true
	if f, ok := in.(*os.File); ok {
		interactive = IsTerminal(f)
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		assumeYes:   assumeYes,
		interactive: interactive,
	}
}

// Confirm shows c and waits for an answer. "y", "yes" and the confirm label
// accept; anything else declines.
func (p *Prompter) Confirm(ctx context.Context, c models.Confirmation) (bool, error) {
	if p.assumeYes {
		return true, nil
	}
	if !p.interactive {
		return false, ErrNotInteractive
	}

	fmt.Fprintf(p.out, "%s\n%s\n%s? [y/N]: ", c.Title, c.Description, c.ConfirmLabel)

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, fmt.Errorf("read confirmation: %w", a.err)
		}
		reply := strings.ToLower(strings.TrimSpace(a.line))
		switch reply {
		case "y", "yes":
			return true, nil
		}
		return reply != "" && reply == strings.ToLower(c.ConfirmLabel), nil
	}
}
