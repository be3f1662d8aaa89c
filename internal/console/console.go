// Package console implements the interactive read-eval loop.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/leozw/domain-inspector/internal/core"
	"github.com/leozw/domain-inspector/internal/report"
)

const (
	prompt      = "\nEnter a domain or URL: "
	exitCommand = "exit"
)

// Inspector produces a report for one raw input.
type Inspector interface {
	Lookup(ctx context.Context, input string, fresh bool) (*core.DomainReport, bool, error)
}

type Console struct {
	inspector Inspector
	logger    *zap.Logger
}

func New(inspector Inspector, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		inspector: inspector,
		logger:    logger.With(zap.String("component", "console")),
	}
}

// Run prompts for inputs on in and writes reports to out until the user types
// exit, in is exhausted or ctx is cancelled. A failed lookup never ends the loop.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Domain Inspector")
	fmt.Fprintf(out, "Type '%s' to quit\n", exitCommand)
	fmt.Fprintln(out, "URLs are accepted; the domain is extracted automatically")

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readCtx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(out, prompt)

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nInterrupted")
			c.goodbye(out)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(out)
			c.goodbye(out)
			select {
			case err := <-scanErr:
				return err
			default:
				return nil
			}
		}

		input := strings.ToLower(strings.TrimSpace(line))
		if input == exitCommand {
			c.goodbye(out)
			return nil
		}
		c.inspect(ctx, input, out)
	}
}

func (c *Console) inspect(ctx context.Context, input string, out io.Writer) {
	domain, _, err := core.ParseDomain(input)
	if err != nil {
		fmt.Fprintln(out, InputErrorMessage(err))
		return
	}
	if domain != input {
		fmt.Fprintf(out, "Domain extracted from URL: %s\n", domain)
	}

	fmt.Fprintf(out, "\nChecking domain: %s\n", domain)
	// An interrupt takes effect at the next prompt; the running analysis finishes.
	r, cached, err := c.inspector.Lookup(context.WithoutCancel(ctx), input, false)
	if err != nil {
		c.logger.Error("lookup failed", zap.String("input", input), zap.Error(err))
		fmt.Fprintf(out, "Check failed: %v\n", err)
		return
	}
	if cached {
		fmt.Fprintln(out, "(cached result)")
	}
	fmt.Fprint(out, "\n"+report.Render(r))
}

func (c *Console) goodbye(out io.Writer) {
	fmt.Fprintln(out, "Thanks for using Domain Inspector")
}

// InputErrorMessage maps an input rejection to the message shown to the user.
func InputErrorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyInput):
		return "Input cannot be empty"
	case errors.Is(err, core.ErrUnextractable):
		return "Could not extract a domain from input"
	case errors.Is(err, core.ErrInvalidDomain):
		return "Invalid domain format"
	default:
		return err.Error()
	}
}
