package commands

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leozw/domain-inspector/internal/console"
	"github.com/leozw/domain-inspector/internal/core"
	"github.com/leozw/domain-inspector/internal/report"
	"github.com/leozw/domain-inspector/internal/worker"
)

var errInvalidInputs = errors.New("one or more inputs were invalid")

type lookupOptions struct {
	file    string
	fresh   bool
	format  string
	workers int
}

type lookupResult struct {
	Input  string             `json:"input"`
	Cached bool               `json:"cached"`
	Report *core.DomainReport `json:"report,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// lookup <domain|url>...: one-shot inspection of one or more inputs.
func lookupCmd() *cobra.Command {
	opts := &lookupOptions{}
	cmd := &cobra.Command{
		Use:   "lookup [domain|url]...",
		Short: "Inspect one or more domains and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := append([]string{}, args...)
			if opts.file != "" {
				fromFile, err := readInputFile(opts.file)
				if err != nil {
					return err
				}
				inputs = append(inputs, fromFile...)
			}
			if len(inputs) == 0 {
				return fmt.Errorf("no inputs: pass domains as arguments or use --file")
			}
			if opts.format != "text" && opts.format != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", opts.format)
			}

			workers := opts.workers
			if workers <= 0 {
				workers = appCtx.cfg.Lookup.Workers
			}

			pool := worker.NewPool(workers, appCtx.service, opts.fresh, appCtx.logger)
			results, err := pool.Run(cmd.Context(), inputs)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, opts.format)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read inputs from a file, one per line ('#' starts a comment)")
	cmd.Flags().BoolVar(&opts.fresh, "fresh", false, "bypass the report cache")
	cmd.Flags().StringVarP(&opts.format, "format", "o", "text", "output format: text or json")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent lookups (default from lookup.workers)")
	return cmd
}

func readInputFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseInputs(f)
}

// parseInputs returns the non-blank lines of r, skipping '#' comments.
func parseInputs(r io.Reader) ([]string, error) {
	var inputs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}
	return inputs, scanner.Err()
}

// writeResults prints results in input order and returns errInvalidInputs
// when any input was rejected.
func writeResults(out, errOut io.Writer, results []worker.Result, format string) error {
	invalid := false
	structured := make([]lookupResult, 0, len(results))

	for _, r := range results {
		item := lookupResult{Input: r.Input, Cached: r.Cached, Report: r.Report}
		if r.Err != nil {
			if core.IsInputError(r.Err) {
				invalid = true
				item.Error = console.InputErrorMessage(r.Err)
			} else {
				item.Error = r.Err.Error()
			}
		}
		structured = append(structured, item)

		if format == "json" {
			continue
		}
		if item.Error != "" {
			fmt.Fprintf(errOut, "%s: %s\n", r.Input, item.Error)
			continue
		}
		fmt.Fprint(out, report.Render(r.Report))
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(structured); err != nil {
			return err
		}
	}

	if invalid {
		return errInvalidInputs
	}
	return nil
}
