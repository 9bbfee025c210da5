package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/getmockd/htmlgen/pkg/cli/internal/output"
	"github.com/getmockd/htmlgen/pkg/diag"
	"github.com/getmockd/htmlgen/pkg/render"
	"github.com/spf13/cobra"
)

// ExpandOutput is the JSON form of an expand result.
type ExpandOutput struct {
	Input    string `json:"input"`
	Output   string `json:"output,omitempty"`
	Markup   string `json:"markup,omitempty"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
}

func newExpandCmd(opts *rootOptions) *cobra.Command {
	rf := &renderFlags{}
	var outPath string

	cmd := &cobra.Command{
		Use:   "expand [file]",
		Short: "Expand the template markers of one document",
		Long: `Expand the template markers of one document and write the result.

The document is read from file, or from stdin when file is omitted or "-".`,
		Example: `  # Expand a page against a data file
  htmlgen expand index.html -d site.yaml -o dist/index.html

  # Expand only the "nav" scope, reading from stdin
  cat page.html | htmlgen expand --scope nav -d nav.json

  # Resolve includes from a directory of partials
  htmlgen expand index.html -d site.json --include-dir partials`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			if input == "-" && rf.dataPath == "-" {
				return errors.New("document and data cannot both be read from stdin")
			}

			cfg, err := loadConfig(cmd, opts, rf)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			markup, err := readInput(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			data, err := loadData(rf.dataPath, rf.dataFormat, cmd.InOrStdin())
			if err != nil {
				return err
			}
			resolver, err := newIncludeResolver(cfg, rf.headers)
			if err != nil {
				return err
			}
			mode, err := modeFor(cfg, input)
			if err != nil {
				return err
			}

			var collector diag.Collector
			out, err := render.Render(cmd.Context(), markup, data, render.Options{
				Mode:        mode,
				Config:      cfg.ExpandConfig(),
				Include:     resolver,
				Sink:        diag.Tee(diag.Logger(logger), collector.Sink()),
				Logger:      logger,
				Minify:      cfg.Minify,
				Strict:      cfg.Strict,
				Concurrency: cfg.Concurrency,
			})
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := writeFile(outPath, out); err != nil {
					return err
				}
			}

			if opts.jsonOutput {
				result := ExpandOutput{
					Input:    input,
					Output:   outPath,
					Errors:   collector.Count(diag.LevelError),
					Warnings: collector.Count(diag.LevelWarn),
				}
				if outPath == "" {
					result.Markup = out
				}
				return output.JSON(cmd.OutOrStdout(), result)
			}
			if outPath == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			}
			return nil
		},
	}

	rf.bind(cmd.Flags())
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the result to this file instead of stdout")
	return cmd
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(b), nil
}
