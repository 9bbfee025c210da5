package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/getmockd/htmlgen/pkg/cli/internal/output"
	"github.com/getmockd/htmlgen/pkg/diag"
	"github.com/getmockd/htmlgen/pkg/render"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome for one file of a batch.
type BatchResult struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
	Failure  string `json:"failure,omitempty"`
}

// batchJob maps one input file to its destination.
type batchJob struct {
	input  string
	output string
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	rf := &renderFlags{}
	var outDir string

	cmd := &cobra.Command{
		Use:   "batch <pattern>...",
		Short: "Expand every file matching glob patterns into an output directory",
		Long: `Expand every file matching one or more doublestar glob patterns.

Each output keeps its path relative to the static prefix of its pattern,
so "site/**/*.html" with --out-dir dist writes site/a/b.html to dist/a/b.html.`,
		Example: `  htmlgen batch 'site/**/*.html' -d site.yaml --out-dir dist
  htmlgen batch 'feeds/*.xml' --mode xml -d feed.json --out-dir public/feeds`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				return errors.New("--out-dir is required")
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

			jobs, err := planBatch(args, outDir)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				output.Warn(cmd.ErrOrStderr(), "no files matched %v", args)
				return nil
			}

			data, err := loadData(rf.dataPath, rf.dataFormat, cmd.InOrStdin())
			if err != nil {
				return err
			}
			resolver, err := newIncludeResolver(cfg, rf.headers)
			if err != nil {
				return err
			}

			results := make([]BatchResult, len(jobs))
			var mu sync.Mutex
			var failures []error

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(cfg.Concurrency, 1))
			for i, job := range jobs {
				g.Go(func() error {
					res := BatchResult{Input: job.input, Output: job.output}
					var collector diag.Collector
					err := func() error {
						mode, err := modeFor(cfg, job.input)
						if err != nil {
							return err
						}
						markup, err := readInput(job.input, nil)
						if err != nil {
							return err
						}
						out, err := render.Render(ctx, markup, data, render.Options{
							Mode:        mode,
							Config:      cfg.ExpandConfig(),
							Include:     resolver,
							Sink:        diag.Tee(diag.Logger(logger.With("file", job.input)), collector.Sink()),
							Logger:      logger,
							Minify:      cfg.Minify,
							Strict:      cfg.Strict,
							Concurrency: cfg.Concurrency,
						})
						if err != nil {
							return err
						}
						return writeFile(job.output, out)
					}()
					res.Errors = collector.Count(diag.LevelError)
					res.Warnings = collector.Count(diag.LevelWarn)
					if err != nil {
						res.Failure = err.Error()
						mu.Lock()
						failures = append(failures, fmt.Errorf("%s: %w", job.input, err))
						mu.Unlock()
					}
					results[i] = res
					return nil
				})
			}
			_ = g.Wait()

			if opts.jsonOutput {
				if err := output.JSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				tw := output.Table(cmd.OutOrStdout())
				fmt.Fprintln(tw, "INPUT\tOUTPUT\tERRORS\tWARNINGS\tSTATUS")
				for _, r := range results {
					status := "ok"
					if r.Failure != "" {
						status = "failed"
					}
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.Input, r.Output, r.Errors, r.Warnings, status)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			logger.Info("batch finished", "files", len(jobs), "failed", len(failures))
			return errors.Join(failures...)
		},
	}

	rf.bind(cmd.Flags())
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory outputs are written to (required)")
	return cmd
}

// planBatch expands the patterns into jobs, sorted by input and without
// duplicates. A job that would overwrite its own input is rejected.
func planBatch(patterns []string, outDir string) ([]batchJob, error) {
	seen := make(map[string]bool)
	var jobs []batchJob
	for _, pattern := range patterns {
		slashed := filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(slashed) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		base, _ := doublestar.SplitPattern(slashed)

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to match %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true

			rel, err := filepath.Rel(filepath.FromSlash(base), m)
			if err != nil {
				return nil, err
			}
			dest := filepath.Join(outDir, rel)
			if sameFile(m, dest) {
				return nil, fmt.Errorf("refusing to overwrite input %s", m)
			}
			jobs = append(jobs, batchJob{input: m, output: dest})
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].input < jobs[j].input })
	return jobs, nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
