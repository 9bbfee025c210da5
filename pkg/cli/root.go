package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	logFile    string
	jsonOutput bool
}

// NewRootCommand builds the htmlgen command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "htmlgen",
		Short: "htmlgen expands declarative HTML templates against JSON or YAML data",
		Long: `htmlgen expands <template data-gen-scope> markers in HTML or XML documents.

Markers are driven entirely by attributes: data-gen-text, data-gen-html,
data-gen-json, data-gen-attrs, data-gen-repeat, data-gen-if and
data-gen-include. Generated nodes are tagged with data-gen-cloned so a
document can be expanded again without duplicating output.

Configuration can be provided via flags, environment variables, or a
configuration file (.htmlgenrc.yaml or ~/.config/htmlgen/config.yaml).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file path (overrides .htmlgenrc.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format: text, json")
	pf.StringVar(&opts.logFile, "log-file", "", "Also write JSON logs to this file")
	pf.BoolVar(&opts.jsonOutput, "json", false, "Output command results in JSON format")

	cmd.AddCommand(
		newExpandCmd(opts),
		newBatchCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
