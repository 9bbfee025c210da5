package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/getmockd/htmlgen/pkg/cli/internal/flags"
	"github.com/getmockd/htmlgen/pkg/cliconfig"
	"github.com/getmockd/htmlgen/pkg/datafile"
	"github.com/getmockd/htmlgen/pkg/dom"
	"github.com/getmockd/htmlgen/pkg/include"
	"github.com/getmockd/htmlgen/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// renderFlags are the flags shared by expand and batch.
type renderFlags struct {
	dataPath    string
	dataFormat  string
	scope       string
	prefix      string
	tag         string
	mode        string
	includeDir  string
	includeURL  string
	headers     flags.StringSlice
	minify      bool
	strict      bool
	concurrency int
}

func (f *renderFlags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.dataPath, "data", "d", "", `Data file (JSON or YAML, "-" for stdin)`)
	fs.StringVar(&f.dataFormat, "data-format", "", "Data format: json, yaml (default: from extension)")
	fs.StringVarP(&f.scope, "scope", "s", "", "Active scope (empty expands every scope)")
	fs.StringVar(&f.prefix, "prefix", "", "Directive attribute prefix (default: data-gen)")
	fs.StringVar(&f.tag, "tag", "", "Template marker element name (default: template)")
	fs.StringVar(&f.mode, "mode", "", "Parse mode: html, xml, fragment")
	fs.StringVar(&f.includeDir, "include-dir", "", "Directory include keys resolve against")
	fs.StringVar(&f.includeURL, "include-url", "", "Base URL include keys resolve against")
	fs.Var(&f.headers, "include-header", `Header for HTTP includes, "Name: value" (repeatable)`)
	fs.BoolVar(&f.minify, "minify", false, "Minify the output")
	fs.BoolVar(&f.strict, "strict", false, "Fail when expansion reports errors")
	fs.IntVar(&f.concurrency, "concurrency", 0, "Parallel expansions per level")
}

// overrides returns a config holding only the flags the user set.
func (f *renderFlags) overrides(fs *pflag.FlagSet) *cliconfig.CLIConfig {
	c := &cliconfig.CLIConfig{SetFields: make(map[string]bool)}
	changed := func(flag, key string) bool {
		if fs.Changed(flag) {
			c.SetFields[key] = true
			return true
		}
		return false
	}
	if changed("scope", "scope") {
		c.Scope = f.scope
	}
	if changed("prefix", "attributePrefix") {
		c.AttributePrefix = f.prefix
	}
	if changed("tag", "templateTagName") {
		c.TemplateTagName = f.tag
	}
	if changed("mode", "mode") {
		c.Mode = f.mode
	}
	if changed("include-dir", "includeDir") {
		c.IncludeDir = f.includeDir
	}
	if changed("include-url", "includeUrl") {
		c.IncludeURL = f.includeURL
	}
	if changed("minify", "minify") {
		c.Minify = f.minify
	}
	if changed("strict", "strict") {
		c.Strict = f.strict
	}
	if changed("concurrency", "concurrency") {
		c.Concurrency = f.concurrency
	}
	return c
}

// loadConfig resolves every configuration layer. Flags of cmd, when given,
// apply last.
func loadConfig(cmd *cobra.Command, opts *rootOptions, rf *renderFlags) (*cliconfig.CLIConfig, error) {
	cfg, err := cliconfig.LoadAll(opts.configPath)
	if err != nil {
		return nil, err
	}

	var flagCfg *cliconfig.CLIConfig
	if rf != nil {
		flagCfg = rf.overrides(cmd.Flags())
	} else {
		flagCfg = &cliconfig.CLIConfig{}
	}
	if opts.logLevel != "" {
		flagCfg.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		flagCfg.LogFormat = opts.logFormat
	}
	if opts.logFile != "" {
		flagCfg.LogFile = opts.logFile
	}
	cliconfig.MergeConfig(cfg, flagCfg, cliconfig.SourceFlag)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command logger. The returned func releases the log
// file, if any.
func newLogger(cfg *cliconfig.CLIConfig, w io.Writer) (*slog.Logger, func(), error) {
	lc := logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: w,
	}
	if cfg.LogFile == "" {
		return logging.New(lc), func() {}, nil
	}
	logger, closer, err := logging.NewWithFile(lc, cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = closer.Close() }, nil
}

// newIncludeResolver chains the directory and HTTP resolvers that are
// configured. It returns nil when neither is.
func newIncludeResolver(cfg *cliconfig.CLIConfig, headers []string) (include.Resolver, error) {
	var resolvers []include.Resolver
	if cfg.IncludeDir != "" {
		info, err := os.Stat(cfg.IncludeDir)
		if err != nil {
			return nil, fmt.Errorf("include directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("include directory %s is not a directory", cfg.IncludeDir)
		}
		resolvers = append(resolvers, include.NewDir(os.DirFS(cfg.IncludeDir)))
	}
	if cfg.IncludeURL != "" {
		r := include.NewHTTP(cfg.IncludeURL)
		h, err := flags.Header(headers)
		if err != nil {
			return nil, err
		}
		r.Header = h
		resolvers = append(resolvers, r)
	}

	switch len(resolvers) {
	case 0:
		return nil, nil
	case 1:
		return resolvers[0], nil
	default:
		return include.Chain(resolvers...), nil
	}
}

// loadData reads the data model. stdin is the reader used for "-".
func loadData(path, format string, stdin io.Reader) (any, error) {
	f, err := datafile.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if path == datafile.Stdin {
		return datafile.Read(stdin, f)
	}
	return datafile.Load(path, f)
}

// modeFor returns the parse mode for a file. When the mode was not chosen
// explicitly, .xml and .svg files parse as XML.
func modeFor(cfg *cliconfig.CLIConfig, path string) (dom.Mode, error) {
	if cfg.Sources["mode"] == cliconfig.SourceDefault {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xml", ".svg", ".xhtml":
			return dom.ModeXML, nil
		}
	}
	return dom.ParseMode(strings.ToLower(cfg.Mode))
}
