package cliconfig

import (
	"github.com/getmockd/htmlgen/pkg/directive"
	"github.com/getmockd/htmlgen/pkg/expand"
)

// DefaultMode is the default parse mode.
const DefaultMode = "html"

// DefaultLogLevel is the default minimum log level.
const DefaultLogLevel = "info"

// DefaultLogFormat is the default log output format.
const DefaultLogFormat = "text"

// NewDefault creates a new CLIConfig with default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		AttributePrefix: directive.DefaultAttributePrefix,
		TemplateTagName: directive.DefaultTemplateTagName,
		Concurrency:     expand.DefaultConcurrency,
		Mode:            DefaultMode,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		Sources:         make(map[string]string),
	}

	for _, key := range []string{
		"scope", "attributePrefix", "templateTagName", "concurrency",
		"mode", "minify", "strict", "logLevel", "logFormat",
	} {
		cfg.Sources[key] = SourceDefault
	}

	return cfg
}

// ExpandConfig returns the engine naming configuration.
func (c *CLIConfig) ExpandConfig() expand.Config {
	return expand.Config{
		AttributePrefix: c.AttributePrefix,
		TemplateTagName: c.TemplateTagName,
		Scope:           c.Scope,
	}
}
