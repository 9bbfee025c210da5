// Package cliconfig provides configuration types and loading for the htmlgen CLI.
package cliconfig

// CLIConfig represents the complete configuration for the htmlgen CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Local config file (.htmlgenrc.yaml in current directory)
// 4. Global config file (~/.config/htmlgen/config.yaml)
// 5. Default values (lowest priority)
type CLIConfig struct {
	// Expansion settings
	Scope           string `yaml:"scope,omitempty" json:"scope,omitempty"`
	AttributePrefix string `yaml:"attributePrefix" json:"attributePrefix"`
	TemplateTagName string `yaml:"templateTagName" json:"templateTagName"`
	Concurrency     int    `yaml:"concurrency" json:"concurrency"`

	// Input and output settings
	Mode   string `yaml:"mode" json:"mode"`
	Minify bool   `yaml:"minify" json:"minify"`
	Strict bool   `yaml:"strict" json:"strict"`

	// Include resolution
	IncludeDir string `yaml:"includeDir,omitempty" json:"includeDir,omitempty"`
	IncludeURL string `yaml:"includeUrl,omitempty" json:"includeUrl,omitempty"`

	// Logging settings
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
	LogFile   string `yaml:"logFile,omitempty" json:"logFile,omitempty"`

	// SetFields records which keys a config file set explicitly, so an
	// explicit false can override a true from a lower layer.
	SetFields map[string]bool `yaml:"-" json:"-"`

	// Source tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFile    = "file"
	SourceFlag    = "flag"
)
