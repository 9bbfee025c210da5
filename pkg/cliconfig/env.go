package cliconfig

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names
const (
	EnvConfig          = "HTMLGEN_CONFIG"
	EnvScope           = "HTMLGEN_SCOPE"
	EnvAttributePrefix = "HTMLGEN_ATTRIBUTE_PREFIX"
	EnvTemplateTagName = "HTMLGEN_TEMPLATE_TAG"
	EnvConcurrency     = "HTMLGEN_CONCURRENCY"
	EnvMode            = "HTMLGEN_MODE"
	EnvMinify          = "HTMLGEN_MINIFY"
	EnvStrict          = "HTMLGEN_STRICT"
	EnvIncludeDir      = "HTMLGEN_INCLUDE_DIR"
	EnvIncludeURL      = "HTMLGEN_INCLUDE_URL"
	EnvLogLevel        = "HTMLGEN_LOG_LEVEL"
	EnvLogFormat       = "HTMLGEN_LOG_FORMAT"
)

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment.
func LoadEnvConfig(cfg *CLIConfig) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	strs := []struct {
		env string
		key string
		dst *string
	}{
		{EnvScope, "scope", &cfg.Scope},
		{EnvAttributePrefix, "attributePrefix", &cfg.AttributePrefix},
		{EnvTemplateTagName, "templateTagName", &cfg.TemplateTagName},
		{EnvMode, "mode", &cfg.Mode},
		{EnvIncludeDir, "includeDir", &cfg.IncludeDir},
		{EnvIncludeURL, "includeUrl", &cfg.IncludeURL},
		{EnvLogLevel, "logLevel", &cfg.LogLevel},
		{EnvLogFormat, "logFormat", &cfg.LogFormat},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
			cfg.Sources[s.key] = SourceEnv
		}
	}

	if v := os.Getenv(EnvConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
			cfg.Sources["concurrency"] = SourceEnv
		}
	}
	if v := os.Getenv(EnvMinify); v != "" {
		cfg.Minify = parseBool(v)
		cfg.Sources["minify"] = SourceEnv
	}
	if v := os.Getenv(EnvStrict); v != "" {
		cfg.Strict = parseBool(v)
		cfg.Sources["strict"] = SourceEnv
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	}
	return false
}
