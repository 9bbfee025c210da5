package cliconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/getmockd/htmlgen/pkg/dom"
)

// MaxConcurrency caps the concurrency setting.
const MaxConcurrency = 256

// Validate checks the merged configuration.
func (c *CLIConfig) Validate() error {
	var errs []error

	if _, err := dom.ParseMode(c.Mode); err != nil {
		errs = append(errs, fmt.Errorf("mode %q is not one of html, xml, fragment", c.Mode))
	}
	if c.Concurrency < 0 || c.Concurrency > MaxConcurrency {
		errs = append(errs, fmt.Errorf("concurrency %d is out of range (0-%d)", c.Concurrency, MaxConcurrency))
	}
	if !validName(c.AttributePrefix) {
		errs = append(errs, fmt.Errorf("attributePrefix %q is not a valid attribute name", c.AttributePrefix))
	}
	if !validName(c.TemplateTagName) {
		errs = append(errs, fmt.Errorf("templateTagName %q is not a valid element name", c.TemplateTagName))
	}
	if c.IncludeURL != "" {
		u, err := url.Parse(c.IncludeURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("includeUrl %q must be an absolute http(s) URL", c.IncludeURL))
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logFormat %q is not one of text, json", c.LogFormat))
	}

	return errors.Join(errs...)
}

// validName accepts names without whitespace or markup delimiters. An empty
// name is valid and means the default.
func validName(s string) bool {
	return !strings.ContainsAny(s, " \t\r\n\"'<>/=")
}
