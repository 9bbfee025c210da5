// Package flags provides reusable flag types for CLI commands.
package flags

import (
	"fmt"
	"net/http"
	"strings"
)

// StringSlice implements pflag.Value for repeatable string flags.
type StringSlice []string

// String returns the string representation of the flag value.
func (s *StringSlice) String() string {
	return strings.Join(*s, ",")
}

// Set appends a value to the slice.
func (s *StringSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// Type specifies the type label for Cobra flags.
func (s *StringSlice) Type() string {
	return "stringSlice"
}

// Header parses "Name: value" entries into an http.Header.
func Header(entries []string) (http.Header, error) {
	h := make(http.Header, len(entries))
	for _, e := range entries {
		name, value, ok := strings.Cut(e, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", e)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}
