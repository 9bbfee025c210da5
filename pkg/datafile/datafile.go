// Package datafile loads the data model for an expansion run from JSON or
// YAML.
package datafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

// Format identifies a data encoding.
type Format string

// Supported formats. FormatAuto tries JSON first, then YAML.
const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Stdin is the path that reads from standard input.
const Stdin = "-"

// ErrUnsupportedFormat is returned for an unknown format name.
var ErrUnsupportedFormat = errors.New("datafile: unsupported format")

// ParseFormat parses a format name ("json", "yaml", "yml" or "").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatAuto, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Load reads a data file. Path "-" reads stdin. An empty path yields nil
// data. When format is FormatAuto it is inferred from the extension.
func Load(path string, format Format) (any, error) {
	switch path {
	case "":
		return nil, nil
	case Stdin:
		return Read(os.Stdin, format)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	if format == FormatAuto {
		format = FormatFromPath(path)
	}
	v, err := Parse(b, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Read parses data from r.
func Read(r io.Reader, format Format) (any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return Parse(b, format)
}

// Parse decodes b. JSON numbers decode as int64 or float64; YAML maps
// decode as map[string]any.
func Parse(b []byte, format Format) (any, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	switch format {
	case FormatJSON:
		return parseJSON(b)
	case FormatYAML:
		return parseYAML(b)
	case FormatAuto:
		if v, err := parseJSON(b); err == nil {
			return v, nil
		}
		return parseYAML(b)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func parseJSON(b []byte) (any, error) {
	v, err := oj.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return v, nil
}

func parseYAML(b []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return normalize(v), nil
}

// normalize converts map[any]any nodes, which YAML produces for non-string
// keys, into map[string]any so formulas can address them.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	}
	return v
}
