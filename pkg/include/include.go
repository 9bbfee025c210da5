// Package include provides resolvers that map include keys to markup.
//
// A resolver is consulted by the expansion engine for markers carrying an
// include directive. Resolvers may block on I/O and are called from several
// goroutines at once, so implementations must be safe for concurrent use.
package include

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/getmockd/htmlgen/pkg/formula"
)

// Resolution errors.
var (
	// ErrNotFound is returned when a resolver has nothing registered for a key.
	ErrNotFound = errors.New("include: key not found")

	// ErrNoResolver is reported when an include directive is met but no
	// resolver is configured.
	ErrNoResolver = errors.New("include: no resolver configured")
)

// Resolver maps an include key and the current data context to markup.
type Resolver interface {
	Resolve(ctx context.Context, key string, data formula.Context) (string, error)
}

// Func adapts a function to the Resolver interface.
type Func func(ctx context.Context, key string, data formula.Context) (string, error)

// Resolve implements Resolver.
func (f Func) Resolve(ctx context.Context, key string, data formula.Context) (string, error) {
	return f(ctx, key, data)
}

// Map resolves keys from a fixed set of markup snippets.
type Map map[string]string

// Resolve implements Resolver.
func (m Map) Resolve(_ context.Context, key string, _ formula.Context) (string, error) {
	markup, ok := m[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return markup, nil
}

// Dir resolves keys as slash-separated paths inside a file system. A key
// containing glob metacharacters is matched with doublestar semantics
// ("partials/**/*.html") and every match is concatenated in lexical order.
type Dir struct {
	FS fs.FS
}

// NewDir creates a directory resolver over fsys.
func NewDir(fsys fs.FS) *Dir {
	return &Dir{FS: fsys}
}

// Resolve implements Resolver.
func (d *Dir) Resolve(ctx context.Context, key string, _ formula.Context) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if !doublestar.ValidatePattern(key) {
		return "", fmt.Errorf("include: invalid key pattern %q", key)
	}

	matches, err := doublestar.Glob(d.FS, key, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("include: failed to match %q: %w", key, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	sort.Strings(matches)

	var b strings.Builder
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := fs.ReadFile(d.FS, m)
		if err != nil {
			return "", fmt.Errorf("include: failed to read %s: %w", m, err)
		}
		b.Write(data)
	}
	return b.String(), nil
}

// DefaultHTTPTimeout bounds a single HTTP include fetch.
const DefaultHTTPTimeout = 10 * time.Second

// maxIncludeSize caps the body read from an HTTP include.
const maxIncludeSize = 10 << 20

// HTTP resolves keys by fetching BaseURL/key.
type HTTP struct {
	BaseURL string
	Client  *http.Client
	// Header is added to every request.
	Header http.Header
}

// NewHTTP creates an HTTP resolver with a client bounded by DefaultHTTPTimeout.
func NewHTTP(baseURL string) *HTTP {
	return &HTTP{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

// Resolve implements Resolver. A 404 maps to ErrNotFound.
func (h *HTTP) Resolve(ctx context.Context, key string, _ formula.Context) (string, error) {
	target := h.BaseURL + "/" + strings.TrimPrefix(key, "/")
	if _, err := url.Parse(target); err != nil {
		return "", fmt.Errorf("include: invalid url for key %q: %w", key, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("include: failed to create request: %w", err)
	}
	for k, vs := range h.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("include: failed to fetch %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("include: %s returned status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIncludeSize))
	if err != nil {
		return "", fmt.Errorf("include: failed to read %s: %w", target, err)
	}
	return string(body), nil
}

// Chain tries each resolver in order and returns the first result that is
// not ErrNotFound.
func Chain(resolvers ...Resolver) Resolver {
	return Func(func(ctx context.Context, key string, data formula.Context) (string, error) {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			markup, err := r.Resolve(ctx, key, data)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return markup, err
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	})
}
