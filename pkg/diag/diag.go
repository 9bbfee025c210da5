// Package diag carries warnings and errors out of an expansion run.
//
// The engine never returns recoverable problems (missing data paths, failed
// includes) as errors. It reports them as Entry values to a Sink instead.
// Sinks may be called from several goroutines at once.
package diag

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Level is the severity of an entry.
type Level string

// Entry levels.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// slogLevel maps a Level onto the slog scale.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Fields is the structured context attached to an entry.
type Fields struct {
	// Formula is the full formula being resolved.
	Formula string
	// Path is the traversed prefix of Formula at the point resolution stopped.
	Path string
	// Attribute is the directive attribute involved.
	Attribute string
	// Key is the include key involved.
	Key string
	// Run identifies the expansion run.
	Run   string
	Error error
	// Data is the data context in effect, set on include failures.
	Data any
}

// Entry is a single diagnostic.
type Entry struct {
	Level     Level
	Message   string
	Fields    Fields
	Timestamp time.Time
}

// Sink receives diagnostics.
type Sink func(Entry)

// Emit stamps and delivers an entry. A nil sink drops it.
func (s Sink) Emit(level Level, msg string, f Fields) {
	if s == nil {
		return
	}
	s(Entry{Level: level, Message: msg, Fields: f, Timestamp: time.Now()})
}

// Logger returns a sink that writes entries through l.
func Logger(l *slog.Logger) Sink {
	if l == nil {
		return Default()
	}
	return func(e Entry) {
		l.LogAttrs(context.Background(), e.Level.slogLevel(), e.Message, e.attrs()...)
	}
}

// Default returns a sink that writes through slog.Default().
func Default() Sink {
	return func(e Entry) {
		slog.Default().LogAttrs(context.Background(), e.Level.slogLevel(), e.Message, e.attrs()...)
	}
}

func (e Entry) attrs() []slog.Attr {
	var attrs []slog.Attr
	add := func(key, val string) {
		if val != "" {
			attrs = append(attrs, slog.String(key, val))
		}
	}
	add("run", e.Fields.Run)
	add("formula", e.Fields.Formula)
	add("path", e.Fields.Path)
	add("attribute", e.Fields.Attribute)
	add("key", e.Fields.Key)
	if e.Fields.Error != nil {
		attrs = append(attrs, slog.String("error", e.Fields.Error.Error()))
	}
	if e.Fields.Data != nil {
		attrs = append(attrs, slog.Any("data", e.Fields.Data))
	}
	return attrs
}

// Tee returns a sink that delivers every entry to each non-nil sink.
func Tee(sinks ...Sink) Sink {
	return func(e Entry) {
		for _, s := range sinks {
			if s != nil {
				s(e)
			}
		}
	}
}

// Collector records entries in memory.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
}

// Sink returns a sink that appends to the collector.
func (c *Collector) Sink() Sink {
	return func(e Entry) {
		c.mu.Lock()
		c.entries = append(c.entries, e)
		c.mu.Unlock()
	}
}

// Entries returns a copy of the recorded entries.
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Count returns the number of entries at the given level.
func (c *Collector) Count(level Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Reset drops all recorded entries.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
}
