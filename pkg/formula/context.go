package formula

import (
	"maps"
	"reflect"
	"strconv"
	"strings"
)

// Context is the data visible to formula resolution at one point of an
// expansion. It is immutable: Bind returns a derived Context and leaves the
// receiver untouched, so sibling iterations never observe each other's
// bindings.
type Context struct {
	base     any
	bindings map[string]any
}

// NewContext creates a root context over data.
func NewContext(data any) Context {
	return Context{base: data}
}

// Bind returns a derived context where name resolves to value. Keys of the
// parent context stay visible unless name shadows them.
func (c Context) Bind(name string, value any) Context {
	b := make(map[string]any, len(c.bindings)+1)
	maps.Copy(b, c.bindings)
	b[name] = value
	return Context{base: c.base, bindings: b}
}

// Value returns the context as a single value. Without bindings this is the
// original data; otherwise a new map merging the data's keys (when it is a
// map) with the bindings.
func (c Context) Value() any {
	if len(c.bindings) == 0 {
		return c.base
	}
	merged := make(map[string]any, len(c.bindings))
	if m, ok := c.base.(map[string]any); ok {
		maps.Copy(merged, m)
	}
	maps.Copy(merged, c.bindings)
	return merged
}

// Lookup resolves a single top-level key.
func (c Context) Lookup(key string) (any, bool) {
	if v, ok := c.bindings[key]; ok {
		return v, true
	}
	return Field(c.base, key)
}

// Field returns the member key of v. Maps with string keys are indexed by
// key, structs by json tag or field name, slices, arrays and strings by
// decimal index or "length". The second result is false when the member is
// undefined.
func Field(v any, key string) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		x, ok := t[key]
		return x, ok
	case []any:
		return index(len(t), key, func(i int) any { return t[i] })
	case string:
		return index(len(t), key, func(i int) any { return string(t[i]) })
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		return structField(rv, key)
	case reflect.Slice, reflect.Array:
		return index(rv.Len(), key, func(i int) any { return rv.Index(i).Interface() })
	case reflect.String:
		s := rv.String()
		return index(len(s), key, func(i int) any { return string(s[i]) })
	}
	return nil, false
}

func index(n int, key string, at func(int) any) (any, bool) {
	if key == "length" {
		return n, true
	}
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= n {
		return nil, false
	}
	return at(i), true
}

func structField(rv reflect.Value, key string) (any, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag := f.Tag.Get("json"); tag != "" {
			name, _, _ := strings.Cut(tag, ",")
			if name == key {
				return rv.Field(i).Interface(), true
			}
		}
		if f.Name == key {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}
