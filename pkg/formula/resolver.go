package formula

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/getmockd/htmlgen/pkg/diag"
	"github.com/ohler55/ojg/jp"
)

// Resolver evaluates formulas against a Context.
//
// A formula is a dot-separated path ("user.address.city"); whitespace around
// segments is trimmed and empty segments are dropped, so an empty formula
// resolves to the context itself. A formula starting with "$" is a JSONPath
// expression evaluated against the whole context; its first match wins.
type Resolver struct {
	// Sink receives a warn entry when a path hits an undefined intermediate
	// value. A nil Sink uses diag.Default().
	Sink diag.Sink
	// Run tags emitted entries.
	Run string
}

// Value resolves formula. The second result is false when the value is
// undefined; nil with true means the data holds an explicit null.
func (r Resolver) Value(formula string, c Context) (any, bool) {
	if expr := strings.TrimSpace(formula); strings.HasPrefix(expr, "$") {
		return r.jsonPath(expr, c)
	}

	segs := Segments(formula)
	if len(segs) == 0 {
		return c.Value(), true
	}

	cur, ok := c.Lookup(segs[0])
	for i := 1; i < len(segs); i++ {
		if !ok {
			r.sink().Emit(diag.LevelWarn, "formula path is undefined", diag.Fields{
				Formula: formula,
				Path:    strings.Join(segs[:i], "."),
				Run:     r.Run,
			})
			return nil, false
		}
		cur, ok = Field(cur, segs[i])
	}
	return cur, ok
}

// String resolves formula and renders it with Stringify. Undefined values
// render as "".
func (r Resolver) String(formula string, c Context) string {
	v, ok := r.Value(formula, c)
	if !ok {
		return ""
	}
	return Stringify(v)
}

func (r Resolver) jsonPath(expr string, c Context) (any, bool) {
	x, err := jp.ParseString(expr)
	if err != nil {
		r.sink().Emit(diag.LevelWarn, "invalid JSONPath formula", diag.Fields{
			Formula: expr,
			Run:     r.Run,
			Error:   err,
		})
		return nil, false
	}
	results := x.Get(c.Value())
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

func (r Resolver) sink() diag.Sink {
	if r.Sink == nil {
		return diag.Default()
	}
	return r.Sink
}

// Segments splits a formula into trimmed, non-empty path segments.
func Segments(formula string) []string {
	var segs []string
	for _, s := range strings.Split(formula, ".") {
		if s = strings.TrimSpace(s); s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// Stringify renders a value in its canonical text form: nil renders as "",
// lists as "[e1,e2]" with null elements rendered as "null", numbers in their
// shortest decimal form, and anything else with fmt's default format.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatFloat(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = element(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return Stringify(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = element(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return fmt.Sprint(v)
}

func element(v any) string {
	if IsNull(v) {
		return "null"
	}
	return Stringify(v)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy reports whether v counts as true for guards: nil, false, numeric
// zero, NaN and "" are false; every other value, including empty lists and
// maps, is true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return Truthy(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.String:
		return rv.String() != ""
	case reflect.Bool:
		return rv.Bool()
	}
	return true
}

// IsNull reports whether v is nil or a nil pointer, map, slice or interface.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// List converts v to a list when it is a slice or array.
func List(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil, false
		}
	case reflect.Array:
	default:
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
