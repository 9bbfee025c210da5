// Package formula resolves dot-path formulas against nested data.
//
// # Formulas
//
// A formula selects a value out of a Context:
//
//	user.name          // map key or struct field
//	items.0.title      // list index
//	items.length       // list length
//	""                 // the whole context
//	$.items[?(@.on)]   // JSONPath, first match
//
// Resolution walks segments left to right. Null, false, zero and "" are
// legitimate results. When an intermediate segment is undefined the walk
// stops, one warn diagnostic names the traversed prefix, and the result is
// undefined. Undefined renders as "" and counts as false.
//
// # Contexts
//
// A Context wraps the caller's data. Repeat iterations derive child
// contexts with Bind, which copies the (small) binding set and never touches
// the parent or the original data.
package formula
