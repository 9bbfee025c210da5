// Package expand instantiates template markers in an HTML or XML tree.
// A marker is an element, <template> by default, carrying a scope attribute.
// Its content is instantiated against a data model and inserted next to it.
//
// # Directives
//
// With the default prefix "data-gen":
//   - data-gen-scope - marks a template; a space separated list of scope names
//   - data-gen-text - replaces the element text with the formula value
//   - data-gen-html - replaces the element content with the value parsed as markup
//   - data-gen-json - replaces the element content with the value as JSON
//   - data-gen-attrs - "name: formula, name: formula"; null removes the attribute
//   - data-gen-repeat - instantiates once per list item, bound to data-gen-repeat-name
//   - data-gen-if - removes the element, or skips the marker, when the value is falsy
//   - data-gen-include - replaces the content with markup from an include.Resolver
//   - data-gen-comment - dropped from the output
//   - data-gen-insert-before - inserts output before the marker instead of after
//
// # Formulas
//
// A formula is a dotted path ("user.address.city") resolved against the
// current data context, or a JSONPath expression starting with "$".
// Repeat bindings shadow the outer data for the first path segment.
//
// # Re-expansion
//
// Every top-level output element is tagged with data-gen-cloned set to the
// active scope. Expand removes previously cloned nodes of that scope before
// it runs, so expanding the same tree twice yields the same document.
//
// # Errors
//
// Authoring mistakes that make a run meaningless, such as a repeat without a
// name, abort the run with a *ConfigError. Unresolved formulas and include
// failures are reported to the diag.Sink and expansion continues.
package expand
