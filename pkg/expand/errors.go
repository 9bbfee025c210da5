package expand

import (
	"errors"
	"fmt"
)

// Fatal configuration errors. They abort the whole run and are returned
// wrapped in a *ConfigError.
var (
	// ErrMissingRepeatName is returned when a marker repeats without naming
	// the iteration item.
	ErrMissingRepeatName = errors.New("expand: repeat directive requires a non-empty repeat-name")

	// ErrRepeatNotList is returned when a repeat formula does not resolve to a list.
	ErrRepeatNotList = errors.New("expand: repeat formula must resolve to a list")
)

// ErrNilRoot is returned when Expand is called without a tree.
var ErrNilRoot = errors.New("expand: root node is nil")

// ConfigError describes an authoring mistake on a template marker.
type ConfigError struct {
	// Tag is the marker element name.
	Tag string
	// Attribute is the directive attribute at fault.
	Attribute string
	// Formula is the attribute value.
	Formula string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v (<%s %s=%q>)", e.Err, e.Tag, e.Attribute, e.Formula)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
