package polymorphic

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAssociation is returned when the owner cannot reflect the
	// requested association.
	ErrUnknownAssociation = errors.New("polymorphic: unknown association")
	// ErrInvalidDestroyPolicy is returned for allow_destroy values that are not
	// a boolean, a field name or a predicate.
	ErrInvalidDestroyPolicy = errors.New("polymorphic: invalid allow_destroy value")
	// ErrUnknownType is returned when a configured type name cannot be resolved.
	ErrUnknownType = errors.New("polymorphic: unknown type")
	// ErrMissingAttribute is returned when a destroy field is not present on a
	// record.
	ErrMissingAttribute = errors.New("polymorphic: missing attribute")
)

// ConfigError reports a configuration problem detected while preparing or
// rendering a polymorphic association.
type ConfigError struct {
	Op  string
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Key == "" {
		return fmt.Sprintf("polymorphic: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("polymorphic: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func configError(op, key string, err error) error {
	return &ConfigError{Op: op, Key: key, Err: err}
}
