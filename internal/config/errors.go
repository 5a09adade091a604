package config

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for configuration access.
var (
	// ErrSettingNotFound indicates no source sets the path.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrTypeMismatch indicates a value of the wrong kind, such as a
	// string where a number is required.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed indicates a setting holds an unusable value.
	ErrValidationFailed = errors.New("validation failed")

	// ErrInvalidPath indicates an empty path or an empty path segment.
	ErrInvalidPath = errors.New("invalid setting path")
)

// ValidationError reports the setting that failed Validate.
type ValidationError struct {
	Path    string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %s (got %v)", e.Path, e.Message, e.Value)
}

// Is matches ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// TypeError reports a setting whose value has the wrong kind.
type TypeError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("config %s: want %s, have %s", e.Path, e.Expected, e.Actual)
}

// Is matches ErrTypeMismatch.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}
