package img2ascii

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks errors caused by an unusable configuration:
	// a character set that is too small or degenerate, or a resolution
	// that is not a power of two or out of bounds.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidCharacter marks errors caused by a character that cannot
	// be rasterized, or a malformed character spec.
	ErrInvalidCharacter = errors.New("invalid character")
)

// ConfigurationError reports why an operation refused to run. No output
// is produced and no state is changed when it is returned.
type ConfigurationError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("did not %s: %s", e.Op, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrConfiguration and the underlying cause.
func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Err}
}

// InvalidCharacterError reports a character outside the rasterizable
// range, or a character spec that could not be parsed. The requested
// mutation is not applied.
type InvalidCharacterError struct {
	Op   string
	Char rune
	Spec string
}

func (e *InvalidCharacterError) Error() string {
	if e.Spec != "" {
		return fmt.Sprintf("did not %s: incorrect format %q", e.Op, e.Spec)
	}
	return fmt.Sprintf("did not %s: character %q (%U) is not supported", e.Op, e.Char, e.Char)
}

func (e *InvalidCharacterError) Unwrap() error {
	return ErrInvalidCharacter
}

func configError(op, format string, args ...any) error {
	return &ConfigurationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
