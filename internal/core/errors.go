package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput    = errors.New("input cannot be empty")
	ErrUnextractable = errors.New("could not extract a domain from input")
	ErrInvalidDomain = errors.New("invalid domain format")
)

// InputError rejects a lookup before any source is queried. It is always
// recoverable: the caller asks for new input.
type InputError struct {
	Input  string
	Domain string
	Err    error
}

func (e *InputError) Error() string {
	if e.Domain != "" {
		return fmt.Sprintf("%v: %q", e.Err, e.Domain)
	}
	return e.Err.Error()
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// IsInputError reports whether err carries an *InputError.
func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}
