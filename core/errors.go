package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to one struct field. Field carries the
// field's JSON name as rendered by the validator translator.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a domain-rule failure: malformed input, a duplicate
// username, a question id that was never served. The API layer renders it as
// a 400 response. Fields may be empty when the failure is not tied to a
// single field.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdownError tells the server to stop serving: the process is in a state
// where handling further requests would make things worse.
type shutdownError struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdownError{message: msg}
}

func (s shutdownError) Error() string {
	return s.message
}

// IsShutdown reports whether a shutdownError hides anywhere in err's cause
// chain.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdownError)
	return ok
}
