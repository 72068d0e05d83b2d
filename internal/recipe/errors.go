package recipe

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a payload was rejected.
type ErrorKind string

const (
	// KindSyntax means the payload is not well-formed JSON.
	KindSyntax ErrorKind = "syntax"
	// KindType means a value has the wrong JSON shape or an invalid URI/duration.
	KindType ErrorKind = "type"
	// KindMissing means a required field is absent, null or empty.
	KindMissing ErrorKind = "missing"
)

// ErrMissingField is the cause of every KindMissing DecodeError.
var ErrMissingField = errors.New("missing required field")

// DecodeError reports the field path at which decoding failed and the underlying cause.
// Syntax errors always carry the root path ".".
type DecodeError struct {
	Path  string
	Kind  ErrorKind
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode recipe at %s: %v", e.Path, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

func syntaxError(cause error) *DecodeError {
	return &DecodeError{Path: fieldPath(nil).String(), Kind: KindSyntax, Cause: cause}
}

func typeError(p fieldPath, want string, raw []byte) *DecodeError {
	return &DecodeError{
		Path:  p.String(),
		Kind:  KindType,
		Cause: fmt.Errorf("expected %s, found %s", want, shapeOf(raw)),
	}
}

func invalidValue(p fieldPath, cause error) *DecodeError {
	return &DecodeError{Path: p.String(), Kind: KindType, Cause: cause}
}

func missingError(p fieldPath) *DecodeError {
	return &DecodeError{Path: p.String(), Kind: KindMissing, Cause: ErrMissingField}
}
