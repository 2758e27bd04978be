// Package parsererror defines the document-level failures of report extraction.
//
// Only two things can go wrong with a bureau document as a whole: the bytes are not
// well-formed XML, or they are well-formed but are not a bureau report. Missing or
// unparsable individual fields are never errors.
package parsererror

import (
	"errors"
	"fmt"
)

// Kind discriminates extraction failures so callers can branch without looking at
// error text.
type Kind int

const (
	KindMalformedInput Kind = iota + 1
	KindUnrecognizedSchema
)

func (k Kind) String() string {
	switch k {
	case KindMalformedInput:
		return "malformed_input"
	case KindUnrecognizedSchema:
		return "unrecognized_schema"
	default:
		return "unknown"
	}
}

var (
	ErrMalformedInput     = errors.New("malformed XML input")
	ErrUnrecognizedSchema = errors.New("unrecognized report schema")
)

// MalformedInputError reports bytes that are not well-formed XML.
type MalformedInputError struct {
	Err error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrMalformedInput, e.Err)
	}
	return ErrMalformedInput.Error()
}

// Unwrap returns the underlying parser error.
func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedInput) hold.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// Kind returns KindMalformedInput.
func (e *MalformedInputError) Kind() Kind {
	return KindMalformedInput
}

// NewMalformedInputError wraps a parser failure.
func NewMalformedInputError(err error) *MalformedInputError {
	return &MalformedInputError{Err: err}
}

// UnrecognizedSchemaError reports a well-formed document whose root is not the
// expected envelope.
type UnrecognizedSchemaError struct {
	Expected string
	Root     string
}

func (e *UnrecognizedSchemaError) Error() string {
	return fmt.Sprintf("%s: expected root <%s>, found <%s>", ErrUnrecognizedSchema, e.Expected, e.Root)
}

// Is makes errors.Is(err, ErrUnrecognizedSchema) hold.
func (e *UnrecognizedSchemaError) Is(target error) bool {
	return target == ErrUnrecognizedSchema
}

// Kind returns KindUnrecognizedSchema.
func (e *UnrecognizedSchemaError) Kind() Kind {
	return KindUnrecognizedSchema
}

// NewUnrecognizedSchemaError builds the error for a document rooted at root.
func NewUnrecognizedSchemaError(expected, root string) *UnrecognizedSchemaError {
	return &UnrecognizedSchemaError{Expected: expected, Root: root}
}

// KindOf returns the kind of the first extraction error in err's chain.
func KindOf(err error) (Kind, bool) {
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind(), true
	}
	return 0, false
}
