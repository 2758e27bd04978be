package parsererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("unexpected EOF")

	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantOK   bool
	}{
		{"malformed", NewMalformedInputError(cause), KindMalformedInput, true},
		{"unrecognized", NewUnrecognizedSchemaError("INProfileResponse", "Other"), KindUnrecognizedSchema, true},
		{"wrapped malformed", fmt.Errorf("upload: %w", NewMalformedInputError(cause)), KindMalformedInput, true},
		{"plain error", cause, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := KindOf(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestSentinelsAndUnwrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := fmt.Errorf("wrapped: %w", NewMalformedInputError(cause))

	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrUnrecognizedSchema)
	assert.Contains(t, err.Error(), "unexpected EOF")

	schemaErr := NewUnrecognizedSchemaError("INProfileResponse", "Invoice")
	assert.ErrorIs(t, schemaErr, ErrUnrecognizedSchema)
	assert.Equal(t, "unrecognized report schema: expected root <INProfileResponse>, found <Invoice>", schemaErr.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "malformed_input", KindMalformedInput.String())
	assert.Equal(t, "unrecognized_schema", KindUnrecognizedSchema.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
