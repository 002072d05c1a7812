package errors

import (
	"fmt"
)

var ErrValidation = fmt.Errorf("validation failed")
var ErrTypeMismatch = fmt.Errorf("type mismatch")
var ErrUnknownTerm = fmt.Errorf("unknown term")
var ErrAttributeNotFound = fmt.Errorf("attribute not found")
var ErrUnresolvedReference = fmt.Errorf("unresolved reference")
var ErrRequiredParameter = fmt.Errorf("required parameter missing")
var ErrMalformedWireFormat = fmt.Errorf("malformed wire format")
var ErrUnsupportedKind = fmt.Errorf("unsupported attribute kind")

type myError struct {
	msg    string
	target error
	parent error
}

func (m myError) Error() string { return m.msg }
func (m myError) Is(target error) bool {
	return target == m.target || (m.parent != nil && target == m.parent)
}

func NewValidationError(format string, args ...any) error {
	return &myError{
		msg:    fmt.Sprintf(format, args...),
		target: ErrValidation,
	}
}

func NewTypeMismatchError(attributeName, kind string, value any) error {
	return &myError{
		msg:    fmt.Sprintf("attribute %s of kind %s does not accept values of type %T", attributeName, kind, value),
		target: ErrTypeMismatch,
		parent: ErrValidation,
	}
}

func NewUnknownTermError(termCode, rootCode string) error {
	return &myError{
		msg:    fmt.Sprintf("term %s is not a member of %s", termCode, rootCode),
		target: ErrUnknownTerm,
	}
}

func NewAttributeNotFoundError(attributeName string) error {
	return &myError{
		msg:    fmt.Sprintf("attribute not found [%s]", attributeName),
		target: ErrAttributeNotFound,
	}
}

// NewUnresolvedReferenceError reports a code that the metadata cache could not resolve.
// What is one of "GeoObjectType", "HierarchyType" or "Term".
func NewUnresolvedReferenceError(what, code string) error {
	return &myError{
		msg:    fmt.Sprintf("unable to resolve %s with code %s", what, code),
		target: ErrUnresolvedReference,
	}
}

func NewRequiredParameterError(method, parameter string) error {
	return &myError{
		msg:    fmt.Sprintf("method [%s] requires a value for the parameter named [%s]", method, parameter),
		target: ErrRequiredParameter,
	}
}

func NewMalformedWireFormatError(format string, args ...any) error {
	return &myError{
		msg:    fmt.Sprintf(format, args...),
		target: ErrMalformedWireFormat,
	}
}

func NewUnsupportedKindError(kind string) error {
	return &myError{
		msg:    fmt.Sprintf("attribute kind %q is not supported", kind),
		target: ErrUnsupportedKind,
	}
}
