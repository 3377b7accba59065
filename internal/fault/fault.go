// Package fault defines the classified error taxonomy and the handler
// wrapper that converts any failure into a response envelope.
package fault

import (
	"errors"
	"fmt"

	"github.com/framewise/resolve-mcp/internal/validate"
)

// Code tags a classified failure.
type Code string

const (
	CodeConnection   Code = "CONNECTION_ERROR"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeOperation    Code = "OPERATION_ERROR"
	CodeNodeNotFound Code = "NODE_NOT_FOUND"
	CodeItemNotFound Code = "ITEM_NOT_FOUND"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// Fault is a classified error.
type Fault struct {
	Code Code
	msg  string
}

func (f *Fault) Error() string { return f.msg }

// Connection reports that the host handle is absent or the host is
// unreachable.
func Connection(format string, args ...any) error {
	return &Fault{Code: CodeConnection, msg: fmt.Sprintf(format, args...)}
}

// Operation reports that the host was reached but the requested effect
// could not be achieved.
func Operation(format string, args ...any) error {
	return &Fault{Code: CodeOperation, msg: fmt.Sprintf(format, args...)}
}

// NodeNotFound reports a missing Fusion node addressed by name.
func NodeNotFound(name string) error {
	return &Fault{Code: CodeNodeNotFound, msg: fmt.Sprintf("Node '%s' not found", name)}
}

// ItemNotFound reports a missing timeline item addressed by id or name.
func ItemNotFound(id string) error {
	return &Fault{Code: CodeItemNotFound, msg: fmt.Sprintf("Timeline item '%s' not found", id)}
}

// Classify maps an error to its code. Validation errors raised by the
// validate package classify as VALIDATION_ERROR; anything unrecognized is
// INTERNAL_ERROR.
func Classify(err error) Code {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	var v *validate.Error
	if errors.As(err, &v) {
		return CodeValidation
	}
	return CodeInternal
}
