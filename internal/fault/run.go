package fault

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/log"

	"github.com/framewise/resolve-mcp/internal/respond"
	"github.com/framewise/resolve-mcp/internal/validate"
)

// Run invokes fn and converts any failure — a returned error or a panic —
// into an error envelope. Nothing propagates past it. Classified failures
// log at a severity matching their class; panics log with a full stack
// trace.
func Run(logger *log.Logger, op string, fn func() (respond.Envelope, error)) (env respond.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("unexpected error", "op", op, "panic", r)
			logger.Error(string(debug.Stack()))
			env = respond.Error(fmt.Sprintf("Unexpected error: %v", r), string(CodeInternal), nil)
		}
	}()

	out, err := fn()
	if err == nil {
		return out
	}

	code := Classify(err)
	switch code {
	case CodeValidation:
		logger.Warn("validation error", "op", op, "err", err)
	case CodeConnection, CodeOperation, CodeNodeNotFound, CodeItemNotFound:
		logger.Error("operation failed", "op", op, "code", code, "err", err)
	default:
		logger.Error("unexpected error", "op", op, "err", err)
		return respond.Error("Unexpected error: "+err.Error(), string(CodeInternal), nil)
	}
	return respond.Error(err.Error(), string(code), details(err))
}

// details surfaces the structured parameter/constraint pair for validation
// failures; other classes carry no details.
func details(err error) any {
	var v *validate.Error
	if errors.As(err, &v) {
		return map[string]any{
			"parameter":  v.Param,
			"constraint": v.Constraint,
		}
	}
	return nil
}
