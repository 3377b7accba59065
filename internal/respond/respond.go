// Package respond builds the uniform success/error/info envelopes every
// operation returns. The builders are total: any combination of inputs
// yields a well-formed envelope.
package respond

import "encoding/json"

// Field is an extra key/value pair merged into an envelope. Extra fields
// never overwrite the core keys.
type Field struct {
	Key   string
	Value any
}

// Envelope is the uniform operation result. Success=false implies Message
// is a human-readable failure description, with ErrorCode set when the
// failure was classified.
type Envelope struct {
	Success   bool
	Message   string
	Data      any
	ErrorCode string
	Details   any
	Type      string

	extra []Field
}

// Success builds a success envelope. data may be nil.
func Success(message string, data any, extra ...Field) Envelope {
	return Envelope{Success: true, Message: message, Data: data, extra: extra}
}

// Error builds an error envelope. code and details may be empty.
func Error(message, code string, details any, extra ...Field) Envelope {
	return Envelope{Message: message, ErrorCode: code, Details: details, extra: extra}
}

// Info builds an informational envelope. It implies success and tags the
// envelope with type "info".
func Info(message string, data any, extra ...Field) Envelope {
	return Envelope{Success: true, Message: message, Data: data, Type: "info", extra: extra}
}

// Legacy renders the envelope in the plain-string encoding used by callers
// that do not consume structured responses.
func Legacy(e Envelope) string {
	if e.Success {
		return "Success: " + e.Message
	}
	return "Error: " + e.Message
}

// AsMap flattens the envelope into its wire shape: the core keys plus any
// extra fields that do not collide with them.
func (e Envelope) AsMap() map[string]any {
	m := make(map[string]any, 6+len(e.extra))
	for _, f := range e.extra {
		m[f.Key] = f.Value
	}
	m["success"] = e.Success
	m["message"] = e.Message
	if e.Type != "" {
		m["type"] = e.Type
	}
	if e.Data != nil {
		m["data"] = e.Data
	}
	if e.ErrorCode != "" {
		m["error_code"] = e.ErrorCode
	}
	if e.Details != nil {
		m["details"] = e.Details
	}
	return m
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.AsMap())
}
