package mcp

import (
	"errors"
	"fmt"
)

// ErrAuthRequired is returned by the router when a method needs an
// authenticated principal and none was supplied. It is mapped to JSON-RPC
// error -32600 inside an HTTP 200 response; it must never surface as a
// transport-level 401, which makes MCP clients start an OAuth discovery
// flow this gateway does not implement.
var ErrAuthRequired = errors.New("Authentication required. Provide a valid MCP API token as Bearer token in the Authorization header.")

// ValidationError is a caller mistake: unknown tool, unknown resource type,
// malformed URI, or a missing required argument. The router maps it to
// JSON-RPC error -32601.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
