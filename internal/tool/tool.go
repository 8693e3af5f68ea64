// Package tool defines the tool interface and the registry that mediates
// every call from a host. Tools are the security boundary between a host
// and the notes service: each call is policy checked, rate limited and
// audited here before it reaches the service.
package tool

import (
	"context"
	"encoding/json"
)

// Scope declares what kind of access a tool requires.
// Every tool must declare at least one scope.
type Scope string

// Scope values for tool access requirements.
const (
	ScopeReadOnly  Scope = "read_only"
	ScopeReadWrite Scope = "read_write"
)

// Tool is the interface that all notekeeper tools implement.
type Tool interface {
	// Name returns the unique identifier hosts invoke the tool by.
	Name() string

	// Description returns a human-readable description of what the tool does.
	Description() string

	// Schema returns a JSON Schema describing the tool's parameters.
	Schema() json.RawMessage

	// Scopes returns the access scopes this tool requires.
	Scopes() []Scope

	// Execute runs the tool with the given JSON arguments.
	Execute(ctx context.Context, args json.RawMessage) (Output, error)
}

// Output is the result of a tool execution.
type Output struct {
	// Content is the output text from the tool.
	Content string

	// IsError marks the output as an error condition for the host.
	IsError bool
}
