package tool

import "errors"

// Registry and policy failures. Callers match them with errors.Is; the MCP
// layer turns them into tool error results.
var (
	// ErrToolNotFound means no note tool is registered under the requested name.
	ErrToolNotFound = errors.New("tool not found")

	// ErrDenied means the active policy (read-only mode or the deny list)
	// filtered the tool out.
	ErrDenied = errors.New("tool execution denied by policy")

	// ErrNoScopes rejects a registration without a read or write scope.
	ErrNoScopes = errors.New("tool must declare at least one scope")

	ErrEmptyToolName = errors.New("tool name must not be empty")

	// ErrDuplicateTool rejects a second registration under a taken name.
	ErrDuplicateTool = errors.New("tool already registered")
)
