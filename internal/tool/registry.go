package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/flemzord/notekeeper/internal/security"
)

// Registry holds registered tools and orchestrates their execution.
// It is instance-based (not global) for better testability.
type Registry struct {
	mu          sync.RWMutex
	tools       map[string]Tool
	policy      Policy
	auditLogger *security.AuditLogger
	rateLimiter *security.RateLimiter
}

// NewRegistry creates an empty tool registry that allows every tool.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// SetPolicy replaces the execution policy.
func (r *Registry) SetPolicy(p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policy = p
}

// SetAuditLogger configures audit logging for tool executions.
func (r *Registry) SetAuditLogger(logger *security.AuditLogger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auditLogger = logger
}

// SetRateLimiter configures rate limiting for tool executions.
func (r *Registry) SetRateLimiter(limiter *security.RateLimiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rateLimiter = limiter
}

// Register adds a tool to the registry.
// It returns ErrNoScopes if the tool declares no scopes,
// and ErrDuplicateTool if a tool with the same name is already registered.
func (r *Registry) Register(t Tool) error {
	name := strings.TrimSpace(t.Name())
	if name == "" {
		return ErrEmptyToolName
	}
	if len(t.Scopes()) == 0 {
		return fmt.Errorf("%w: %s", ErrNoScopes, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}

	r.tools[name] = t
	return nil
}

// Get returns the tool with the given name, or ErrToolNotFound.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return t, nil
}

// Names returns all registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Enabled returns the tools the current policy allows, sorted by name.
func (r *Registry) Enabled() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		if r.policy.Allows(t) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b Tool) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return out
}

// Execute orchestrates tool execution: lookup → policy → argument
// validation → rate limit → audit → execute → audit.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (Output, error) {
	t, err := r.Get(name)
	if err != nil {
		return Output{}, err
	}

	r.mu.RLock()
	policy := r.policy
	rl := r.rateLimiter
	al := r.auditLogger
	r.mu.RUnlock()

	if !policy.Allows(t) {
		if al != nil {
			al.Log(security.AuditEvent{
				Type:     security.EventDenied,
				ToolName: name,
				Detail:   "denied by policy",
			})
		}
		return Output{}, fmt.Errorf("%w: %s", ErrDenied, name)
	}

	if err := security.ValidateArgs(args); err != nil {
		return Output{}, fmt.Errorf("tool %s: %w", name, err)
	}

	if rl != nil {
		if err := rl.Allow(); err != nil {
			if al != nil {
				al.Log(security.AuditEvent{
					Type:     security.EventRateLimit,
					ToolName: name,
					Detail:   "tool_call rate limit exceeded",
				})
			}
			return Output{}, fmt.Errorf("tool %s: %w", name, err)
		}
	}

	if al != nil {
		al.Log(security.AuditEvent{
			Type:     security.EventToolCall,
			ToolName: name,
			Detail:   truncateForAudit(string(args)),
		})
	}

	output, err := t.Execute(ctx, args)

	if al != nil {
		detail := truncateForAudit(output.Content)
		if err != nil {
			detail = "error: " + err.Error()
		}
		al.Log(security.AuditEvent{
			Type:     security.EventToolResult,
			ToolName: name,
			Detail:   detail,
			Metadata: map[string]string{
				"is_error": fmt.Sprintf("%v", output.IsError || err != nil),
			},
		})
	}

	return output, err
}

// maxAuditDetailLen caps audit detail strings.
const maxAuditDetailLen = 4096

// truncateForAudit cuts s to maxAuditDetailLen on a rune boundary.
func truncateForAudit(s string) string {
	if len(s) <= maxAuditDetailLen {
		return s
	}
	i := maxAuditDetailLen
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i] + "...(truncated)"
}
