package tool

import (
	"slices"
	"strings"
)

// Policy decides which registered tools may run.
type Policy struct {
	// ReadOnly denies every tool that declares ScopeReadWrite.
	ReadOnly bool `yaml:"read_only"`

	// Deny lists tool names that must never execute.
	Deny []string `yaml:"deny"`
}

// Allows reports whether t may execute under p.
func (p Policy) Allows(t Tool) bool {
	name := strings.TrimSpace(t.Name())
	if slices.Contains(p.Deny, name) {
		return false
	}
	if p.ReadOnly && slices.Contains(t.Scopes(), ScopeReadWrite) {
		return false
	}
	return true
}
