// Package mcpserver exposes the tool registry and prompt catalog over the
// Model Context Protocol using mark3labs/mcp-go. It owns no business logic:
// every tool call is delegated to tool.Registry.Execute.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flemzord/notekeeper/internal/prompt"
	"github.com/flemzord/notekeeper/internal/tool"
)

// DefaultEndpoint is the HTTP path of the streamable MCP endpoint.
const DefaultEndpoint = "/mcp"

// Config describes the server identity announced to hosts.
type Config struct {
	Name         string
	Version      string
	Instructions string
}

// Server wraps an mcp-go server wired to a registry.
type Server struct {
	mcp      *server.MCPServer
	registry *tool.Registry
	logger   *slog.Logger

	mu    sync.RWMutex
	tools []string
}

// New builds a Server. Only tools enabled by the registry's policy are
// announced; prompts may be nil.
func New(cfg Config, registry *tool.Registry, prompts *prompt.Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "notekeeper"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	}
	if prompts != nil {
		opts = append(opts, server.WithPromptCapabilities(true))
	}
	if cfg.Instructions != "" {
		opts = append(opts, server.WithInstructions(cfg.Instructions))
	}

	s := &Server{
		mcp:      server.NewMCPServer(cfg.Name, cfg.Version, opts...),
		registry: registry,
		logger:   logger.With("component", "mcpserver"),
	}

	for _, t := range registry.Enabled() {
		s.addTool(t)
		s.tools = append(s.tools, t.Name())
	}
	if prompts != nil {
		for _, p := range prompts.Templates() {
			s.mcp.AddPrompt(newPrompt(p), promptHandler(p))
		}
	}
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Tools returns the names of the announced tools, sorted.
func (s *Server) Tools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tools)
}

// SyncTools re-reads the registry policy and updates the announced tool
// list. Connected hosts receive a list_changed notification.
func (s *Server) SyncTools() (added, removed []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled := s.registry.Enabled()
	want := make([]string, 0, len(enabled))
	for _, t := range enabled {
		want = append(want, t.Name())
		if !slices.Contains(s.tools, t.Name()) {
			s.addTool(t)
			added = append(added, t.Name())
		}
	}
	for _, name := range s.tools {
		if !slices.Contains(want, name) {
			removed = append(removed, name)
		}
	}
	if len(removed) > 0 {
		s.mcp.DeleteTools(removed...)
	}
	s.tools = want
	if len(added) > 0 || len(removed) > 0 {
		s.logger.Info("tool list changed", "added", added, "removed", removed)
	}
	return added, removed
}

func (s *Server) addTool(t tool.Tool) {
	s.mcp.AddTool(mcp.NewToolWithRawSchema(t.Name(), t.Description(), t.Schema()), s.toolHandler(t.Name()))
}

// ServeStdio speaks MCP over in/out until ctx is cancelled or in is closed.
// Diagnostics go to the logger, never to out.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("serving MCP over stdio", "tools", s.Tools())
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("mcpserver: stdio: %w", err)
	}
	return nil
}

// HTTPHandler returns the streamable HTTP transport mounted at endpoint.
func (s *Server) HTTPHandler(endpoint string) http.Handler {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return server.NewStreamableHTTPServer(s.mcp, server.WithEndpointPath(endpoint))
}

func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		out, err := s.registry.Execute(ctx, name, args)
		if err != nil {
			s.logger.Warn("tool call refused", "tool", name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		if out.IsError {
			return mcp.NewToolResultError(out.Content), nil
		}
		return mcp.NewToolResultText(out.Content), nil
	}
}

func newPrompt(p prompt.Template) mcp.Prompt {
	opts := []mcp.PromptOption{mcp.WithPromptDescription(p.Description)}
	for _, a := range p.Arguments {
		opts = append(opts, mcp.WithArgument(a.Name,
			mcp.ArgumentDescription(a.Description),
			mcp.RequiredArgument(),
		))
	}
	return mcp.NewPrompt(p.Name, opts...)
}

func promptHandler(p prompt.Template) server.PromptHandlerFunc {
	return func(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		text, err := p.Render(req.Params.Arguments)
		if err != nil {
			return nil, err
		}
		return mcp.NewGetPromptResult(p.Description, []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		}), nil
	}
}
