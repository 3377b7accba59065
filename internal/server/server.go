// Package server assembles the dispatcher, page guard and operation
// catalog into one MCP server over stdio.
package server

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/framewise/resolve-mcp/internal/config"
	"github.com/framewise/resolve-mcp/internal/dispatch"
	"github.com/framewise/resolve-mcp/internal/host"
	"github.com/framewise/resolve-mcp/internal/ops"
	"github.com/framewise/resolve-mcp/internal/page"
)

// Server wraps the MCP server with the host handle and operation registry.
type Server struct {
	registry *dispatch.Registry
	server   *mcp.Server
}

// New builds the full server: guard over the handle, catalog over the
// guard, and every operation bound onto the MCP server.
func New(cfg config.Config, handle *host.Handle, connect host.Connector, logger *log.Logger, version string) (*Server, error) {
	guard := page.NewGuard(handle, logger)
	registry := dispatch.NewRegistry(guard, logger)
	ops.New(handle, connect, guard, cfg.Server.Legacy).Register(registry)

	impl := &mcp.Implementation{
		Name:    cfg.Server.Name,
		Version: version,
	}
	s := mcp.NewServer(impl, nil)
	if err := registry.Bind(s); err != nil {
		return nil, err
	}
	return &Server{registry: registry, server: s}, nil
}

// Registry exposes the operation table for listing and direct dispatch.
func (s *Server) Registry() *dispatch.Registry {
	return s.registry
}

// Run serves MCP requests on stdio until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
