// Package mcp exposes the mediator's tool surface over the Model Context
// Protocol: one tool per row of the inbound tool surface, each translating
// a named argument object into a Session or Manager call and a short text
// result.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/netdap/netdap-mcp/internal/config"
	"github.com/netdap/netdap-mcp/internal/manager"
)

// Server wraps the MCP server with the debugger-control tool surface.
type Server struct {
	mcpServer *server.MCPServer
	manager   *manager.Manager
	config    config.Config
}

// NewServer creates a netdap-mcp server and registers every tool.
func NewServer(cfg config.Config) *Server {
	mcpServer := server.NewMCPServer(
		"netdap-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer: mcpServer,
		manager:   manager.New(cfg),
		config:    cfg,
	}

	s.registerTools()

	return s
}

// ServeStdio starts the server on the line-delimited stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Close terminates every session and stops the idle reaper.
func (s *Server) Close() {
	s.manager.Close()
}

// Manager returns the session manager backing this server.
func (s *Server) Manager() *manager.Manager {
	return s.manager
}

// Config returns the server's configuration.
func (s *Server) Config() config.Config {
	return s.config
}
