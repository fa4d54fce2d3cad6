package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/voicelink/pkg/backend"
	"github.com/urmzd/voicelink/pkg/device/schema"
	"github.com/urmzd/voicelink/pkg/provider"
)

// Server exposes a user's devices as MCP tools
type Server struct {
	mcpServer  *server.MCPServer
	provider   *provider.Service
	controller backend.Controller
	validator  *schema.Validator
	userID     string
}

// NewServer creates a new MCP server acting for userID
func NewServer(p *provider.Service, controller backend.Controller, validator *schema.Validator, userID string) *Server {
	s := &Server{
		provider:   p,
		controller: controller,
		validator:  validator,
		userID:     userID,
	}

	s.mcpServer = server.NewMCPServer(
		"voicelink",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
