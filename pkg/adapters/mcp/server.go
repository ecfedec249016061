// Package mcp exposes the turn engine as an MCP server so agent tooling
// can drive a bot conversation: list flows, inspect one, and submit turns.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
)

// Engine is the turn surface the MCP server needs.
type Engine interface {
	Turn(ctx context.Context, in *domain.TurnInput) (*domain.TurnOutput, error)
}

// Catalog enumerates and resolves registered flows.
type Catalog interface {
	Names() []string
	Lookup(bot, locale string) (*flow.Flow, error)
}

// Server wraps the engine as an MCP server.
type Server struct {
	engine    Engine
	catalog   Catalog
	version   string
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers its tools.
func NewServer(engine Engine, catalog Catalog, version string) *Server {
	s := &Server{
		engine:    engine,
		catalog:   catalog,
		version:   version,
		mcpServer: server.NewMCPServer("espalier-mcp", version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_flows",
		mcp.WithDescription("List the registered bot flow names."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, _ := json.Marshal(s.catalog.Names())
		return mcp.NewToolResultText(string(data)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("describe_flow",
		mcp.WithDescription("Get the full definition of one flow: steps, slots, rules and routing."),
		mcp.WithString("bot", mcp.Required(), mcp.Description("Bot name")),
		mcp.WithString("locale", mcp.Description("Locale id, e.g. en_US")),
	), s.handleDescribe)

	s.mcpServer.AddTool(mcp.NewTool("turn",
		mcp.WithDescription("Submit one conversation turn. The payload is the JSON turn input; the result is the engine's directive."),
		mcp.WithString("payload", mcp.Required(), mcp.Description("JSON-encoded turn input")),
	), s.handleTurn)
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	bot, _ := args["bot"].(string)
	locale, _ := args["locale"].(string)

	f, err := s.catalog.Lookup(bot, locale)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, ok := request.GetArguments()["payload"].(string)
	if !ok || payload == "" {
		return mcp.NewToolResultError("payload is required"), nil
	}

	var in domain.TurnInput
	if err := json.Unmarshal([]byte(payload), &in); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("malformed turn input: %v", err)), nil
	}

	out, err := s.engine.Turn(ctx, &in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("turn failed: %v", err)), nil
	}
	data, _ := json.Marshal(out)
	return mcp.NewToolResultText(string(data)), nil
}
