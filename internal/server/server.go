// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"github.com/b3computer/zettel-mcp/internal/config"
	"github.com/b3computer/zettel-mcp/internal/store"
	"github.com/b3computer/zettel-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"gorm.io/gorm"
)

// MCPServer wraps the mcp-go server with the zettelkasten dependencies
type MCPServer struct {
	mcpServer *server.MCPServer
	config    *config.Config
	db        *gorm.DB
	store     *store.Store
}

// NewMCPServer creates a new MCP server instance and registers the tools
func NewMCPServer(cfg *config.Config, db *gorm.DB, s *store.Store) (*MCPServer, error) {
	mcpServer := server.NewMCPServer(
		"Zettel",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &MCPServer{
		mcpServer: mcpServer,
		config:    cfg,
		db:        db,
		store:     s,
	}
	srv.registerTools()

	return srv, nil
}

// registerTools registers all zettelkasten MCP tools
func (s *MCPServer) registerTools() {
	toolCtx := tools.NewToolContext(s.db, s.store, s.store.BasePath())
	toolCtx.GitAuthor = s.config.Git.Author
	toolCtx.GitEmail = s.config.Git.Email

	// zettel_create: file a new analysis card
	s.mcpServer.AddTool(tools.NewCreateTool(), tools.CreateHandler(toolCtx))

	// zettel_read: fetch a full card by ID
	s.mcpServer.AddTool(tools.NewReadTool(), tools.ReadHandler(toolCtx))

	// zettel_links: list a card's cross-references in order
	s.mcpServer.AddTool(tools.NewLinksTool(), tools.LinksHandler(toolCtx))

	// zettel_connect: record a cross-reference between two cards
	s.mcpServer.AddTool(tools.NewConnectTool(), tools.ConnectHandler(toolCtx))

	// zettel_search: search the index by title, category or hashtag
	s.mcpServer.AddTool(tools.NewSearchTool(), tools.SearchHandler(toolCtx))

	// zettel_stats: corpus statistics and index health
	s.mcpServer.AddTool(tools.NewStatsTool(), tools.StatsHandler(toolCtx))

	// zettel_history: git history of a card
	s.mcpServer.AddTool(tools.NewHistoryTool(), tools.HistoryHandler(toolCtx))
}

// GetMCPServer returns the underlying MCP server
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP over stdin/stdout. Logging must go to stderr;
// stdout carries the JSON-RPC stream.
func (s *MCPServer) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
