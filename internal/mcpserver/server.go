// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the bookmark collection to LLM tooling via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/seywald/marque/internal/bookmark"
	"github.com/seywald/marque/internal/linkservice"
)

// Server wraps the MCP server with Marque tools. It is always
// constructed with owner rights: MCP runs over stdio on the owner's
// machine, there is no anonymous transport.
type Server struct {
	mcp *server.MCPServer
	svc *linkservice.Service
}

// New creates a new MCP server with all Marque tools registered.
func New(svc *linkservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Marque",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("search_links",
		mcp.WithDescription("Search bookmarks by full-text terms and/or tag patterns. "+
			"Terms support \"quoted phrases\" and -excluded tokens; tag patterns support "+
			"the * wildcard and a leading - for negation."),
		mcp.WithString("searchterm", mcp.Description("Full-text query (optional)")),
		mcp.WithString("searchtags", mcp.Description("Space-separated tag patterns (optional)")),
	), s.searchLinks)

	s.mcp.AddTool(mcp.NewTool("get_link",
		mcp.WithDescription("Fetch a single bookmark by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Bookmark id")),
	), s.getLink)

	s.mcp.AddTool(mcp.NewTool("add_link",
		mcp.WithDescription("Save a new bookmark. Omitting the URL creates a text-only note."),
		mcp.WithString("url", mcp.Description("URL to bookmark (optional for notes)")),
		mcp.WithString("title", mcp.Description("Title (defaults to the URL)")),
		mcp.WithString("description", mcp.Description("Free-text description")),
		mcp.WithString("tags", mcp.Description("Space-separated tags")),
		mcp.WithBoolean("private", mcp.Description("Keep the bookmark private")),
	), s.addLink)

	s.mcp.AddTool(mcp.NewTool("tag_cloud",
		mcp.WithDescription("Per-tag bookmark counts, most used first."),
		mcp.WithString("searchtags", mcp.Description("Narrow the counted subset by tag patterns (optional)")),
	), s.tagCloud)

	s.mcp.AddTool(mcp.NewTool("daily",
		mcp.WithDescription("Bookmarks saved on a given day, oldest first."),
		mcp.WithString("day", mcp.Required(), mcp.Description("Day in YYYYMMDD format")),
	), s.daily)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	links := s.svc.List(ctx, linkservice.ListRequest{
		SearchTerm: req.GetString("searchterm", ""),
		SearchTags: req.GetString("searchtags", ""),
	})
	return jsonResult(links)
}

func (s *Server) getLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no bookmark with id %d", id)), nil
	}
	return jsonResult(b)
}

func (s *Server) addLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b := bookmark.New()
	b.URL = req.GetString("url", "")
	b.Title = req.GetString("title", "")
	b.Description = req.GetString("description", "")
	b.SetTagsString(req.GetString("tags", ""))
	b.Private = req.GetBool("private", false)

	if b.URL != "" {
		if existing := s.svc.FindByURL(ctx, b.URL); existing != nil {
			return mcp.NewToolResultError(fmt.Sprintf("already bookmarked as id %d", existing.ID)), nil
		}
	}
	if err := s.svc.Create(ctx, b); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(b)
}

func (s *Server) tagCloud(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cloud := s.svc.TagCloud(ctx, req.GetString("searchtags", ""), "all")
	return jsonResult(cloud)
}

func (s *Server) daily(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := req.RequireString("day")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	links, dayErr := s.svc.Daily(ctx, day, "all")
	if dayErr != nil {
		return mcp.NewToolResultError(dayErr.Error()), nil
	}
	return jsonResult(links)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
