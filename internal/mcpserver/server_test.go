package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/seywald/marque/internal/linkservice"
	"github.com/seywald/marque/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	svc := linkservice.NewService(testutil.TestStore(t,
		testutil.Link(0, "https://go.dev/blog", "Go blog", "golang dev", false),
		testutil.Link(1, "https://doc.rust-lang.org/book", "Rust book", "rust dev", false),
	), testutil.TestHistory(t), nil, nil)
	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are exercised directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_links":
		result, err = srv.searchLinks(ctx, req)
	case "get_link":
		result, err = srv.getLink(ctx, req)
	case "add_link":
		result, err = srv.addLink(ctx, req)
	case "tag_cloud":
		result, err = srv.tagCloud(ctx, req)
	case "daily":
		result, err = srv.daily(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchLinks(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search_links", map[string]interface{}{"searchterm": "rust"})
	text := resultText(r)
	if !strings.Contains(text, "Rust book") {
		t.Errorf("search result missing match: %q", text)
	}
	if strings.Contains(text, "Go blog") {
		t.Errorf("search result includes non-match: %q", text)
	}

	r = callTool(t, srv, "search_links", map[string]interface{}{"searchtags": "dev"})
	text = resultText(r)
	if !strings.Contains(text, "Go blog") || !strings.Contains(text, "Rust book") {
		t.Errorf("tag search should match both bookmarks: %q", text)
	}
}

func TestGetLink(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_link", map[string]interface{}{"id": 0})
	if !strings.Contains(resultText(r), "Go blog") {
		t.Errorf("get result = %q", resultText(r))
	}

	r = callTool(t, srv, "get_link", map[string]interface{}{"id": 99})
	if !r.IsError {
		t.Error("expected error for missing bookmark")
	}
}

func TestAddLink(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "add_link", map[string]interface{}{
		"url":   "https://new.example",
		"title": "New",
		"tags":  "fresh stuff",
	})
	text := resultText(r)
	if r.IsError {
		t.Fatalf("add failed: %q", text)
	}
	if !strings.Contains(text, `"id": 2`) {
		t.Errorf("add result missing assigned id: %q", text)
	}

	// Re-adding the same URL is rejected.
	r = callTool(t, srv, "add_link", map[string]interface{}{"url": "https://new.example"})
	if !r.IsError {
		t.Error("expected error for duplicate URL")
	}
}

func TestAddLink_NoteWithoutURL(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "add_link", map[string]interface{}{"description": "just a thought"})
	text := resultText(r)
	if r.IsError {
		t.Fatalf("add failed: %q", text)
	}
	if !strings.Contains(text, "/shaare/") {
		t.Errorf("note should link to its own permalink: %q", text)
	}
}

func TestTagCloud(t *testing.T) {
	srv := testServer(t)
	text := resultText(callTool(t, srv, "tag_cloud", map[string]interface{}{}))
	if !strings.Contains(text, `"name": "dev"`) || !strings.Contains(text, `"occurrences": 2`) {
		t.Errorf("tag cloud = %q", text)
	}
}

func TestDaily(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "daily", map[string]interface{}{"day": "20240310"})
	text := resultText(r)
	if !strings.Contains(text, "Go blog") {
		t.Errorf("daily = %q", text)
	}

	r = callTool(t, srv, "daily", map[string]interface{}{"day": "bogus"})
	if !r.IsError {
		t.Error("expected error for malformed day")
	}
}
