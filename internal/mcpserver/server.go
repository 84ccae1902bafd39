// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Eihwaz hierarchy tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/eihwaz/internal/classservice"
)

// Server wraps the MCP server with Eihwaz tools.
type Server struct {
	mcp *server.MCPServer
	svc *classservice.Service
}

// New creates a new MCP server with all Eihwaz tools registered.
func New(svc *classservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Eihwaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("find_class",
		mcp.WithDescription("Look up a single class in a category. Lookup is case-insensitive."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name (e.g. CategoryData_CfgVehicles)")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Class name")),
	), s.findClass)

	s.mcp.AddTool(mcp.NewTool("class_path",
		mcp.WithDescription("Get a class's inheritance chain, from the class itself outward to where resolution stops."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Class name")),
	), s.classPath)

	s.mcp.AddTool(mcp.NewTool("class_children",
		mcp.WithDescription("List the immediate children of a class."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Class name")),
	), s.classChildren)

	s.mcp.AddTool(mcp.NewTool("class_descendants",
		mcp.WithDescription("List every transitive descendant of a class."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Class name")),
	), s.classDescendants)

	s.mcp.AddTool(mcp.NewTool("common_ancestor",
		mcp.WithDescription("Find the closest class present on both inheritance chains."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name")),
		mcp.WithString("a", mcp.Required(), mcp.Description("First class name")),
		mcp.WithString("b", mcp.Required(), mcp.Description("Second class name")),
	), s.commonAncestor)

	s.mcp.AddTool(mcp.NewTool("find_category",
		mcp.WithDescription("Find which category owns a class name, searching across all loaded categories."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Class name")),
	), s.findCategory)

	s.mcp.AddTool(mcp.NewTool("search_classes",
		mcp.WithDescription("Full-text search over class names, sources, and model paths."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchClasses)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List every loaded category with its class and root counts."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("get_export_contract",
		mcp.WithDescription("Returns the class export format contract. "+
			"Call this to understand what the hierarchy tools operate on."),
	), s.getExportContract)

	// Resource: export format contract.
	s.mcp.AddResource(
		mcp.NewResource("eihwaz://export-format", "Class Export Format Contract",
			mcp.WithResourceDescription("Canonical class database export format served by the hierarchy tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readExportFormatResource,
	)

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

func (s *Server) findClass(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.Detail(ctx, category, name, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s in %s", name, category)), nil
	}
	out, _ := json.MarshalIndent(detail, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) classPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path := s.svc.InheritancePath(ctx, category, name)
	if len(path) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s in %s", name, category)), nil
	}
	return mcp.NewToolResultText(strings.Join(path, " -> ")), nil
}

func (s *Server) classChildren(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	children := s.svc.Children(ctx, category, name)
	if len(children) == 0 {
		return mcp.NewToolResultText("no children found"), nil
	}
	return mcp.NewToolResultText(strings.Join(children, "\n")), nil
}

func (s *Server) classDescendants(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	descendants := s.svc.Descendants(ctx, category, name)
	if len(descendants) == 0 {
		return mcp.NewToolResultText("no descendants found"), nil
	}
	return mcp.NewToolResultText(strings.Join(descendants, "\n")), nil
}

func (s *Server) commonAncestor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := req.RequireString("a")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := req.RequireString("b")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ancestor, found := s.svc.CommonAncestor(ctx, category, a, b)
	if !found {
		return mcp.NewToolResultText(fmt.Sprintf("no common ancestor of %s and %s", a, b)), nil
	}
	return mcp.NewToolResultText(ancestor), nil
}

func (s *Server) findCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, ok := s.svc.FindClassCategory(ctx, name, false)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	return mcp.NewToolResultText(category), nil
}

func (s *Server) searchClasses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.Categories(ctx), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getExportContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ExportFormatContract), nil
}

func (s *Server) readExportFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "eihwaz://export-format",
			MIMEType: "text/markdown",
			Text:     ExportFormatContract,
		},
	}, nil
}
