// Package mcpserver exposes caret queries as MCP tools, so editors and
// agents without a native integration can ask for variable types.
package mcpserver

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/phobologic/varhint/internal/document"
	"github.com/phobologic/varhint/internal/hint"
	"github.com/phobologic/varhint/internal/model"
	"github.com/phobologic/varhint/internal/scan"
	"github.com/phobologic/varhint/internal/toon"
)

// Handlers serves the varhint tools.
type Handlers struct {
	store    *document.Store
	analyzer *hint.Analyzer
	scanner  *scan.Scanner
}

// NewHandlers returns tool handlers backed by store and analyzer.
func NewHandlers(store *document.Store, analyzer *hint.Analyzer) *Handlers {
	return &Handlers{store: store, analyzer: analyzer, scanner: scan.New(store, analyzer)}
}

// NewServer creates an MCP server with all varhint tools registered.
func NewServer(version string, h *Handlers) *server.MCPServer {
	s := server.NewMCPServer("varhint", version, server.WithToolCapabilities(false))
	h.Register(s)
	return s
}

// Register defines the tools on s.
func (h *Handlers) Register(s *server.MCPServer) {
	variableTypeTool := mcp.NewTool("variable_type",
		mcp.WithDescription("Report the inferred type of the Python variable at a caret position, as \"<name>: <type>\". Inference is best effort and single-file: it follows assignments, literals, arithmetic and calls to functions defined in the same file, and prefers written annotations. Returns a placeholder such as \"No variable at caret\" when the position is not on a variable."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path to the Python file (absolute, or relative to the server's working directory)")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line of the caret")),
		mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column of the caret, counted in characters")),
	)
	s.AddTool(variableTypeTool, h.VariableType)

	fileBindingsTool := mcp.NewTool("file_bindings",
		mcp.WithDescription("List every variable binding in a Python file with its position, scope and inferred type, as a TOON table."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path to the Python file (absolute, or relative to the server's working directory)")),
	)
	s.AddTool(fileBindingsTool, h.FileBindings)
}

// VariableType handles the variable_type tool.
func (h *Handlers) VariableType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := request.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	line, err := request.RequireInt("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	column, err := request.RequireInt("column")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := h.store.Load(ctx, file)
	if err != nil {
		return mcp.NewToolResultError("Failed to load file: " + err.Error()), nil
	}
	if line < 1 || column < 1 || int64(line) > math.MaxUint32 || int64(column) > math.MaxUint32 {
		return mcp.NewToolResultText(model.NoElement), nil
	}
	offset, ok := doc.Offset(uint32(line), uint32(column))
	if !ok {
		return mcp.NewToolResultText(model.NoElement), nil
	}
	return mcp.NewToolResultText(h.analyzer.Describe(doc, offset)), nil
}

// FileBindings handles the file_bindings tool.
func (h *Handlers) FileBindings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := request.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source, err := os.ReadFile(file)
	if err != nil {
		return mcp.NewToolResultError("Failed to load file: " + err.Error()), nil
	}
	fb, err := h.scanner.Source(ctx, file, source)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to analyze %s: %v", file, err)), nil
	}
	if fb.Language == "" {
		return mcp.NewToolResultText(model.NotPython), nil
	}
	return mcp.NewToolResultText(toon.EncodeBindings([]model.FileBindings{*fb})), nil
}
