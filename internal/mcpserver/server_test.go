package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/varhint/internal/document"
	"github.com/phobologic/varhint/internal/hint"
	"github.com/phobologic/varhint/internal/model"
)

func newHandlers() *Handlers {
	return NewHandlers(document.NewStore(0), hint.New())
}

func request(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVariableType(t *testing.T) {
	t.Parallel()
	h := newHandlers()
	path := writeFile(t, "calc.py", "x = 3.5\ny = x + 2\n")

	tests := []struct {
		line, column float64
		want         string
	}{
		{1, 1, "x: float"},
		{2, 1, "y: float"},
		{2, 5, "x: float"},
		{2, 7, model.NoVariable},
		{40, 1, model.NoElement},
		{0, 1, model.NoElement},
		{1<<32 + 1, 1, model.NoElement}, // would wrap to line 1
		{1, 1<<32 + 1, model.NoElement},
	}
	for _, tt := range tests {
		res, err := h.VariableType(context.Background(), request("variable_type", map[string]any{
			"file": path, "line": tt.line, "column": tt.column,
		}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, tt.want, text(t, res), "%v:%v", tt.line, tt.column)
	}
}

func TestVariableTypeErrors(t *testing.T) {
	t.Parallel()
	h := newHandlers()

	res, err := h.VariableType(context.Background(), request("variable_type", map[string]any{"line": 1, "column": 1}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.VariableType(context.Background(), request("variable_type", map[string]any{
		"file": filepath.Join(t.TempDir(), "missing.py"), "line": 1, "column": 1,
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "Failed to load file")
}

func TestVariableTypeNotPython(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "notes.txt", "x = 1\n")
	res, err := newHandlers().VariableType(context.Background(), request("variable_type", map[string]any{
		"file": path, "line": 1, "column": 1,
	}))
	require.NoError(t, err)
	assert.Equal(t, model.NotPython, text(t, res))
}

func TestFileBindings(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "calc.py", "x = 3.5\ny = x + 2\n")

	res, err := newHandlers().FileBindings(context.Background(), request("file_bindings", map[string]any{"file": path}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	out := text(t, res)
	assert.Contains(t, out, "bindings[2]{file,name,line,column,scope,type}:")
	assert.Contains(t, out, ",x,1,1,module,float")
	assert.Contains(t, out, ",y,2,1,module,float")
}

func TestFileBindingsNotPython(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "notes.txt", "x = 1\n")
	res, err := newHandlers().FileBindings(context.Background(), request("file_bindings", map[string]any{"file": path}))
	require.NoError(t, err)
	assert.Equal(t, model.NotPython, text(t, res))
}

func TestNewServerRegistersTools(t *testing.T) {
	t.Parallel()
	s := NewServer("test", newHandlers())

	resp := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"variable_type"`)
	assert.Contains(t, string(out), `"file_bindings"`)
}
