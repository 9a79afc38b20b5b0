package scan

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/varhint/internal/document"
	"github.com/phobologic/varhint/internal/hint"
	"github.com/phobologic/varhint/internal/model"
)

func newScanner() *Scanner {
	return New(document.NewStore(0), hint.New())
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSource(t *testing.T) {
	t.Parallel()
	src := `items = [1, 2]
count = len(items)

class Point:
    origin = (0, 0)

    def move(self, dx: float = 0.0):
        self.x = dx * 2
`
	fb, err := newScanner().Source(context.Background(), "geo.py", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "python", fb.Language)

	want := []model.Binding{
		{File: "geo.py", Name: "items", Line: 1, Column: 1, Scope: "module", Label: "list"},
		{File: "geo.py", Name: "count", Line: 2, Column: 1, Scope: "module", Label: "Unknown type"},
		{File: "geo.py", Name: "origin", Line: 5, Column: 5, Scope: "Point", Label: "tuple"},
		{File: "geo.py", Name: "self", Line: 7, Column: 14, Scope: "Point.move", Label: "Unknown type"},
		{File: "geo.py", Name: "dx", Line: 7, Column: 20, Scope: "Point.move", Label: "float"},
		{File: "geo.py", Name: "x", Line: 8, Column: 9, Scope: "Point.move", Label: "float"},
	}
	assert.Equal(t, want, fb.Bindings)
}

func TestSourceNotPython(t *testing.T) {
	t.Parallel()
	fb, err := newScanner().Source(context.Background(), "README.md", []byte("x = 1\n"))
	require.NoError(t, err)
	assert.Empty(t, fb.Language)
	assert.Empty(t, fb.Bindings)
}

func TestDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "b.py", "b = 'x'\n")
	writeFile(t, root, "a.py", "a = 1\n")
	writeFile(t, root, "pkg/c.py", "c = 1.5\n")
	writeFile(t, root, "README.md", "# notes\n")
	writeFile(t, root, "__pycache__/a.cpython-312.py", "junk = 1\n")

	rep, err := newScanner().Dir(context.Background(), root, Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), rep.RepoName)

	var paths []string
	for _, f := range rep.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"a.py", "b.py", filepath.Join("pkg", "c.py")}, paths)
	assert.Equal(t, "float", rep.Files[2].Bindings[0].Label)
}

func TestDirMaxFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "a.py", "a = 1\n")
	writeFile(t, root, "b.py", "b = 2\n")

	rep, err := newScanner().Dir(context.Background(), root, Options{MaxFiles: 1})
	require.NoError(t, err)
	require.Len(t, rep.Files, 1)
	assert.Equal(t, "a.py", rep.Files[0].Path)
}

func TestDirMaxFileSize(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "small.py", "a = 1\n")
	writeFile(t, root, "big.py", "data = '"+string(bytes.Repeat([]byte("x"), 200))+"'\n")

	var warnings bytes.Buffer
	rep, err := newScanner().Dir(context.Background(), root, Options{MaxFileSize: 100, Warnings: &warnings})
	require.NoError(t, err)
	require.Len(t, rep.Files, 1)
	assert.Equal(t, "small.py", rep.Files[0].Path)
	assert.Contains(t, warnings.String(), "big.py: skipped")
}

func TestDirEmpty(t *testing.T) {
	t.Parallel()
	_, err := newScanner().Dir(context.Background(), t.TempDir(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no python files found")
}

func TestDirCancelled(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "a.py", "a = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newScanner().Dir(ctx, root, Options{})
	require.ErrorIs(t, err, context.Canceled)
}
