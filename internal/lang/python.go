package lang

import (
	"github.com/smacker/go-tree-sitter/python"
)

// Python is the name under which the Python grammar is registered.
const Python = "python"

func init() {
	Languages[Python] = &Language{
		Name:       Python,
		Extensions: []string{".py", ".pyi"},
		lang:       python.GetLanguage(),
	}
}
