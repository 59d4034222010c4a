package driver

import (
	"fmt"

	"github.com/nissy-dev/stc/pkg/ast"
)

// Parser produces the syntax tree of the module at path.
type Parser interface {
	Parse(fsys FS, path string) (*ast.Module, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(fsys FS, path string) (*ast.Module, error)

func (f ParserFunc) Parse(fsys FS, path string) (*ast.Module, error) { return f(fsys, path) }

// SidecarSuffix is appended to a source path to find its syntax tree.
const SidecarSuffix = ".ast.json"

// SidecarParser reads the JSON syntax tree an external parser wrote next
// to each source file.
type SidecarParser struct{}

func (SidecarParser) Parse(fsys FS, path string) (*ast.Module, error) {
	data, err := readFile(fsys, path+SidecarSuffix)
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w", path, err)
	}
	mod, err := ast.DecodeModule(data)
	if err != nil {
		return nil, fmt.Errorf("parser: decode %s: %w", path+SidecarSuffix, err)
	}
	return mod, nil
}

// MapParser serves prebuilt trees keyed by module path. The filesystem
// still decides which paths exist.
type MapParser map[string]*ast.Module

func (m MapParser) Parse(_ FS, path string) (*ast.Module, error) {
	mod, ok := m[path]
	if !ok || mod == nil {
		return nil, fmt.Errorf("parser: no syntax tree for %s", path)
	}
	return mod, nil
}
