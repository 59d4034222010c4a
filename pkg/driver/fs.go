package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FS is the filesystem module resolution and parsing read from. Paths are
// slash separated and relative to the filesystem root.
type FS = billy.Basic

// OSFS exposes the directory root of the host filesystem.
func OSFS(root string) FS {
	return osfs.New(root)
}

// MemFS returns an empty in-memory filesystem.
func MemFS() billy.Filesystem {
	return memfs.New()
}

// WriteFiles populates fsys with files keyed by path, creating parent
// directories as needed.
func WriteFiles(fsys billy.Filesystem, files map[string]string) error {
	for name, contents := range files {
		if dir := path.Dir(cleanPath(name)); dir != "." {
			if err := fsys.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("driver: mkdir %s: %w", dir, err)
			}
		}
		if err := util.WriteFile(fsys, cleanPath(name), []byte(contents), 0o644); err != nil {
			return fmt.Errorf("driver: write %s: %w", name, err)
		}
	}
	return nil
}

func isFile(fsys FS, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && !info.IsDir()
}

func readFile(fsys FS, name string) ([]byte, error) {
	data, err := util.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("driver: read %s: %w", name, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("driver: read %s: %w", name, err)
	}
	return data, nil
}

// cleanPath normalizes a module path: slash separated, no leading slash,
// no dot segments.
func cleanPath(p string) string {
	p = path.Clean("/" + p)
	if p == "/" {
		return "."
	}
	return p[1:]
}
