package driver

import (
	"fmt"
	"path"
	"strings"

	"github.com/nissy-dev/stc/pkg/checker"
	"github.com/nissy-dev/stc/pkg/env"
)

// ErrUnresolvedModule is returned when a specifier names no module. It is
// the checker's sentinel so that analyzers recognize it.
var ErrUnresolvedModule = checker.ErrUnresolvedModule

// Resolver maps import specifiers to module paths on an FS.
type Resolver struct {
	fsys       FS
	strategy   string
	extensions []string
}

func NewResolver(fsys FS, opts env.Options) *Resolver {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = env.DefaultOptions().Extensions
	}
	strategy := opts.ModuleResolution
	if strategy == "" {
		strategy = "node"
	}
	return &Resolver{fsys: fsys, strategy: strategy, extensions: exts}
}

func isRelative(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".." || strings.HasPrefix(spec, "/")
}

// Resolve returns the path of the module spec refers to when imported from
// the module at from.
func (r *Resolver) Resolve(spec, from string) (string, error) {
	if spec == "" {
		return "", fmt.Errorf("%w: empty specifier", ErrUnresolvedModule)
	}
	if isRelative(spec) {
		base := spec
		if !strings.HasPrefix(spec, "/") {
			base = path.Join(path.Dir(from), spec)
		}
		if p, ok := r.probe(cleanPath(base)); ok {
			return p, nil
		}
		return "", fmt.Errorf("%w: %q from %s", ErrUnresolvedModule, spec, from)
	}
	if r.strategy == "classic" {
		if p, ok := r.probe(cleanPath(spec)); ok {
			return p, nil
		}
		return "", fmt.Errorf("%w: %q from %s", ErrUnresolvedModule, spec, from)
	}
	dir := path.Dir(cleanPath(from))
	for {
		if p, ok := r.probe(cleanPath(path.Join(dir, "node_modules", spec))); ok {
			return p, nil
		}
		if dir == "." || dir == "/" {
			break
		}
		dir = path.Dir(dir)
	}
	return "", fmt.Errorf("%w: %q from %s", ErrUnresolvedModule, spec, from)
}

// probe tries base as a file, then as a directory with an index file,
// then through the entry points of a package manifest in base.
func (r *Resolver) probe(base string) (string, bool) {
	if p, ok := r.probeFile(base); ok {
		return p, true
	}
	if p, ok := r.probeExtensions(path.Join(base, "index")); ok {
		return p, true
	}
	m, err := findManifest(r.fsys, base)
	if err != nil || m == nil {
		return "", false
	}
	for _, entry := range m.Entries() {
		if p, ok := r.probeFile(entry); ok {
			return p, true
		}
		if ext := path.Ext(entry); ext == ".js" || ext == ".mjs" || ext == ".cjs" {
			if p, ok := r.probeExtensions(strings.TrimSuffix(entry, ext)); ok {
				return p, true
			}
		}
		if p, ok := r.probeExtensions(path.Join(entry, "index")); ok {
			return p, true
		}
	}
	return "", false
}

func (r *Resolver) probeFile(base string) (string, bool) {
	if isFile(r.fsys, base) {
		return base, true
	}
	return r.probeExtensions(base)
}

func (r *Resolver) probeExtensions(base string) (string, bool) {
	for _, ext := range r.extensions {
		if p := base + ext; isFile(r.fsys, p) {
			return p, true
		}
	}
	return "", false
}
