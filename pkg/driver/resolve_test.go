package driver

import (
	"errors"
	"testing"

	"github.com/nissy-dev/stc/pkg/env"
)

func resolverFor(t *testing.T, files map[string]string, opts env.Options) *Resolver {
	t.Helper()
	fsys := MemFS()
	if err := WriteFiles(fsys, files); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewResolver(fsys, opts)
}

func TestResolveProbeOrder(t *testing.T) {
	r := resolverFor(t, map[string]string{
		"src/main.ts":                    "",
		"src/util.ts":                    "",
		"src/util.d.ts":                  "",
		"src/lib/index.tsx":              "",
		"src/types.d.ts":                 "",
		"pkg/package.json":               `{"name": "pkg", "types": "dist/api.d.ts", "version": "1.0.0"}`,
		"pkg/dist/api.d.ts":              "",
		"js/package.yml":                 "name: js\nmain: out/entry.js\n",
		"js/out/entry.ts":                "",
		"node_modules/dep/index.ts":      "",
		"src/node_modules/near/index.ts": "",
	}, env.DefaultOptions())

	cases := []struct {
		spec, from, want string
	}{
		{"./util", "src/main.ts", "src/util.ts"},
		{"./util.d.ts", "src/main.ts", "src/util.d.ts"},
		{"./lib", "src/main.ts", "src/lib/index.tsx"},
		{"./types", "src/main.ts", "src/types.d.ts"},
		{"../pkg", "src/main.ts", "pkg/dist/api.d.ts"},
		{"/js", "src/main.ts", "js/out/entry.ts"},
		{"dep", "src/main.ts", "node_modules/dep/index.ts"},
		{"near", "src/main.ts", "src/node_modules/near/index.ts"},
	}
	for _, tc := range cases {
		got, err := r.Resolve(tc.spec, tc.from)
		if err != nil {
			t.Fatalf("resolve %q: unexpected error: %v", tc.spec, err)
		}
		if got != tc.want {
			t.Fatalf("resolve %q: expected %s, got %s", tc.spec, tc.want, got)
		}
	}
}

func TestResolveUnresolved(t *testing.T) {
	r := resolverFor(t, map[string]string{"main.ts": "", "node_modules/x/readme.md": ""}, env.DefaultOptions())
	for _, spec := range []string{"./missing", "x", "../outside", ""} {
		if _, err := r.Resolve(spec, "main.ts"); !errors.Is(err, ErrUnresolvedModule) {
			t.Fatalf("resolve %q: expected ErrUnresolvedModule, got %v", spec, err)
		}
	}
}

func TestResolveClassicUsesProjectRoot(t *testing.T) {
	opts := env.DefaultOptions()
	opts.ModuleResolution = "classic"
	r := resolverFor(t, map[string]string{"a/main.ts": "", "shared.ts": "", "node_modules/dep/index.ts": ""}, opts)
	got, err := r.Resolve("shared", "a/main.ts")
	if err != nil || got != "shared.ts" {
		t.Fatalf("expected shared.ts, got %q (%v)", got, err)
	}
	if _, err := r.Resolve("dep", "a/main.ts"); !errors.Is(err, ErrUnresolvedModule) {
		t.Fatalf("expected classic resolution to skip node_modules, got %v", err)
	}
}

func TestLoadManifestEntries(t *testing.T) {
	fsys := MemFS()
	if err := WriteFiles(fsys, map[string]string{
		"lib/package.json": `{"name": " lib ", "typings": "./types/index.d.ts", "main": "index.js", "scripts": {"test": "x"}}`,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := LoadManifest(fsys, "lib/package.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "lib" {
		t.Fatalf("expected trimmed name, got %q", m.Name)
	}
	entries := m.Entries()
	if len(entries) != 2 || entries[0] != "lib/types/index.d.ts" || entries[1] != "lib/index.js" {
		t.Fatalf("unexpected entries %v", entries)
	}
}
