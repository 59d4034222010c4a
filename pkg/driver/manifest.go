package driver

import (
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// manifestNames are the package manifests probed in a directory, in order.
// package.json is read with the YAML decoder, JSON being a subset of YAML.
var manifestNames = []string{"package.json", "package.yml"}

// Manifest is the part of a package manifest that names its entry point.
type Manifest struct {
	Path    string `yaml:"-"`
	Name    string `yaml:"name"`
	Types   string `yaml:"types"`
	Typings string `yaml:"typings"`
	Module  string `yaml:"module"`
	Main    string `yaml:"main"`
}

// LoadManifest decodes the manifest at name. Fields other than the entry
// points are ignored since real manifests carry many more.
func LoadManifest(fsys FS, name string) (*Manifest, error) {
	data, err := readFile(fsys, name)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", name, err)
	}
	m.Path = name
	m.Name = strings.TrimSpace(m.Name)
	return &m, nil
}

// Entries lists the declared entry points relative to the filesystem
// root, in probe order.
func (m *Manifest) Entries() []string {
	if m == nil {
		return nil
	}
	dir := path.Dir(m.Path)
	var out []string
	for _, e := range []string{m.Types, m.Typings, m.Module, m.Main} {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, cleanPath(path.Join(dir, e)))
		}
	}
	return out
}

func findManifest(fsys FS, dir string) (*Manifest, error) {
	for _, name := range manifestNames {
		p := cleanPath(path.Join(dir, name))
		if !isFile(fsys, p) {
			continue
		}
		return LoadManifest(fsys, p)
	}
	return nil, nil
}
