// Package project reads braid.toml project manifests.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the CLI looks for in the working directory.
const ManifestName = "braid.toml"

// Manifest is a parsed braid.toml.
type Manifest struct {
	// Root is the directory the manifest was loaded from.
	Root string `toml:"-"`

	Package PackageSection `toml:"package"`
	Target  TargetSection  `toml:"target"`
	Build   BuildSection   `toml:"build"`
}

// PackageSection names the program and its IR entry point.
type PackageSection struct {
	Name string `toml:"name"`
	// Entry is the .bir file holding the program's CompilerIR.
	Entry string `toml:"entry"`
	// Output overrides the artifact base name; defaults to Name.
	Output string `toml:"output"`
}

// TargetSection overrides code generation target defaults.
type TargetSection struct {
	// Triple overrides the host target triple.
	Triple string `toml:"triple"`
}

// BuildSection selects build-time options.
type BuildSection struct {
	// Variant names the specialization overlay to activate.
	Variant string `toml:"variant"`
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: missing [package]", path)
	}
	if m.Package.Name == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if m.Package.Entry == "" {
		return nil, fmt.Errorf("%s: missing [package].entry", path)
	}
	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	m.Root = root
	return &m, nil
}

// Locate loads dir's manifest if present. The boolean reports whether a
// manifest was found; a found-but-invalid manifest is an error.
func Locate(dir string) (*Manifest, bool, error) {
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// EntryPath resolves the entry .bir file relative to the manifest root.
func (m *Manifest) EntryPath() string {
	if filepath.IsAbs(m.Package.Entry) {
		return m.Package.Entry
	}
	return filepath.Join(m.Root, m.Package.Entry)
}

// OutputBase returns the artifact base name for the manifest.
func (m *Manifest) OutputBase() string {
	if m.Package.Output != "" {
		return m.Package.Output
	}
	return m.Package.Name
}
