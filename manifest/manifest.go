// Package manifest handles tapemill.toml run configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a tapemill.toml configuration: per-project defaults
// for the tape model and the CLI's diagnostics. Command-line flags
// override manifest values; manifest values override built-in defaults.
type Manifest struct {
	Tape   Tape   `toml:"tape"`
	Output Output `toml:"output"`
	Dump   Dump   `toml:"dump"`

	// Dir is the directory containing the tapemill.toml file (set at load time).
	Dir string `toml:"-"`
}

// Tape configures the memory model.
type Tape struct {
	Length   int `toml:"length"`
	CellBits int `toml:"cell-bits"`
}

// Output configures output buffering.
type Output struct {
	BufferSize int `toml:"buffer-size"`
}

// Dump configures the instruction-tree debug dump.
type Dump struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // empty: next to the source file
}

// Default returns a manifest with the built-in defaults: a 30000-cell
// 8-bit tape and a 64-unit output buffer.
func Default() *Manifest {
	return &Manifest{
		Tape:   Tape{Length: 30000, CellBits: 8},
		Output: Output{BufferSize: 64},
	}
}

// Load parses a tapemill.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "tapemill.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return m, nil
}

// FindAndLoad walks up from startDir to find a tapemill.toml file, then
// loads and returns the manifest. Returns the defaults if no manifest is
// found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", startDir, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "tapemill.toml")); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

func (m *Manifest) validate() error {
	switch m.Tape.CellBits {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("cell-bits must be 8, 16, 32, or 64 (got %d)", m.Tape.CellBits)
	}
	if m.Tape.Length <= 0 {
		return fmt.Errorf("tape length must be positive (got %d)", m.Tape.Length)
	}
	if m.Output.BufferSize <= 0 {
		return fmt.Errorf("output buffer-size must be positive (got %d)", m.Output.BufferSize)
	}
	return nil
}
