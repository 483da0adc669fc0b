// Package manifest handles intcode.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "intcode.toml"

// Manifest represents an intcode.toml project configuration.
type Manifest struct {
	Program   Program   `toml:"program"`
	VM        VM        `toml:"vm"`
	Amplifier Amplifier `toml:"amplifier"`
	Assist    Assist    `toml:"assist"`
	Store     Store     `toml:"store"`
	Server    Server    `toml:"server"`
	Log       Log       `toml:"log"`

	// Dir is the directory containing the intcode.toml file (set at load time).
	Dir string `toml:"-"`
}

// Program names the default program and its inputs.
type Program struct {
	Name   string  `toml:"name"`
	Path   string  `toml:"path"`
	Inputs []int64 `toml:"inputs"`
}

// VM configures every VM the tools create.
type VM struct {
	MemoryLimit int  `toml:"memory-limit"`
	Trace       bool `toml:"trace"`
}

// Amplifier configures the amplifier search.
type Amplifier struct {
	Mode   string  `toml:"mode"`
	Phases []int64 `toml:"phases"`
}

// Assist configures the noun/verb search.
type Assist struct {
	Target int64 `toml:"target"`
	Max    int64 `toml:"max"`
}

// Store configures the run ledger.
type Store struct {
	// Backend is "sqlite", "leveldb" or "none".
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read-timeout"`
	WriteTimeout time.Duration `toml:"write-timeout"`
	MaxSessions  int           `toml:"max-sessions"`
	// StepLimit is the instruction budget of each server VM.
	StepLimit int `toml:"step-limit"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no intcode.toml exists.
func Default() *Manifest {
	m := &Manifest{Dir: "."}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Program.Path == "" {
		m.Program.Path = "input.txt"
	}
	if m.VM.MemoryLimit <= 0 {
		m.VM.MemoryLimit = 1 << 24
	}
	if m.Amplifier.Mode == "" {
		m.Amplifier.Mode = "feedback"
	}
	if len(m.Amplifier.Phases) == 0 {
		if m.Amplifier.Mode == "serial" {
			m.Amplifier.Phases = []int64{0, 1, 2, 3, 4}
		} else {
			m.Amplifier.Phases = []int64{5, 6, 7, 8, 9}
		}
	}
	if m.Assist.Max <= 0 {
		m.Assist.Max = 100
	}
	if m.Store.Backend == "" {
		m.Store.Backend = "sqlite"
	}
	if m.Store.Path == "" {
		m.Store.Path = filepath.Join(".intcode", "ledger.db")
	}
	if m.Server.Addr == "" {
		m.Server.Addr = ":8080"
	}
	if m.Server.ReadTimeout <= 0 {
		m.Server.ReadTimeout = 2 * time.Second
	}
	if m.Server.WriteTimeout <= 0 {
		m.Server.WriteTimeout = 5 * time.Second
	}
	if m.Server.MaxSessions <= 0 {
		m.Server.MaxSessions = 64
	}
	if m.Server.StepLimit <= 0 {
		m.Server.StepLimit = 50_000_000
	}
}

// Load parses an intcode.toml file from the given directory, fills in
// defaults and applies environment overrides.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	m.ApplyEnv()
	return &m, nil
}

// FindAndLoad walks up from startDir to find an intcode.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Resolve is FindAndLoad falling back to Default with environment overrides.
func Resolve(startDir string) (*Manifest, error) {
	m, err := FindAndLoad(startDir)
	if err != nil || m != nil {
		return m, err
	}
	m = Default()
	m.ApplyEnv()
	return m, nil
}

// ProgramPath returns the absolute path of the default program.
func (m *Manifest) ProgramPath() string {
	return m.resolve(m.Program.Path)
}

// StorePath returns the absolute path of the ledger.
func (m *Manifest) StorePath() string {
	return m.resolve(m.Store.Path)
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
