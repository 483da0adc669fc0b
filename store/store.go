// Package store keeps a ledger of programs and the runs made against them.
//
// Programs are content addressed by their hash and stored as images. Runs are
// keyed by time-ordered UUIDs, so listing a program's runs in key order lists
// them oldest first. VM state is never persisted, only inputs and results.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chazu/intcode/pkg/intcode"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("intcode.store")

// ErrNotFound indicates the requested program or run doesn't exist.
var ErrNotFound = errors.New("not found")

// Run kinds.
const (
	KindRun     = "run"
	KindAmplify = "amplify"
	KindAssist  = "assist"
	KindSession = "session"
)

// ProgramRecord is a stored program.
type ProgramRecord struct {
	Hash      string
	Name      string
	Program   intcode.Program
	CreatedAt time.Time
}

// Run is the outcome of executing a program once.
type Run struct {
	ID        string    `json:"id" cbor:"1,keyasint"`
	Program   string    `json:"program" cbor:"2,keyasint"`
	Kind      string    `json:"kind" cbor:"3,keyasint"`
	Inputs    []string  `json:"inputs,omitempty" cbor:"4,keyasint,omitempty"`
	Output    []string  `json:"output,omitempty" cbor:"5,keyasint,omitempty"`
	Phases    []int64   `json:"phases,omitempty" cbor:"6,keyasint,omitempty"`
	Signal    string    `json:"signal,omitempty" cbor:"7,keyasint,omitempty"`
	State     string    `json:"state,omitempty" cbor:"8,keyasint,omitempty"`
	Error     string    `json:"error,omitempty" cbor:"9,keyasint,omitempty"`
	CreatedAt time.Time `json:"created_at" cbor:"10,keyasint"`
}

// Store is the ledger interface shared by all backends.
type Store interface {
	// PutProgram stores p under its hash and returns the hash. Storing the
	// same program twice keeps the first name.
	PutProgram(name string, p intcode.Program) (string, error)
	GetProgram(hash string) (*ProgramRecord, error)

	// RecordRun assigns an ID and timestamp when missing and stores r.
	RecordRun(r *Run) error
	GetRun(id string) (*Run, error)
	// Runs lists the runs of one program, oldest first.
	Runs(programHash string) ([]*Run, error)

	Close() error
}

// Open opens the backend by name: "sqlite", "leveldb", or "memory" (also
// "none"), which keeps the ledger in memory for the life of the process.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "sqlite", "sqlite3":
		return OpenSQLite(path)
	case "leveldb":
		return OpenLevelDB(path)
	case "memory", "none", "":
		return OpenLevelDB("")
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// prepareRun fills in the ID and timestamp.
func prepareRun(r *Run) error {
	if r.Program == "" {
		return errors.New("run has no program hash")
	}
	if r.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating run id: %w", err)
		}
		r.ID = id.String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}
