// Package server exposes Intcode over an HTTP JSON API.
//
// One-shot runs and amplifier searches execute inside a request. Sessions
// keep a VM alive between requests: a session suspends when its program
// asks for input and resumes when the next input request arrives. All VM
// execution goes through a single VMWorker.
package server

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/chazu/intcode/pkg/intcode"
	"github.com/chazu/intcode/store"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("intcode.server")

// DefaultStepLimit bounds how many instructions any one server VM may execute,
// so a program that never halts cannot hold the VM worker forever.
const DefaultStepLimit = 50_000_000

// IntcodeServer serves the HTTP API.
type IntcodeServer struct {
	worker   *VMWorker
	sessions *SessionStore
	ledger   store.Store
	vmOpts   []intcode.Option
	mux      *http.ServeMux
	http     *http.Server

	stopSweeper func()
	stopOnce    sync.Once
}

// ServerOption configures an IntcodeServer.
type ServerOption func(*serverConfig)

type serverConfig struct {
	ledger       store.Store
	vmOpts       []intcode.Option
	stepLimit    int64
	maxSessions  int
	sessionTTL   time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// WithStore records programs and finished runs in the ledger.
// Without a store, GET /v1/programs answers 404.
func WithStore(s store.Store) ServerOption {
	return func(c *serverConfig) { c.ledger = s }
}

// WithVMOptions applies opts to every VM the server creates.
func WithVMOptions(opts ...intcode.Option) ServerOption {
	return func(c *serverConfig) { c.vmOpts = append(c.vmOpts, opts...) }
}

// WithStepLimit sets the instruction budget of every server VM. A session's
// budget covers all of its resumes. Zero removes the limit.
func WithStepLimit(steps int64) ServerOption {
	return func(c *serverConfig) { c.stepLimit = steps }
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) ServerOption {
	return func(c *serverConfig) { c.maxSessions = n }
}

// WithSessionTTL sets how long an idle session is kept.
func WithSessionTTL(ttl time.Duration) ServerOption {
	return func(c *serverConfig) { c.sessionTTL = ttl }
}

// WithTimeouts sets the HTTP read and write timeouts.
func WithTimeouts(read, write time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.readTimeout = read
		c.writeTimeout = write
	}
}

// New creates an IntcodeServer.
func New(opts ...ServerOption) *IntcodeServer {
	cfg := &serverConfig{
		stepLimit:    DefaultStepLimit,
		maxSessions:  64,
		sessionTTL:   30 * time.Minute,
		readTimeout:  2 * time.Second,
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &IntcodeServer{
		worker:   NewVMWorker(),
		sessions: NewSessionStore(cfg.maxSessions),
		ledger:   cfg.ledger,
		vmOpts:   append(slices.Clone(cfg.vmOpts), intcode.WithStepLimit(cfg.stepLimit)),
		mux:      http.NewServeMux(),
	}
	s.http = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  cfg.readTimeout,
		WriteTimeout: cfg.writeTimeout,
		IdleTimeout:  time.Minute,
	}

	s.mux.HandleFunc("POST /v1/run", s.handleRun)
	s.mux.HandleFunc("POST /v1/amplify", s.handleAmplify)
	s.mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	s.mux.HandleFunc("POST /v1/sessions/{id}/input", s.handleSessionInput)
	s.mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("GET /v1/programs/{hash}", s.handleGetProgram)

	// Sweep idle sessions every ttl/6, bounded to a minute.
	interval := min(cfg.sessionTTL/6, time.Minute)
	if interval > 0 {
		s.stopSweeper = s.sessions.StartSweeper(interval, cfg.sessionTTL)
	}

	return s
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *IntcodeServer) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *IntcodeServer) ListenAndServe(addr string) error {
	s.http.Addr = addr
	log.Noticef("intcode server listening on %s", addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for active ones to finish.
func (s *IntcodeServer) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.Stop()
	return err
}

// Stop shuts down the worker and the session sweeper.
func (s *IntcodeServer) Stop() {
	s.stopOnce.Do(func() {
		if s.stopSweeper != nil {
			s.stopSweeper()
		}
		s.worker.Stop()
	})
}
