package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/chazu/intcode/pkg/amplifier"
	"github.com/chazu/intcode/pkg/intcode"
	"github.com/chazu/intcode/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Integers travel as decimal strings so values beyond 64 bits survive JSON.

type programRef struct {
	Name    string `json:"name,omitempty"`
	Program string `json:"program,omitempty"` // program text
	Hash    string `json:"hash,omitempty"`    // or a program stored in the ledger
}

type runRequest struct {
	programRef
	Inputs []string `json:"inputs,omitempty"`
}

type runResponse struct {
	ID      string   `json:"id,omitempty"`
	Program string   `json:"program"`
	Output  []string `json:"output"`
	State   string   `json:"state"`
	Error   string   `json:"error,omitempty"`
}

type amplifyRequest struct {
	programRef
	Mode   string  `json:"mode,omitempty"`
	Phases []int64 `json:"phases,omitempty"`
	// Search tries every ordering of Phases instead of the given order.
	Search bool `json:"search,omitempty"`
}

type amplifyResponse struct {
	ID        string  `json:"id,omitempty"`
	Program   string  `json:"program"`
	Mode      string  `json:"mode"`
	Signal    string  `json:"signal"`
	Phases    []int64 `json:"phases"`
	Evaluated int     `json:"evaluated"`
}

type sessionRequest struct {
	programRef
	Inputs []string `json:"inputs,omitempty"`
}

type inputRequest struct {
	Inputs []string `json:"inputs"`
}

type sessionResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Program      string `json:"program"`
	State        string `json:"state"`
	IP           int    `json:"ip"`
	RelativeBase int    `json:"relative_base"`
	MemoryLen    int    `json:"memory_len"`
	// Output is what the last call produced, or everything for GET.
	Output []string `json:"output"`
	Error  string   `json:"error,omitempty"`
}

type programResponse struct {
	Hash    string       `json:"hash"`
	Name    string       `json:"name"`
	Program string       `json:"program"`
	Cells   int          `json:"cells"`
	Runs    []*store.Run `json:"runs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --- handlers ---

func (s *IntcodeServer) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if !decode(w, r, &req) {
		return
	}
	p, hash, err := s.loadProgram(req.programRef)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	inputs, err := intcode.Ints(req.Inputs...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	value, err := s.worker.Do(func() (interface{}, error) {
		vm := intcode.New(p, s.vmOpts...)
		out, runErr := vm.Run(inputs)
		resp := &runResponse{
			Program: hash,
			Output:  intcode.Strings(out),
			State:   vm.State().String(),
		}
		if runErr != nil {
			resp.Error = runErr.Error()
		}
		return resp, runErr
	})
	resp, _ := value.(*runResponse)
	if resp == nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp.ID = s.record(&store.Run{
		Program: hash,
		Kind:    store.KindRun,
		Inputs:  req.Inputs,
		Output:  resp.Output,
		State:   resp.State,
		Error:   resp.Error,
	})
	if err != nil {
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *IntcodeServer) handleAmplify(w http.ResponseWriter, r *http.Request) {
	var req amplifyRequest
	if !decode(w, r, &req) {
		return
	}
	p, hash, err := s.loadProgram(req.programRef)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	mode := amplifier.ModeFeedback
	if req.Mode != "" {
		if mode, err = amplifier.ParseMode(req.Mode); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	phases := req.Phases
	search := req.Search
	if len(phases) == 0 {
		phases = mode.DefaultPhases()
		search = true
	}

	value, err := s.worker.Do(func() (interface{}, error) {
		if search {
			return amplifier.Search(p, phases, mode, s.vmOpts...)
		}
		signal, err := amplifier.Run(p, phases, mode, s.vmOpts...)
		if err != nil {
			return nil, err
		}
		return &amplifier.Result{Signal: signal, Phases: phases, Mode: mode, Evaluated: 1}, nil
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	res := value.(*amplifier.Result)

	resp := &amplifyResponse{
		Program:   hash,
		Mode:      res.Mode.String(),
		Signal:    res.Signal.String(),
		Phases:    res.Phases,
		Evaluated: res.Evaluated,
	}
	resp.ID = s.record(&store.Run{
		Program: hash,
		Kind:    store.KindAmplify,
		Phases:  res.Phases,
		Signal:  resp.Signal,
		State:   resp.Mode,
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *IntcodeServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decode(w, r, &req) {
		return
	}
	p, _, err := s.loadProgram(req.programRef)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	inputs, err := intcode.Ints(req.Inputs...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session, err := s.sessions.Create(req.Name, p, s.vmOpts...)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	log.Infof("session %s (%s) created", session.ID, session.Name)

	s.resume(w, session, req.Inputs, inputs, http.StatusCreated)
}

func (s *IntcodeServer) handleSessionInput(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", r.PathValue("id")))
		return
	}
	var req inputRequest
	if !decode(w, r, &req) {
		return
	}
	inputs, err := intcode.Ints(req.Inputs...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.resume(w, session, req.Inputs, inputs, http.StatusOK)
}

// resume runs the session's VM until it suspends or halts and reports the
// output of this call.
func (s *IntcodeServer) resume(w http.ResponseWriter, session *Session, raw []string, inputs []*big.Int, status int) {
	value, err := s.worker.Do(func() (interface{}, error) {
		out, err := session.VM.RunUntilInput(inputs)
		if errors.Is(err, intcode.ErrHalted) {
			return nil, err
		}
		session.Inputs = append(session.Inputs, raw...)
		session.Output = append(session.Output, intcode.Strings(out)...)

		resp := describe(session)
		resp.Output = intcode.Strings(out)
		return resp, err
	})
	if errors.Is(err, intcode.ErrHalted) {
		writeError(w, http.StatusConflict, fmt.Errorf("session %s: %w", session.ID, err))
		return
	}
	resp, _ := value.(*sessionResponse)
	if resp == nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if resp.State == intcode.StateHalted.String() {
		s.record(&store.Run{
			Program: session.Program,
			Kind:    store.KindSession,
			Inputs:  session.Inputs,
			Output:  session.Output,
			State:   resp.State,
			Error:   resp.Error,
		})
	}
	if err != nil {
		status = statusFor(err)
	}
	writeJSON(w, status, resp)
}

func (s *IntcodeServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", r.PathValue("id")))
		return
	}
	value, err := s.worker.Do(func() (interface{}, error) {
		resp := describe(session)
		resp.Output = append([]string{}, session.Output...)
		return resp, nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, value)
}

func (s *IntcodeServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.sessions.Destroy(id) {
		writeError(w, http.StatusNotFound, fmt.Errorf("session %q not found", id))
		return
	}
	log.Infof("session %s destroyed", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *IntcodeServer) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	if s.ledger == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("program %s: %w", hash, store.ErrNotFound))
		return
	}
	rec, err := s.ledger.GetProgram(hash)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	runs, err := s.ledger.Runs(hash)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, &programResponse{
		Hash:    rec.Hash,
		Name:    rec.Name,
		Program: rec.Program.String(),
		Cells:   len(rec.Program),
		Runs:    runs,
	})
}

// --- helpers ---

// describe snapshots a session. Must be called on the worker goroutine.
func describe(session *Session) *sessionResponse {
	vm := session.VM
	resp := &sessionResponse{
		ID:           session.ID,
		Name:         session.Name,
		Program:      session.Program,
		State:        vm.State().String(),
		IP:           vm.IP(),
		RelativeBase: vm.RelativeBase(),
		MemoryLen:    vm.Memory().Len(),
	}
	if vm.Err() != nil {
		resp.Error = vm.Err().Error()
	}
	return resp
}

// loadProgram parses the request's program text, or fetches it from the
// ledger by hash, and stores it in the ledger.
func (s *IntcodeServer) loadProgram(ref programRef) (intcode.Program, string, error) {
	var p intcode.Program
	switch {
	case ref.Program != "":
		var err error
		if p, err = intcode.ParseProgram(ref.Program); err != nil {
			return nil, "", err
		}
	case ref.Hash != "" && s.ledger != nil:
		rec, err := s.ledger.GetProgram(ref.Hash)
		if err != nil {
			return nil, "", err
		}
		p = rec.Program
	default:
		return nil, "", fmt.Errorf("%w: request has no program", intcode.ErrParse)
	}

	hash := p.Hash()
	if s.ledger != nil {
		if _, err := s.ledger.PutProgram(ref.Name, p); err != nil {
			log.Warningf("storing program %s: %v", hash, err)
		}
	}
	return p, hash, nil
}

// record stores a finished run and returns its ID, or "" without a ledger.
func (s *IntcodeServer) record(run *store.Run) string {
	if s.ledger == nil {
		return ""
	}
	if err := s.ledger.RecordRun(run); err != nil {
		log.Warningf("recording %s run: %v", run.Kind, err)
		return ""
	}
	return run.ID
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, intcode.ErrParse), errors.Is(err, amplifier.ErrNoPhases):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, intcode.ErrHalted):
		return http.StatusConflict
	case errors.Is(err, ErrTooManySessions):
		return http.StatusTooManyRequests
	case intcode.IsFatal(err), errors.Is(err, intcode.ErrInputExhausted), errors.Is(err, amplifier.ErrNoSignal):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warningf("writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Errorf("%v", err)
	}
	writeJSON(w, status, &errorResponse{Error: err.Error()})
}
