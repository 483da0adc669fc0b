package manifest

import (
	"strconv"
	"strings"

	"gitlab.com/efronlicht/enve"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INTCODE_"

// ApplyEnv overrides manifest values from INTCODE_* environment variables.
// Unset or unparsable variables leave the current value alone.
//
//	INTCODE_PROGRAM         program.path
//	INTCODE_MEMORY_LIMIT    vm.memory-limit
//	INTCODE_TRACE           vm.trace
//	INTCODE_AMPLIFIER_MODE  amplifier.mode
//	INTCODE_PHASES          amplifier.phases (comma separated)
//	INTCODE_STORE_BACKEND   store.backend
//	INTCODE_STORE_PATH      store.path
//	INTCODE_ADDR            server.addr
//	INTCODE_READ_TIMEOUT    server.read-timeout
//	INTCODE_WRITE_TIMEOUT   server.write-timeout
//	INTCODE_MAX_SESSIONS    server.max-sessions
//	INTCODE_STEP_LIMIT      server.step-limit
//	INTCODE_LOG_VERBOSITY   log.verbosity
//	INTCODE_LOG_FILE        log.file
func (m *Manifest) ApplyEnv() {
	m.Program.Path = enve.StringOr(EnvPrefix+"PROGRAM", m.Program.Path)

	m.VM.MemoryLimit = enve.IntOr(EnvPrefix+"MEMORY_LIMIT", m.VM.MemoryLimit)
	m.VM.Trace = enve.BoolOr(EnvPrefix+"TRACE", m.VM.Trace)

	m.Amplifier.Mode = enve.StringOr(EnvPrefix+"AMPLIFIER_MODE", m.Amplifier.Mode)
	m.Amplifier.Phases = enve.Or(parsePhases, EnvPrefix+"PHASES", m.Amplifier.Phases)

	m.Store.Backend = enve.StringOr(EnvPrefix+"STORE_BACKEND", m.Store.Backend)
	m.Store.Path = enve.StringOr(EnvPrefix+"STORE_PATH", m.Store.Path)

	m.Server.Addr = enve.StringOr(EnvPrefix+"ADDR", m.Server.Addr)
	m.Server.ReadTimeout = enve.DurationOr(EnvPrefix+"READ_TIMEOUT", m.Server.ReadTimeout)
	m.Server.WriteTimeout = enve.DurationOr(EnvPrefix+"WRITE_TIMEOUT", m.Server.WriteTimeout)
	m.Server.MaxSessions = enve.IntOr(EnvPrefix+"MAX_SESSIONS", m.Server.MaxSessions)
	m.Server.StepLimit = enve.IntOr(EnvPrefix+"STEP_LIMIT", m.Server.StepLimit)

	m.Log.Verbosity = enve.IntOr(EnvPrefix+"LOG_VERBOSITY", m.Log.Verbosity)
	m.Log.File = enve.StringOr(EnvPrefix+"LOG_FILE", m.Log.File)
}

func parsePhases(s string) ([]int64, error) {
	var out []int64
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
