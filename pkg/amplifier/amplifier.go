// Package amplifier wires several Intcode VMs loaded from the same program
// into a chain of amplifiers and searches phase settings for the strongest
// signal.
//
// Two topologies are supported. In a serial chain every amplifier runs once,
// start to finish, and its first output becomes the next amplifier's signal.
// In a feedback loop the last amplifier feeds the first, and the harness
// resumes suspended VMs round-robin until all of them have halted.
//
// The harness is single-threaded. Within one round amplifier i always runs to
// its next suspend or halt point before amplifier i+1 is resumed.
package amplifier

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/chazu/intcode/pkg/intcode"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("intcode.amplifier")

var (
	// ErrNoSignal is returned when an amplifier that is still running
	// yields control without producing a signal for the next one.
	ErrNoSignal = errors.New("amplifier produced no signal")

	// ErrNoPhases is returned for an empty or invalid phase set.
	ErrNoPhases = errors.New("no usable phase settings")
)

// Mode selects how the amplifiers are connected.
type Mode int

const (
	// ModeSerial runs each amplifier once, in order.
	ModeSerial Mode = iota
	// ModeFeedback connects the last amplifier back to the first.
	ModeFeedback
)

func (m Mode) String() string {
	switch m {
	case ModeSerial:
		return "serial"
	case ModeFeedback:
		return "feedback"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps "serial" or "feedback" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "serial", "chain":
		return ModeSerial, nil
	case "feedback", "loop":
		return ModeFeedback, nil
	default:
		return 0, fmt.Errorf("unknown amplifier mode %q (want serial or feedback)", s)
	}
}

// DefaultPhases returns the phase values conventionally used with a mode.
func (m Mode) DefaultPhases() []int64 {
	if m == ModeFeedback {
		return []int64{5, 6, 7, 8, 9}
	}
	return []int64{0, 1, 2, 3, 4}
}

// ParsePhases parses a comma-separated list such as "5,6,7,8,9".
func ParsePhases(s string) ([]int64, error) {
	var phases []int64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrNoPhases, f)
		}
		phases = append(phases, v)
	}
	if len(phases) == 0 {
		return nil, ErrNoPhases
	}
	return phases, nil
}

// Run evaluates one phase assignment in the given mode.
func Run(p intcode.Program, phases []int64, mode Mode, opts ...intcode.Option) (*big.Int, error) {
	switch mode {
	case ModeSerial:
		return RunChain(p, phases, opts...)
	case ModeFeedback:
		return RunFeedback(p, phases, opts...)
	default:
		return nil, fmt.Errorf("unknown amplifier mode %s", mode)
	}
}

// RunChain runs one fresh VM per phase, in order. Each VM receives its phase
// and the running signal, and its first output becomes the next signal.
func RunChain(p intcode.Program, phases []int64, opts ...intcode.Option) (*big.Int, error) {
	if len(phases) == 0 {
		return nil, ErrNoPhases
	}

	signal := new(big.Int)
	for i, phase := range phases {
		vm := intcode.New(p, amplifierOptions(opts, i)...)
		out, err := vm.Run([]*big.Int{big.NewInt(phase), signal})
		if err != nil {
			return nil, fmt.Errorf("amplifier %d: %w", i, err)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("amplifier %d: %w", i, ErrNoSignal)
		}
		signal = out[0]
	}
	return signal, nil
}

// RunFeedback runs the amplifiers as a feedback loop.
//
// On its first activation each amplifier receives its phase followed by the
// running signal; afterwards it receives only the signal. Everything an
// amplifier outputs during an activation is handed to the next amplifier as
// its input, and the last amplifier feeds the first. Amplifiers that have
// halted are skipped and pass the signal through unchanged. The loop ends
// once every amplifier has halted; the result is the last value output by
// the last amplifier.
func RunFeedback(p intcode.Program, phases []int64, opts ...intcode.Option) (*big.Int, error) {
	n := len(phases)
	if n == 0 {
		return nil, ErrNoPhases
	}

	vms := make([]*intcode.VM, n)
	for i := range vms {
		vms[i] = intcode.New(p, amplifierOptions(opts, i)...)
	}

	signal := []*big.Int{new(big.Int)}
	var last *big.Int

	for round := 0; ; round++ {
		for i, vm := range vms {
			if vm.Halted() {
				continue
			}

			inputs := signal
			if round == 0 {
				inputs = append([]*big.Int{big.NewInt(phases[i])}, signal...)
			}

			out, err := vm.RunUntilInput(inputs)
			if err != nil {
				return nil, fmt.Errorf("amplifier %d (round %d): %w", i, round, err)
			}
			if len(out) == 0 {
				if vm.Halted() {
					continue
				}
				return nil, fmt.Errorf("amplifier %d (round %d): %w", i, round, ErrNoSignal)
			}

			signal = out
			if i == n-1 {
				last = out[len(out)-1]
			}
		}

		if allHalted(vms) {
			log.Debugf("feedback %v settled after %d rounds", phases, round+1)
			break
		}
	}

	if last == nil {
		return nil, fmt.Errorf("amplifier %d: %w", n-1, ErrNoSignal)
	}
	return last, nil
}

func allHalted(vms []*intcode.VM) bool {
	for _, vm := range vms {
		if !vm.Halted() {
			return false
		}
	}
	return true
}

// amplifierOptions names the VM after its position, after any caller options.
func amplifierOptions(opts []intcode.Option, i int) []intcode.Option {
	out := make([]intcode.Option, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, intcode.WithName(fmt.Sprintf("amp-%d", i)))
}
