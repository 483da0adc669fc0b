package main

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chazu/intcode/pkg/intcode"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func newConsoleCmd(a *app) *cobra.Command {
	var history string

	cmd := &cobra.Command{
		Use:   "console [FILE]",
		Short: "Run a program interactively, prompting whenever it waits for input",
		Long: `Run a program and prompt for input each time it suspends.

Enter one or more integers separated by commas or spaces. Console commands:
  :state       show ip, relative base and memory size
  :peek ADDR   print one memory cell
  :q           quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, path, err := a.program(args)
			if err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:      filepath.Base(path) + "> ",
				HistoryFile: history,
			})
			if err != nil {
				return fmt.Errorf("starting readline: %w", err)
			}
			defer rl.Close()

			vm := intcode.New(p, a.vmOptions()...)
			return runConsole(vm, rl.Readline, rl.Stdout())
		},
	}

	cmd.Flags().StringVar(&history, "history", filepath.Join(os.TempDir(), "intcode_console_history"), "Readline history file")
	return cmd
}

// runConsole drives vm, reading input lines from next whenever it suspends.
// It returns when the VM halts, faults, or input ends.
func runConsole(vm *intcode.VM, next func() (string, error), out io.Writer) error {
	var pending []*big.Int
	for {
		output, err := vm.RunUntilInput(pending)
		for _, v := range output {
			fmt.Fprintln(out, v)
		}
		if err != nil {
			return err
		}
		if vm.Halted() {
			fmt.Fprintln(out, "halted")
			return nil
		}

		pending = nil
		for pending == nil {
			line, err := next()
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			if err != nil {
				return err
			}

			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case line == ":q" || line == ":quit":
				return nil
			case line == ":state":
				fmt.Fprintf(out, "%s ip=%d rb=%d cells=%d\n", vm.State(), vm.IP(), vm.RelativeBase(), vm.Memory().Len())
			case strings.HasPrefix(line, ":peek"):
				peek(vm, strings.TrimSpace(strings.TrimPrefix(line, ":peek")), out)
			case strings.HasPrefix(line, ":"):
				fmt.Fprintf(out, "unknown command %s\n", line)
			default:
				p, err := intcode.ParseProgram(line)
				if err != nil {
					fmt.Fprintln(out, err)
					continue
				}
				pending = p
			}
		}
	}
}

func peek(vm *intcode.VM, arg string, out io.Writer) {
	addr, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintf(out, "bad address %q\n", arg)
		return
	}
	v, err := vm.Peek(addr)
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	fmt.Fprintf(out, "[%d] = %s\n", addr, v)
}
