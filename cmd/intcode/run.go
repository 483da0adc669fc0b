package main

import (
	"fmt"
	"math/big"
	"path/filepath"

	"github.com/chazu/intcode/pkg/intcode"
	"github.com/chazu/intcode/store"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		inputs []string
		record bool
	)

	cmd := &cobra.Command{
		Use:   "run [FILE]",
		Short: "Run a program to completion and print its output",
		Long: `Run a program to completion. Every time the program waits for input it is
given the full input list again, as the classic Intcode tools do.

FILE may be program text or an image; it defaults to program.path from
intcode.toml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, path, err := a.program(args)
			if err != nil {
				return err
			}

			var values []*big.Int
			if cmd.Flags().Changed("input") {
				if values, err = intcode.Ints(inputs...); err != nil {
					return err
				}
			} else {
				values = intcode.FromInts(a.m.Program.Inputs...)
			}

			vm := intcode.New(p, a.vmOptions()...)
			out, runErr := vm.Run(values)
			for _, v := range out {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}

			if record {
				run := &store.Run{
					Kind:   store.KindRun,
					Inputs: intcode.Strings(values),
					Output: intcode.Strings(out),
					State:  vm.State().String(),
				}
				if runErr != nil {
					run.Error = runErr.Error()
				}
				a.record(cmd, filepath.Base(path), p, run)
			}
			return runErr
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "Input value (repeatable or comma separated)")
	cmd.Flags().BoolVar(&record, "record", false, "Record the run in the ledger")
	return cmd
}
