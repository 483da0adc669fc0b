package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/intcode/pkg/amplifier"
	"github.com/chazu/intcode/store"
	"github.com/spf13/cobra"
)

func newAmplifyCmd(a *app) *cobra.Command {
	var (
		mode   string
		phases string
		once   bool
		record bool
	)

	cmd := &cobra.Command{
		Use:   "amplify [FILE]",
		Short: "Find the phase settings that maximize the amplifier signal",
		Long: `Load one VM per phase setting and connect them as amplifiers.

In serial mode every amplifier runs once and passes its first output on.
In feedback mode the last amplifier feeds the first until all have halted.
By default every ordering of the phases is tried; --once evaluates the
given order only.`,
		Example: `  intcode amplify day7.txt --mode serial
  intcode amplify day7.txt --mode feedback --phases 9,8,7,6,5 --once`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, path, err := a.program(args)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("mode") {
				mode = a.m.Amplifier.Mode
			}
			m, err := amplifier.ParseMode(mode)
			if err != nil {
				return err
			}

			values := a.m.Amplifier.Phases
			switch {
			case cmd.Flags().Changed("phases"):
				if values, err = amplifier.ParsePhases(phases); err != nil {
					return err
				}
			case cmd.Flags().Changed("mode"):
				values = m.DefaultPhases()
			}

			var res *amplifier.Result
			if once {
				signal, err := amplifier.Run(p, values, m, a.vmOptions()...)
				if err != nil {
					return err
				}
				res = &amplifier.Result{Signal: signal, Phases: values, Mode: m, Evaluated: 1}
			} else if res, err = amplifier.Search(p, values, m, a.vmOptions()...); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.Signal)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s phases %s (%d tried)\n", res.Mode, joinPhases(res.Phases), res.Evaluated)

			if record {
				a.record(cmd, filepath.Base(path), p, &store.Run{
					Kind:   store.KindAmplify,
					Phases: res.Phases,
					Signal: res.Signal.String(),
					State:  res.Mode.String(),
				})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "feedback", "Amplifier wiring: serial or feedback")
	cmd.Flags().StringVar(&phases, "phases", "", "Comma separated phase values (default depends on mode)")
	cmd.Flags().BoolVar(&once, "once", false, "Evaluate the phases in the given order instead of searching")
	cmd.Flags().BoolVar(&record, "record", false, "Record the result in the ledger")
	return cmd
}

func joinPhases(phases []int64) string {
	parts := make([]string, len(phases))
	for i, ph := range phases {
		parts[i] = fmt.Sprint(ph)
	}
	return strings.Join(parts, ",")
}
