package main

import (
	"fmt"
	"math/big"

	"github.com/chazu/intcode/pkg/assist"
	"github.com/spf13/cobra"
)

func newAssistCmd(a *app) *cobra.Command {
	var (
		target     string
		max        int64
		noun, verb int64
	)

	cmd := &cobra.Command{
		Use:   "assist [FILE]",
		Short: "Search the noun and verb that produce a target value",
		Long: `Patch cell 1 (noun) and cell 2 (verb), run the program and read cell 0.

With --target, search nouns and verbs below --max and print 100*noun+verb
for the first pair that produces the target. With --noun and --verb,
print cell 0 for that single pair.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := a.program(args)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("noun") || cmd.Flags().Changed("verb") {
				v, err := assist.Evaluate(p, noun, verb, a.vmOptions()...)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}

			want := big.NewInt(a.m.Assist.Target)
			if cmd.Flags().Changed("target") {
				var ok bool
				if want, ok = new(big.Int).SetString(target, 10); !ok {
					return fmt.Errorf("target %q is not an integer", target)
				}
			}
			if !cmd.Flags().Changed("max") {
				max = a.m.Assist.Max
			}

			pair, err := assist.Search(p, want, max, a.vmOptions()...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pair.Answer())
			fmt.Fprintln(cmd.ErrOrStderr(), pair)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Value cell 0 must hold")
	cmd.Flags().Int64Var(&max, "max", assist.DefaultMax, "Exclusive upper bound for noun and verb")
	cmd.Flags().Int64Var(&noun, "noun", 12, "Noun for a single evaluation")
	cmd.Flags().Int64Var(&verb, "verb", 2, "Verb for a single evaluation")
	return cmd
}
