package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/chazu/intcode/pkg/intcode"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history HASH|FILE",
		Short: "List the recorded runs of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := args[0]
			if p, err := intcode.LoadProgramFile(args[0]); err == nil {
				hash = p.Hash()
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.GetProgram(hash)
			if err != nil {
				return err
			}
			runs, err := s.Runs(hash)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s  %d cells  %d runs\n\n", rec.Hash[:12], rec.Name, len(rec.Program), len(runs))

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWHEN\tKIND\tSTATE\tRESULT")
			for _, r := range runs {
				result := strings.Join(r.Output, ",")
				if r.Signal != "" {
					result = fmt.Sprintf("%s %v", r.Signal, r.Phases)
				}
				if r.Error != "" {
					result = r.Error
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Kind, r.State, result)
			}
			return tw.Flush()
		},
	}
}
