package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/intcode/pkg/intcode"
	"github.com/spf13/cobra"
)

func newDisasmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disasm [FILE]",
		Short: "Print a listing of a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, path, err := a.program(args)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), intcode.DisassembleWithName(p, filepath.Base(path)))
			return nil
		},
	}
}

func newImageCmd(a *app) *cobra.Command {
	var (
		output string
		name   string
	)

	cmd := &cobra.Command{
		Use:   "image [FILE]",
		Short: "Package a program as a binary image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, path, err := a.program(args)
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			if output == "" {
				output = strings.TrimSuffix(path, filepath.Ext(path)) + ".icbc"
			}

			data, err := intcode.MarshalImage(intcode.NewImage(name, p))
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing image: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d cells, %d bytes, sha256 %s\n", output, len(p), len(data), p.Hash())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Image file to write (default FILE with .icbc)")
	cmd.Flags().StringVar(&name, "name", "", "Name stored in the image")
	return cmd
}
