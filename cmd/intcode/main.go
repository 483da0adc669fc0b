// intcode - run, inspect and serve Intcode programs
package main

import (
	"fmt"
	"os"

	"github.com/chazu/intcode/manifest"
	"github.com/chazu/intcode/pkg/intcode"
	"github.com/chazu/intcode/store"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var (
	Version = "dev"
	Commit  = "none"
)

// app holds state shared by every subcommand.
type app struct {
	dir       string
	verbosity int
	backend   string
	storePath string

	m *manifest.Manifest
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "intcode: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "intcode",
		Short: "Run, inspect and serve Intcode programs",
		Long: `intcode runs programs for the Intcode virtual machine.

Settings are read from the nearest intcode.toml and INTCODE_* environment
variables; command line flags win over both.`,
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.dir, "dir", ".", "Directory to search for intcode.toml")
	flags.CountVarP(&a.verbosity, "verbose", "v", "Increase log verbosity (-vv for instruction traces)")
	flags.StringVar(&a.backend, "store", "", "Ledger backend: sqlite, leveldb or memory")
	flags.StringVar(&a.storePath, "store-path", "", "Ledger location")

	rootCmd.AddCommand(
		newRunCmd(a),
		newAmplifyCmd(a),
		newAssistCmd(a),
		newDisasmCmd(a),
		newImageCmd(a),
		newConsoleCmd(a),
		newServeCmd(a),
		newHistoryCmd(a),
	)

	return rootCmd
}

// load resolves the manifest and configures logging.
func (a *app) load() error {
	m, err := manifest.Resolve(a.dir)
	if err != nil {
		return err
	}
	if a.backend != "" {
		m.Store.Backend = a.backend
	}
	if a.storePath != "" {
		m.Store.Path = a.storePath
	}
	a.m = m

	verbosity := m.Log.Verbosity + a.verbosity
	if m.Log.File != "" {
		commonlog.Configure(verbosity, &m.Log.File)
	} else {
		commonlog.Configure(verbosity, nil)
	}
	return nil
}

// vmOptions returns the VM options from the manifest.
func (a *app) vmOptions() []intcode.Option {
	return []intcode.Option{
		intcode.WithMemoryLimit(a.m.VM.MemoryLimit),
		intcode.WithTrace(a.m.VM.Trace || a.verbosity >= 2),
	}
}

// program loads the program named on the command line, or the manifest's.
func (a *app) program(args []string) (intcode.Program, string, error) {
	path := a.m.ProgramPath()
	if len(args) > 0 {
		path = args[0]
	}
	p, err := intcode.LoadProgramFile(path)
	if err != nil {
		return nil, "", err
	}
	return p, path, nil
}

// openStore opens the configured ledger.
func (a *app) openStore() (store.Store, error) {
	return store.Open(a.m.Store.Backend, a.m.StorePath())
}

// record stores a run when recording was requested, and reports failures
// without failing the command.
func (a *app) record(cmd *cobra.Command, name string, p intcode.Program, run *store.Run) {
	s, err := a.openStore()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cannot open ledger: %v\n", err)
		return
	}
	defer s.Close()

	hash, err := s.PutProgram(name, p)
	if err == nil {
		run.Program = hash
		err = s.RecordRun(run)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cannot record run: %v\n", err)
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "recorded run %s\n", run.ID)
}
