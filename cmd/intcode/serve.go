package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chazu/intcode/server"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP JSON API",
		Long: `Serve the HTTP JSON API:

  POST   /v1/run                 run a program to completion
  POST   /v1/amplify             evaluate or search amplifier phases
  POST   /v1/sessions            start a VM that suspends on input
  POST   /v1/sessions/{id}/input resume a session with more input
  GET    /v1/sessions/{id}       inspect a session
  DELETE /v1/sessions/{id}       discard a session
  GET    /v1/programs/{hash}     stored program and its runs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.m.Server.Addr
			}

			ledger, err := a.openStore()
			if err != nil {
				return err
			}
			defer ledger.Close()

			srv := server.New(
				server.WithStore(ledger),
				server.WithVMOptions(a.vmOptions()...),
				server.WithMaxSessions(a.m.Server.MaxSessions),
				server.WithStepLimit(int64(a.m.Server.StepLimit)),
				server.WithTimeouts(a.m.Server.ReadTimeout, a.m.Server.WriteTimeout),
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				commonlog.GetLogger("intcode.server").Noticef("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			return srv.ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}
