package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ohkbilal/certa/internal/transport"
)

type serveFlags struct {
	addr     string
	skipGate bool
}

func newServeCmd(a *app) *cobra.Command {
	var fl serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve assessments over gRPC",
		Long: "Runs the golden gate, prepares the audit store and evidence bucket,\n" +
			"then serves the Compatibility service until interrupted. A failing\n" +
			"gate refuses to start the server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, a, fl)
		},
	}
	f := cmd.Flags()
	f.StringVar(&fl.addr, "addr", "", "listen address (defaults to grpc.addr)")
	f.BoolVar(&fl.skipGate, "skip-gate", false, "start without running the golden gate")
	return cmd
}

func runServe(cmd *cobra.Command, a *app, fl serveFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fl.addr
	if addr == "" {
		addr = a.cfg.GRPC.Addr
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	arc, err := a.openArchiver(ctx)
	if err != nil {
		return err
	}

	// Startup checks run concurrently; any failure aborts before listening.
	g, gctx := errgroup.WithContext(ctx)
	if !fl.skipGate {
		g.Go(func() error {
			res, err := a.runGate(gctx, nil, 0)
			if err != nil {
				return err
			}
			if !res.summary.AllPassed() {
				return fmt.Errorf("%w: %d/%d cases failed", errGateFailed, res.summary.Failed, res.summary.Total)
			}
			return nil
		})
	}
	if arc != nil {
		g.Go(func() error { return arc.EnsureBucket(gctx) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	opts := []transport.ServerOption{transport.WithRecorder(store), transport.WithLogger(a.log)}
	if arc != nil {
		opts = append(opts, transport.WithArchive(arc))
	}
	srv := transport.NewServer(a.engine(), opts...)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	a.log.Info("certa serving",
		zap.String("addr", lis.Addr().String()),
		zap.String("db_driver", store.Driver()),
		zap.Bool("archive", arc != nil),
		zap.String("policy_version", a.cfg.PolicyVersion))

	err = transport.Serve(ctx, transport.NewGRPCServer(srv), lis)
	a.log.Info("certa stopped")
	return err
}
