package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/levelup-backend/internal/app"
	"github.com/yungbote/levelup-backend/internal/observability"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "run schema migration before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	a, err := app.New(app.Options{AutoMigrate: migrate})
	if err != nil {
		return err
	}
	defer a.Close()

	shutdownOTel := observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: app.ServiceName,
		Environment: a.Cfg.Environment,
		Version:     a.Cfg.Version,
	})
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}()

	srv, err := a.HTTPServer()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	a.StartCollectors(gctx)
	g.Go(func() error {
		return srv.Run(gctx, ":"+a.Cfg.Port, a.Cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		return a.Metrics.StartServer(gctx, a.Log, a.Cfg.MetricsAddr)
	})

	err = g.Wait()
	if err != nil {
		a.Log.Error("server stopped", "error", err)
		return err
	}
	a.Log.Info("server stopped")
	return nil
}
