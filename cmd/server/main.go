package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/poker-night-backend/internal/config"
	"github.com/DoyleJ11/poker-night-backend/internal/engine"
	"github.com/DoyleJ11/poker-night-backend/internal/httpapi"
	"github.com/DoyleJ11/poker-night-backend/internal/hub"
	"github.com/DoyleJ11/poker-night-backend/internal/ws"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile, addr string
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Texas hold'em table server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				fmt.Fprintln(os.Stderr, "config:", err)
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			log, err := config.NewLogger(cfg)
			if err != nil {
				fmt.Fprintln(os.Stderr, "logger:", err)
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := run(ctx, cfg, log); err != nil {
				log.Error("server stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides ADDR")
	return cmd
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	h := hub.NewHub(context.Background(), hub.Options{
		Log:         log,
		Blinds:      engine.Blinds{Small: cfg.SmallBlind, Big: cfg.BigBlind},
		MaxSeats:    cfg.MaxSeats,
		TurnTimeout: cfg.TurnTimeout,
	})

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(h, log, ws.Options{
		DefaultStack:   cfg.DefaultStack,
		OriginPatterns: cfg.AllowedOrigins,
		PingInterval:   cfg.PingInterval,
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		// Stopping the hub closes every outbox, which ends the open websockets.
		if err := h.Shutdown(sctx); err != nil {
			log.Warn("hub shutdown", zap.Error(err))
		}
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
