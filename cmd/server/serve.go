package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rl1809/pantry/internal/app"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), v)
		},
	}
	cmd.Flags().String("http-addr", ":8080", "HTTP listen address")
	cmd.Flags().String("grpc-addr", ":50051", "gRPC listen address")
	bind(v, cmd.Flags().Lookup("http-addr"), "http.addr")
	bind(v, cmd.Flags().Lookup("grpc-addr"), "grpc.addr")
	return cmd
}

func serve(parent context.Context, v *viper.Viper) error {
	cfg, log, err := setup(v)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("close resources", zap.Error(err))
		}
		log.Info("connections closed")
	}()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.GRPC.Addr != "" {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.GRPC.Addr, err)
		}
		grpcServer := a.GRPCServer()
		g.Go(func() error {
			log.Info("gRPC server listening", zap.String("addr", cfg.GRPC.Addr))
			return grpcServer.Serve(lis)
		})
		g.Go(func() error {
			<-ctx.Done()
			grpcServer.GracefulStop()
			log.Info("gRPC server stopped")
			return nil
		})
	}

	if cfg.HTTP.Addr != "" {
		httpServer := &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      a.HTTPHandler(),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		}
		g.Go(func() error {
			log.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			err := httpServer.Shutdown(shutdownCtx)
			log.Info("HTTP server stopped")
			return err
		})
	}

	log.Info("pantry service started", zap.String("store", cfg.Store))
	err = g.Wait()
	log.Info("shutting down")
	return err
}
