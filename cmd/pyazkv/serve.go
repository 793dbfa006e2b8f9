package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"github.com/heysubinoy/pyazkv/api/proto"
	"github.com/heysubinoy/pyazkv/internal/api"
	"github.com/heysubinoy/pyazkv/internal/cluster"
	"github.com/heysubinoy/pyazkv/internal/store"
	"github.com/heysubinoy/pyazkv/pkg/config"
	"github.com/heysubinoy/pyazkv/pkg/kv"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a store over HTTP and gRPC",
	Long: `Starts a pyazkv node. The backend (memory, bolt or raft) and the listen
addresses come from the config file given with --config, or from environment
variables (BACKEND, NODE_ID, RAFT_ADDR, GRPC_ADDR, HTTP_ADDR, ...).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		logger := hclog.New(&hclog.LoggerOptions{
			Name:   cfg.NodeID,
			Level:  hclog.LevelFromString(cfg.LogLevel),
			Output: os.Stderr,
		})
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "YAML config file")
}

type backend struct {
	store kv.Store[string]
	raft  *raft.Raft
	close func() error
}

func openBackend(cfg *config.Config, logger hclog.Logger) (*backend, error) {
	switch cfg.Backend {
	case config.BackendBolt:
		bs, err := store.NewBoltStore[string](cfg.BoltPath, 0o600, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return &backend{store: bs, close: bs.Close}, nil

	case config.BackendRaft:
		mem := store.NewMemStore[string]()
		r, err := cluster.NewRaft(cfg, store.NewFSM(mem), logger)
		if err != nil {
			return nil, err
		}
		return &backend{
			store: store.NewRaftStore(mem, r, cfg.Timeout),
			raft:  r,
			close: func() error { return r.Shutdown().Error() },
		}, nil
	}

	return &backend{store: store.NewMemStore[string](), close: func() error { return nil }}, nil
}

func serve(ctx context.Context, cfg *config.Config, logger hclog.Logger) error {
	b, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.close(); err != nil {
			logger.Error("failed to close backend", "error", err)
		}
	}()

	policy, err := kv.ParsePolicy(cfg.FailPolicy)
	if err != nil {
		return err
	}
	instrumented := store.NewInstrumentedStore(b.store)
	exec := &kv.Executor[string]{Policy: policy, Logger: logger.Named("executor")}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
	}
	grpcServer := grpc.NewServer()
	proto.RegisterKVServiceServer(grpcServer, api.NewGRPCServer(instrumented))

	srv := api.NewServer(instrumented, b.raft, exec, logger.Named("http"))
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	mux.HandleFunc("/metrics", api.MetricsHandler(instrumented))
	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr, "backend", cfg.Backend)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errCh:
		logger.Error("server stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	grpcServer.GracefulStop()
	return err
}
