// Command passbox-server starts the PassBox gRPC server.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/passbox/internal/config"
	"github.com/and161185/passbox/internal/crypto/cipherbox"
	"github.com/and161185/passbox/internal/keysource"
	"github.com/and161185/passbox/internal/limiter"
	"github.com/and161185/passbox/internal/migrate"
	"github.com/and161185/passbox/internal/passcode"
	"github.com/and161185/passbox/internal/repository"
	"github.com/and161185/passbox/internal/repository/bolt"
	"github.com/and161185/passbox/internal/repository/memory"
	"github.com/and161185/passbox/internal/repository/postgres"
	grpcserver "github.com/and161185/passbox/internal/server/grpc"
	"github.com/and161185/passbox/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, opens the store and serves gRPC until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, lim, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	key, err := keysource.Load(keysource.Source(cfg.KeySource), cfg.CipherKey, logger)
	if err != nil {
		logger.Fatal("load cipher key", zap.Error(err))
	}
	box, err := cipherbox.New(key)
	if err != nil {
		logger.Fatal("cipher", zap.Error(err))
	}

	svc := service.NewVaultService(store, box, passcode.NewRandom(), lim, logger.Named("vault"))
	tokens := grpcserver.NewTokens([]byte(cfg.JWTKey), cfg.AccessTTL)

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.LoggingUnary(logger),
			grpcserver.AuthUnary(tokens, grpcserver.PublicMethods),
		),
	}
	if !cfg.Insecure {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			logger.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(creds))
	} else {
		logger.Warn("serving without TLS")
	}
	s := grpc.NewServer(opts...)
	grpcserver.Register(s, grpcserver.New(svc, tokens))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if cfg.Dev {
		reflection.Register(s)
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("tls", !cfg.Insecure))
		errCh <- s.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		hs.Shutdown()
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Stop()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// openStore builds the configured backend and a limiter that fits it.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repository.Store, limiter.Limiter, error) {
	var lim limiter.Limiter = limiter.Nop{}
	if cfg.Limiter.MaxFails > 0 {
		lim = limiter.NewMemory(cfg.Limiter.Window, cfg.Limiter.MaxFails, cfg.Limiter.Block)
	}

	switch cfg.Store {
	case config.StoreBolt:
		store, err := bolt.NewStore(cfg.BoltPath)
		return store, lim, err
	case config.StoreMemory:
		logger.Warn("memory store: data is lost on exit")
		return memory.NewStore(), lim, nil
	}

	if err := migrate.Up(ctx, cfg.DSN); err != nil {
		return nil, nil, err
	}
	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Limiter.MaxFails > 0 {
		lim = limiter.NewPG(db.Pool, cfg.Limiter.Window, cfg.Limiter.MaxFails, cfg.Limiter.Block)
	}
	return postgres.NewStore(db), lim, nil
}
