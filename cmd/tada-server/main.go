package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/idilsaglam/tada/internal/accounts"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/server"
	"github.com/idilsaglam/tada/internal/store/boltstore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tada-server:", err)
		os.Exit(1)
	}
}

func run() error {
	flags := config.RegisterFlags(flag.CommandLine, true)
	cfg, err := config.Load(flags, os.Args[1:])
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, logging.Options{
		Level:           cfg.LogLevel,
		Prefix:          "tada-server",
		ReportTimestamp: true,
	})

	sc := cfg.Server
	if sc.JWTSecret == "" {
		return errors.New("a jwt secret is required: set TADA_JWT_SECRET or [server] jwt_secret")
	}
	tokens, err := server.NewTokens(sc.JWTSecret, sc.TokenTTL)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(sc.DBPath), 0o700); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	st, err := boltstore.Open(sc.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(server.Deps{
		Accounts:    accounts.New(st, accounts.WithMinPassword(sc.MinPassword)),
		Todos:       st,
		Profiles:    st,
		Tokens:      tokens,
		Logger:      logger,
		CORSOrigins: sc.CORSOrigins,
	})
	httpSrv := &http.Server{
		Addr:              sc.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", sc.ListenAddr, "db", sc.DBPath)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
