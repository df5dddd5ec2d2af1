package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resumecms/config"
	contentservice "resumecms/internal/content/service"
	publishservice "resumecms/internal/publish/service"
	"resumecms/pkg/logger"
	"resumecms/router"
	"resumecms/socket"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("resumecms", pflag.ContinueOnError)
	flags := config.BindFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(flags.EnvFile)
	if err != nil {
		return err
	}
	flags.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.LogLevel)
	defer logger.Sync()
	if !cfg.EnvFileLoaded {
		logger.Sugar.Infof("No %s file found, using environment variables from OS", flags.EnvFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.close()

	hub := socket.NewHub()
	go hub.Run()
	defer hub.Stop()

	registry := contentservice.NewRegistry(backend.stores)
	publisher, err := publishservice.NewPublishService(publishservice.Stages(registry), backend.ledger, backend.tx, hub)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.Addr,
		Handler: router.Setup(router.Deps{
			Registry:    registry,
			Publish:     publisher,
			Hub:         hub,
			JWTSecret:   cfg.JWTSecret,
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Sugar.Infof("Go Backend listening on %s (store: %s)", cfg.Addr, cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Sugar.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
