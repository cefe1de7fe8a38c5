package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fostercare-aficionado/chat/internal/chatview"
	"github.com/fostercare-aficionado/chat/internal/config"
	"github.com/fostercare-aficionado/chat/internal/handlers"
)

func main() {
	defaultPath, err := config.DefaultPath()
	if err != nil {
		log.Fatal(err)
	}
	cfgPath := flag.String("config", defaultPath, "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	transport, err := cfg.Backend.Transport(logger)
	if err != nil {
		log.Fatal(fmt.Errorf("error creating %s backend: %w", cfg.Backend.Name(), err))
	}
	viewOpts := cfg.ViewOptions(logger)

	// Replies in flight are cancelled when the server shuts down.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	m, err := handlers.NewMain(appCtx, func() *chatview.View {
		return chatview.New(transport, viewOpts...)
	}, cfg.SessionTTL, logger)
	if err != nil {
		log.Fatal(err)
	}

	var apiProxy http.Handler
	if target, ok := cfg.ProxyTarget(); ok {
		apiProxy = handlers.NewAPIProxy(target, logger)
		logger.Info("Proxying /api/ requests", slog.String("target", target.String()))
	}

	router, err := m.Router(apiProxy)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.SessionTTL > 0 {
		go m.RunEviction(appCtx, cfg.SessionTTL/4)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv.RegisterOnShutdown(func() {
		appCancel()

		if err := m.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown sse server", slog.String("err", err.Error()))
		}
	})

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("Server starting",
			slog.String("addr", srv.Addr),
			slog.String("backend", cfg.Backend.Name()))
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt/terminate signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking select waiting for either interrupt or server error
	select {
	case err := <-serverErrors:
		logger.Error("Server error", slog.String("err", err.Error()))

	case sig := <-shutdown:
		logger.Info("Start shutdown", slog.String("signal", sig.String()))

		// Create context with timeout for shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Gracefully shutdown the server
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", slog.String("err", err.Error()))
			if err := srv.Close(); err != nil {
				logger.Error("Forcing server close", slog.String("err", err.Error()))
			}
		}
	}
}
