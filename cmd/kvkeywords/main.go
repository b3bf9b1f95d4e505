package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leafsii/kvkeywords/internal/api"
	"github.com/leafsii/kvkeywords/internal/config"
	"github.com/leafsii/kvkeywords/internal/keywords"
	"github.com/leafsii/kvkeywords/internal/log"
	"github.com/leafsii/kvkeywords/internal/metrics"
	"github.com/leafsii/kvkeywords/internal/session"
	"github.com/leafsii/kvkeywords/pkg/facade"

	// Store backends register themselves with kv.Open
	_ "github.com/leafsii/kvkeywords/pkg/kv/memory"
	_ "github.com/leafsii/kvkeywords/pkg/kv/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting keyword server",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
		"backend", cfg.Store.Backend,
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("kvkeywords")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	kvFacade := facade.New(logger, facade.WithRecorder(metricsObj))
	defaults := cfg.Store.ConnectOptions()
	library := keywords.NewLibrary(kvFacade, defaults)

	sessions := session.NewManager(cfg.Sessions.MaxSessions, cfg.Sessions.IdleTimeout, metricsObj, logger)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	go sessions.Run(bgCtx, time.Minute)

	// Readiness dials the configured default store and hangs up again
	probe := func(ctx context.Context) error {
		conn, err := kvFacade.Connect(ctx, defaults)
		if err != nil {
			return err
		}
		return conn.Close()
	}

	handler := api.NewHandler(library, sessions, probe, logger)
	middleware := api.NewMiddleware(logger, metricsObj)

	router := handler.Routes(middleware, api.RouteOptions{
		CORSOrigins:    cfg.Security.CORSAllowedOrigins,
		RateLimitRPM:   cfg.Security.RateLimitRPM,
		RequestTimeout: cfg.Sessions.RequestTimeout,
	})

	logger.Infow("CORS configured", "allowed_origins", cfg.Security.CORSAllowedOrigins)

	// Add metrics endpoint
	router.Handle("/metrics", metricsHandler)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Sessions.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("Keyword server listening", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		bgCancel()
		sessions.CloseAll(ctx)
		logger.Infow("Server stopped")
	}
}
