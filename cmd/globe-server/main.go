// Command globe-server serves the interactive country globe to browsers.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/echoflaresat/globeview/config"
	"github.com/echoflaresat/globeview/logging"
	"github.com/echoflaresat/globeview/observability"
	"github.com/echoflaresat/globeview/server"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML configuration file; watched for changes")
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	logFormat := flag.String("log-format", os.Getenv("LOG_FORMAT"), "Log format: text or json")
	logLevel := flag.String("log-level", os.Getenv("LOG_LEVEL"), "Log level: debug, info, warn, error")
	flag.Parse()

	log := logging.New(logging.Config{Level: *logLevel, Format: *logFormat})

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Error("failed to load configuration", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	metrics, err := observability.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("failed to initialise metrics collector", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, server.WithLogger(log), server.WithMetrics(metrics))
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, log, func(next config.Config) {
				if next.Server.Addr != cfg.Server.Addr {
					log.Warn("server.addr changes need a restart", "addr", next.Server.Addr)
				}
				if err := srv.Apply(ctx, next); err != nil {
					log.Warn("configuration not applied", "error", err)
				}
			})
			if err != nil {
				log.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	go func() {
		log.Info("serving globe", "addr", cfg.Server.Addr, "countries", len(cfg.Countries))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server exited", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down globe server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Hijacked websocket connections are not tracked by Shutdown.
	srv.Close()
	_ = httpSrv.Shutdown(shutdownCtx)
}
