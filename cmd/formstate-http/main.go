package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/internal/schemafile"
	"github.com/goliatone/go-formstate/internal/server"
)

func main() {
	fs := flag.NewFlagSet("formstate-http", flag.ExitOnError)
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := cfg.Log.Logger(os.Stderr)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	holder, err := schemafile.NewHolder(cfg.SchemaFile, logger)
	if err != nil {
		log.Fatalf("Failed to load schema: %v", err)
	}
	if cfg.Watch {
		if err := holder.Watch(); err != nil {
			log.Fatalf("Failed to watch schema: %v", err)
		}
		defer holder.Stop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler, err := server.New(holder, server.Options{
		Title:       cfg.HTTP.Title,
		MetricsPath: cfg.HTTP.MetricsPath,
		Logger:      logger,
		Registry:    reg,
		OnSubmit: func(_ context.Context, values map[string]any) error {
			logger.Info().Interface("values", values).Msg("form submitted")
			return nil
		},
	})
	if err != nil {
		log.Fatalf("Failed to build handler: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().Str("addr", cfg.HTTP.Addr).Str("schema", cfg.SchemaFile).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
