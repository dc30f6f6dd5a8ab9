package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/internal/schemafile"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
)

func main() {
	fs := flag.NewFlagSet("formstate-cli", flag.ExitOnError)
	output := fs.String("out", "", "output file (stdout if empty)")
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := cfg.Log.Logger(os.Stderr)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	holder, err := schemafile.NewHolder(cfg.SchemaFile, logger)
	if err != nil {
		log.Fatalf("Failed to load schema: %v", err)
	}
	f, err := holder.NewForm()
	if err != nil {
		log.Fatalf("Failed to create form: %v", err)
	}

	session, err := tui.New(
		tui.WithPromptDriver(tui.NewSurveyDriver(os.Stderr)),
		tui.WithOutputFormat(tui.OutputFormat(cfg.Output)),
		tui.WithMaxAttempts(cfg.MaxAttempts),
		tui.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	payload, err := session.Run(ctx, f, nil)
	if errors.Is(err, tui.ErrAborted) {
		os.Exit(130)
	}
	if err != nil {
		log.Fatalf("Failed to fill form: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Values written to %s\n", *output)
		return
	}
	fmt.Println(string(payload))
}
