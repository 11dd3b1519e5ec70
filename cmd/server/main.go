// Package main implements the entry point for the lazyreader server, which
// accepts LLM completion requests over HTTP and runs them as background jobs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/lazyreader/internal/config"
	"github.com/phrazzld/lazyreader/internal/generation"
	"github.com/phrazzld/lazyreader/internal/platform/gemini"
	"github.com/phrazzld/lazyreader/internal/platform/logger"
	"github.com/phrazzld/lazyreader/internal/service"
)

// options holds the command-line flags
type options struct {
	configPath string
	initConfig bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("lazyreader", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to a config.toml file")
	fs.BoolVar(&opts.initConfig, "init-config", false,
		"write a config file with default values and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// main is the entry point for the lazyreader server.
func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	if opts.initConfig {
		if err := initConfigFile(opts.configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// run loads configuration, wires the application and serves until ctx ends
func run(ctx context.Context, opts options) error {
	cfg, err := loadAppConfig(opts.configPath)
	if err != nil {
		return err
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"addr", cfg.Server.Addr(),
		"log_level", cfg.Server.LogLevel,
		"backend", cfg.LLM.Backend,
		"model", cfg.LLM.Model,
		"max_concurrent", cfg.Task.MaxConcurrent)

	app, err := newApplication(cfg, l, providerFactories(l))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// providerFactories lists the backends this build can serve
func providerFactories(l *slog.Logger) service.ProviderFactories {
	return service.ProviderFactories{
		generation.BackendGoogle: gemini.NewFactory(l),
	}
}

// loadAppConfig loads configuration from path, or from the default
// locations when path is empty
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// initConfigFile writes a default config file to path, or to the per-user
// location when path is empty. An existing file is left untouched.
func initConfigFile(path string) error {
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	written, err := config.WriteDefault(path)
	if err != nil {
		return err
	}
	if written {
		fmt.Printf("Wrote default configuration to %s\n", path)
	} else {
		fmt.Printf("Configuration already exists at %s\n", path)
	}
	return nil
}
