// Command strike-engine reads a ScenarioInput JSON from a file argument (or
// stdin), runs the scenario, and writes the ScenarioLog JSON to stdout. Logs go
// to stderr and, when configured, to a log file.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cxd309/strike-engine/internal/config"
	"github.com/cxd309/strike-engine/internal/engine"
	"github.com/cxd309/strike-engine/internal/graph"
	"github.com/cxd309/strike-engine/internal/logging"
	"github.com/cxd309/strike-engine/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("strike-engine", pflag.ContinueOnError)
	configDir := flags.String("config-dir", ".", "directory holding strike.cfg.json or strike.cfg.yaml")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.String("log-file", "", "also write logs to this file")
	flags.String("nav-dir", "", "navigation dataset directory, empty disables routing")
	flags.String("storage", "memory", "solve recorder: memory or sqlite")
	flags.String("sqlite-path", "", "SQLite database file, empty keeps it in memory")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	if err := config.Load(*configDir); err != nil {
		return err
	}
	for key, flag := range map[string]string{
		"logLevel":            "log-level",
		"logFile":             "log-file",
		"navigation.dir":      "nav-dir",
		"storage.type":        "storage",
		"storage.sqlite.path": "sqlite-path",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}
	settings, err := config.Get()
	if err != nil {
		return err
	}

	logManager := logging.NewSlogManager(os.Stderr)
	var logFile io.Writer
	if settings.LogFile != "" {
		f, err := os.OpenFile(settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logFile = f
	}
	logManager.Setup(logFile, settings.LogLevel)
	log := logManager.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Start the navigation load before reading the scenario so both overlap.
	var loader *graph.Loader
	if nav := settings.Navigation; nav.Dir != "" {
		loader = graph.LoadDir(ctx, nav.Dir, navigatorOptions(nav), log)
	}

	data, err := readInput(flags.Args())
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	backend, err := storage.NewBackend(settings.Storage)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initialising %s storage: %w", settings.Storage.Type, err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warn("closing storage", "error", err)
		}
	}()

	opts := engine.Options{
		Logger:    log,
		Optimizer: optimizerSettings(settings.Optimizer),
		Agent:     agentSettings(settings.Agent),
		Recorder:  backend,
	}
	if loader != nil {
		waitCtx, cancel := context.WithTimeout(ctx, settings.Navigation.WaitTimeout)
		nav, err := loader.Wait(waitCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("loading navigation graph: %w", err)
		}
		opts.Navigator = nav
	}

	result, err := engine.RunJSONWith(ctx, string(data), opts)
	if err != nil {
		return fmt.Errorf("scenario error: %w", err)
	}
	fmt.Println(result)
	log.Debug("output written", slog.Int("bytes", len(result)))
	return nil
}

func readInput(args []string) ([]byte, error) {
	if len(args) > 0 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}
