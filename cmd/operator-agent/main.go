package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/floegence/operator-agent/internal/config"
	"github.com/floegence/operator-agent/internal/envclient"
	"github.com/floegence/operator-agent/internal/loop"
	"github.com/floegence/operator-agent/internal/oracle"
	"github.com/floegence/operator-agent/internal/runstore"
	"github.com/floegence/operator-agent/internal/sysinfo"
	"github.com/floegence/operator-agent/internal/tools"
)

var (
	// Version is set via -ldflags at build time.
	Version = "dev"
	// Commit is set via -ldflags at build time.
	Commit = "unknown"
	// BuildTime is set via -ldflags at build time.
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		runCmd(os.Args[2:])
	case "replay":
		replayCmd(os.Args[2:])
	case "runs":
		runsCmd(os.Args[2:])
	case "version":
		fmt.Printf("operator-agent %s (%s) %s\n", Version, Commit, BuildTime)
	default:
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `operator-agent

Usage:
  operator-agent run -objective "..." [flags]
  operator-agent replay -script path.yaml [flags]
  operator-agent runs [flags]
  operator-agent version

Commands:
  run         Run the agent loop against the configured environment and oracle.
  replay      Run the loop with a scripted oracle from a YAML file (no provider key needed).
  runs        List recorded runs from the local database.
  version     Print build information.

`)
}

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultConfigPath(), "Config file path")
	objective := fs.String("objective", "", "Task objective for the agent (required)")
	maxSteps := fs.Int("max-steps", 0, "Override max loop iterations (0: use config)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*objective) == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(filepath.Clean(*cfgPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *maxSteps > 0 {
		cfg.MaxSteps = *maxSteps
	}

	orc, model, err := buildOracle(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init oracle: %v\n", err)
		os.Exit(1)
	}

	if err := execute(cfg, orc, model, strings.TrimSpace(*objective)); err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
}

func replayCmd(args []string) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultConfigPath(), "Config file path")
	script := fs.String("script", "", "Scripted oracle YAML file (required)")
	objective := fs.String("objective", "scripted replay", "Objective recorded for the run")
	_ = fs.Parse(args)

	if strings.TrimSpace(*script) == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(filepath.Clean(*cfgPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	orc, err := oracle.LoadScript(filepath.Clean(*script))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load script: %v\n", err)
		os.Exit(1)
	}

	if err := execute(cfg, orc, "scripted", strings.TrimSpace(*objective)); err != nil {
		fmt.Fprintf(os.Stderr, "replay failed: %v\n", err)
		os.Exit(1)
	}
}

func runsCmd(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultConfigPath(), "Config file path")
	limit := fs.Int("limit", 20, "Max runs to list")
	_ = fs.Parse(args)

	cfg, err := config.Load(filepath.Clean(*cfgPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		fmt.Fprintln(os.Stderr, "no db_path configured; run persistence is disabled")
		os.Exit(1)
	}

	store, err := runstore.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open run store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list runs: %v\n", err)
		os.Exit(1)
	}
	for _, r := range runs {
		at := time.UnixMilli(r.UpdatedAtUnixMs).Format(time.RFC3339)
		fmt.Printf("%s  %-9s  %-11s  %s  %s\n", r.RunID, r.Status, r.EndReason, at, r.Objective)
	}
}

func buildOracle(cfg *config.Config) (loop.Oracle, string, error) {
	apiKey := strings.TrimSpace(os.Getenv(cfg.EffectiveAPIKeyEnv()))
	if apiKey == "" {
		return nil, "", fmt.Errorf("missing oracle api key: set %s", cfg.EffectiveAPIKeyEnv())
	}

	registry := tools.NewRegistry()
	switch strings.ToLower(strings.TrimSpace(cfg.Oracle.Provider)) {
	case config.ProviderOpenAI:
		o, err := oracle.NewOpenAI(oracle.OpenAIOptions{
			APIKey:       apiKey,
			BaseURL:      cfg.Oracle.BaseURL,
			Model:        cfg.Oracle.Model,
			SystemPrompt: cfg.SystemPrompt,
			Registry:     registry,
		})
		return o, cfg.Oracle.Model, err
	default:
		o, err := oracle.NewAnthropic(oracle.AnthropicOptions{
			APIKey:       apiKey,
			BaseURL:      cfg.Oracle.BaseURL,
			Model:        cfg.Oracle.Model,
			SystemPrompt: cfg.SystemPrompt,
			Registry:     registry,
		})
		return o, cfg.Oracle.Model, err
	}
}

func execute(cfg *config.Config, orc loop.Oracle, model string, objective string) error {
	log, err := newLogger(cfg.EffectiveLogFormat(), cfg.EffectiveLogLevel())
	if err != nil {
		return err
	}

	env, err := envclient.New(envclient.Options{
		BaseURL: cfg.EnvironmentBaseURL,
		Timeout: cfg.EffectiveEnvironmentTimeout(),
		Logger:  log,
	})
	if err != nil {
		return err
	}

	dispatcher, err := loop.NewDispatcher(tools.NewRegistry(), env, log)
	if err != nil {
		return err
	}

	var store *runstore.Store
	var recorder loop.Recorder
	runID := runstore.NewRunID()
	if strings.TrimSpace(cfg.DBPath) != "" {
		store, err = runstore.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.CreateRun(context.Background(), runstore.Run{
			RunID:     runID,
			Objective: objective,
			Model:     model,
			Status:    "running",
		}); err != nil {
			return err
		}
		recorder = runstore.NewRecorder(store, runID, log)
	}

	exec, err := loop.NewExecutor(loop.ExecutorOptions{
		Oracle:     orc,
		Dispatcher: dispatcher,
		MaxSteps:   cfg.EffectiveMaxSteps(),
		Recorder:   recorder,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown on SIGINT/SIGTERM.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()

	host := sysinfo.Collect(ctx)
	log.Info("run.start", append([]any{"run_id", runID, "model", model}, host.LogArgs()...)...)

	state := loop.NewState()
	state.Merge(loop.Delta{Turns: []loop.Turn{{
		Role:  loop.RoleUser,
		Parts: []loop.ContentPart{loop.TextPart(objective)},
	}}})

	reason, runErr := exec.Run(ctx, state)
	if store != nil {
		status := "completed"
		errText := ""
		switch {
		case runErr != nil:
			status = "failed"
			errText = runErr.Error()
		case reason == loop.EndCanceled:
			status = "canceled"
		}
		if err := store.UpdateRunStatus(context.Background(), runID, status, string(reason), errText); err != nil {
			log.Warn("runstore.update_failed", "run_id", runID, "error", err)
		}
	}

	log.Info("run.done", "run_id", runID, "end_reason", string(reason))
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}

// --- logger ---

func newLogger(format string, level string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		lvl = slog.LevelInfo
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level: %s", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		// Prefer readable logs on an interactive terminal.
		if term.IsTerminal(int(os.Stdout.Fd())) {
			h = slog.NewTextHandler(os.Stdout, opts)
		} else {
			h = slog.NewJSONHandler(os.Stdout, opts)
		}
	case "text":
		h = slog.NewTextHandler(os.Stdout, opts)
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}

	return slog.New(h), nil
}
