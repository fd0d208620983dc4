// Command waketimed runs the stayup-rule evaluation daemon described by
// this module: it loads variable and rule definitions, runs the
// Engine/Worker/Signal threads, and serves GetStatus() over the bus.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"waketimed-go/bus"
	"waketimed-go/internal/config"
	"waketimed-go/internal/defs"
	"waketimed-go/internal/defs/embedded"
	"waketimed-go/internal/engine"
	"waketimed-go/internal/export"
	"waketimed-go/internal/msg"
	"waketimed-go/internal/probe"
	"waketimed-go/internal/sleepmanager"
	"waketimed-go/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "waketimed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		logLevel  string
		varDefDir string
		ruleDefDir string
	)
	flag.StringVar(&logLevel, "log.level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&varDefDir, "config.vars", "", "Override variable definition directory (in addition to embedded defaults)")
	flag.StringVar(&ruleDefDir, "config.rules", "", "Override rule definition directory (in addition to embedded defaults)")
	flag.Parse()

	logger, err := buildLogger(logLevel)
	if err != nil {
		return err
	}

	envCfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	varSources := []defs.Source{{Label: "embedded", FS: embedded.VarDefs()}}
	ruleSources := []defs.Source{{Label: "embedded", FS: embedded.RuleDefs()}}
	if varDefDir != "" {
		varSources = append(varSources, defs.DirSource(varDefDir))
	}
	if ruleDefDir != "" {
		ruleSources = append(ruleSources, defs.DirSource(ruleDefDir))
	}

	varDefs, varReport, err := defs.LoadVarDefs(varSources)
	if err != nil {
		return fmt.Errorf("loading variable definitions: %w", err)
	}
	logLoadReport(logger, "variables", varReport)

	ruleDefs, ruleReport, err := defs.LoadRuleDefs(ruleSources)
	if err != nil {
		return fmt.Errorf("loading rule definitions: %w", err)
	}
	logLoadReport(logger, "rules", ruleReport)

	chassisType := detectChassisType()
	disabled := !config.ChassisAllowed(envCfg.AllowedChassisTypes, chassisType)
	if disabled {
		logger.Info("chassis type not in allowed list, engine will be disabled", "chassis_type", chassisType)
	}

	b := bus.NewBus(8)
	exportConn := b.NewConnection("export")
	publisher := export.NewPublisher(exportConn)

	engineToWorker := make(chan msg.WorkerMsg, 64)
	workerToEngine := make(chan msg.EngineMsg, 64)

	eng, err := engine.New(engine.Config{
		PollVariableInterval:   envCfg.PollVariableInterval,
		StartupAwakeTime:       envCfg.StartupAwakeTime,
		MinimumAwakeTime:       envCfg.MinimumAwakeTime,
		StayupClearedAwakeTime: envCfg.StayupClearedAwakeTime,
		TestMode:               envCfg.TestMode,
		Disabled:               disabled,
	}, varDefs, ruleDefs, sleepmanager.NewBootClock(), logger, engineToWorker, publisher)
	if err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}

	w := worker.New(
		probe.CreationContext{Bus: probe.UnavailableSystemBus{}},
		worker.SysfsSuspender{},
		nil,
		logger,
		engineToWorker,
		workerToEngine,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	responderCtx, cancelResponder := context.WithCancel(context.Background())
	defer cancelResponder()
	go export.NewResponder(b.NewConnection("responder"), publisher).Start(responderCtx)

	go w.Run(ctx)
	eng.Run(ctx, workerToEngine)

	logger.Info("waketimed: exiting")
	return nil
}

func buildLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q (expected debug|info|warn|error)", level)
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func logLoadReport(logger *slog.Logger, kind string, report defs.Report) {
	for _, name := range report.Overridden {
		logger.Info("definition overridden by a higher-precedence directory", "kind", kind, "file", name)
	}
	for _, name := range report.Void {
		logger.Info("definition file is empty, skipped", "kind", kind, "file", name)
	}
}
