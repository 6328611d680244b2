package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peter-kozarec/equitygym/internal/dbg"
	"github.com/peter-kozarec/equitygym/pkg/datasource"
	"github.com/peter-kozarec/equitygym/pkg/journal"
	"github.com/peter-kozarec/equitygym/pkg/middleware"
	"github.com/peter-kozarec/equitygym/pkg/policy"
	"github.com/peter-kozarec/equitygym/pkg/simulation"
	"github.com/peter-kozarec/equitygym/pkg/storage/postgres"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
	"go.uber.org/zap"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			panic(err)
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := dbg.NewLogger(cfg.Production, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger.Info(fmt.Sprintf("equitygym %s", Version))
	defer logger.Info("done")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger, cfg); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("gym run failed", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger, cfg config) error {
	simCfg := simulation.DefaultConfiguration()
	balance, err := fixed.FromString(cfg.Balance)
	if err != nil {
		return fmt.Errorf("-balance: %w", err)
	}
	simCfg = simCfg.WithInitialBalance(balance)

	loader, release, err := openLoader(ctx, logger, cfg)
	if err != nil {
		return fmt.Errorf("open %s source: %w", cfg.Source, err)
	}
	defer release()

	series, err := datasource.LoadAll(ctx, loader, cfg.Symbols, cfg.From, cfg.To)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	portfolio, err := simulation.NewPortfolio(series, simCfg, simulation.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("build portfolio: %w", err)
	}

	pol, err := policy.New(cfg.Policy, cfg.Seed)
	if err != nil {
		return err
	}

	monitor := middleware.NewMonitor(logger, MonitorFlags)
	telemetry := middleware.NewTelemetry()
	performance := middleware.NewPerformance(logger)
	defer performance.PrintStatistics(telemetry)

	wrappers := []func(simulation.TransitionHandler) simulation.TransitionHandler{
		performance.WithTransition,
		telemetry.WithTransition,
		monitor.WithTransition,
	}

	if cfg.Journal != "" {
		file, err := os.OpenFile(cfg.Journal, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer func() { _ = file.Close() }()

		writer := journal.NewWriter(logger, file)
		defer func() {
			if err := writer.Flush(); err != nil {
				logger.Error("unable to flush journal", zap.Error(err))
			}
		}()
		wrappers = append(wrappers, writer.WithTransition)
	}

	if cfg.Telemetry != "" {
		hub := middleware.NewHub(logger)
		go hub.Run(ctx)
		go func() {
			if err := middleware.ListenAndServe(ctx, hub, cfg.Telemetry); err != nil {
				logger.Error("telemetry server stopped", zap.Error(err))
			}
		}()
		wrappers = append(wrappers, hub.WithTransition)
	}

	var recorder *episodeRecorder
	if cfg.Store != "" {
		pool, err := postgres.NewPool(ctx, cfg.Store)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}

		store := postgres.NewEpisodeStore(pool)
		recorder = &episodeRecorder{logger: logger, store: store, policy: cfg.Policy, balance: balance}
		wrappers = append(wrappers, recorder.WithTransition, middleware.NewLedger(logger, store).WithTransition)
	}

	handler := middleware.Chain(wrappers...)(func(context.Context, simulation.Transition) {})
	executor := simulation.NewExecutor(logger, portfolio, pol, handler)

	for episode := 0; episode < cfg.Episodes; episode++ {
		result, err := executor.Run(ctx)
		if recorder != nil {
			recorder.finish(context.WithoutCancel(ctx), result)
		}
		if err != nil {
			return fmt.Errorf("episode %d: %w", episode, err)
		}
	}
	return nil
}
