package middleware

import (
	"context"

	"github.com/peter-kozarec/equitygym/pkg/simulation"
	"go.uber.org/zap"
)

type MonitorFlags uint16

//goland:noinspection GoUnusedConst
const (
	MonitorNone MonitorFlags = 1 << iota
	MonitorAll
	MonitorSteps
	MonitorTrades
	MonitorExits
	MonitorTermination
)

type Monitor struct {
	logger *zap.Logger
	flags  MonitorFlags
}

func NewMonitor(logger *zap.Logger, flags MonitorFlags) *Monitor {
	return &Monitor{
		logger: logger,
		flags:  flags,
	}
}

func (m *Monitor) enabled(flag MonitorFlags) bool {
	return m.flags&flag != 0 || m.flags&MonitorAll != 0
}

func (m *Monitor) WithTransition(handler simulation.TransitionHandler) simulation.TransitionHandler {
	return func(ctx context.Context, tr simulation.Transition) {
		if m.enabled(MonitorSteps) {
			m.logger.Info("step",
				zap.Stringer("episode", tr.EpisodeID),
				zap.Int("step", tr.Step),
				zap.Float64("reward", tr.Reward),
				zap.String("total_value", tr.Info.TotalValue.String()))
		}

		if m.enabled(MonitorTrades) {
			for _, trade := range tr.Trades() {
				m.logger.Info("trade",
					zap.Stringer("episode", tr.EpisodeID),
					zap.String("symbol", trade.Symbol),
					zap.String("side", string(trade.Side)),
					zap.String("reason", string(trade.Reason)),
					zap.Int64("shares", trade.Shares),
					zap.String("price", trade.Price.String()))
			}
		}

		if m.enabled(MonitorExits) {
			for _, asset := range tr.Info.Assets {
				if asset.Exit == "" || asset.Step != tr.Step+1 {
					continue
				}
				m.logger.Warn("risk exit",
					zap.Stringer("episode", tr.EpisodeID),
					zap.String("symbol", asset.Symbol),
					zap.String("exit", string(asset.Exit)),
					zap.String("price", asset.Price.String()))
			}
		}

		if tr.Done && m.enabled(MonitorTermination) {
			m.logger.Info("episode done",
				zap.Stringer("episode", tr.EpisodeID),
				zap.Int("steps", tr.Step+1),
				zap.Int("trades", tr.Info.TotalTrades),
				zap.String("total_value", tr.Info.TotalValue.String()))
		}

		handler(ctx, tr)
	}
}
