package middleware

import (
	"context"
	"time"

	"github.com/peter-kozarec/equitygym/pkg/simulation"
	"go.uber.org/zap"
)

type Performance struct {
	logger *zap.Logger

	transitionCounter      int64
	totalTransitionHandler time.Duration
	maxTransitionHandler   time.Duration
}

func NewPerformance(logger *zap.Logger) *Performance {
	return &Performance{
		logger: logger,
	}
}

func (p *Performance) WithTransition(handler simulation.TransitionHandler) simulation.TransitionHandler {
	return func(ctx context.Context, tr simulation.Transition) {
		startTime := time.Now()
		handler(ctx, tr)
		elapsed := time.Since(startTime)

		p.transitionCounter++
		p.totalTransitionHandler += elapsed
		p.maxTransitionHandler = max(p.maxTransitionHandler, elapsed)
	}
}

func (p *Performance) Average() time.Duration {
	if p.transitionCounter == 0 {
		return 0
	}
	return p.totalTransitionHandler / time.Duration(p.transitionCounter)
}

func (p *Performance) PrintStatistics(t *Telemetry) {
	fields := []zap.Field{
		zap.Int64("transitions", p.transitionCounter),
		zap.Duration("transition_avg_duration", p.Average()),
		zap.Duration("transition_max_duration", p.maxTransitionHandler),
		zap.Duration("transition_total_duration", p.totalTransitionHandler),
	}

	if t != nil {
		stopLoss, takeProfit := t.Exits()
		fields = append(fields,
			zap.Int64("episodes", t.Episodes()),
			zap.Int64("trades", t.Trades()),
			zap.Int64("stop_loss_exits", stopLoss),
			zap.Int64("take_profit_exits", takeProfit))
	}

	p.logger.Info("handler performance", fields...)
}
