package middleware

import (
	"context"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/simulation"
	"github.com/peter-kozarec/equitygym/pkg/utility"
	"go.uber.org/zap"
)

type TradeRecorder interface {
	RecordTrades(ctx context.Context, episode utility.EpisodeID, trades []common.Trade) error
}

// Ledger persists every trade of a transition before passing it on. A failed
// write is logged and does not stop the episode.
type Ledger struct {
	logger   *zap.Logger
	recorder TradeRecorder
}

func NewLedger(logger *zap.Logger, recorder TradeRecorder) *Ledger {
	return &Ledger{
		logger:   logger,
		recorder: recorder,
	}
}

func (l *Ledger) WithTransition(handler simulation.TransitionHandler) simulation.TransitionHandler {
	return func(ctx context.Context, tr simulation.Transition) {
		if trades := tr.Trades(); len(trades) > 0 {
			if err := l.recorder.RecordTrades(ctx, tr.EpisodeID, trades); err != nil {
				l.logger.Warn("unable to record trades",
					zap.Stringer("episode", tr.EpisodeID),
					zap.Int("step", tr.Step),
					zap.Error(err))
			}
		}
		handler(ctx, tr)
	}
}
