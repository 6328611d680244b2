package middleware

import (
	"context"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/simulation"
)

// Telemetry counts what flows through a transition chain.
type Telemetry struct {
	transitionCounter int64
	tradeCounter      int64
	stopLossCounter   int64
	takeProfitCounter int64
	episodeCounter    int64
}

func NewTelemetry() *Telemetry {
	return &Telemetry{}
}

func (t *Telemetry) WithTransition(handler simulation.TransitionHandler) simulation.TransitionHandler {
	return func(ctx context.Context, tr simulation.Transition) {
		t.transitionCounter++
		for _, trade := range tr.Trades() {
			t.tradeCounter++
			switch trade.Reason {
			case common.TradeReasonStopLoss:
				t.stopLossCounter++
			case common.TradeReasonTakeProfit:
				t.takeProfitCounter++
			default:
			}
		}
		if tr.Done {
			t.episodeCounter++
		}
		handler(ctx, tr)
	}
}

func (t *Telemetry) Transitions() int64 { return t.transitionCounter }
func (t *Telemetry) Trades() int64      { return t.tradeCounter }
func (t *Telemetry) Episodes() int64    { return t.episodeCounter }

// Exits returns the forced stop-loss and take-profit trade counts.
func (t *Telemetry) Exits() (stopLoss, takeProfit int64) {
	return t.stopLossCounter, t.takeProfitCounter
}
