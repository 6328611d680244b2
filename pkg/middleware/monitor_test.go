package middleware

import (
	"context"
	"testing"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/simulation"
	"github.com/peter-kozarec/equitygym/pkg/tools/risk"
	"github.com/peter-kozarec/equitygym/pkg/utility"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func exitTransition() simulation.Transition {
	trade := common.Trade{
		Symbol: "AAA",
		Step:   5,
		Side:   common.TradeSideSell,
		Reason: common.TradeReasonTakeProfit,
		Shares: 183,
		Price:  fixed.FromInt(130, 0),
	}
	return simulation.Transition{
		EpisodeID: utility.NewEpisodeID(),
		Step:      5,
		Symbols:   []string{"AAA"},
		Actions:   []common.Action{common.ActionSell},
		Reward:    171.2,
		Done:      true,
		Info: simulation.PortfolioInfo{
			TotalValue:  fixed.FromInt(99921, 0),
			TotalTrades: 3,
			Assets: []simulation.Info{
				{Symbol: "AAA", Step: 6, Price: fixed.FromInt(130, 0), Exit: risk.ExitTakeProfit},
			},
			Trades: []common.Trade{trade},
		},
	}
}

func TestMiddlewareMonitor_Flags(t *testing.T) {
	tests := []struct {
		name     string
		flags    MonitorFlags
		messages []string
	}{
		{"none", MonitorNone, nil},
		{"steps", MonitorSteps, []string{"step"}},
		{"trades and exits", MonitorTrades | MonitorExits, []string{"trade", "risk exit"}},
		{"termination", MonitorTermination, []string{"episode done"}},
		{"all", MonitorAll, []string{"step", "trade", "risk exit", "episode done"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)

			var handlerCalled bool
			handler := func(context.Context, simulation.Transition) { handlerCalled = true }

			NewMonitor(zap.New(core), tt.flags).WithTransition(handler)(context.Background(), exitTransition())
			assert.True(t, handlerCalled)

			var messages []string
			for _, entry := range logs.All() {
				messages = append(messages, entry.Message)
			}
			assert.Equal(t, tt.messages, messages)
		})
	}
}

func TestMiddlewareMonitor_StaleExit(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	tr := exitTransition()
	tr.Step = 7

	NewMonitor(zap.New(core), MonitorExits).WithTransition(func(context.Context, simulation.Transition) {})(context.Background(), tr)
	assert.Zero(t, logs.Len())
}
