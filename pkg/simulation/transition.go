package simulation

import (
	"context"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/utility"
)

// Transition is one portfolio step as seen by observers.
type Transition struct {
	EpisodeID utility.EpisodeID `json:"episode_id"`
	Step      int               `json:"step"`
	Symbols   []string          `json:"symbols"`
	Actions   []common.Action   `json:"actions"`
	Reward    float64           `json:"reward"`
	Done      bool              `json:"done"`
	Info      PortfolioInfo     `json:"info"`
}

// Trades placed during this step, forced exits included.
func (t Transition) Trades() []common.Trade {
	return t.Info.Trades
}

type TransitionHandler func(ctx context.Context, transition Transition)

func noopTransitionHandler(context.Context, Transition) {}
