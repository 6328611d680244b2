package risk

import (
	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

type Exit string

const (
	ExitNone       Exit = ""
	ExitStopLoss   Exit = "stop_loss"
	ExitTakeProfit Exit = "take_profit"
)

func (e Exit) TradeReason() common.TradeReason {
	switch e {
	case ExitStopLoss:
		return common.TradeReasonStopLoss
	case ExitTakeProfit:
		return common.TradeReasonTakeProfit
	default:
		return common.TradeReasonPolicy
	}
}

// Guard forces a long position flat once its unrealized return crosses
// -stopLoss or +takeProfit. Both thresholds are inclusive.
type Guard struct {
	stopLoss   fixed.Point
	takeProfit fixed.Point
}

func NewGuard(stopLoss, takeProfit fixed.Point) *Guard {
	return &Guard{
		stopLoss:   stopLoss,
		takeProfit: takeProfit,
	}
}

// PnL is the unrealized return of a lot opened at entry and marked at price.
func PnL(entry, price fixed.Point) fixed.Point {
	return price.Sub(entry).Div(entry)
}

func (g *Guard) Evaluate(entry, price fixed.Point) Exit {
	if !entry.IsPos() {
		return ExitNone
	}

	pnl := PnL(entry, price)
	if pnl.Lte(g.stopLoss.Neg()) {
		return ExitStopLoss
	}
	if pnl.Gte(g.takeProfit) {
		return ExitTakeProfit
	}
	return ExitNone
}

func (g *Guard) StopLoss() fixed.Point   { return g.stopLoss }
func (g *Guard) TakeProfit() fixed.Point { return g.takeProfit }
