package metrics

import (
	"math"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

// Statistics is the end-of-episode record handed to reporting and persistence.
type Statistics struct {
	TotalReturnPct float64     `json:"total_return_pct"`
	TotalTrades    int         `json:"total_trades"`
	WinRatePct     float64     `json:"win_rate_pct"`
	MaxDrawdownPct float64     `json:"max_drawdown_pct"`
	SharpeRatio    float64     `json:"sharpe_ratio"`
	TotalFees      fixed.Point `json:"total_fees"`
	TotalTaxes     fixed.Point `json:"total_taxes"`
}

// WinCount pairs the i-th buy with the i-th sell in trade order. A pair wins when
// the sell's net proceeds exceed the buy's total cost.
func WinCount(trades []common.Trade) (wins, buys int) {
	var buyCosts, sellProceeds []fixed.Point
	for _, trade := range trades {
		switch trade.Side {
		case common.TradeSideBuy:
			buyCosts = append(buyCosts, trade.CashDelta.Neg())
		case common.TradeSideSell:
			sellProceeds = append(sellProceeds, trade.CashDelta)
		}
	}

	pairs := min(len(buyCosts), len(sellProceeds))
	for i := 0; i < pairs; i++ {
		if sellProceeds[i].Gt(buyCosts[i]) {
			wins++
		}
	}
	return wins, len(buyCosts)
}

// WinRate is in percent of buys. Unmatched buys count as losses.
func WinRate(trades []common.Trade) float64 {
	wins, buys := WinCount(trades)
	return WinRatio(wins, buys)
}

func WinRatio(wins, buys int) float64 {
	if buys == 0 {
		return 0
	}
	return float64(wins) / float64(buys) * 100
}

// TotalReturn is final/initial - 1 in percent.
func TotalReturn(initial, final fixed.Point) fixed.Point {
	if !initial.IsPos() {
		return fixed.Zero
	}
	return final.Div(initial).Sub(fixed.One).MulInt64(100)
}

// Sharpe annualises a total return earned over steps periods and scores it
// against the risk-free rate per unit of annual volatility.
func Sharpe(totalReturn float64, steps, periodsPerYear int, riskFreeRate, volatility float64) float64 {
	if steps <= 0 || volatility <= 0 {
		return 0
	}

	annualReturn := -1.0
	if growth := 1 + totalReturn; growth > 0 {
		annualReturn = math.Pow(growth, float64(periodsPerYear)/float64(steps)) - 1
	}

	sharpe := (annualReturn - riskFreeRate) / volatility
	if math.IsInf(sharpe, 0) || math.IsNaN(sharpe) {
		return 0
	}
	return sharpe
}
