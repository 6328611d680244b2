package common

import (
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

type TradeSide string
type TradeReason string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

const (
	TradeReasonPolicy     TradeReason = "policy"
	TradeReasonStopLoss   TradeReason = "stop_loss"
	TradeReasonTakeProfit TradeReason = "take_profit"
)

// Trade is immutable once recorded. CashDelta is the signed balance change:
// the negative total cost of a buy, or the net proceeds of a sell.
type Trade struct {
	Symbol    string      `json:"symbol,omitempty"`
	Step      int         `json:"step"`
	Side      TradeSide   `json:"side"`
	Reason    TradeReason `json:"reason"`
	Shares    int64       `json:"shares"`
	Price     fixed.Point `json:"price"`
	CashDelta fixed.Point `json:"cash_delta"`
	Fee       fixed.Point `json:"fee"`
	Tax       fixed.Point `json:"tax"`
}

func (t Trade) IsBuy() bool  { return t.Side == TradeSideBuy }
func (t Trade) IsSell() bool { return t.Side == TradeSideSell }

func (t Trade) Notional() fixed.Point {
	return t.Price.MulInt64(t.Shares)
}

func (t Trade) IsForced() bool {
	return t.Reason == TradeReasonStopLoss || t.Reason == TradeReasonTakeProfit
}
