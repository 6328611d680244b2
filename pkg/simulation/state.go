package simulation

import (
	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/tools/risk"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

type Status int

const (
	StatusInitialized Status = iota
	StatusRunning
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusInitialized:
		return "initialized"
	case StatusRunning:
		return "running"
	case StatusTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

const ObservationSize = 7

// Observation layout: balance/initial, position, close/100, rsi/100, macd, bollinger position, volume ratio.
type Observation []float64

// AccountState is owned by one Environment. Position is the fraction of the
// initial balance committed to the asset, EntryPrice is zero exactly when flat.
type AccountState struct {
	Step               int            `json:"step"`
	Balance            fixed.Point    `json:"balance"`
	Position           fixed.Point    `json:"position"`
	EntryPrice         fixed.Point    `json:"entry_price"`
	MaxPortfolioValue  fixed.Point    `json:"max_portfolio_value"`
	PrevPortfolioValue fixed.Point    `json:"prev_portfolio_value"`
	TotalFees          fixed.Point    `json:"total_fees"`
	TotalTaxes         fixed.Point    `json:"total_taxes"`
	Trades             []common.Trade `json:"trades"`
}

func (s AccountState) clone() AccountState {
	trades := make([]common.Trade, len(s.Trades))
	copy(trades, s.Trades)
	s.Trades = trades
	return s
}

type Info struct {
	Symbol         string         `json:"symbol"`
	Step           int            `json:"step"`
	Price          fixed.Point    `json:"price"`
	PortfolioValue fixed.Point    `json:"portfolio_value"`
	Balance        fixed.Point    `json:"balance"`
	Position       fixed.Point    `json:"position"`
	TradeCount     int            `json:"trade_count"`
	TotalFees      fixed.Point    `json:"total_fees"`
	TotalTaxes     fixed.Point    `json:"total_taxes"`
	Exit           risk.Exit      `json:"exit,omitempty"`
	Trades         []common.Trade `json:"trades,omitempty"`
}
