package simulation

import (
	"fmt"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/tools/metrics"
	"github.com/peter-kozarec/equitygym/pkg/tools/risk"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
	"go.uber.org/zap"
)

const (
	environmentComponentName = "simulation.environment"
)

var priceNormaliser = fixed.Hundred

// Environment simulates one equity traded with whole shares against a cash balance.
// It is not safe for concurrent use.
type Environment struct {
	logger   *zap.Logger
	series   common.Series
	cfg      Configuration
	features FeatureProvider
	guard    *risk.Guard
	audit    *metrics.Audit

	state  AccountState
	status Status
}

func NewEnvironment(series common.Series, cfg Configuration, opts ...Option) (*Environment, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty price series for %q", ErrInvalidInput, series.Symbol)
	}
	for idx, bar := range series.Bars {
		if !bar.Close.IsPos() {
			return nil, fmt.Errorf("%w: %q close at step %d must be positive, got %s", ErrInvalidInput, series.Symbol, idx, bar.Close)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	e := &Environment{
		logger:   o.logger.With(zap.String("component", environmentComponentName), zap.String("symbol", series.Symbol)),
		series:   series,
		cfg:      cfg,
		features: o.features(series.Bars),
		guard:    risk.NewGuard(cfg.StopLossPct, cfg.TakeProfitPct),
		audit:    metrics.NewAudit(),
	}
	e.reset()
	return e, nil
}

func (e *Environment) Reset() Observation {
	e.reset()
	return e.observation()
}

func (e *Environment) reset() {
	initial := e.cfg.InitialBalance
	e.state = AccountState{
		Step:               0,
		Balance:            initial,
		Position:           fixed.Zero,
		EntryPrice:         fixed.Zero,
		MaxPortfolioValue:  initial,
		PrevPortfolioValue: initial,
		TotalFees:          fixed.Zero,
		TotalTaxes:         fixed.Zero,
	}
	e.status = StatusInitialized
	e.audit.Reset(initial)
}

// Step applies action at the current bar's close, runs the stop-loss/take-profit
// check and advances to the next bar. Done is reported on the call that consumes
// the last bar or leaves the balance at or below zero.
func (e *Environment) Step(action common.Action) (Observation, float64, bool, Info, error) {
	if !action.Valid() {
		return nil, 0, false, Info{}, fmt.Errorf("%w: %d", ErrInvalidAction, int(action))
	}
	if e.status == StatusTerminated {
		return nil, 0, true, Info{}, fmt.Errorf("%w: %q at step %d", ErrNotResettable, e.series.Symbol, e.state.Step)
	}

	s := &e.state
	price := e.series.Close(s.Step)
	tradeCount := len(s.Trades)

	switch action {
	case common.ActionBuy:
		e.buy(price)
	case common.ActionSell:
		e.sell(price, e.cfg.SellFraction, common.TradeReasonPolicy)
	default:
	}

	reward := e.reward(price)

	exit := risk.ExitNone
	if s.Position.IsPos() {
		exit = e.guard.Evaluate(s.EntryPrice, price)
	}
	switch exit {
	case risk.ExitStopLoss:
		e.liquidate(price, exit)
		reward += e.cfg.StopLossBonus
	case risk.ExitTakeProfit:
		e.liquidate(price, exit)
		reward += e.cfg.TakeProfitBonus
	default:
	}

	value := e.valueAt(price)
	s.MaxPortfolioValue = s.MaxPortfolioValue.Max(value)
	e.audit.Record(value)

	s.Step++

	done := s.Step >= e.series.Len() || !s.Balance.IsPos()
	if done {
		e.status = StatusTerminated
		e.logger.Debug("episode terminated",
			zap.Int("step", s.Step),
			zap.String("portfolio_value", value.String()),
			zap.String("balance", s.Balance.String()))
	} else {
		e.status = StatusRunning
	}

	info := Info{
		Symbol:         e.series.Symbol,
		Step:           s.Step,
		Price:          price,
		PortfolioValue: value,
		Balance:        s.Balance,
		Position:       s.Position,
		TradeCount:     len(s.Trades),
		TotalFees:      s.TotalFees,
		TotalTaxes:     s.TotalTaxes,
		Exit:           exit,
	}
	if len(s.Trades) > tradeCount {
		info.Trades = append([]common.Trade(nil), s.Trades[tradeCount:]...)
	}

	return e.observation(), reward, done, info, nil
}

func (e *Environment) buy(price fixed.Point) {
	s := &e.state
	if s.Position.Gte(e.cfg.MaxPosition) {
		return
	}

	headroom := e.cfg.MaxPosition.Sub(s.Position)
	shares := s.Balance.Mul(headroom).Mul(e.cfg.BuyFraction).Div(price).Int64()
	// a balance grown above the initial one must not push the position past its cap
	shares = min(shares, e.cfg.InitialBalance.Mul(headroom).Div(price).Int64())
	if shares <= 0 {
		return
	}

	cost := price.MulInt64(shares)
	fee := cost.Mul(e.cfg.TransactionFeeRate)
	total := cost.Add(fee)
	if total.Gt(s.Balance) {
		return
	}

	s.Balance = s.Balance.Sub(total)
	s.Position = s.Position.Add(cost.Div(e.cfg.InitialBalance))
	s.EntryPrice = price
	s.TotalFees = s.TotalFees.Add(fee)

	e.record(common.Trade{
		Side:      common.TradeSideBuy,
		Reason:    common.TradeReasonPolicy,
		Shares:    shares,
		Price:     price,
		CashDelta: total.Neg(),
		Fee:       fee,
		Tax:       fixed.Zero,
	})
}

// sell disposes of fraction of the position notional in whole shares.
func (e *Environment) sell(price, fraction fixed.Point, reason common.TradeReason) bool {
	s := &e.state
	if !s.Position.IsPos() {
		return false
	}

	notional := e.cfg.InitialBalance.Mul(s.Position)
	shares := notional.Mul(fraction).Div(price).Int64()
	if shares <= 0 {
		return false
	}

	proceeds := price.MulInt64(shares)
	fee := proceeds.Mul(e.cfg.TransactionFeeRate)
	tax := fixed.Zero
	if e.taxable(proceeds, notional, price) {
		tax = proceeds.Mul(e.cfg.TaxRate)
	}
	net := proceeds.Sub(fee).Sub(tax)

	s.Balance = s.Balance.Add(net)
	s.Position = s.Position.Sub(proceeds.Div(e.cfg.InitialBalance)).Max(fixed.Zero)
	s.TotalFees = s.TotalFees.Add(fee)
	s.TotalTaxes = s.TotalTaxes.Add(tax)

	e.record(common.Trade{
		Side:      common.TradeSideSell,
		Reason:    reason,
		Shares:    shares,
		Price:     price,
		CashDelta: net,
		Fee:       fee,
		Tax:       tax,
	})

	if s.Position.Lt(e.cfg.FlatThreshold) {
		e.flatten()
	}
	return true
}

// liquidate sells the whole notional and leaves the account flat, dropping the
// sub-share residue the rounding leaves behind. A position too small for a single
// share is kept.
func (e *Environment) liquidate(price fixed.Point, exit risk.Exit) {
	e.logger.Debug("forced exit",
		zap.String("exit", string(exit)),
		zap.Int("step", e.state.Step),
		zap.String("entry_price", e.state.EntryPrice.String()),
		zap.String("price", price.String()))

	if e.sell(price, fixed.One, exit.TradeReason()) {
		e.flatten()
	}
}

func (e *Environment) flatten() {
	e.state.Position = fixed.Zero
	e.state.EntryPrice = fixed.Zero
}

func (e *Environment) taxable(proceeds, notional, price fixed.Point) bool {
	switch e.cfg.TaxTrigger {
	case TaxTriggerCostBasis:
		return price.Gt(e.state.EntryPrice)
	default:
		return proceeds.Gt(notional)
	}
}

func (e *Environment) record(trade common.Trade) {
	trade.Symbol = e.series.Symbol
	trade.Step = e.state.Step
	e.state.Trades = append(e.state.Trades, trade)

	e.logger.Debug("trade",
		zap.String("side", string(trade.Side)),
		zap.String("reason", string(trade.Reason)),
		zap.Int("step", trade.Step),
		zap.Int64("shares", trade.Shares),
		zap.String("price", trade.Price.String()),
		zap.String("cash_delta", trade.CashDelta.String()))
}

func (e *Environment) reward(price fixed.Point) float64 {
	s := &e.state
	value := e.valueAt(price)

	var reward float64
	if prev := s.PrevPortfolioValue; prev.IsPos() {
		reward = value.Sub(prev).Div(prev).Float() * e.cfg.RewardScale
	}
	if s.Position.Gt(e.cfg.HoldingBandLow) && s.Position.Lt(e.cfg.HoldingBandHigh) {
		reward += e.cfg.HoldingBonus
	}
	reward -= s.TotalFees.Float() * e.cfg.FeePenaltyRate

	s.PrevPortfolioValue = value
	return reward
}

// valueAt reprices the whole position notional by price/entry.
func (e *Environment) valueAt(price fixed.Point) fixed.Point {
	s := &e.state
	if !s.EntryPrice.IsPos() {
		return s.Balance
	}
	return s.Balance.Add(e.cfg.InitialBalance.Mul(s.Position).Mul(price).Div(s.EntryPrice))
}

func (e *Environment) observation() Observation {
	obs := make(Observation, ObservationSize)
	s := &e.state
	if s.Step >= e.series.Len() {
		return obs
	}

	snapshot := e.features.At(s.Step)
	obs[0] = s.Balance.Div(e.cfg.InitialBalance).Float()
	obs[1] = s.Position.Float()
	obs[2] = e.series.Close(s.Step).Div(priceNormaliser).Float()
	obs[3] = snapshot.Rsi / 100
	obs[4] = snapshot.Macd
	obs[5] = snapshot.BollingerPosition
	obs[6] = snapshot.VolumeRatio
	return obs
}

// PortfolioValue marks the account at the current bar, or the last one once the series is exhausted.
func (e *Environment) PortfolioValue() fixed.Point {
	return e.valueAt(e.series.Close(min(e.state.Step, e.series.Len()-1)))
}

func (e *Environment) Statistics() metrics.Statistics {
	s := &e.state
	totalReturn := metrics.TotalReturn(e.cfg.InitialBalance, e.PortfolioValue())

	return metrics.Statistics{
		TotalReturnPct: totalReturn.Float(),
		TotalTrades:    len(s.Trades),
		WinRatePct:     metrics.WinRate(s.Trades),
		MaxDrawdownPct: e.audit.MaxDrawdown().Float(),
		SharpeRatio:    metrics.Sharpe(totalReturn.Float()/100, s.Step, e.cfg.TradingDaysPerYear, e.cfg.RiskFreeRate, e.volatility()),
		TotalFees:      s.TotalFees,
		TotalTaxes:     s.TotalTaxes,
	}
}

func (e *Environment) volatility() float64 {
	if e.cfg.Volatility == VolatilityRealized {
		return e.audit.RealizedVolatility(e.cfg.TradingDaysPerYear).Float()
	}
	return e.cfg.AssumedVolatility
}

func (e *Environment) State() AccountState { return e.state.clone() }
func (e *Environment) Status() Status      { return e.status }
func (e *Environment) Symbol() string      { return e.series.Symbol }
func (e *Environment) Len() int            { return e.series.Len() }

func (e *Environment) Configuration() Configuration { return e.cfg }

func (e *Environment) Trades() []common.Trade {
	return e.state.clone().Trades
}

// ValuePath is the audited portfolio value at reset followed by one value per step.
func (e *Environment) ValuePath() []fixed.Point {
	return e.audit.Values()
}
