package simulation

import (
	"fmt"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/tools/metrics"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
	"go.uber.org/zap"
)

const (
	portfolioComponentName = "simulation.portfolio"
)

type PortfolioInfo struct {
	TotalValue   fixed.Point    `json:"total_value"`
	TotalBalance fixed.Point    `json:"total_balance"`
	TotalTrades  int            `json:"total_trades"`
	TotalFees    fixed.Point    `json:"total_fees"`
	TotalTaxes   fixed.Point    `json:"total_taxes"`
	Assets       []Info         `json:"assets"`
	Trades       []common.Trade `json:"trades,omitempty"`
}

type AssetStatistics struct {
	Symbol string `json:"symbol"`
	metrics.Statistics
}

type PortfolioStatistics struct {
	Total  metrics.Statistics `json:"total"`
	Assets []AssetStatistics  `json:"assets"`
}

// Portfolio steps one Environment per symbol in lock-step. Children share
// nothing; each is funded with an equal slice of the initial balance.
type Portfolio struct {
	logger  *zap.Logger
	cfg     Configuration
	symbols []string
	envs    []*Environment
	audit   *metrics.Audit

	lastObs  []Observation
	lastInfo []Info
}

func NewPortfolio(series []common.Series, cfg Configuration, opts ...Option) (*Portfolio, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: portfolio needs at least one symbol", ErrInvalidInput)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(series))
	for _, s := range series {
		if _, ok := seen[s.Symbol]; ok {
			return nil, fmt.Errorf("%w: duplicate symbol %q", ErrInvalidInput, s.Symbol)
		}
		seen[s.Symbol] = struct{}{}
	}

	o := buildOptions(opts)
	childCfg := cfg.WithInitialBalance(cfg.InitialBalance.DivInt(len(series)))

	p := &Portfolio{
		logger:   o.logger.With(zap.String("component", portfolioComponentName)),
		cfg:      cfg,
		symbols:  make([]string, 0, len(series)),
		envs:     make([]*Environment, 0, len(series)),
		audit:    metrics.NewAudit(),
		lastObs:  make([]Observation, len(series)),
		lastInfo: make([]Info, len(series)),
	}
	for _, s := range series {
		env, err := NewEnvironment(s, childCfg, opts...)
		if err != nil {
			return nil, fmt.Errorf("symbol %q: %w", s.Symbol, err)
		}
		p.symbols = append(p.symbols, s.Symbol)
		p.envs = append(p.envs, env)
	}
	p.reset()
	return p, nil
}

func (p *Portfolio) Reset() Observation {
	return p.reset()
}

func (p *Portfolio) reset() Observation {
	for idx, env := range p.envs {
		p.lastObs[idx] = env.Reset()
		p.lastInfo[idx] = Info{
			Symbol:         env.Symbol(),
			PortfolioValue: env.cfg.InitialBalance,
			Balance:        env.cfg.InitialBalance,
			Position:       fixed.Zero,
			TotalFees:      fixed.Zero,
			TotalTaxes:     fixed.Zero,
		}
	}
	p.audit.Reset(p.cfg.InitialBalance)
	return p.concat()
}

// Step validates every action before any child moves, so a rejected call leaves
// all children untouched. Children that terminated early hold their last state.
func (p *Portfolio) Step(actions []common.Action) (Observation, float64, bool, PortfolioInfo, error) {
	if len(actions) != len(p.envs) {
		return nil, 0, false, PortfolioInfo{}, fmt.Errorf("%w: got %d actions for %d symbols", ErrArityMismatch, len(actions), len(p.envs))
	}
	for idx, action := range actions {
		if !action.Valid() {
			return nil, 0, false, PortfolioInfo{}, fmt.Errorf("%w: %d for %q", ErrInvalidAction, int(action), p.symbols[idx])
		}
	}
	if p.Done() {
		return nil, 0, true, PortfolioInfo{}, fmt.Errorf("%w: all %d symbols terminated", ErrNotResettable, len(p.envs))
	}

	var total float64
	done := true
	for idx, env := range p.envs {
		if env.Status() == StatusTerminated {
			// shorter series finish first; their ErrNotResettable is not raised
			// while other symbols still trade
			p.lastInfo[idx].Trades = nil
			continue
		}

		obs, reward, childDone, info, err := env.Step(actions[idx])
		if err != nil {
			return nil, 0, false, PortfolioInfo{}, fmt.Errorf("symbol %q: %w", p.symbols[idx], err)
		}
		p.lastObs[idx] = obs
		p.lastInfo[idx] = info
		total += reward
		done = done && childDone
	}

	info := p.aggregate()
	p.audit.Record(info.TotalValue)
	if done {
		p.logger.Debug("portfolio terminated", zap.String("total_value", info.TotalValue.String()))
	}

	return p.concat(), total, done, info, nil
}

func (p *Portfolio) Done() bool {
	for _, env := range p.envs {
		if env.Status() != StatusTerminated {
			return false
		}
	}
	return true
}

func (p *Portfolio) aggregate() PortfolioInfo {
	info := PortfolioInfo{
		TotalValue:   fixed.Zero,
		TotalBalance: fixed.Zero,
		TotalFees:    fixed.Zero,
		TotalTaxes:   fixed.Zero,
		Assets:       make([]Info, len(p.lastInfo)),
	}
	copy(info.Assets, p.lastInfo)

	for _, asset := range p.lastInfo {
		info.TotalValue = info.TotalValue.Add(asset.PortfolioValue)
		info.TotalBalance = info.TotalBalance.Add(asset.Balance)
		info.TotalTrades += asset.TradeCount
		info.TotalFees = info.TotalFees.Add(asset.TotalFees)
		info.TotalTaxes = info.TotalTaxes.Add(asset.TotalTaxes)
		info.Trades = append(info.Trades, asset.Trades...)
	}
	return info
}

func (p *Portfolio) concat() Observation {
	obs := make(Observation, 0, len(p.envs)*ObservationSize)
	for _, o := range p.lastObs {
		obs = append(obs, o...)
	}
	return obs
}

// Statistics reports every symbol and the combined account. The combined win
// rate pools wins and buys across symbols instead of pairing trades between them.
func (p *Portfolio) Statistics() PortfolioStatistics {
	result := PortfolioStatistics{
		Assets: make([]AssetStatistics, 0, len(p.envs)),
	}

	value, fees, taxes := fixed.Zero, fixed.Zero, fixed.Zero
	var wins, buys, trades, steps int
	for _, env := range p.envs {
		result.Assets = append(result.Assets, AssetStatistics{Symbol: env.Symbol(), Statistics: env.Statistics()})

		state := &env.state
		w, b := metrics.WinCount(state.Trades)
		wins += w
		buys += b
		trades += len(state.Trades)
		steps = max(steps, state.Step)
		value = value.Add(env.PortfolioValue())
		fees = fees.Add(state.TotalFees)
		taxes = taxes.Add(state.TotalTaxes)
	}

	totalReturn := metrics.TotalReturn(p.cfg.InitialBalance, value)
	volatility := p.cfg.AssumedVolatility
	if p.cfg.Volatility == VolatilityRealized {
		volatility = p.audit.RealizedVolatility(p.cfg.TradingDaysPerYear).Float()
	}

	result.Total = metrics.Statistics{
		TotalReturnPct: totalReturn.Float(),
		TotalTrades:    trades,
		WinRatePct:     metrics.WinRatio(wins, buys),
		MaxDrawdownPct: p.audit.MaxDrawdown().Float(),
		SharpeRatio:    metrics.Sharpe(totalReturn.Float()/100, steps, p.cfg.TradingDaysPerYear, p.cfg.RiskFreeRate, volatility),
		TotalFees:      fees,
		TotalTaxes:     taxes,
	}
	return result
}

func (p *Portfolio) Symbols() []string {
	return append([]string(nil), p.symbols...)
}

func (p *Portfolio) Len() int { return len(p.envs) }

func (p *Portfolio) Environment(symbol string) (*Environment, bool) {
	for idx, s := range p.symbols {
		if s == symbol {
			return p.envs[idx], true
		}
	}
	return nil, false
}

func (p *Portfolio) Configuration() Configuration { return p.cfg }
