package simulation

import (
	"fmt"

	"github.com/peter-kozarec/equitygym/pkg/common"
)

// Gym exposes a Portfolio through the reset/step calling convention used by
// reinforcement learning trainers. Actions are plain integers, one per symbol.
type Gym struct {
	portfolio *Portfolio
}

func NewGym(portfolio *Portfolio) *Gym {
	return &Gym{portfolio: portfolio}
}

func NewSingleAssetGym(series common.Series, cfg Configuration, opts ...Option) (*Gym, error) {
	portfolio, err := NewPortfolio([]common.Series{series}, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewGym(portfolio), nil
}

func (g *Gym) Reset() ([]float64, map[string]any) {
	obs := g.portfolio.Reset()
	return obs, g.infoMap(g.portfolio.aggregate())
}

// Step never truncates; an episode only ends by termination.
func (g *Gym) Step(actions ...int) ([]float64, float64, bool, bool, map[string]any, error) {
	decoded := make([]common.Action, len(actions))
	for idx, a := range actions {
		decoded[idx] = common.Action(a)
	}

	obs, reward, done, info, err := g.portfolio.Step(decoded)
	if err != nil {
		return nil, 0, done, false, nil, fmt.Errorf("gym step: %w", err)
	}
	return obs, reward, done, false, g.infoMap(info), nil
}

func (g *Gym) ActionSpace() []int {
	space := make([]int, g.portfolio.Len())
	for idx := range space {
		space[idx] = common.ActionCount
	}
	return space
}

func (g *Gym) ObservationSize() int {
	return g.portfolio.Len() * ObservationSize
}

func (g *Gym) Portfolio() *Portfolio { return g.portfolio }

func (g *Gym) infoMap(info PortfolioInfo) map[string]any {
	m := map[string]any{
		"total_value":   info.TotalValue.Float(),
		"total_balance": info.TotalBalance.Float(),
		"total_trades":  info.TotalTrades,
		"total_fees":    info.TotalFees.Float(),
		"total_taxes":   info.TotalTaxes.Float(),
	}

	assets := make(map[string]any, len(info.Assets))
	for _, asset := range info.Assets {
		assets[asset.Symbol] = assetMap(asset)
	}
	m["assets"] = assets

	// single asset trainers read the flat keys
	if len(info.Assets) == 1 {
		for k, v := range assetMap(info.Assets[0]) {
			m[k] = v
		}
	}
	return m
}

func assetMap(info Info) map[string]any {
	m := map[string]any{
		"step":            info.Step,
		"price":           info.Price.Float(),
		"portfolio_value": info.PortfolioValue.Float(),
		"balance":         info.Balance.Float(),
		"position":        info.Position.Float(),
		"trades":          info.TradeCount,
	}
	if info.Exit != "" {
		m["exit"] = string(info.Exit)
	}
	return m
}
