package simulation

import (
	"fmt"

	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

type TaxTrigger int

const (
	// TaxTriggerNotional taxes a sell whose proceeds exceed the pre-sell position notional.
	TaxTriggerNotional TaxTrigger = iota
	// TaxTriggerCostBasis taxes a sell executed above the entry price.
	TaxTriggerCostBasis
)

type VolatilityMode int

const (
	VolatilityFixed VolatilityMode = iota
	VolatilityRealized
)

type Configuration struct {
	InitialBalance     fixed.Point
	TransactionFeeRate fixed.Point
	TaxRate            fixed.Point
	MaxPosition        fixed.Point
	StopLossPct        fixed.Point
	TakeProfitPct      fixed.Point

	// Order sizing
	BuyFraction   fixed.Point
	SellFraction  fixed.Point
	FlatThreshold fixed.Point
	TaxTrigger    TaxTrigger

	// Reward shaping
	RewardScale     float64
	HoldingBonus    float64
	HoldingBandLow  fixed.Point
	HoldingBandHigh fixed.Point
	FeePenaltyRate  float64
	StopLossBonus   float64
	TakeProfitBonus float64

	// Statistics
	Volatility         VolatilityMode
	AssumedVolatility  float64
	RiskFreeRate       float64
	TradingDaysPerYear int
}

func DefaultConfiguration() Configuration {
	return Configuration{
		InitialBalance:     fixed.FromInt64(100000, 0),
		TransactionFeeRate: fixed.FromInt64(3, 4),
		TaxRate:            fixed.FromInt64(1, 3),
		MaxPosition:        fixed.FromInt64(95, 2),
		StopLossPct:        fixed.FromInt64(10, 2),
		TakeProfitPct:      fixed.FromInt64(20, 2),

		BuyFraction:   fixed.PointFive,
		SellFraction:  fixed.PointFive,
		FlatThreshold: fixed.FromInt64(1, 2),
		TaxTrigger:    TaxTriggerNotional,

		RewardScale:     1000,
		HoldingBonus:    1,
		HoldingBandLow:  fixed.FromInt64(1, 1),
		HoldingBandHigh: fixed.FromInt64(8, 1),
		FeePenaltyRate:  0.01,
		StopLossBonus:   50,
		TakeProfitBonus: 100,

		Volatility:         VolatilityFixed,
		AssumedVolatility:  0.15,
		RiskFreeRate:       0.03,
		TradingDaysPerYear: 252,
	}
}

// WithInitialBalance returns a copy funded with balance.
func (c Configuration) WithInitialBalance(balance fixed.Point) Configuration {
	c.InitialBalance = balance
	return c
}

func (c Configuration) Validate() error {
	if !c.InitialBalance.IsPos() {
		return fmt.Errorf("%w: initial balance must be positive, got %s", ErrInvalidInput, c.InitialBalance)
	}
	if err := checkRate("transaction fee rate", c.TransactionFeeRate); err != nil {
		return err
	}
	if err := checkRate("tax rate", c.TaxRate); err != nil {
		return err
	}
	if err := checkFraction("max position", c.MaxPosition); err != nil {
		return err
	}
	if err := checkFraction("buy fraction", c.BuyFraction); err != nil {
		return err
	}
	if err := checkFraction("sell fraction", c.SellFraction); err != nil {
		return err
	}
	if !c.StopLossPct.IsPos() {
		return fmt.Errorf("%w: stop loss must be positive, got %s", ErrInvalidInput, c.StopLossPct)
	}
	if !c.TakeProfitPct.IsPos() {
		return fmt.Errorf("%w: take profit must be positive, got %s", ErrInvalidInput, c.TakeProfitPct)
	}
	if c.FlatThreshold.IsNeg() {
		return fmt.Errorf("%w: flat threshold must not be negative, got %s", ErrInvalidInput, c.FlatThreshold)
	}
	if c.HoldingBandLow.Gt(c.HoldingBandHigh) {
		return fmt.Errorf("%w: holding band [%s, %s] is inverted", ErrInvalidInput, c.HoldingBandLow, c.HoldingBandHigh)
	}
	if c.Volatility == VolatilityFixed && c.AssumedVolatility <= 0 {
		return fmt.Errorf("%w: assumed volatility must be positive, got %v", ErrInvalidInput, c.AssumedVolatility)
	}
	if c.TradingDaysPerYear <= 0 {
		return fmt.Errorf("%w: trading days per year must be positive, got %d", ErrInvalidInput, c.TradingDaysPerYear)
	}
	return nil
}

func checkRate(name string, rate fixed.Point) error {
	if rate.IsNeg() || rate.Gte(fixed.One) {
		return fmt.Errorf("%w: %s must be in [0, 1), got %s", ErrInvalidInput, name, rate)
	}
	return nil
}

func checkFraction(name string, fraction fixed.Point) error {
	if !fraction.IsPos() || fraction.Gt(fixed.One) {
		return fmt.Errorf("%w: %s must be in (0, 1], got %s", ErrInvalidInput, name, fraction)
	}
	return nil
}
