package policy

import (
	"github.com/peter-kozarec/equitygym/pkg/common"
)

const (
	featurePosition = 1
	featureRsi      = 3
)

// RsiReversion buys an oversold symbol and sells an overbought one. The bounds
// are on the normalised RSI feature, so 0.3 means RSI 30.
type RsiReversion struct {
	lower float64
	upper float64
}

func NewRsiReversion(lower, upper float64) *RsiReversion {
	return &RsiReversion{lower: lower, upper: upper}
}

func DefaultRsiReversion() *RsiReversion {
	return NewRsiReversion(0.3, 0.7)
}

func (r *RsiReversion) Decide(_ string, features []float64) common.Action {
	if len(features) <= featureRsi {
		return common.ActionHold
	}

	rsi := features[featureRsi]
	switch {
	case rsi < r.lower:
		return common.ActionBuy
	case rsi > r.upper && features[featurePosition] > 0:
		return common.ActionSell
	default:
		return common.ActionHold
	}
}
