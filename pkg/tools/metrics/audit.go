package metrics

import (
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

// Audit records the portfolio value path of one episode, starting with the
// value at reset and followed by one entry per completed step.
type Audit struct {
	values []fixed.Point
}

func NewAudit() *Audit {
	return &Audit{}
}

func (a *Audit) Reset(initial fixed.Point) {
	a.values = append(a.values[:0], initial)
}

func (a *Audit) Record(value fixed.Point) {
	a.values = append(a.values, value)
}

func (a *Audit) Len() int {
	return len(a.values)
}

func (a *Audit) Values() []fixed.Point {
	values := make([]fixed.Point, len(a.values))
	copy(values, a.values)
	return values
}

func (a *Audit) Last() fixed.Point {
	if len(a.values) == 0 {
		return fixed.Zero
	}
	return a.values[len(a.values)-1]
}

// MaxDrawdown is the deepest peak-to-trough move in percent. It is zero or negative.
func (a *Audit) MaxDrawdown() fixed.Point {
	if len(a.values) == 0 {
		return fixed.Zero
	}

	peak := a.values[0]
	deepest := fixed.Zero
	for _, value := range a.values {
		peak = peak.Max(value)
		if !peak.IsPos() {
			continue
		}
		drawdown := value.Sub(peak).Div(peak)
		deepest = deepest.Min(drawdown)
	}
	return deepest.MulInt64(100)
}

// Returns are simple per-step returns of the value path.
func (a *Audit) Returns() []fixed.Point {
	if len(a.values) < 2 {
		return nil
	}

	returns := make([]fixed.Point, 0, len(a.values)-1)
	prev := a.values[0]
	for _, value := range a.values[1:] {
		if prev.IsPos() {
			returns = append(returns, value.Div(prev).Sub(fixed.One))
		} else {
			returns = append(returns, fixed.Zero)
		}
		prev = value
	}
	return returns
}

// RealizedVolatility annualises the population deviation of per-step returns.
func (a *Audit) RealizedVolatility(periodsPerYear int) fixed.Point {
	returns := a.Returns()
	if len(returns) < 2 {
		return fixed.Zero
	}
	return fixed.StdDev(returns, fixed.Mean(returns)).Mul(fixed.FromInt(periodsPerYear, 0).Sqrt())
}
