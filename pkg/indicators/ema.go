package indicators

import "github.com/peter-kozarec/equitygym/pkg/utility/fixed"

// Ema is an exponentially weighted mean with alpha = 2/(span+1). Weights are
// normalised over the observed history, so early values are not biased towards zero.
type Ema struct {
	decay fixed.Point
	num   fixed.Point
	den   fixed.Point
	count int
}

func NewEma(span int) *Ema {
	if span <= 0 {
		panic("span must be positive")
	}
	alpha := fixed.Two.DivInt(span + 1)
	return &Ema{
		decay: fixed.One.Sub(alpha),
		num:   fixed.Zero,
		den:   fixed.Zero,
	}
}

func (e *Ema) AddPoint(p fixed.Point) {
	e.num = e.num.Mul(e.decay).Add(p)
	e.den = e.den.Mul(e.decay).Add(fixed.One)
	e.count++
}

func (e *Ema) Value() fixed.Point {
	if e.count == 0 {
		return fixed.Zero
	}
	return e.num.Div(e.den)
}

func (e *Ema) Count() int { return e.count }

func (e *Ema) Reset() {
	e.num = fixed.Zero
	e.den = fixed.Zero
	e.count = 0
}
