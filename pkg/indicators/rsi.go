package indicators

import (
	"errors"

	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

var ErrNotReady = errors.New("not enough data")

// Rsi is the simple-average relative strength index over the last windowSize closes.
type Rsi struct {
	windowSize int
	data       *fixed.RingBuffer
}

func NewRsi(windowSize int) *Rsi {
	return &Rsi{
		windowSize: windowSize,
		data:       fixed.NewRingBuffer(windowSize),
	}
}

func (r *Rsi) AddPoint(p fixed.Point) {
	r.data.Add(p)
}

// Value returns the index in [0, 100]. A window without losses reads 100.
func (r *Rsi) Value() (fixed.Point, error) {
	if !r.IsReady() {
		return fixed.Point{}, ErrNotReady
	}

	gains, losses := fixed.Zero, fixed.Zero
	closes := r.data.ToSliceFifo()
	for i := 1; i < len(closes); i++ {
		delta := closes[i].Sub(closes[i-1])
		if delta.IsPos() {
			gains = gains.Add(delta)
		} else if delta.IsNeg() {
			losses = losses.Sub(delta)
		}
	}

	if losses.IsZero() {
		return fixed.Hundred, nil
	}

	rs := gains.Div(losses)
	return fixed.Hundred.Sub(fixed.Hundred.Div(fixed.One.Add(rs))), nil
}

func (r *Rsi) IsReady() bool {
	return r.data.IsFull()
}

func (r *Rsi) Reset() {
	r.data.Clear()
}
