package indicators

import (
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

type Macd struct {
	slowSize int

	fast   *Ema
	slow   *Ema
	signal *Ema
}

func NewMacd(fastSize, slowSize, signalSize int) *Macd {
	return &Macd{
		slowSize: slowSize,
		fast:     NewEma(fastSize),
		slow:     NewEma(slowSize),
		signal:   NewEma(signalSize),
	}
}

func (m *Macd) AddPoint(p fixed.Point) {
	m.fast.AddPoint(p)
	m.slow.AddPoint(p)
	m.signal.AddPoint(m.Line())
}

func (m *Macd) Line() fixed.Point {
	return m.fast.Value().Sub(m.slow.Value())
}

func (m *Macd) Signal() fixed.Point {
	return m.signal.Value()
}

// Histogram is the distance between the macd line and its signal line.
func (m *Macd) Histogram() (fixed.Point, error) {
	if !m.IsReady() {
		return fixed.Point{}, ErrNotReady
	}
	return m.Line().Sub(m.Signal()), nil
}

func (m *Macd) IsReady() bool {
	return m.slow.Count() >= m.slowSize
}

func (m *Macd) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
}
