package indicators

import (
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

type Bollinger struct {
	windowSize int
	width      fixed.Point
	data       *fixed.RingBuffer
}

func NewBollinger(windowSize int, width fixed.Point) *Bollinger {
	return &Bollinger{
		windowSize: windowSize,
		width:      width,
		data:       fixed.NewRingBuffer(windowSize),
	}
}

func (b *Bollinger) AddPoint(p fixed.Point) {
	b.data.Add(p)
}

func (b *Bollinger) Bands() (lower, middle, upper fixed.Point, err error) {
	if !b.IsReady() {
		return fixed.Point{}, fixed.Point{}, fixed.Point{}, ErrNotReady
	}
	middle = b.data.Mean()
	offset := b.data.SampleStdDev().Mul(b.width)
	return middle.Sub(offset), middle, middle.Add(offset), nil
}

// Position maps price onto the band, 0 at the lower band and 1 at the upper one.
// Prices outside the band are clamped, a collapsed band reads 0.5.
func (b *Bollinger) Position(price fixed.Point) (fixed.Point, error) {
	lower, _, upper, err := b.Bands()
	if err != nil {
		return fixed.Point{}, err
	}

	bandWidth := upper.Sub(lower)
	if bandWidth.IsZero() {
		return fixed.PointFive, nil
	}
	return fixed.Clamp(price.Sub(lower).Div(bandWidth), fixed.Zero, fixed.One), nil
}

func (b *Bollinger) IsReady() bool {
	return b.data.IsFull()
}

func (b *Bollinger) Reset() {
	b.data.Clear()
}
