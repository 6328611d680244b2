package indicators

import (
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

type VolumeRatio struct {
	windowSize int
	ceiling    fixed.Point
	data       *fixed.RingBuffer
}

func NewVolumeRatio(windowSize int, ceiling fixed.Point) *VolumeRatio {
	return &VolumeRatio{
		windowSize: windowSize,
		ceiling:    ceiling,
		data:       fixed.NewRingBuffer(windowSize),
	}
}

func (v *VolumeRatio) AddPoint(volume fixed.Point) {
	v.data.Add(volume)
}

// Ratio compares volume with the window average, capped at the ceiling.
// An all-zero window reads 1.
func (v *VolumeRatio) Ratio(volume fixed.Point) (fixed.Point, error) {
	if !v.IsReady() {
		return fixed.Point{}, ErrNotReady
	}

	avg := v.data.Mean()
	if !avg.IsPos() {
		return fixed.One, nil
	}
	return volume.Div(avg).Min(v.ceiling), nil
}

func (v *VolumeRatio) IsReady() bool {
	return v.data.IsFull()
}

func (v *VolumeRatio) Reset() {
	v.data.Clear()
}
