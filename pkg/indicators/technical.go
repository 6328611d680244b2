package indicators

import (
	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

const (
	RsiWindow         = 14
	MacdFast          = 12
	MacdSlow          = 26
	MacdSignal        = 9
	BollingerWindow   = 20
	VolumeRatioWindow = 20
)

var (
	bollingerWidth   = fixed.Two
	volumeRatioCap   = fixed.Five
	macdNormaliser   = fixed.Hundred
	neutralRsi       = fixed.FromInt64(50, 0)
	neutralBollinger = fixed.PointFive
)

// Snapshot is the indicator part of an observation for one step.
type Snapshot struct {
	Rsi               float64 `json:"rsi"`
	Macd              float64 `json:"macd"`
	BollingerPosition float64 `json:"bb_position"`
	VolumeRatio       float64 `json:"volume_ratio"`
}

func NeutralSnapshot() Snapshot {
	return Snapshot{
		Rsi:               neutralRsi.Float(),
		Macd:              0,
		BollingerPosition: neutralBollinger.Float(),
		VolumeRatio:       1,
	}
}

// Technical holds one precomputed snapshot per bar. Each snapshot is built from
// the bars strictly before its step; bollinger position and volume ratio then
// compare the bar at the step against that history.
type Technical struct {
	snapshots []Snapshot
}

func NewTechnical(bars []common.Bar) *Technical {
	rsi := NewRsi(RsiWindow)
	macd := NewMacd(MacdFast, MacdSlow, MacdSignal)
	bollinger := NewBollinger(BollingerWindow, bollingerWidth)
	volume := NewVolumeRatio(VolumeRatioWindow, volumeRatioCap)

	snapshots := make([]Snapshot, len(bars))
	for idx, bar := range bars {
		snapshot := NeutralSnapshot()

		if v, err := rsi.Value(); err == nil {
			snapshot.Rsi = v.Float()
		}
		if v, err := macd.Histogram(); err == nil {
			snapshot.Macd = v.Div(macdNormaliser).Float()
		}
		if v, err := bollinger.Position(bar.Close); err == nil {
			snapshot.BollingerPosition = v.Float()
		}
		if v, err := volume.Ratio(bar.Volume); err == nil {
			snapshot.VolumeRatio = v.Float()
		}
		snapshots[idx] = snapshot

		rsi.AddPoint(bar.Close)
		macd.AddPoint(bar.Close)
		bollinger.AddPoint(bar.Close)
		volume.AddPoint(bar.Volume)
	}

	return &Technical{snapshots: snapshots}
}

// At never fails, steps outside the series read as neutral.
func (t *Technical) At(step int) Snapshot {
	if step < 0 || step >= len(t.snapshots) {
		return NeutralSnapshot()
	}
	return t.snapshots[step]
}

func (t *Technical) Len() int {
	return len(t.snapshots)
}
