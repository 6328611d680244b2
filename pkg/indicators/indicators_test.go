package indicators

import (
	"testing"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func points(values ...float64) []fixed.Point {
	result := make([]fixed.Point, len(values))
	for i, v := range values {
		result[i] = fixed.FromFloat64(v)
	}
	return result
}

func TestRsi_Value(t *testing.T) {
	tests := []struct {
		name   string
		closes []fixed.Point
		want   float64
	}{
		{"mixed", points(10, 12, 11, 13), 80},
		{"flat reads as no losses", points(5, 5, 5, 5), 100},
		{"only losses", points(13, 12, 11, 10), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi := NewRsi(4)
			for _, p := range tt.closes {
				rsi.AddPoint(p)
			}
			v, err := rsi.Value()
			require.NoError(t, err)
			assert.InDelta(t, tt.want, v.Float(), 1e-9)
		})
	}
}

func TestRsi_NotReady(t *testing.T) {
	rsi := NewRsi(14)
	rsi.AddPoint(fixed.One)

	_, err := rsi.Value()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestEma_AdjustedWeights(t *testing.T) {
	ema := NewEma(3)
	assert.True(t, ema.Value().IsZero())

	ema.AddPoint(fixed.One)
	assert.InDelta(t, 1.0, ema.Value().Float(), 1e-12)

	ema.AddPoint(fixed.Two)
	assert.InDelta(t, 2.5/1.5, ema.Value().Float(), 1e-12)

	ema.Reset()
	assert.Equal(t, 0, ema.Count())
}

func TestMacd_FlatSeries(t *testing.T) {
	macd := NewMacd(3, 5, 2)
	for i := 0; i < 4; i++ {
		macd.AddPoint(fixed.Hundred)
	}
	_, err := macd.Histogram()
	assert.ErrorIs(t, err, ErrNotReady)

	macd.AddPoint(fixed.Hundred)
	h, err := macd.Histogram()
	require.NoError(t, err)
	assert.True(t, h.IsZero())
}

func TestMacd_RisingSeriesIsPositive(t *testing.T) {
	macd := NewMacd(3, 6, 3)
	for i := 1; i <= 20; i++ {
		macd.AddPoint(fixed.FromInt(i*i, 0))
	}
	assert.True(t, macd.Line().IsPos())

	h, err := macd.Histogram()
	require.NoError(t, err)
	assert.True(t, h.IsPos())
}

func TestBollinger_Position(t *testing.T) {
	bb := NewBollinger(4, fixed.Two)
	for _, p := range points(1, 2, 3, 4) {
		bb.AddPoint(p)
	}

	lower, middle, upper, err := bb.Bands()
	require.NoError(t, err)
	assert.InDelta(t, 2.5, middle.Float(), 1e-12)
	assert.InDelta(t, -0.0819889, lower.Float(), 1e-6)
	assert.InDelta(t, 5.0819889, upper.Float(), 1e-6)

	tests := []struct {
		price float64
		want  float64
	}{
		{2.5, 0.5},
		{10, 1},
		{-5, 0},
	}
	for _, tt := range tests {
		pos, err := bb.Position(fixed.FromFloat64(tt.price))
		require.NoError(t, err)
		assert.InDelta(t, tt.want, pos.Float(), 1e-9)
	}
}

func TestBollinger_CollapsedBand(t *testing.T) {
	bb := NewBollinger(3, fixed.Two)
	for i := 0; i < 3; i++ {
		bb.AddPoint(fixed.Ten)
	}
	pos, err := bb.Position(fixed.Hundred)
	require.NoError(t, err)
	assert.Equal(t, "0.5", pos.String())
}

func TestVolumeRatio_Ratio(t *testing.T) {
	vr := NewVolumeRatio(2, fixed.Five)
	_, err := vr.Ratio(fixed.One)
	assert.ErrorIs(t, err, ErrNotReady)

	vr.AddPoint(fixed.FromInt64(100, 0))
	vr.AddPoint(fixed.FromInt64(300, 0))

	r, err := vr.Ratio(fixed.FromInt64(400, 0))
	require.NoError(t, err)
	assert.Equal(t, "2", r.String())

	r, err = vr.Ratio(fixed.FromInt64(5000, 0))
	require.NoError(t, err)
	assert.Equal(t, "5", r.String())

	vr.Reset()
	vr.AddPoint(fixed.Zero)
	vr.AddPoint(fixed.Zero)
	r, err = vr.Ratio(fixed.Ten)
	require.NoError(t, err)
	assert.Equal(t, "1", r.String())
}

func flatBars(n int, price, volume int64) []common.Bar {
	bars := make([]common.Bar, n)
	for i := range bars {
		p := fixed.FromInt64(price, 0)
		bars[i] = common.Bar{Open: p, High: p, Low: p, Close: p, Volume: fixed.FromInt64(volume, 0)}
	}
	return bars
}

func TestTechnical_NeutralDefaults(t *testing.T) {
	technical := NewTechnical(flatBars(30, 100, 1000))
	neutral := NeutralSnapshot()

	assert.Equal(t, 30, technical.Len())
	assert.Equal(t, neutral, technical.At(0))
	assert.Equal(t, neutral, technical.At(13))
	assert.Equal(t, neutral, technical.At(-1))
	assert.Equal(t, neutral, technical.At(30))

	// flat closes have no losses once the rsi window fills
	assert.Equal(t, 100.0, technical.At(14).Rsi)

	late := technical.At(29)
	assert.Equal(t, 0.0, late.Macd)
	assert.Equal(t, 0.5, late.BollingerPosition)
	assert.Equal(t, 1.0, late.VolumeRatio)
}

func TestTechnical_UsesCurrentBarAgainstHistory(t *testing.T) {
	bars := flatBars(21, 100, 1000)
	bars[20].Volume = fixed.FromInt64(10000, 0)
	bars[20].Close = fixed.FromInt64(150, 0)

	snapshot := NewTechnical(bars).At(20)
	assert.Equal(t, 5.0, snapshot.VolumeRatio)
	assert.Equal(t, 0.5, snapshot.BollingerPosition, "zero width band stays neutral")
}

func TestTechnical_FeaturesStayInRange(t *testing.T) {
	bars := make([]common.Bar, 80)
	for i := range bars {
		price := fixed.FromInt64(int64(100+(i*7)%23-(i*3)%11), 0)
		bars[i] = common.Bar{Close: price, Volume: fixed.FromInt64(int64(1000+(i*37)%500), 0)}
	}

	technical := NewTechnical(bars)
	for step := 0; step < len(bars); step++ {
		s := technical.At(step)
		assert.GreaterOrEqual(t, s.Rsi, 0.0)
		assert.LessOrEqual(t, s.Rsi, 100.0)
		assert.GreaterOrEqual(t, s.BollingerPosition, 0.0)
		assert.LessOrEqual(t, s.BollingerPosition, 1.0)
		assert.GreaterOrEqual(t, s.VolumeRatio, 0.0)
		assert.LessOrEqual(t, s.VolumeRatio, 5.0)
	}
}
