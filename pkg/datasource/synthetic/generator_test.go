package synthetic

import (
	"context"
	"testing"
	"time"

	"github.com/peter-kozarec/equitygym/pkg/datasource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Deterministic(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := NewGenerator(7).Bars("AAA", start, 50)
	b := NewGenerator(7).Bars("AAA", start, 50)
	c := NewGenerator(8).Bars("AAA", start, 50)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, NewGenerator(7).Bars("BBB", start, 50))
}

func TestGenerator_BarShape(t *testing.T) {
	bars := NewGenerator(1).Bars("AAA", time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), 30)
	require.Len(t, bars, 30)

	// 2024-01-06 is a Saturday
	assert.Equal(t, time.Monday, bars[0].TimeStamp.Weekday())

	for idx, bar := range bars {
		assert.True(t, bar.Close.IsPos(), "close %d", idx)
		assert.True(t, bar.High.Gte(bar.Open.Max(bar.Close)), "high %d", idx)
		assert.True(t, bar.Low.Lte(bar.Open.Min(bar.Close)), "low %d", idx)
		assert.True(t, bar.Volume.IsPos(), "volume %d", idx)
		assert.NotEqual(t, time.Saturday, bar.TimeStamp.Weekday())
		assert.NotEqual(t, time.Sunday, bar.TimeStamp.Weekday())
		if idx > 0 {
			assert.True(t, bar.TimeStamp.After(bars[idx-1].TimeStamp))
		}
	}
}

func TestGenerator_Load(t *testing.T) {
	g := NewGenerator(3)

	// two full weeks
	series, err := g.Load(context.Background(), "AAA", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 10, series.Len())
	assert.Equal(t, "AAA", series.Symbol)

	_, err = g.Load(context.Background(), "AAA", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, datasource.ErrEmptySeries)
}

func TestLoadAll_KeepsOrder(t *testing.T) {
	g := NewGenerator(3)
	from, to := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)

	series, err := datasource.LoadAll(context.Background(), g, []string{"CCC", "AAA", "BBB"}, from, to)
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, "CCC", series[0].Symbol)
	assert.Equal(t, "BBB", series[2].Symbol)

	_, err = datasource.LoadAll(context.Background(), g, []string{"AAA"}, to, from)
	assert.ErrorIs(t, err, datasource.ErrEmptySeries)
}
