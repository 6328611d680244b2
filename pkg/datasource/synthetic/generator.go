package synthetic

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/datasource"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

const (
	generatorComponentName = "datasource.synthetic"
	tradingDaysPerYear     = 252
)

var _ datasource.Loader = (*Generator)(nil)

// Generator produces daily bars by geometric Brownian motion. Every symbol gets
// its own random stream derived from the seed, so a symbol's bars do not depend
// on which other symbols are generated with it.
type Generator struct {
	seed int64

	startPrice float64
	mu         float64
	sigma      float64
	deltaT     float64

	avgVolume      float64
	volumeVariance float64
	intradayRange  float64

	priceDigits int
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:           seed,
		startPrice:     100,
		mu:             0.08,
		sigma:          0.25,
		deltaT:         1.0 / tradingDaysPerYear,
		avgVolume:      1_000_000,
		volumeVariance: 0.3,
		intradayRange:  0.01,
		priceDigits:    2,
	}
}

func (g *Generator) SetPriceModel(startPrice, mu, sigma float64) {
	g.startPrice = startPrice
	g.mu = mu
	g.sigma = sigma
}

func (g *Generator) SetVolumeModel(avgVolume, variance float64) {
	g.avgVolume = avgVolume
	g.volumeVariance = variance
}

func (g *Generator) rng(symbol string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	return rand.New(rand.NewSource(g.seed ^ int64(h.Sum64())))
}

// Bars generates count consecutive weekday bars starting at start.
func (g *Generator) Bars(symbol string, start time.Time, count int) []common.Bar {
	rng := g.rng(symbol)
	bars := make([]common.Bar, 0, count)

	drift := (g.mu - 0.5*g.sigma*g.sigma) * g.deltaT
	diffusion := g.sigma * math.Sqrt(g.deltaT)

	day := weekday(start)
	price := g.startPrice
	for len(bars) < count {
		open := price
		price = open * math.Exp(drift+diffusion*rng.NormFloat64())

		high := math.Max(open, price) * (1 + math.Abs(rng.NormFloat64())*g.intradayRange)
		low := math.Min(open, price) * (1 - math.Min(math.Abs(rng.NormFloat64())*g.intradayRange, 0.5))
		volume := g.avgVolume * math.Exp(rng.NormFloat64()*g.volumeVariance)

		bars = append(bars, common.Bar{
			Source:    generatorComponentName,
			Symbol:    symbol,
			TimeStamp: day,
			Open:      fixed.FromFloat64(open).Rescale(g.priceDigits),
			High:      fixed.FromFloat64(high).Rescale(g.priceDigits),
			Low:       fixed.FromFloat64(low).Rescale(g.priceDigits),
			Close:     fixed.FromFloat64(price).Rescale(g.priceDigits),
			Volume:    fixed.FromFloat64(volume).Rescale(0),
		})
		day = weekday(day.AddDate(0, 0, 1))
	}
	return bars
}

// Load covers every weekday in [from, to].
func (g *Generator) Load(ctx context.Context, symbol string, from, to time.Time) (common.Series, error) {
	if err := ctx.Err(); err != nil {
		return common.Series{}, err
	}

	count := 0
	for day := weekday(from); !day.After(to); day = weekday(day.AddDate(0, 0, 1)) {
		count++
	}
	if count == 0 {
		return common.Series{}, fmt.Errorf("%w: no trading days between %s and %s", datasource.ErrEmptySeries, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return common.NewSeries(symbol, g.Bars(symbol, from, count)), nil
}

func weekday(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}
