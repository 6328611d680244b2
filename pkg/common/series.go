package common

import "github.com/peter-kozarec/equitygym/pkg/utility/fixed"

// Series is an ordered, gap-free run of bars for one symbol. Consumers must not mutate it.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

func NewSeries(symbol string, bars []Bar) Series {
	return Series{Symbol: symbol, Bars: bars}
}

func (s Series) Len() int { return len(s.Bars) }

func (s Series) Close(idx int) fixed.Point {
	return s.Bars[idx].Close
}

// Window returns the bars in [from, to), clipped to the series bounds.
func (s Series) Window(from, to int) []Bar {
	if from < 0 {
		from = 0
	}
	if to > len(s.Bars) {
		to = len(s.Bars)
	}
	if from >= to {
		return nil
	}
	return s.Bars[from:to]
}
