package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"golang.org/x/sync/errgroup"
)

var ErrEmptySeries = errors.New("empty series")

// Loader returns the daily bars of symbol with timestamps in [from, to], oldest first.
type Loader interface {
	Load(ctx context.Context, symbol string, from, to time.Time) (common.Series, error)
}

type LoaderFunc func(ctx context.Context, symbol string, from, to time.Time) (common.Series, error)

func (f LoaderFunc) Load(ctx context.Context, symbol string, from, to time.Time) (common.Series, error) {
	return f(ctx, symbol, from, to)
}

// LoadAll loads every symbol concurrently and keeps the order of symbols.
func LoadAll(ctx context.Context, loader Loader, symbols []string, from, to time.Time) ([]common.Series, error) {
	series := make([]common.Series, len(symbols))

	g, ctx := errgroup.WithContext(ctx)
	for idx, symbol := range symbols {
		g.Go(func() error {
			s, err := loader.Load(ctx, symbol, from, to)
			if err != nil {
				return fmt.Errorf("load %s: %w", symbol, err)
			}
			if s.Len() == 0 {
				return fmt.Errorf("load %s: %w", symbol, ErrEmptySeries)
			}
			series[idx] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return series, nil
}
