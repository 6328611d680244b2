package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/datasource"
	"github.com/peter-kozarec/equitygym/pkg/storage"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

const barLoaderComponentName = "storage.postgres"

// BarLoader reads daily bars from the stock_prices table.
type BarLoader struct {
	pool *Pool
}

var _ datasource.Loader = (*BarLoader)(nil)

func NewBarLoader(pool *Pool) *BarLoader {
	return &BarLoader{pool: pool}
}

func (l *BarLoader) Load(ctx context.Context, symbol string, from, to time.Time) (common.Series, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT timestamp, open_price::text, high_price::text, low_price::text, close_price::text, volume
		FROM stock_prices
		WHERE symbol = $1 AND timestamp BETWEEN $2 AND $3
		ORDER BY timestamp
	`, symbol, from, to)
	if err != nil {
		return common.Series{}, fmt.Errorf("query stock prices: %w", err)
	}
	defer rows.Close()

	var bars []common.Bar
	for rows.Next() {
		var ts time.Time
		var open, high, low, closePrice string
		var volume int64
		if err := rows.Scan(&ts, &open, &high, &low, &closePrice, &volume); err != nil {
			return common.Series{}, fmt.Errorf("scan stock price: %w", err)
		}

		bar := common.Bar{
			Source:    barLoaderComponentName,
			Symbol:    symbol,
			TimeStamp: ts.UTC(),
			Volume:    fixed.FromInt64(volume, 0),
		}
		for _, f := range []struct {
			dst *fixed.Point
			raw string
		}{{&bar.Open, open}, {&bar.High, high}, {&bar.Low, low}, {&bar.Close, closePrice}} {
			if *f.dst, err = fixed.FromString(f.raw); err != nil {
				return common.Series{}, fmt.Errorf("parse price %q at %s: %w", f.raw, ts, err)
			}
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return common.Series{}, fmt.Errorf("iterate stock prices: %w", err)
	}

	if len(bars) == 0 {
		return common.Series{}, fmt.Errorf("%s: %w: %w", symbol, storage.ErrNotFound, datasource.ErrEmptySeries)
	}
	return common.NewSeries(symbol, bars), nil
}

// InsertBars upserts bars for symbol in one batch.
func (l *BarLoader) InsertBars(ctx context.Context, symbol string, bars []common.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, bar := range bars {
		batch.Queue(`
			INSERT INTO stock_prices (symbol, timestamp, open_price, high_price, low_price, close_price, volume)
			VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6::numeric, $7)
			ON CONFLICT (symbol, timestamp) DO UPDATE SET
				open_price = EXCLUDED.open_price,
				high_price = EXCLUDED.high_price,
				low_price = EXCLUDED.low_price,
				close_price = EXCLUDED.close_price,
				volume = EXCLUDED.volume
		`, symbol, bar.TimeStamp, bar.Open.String(), bar.High.String(), bar.Low.String(), bar.Close.String(), bar.Volume.Int64())
	}

	if err := l.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert stock prices: %w", err)
	}
	return nil
}
