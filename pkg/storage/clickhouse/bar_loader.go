package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/datasource"
	"github.com/peter-kozarec/equitygym/pkg/storage"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
	"github.com/shopspring/decimal"
)

const barLoaderComponentName = "storage.clickhouse"

// BarLoader reads bars from the ReplacingMergeTree bars table. Reads use FINAL
// so a re-inserted bar replaces the earlier row.
type BarLoader struct {
	conn *Conn
}

var _ datasource.Loader = (*BarLoader)(nil)

func NewBarLoader(conn *Conn) *BarLoader {
	return &BarLoader{conn: conn}
}

func (l *BarLoader) Load(ctx context.Context, symbol string, from, to time.Time) (common.Series, error) {
	rows, err := l.conn.Query(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM bars FINAL
		WHERE symbol = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, from.UTC(), to.UTC())
	if err != nil {
		return common.Series{}, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []common.Bar
	for rows.Next() {
		var ts time.Time
		var open, high, low, closePrice decimal.Decimal
		var volume float64
		if err := rows.Scan(&ts, &open, &high, &low, &closePrice, &volume); err != nil {
			return common.Series{}, fmt.Errorf("scan bar: %w", err)
		}

		bar := common.Bar{
			Source:    barLoaderComponentName,
			Symbol:    symbol,
			TimeStamp: ts.UTC(),
			Volume:    fixed.FromFloat64(volume),
		}
		for _, f := range []struct {
			dst *fixed.Point
			raw decimal.Decimal
		}{{&bar.Open, open}, {&bar.High, high}, {&bar.Low, low}, {&bar.Close, closePrice}} {
			if *f.dst, err = fixed.FromString(f.raw.String()); err != nil {
				return common.Series{}, fmt.Errorf("parse price %s at %s: %w", f.raw, ts, err)
			}
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return common.Series{}, fmt.Errorf("iterate bars: %w", err)
	}

	if len(bars) == 0 {
		return common.Series{}, fmt.Errorf("%s: %w: %w", symbol, storage.ErrNotFound, datasource.ErrEmptySeries)
	}
	return common.NewSeries(symbol, bars), nil
}

func (l *BarLoader) InsertBars(ctx context.Context, symbol string, bars []common.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(bars))
	for _, bar := range bars {
		key := bar.TimeStamp.UnixMilli()
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%s at %s: %w", symbol, bar.TimeStamp, storage.ErrDuplicateKey)
		}
		seen[key] = struct{}{}
	}

	batch, err := l.conn.PrepareBatch(ctx, `INSERT INTO bars (symbol, timestamp, open, high, low, close, volume)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, bar := range bars {
		err = batch.Append(symbol, bar.TimeStamp.UTC(),
			toDecimal(bar.Open), toDecimal(bar.High), toDecimal(bar.Low), toDecimal(bar.Close),
			bar.Volume.Float())
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

func toDecimal(p fixed.Point) decimal.Decimal {
	return decimal.RequireFromString(p.String())
}
