package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/datasource"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
	"go.uber.org/zap"
)

const readerComponentName = "data.duckdb"

var ErrInvalidSymbol = errors.New("invalid symbol")

var symbolPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Reader loads bars from per-symbol <symbol>_bars tables of a DuckDB file.
type Reader struct {
	logger         *zap.Logger
	dataSourceName string
	db             *sql.DB
}

var _ datasource.Loader = (*Reader)(nil)

func NewReader(logger *zap.Logger, dataSourceName string) *Reader {
	return &Reader{
		logger:         logger.With(zap.String("component", readerComponentName)),
		dataSourceName: dataSourceName,
	}
}

func (r *Reader) Connect() error {
	db, err := sql.Open("duckdb", r.dataSourceName)
	if err != nil {
		return fmt.Errorf("open duckdb %q: %w", r.dataSourceName, err)
	}
	r.db = db
	return nil
}

func (r *Reader) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func tableName(symbol string) (string, error) {
	if !symbolPattern.MatchString(symbol) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return strings.ToLower(symbol) + "_bars", nil
}

func (r *Reader) Load(ctx context.Context, symbol string, from, to time.Time) (common.Series, error) {
	table, err := tableName(symbol)
	if err != nil {
		return common.Series{}, err
	}

	query := fmt.Sprintf(`
		SELECT ts, CAST(open AS VARCHAR), CAST(high AS VARCHAR), CAST(low AS VARCHAR), CAST(close AS VARCHAR), volume
		FROM %s
		WHERE ts BETWEEN ? AND ?
		ORDER BY ts`, table)

	rows, err := r.db.QueryContext(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return common.Series{}, fmt.Errorf("query %s: %w", table, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("unable to close rows", zap.String("table", table), zap.Error(err))
		}
	}()

	var bars []common.Bar
	for rows.Next() {
		var ts time.Time
		var open, high, low, closePrice string
		var volume float64
		if err := rows.Scan(&ts, &open, &high, &low, &closePrice, &volume); err != nil {
			return common.Series{}, fmt.Errorf("scan %s: %w", table, err)
		}

		bar := common.Bar{
			Source:    readerComponentName,
			Symbol:    symbol,
			TimeStamp: ts.UTC(),
			Volume:    fixed.FromFloat64(volume),
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
		return common.Series{}, fmt.Errorf("iterate %s: %w", table, err)
	}

	if len(bars) == 0 {
		return common.Series{}, fmt.Errorf("%s between %s and %s: %w", symbol, from.Format(time.DateOnly), to.Format(time.DateOnly), datasource.ErrEmptySeries)
	}
	r.logger.Debug("bars loaded", zap.String("symbol", symbol), zap.Int("count", len(bars)))
	return common.NewSeries(symbol, bars), nil
}

// Import creates the symbol table when missing and appends bars in one transaction.
func (r *Reader) Import(ctx context.Context, symbol string, bars []common.Bar) error {
	table, err := tableName(symbol)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			ts     TIMESTAMP PRIMARY KEY,
			open   DECIMAL(18, 4) NOT NULL,
			high   DECIMAL(18, 4) NOT NULL,
			low    DECIMAL(18, 4) NOT NULL,
			close  DECIMAL(18, 4) NOT NULL,
			volume DOUBLE NOT NULL
		)`, table)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s VALUES (?, CAST(? AS DECIMAL(18, 4)), CAST(? AS DECIMAL(18, 4)), CAST(? AS DECIMAL(18, 4)), CAST(? AS DECIMAL(18, 4)), ?)`, table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, bar := range bars {
		if _, err := stmt.ExecContext(ctx, bar.TimeStamp.UTC(),
			bar.Open.String(), bar.High.String(), bar.Low.String(), bar.Close.String(), bar.Volume.Float()); err != nil {
			return fmt.Errorf("insert %s at %s: %w", symbol, bar.TimeStamp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}
