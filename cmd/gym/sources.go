package main

import (
	"context"
	"fmt"

	"github.com/peter-kozarec/equitygym/pkg/data/duckdb"
	"github.com/peter-kozarec/equitygym/pkg/datasource"
	"github.com/peter-kozarec/equitygym/pkg/datasource/historical"
	"github.com/peter-kozarec/equitygym/pkg/datasource/synthetic"
	"github.com/peter-kozarec/equitygym/pkg/storage/clickhouse"
	"github.com/peter-kozarec/equitygym/pkg/storage/postgres"
	"go.uber.org/zap"
)

// openLoader returns the bar loader for cfg.Source and the function releasing it.
func openLoader(ctx context.Context, logger *zap.Logger, cfg config) (datasource.Loader, func(), error) {
	noop := func() {}

	switch cfg.Source {
	case SourceSynthetic:
		return synthetic.NewGenerator(cfg.Seed), noop, nil

	case SourceBinary:
		return historical.NewBarLoader(logger, cfg.DSN), noop, nil

	case SourceDuckDB:
		reader := duckdb.NewReader(logger, cfg.DSN)
		if err := reader.Connect(); err != nil {
			return nil, noop, err
		}
		return reader, func() { _ = reader.Close() }, nil

	case SourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		return postgres.NewBarLoader(pool), pool.Close, nil

	case SourceClickHouse:
		conn, err := clickhouse.NewConn(ctx, cfg.DSN)
		if err != nil {
			return nil, noop, err
		}
		return clickhouse.NewBarLoader(conn), func() { _ = conn.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown source %q", cfg.Source)
	}
}
