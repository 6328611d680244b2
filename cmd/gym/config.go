package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/peter-kozarec/equitygym/pkg/middleware"
	"github.com/peter-kozarec/equitygym/pkg/policy"
)

const Version = "v0.3.0"

const (
	SourceSynthetic  = "synthetic"
	SourceBinary     = "binary"
	SourceDuckDB     = "duckdb"
	SourcePostgres   = "postgres"
	SourceClickHouse = "clickhouse"
)

const (
	MonitorFlags = middleware.MonitorTrades | middleware.MonitorExits | middleware.MonitorTermination

	dsnEnv   = "EQUITYGYM_DSN"
	storeEnv = "EQUITYGYM_STORE_DSN"
)

var errUsage = errors.New("usage")

type config struct {
	Source   string
	DSN      string
	Symbols  []string
	From     time.Time
	To       time.Time
	Bars     int
	Seed     int64
	Policy   string
	Balance  string
	Episodes int

	Journal   string
	Telemetry string
	Store     string

	Production bool
	LogLevel   string
}

func parseConfig(args []string, output io.Writer) (config, error) {
	var cfg config
	var symbols, from, to string

	fs := flag.NewFlagSet("gym", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.Source, "source", SourceSynthetic, "bar source: synthetic, binary, duckdb, postgres or clickhouse")
	fs.StringVar(&cfg.DSN, "dsn", os.Getenv(dsnEnv), "bar source location: directory, duckdb file or database url")
	fs.StringVar(&symbols, "symbols", "AAPL", "comma separated symbols")
	fs.StringVar(&from, "from", "2020-01-01", "first day (YYYY-MM-DD)")
	fs.StringVar(&to, "to", "", "last day (YYYY-MM-DD), defaults to -from plus -bars weekdays")
	fs.IntVar(&cfg.Bars, "bars", 252, "synthetic bars per symbol when -to is empty")
	fs.Int64Var(&cfg.Seed, "seed", 1, "seed for synthetic bars and the random policy")
	fs.StringVar(&cfg.Policy, "policy", policy.NameRsi, "policy: hold, random or rsi")
	fs.StringVar(&cfg.Balance, "balance", "100000", "initial portfolio balance")
	fs.IntVar(&cfg.Episodes, "episodes", 1, "episodes to play")
	fs.StringVar(&cfg.Journal, "journal", "", "append transitions to this journal file")
	fs.StringVar(&cfg.Telemetry, "telemetry", "", "serve transitions over websocket on this address")
	fs.StringVar(&cfg.Store, "store", os.Getenv(storeEnv), "postgres url for episode and trade records")
	fs.BoolVar(&cfg.Production, "prod", false, "json logs")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return config{}, fmt.Errorf("%w: %w", errUsage, err)
	}

	for _, s := range strings.Split(symbols, ",") {
		if s = strings.TrimSpace(s); s != "" {
			cfg.Symbols = append(cfg.Symbols, strings.ToUpper(s))
		}
	}
	if len(cfg.Symbols) == 0 {
		return config{}, fmt.Errorf("%w: no symbols", errUsage)
	}

	var err error
	if cfg.From, err = time.Parse(time.DateOnly, from); err != nil {
		return config{}, fmt.Errorf("%w: -from: %w", errUsage, err)
	}
	if to == "" {
		if cfg.Bars <= 0 {
			return config{}, fmt.Errorf("%w: -bars must be positive", errUsage)
		}
		cfg.To = addWeekdays(cfg.From, cfg.Bars-1)
	} else if cfg.To, err = time.Parse(time.DateOnly, to); err != nil {
		return config{}, fmt.Errorf("%w: -to: %w", errUsage, err)
	}
	if cfg.To.Before(cfg.From) {
		return config{}, fmt.Errorf("%w: -to before -from", errUsage)
	}

	switch cfg.Source {
	case SourceSynthetic:
	case SourceBinary, SourceDuckDB, SourcePostgres, SourceClickHouse:
		if cfg.DSN == "" {
			return config{}, fmt.Errorf("%w: -source %s needs -dsn or %s", errUsage, cfg.Source, dsnEnv)
		}
	default:
		return config{}, fmt.Errorf("%w: unknown source %q", errUsage, cfg.Source)
	}

	if cfg.Episodes <= 0 {
		return config{}, fmt.Errorf("%w: -episodes must be positive", errUsage)
	}
	return cfg, nil
}

// addWeekdays moves n weekdays past start, which itself is moved off a weekend first.
func addWeekdays(start time.Time, n int) time.Time {
	t := start
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	for n > 0 {
		t = t.AddDate(0, 0, 1)
		if t.Weekday() != time.Saturday && t.Weekday() != time.Sunday {
			n--
		}
	}
	return t
}
