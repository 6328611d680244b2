package main

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	t.Setenv(dsnEnv, "")
	t.Setenv(storeEnv, "")

	cfg, err := parseConfig(nil, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, SourceSynthetic, cfg.Source)
	assert.Equal(t, []string{"AAPL"}, cfg.Symbols)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), cfg.From)
	assert.Equal(t, "rsi", cfg.Policy)
	assert.Equal(t, 1, cfg.Episodes)
	assert.Empty(t, cfg.Store)

	// 252 weekdays starting on Wednesday 2020-01-01
	assert.Equal(t, time.Date(2020, 12, 17, 0, 0, 0, 0, time.UTC), cfg.To)
}

func TestParseConfig(t *testing.T) {
	t.Setenv(dsnEnv, "")
	t.Setenv(storeEnv, "")

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, cfg config)
	}{
		{
			name: "symbols are trimmed and upper cased",
			args: []string{"-symbols", " aapl, msft ,,"},
			check: func(t *testing.T, cfg config) {
				assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Symbols)
			},
		},
		{
			name: "explicit range",
			args: []string{"-from", "2021-03-01", "-to", "2021-03-31"},
			check: func(t *testing.T, cfg config) {
				assert.Equal(t, time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC), cfg.To)
			},
		},
		{
			name: "database source",
			args: []string{"-source", "postgres", "-dsn", "postgres://localhost/gym"},
			check: func(t *testing.T, cfg config) {
				assert.Equal(t, "postgres://localhost/gym", cfg.DSN)
			},
		},
		{name: "source without dsn", args: []string{"-source", "duckdb"}, wantErr: true},
		{name: "unknown source", args: []string{"-source", "csv"}, wantErr: true},
		{name: "empty symbols", args: []string{"-symbols", ","}, wantErr: true},
		{name: "bad date", args: []string{"-from", "01/02/2020"}, wantErr: true},
		{name: "reversed range", args: []string{"-from", "2021-03-01", "-to", "2021-02-01"}, wantErr: true},
		{name: "no episodes", args: []string{"-episodes", "0"}, wantErr: true},
		{name: "unknown flag", args: []string{"-speed", "fast"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseConfig(tt.args, io.Discard)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUsage)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestAddWeekdays(t *testing.T) {
	saturday := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), addWeekdays(saturday, 0))
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), addWeekdays(saturday, 5))
}
