package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/peter-kozarec/equitygym/pkg/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRun_SyntheticJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episodes.journal")
	cfg := config{
		Source:   SourceSynthetic,
		Symbols:  []string{"AAA", "BBB"},
		From:     time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2022, 3, 31, 0, 0, 0, 0, time.UTC),
		Seed:     7,
		Policy:   "random",
		Balance:  "50000",
		Episodes: 2,
		Journal:  path,
	}
	require.NoError(t, run(context.Background(), zap.NewNop(), cfg))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	episodes, err := journal.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.NotEqual(t, episodes[0].Header.EpisodeID, episodes[1].Header.EpisodeID)
	for _, ep := range episodes {
		assert.Equal(t, []string{"AAA", "BBB"}, ep.Header.Symbols)
		require.NotEmpty(t, ep.Entries)
		assert.True(t, ep.Entries[len(ep.Entries)-1].Done)
	}
}

func TestRun_Errors(t *testing.T) {
	base := config{
		Source:   SourceSynthetic,
		Symbols:  []string{"AAA"},
		From:     time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2022, 1, 31, 0, 0, 0, 0, time.UTC),
		Policy:   "hold",
		Balance:  "1000",
		Episodes: 1,
	}

	tests := []struct {
		name   string
		modify func(cfg *config)
	}{
		{name: "bad balance", modify: func(cfg *config) { cfg.Balance = "lots" }},
		{name: "unknown policy", modify: func(cfg *config) { cfg.Policy = "oracle" }},
		{name: "weekend only range", modify: func(cfg *config) {
			cfg.From = time.Date(2022, 1, 8, 0, 0, 0, 0, time.UTC)
			cfg.To = time.Date(2022, 1, 9, 0, 0, 0, 0, time.UTC)
		}},
		{name: "missing binary file", modify: func(cfg *config) {
			cfg.Source = SourceBinary
			cfg.DSN = t.TempDir()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.modify(&cfg)
			assert.Error(t, run(context.Background(), zap.NewNop(), cfg))
		})
	}
}
