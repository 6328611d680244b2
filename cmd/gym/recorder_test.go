package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/peter-kozarec/equitygym/pkg/simulation"
	"github.com/peter-kozarec/equitygym/pkg/storage/postgres"
	"github.com/peter-kozarec/equitygym/pkg/utility"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeStore struct {
	started  []postgres.Episode
	finished []simulation.EpisodeResult
	err      error
}

func (f *fakeStore) StartEpisode(_ context.Context, e postgres.Episode) error {
	f.started = append(f.started, e)
	return f.err
}

func (f *fakeStore) FinishEpisode(_ context.Context, result simulation.EpisodeResult, _ time.Time) error {
	f.finished = append(f.finished, result)
	return f.err
}

func TestEpisodeRecorder(t *testing.T) {
	store := &fakeStore{}
	recorder := &episodeRecorder{logger: zap.NewNop(), store: store, policy: "hold", balance: fixed.FromInt(1000, 0)}

	id := utility.NewEpisodeID()
	var passed int
	handler := recorder.WithTransition(func(context.Context, simulation.Transition) { passed++ })
	for step := 0; step < 3; step++ {
		handler(context.Background(), simulation.Transition{EpisodeID: id, Step: step, Symbols: []string{"AAA"}})
	}

	assert.Equal(t, 3, passed)
	require.Len(t, store.started, 1)
	assert.Equal(t, id, store.started[0].EpisodeID)
	assert.Equal(t, "hold", store.started[0].Policy)
	assert.True(t, store.started[0].InitialBalance.Eq(fixed.FromInt(1000, 0)))

	recorder.finish(context.Background(), simulation.EpisodeResult{EpisodeID: id})
	assert.Empty(t, store.finished)
	recorder.finish(context.Background(), simulation.EpisodeResult{EpisodeID: id, Steps: 3})
	assert.Len(t, store.finished, 1)
}

func TestEpisodeRecorder_FailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := &fakeStore{err: errors.New("connection refused")}
	recorder := &episodeRecorder{logger: zap.New(core), store: store}

	var passed bool
	recorder.WithTransition(func(context.Context, simulation.Transition) { passed = true })(
		context.Background(), simulation.Transition{EpisodeID: utility.NewEpisodeID()})
	recorder.finish(context.Background(), simulation.EpisodeResult{Steps: 1})

	assert.True(t, passed)
	assert.Equal(t, 1, logs.FilterMessage("unable to start episode").Len())
	assert.Equal(t, 1, logs.FilterMessage("unable to finish episode").Len())
}
