package main

import (
	"context"
	"time"

	"github.com/peter-kozarec/equitygym/pkg/simulation"
	"github.com/peter-kozarec/equitygym/pkg/storage/postgres"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
	"go.uber.org/zap"
)

type episodeStore interface {
	StartEpisode(ctx context.Context, e postgres.Episode) error
	FinishEpisode(ctx context.Context, result simulation.EpisodeResult, finishedAt time.Time) error
}

// episodeRecorder opens the episode row on the first transition so the ledger
// has a parent for the trades that follow.
type episodeRecorder struct {
	logger  *zap.Logger
	store   episodeStore
	policy  string
	balance fixed.Point
}

func (r *episodeRecorder) WithTransition(handler simulation.TransitionHandler) simulation.TransitionHandler {
	return func(ctx context.Context, tr simulation.Transition) {
		if tr.Step == 0 {
			err := r.store.StartEpisode(ctx, postgres.Episode{
				EpisodeID:      tr.EpisodeID,
				Symbols:        tr.Symbols,
				Policy:         r.policy,
				InitialBalance: r.balance,
				StartedAt:      time.Now().UTC(),
			})
			if err != nil {
				r.logger.Warn("unable to start episode", zap.Stringer("episode", tr.EpisodeID), zap.Error(err))
			}
		}
		handler(ctx, tr)
	}
}

func (r *episodeRecorder) finish(ctx context.Context, result simulation.EpisodeResult) {
	if result.Steps == 0 {
		return
	}
	if err := r.store.FinishEpisode(ctx, result, time.Now().UTC()); err != nil {
		r.logger.Warn("unable to finish episode", zap.Stringer("episode", result.EpisodeID), zap.Error(err))
	}
}
