package simulation

import (
	"context"
	"fmt"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/utility"
	"go.uber.org/zap"
)

const (
	executorComponentName = "simulation.executor"
)

// Policy picks the next action for one symbol from that symbol's slice of the observation.
type Policy interface {
	Decide(symbol string, features []float64) common.Action
}

type PolicyFunc func(symbol string, features []float64) common.Action

func (f PolicyFunc) Decide(symbol string, features []float64) common.Action {
	return f(symbol, features)
}

type EpisodeResult struct {
	EpisodeID   utility.EpisodeID   `json:"episode_id"`
	Steps       int                 `json:"steps"`
	TotalReward float64             `json:"total_reward"`
	Final       PortfolioInfo       `json:"final"`
	Statistics  PortfolioStatistics `json:"statistics"`
}

// Executor plays whole episodes of a Portfolio against a Policy.
type Executor struct {
	logger    *zap.Logger
	portfolio *Portfolio
	policy    Policy
	handler   TransitionHandler
}

func NewExecutor(logger *zap.Logger, portfolio *Portfolio, policy Policy, handler TransitionHandler) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if handler == nil {
		handler = noopTransitionHandler
	}
	return &Executor{
		logger:    logger.With(zap.String("component", executorComponentName)),
		portfolio: portfolio,
		policy:    policy,
		handler:   handler,
	}
}

// Run resets the portfolio and steps it until every symbol terminates. The
// context is checked between steps; a cancelled run returns the partial result.
func (e *Executor) Run(ctx context.Context) (EpisodeResult, error) {
	symbols := e.portfolio.Symbols()
	result := EpisodeResult{EpisodeID: utility.NewEpisodeID()}
	logger := e.logger.With(zap.String("episode", result.EpisodeID.String()))

	logger.Info("episode started",
		zap.Strings("symbols", symbols),
		zap.String("initial_balance", e.portfolio.Configuration().InitialBalance.String()))

	obs := e.portfolio.Reset()
	actions := make([]common.Action, len(symbols))

	for {
		select {
		case <-ctx.Done():
			result.Statistics = e.portfolio.Statistics()
			logger.Warn("episode interrupted", zap.Int("step", result.Steps), zap.Error(ctx.Err()))
			return result, ctx.Err()
		default:
		}

		for idx, symbol := range symbols {
			actions[idx] = e.policy.Decide(symbol, obs[idx*ObservationSize:(idx+1)*ObservationSize])
		}

		next, reward, done, info, err := e.portfolio.Step(actions)
		if err != nil {
			return result, fmt.Errorf("step %d: %w", result.Steps, err)
		}

		e.handler(ctx, Transition{
			EpisodeID: result.EpisodeID,
			Step:      result.Steps,
			Symbols:   symbols,
			Actions:   append([]common.Action(nil), actions...),
			Reward:    reward,
			Done:      done,
			Info:      info,
		})

		result.Steps++
		result.TotalReward += reward
		result.Final = info
		obs = next

		if done {
			break
		}
	}

	result.Statistics = e.portfolio.Statistics()
	logger.Info("episode finished",
		zap.Int("steps", result.Steps),
		zap.Float64("total_reward", result.TotalReward),
		zap.String("total_value", result.Final.TotalValue.String()))
	result.Statistics.Total.Print(logger)

	return result, nil
}
