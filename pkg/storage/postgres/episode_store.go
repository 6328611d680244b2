package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/simulation"
	"github.com/peter-kozarec/equitygym/pkg/storage"
	"github.com/peter-kozarec/equitygym/pkg/utility"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
)

const pgErrForeignKeyViolation = "23503"

type Episode struct {
	EpisodeID      utility.EpisodeID
	Symbols        []string
	Policy         string
	InitialBalance fixed.Point
	StartedAt      time.Time

	// Set once the episode is finished.
	Steps       int
	TotalReward float64
	FinalValue  fixed.Point
	Statistics  *simulation.PortfolioStatistics
	FinishedAt  *time.Time
}

func (e Episode) Finished() bool { return e.FinishedAt != nil }

// EpisodeStore keeps episode summaries and their trade logs.
type EpisodeStore struct {
	pool *Pool
}

func NewEpisodeStore(pool *Pool) *EpisodeStore {
	return &EpisodeStore{pool: pool}
}

func (s *EpisodeStore) StartEpisode(ctx context.Context, e Episode) error {
	if len(e.Symbols) == 0 {
		return fmt.Errorf("%w: episode without symbols", storage.ErrInvalidInput)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO episodes (episode_id, symbols, policy, initial_balance, started_at)
		VALUES ($1, $2, $3, $4::numeric, $5)
	`, e.EpisodeID, e.Symbols, e.Policy, e.InitialBalance.String(), e.StartedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("episode %s: %w", e.EpisodeID, storage.ErrDuplicateKey)
		}
		return fmt.Errorf("insert episode: %w", err)
	}
	return nil
}

// RecordTrades appends trades after the ones already stored for the episode.
func (s *EpisodeStore) RecordTrades(ctx context.Context, episode utility.EpisodeID, trades []common.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var next int
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(seq) + 1, 0) FROM episode_trades WHERE episode_id = $1
	`, episode).Scan(&next); err != nil {
		return fmt.Errorf("next trade seq: %w", err)
	}

	batch := &pgx.Batch{}
	for idx, t := range trades {
		batch.Queue(`
			INSERT INTO episode_trades (episode_id, seq, symbol, step, side, reason, shares, price, cash_delta, fee, tax)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::numeric, $10::numeric, $11::numeric)
		`, episode, next+idx, t.Symbol, t.Step, string(t.Side), string(t.Reason), t.Shares,
			t.Price.String(), t.CashDelta.String(), t.Fee.String(), t.Tax.String())
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrForeignKeyViolation {
			return fmt.Errorf("episode %s: %w", episode, storage.ErrNotFound)
		}
		if isDuplicateKeyError(err) {
			return fmt.Errorf("episode %s trades: %w", episode, storage.ErrDuplicateKey)
		}
		return fmt.Errorf("insert trades: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit trades: %w", err)
	}
	return nil
}

// FinishEpisode stores the outcome of a started episode. An episode finishes once.
func (s *EpisodeStore) FinishEpisode(ctx context.Context, result simulation.EpisodeResult, finishedAt time.Time) error {
	stats, err := json.Marshal(result.Statistics)
	if err != nil {
		return fmt.Errorf("encode statistics: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE episodes
		SET steps = $2, total_reward = $3, final_value = $4::numeric, statistics = $5, finished_at = $6
		WHERE episode_id = $1 AND finished_at IS NULL
	`, result.EpisodeID, result.Steps, result.TotalReward, result.Final.TotalValue.String(), stats, finishedAt)
	if err != nil {
		return fmt.Errorf("update episode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unfinished episode %s: %w", result.EpisodeID, storage.ErrNotFound)
	}
	return nil
}

func (s *EpisodeStore) GetEpisode(ctx context.Context, id utility.EpisodeID) (Episode, error) {
	var e Episode
	var initial string
	var final *string
	var stats []byte

	err := s.pool.QueryRow(ctx, `
		SELECT episode_id, symbols, policy, initial_balance::text, started_at,
		       steps, total_reward, final_value::text, statistics, finished_at
		FROM episodes
		WHERE episode_id = $1
	`, id).Scan(&e.EpisodeID, &e.Symbols, &e.Policy, &initial, &e.StartedAt,
		&e.Steps, &e.TotalReward, &final, &stats, &e.FinishedAt)
	if err != nil {
		if isNotFoundError(err) {
			return Episode{}, fmt.Errorf("episode %s: %w", id, storage.ErrNotFound)
		}
		return Episode{}, fmt.Errorf("query episode: %w", err)
	}

	if e.InitialBalance, err = fixed.FromString(initial); err != nil {
		return Episode{}, fmt.Errorf("parse initial balance: %w", err)
	}
	if final != nil {
		if e.FinalValue, err = fixed.FromString(*final); err != nil {
			return Episode{}, fmt.Errorf("parse final value: %w", err)
		}
	}
	if stats != nil {
		e.Statistics = &simulation.PortfolioStatistics{}
		if err := json.Unmarshal(stats, e.Statistics); err != nil {
			return Episode{}, fmt.Errorf("decode statistics: %w", err)
		}
	}
	return e, nil
}

func (s *EpisodeStore) Trades(ctx context.Context, id utility.EpisodeID) ([]common.Trade, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT symbol, step, side, reason, shares, price::text, cash_delta::text, fee::text, tax::text
		FROM episode_trades
		WHERE episode_id = $1
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []common.Trade
	for rows.Next() {
		var t common.Trade
		var side, reason, price, cashDelta, fee, tax string
		if err := rows.Scan(&t.Symbol, &t.Step, &side, &reason, &t.Shares, &price, &cashDelta, &fee, &tax); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Side = common.TradeSide(side)
		t.Reason = common.TradeReason(reason)
		for _, f := range []struct {
			dst *fixed.Point
			raw string
		}{{&t.Price, price}, {&t.CashDelta, cashDelta}, {&t.Fee, fee}, {&t.Tax, tax}} {
			if *f.dst, err = fixed.FromString(f.raw); err != nil {
				return nil, fmt.Errorf("parse trade amount %q: %w", f.raw, err)
			}
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return trades, nil
}
