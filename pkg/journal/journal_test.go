package journal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/simulation"
	"github.com/peter-kozarec/equitygym/pkg/utility"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func transition(episode utility.EpisodeID, step int, done bool, trades ...common.Trade) simulation.Transition {
	return simulation.Transition{
		EpisodeID: episode,
		Step:      step,
		Symbols:   []string{"AAA", "BBB"},
		Actions:   []common.Action{common.ActionBuy, common.ActionSell},
		Reward:    -0.1425 + float64(step),
		Done:      done,
		Info: simulation.PortfolioInfo{
			TotalValue: fixed.MustString("99985.75"),
			Trades:     trades,
		},
	}
}

func TestJournal_RoundTrip(t *testing.T) {
	trade := common.Trade{
		Symbol:    "AAA",
		Step:      0,
		Side:      common.TradeSideBuy,
		Reason:    common.TradeReasonPolicy,
		Shares:    475,
		Price:     fixed.FromInt(100, 0),
		CashDelta: fixed.MustString("-47514.25"),
		Fee:       fixed.MustString("14.25"),
		Tax:       fixed.Zero,
	}

	first, second := utility.NewEpisodeID(), utility.NewEpisodeID()

	var buf bytes.Buffer
	w := NewWriter(zap.NewNop(), &buf)
	handler := w.WithTransition(func(context.Context, simulation.Transition) {})
	handler(context.Background(), transition(first, 0, false, trade))
	handler(context.Background(), transition(first, 1, true))
	handler(context.Background(), transition(second, 0, true))
	require.NoError(t, w.Flush())

	episodes, err := NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, episodes, 2)

	assert.Equal(t, first, episodes[0].Header.EpisodeID)
	assert.Equal(t, []string{"AAA", "BBB"}, episodes[0].Header.Symbols)
	require.Len(t, episodes[0].Entries, 2)

	entry := episodes[0].Entries[0]
	assert.Equal(t, 0, entry.Step)
	assert.Equal(t, []common.Action{common.ActionBuy, common.ActionSell}, entry.Actions)
	assert.Equal(t, -0.1425, entry.Reward)
	assert.False(t, entry.Done)
	assert.Equal(t, "99985.75", entry.TotalValue.String())
	require.Len(t, entry.Trades, 1)
	assert.Equal(t, trade.Shares, entry.Trades[0].Shares)
	assert.Equal(t, trade.Side, entry.Trades[0].Side)
	assert.True(t, trade.CashDelta.Eq(entry.Trades[0].CashDelta))

	assert.True(t, episodes[0].Entries[1].Done)
	assert.Equal(t, second, episodes[1].Header.EpisodeID)
	assert.Len(t, episodes[1].Entries, 1)
}

func TestJournal_ActionEncodingIsStable(t *testing.T) {
	payload := appendEntry(nil, Entry{Actions: []common.Action{common.ActionHold, common.ActionBuy, common.ActionSell}})

	// step=0, then packed actions 0,1,2
	assert.Equal(t, []byte{0x08, 0x00, 0x12, 0x03, 0x00, 0x01, 0x02}, payload[:7])
}

func TestJournal_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"entry before header", appendRecord(nil, fieldEntry, appendEntry(nil, Entry{}))},
		{"unknown record", appendRecord(nil, 9, nil)},
		{"truncated", appendRecord(nil, fieldHeader, appendHeader(nil, Header{EpisodeID: utility.NewEpisodeID()}))[:10]},
		{"invalid action", append(
			appendRecord(nil, fieldHeader, appendHeader(nil, Header{EpisodeID: utility.NewEpisodeID()})),
			appendRecord(nil, fieldEntry, []byte{0x12, 0x01, 0x07})...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(tt.data)).ReadAll()
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestJournal_Empty(t *testing.T) {
	_, err := NewReader(bytes.NewReader(nil)).ReadEpisode()
	assert.ErrorIs(t, err, io.EOF)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestJournal_WriteErrorIsSticky(t *testing.T) {
	w := NewWriter(zap.NewNop(), failingWriter{})
	episode := utility.NewEpisodeID()

	// buffered until flush
	require.NoError(t, w.Write(transition(episode, 0, false)))
	assert.Error(t, w.Flush())
	assert.Error(t, w.Write(transition(episode, 1, false)))
	assert.Equal(t, w.Err(), w.Flush())
}
