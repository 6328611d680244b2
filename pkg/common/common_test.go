package common

import (
	"encoding/json"
	"testing"

	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAction_Encoding(t *testing.T) {
	tests := []struct {
		action Action
		value  int
		name   string
	}{
		{ActionHold, 0, "HOLD"},
		{ActionBuy, 1, "BUY"},
		{ActionSell, 2, "SELL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.value, int(tt.action))
			assert.Equal(t, tt.name, tt.action.String())
			assert.True(t, tt.action.Valid())

			parsed, err := ParseAction(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.action, parsed)
		})
	}
}

func TestAction_Invalid(t *testing.T) {
	assert.False(t, Action(3).Valid())
	assert.False(t, Action(-1).Valid())

	_, err := Action(7).MarshalText()
	assert.Error(t, err)

	_, err = ParseAction("SHORT")
	assert.Error(t, err)
}

func TestAction_JSON(t *testing.T) {
	data, err := json.Marshal([]Action{ActionBuy, ActionHold})
	require.NoError(t, err)
	assert.JSONEq(t, `["BUY","HOLD"]`, string(data))

	var decoded []Action
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []Action{ActionBuy, ActionHold}, decoded)
}

func TestTrade_Notional(t *testing.T) {
	trade := Trade{Side: TradeSideSell, Reason: TradeReasonTakeProfit, Shares: 182, Price: fixed.FromInt64(130, 0)}

	assert.Equal(t, "23660", trade.Notional().String())
	assert.True(t, trade.IsSell())
	assert.True(t, trade.IsForced())
}

func TestSeries_Window(t *testing.T) {
	bars := make([]Bar, 5)
	for i := range bars {
		bars[i].Close = fixed.FromInt(i, 0)
	}
	series := NewSeries("AAA", bars)

	assert.Len(t, series.Window(-3, 2), 2)
	assert.Len(t, series.Window(3, 10), 2)
	assert.Nil(t, series.Window(4, 4))
	assert.Equal(t, "4", series.Close(4).String())
}
