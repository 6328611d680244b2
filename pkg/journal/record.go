package journal

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/simulation"
	"github.com/peter-kozarec/equitygym/pkg/utility"
	"github.com/peter-kozarec/equitygym/pkg/utility/fixed"
	"google.golang.org/protobuf/encoding/protowire"
)

var ErrCorrupt = errors.New("corrupt journal")

// Top level fields of the journal stream.
const (
	fieldHeader protowire.Number = 1
	fieldEntry  protowire.Number = 2
)

const (
	headerVersion protowire.Number = 1
	headerEpisode protowire.Number = 2
	headerSymbol  protowire.Number = 3
)

const (
	entryStep       protowire.Number = 1
	entryActions    protowire.Number = 2
	entryReward     protowire.Number = 3
	entryDone       protowire.Number = 4
	entryTotalValue protowire.Number = 5
	entryTrade      protowire.Number = 6
)

const (
	tradeSymbol protowire.Number = iota + 1
	tradeStep
	tradeSide
	tradeReason
	tradeShares
	tradePrice
	tradeCashDelta
	tradeFee
	tradeTax
)

const formatVersion = 1

type Header struct {
	EpisodeID utility.EpisodeID
	Symbols   []string
}

type Entry struct {
	Step       int
	Actions    []common.Action
	Reward     float64
	Done       bool
	TotalValue fixed.Point
	Trades     []common.Trade
}

func entryOf(tr simulation.Transition) Entry {
	return Entry{
		Step:       tr.Step,
		Actions:    tr.Actions,
		Reward:     tr.Reward,
		Done:       tr.Done,
		TotalValue: tr.Info.TotalValue,
		Trades:     tr.Trades(),
	}
}

func appendHeader(b []byte, h Header) []byte {
	b = protowire.AppendTag(b, headerVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, formatVersion)
	b = protowire.AppendTag(b, headerEpisode, protowire.BytesType)
	b = protowire.AppendBytes(b, h.EpisodeID[:])
	for _, symbol := range h.Symbols {
		b = protowire.AppendTag(b, headerSymbol, protowire.BytesType)
		b = protowire.AppendString(b, symbol)
	}
	return b
}

func appendEntry(b []byte, e Entry) []byte {
	b = protowire.AppendTag(b, entryStep, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(e.Step))

	var packed []byte
	for _, action := range e.Actions {
		packed = protowire.AppendVarint(packed, uint64(action))
	}
	b = protowire.AppendTag(b, entryActions, protowire.BytesType)
	b = protowire.AppendBytes(b, packed)

	b = protowire.AppendTag(b, entryReward, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(e.Reward))
	b = protowire.AppendTag(b, entryDone, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(e.Done))
	b = protowire.AppendTag(b, entryTotalValue, protowire.BytesType)
	b = protowire.AppendString(b, e.TotalValue.String())

	for _, trade := range e.Trades {
		b = protowire.AppendTag(b, entryTrade, protowire.BytesType)
		b = protowire.AppendBytes(b, appendTrade(nil, trade))
	}
	return b
}

func appendTrade(b []byte, t common.Trade) []byte {
	b = protowire.AppendTag(b, tradeSymbol, protowire.BytesType)
	b = protowire.AppendString(b, t.Symbol)
	b = protowire.AppendTag(b, tradeStep, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(t.Step))
	b = protowire.AppendTag(b, tradeSide, protowire.BytesType)
	b = protowire.AppendString(b, string(t.Side))
	b = protowire.AppendTag(b, tradeReason, protowire.BytesType)
	b = protowire.AppendString(b, string(t.Reason))
	b = protowire.AppendTag(b, tradeShares, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(t.Shares))
	for _, f := range []struct {
		num   protowire.Number
		value fixed.Point
	}{
		{tradePrice, t.Price},
		{tradeCashDelta, t.CashDelta},
		{tradeFee, t.Fee},
		{tradeTax, t.Tax},
	} {
		b = protowire.AppendTag(b, f.num, protowire.BytesType)
		b = protowire.AppendString(b, f.value.String())
	}
	return b
}

// fields walks the top level fields of a message.
func fields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrCorrupt, num, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}

func consumeVarint(b []byte, dst *uint64) (int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
	}
	*dst = v
	return n, nil
}

func consumeBytes(b []byte, dst *[]byte) (int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
	}
	*dst = v
	return n, nil
}

func consumePoint(b []byte, dst *fixed.Point) (int, error) {
	var raw []byte
	n, err := consumeBytes(b, &raw)
	if err != nil {
		return 0, err
	}
	if err := dst.UnmarshalText(raw); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return n, nil
}

func decodeHeader(b []byte) (Header, error) {
	var h Header
	var version uint64
	err := fields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case headerVersion:
			return consumeVarint(b, &version)
		case headerEpisode:
			var raw []byte
			n, err := consumeBytes(b, &raw)
			if err != nil {
				return 0, err
			}
			id, err := uuid.FromBytes(raw)
			if err != nil {
				return 0, fmt.Errorf("%w: episode id: %v", ErrCorrupt, err)
			}
			h.EpisodeID = id
			return n, nil
		case headerSymbol:
			var raw []byte
			n, err := consumeBytes(b, &raw)
			h.Symbols = append(h.Symbols, string(raw))
			return n, err
		}
		return 0, nil
	})
	if err != nil {
		return Header{}, err
	}
	if version != formatVersion {
		return Header{}, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, version)
	}
	return h, nil
}

func decodeEntry(b []byte) (Entry, error) {
	var e Entry
	err := fields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case entryStep:
			var v uint64
			n, err := consumeVarint(b, &v)
			e.Step = int(v)
			return n, err
		case entryActions:
			var packed []byte
			n, err := consumeBytes(b, &packed)
			if err != nil {
				return 0, err
			}
			for len(packed) > 0 {
				var v uint64
				m, err := consumeVarint(packed, &v)
				if err != nil {
					return 0, err
				}
				action := common.Action(v)
				if !action.Valid() {
					return 0, fmt.Errorf("%w: action %d", ErrCorrupt, v)
				}
				e.Actions = append(e.Actions, action)
				packed = packed[m:]
			}
			return n, nil
		case entryReward:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return 0, fmt.Errorf("%w: %v", ErrCorrupt, protowire.ParseError(n))
			}
			e.Reward = math.Float64frombits(v)
			return n, nil
		case entryDone:
			var v uint64
			n, err := consumeVarint(b, &v)
			e.Done = protowire.DecodeBool(v)
			return n, err
		case entryTotalValue:
			return consumePoint(b, &e.TotalValue)
		case entryTrade:
			var raw []byte
			n, err := consumeBytes(b, &raw)
			if err != nil {
				return 0, err
			}
			trade, err := decodeTrade(raw)
			if err != nil {
				return 0, err
			}
			e.Trades = append(e.Trades, trade)
			return n, nil
		}
		return 0, nil
	})
	return e, err
}

func decodeTrade(b []byte) (common.Trade, error) {
	var t common.Trade
	err := fields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var raw []byte
		var v uint64
		switch num {
		case tradeSymbol:
			n, err := consumeBytes(b, &raw)
			t.Symbol = string(raw)
			return n, err
		case tradeStep:
			n, err := consumeVarint(b, &v)
			t.Step = int(v)
			return n, err
		case tradeSide:
			n, err := consumeBytes(b, &raw)
			t.Side = common.TradeSide(raw)
			return n, err
		case tradeReason:
			n, err := consumeBytes(b, &raw)
			t.Reason = common.TradeReason(raw)
			return n, err
		case tradeShares:
			n, err := consumeVarint(b, &v)
			t.Shares = protowire.DecodeZigZag(v)
			return n, err
		case tradePrice:
			return consumePoint(b, &t.Price)
		case tradeCashDelta:
			return consumePoint(b, &t.CashDelta)
		case tradeFee:
			return consumePoint(b, &t.Fee)
		case tradeTax:
			return consumePoint(b, &t.Tax)
		}
		return 0, nil
	})
	return t, err
}
