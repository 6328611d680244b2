package common

import "fmt"

// Action is persisted by its integer value in journals and checkpoints, never renumber.
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

const ActionCount = 3

func (a Action) Valid() bool {
	return a >= ActionHold && a <= ActionSell
}

func (a Action) String() string {
	switch a {
	case ActionHold:
		return "HOLD"
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid action %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func ParseAction(s string) (Action, error) {
	switch s {
	case "HOLD", "hold", "0":
		return ActionHold, nil
	case "BUY", "buy", "1":
		return ActionBuy, nil
	case "SELL", "sell", "2":
		return ActionSell, nil
	}
	return ActionHold, fmt.Errorf("unknown action %q", s)
}
