package policy

import (
	"fmt"

	"github.com/peter-kozarec/equitygym/pkg/simulation"
)

const (
	NameHold   = "hold"
	NameRandom = "random"
	NameRsi    = "rsi"
)

// New builds a policy by its command line name.
func New(name string, seed int64) (simulation.Policy, error) {
	switch name {
	case NameHold:
		return Hold{}, nil
	case NameRandom:
		return NewRandom(seed), nil
	case NameRsi:
		return DefaultRsiReversion(), nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}
