package policy

import (
	"github.com/peter-kozarec/equitygym/pkg/common"
)

// Scripted replays a fixed action sequence per symbol and holds once a
// sequence runs out. Symbols without a script always hold.
type Scripted struct {
	scripts map[string][]common.Action
	cursor  map[string]int
}

func NewScripted(scripts map[string][]common.Action) *Scripted {
	return &Scripted{
		scripts: scripts,
		cursor:  make(map[string]int, len(scripts)),
	}
}

func (s *Scripted) Decide(symbol string, _ []float64) common.Action {
	script := s.scripts[symbol]
	idx := s.cursor[symbol]
	s.cursor[symbol] = idx + 1

	if idx >= len(script) {
		return common.ActionHold
	}
	return script[idx]
}

// Rewind starts every script from the beginning.
func (s *Scripted) Rewind() {
	clear(s.cursor)
}
