package policy

import (
	"math/rand"

	"github.com/peter-kozarec/equitygym/pkg/common"
)

type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Decide(string, []float64) common.Action {
	return common.Action(r.rng.Intn(common.ActionCount))
}
