package policy

import (
	"github.com/peter-kozarec/equitygym/pkg/common"
	"github.com/peter-kozarec/equitygym/pkg/simulation"
)

var _ simulation.Policy = Hold{}

// Hold never trades. Its episode is the baseline every other policy is scored against.
type Hold struct{}

func (Hold) Decide(string, []float64) common.Action {
	return common.ActionHold
}
