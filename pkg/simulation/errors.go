package simulation

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidAction = errors.New("invalid action")
	ErrArityMismatch = errors.New("action count does not match symbol count")
	ErrNotResettable = errors.New("episode terminated, reset required")
)
