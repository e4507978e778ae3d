package wheel

import (
	"errors"
	"fmt"
)

// ErrInvalidState is returned when an operation is not allowed in the wheel's current state.
var ErrInvalidState = errors.New("invalid wheel state")

// ErrNoActiveEntries is returned when a spin is requested with every entry hidden or none added.
var ErrNoActiveEntries = fmt.Errorf("%w: no active entries to spin", ErrInvalidState)

// ErrSpinInProgress is returned by roster mutations attempted while the wheel is spinning.
var ErrSpinInProgress = fmt.Errorf("%w: spin in progress", ErrInvalidState)

// ErrInvalidTiming is returned when a Timing would cut the spin sequence short.
var ErrInvalidTiming = errors.New("invalid spin timing")
