package wheel

import (
	"fmt"
	"time"
)

// DefaultEasing is the ease-out curve the browser applies to the rotation.
const DefaultEasing = "cubic-bezier(0.32, 0, 0.23, 1)"

// Timing holds the constants of one spin sequence. All offsets are measured
// from the moment the spin starts.
type Timing struct {
	Duration  time.Duration `yaml:"duration" json:"duration"`
	FullTurns int           `yaml:"full_turns" json:"full_turns"`
	TickDelay time.Duration `yaml:"tick_delay" json:"tick_delay"`
	FadeStart time.Duration `yaml:"fade_start" json:"fade_start"`
	FadeStep  time.Duration `yaml:"fade_step" json:"fade_step"`
	FadeSteps int           `yaml:"fade_steps" json:"fade_steps"`
	Easing    string        `yaml:"easing" json:"easing"`
}

// DefaultTiming returns the six second, eight turn sequence.
func DefaultTiming() Timing {
	return Timing{
		Duration:  6 * time.Second,
		FullTurns: 8,
		TickDelay: 200 * time.Millisecond,
		FadeStart: 4 * time.Second,
		FadeStep:  100 * time.Millisecond,
		FadeSteps: 10,
		Easing:    DefaultEasing,
	}
}

// FadeEnd is the offset at which the ticking cue is stopped.
func (t Timing) FadeEnd() time.Duration {
	return t.FadeStart + time.Duration(t.FadeSteps)*t.FadeStep
}

// Validate checks that the phases are strictly ordered and the tick fade
// finishes before the rotation settles.
func (t Timing) Validate() error {
	switch {
	case t.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidTiming)
	case t.FullTurns < 0:
		return fmt.Errorf("%w: full_turns must not be negative", ErrInvalidTiming)
	case t.TickDelay < 0:
		return fmt.Errorf("%w: tick_delay must not be negative", ErrInvalidTiming)
	case t.FadeStart <= t.TickDelay:
		return fmt.Errorf("%w: fade_start %s must come after tick_delay %s", ErrInvalidTiming, t.FadeStart, t.TickDelay)
	case t.FadeStep <= 0 || t.FadeSteps <= 0:
		return fmt.Errorf("%w: fade_step and fade_steps must be positive", ErrInvalidTiming)
	case t.FadeEnd() >= t.Duration:
		return fmt.Errorf("%w: tick fade ends at %s, not before settle at %s", ErrInvalidTiming, t.FadeEnd(), t.Duration)
	}
	return nil
}
