package wheel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Spin is the handle of one in-flight or finished spin.
type Spin struct {
	Plan SpinPlan

	done    chan struct{}
	outcome SpinOutcome
	err     error
}

// Done is closed once the spin has settled or been cancelled.
func (s *Spin) Done() <-chan struct{} {
	return s.done
}

// Result returns the committed outcome. It must only be called after Done is closed.
func (s *Spin) Result() (SpinOutcome, error) {
	return s.outcome, s.err
}

// Wait blocks until the spin finishes or ctx is done.
func (s *Spin) Wait(ctx context.Context) (SpinOutcome, error) {
	select {
	case <-s.done:
		return s.outcome, s.err
	case <-ctx.Done():
		return SpinOutcome{}, ctx.Err()
	}
}

// Spin draws a winner uniformly from the active entries and starts the timed
// rotation sequence. The returned handle resolves when the wheel settles.
//
// Calling Spin while a spin is in flight is a no-op that returns the in-flight
// handle. With no active entries it fails with ErrNoActiveEntries.
func (c *Controller) Spin(ctx context.Context) (*Spin, error) {
	c.mu.Lock()
	if c.spinning {
		current := c.current
		c.mu.Unlock()
		log.Debug().Str("wheel_id", c.id.String()).Msg("spin requested while spinning - ignoring")
		return current, nil
	}

	layout := ComputeLayout(c.entries)
	n := len(layout)
	if n == 0 {
		c.mu.Unlock()
		return nil, ErrNoActiveEntries
	}

	idx := c.rng.IntN(n)
	target := TargetOffset(idx, n)
	plan := SpinPlan{
		SpinID:       uuid.New(),
		WheelID:      c.id,
		Winner:       layout[idx].Entry,
		WinnerIndex:  idx,
		SliceCount:   n,
		TargetOffset: target,
		From:         c.rotation,
		Travel:       Travel(c.rotation, target, c.timing.FullTurns),
		Duration:     c.timing.Duration,
		Easing:       c.timing.Easing,
		StartedAt:    c.clock.Now(),
	}

	spinCtx, cancel := context.WithCancel(ctx)
	s := &Spin{Plan: plan, done: make(chan struct{})}
	c.spinning = true
	c.phase = PhaseRotating
	c.current = s
	c.cancelSpin = cancel
	c.lastOutcome = nil
	c.mu.Unlock()

	log.Info().
		Str("wheel_id", c.id.String()).
		Str("spin_id", plan.SpinID.String()).
		Int("slices", n).
		Int("winner_index", idx).
		Float64("target_offset", target).
		Float64("travel", plan.Travel).
		Msg("spin started")

	c.renderer.ClearAnnouncement(spinCtx)
	c.renderer.SetSpinEnabled(spinCtx, false)

	go c.run(spinCtx, cancel, s, layout)

	return s, nil
}

// CancelSpin aborts the in-flight spin, if any. The baseline rotation is left
// untouched and no outcome is recorded.
func (c *Controller) CancelSpin() bool {
	c.mu.Lock()
	cancel := c.cancelSpin
	c.mu.Unlock()
	if cancel == nil {
		return false
	}
	cancel()
	return true
}

// run executes the phases of one spin in order. Each wait is a single
// clock timer, so at most one timer is pending at any time.
func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, s *Spin, layout []Slice) {
	defer cancel()
	plan := s.Plan
	start := plan.StartedAt

	if err := c.animator.Rotate(ctx, RotateCommand{
		SpinID:   plan.SpinID,
		From:     plan.From,
		To:       plan.To(),
		Duration: plan.Duration,
		Easing:   plan.Easing,
	}); err != nil {
		log.Warn().Err(err).Str("spin_id", plan.SpinID.String()).Msg("animator rotate failed")
	}
	c.playCue(ctx, CueSpinStart)

	if err := c.sleepUntil(ctx, start.Add(c.timing.TickDelay)); err != nil {
		c.abort(s, err, false)
		return
	}
	c.setPhase(PhaseTicking)
	c.playCue(ctx, CueTicking)

	if err := c.sleepUntil(ctx, start.Add(c.timing.FadeStart)); err != nil {
		c.abort(s, err, true)
		return
	}
	c.setPhase(PhaseFading)
	for step := 1; step <= c.timing.FadeSteps; step++ {
		if err := c.sleepUntil(ctx, start.Add(c.timing.FadeStart+time.Duration(step)*c.timing.FadeStep)); err != nil {
			c.abort(s, err, true)
			return
		}
		gain := 1 - float64(step)/float64(c.timing.FadeSteps)
		if step == c.timing.FadeSteps || gain <= 0 {
			break
		}
		if err := c.audio.SetGain(ctx, CueTicking, gain); err != nil {
			log.Debug().Err(err).Str("cue", string(CueTicking)).Msg("audio gain change failed")
		}
	}
	c.stopCue(ctx, CueTicking)
	c.setPhase(PhaseSettling)

	if err := c.sleepUntil(ctx, start.Add(c.timing.Duration)); err != nil {
		c.abort(s, err, false)
		return
	}

	c.settle(ctx, s, layout)
}

func (c *Controller) settle(ctx context.Context, s *Spin, layout []Slice) {
	plan := s.Plan
	outcome := SpinOutcome{
		SpinID:       plan.SpinID,
		WheelID:      plan.WheelID,
		Winner:       plan.Winner,
		WinnerIndex:  plan.WinnerIndex,
		SliceCount:   plan.SliceCount,
		TargetOffset: plan.TargetOffset,
		Travel:       plan.Travel,
		Rotation:     plan.FinalRotation(),
		Layout:       layout,
		StartedAt:    plan.StartedAt,
		SettledAt:    c.clock.Now(),
	}

	c.mu.Lock()
	c.spinning = false
	c.phase = PhaseIdle
	c.rotation = outcome.Rotation
	c.lastOutcome = &outcome
	c.current = nil
	c.cancelSpin = nil
	c.mu.Unlock()

	s.outcome = outcome

	log.Info().
		Str("wheel_id", c.id.String()).
		Str("spin_id", plan.SpinID.String()).
		Str("winner_id", plan.Winner.ID.String()).
		Str("winner", plan.Winner.Name).
		Float64("rotation", outcome.Rotation).
		Msg("spin settled")

	c.renderer.SetSpinEnabled(ctx, true)
	c.renderer.AnnounceWinner(ctx, outcome)
	if err := c.audio.Play(ctx, CueCelebration); err != nil {
		log.Debug().Err(err).Msg("celebration cue failed, retrying once")
		c.playCue(ctx, CueCelebration)
	}
	c.renderer.Celebrate(ctx, outcome)

	for _, l := range c.listeners {
		l.OnSpinOutcome(ctx, outcome)
	}

	close(s.done)
}

func (c *Controller) abort(s *Spin, err error, ticking bool) {
	// ctx is already done; collaborators get a fresh one for teardown.
	teardown := context.Background()
	if ticking {
		c.stopCue(teardown, CueTicking)
	}

	c.mu.Lock()
	c.spinning = false
	c.phase = PhaseIdle
	c.current = nil
	c.cancelSpin = nil
	c.mu.Unlock()

	s.err = err

	log.Info().
		Err(err).
		Str("wheel_id", c.id.String()).
		Str("spin_id", s.Plan.SpinID.String()).
		Msg("spin cancelled")

	c.renderer.SetSpinEnabled(teardown, true)
	close(s.done)
}

// sleepUntil waits for the clock to reach deadline or ctx to be done.
func (c *Controller) sleepUntil(ctx context.Context, deadline time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d := deadline.Sub(c.clock.Now())
	if d <= 0 {
		return nil
	}
	timer := c.clock.NewTimer(d)
	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		stopAndDrainTimer(timer)
		return ctx.Err()
	}
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
	log.Debug().Str("wheel_id", c.id.String()).Str("phase", string(p)).Msg("spin phase")
}

func (c *Controller) playCue(ctx context.Context, cue Cue) {
	if err := c.audio.Play(ctx, cue); err != nil {
		log.Warn().Err(err).Str("cue", string(cue)).Msg("audio play failed")
	}
}

func (c *Controller) stopCue(ctx context.Context, cue Cue) {
	if err := c.audio.Stop(ctx, cue); err != nil {
		log.Warn().Err(err).Str("cue", string(cue)).Msg("audio stop failed")
	}
}
