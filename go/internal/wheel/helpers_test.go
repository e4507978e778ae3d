package wheel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/wheelspin/go/internal/models"
	"github.com/stretchr/testify/require"
)

var errAudioUnavailable = errors.New("audio unavailable")

// recorder stands in for every collaborator and records calls in order,
// together with the clock offset at which each happened.
type recorder struct {
	clock clockwork.Clock
	start time.Time

	mu        sync.Mutex
	calls     []string
	at        map[string]time.Duration
	layouts   [][]Slice
	rotations []RotateCommand
	gains     []float64
	announced []SpinOutcome
	outcomes  []SpinOutcome
	failAudio bool
}

func newRecorder(clock clockwork.Clock) *recorder {
	return &recorder{clock: clock, start: clock.Now(), at: map[string]time.Duration{}}
}

func (r *recorder) record(call string) {
	r.calls = append(r.calls, call)
	if _, seen := r.at[call]; !seen {
		r.at[call] = r.clock.Now().Sub(r.start)
	}
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.at = map[string]time.Duration{}
	r.start = r.clock.Now()
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) Offset(call string) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.at[call]
	return d, ok
}

func (r *recorder) RenderLayout(_ context.Context, _ []models.Entry, layout []Slice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("render")
	r.layouts = append(r.layouts, layout)
}

func (r *recorder) ClearAnnouncement(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("clear")
}

func (r *recorder) SetSpinEnabled(_ context.Context, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(fmt.Sprintf("enabled:%t", enabled))
}

func (r *recorder) AnnounceWinner(_ context.Context, outcome SpinOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("announce")
	r.announced = append(r.announced, outcome)
}

func (r *recorder) Celebrate(context.Context, SpinOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("celebrate")
}

func (r *recorder) Rotate(_ context.Context, cmd RotateCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("rotate")
	r.rotations = append(r.rotations, cmd)
	return nil
}

func (r *recorder) Play(_ context.Context, cue Cue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("play:" + string(cue))
	if r.failAudio {
		return errAudioUnavailable
	}
	return nil
}

func (r *recorder) SetGain(_ context.Context, cue Cue, gain float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("gain:" + string(cue))
	r.gains = append(r.gains, gain)
	if r.failAudio {
		return errAudioUnavailable
	}
	return nil
}

func (r *recorder) Stop(_ context.Context, cue Cue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("stop:" + string(cue))
	if r.failAudio {
		return errAudioUnavailable
	}
	return nil
}

func (r *recorder) OnSpinOutcome(_ context.Context, outcome SpinOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("outcome")
	r.outcomes = append(r.outcomes, outcome)
}

// fixedRand always draws the same index.
type fixedRand int

func (f fixedRand) IntN(n int) int {
	return int(f) % n
}

var defaultTeam = []models.SeedEntry{
	{Name: "Rachel"},
	{Name: "Matt"},
	{Name: "Davon"},
	{Name: "Rob"},
	{Name: "Racheal"},
	{Name: "Bobby"},
}

func newTestController(t *testing.T, opts ...Option) (*Controller, *recorder, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	rec := newRecorder(clock)
	opts = append([]Option{WithClock(clock), WithListeners(rec)}, opts...)
	c, err := NewController(DefaultTiming(), rec, rec, rec, opts...)
	require.NoError(t, err)
	return c, rec, clock
}

// settle advances the fake clock in 100ms steps until the spin resolves.
func settle(t *testing.T, clock *clockwork.FakeClock, s *Spin) (SpinOutcome, error) {
	t.Helper()
	for i := 0; i < 500; i++ {
		select {
		case <-s.Done():
			return s.Result()
		default:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		err := clock.BlockUntilContext(ctx, 1)
		cancel()
		if err == nil {
			clock.Advance(100 * time.Millisecond)
		}
	}
	t.Fatal("spin did not settle")
	return SpinOutcome{}, nil
}
