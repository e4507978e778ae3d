package wheel

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/wheelspin/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Controller owns one wheel: its roster, the geometry derived from it, and the
// timed spin sequence. All state is guarded by a single mutex; collaborators
// are always called with the mutex released.
type Controller struct {
	id       uuid.UUID
	timing   Timing
	clock    clockwork.Clock
	rng      Rand
	renderer Renderer
	animator Animator
	audio    AudioPlayer

	listeners []OutcomeListener

	mu          sync.Mutex
	entries     []models.Entry
	spinning    bool
	phase       Phase
	rotation    float64
	lastOutcome *SpinOutcome
	current     *Spin
	cancelSpin  context.CancelFunc
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock replaces the real clock, typically with a clockwork.FakeClock in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithRand replaces the winner draw source.
func WithRand(rng Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

// WithID fixes the wheel id instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(c *Controller) { c.id = id }
}

// WithListeners registers outcome listeners.
func WithListeners(listeners ...OutcomeListener) Option {
	return func(c *Controller) { c.listeners = append(c.listeners, listeners...) }
}

// NewController creates an idle wheel with an empty roster.
func NewController(timing Timing, renderer Renderer, animator Animator, audio AudioPlayer, opts ...Option) (*Controller, error) {
	if err := timing.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		id:       uuid.New(),
		timing:   timing,
		clock:    clockwork.NewRealClock(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		renderer: renderer,
		animator: animator,
		audio:    audio,
		phase:    PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ID returns the wheel id.
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// Timing returns the spin sequence constants.
func (c *Controller) Timing() Timing {
	return c.timing
}

// AddEntry appends a visible entry with a fresh id. The name is expected to
// have been validated by the caller.
func (c *Controller) AddEntry(ctx context.Context, name, imageRef string) (models.Entry, error) {
	c.mu.Lock()
	if c.spinning {
		c.mu.Unlock()
		return models.Entry{}, ErrSpinInProgress
	}
	entry := models.Entry{
		ID:        uuid.New(),
		Name:      name,
		ImageRef:  imageRef,
		CreatedAt: c.clock.Now(),
	}
	c.entries = append(c.entries, entry)
	entries, layout := c.viewLocked()
	c.mu.Unlock()

	log.Debug().
		Str("wheel_id", c.id.String()).
		Str("entry_id", entry.ID.String()).
		Str("name", entry.Name).
		Msg("entry added")

	c.renderer.RenderLayout(ctx, entries, layout)
	return entry, nil
}

// RemoveEntry deletes the entry with the given id. Unknown ids are a no-op
// and report false.
func (c *Controller) RemoveEntry(ctx context.Context, id uuid.UUID) (bool, error) {
	c.mu.Lock()
	if c.spinning {
		c.mu.Unlock()
		return false, ErrSpinInProgress
	}
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return false, nil
	}
	c.entries = append(c.entries[:idx], c.entries[idx+1:]...)
	entries, layout := c.viewLocked()
	c.mu.Unlock()

	log.Debug().Str("wheel_id", c.id.String()).Str("entry_id", id.String()).Msg("entry removed")

	c.renderer.RenderLayout(ctx, entries, layout)
	return true, nil
}

// SetHidden includes or excludes an entry from future spins. Unknown ids are
// a no-op and report false.
func (c *Controller) SetHidden(ctx context.Context, id uuid.UUID, hidden bool) (bool, error) {
	c.mu.Lock()
	if c.spinning {
		c.mu.Unlock()
		return false, ErrSpinInProgress
	}
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return false, nil
	}
	changed := c.entries[idx].Hidden != hidden
	c.entries[idx].Hidden = hidden
	entries, layout := c.viewLocked()
	c.mu.Unlock()

	if !changed {
		return true, nil
	}

	log.Debug().
		Str("wheel_id", c.id.String()).
		Str("entry_id", id.String()).
		Bool("hidden", hidden).
		Msg("entry visibility changed")

	c.renderer.RenderLayout(ctx, entries, layout)
	return true, nil
}

// ToggleHidden flips an entry's hidden flag and returns the updated entry.
func (c *Controller) ToggleHidden(ctx context.Context, id uuid.UUID) (models.Entry, bool, error) {
	c.mu.Lock()
	if c.spinning {
		c.mu.Unlock()
		return models.Entry{}, false, ErrSpinInProgress
	}
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return models.Entry{}, false, nil
	}
	c.entries[idx].Hidden = !c.entries[idx].Hidden
	entry := c.entries[idx]
	entries, layout := c.viewLocked()
	c.mu.Unlock()

	c.renderer.RenderLayout(ctx, entries, layout)
	return entry, true, nil
}

// Clear removes every entry and the last announcement.
func (c *Controller) Clear(ctx context.Context) error {
	c.mu.Lock()
	if c.spinning {
		c.mu.Unlock()
		return ErrSpinInProgress
	}
	c.entries = nil
	c.lastOutcome = nil
	entries, layout := c.viewLocked()
	c.mu.Unlock()

	log.Info().Str("wheel_id", c.id.String()).Msg("roster cleared")

	c.renderer.ClearAnnouncement(ctx)
	c.renderer.RenderLayout(ctx, entries, layout)
	return nil
}

// Seed replaces the roster with the given entries, all visible.
func (c *Controller) Seed(ctx context.Context, seeds []models.SeedEntry) error {
	c.mu.Lock()
	if c.spinning {
		c.mu.Unlock()
		return ErrSpinInProgress
	}
	now := c.clock.Now()
	c.entries = make([]models.Entry, 0, len(seeds))
	for _, s := range seeds {
		c.entries = append(c.entries, models.Entry{
			ID:        uuid.New(),
			Name:      s.Name,
			ImageRef:  s.ImageRef,
			CreatedAt: now,
		})
	}
	entries, layout := c.viewLocked()
	c.mu.Unlock()

	log.Info().Str("wheel_id", c.id.String()).Int("entries", len(entries)).Msg("roster seeded")

	c.renderer.RenderLayout(ctx, entries, layout)
	return nil
}

// Entry looks up an entry by id.
func (c *Controller) Entry(id uuid.UUID) (models.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexLocked(id)
	if idx < 0 {
		return models.Entry{}, false
	}
	return c.entries[idx], true
}

// Entries returns a copy of the roster in insertion order.
func (c *Controller) Entries() []models.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Entry(nil), c.entries...)
}

// Layout computes the current slice geometry.
func (c *Controller) Layout() []Slice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComputeLayout(c.entries)
}

// IsSpinning reports whether a spin is in flight.
func (c *Controller) IsSpinning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spinning
}

// Rotation returns the normalized baseline the next spin starts from.
func (c *Controller) Rotation() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotation
}

// Phase returns the current step of the spin sequence.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Snapshot returns the full renderable state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, layout := c.viewLocked()
	state := State{
		WheelID:  c.id,
		Entries:  entries,
		Layout:   layout,
		Spinning: c.spinning,
		Phase:    c.phase,
		Rotation: c.rotation,
	}
	if c.lastOutcome != nil {
		out := *c.lastOutcome
		state.LastOutcome = &out
	}
	return state
}

func (c *Controller) viewLocked() ([]models.Entry, []Slice) {
	return append([]models.Entry(nil), c.entries...), ComputeLayout(c.entries)
}

func (c *Controller) indexLocked(id uuid.UUID) int {
	for i := range c.entries {
		if c.entries[i].ID == id {
			return i
		}
	}
	return -1
}
