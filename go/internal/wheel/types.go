package wheel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/wheelspin/go/internal/models"
)

// Phase is a step of the spin state machine.
type Phase string

const (
	PhaseIdle     Phase = "IDLE"
	PhaseRotating Phase = "ROTATING"
	PhaseTicking  Phase = "TICKING"
	PhaseFading   Phase = "FADING"
	PhaseSettling Phase = "SETTLING"
)

// Cue names a sound played during a spin.
type Cue string

const (
	CueSpinStart   Cue = "spin_start"
	CueTicking     Cue = "ticking"
	CueCelebration Cue = "celebration"
)

// Slice is the angular segment of the wheel owned by one active entry.
// Angles are degrees clockwise from the top of the wheel.
type Slice struct {
	Entry      models.Entry `json:"entry"`
	Index      int          `json:"index"`
	StartAngle float64      `json:"start_angle"`
	EndAngle   float64      `json:"end_angle"`
	MidAngle   float64      `json:"mid_angle"`
}

// SpinPlan is everything decided at the moment a spin starts.
type SpinPlan struct {
	SpinID       uuid.UUID     `json:"spin_id"`
	WheelID      uuid.UUID     `json:"wheel_id"`
	Winner       models.Entry  `json:"winner"`
	WinnerIndex  int           `json:"winner_index"`
	SliceCount   int           `json:"slice_count"`
	TargetOffset float64       `json:"target_offset"`
	From         float64       `json:"from"`
	Travel       float64       `json:"travel"`
	Duration     time.Duration `json:"duration"`
	Easing       string        `json:"easing"`
	StartedAt    time.Time     `json:"started_at"`
}

// To is the absolute angle the animation ends on.
func (p SpinPlan) To() float64 {
	return p.From + p.Travel
}

// FinalRotation is the normalized baseline once the spin settles.
func (p SpinPlan) FinalRotation() float64 {
	return normalizeAngle(p.From + p.Travel)
}

// SpinOutcome is the committed result of a completed spin.
type SpinOutcome struct {
	SpinID       uuid.UUID    `json:"spin_id"`
	WheelID      uuid.UUID    `json:"wheel_id"`
	Winner       models.Entry `json:"winner"`
	WinnerIndex  int          `json:"winner_index"`
	SliceCount   int          `json:"slice_count"`
	TargetOffset float64      `json:"target_offset"`
	Travel       float64      `json:"travel"`
	Rotation     float64      `json:"rotation"`
	Layout       []Slice      `json:"layout"`
	StartedAt    time.Time    `json:"started_at"`
	SettledAt    time.Time    `json:"settled_at"`
}

// RotateCommand asks the animator to turn the wheel from one absolute angle to another.
type RotateCommand struct {
	SpinID   uuid.UUID     `json:"spin_id"`
	From     float64       `json:"from"`
	To       float64       `json:"to"`
	Duration time.Duration `json:"duration"`
	Easing   string        `json:"easing"`
}

// State is a read-only view of a wheel for rendering.
type State struct {
	WheelID     uuid.UUID      `json:"wheel_id"`
	Entries     []models.Entry `json:"entries"`
	Layout      []Slice        `json:"layout"`
	Spinning    bool           `json:"spinning"`
	Phase       Phase          `json:"phase"`
	Rotation    float64        `json:"rotation"`
	LastOutcome *SpinOutcome   `json:"last_outcome,omitempty"`
}

// Renderer draws the wheel and the winner announcement.
type Renderer interface {
	RenderLayout(ctx context.Context, entries []models.Entry, layout []Slice)
	ClearAnnouncement(ctx context.Context)
	SetSpinEnabled(ctx context.Context, enabled bool)
	AnnounceWinner(ctx context.Context, outcome SpinOutcome)
	Celebrate(ctx context.Context, outcome SpinOutcome)
}

// Animator performs the visual rotation. Completion is driven by the
// controller's clock, not by the animator.
type Animator interface {
	Rotate(ctx context.Context, cmd RotateCommand) error
}

// AudioPlayer plays the spin cues. Gain is relative to the cue's configured volume.
type AudioPlayer interface {
	Play(ctx context.Context, cue Cue) error
	SetGain(ctx context.Context, cue Cue, gain float64) error
	Stop(ctx context.Context, cue Cue) error
}

// OutcomeListener is notified after every committed spin.
type OutcomeListener interface {
	OnSpinOutcome(ctx context.Context, outcome SpinOutcome)
}

// Rand draws the winner index.
type Rand interface {
	IntN(n int) int
}
