package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/wheelspin/go/internal/audio"
	"github.com/mcdev12/wheelspin/go/internal/models"
	"github.com/mcdev12/wheelspin/go/internal/wheel"
	"github.com/mcdev12/wheelspin/go/internal/wheel/events"
	"github.com/rs/zerolog/log"
)

// placeholderText is shown by clients when no entry is active.
const placeholderText = "Add members to spin!"

// EventSink receives every event a room emits, in addition to its WebSocket clients.
type EventSink interface {
	Publish(ctx context.Context, event *WheelEvent) error
}

// Room binds one wheel controller to the clients watching it. It is the
// controller's renderer, animator and audio sink: every callback becomes a
// WheelEvent broadcast to the wheel's connections.
type Room struct {
	id         uuid.UUID
	controller *wheel.Controller
	deck       *audio.Deck
	cm         *ConnectionManager
	sink       EventSink
	createdAt  time.Time

	// ctx bounds the room's spins; it is cancelled when the room is closed.
	ctx    context.Context
	cancel context.CancelFunc
}

// RoomConfig holds what is needed to build a room.
type RoomConfig struct {
	Timing    wheel.Timing
	Cues      map[wheel.Cue]audio.CueConfig
	Listeners []wheel.OutcomeListener
	Options   []wheel.Option
}

// NewRoom creates a room with an empty wheel.
func NewRoom(id uuid.UUID, cm *ConnectionManager, sink EventSink, cfg RoomConfig) (*Room, error) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Room{
		id:        id,
		cm:        cm,
		sink:      sink,
		createdAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
	r.deck = audio.NewDeck(cfg.Cues, r)

	opts := append([]wheel.Option{
		wheel.WithID(id),
		wheel.WithListeners(cfg.Listeners...),
	}, cfg.Options...)
	controller, err := wheel.NewController(cfg.Timing, r, r, r.deck, opts...)
	if err != nil {
		cancel()
		return nil, err
	}
	r.controller = controller
	return r, nil
}

// ID returns the wheel id.
func (r *Room) ID() uuid.UUID {
	return r.id
}

// Controller returns the room's wheel.
func (r *Room) Controller() *wheel.Controller {
	return r.controller
}

// CreatedAt returns when the room was opened.
func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

// Spin starts a spin bound to the room's lifetime rather than to the caller's request.
func (r *Room) Spin() (*wheel.Spin, error) {
	return r.controller.Spin(r.ctx)
}

// Close cancels any in-flight spin and disconnects clients.
func (r *Room) Close() {
	r.cancel()
	if r.cm != nil {
		r.cm.DisconnectWheel(r.id)
	}
	log.Info().Str("wheel_id", r.id.String()).Msg("wheel room closed")
}

// SnapshotEvent builds the full-state event sent to newly connected clients.
func (r *Room) SnapshotEvent() (*WheelEvent, error) {
	return NewWheelEvent(r.id, EventTypeSnapshot, r.controller.Snapshot())
}

// RenderLayout implements wheel.Renderer.
func (r *Room) RenderLayout(ctx context.Context, entries []models.Entry, layout []wheel.Slice) {
	payload := events.RosterUpdatedPayload{
		Entries:     entries,
		Slices:      SliceViews(layout),
		ActiveCount: len(layout),
	}
	if len(layout) == 0 {
		payload.Placeholder = placeholderText
	}
	r.emit(ctx, EventTypeRosterUpdated, payload)
	r.emit(ctx, EventTypeSpinEnabled, events.SpinEnabledPayload{Enabled: len(layout) > 0})
}

// ClearAnnouncement implements wheel.Renderer.
func (r *Room) ClearAnnouncement(ctx context.Context) {
	r.emit(ctx, EventTypeAnnouncementCleared, struct{}{})
}

// SetSpinEnabled implements wheel.Renderer.
func (r *Room) SetSpinEnabled(ctx context.Context, enabled bool) {
	r.emit(ctx, EventTypeSpinEnabled, events.SpinEnabledPayload{Enabled: enabled})
}

// AnnounceWinner implements wheel.Renderer.
func (r *Room) AnnounceWinner(ctx context.Context, outcome wheel.SpinOutcome) {
	r.emit(ctx, EventTypeWinnerAnnounced, events.WinnerAnnouncedPayload{
		SpinID:      outcome.SpinID.String(),
		Winner:      outcome.Winner,
		WinnerIndex: outcome.WinnerIndex,
		Rotation:    outcome.Rotation,
		SettledAt:   outcome.SettledAt,
	})
}

// Celebrate implements wheel.Renderer.
func (r *Room) Celebrate(ctx context.Context, outcome wheel.SpinOutcome) {
	r.emit(ctx, EventTypeCelebration, events.CelebrationPayload{
		SpinID:   outcome.SpinID.String(),
		WinnerID: outcome.Winner.ID.String(),
	})
}

// Rotate implements wheel.Animator.
func (r *Room) Rotate(ctx context.Context, cmd wheel.RotateCommand) error {
	r.emit(ctx, EventTypeSpinStarted, events.SpinStartedPayload{
		SpinID:     cmd.SpinID.String(),
		From:       cmd.From,
		To:         cmd.To,
		DurationMs: cmd.Duration.Milliseconds(),
		Easing:     cmd.Easing,
	})
	return nil
}

// SendAudio implements audio.Sink.
func (r *Room) SendAudio(ctx context.Context, cmd audio.Command) error {
	r.emit(ctx, EventTypeAudioCue, events.AudioCuePayload{
		Cue:          string(cmd.Cue),
		Action:       string(cmd.Action),
		Src:          cmd.Src,
		Volume:       cmd.Volume,
		PlaybackRate: cmd.PlaybackRate,
		Loop:         cmd.Loop,
	})
	return nil
}

func (r *Room) emit(ctx context.Context, eventType EventType, payload any) {
	event, err := NewWheelEvent(r.id, eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("wheel_id", r.id.String()).Msg("failed to build wheel event")
		return
	}

	if r.cm != nil {
		r.cm.BroadcastToWheel(r.id, event)
	}
	if r.sink != nil {
		if err := r.sink.Publish(ctx, event); err != nil {
			log.Warn().
				Err(err).
				Str("wheel_id", r.id.String()).
				Str("event_type", string(eventType)).
				Msg("failed to publish wheel event")
		}
	}
}

// SliceViews flattens a layout for clients.
func SliceViews(layout []wheel.Slice) []events.SliceView {
	views := make([]events.SliceView, len(layout))
	for i, s := range layout {
		views[i] = events.SliceView{
			EntryID:    s.Entry.ID.String(),
			Name:       s.Entry.Name,
			ImageRef:   s.Entry.ImageRef,
			Initial:    s.Entry.Initial(),
			StartAngle: s.StartAngle,
			EndAngle:   s.EndAngle,
			MidAngle:   s.MidAngle,
		}
	}
	return views
}
