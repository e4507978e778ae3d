package events

import (
	"time"

	"github.com/mcdev12/wheelspin/go/internal/models"
)

// Event payload types shared between the gateway and the event bus

// SliceView is one rendered wheel segment.
type SliceView struct {
	EntryID    string  `json:"entry_id"`
	Name       string  `json:"name"`
	ImageRef   string  `json:"image_ref,omitempty"`
	Initial    string  `json:"initial"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	MidAngle   float64 `json:"mid_angle"`
}

// RosterUpdatedPayload is the payload for a RosterUpdated event
type RosterUpdatedPayload struct {
	Entries     []models.Entry `json:"entries"`
	Slices      []SliceView    `json:"slices"`
	ActiveCount int            `json:"active_count"`
	Placeholder string         `json:"placeholder,omitempty"`
}

// SpinEnabledPayload is the payload for a SpinEnabled event
type SpinEnabledPayload struct {
	Enabled bool `json:"enabled"`
}

// SpinStartedPayload is the payload for a SpinStarted event
type SpinStartedPayload struct {
	SpinID     string  `json:"spin_id"`
	From       float64 `json:"from"`
	To         float64 `json:"to"`
	DurationMs int64   `json:"duration_ms"`
	Easing     string  `json:"easing"`
}

// AudioCuePayload is the payload for an AudioCue event
type AudioCuePayload struct {
	Cue          string  `json:"cue"`
	Action       string  `json:"action"`
	Src          string  `json:"src,omitempty"`
	Volume       float64 `json:"volume"`
	PlaybackRate float64 `json:"playback_rate,omitempty"`
	Loop         bool    `json:"loop,omitempty"`
}

// WinnerAnnouncedPayload is the payload for a WinnerAnnounced event
type WinnerAnnouncedPayload struct {
	SpinID      string       `json:"spin_id"`
	Winner      models.Entry `json:"winner"`
	WinnerIndex int          `json:"winner_index"`
	Rotation    float64      `json:"rotation"`
	SettledAt   time.Time    `json:"settled_at"`
}

// CelebrationPayload is the payload for a Celebration event
type CelebrationPayload struct {
	SpinID   string `json:"spin_id"`
	WinnerID string `json:"winner_id"`
}
