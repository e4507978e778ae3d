package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mcdev12/wheelspin/go/internal/wheel"
	"github.com/rs/zerolog/log"
)

// ErrUnknownCue is returned for cues that have no configuration.
var ErrUnknownCue = errors.New("unknown audio cue")

// CueConfig describes how a cue is played by the browser.
type CueConfig struct {
	Src          string  `yaml:"src" json:"src"`
	Volume       float64 `yaml:"volume" json:"volume"`
	PlaybackRate float64 `yaml:"playback_rate" json:"playback_rate"`
	Loop         bool    `yaml:"loop" json:"loop"`
}

// DefaultCues returns the stock spin, tick and celebration sounds.
func DefaultCues() map[wheel.Cue]CueConfig {
	return map[wheel.Cue]CueConfig{
		wheel.CueSpinStart: {
			Src:          "https://assets.mixkit.co/active_storage/sfx/2869/2869-preview.mp3",
			Volume:       0.2,
			PlaybackRate: 1,
		},
		wheel.CueTicking: {
			Src:          "https://assets.mixkit.co/active_storage/sfx/2003/2003-preview.mp3",
			Volume:       0.15,
			PlaybackRate: 3,
			Loop:         true,
		},
		wheel.CueCelebration: {
			Src:          "https://assets.mixkit.co/active_storage/sfx/2018/2018-preview.mp3",
			Volume:       0.7,
			PlaybackRate: 1,
		},
	}
}

// Action is what a Command asks the client to do with a cue.
type Action string

const (
	ActionPlay   Action = "play"
	ActionVolume Action = "volume"
	ActionStop   Action = "stop"
)

// Command is one playback instruction for a client.
type Command struct {
	Cue          wheel.Cue `json:"cue"`
	Action       Action    `json:"action"`
	Src          string    `json:"src,omitempty"`
	Volume       float64   `json:"volume"`
	PlaybackRate float64   `json:"playback_rate,omitempty"`
	Loop         bool      `json:"loop,omitempty"`
}

// Sink delivers commands to whoever actually produces sound.
type Sink interface {
	SendAudio(ctx context.Context, cmd Command) error
}

type cueState struct {
	playing bool
	gain    float64
}

// Deck tracks the playback state of each cue and translates the wheel's
// relative gain into absolute volumes.
type Deck struct {
	cues map[wheel.Cue]CueConfig
	sink Sink

	mu    sync.Mutex
	state map[wheel.Cue]*cueState
}

// NewDeck creates a deck over the given cue configuration.
func NewDeck(cues map[wheel.Cue]CueConfig, sink Sink) *Deck {
	state := make(map[wheel.Cue]*cueState, len(cues))
	for cue := range cues {
		state[cue] = &cueState{gain: 1}
	}
	return &Deck{cues: cues, sink: sink, state: state}
}

// Play restarts a cue from the beginning at full gain.
func (d *Deck) Play(ctx context.Context, cue wheel.Cue) error {
	cfg, st, err := d.lookup(cue)
	if err != nil {
		return err
	}

	d.mu.Lock()
	st.playing = true
	st.gain = 1
	d.mu.Unlock()

	return d.send(ctx, Command{
		Cue:          cue,
		Action:       ActionPlay,
		Src:          cfg.Src,
		Volume:       cfg.Volume,
		PlaybackRate: cfg.PlaybackRate,
		Loop:         cfg.Loop,
	})
}

// SetGain scales a playing cue's volume. Gain is clamped to [0, 1].
func (d *Deck) SetGain(ctx context.Context, cue wheel.Cue, gain float64) error {
	cfg, st, err := d.lookup(cue)
	if err != nil {
		return err
	}
	gain = min(max(gain, 0), 1)

	d.mu.Lock()
	st.gain = gain
	playing := st.playing
	d.mu.Unlock()

	if !playing {
		return nil
	}
	return d.send(ctx, Command{Cue: cue, Action: ActionVolume, Volume: cfg.Volume * gain})
}

// Stop silences a cue and restores its configured volume for the next play.
func (d *Deck) Stop(ctx context.Context, cue wheel.Cue) error {
	cfg, st, err := d.lookup(cue)
	if err != nil {
		return err
	}

	d.mu.Lock()
	st.playing = false
	st.gain = 1
	d.mu.Unlock()

	return d.send(ctx, Command{Cue: cue, Action: ActionStop, Volume: cfg.Volume})
}

// Status reports whether a cue is playing and at which absolute volume.
func (d *Deck) Status(cue wheel.Cue) (playing bool, volume float64) {
	cfg, st, err := d.lookup(cue)
	if err != nil {
		return false, 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return st.playing, cfg.Volume * st.gain
}

func (d *Deck) lookup(cue wheel.Cue) (CueConfig, *cueState, error) {
	cfg, ok := d.cues[cue]
	if !ok {
		return CueConfig{}, nil, fmt.Errorf("%w: %s", ErrUnknownCue, cue)
	}
	return cfg, d.state[cue], nil
}

func (d *Deck) send(ctx context.Context, cmd Command) error {
	if d.sink == nil {
		return nil
	}
	if err := d.sink.SendAudio(ctx, cmd); err != nil {
		return fmt.Errorf("send %s %s: %w", cmd.Action, cmd.Cue, err)
	}
	log.Debug().
		Str("cue", string(cmd.Cue)).
		Str("action", string(cmd.Action)).
		Float64("volume", cmd.Volume).
		Msg("audio command sent")
	return nil
}
