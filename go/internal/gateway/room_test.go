package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/mcdev12/wheelspin/go/internal/wheel"
	"github.com/mcdev12/wheelspin/go/internal/wheel/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRosterEvents(t *testing.T) {
	ctx := context.Background()
	sink := &captureSink{}
	room, _ := newTestRoom(t, sink)

	entry, err := room.Controller().AddEntry(ctx, "Rachel", "")
	require.NoError(t, err)
	assert.Equal(t, []EventType{EventTypeRosterUpdated, EventTypeSpinEnabled}, sink.Types())

	roster := decodePayload[events.RosterUpdatedPayload](t, sink.Last(EventTypeRosterUpdated))
	assert.Equal(t, 1, roster.ActiveCount)
	assert.Empty(t, roster.Placeholder)
	require.Len(t, roster.Slices, 1)
	assert.Equal(t, "R", roster.Slices[0].Initial)
	assert.Equal(t, 360.0, roster.Slices[0].EndAngle)
	assert.True(t, decodePayload[events.SpinEnabledPayload](t, sink.Last(EventTypeSpinEnabled)).Enabled)

	_, err = room.Controller().SetHidden(ctx, entry.ID, true)
	require.NoError(t, err)
	roster = decodePayload[events.RosterUpdatedPayload](t, sink.Last(EventTypeRosterUpdated))
	assert.Equal(t, 0, roster.ActiveCount)
	assert.Equal(t, placeholderText, roster.Placeholder)
	assert.Len(t, roster.Entries, 1, "hidden entries stay on the roster")
	assert.False(t, decodePayload[events.SpinEnabledPayload](t, sink.Last(EventTypeSpinEnabled)).Enabled)
}

func TestRoomSpinEvents(t *testing.T) {
	ctx := context.Background()
	sink := &captureSink{}
	room, clock := newTestRoom(t, sink, wheel.WithRand(fixedRand(2)))
	require.NoError(t, room.Controller().Seed(ctx, defaultTeam))
	sink.Reset()

	s, err := room.Spin()
	require.NoError(t, err)
	out, err := settleSpin(t, clock, s)
	require.NoError(t, err)
	assert.Equal(t, "Davon", out.Winner.Name)

	want := []EventType{
		EventTypeAnnouncementCleared,
		EventTypeSpinEnabled,
		EventTypeSpinStarted,
		EventTypeAudioCue, // spin_start
		EventTypeAudioCue, // ticking
	}
	for i := 0; i < 9; i++ {
		want = append(want, EventTypeAudioCue)
	}
	want = append(want,
		EventTypeAudioCue, // ticking stop
		EventTypeSpinEnabled,
		EventTypeWinnerAnnounced,
		EventTypeAudioCue, // celebration
		EventTypeCelebration,
	)
	assert.Equal(t, want, sink.Types())

	started := decodePayload[events.SpinStartedPayload](t, sink.Last(EventTypeSpinStarted))
	assert.Equal(t, 0.0, started.From)
	assert.Equal(t, 3090.0, started.To)
	assert.Equal(t, int64(6000), started.DurationMs)
	assert.Equal(t, wheel.DefaultEasing, started.Easing)

	winner := decodePayload[events.WinnerAnnouncedPayload](t, sink.Last(EventTypeWinnerAnnounced))
	assert.Equal(t, "Davon", winner.Winner.Name)
	assert.Equal(t, 210.0, winner.Rotation)

	cue := decodePayload[events.AudioCuePayload](t, sink.Last(EventTypeAudioCue))
	assert.Equal(t, string(wheel.CueCelebration), cue.Cue)
	assert.Equal(t, "play", cue.Action)
	assert.InDelta(t, 0.7, cue.Volume, 1e-9)
}

func TestRoomCloseCancelsSpin(t *testing.T) {
	ctx := context.Background()
	room, _ := newTestRoom(t, &captureSink{})
	require.NoError(t, room.Controller().Seed(ctx, defaultTeam))

	s, err := room.Spin()
	require.NoError(t, err)
	room.Close()

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err = s.Wait(waitCtx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, room.Controller().IsSpinning())
	assert.Equal(t, 0.0, room.Controller().Rotation())
}

func TestRoomSnapshotEvent(t *testing.T) {
	room, _ := newTestRoom(t, nil)
	require.NoError(t, room.Controller().Seed(context.Background(), defaultTeam))

	event, err := room.SnapshotEvent()
	require.NoError(t, err)
	assert.Equal(t, EventTypeSnapshot, event.Type)
	assert.Equal(t, room.ID().String(), event.WheelID)

	state := decodePayload[wheel.State](t, event)
	assert.Len(t, state.Entries, 6)
	assert.Len(t, state.Layout, 6)
	assert.Equal(t, wheel.PhaseIdle, state.Phase)
}
