package wheel

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEntry(t *testing.T) {
	ctx := context.Background()
	c, rec, _ := newTestController(t)

	a, err := c.AddEntry(ctx, "A", "")
	require.NoError(t, err)
	b, err := c.AddEntry(ctx, "B", "https://example.com/b.png")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Hidden)
	assert.Equal(t, "https://example.com/b.png", b.ImageRef)
	assert.False(t, c.IsSpinning())

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].Name)
	assert.Equal(t, "B", entries[1].Name)

	assert.Equal(t, []string{"render", "render"}, rec.Calls())
	require.Len(t, rec.layouts, 2)
	assert.Len(t, rec.layouts[1], 2)
}

func TestAddThenRemoveRestoresEmptyLayout(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t)

	e, err := c.AddEntry(ctx, "A", "")
	require.NoError(t, err)
	require.Len(t, c.Layout(), 1)

	removed, err := c.RemoveEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []Slice{}, c.Layout())
	assert.Empty(t, c.Entries())
}

func TestRemoveUnknownEntryIsNoOp(t *testing.T) {
	ctx := context.Background()
	c, rec, _ := newTestController(t)
	_, err := c.AddEntry(ctx, "A", "")
	require.NoError(t, err)

	removed, err := c.RemoveEntry(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, c.Entries(), 1)
	assert.Equal(t, []string{"render"}, rec.Calls())
}

func TestSetHidden(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t)
	require.NoError(t, c.Seed(ctx, defaultTeam))
	require.Len(t, c.Layout(), 6)

	davon := c.Entries()[2]
	found, err := c.SetHidden(ctx, davon.ID, true)
	require.NoError(t, err)
	assert.True(t, found)

	layout := c.Layout()
	require.Len(t, layout, 5)
	for _, s := range layout {
		assert.NotEqual(t, davon.ID, s.Entry.ID)
	}
	assert.Len(t, c.Entries(), 6, "hidden entries stay on the roster")

	found, err = c.SetHidden(ctx, davon.ID, false)
	require.NoError(t, err)
	assert.True(t, found)
	layout = c.Layout()
	require.Len(t, layout, 6)
	assert.Equal(t, davon.ID, layout[2].Entry.ID, "unhiding restores insertion order")

	found, err = c.SetHidden(ctx, uuid.New(), true)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestToggleHidden(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t)
	e, err := c.AddEntry(ctx, "A", "")
	require.NoError(t, err)

	got, found, err := c.ToggleHidden(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Hidden)
	assert.Empty(t, c.Layout())

	got, found, err = c.ToggleHidden(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, got.Hidden)
	assert.Len(t, c.Layout(), 1)

	_, found, err = c.ToggleHidden(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSeedReplacesRoster(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t)
	_, err := c.AddEntry(ctx, "Old", "")
	require.NoError(t, err)

	require.NoError(t, c.Seed(ctx, defaultTeam))
	entries := c.Entries()
	require.Len(t, entries, 6)
	assert.Equal(t, "Rachel", entries[0].Name)
	assert.Equal(t, "Bobby", entries[5].Name)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	c, rec, clock := newTestController(t, WithRand(fixedRand(0)))
	require.NoError(t, c.Seed(ctx, defaultTeam))

	s, err := c.Spin(ctx)
	require.NoError(t, err)
	_, err = settle(t, clock, s)
	require.NoError(t, err)
	require.NotNil(t, c.Snapshot().LastOutcome)

	rec.reset()
	require.NoError(t, c.Clear(ctx))
	state := c.Snapshot()
	assert.Empty(t, state.Entries)
	assert.Empty(t, state.Layout)
	assert.Nil(t, state.LastOutcome)
	assert.Equal(t, []string{"clear", "render"}, rec.Calls())
}

func TestMutationsRejectedWhileSpinning(t *testing.T) {
	ctx := context.Background()
	c, _, clock := newTestController(t)
	require.NoError(t, c.Seed(ctx, defaultTeam))
	first := c.Entries()[0]

	s, err := c.Spin(ctx)
	require.NoError(t, err)

	_, err = c.AddEntry(ctx, "Late", "")
	assert.ErrorIs(t, err, ErrSpinInProgress)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = c.RemoveEntry(ctx, first.ID)
	assert.ErrorIs(t, err, ErrSpinInProgress)
	_, err = c.SetHidden(ctx, first.ID, true)
	assert.ErrorIs(t, err, ErrSpinInProgress)
	_, _, err = c.ToggleHidden(ctx, first.ID)
	assert.ErrorIs(t, err, ErrSpinInProgress)
	assert.ErrorIs(t, c.Clear(ctx), ErrSpinInProgress)
	assert.ErrorIs(t, c.Seed(ctx, defaultTeam), ErrSpinInProgress)

	_, err = settle(t, clock, s)
	require.NoError(t, err)

	_, err = c.AddEntry(ctx, "Late", "")
	assert.NoError(t, err)
	assert.Len(t, c.Layout(), 7)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t)
	_, err := c.AddEntry(ctx, "A", "")
	require.NoError(t, err)

	state := c.Snapshot()
	state.Entries[0].Name = "mutated"
	assert.Equal(t, "A", c.Entries()[0].Name)
	assert.Equal(t, c.ID(), state.WheelID)
	assert.Equal(t, PhaseIdle, state.Phase)
}
