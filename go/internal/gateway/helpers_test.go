package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/wheelspin/go/internal/audio"
	"github.com/mcdev12/wheelspin/go/internal/models"
	"github.com/mcdev12/wheelspin/go/internal/wheel"
	"github.com/stretchr/testify/require"
)

// captureSink records every published event.
type captureSink struct {
	mu     sync.Mutex
	events []*WheelEvent
}

func (s *captureSink) Publish(_ context.Context, event *WheelEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Types() []EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]EventType, len(s.events))
	for i, e := range s.events {
		types[i] = e.Type
	}
	return types
}

func (s *captureSink) Last(eventType EventType) *WheelEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Type == eventType {
			return s.events[i]
		}
	}
	return nil
}

func (s *captureSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// fakeHistory keeps outcomes in memory, newest last.
type fakeHistory struct {
	mu       sync.Mutex
	outcomes []wheel.SpinOutcome
}

func (h *fakeHistory) OnSpinOutcome(_ context.Context, outcome wheel.SpinOutcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = append(h.outcomes, outcome)
}

func (h *fakeHistory) List(_ context.Context, wheelID uuid.UUID, limit int) ([]wheel.SpinOutcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := []wheel.SpinOutcome{}
	for i := len(h.outcomes) - 1; i >= 0 && len(out) < limit; i-- {
		if h.outcomes[i].WheelID == wheelID {
			out = append(out, h.outcomes[i])
		}
	}
	return out, nil
}

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

func newTestRoom(t *testing.T, sink EventSink, opts ...wheel.Option) (*Room, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	room, err := NewRoom(uuid.New(), nil, sink, RoomConfig{
		Timing:  wheel.DefaultTiming(),
		Cues:    audio.DefaultCues(),
		Options: append([]wheel.Option{wheel.WithClock(clock)}, opts...),
	})
	require.NoError(t, err)
	t.Cleanup(room.Close)
	return room, clock
}

func newTestService(t *testing.T, sink EventSink, history HistoryStore) (*Service, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	cfg := DefaultConfig()
	cfg.MaxWheels = 4
	cfg.DefaultRoster = defaultTeam
	cfg.WheelOptions = []wheel.Option{wheel.WithClock(clock), wheel.WithRand(fixedRand(2))}

	svc, err := NewService(cfg, sink, history)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return svc, clock
}

// settleSpin advances the fake clock in 100ms steps until the spin resolves.
func settleSpin(t *testing.T, clock *clockwork.FakeClock, s *wheel.Spin) (wheel.SpinOutcome, error) {
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
	return wheel.SpinOutcome{}, nil
}

func decodePayload[T any](t *testing.T, event *WheelEvent) T {
	t.Helper()
	require.NotNil(t, event)
	var payload T
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	return payload
}
