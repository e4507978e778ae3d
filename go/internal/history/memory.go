package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/wheelspin/go/internal/wheel"
)

// DefaultMemoryCapacity bounds how many outcomes a MemoryStore keeps per wheel.
const DefaultMemoryCapacity = 100

// MemoryStore keeps recent outcomes in process. It stands in for the database
// when none is configured.
type MemoryStore struct {
	capacity int

	mu       sync.RWMutex
	outcomes map[uuid.UUID][]wheel.SpinOutcome // oldest first
}

// NewMemoryStore creates a store keeping at most capacity outcomes per wheel.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		outcomes: make(map[uuid.UUID][]wheel.SpinOutcome),
	}
}

// SaveOutcome implements HistoryRepository.
func (m *MemoryStore) SaveOutcome(_ context.Context, outcome wheel.SpinOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := append(m.outcomes[outcome.WheelID], outcome)
	if len(list) > m.capacity {
		list = append([]wheel.SpinOutcome(nil), list[len(list)-m.capacity:]...)
	}
	m.outcomes[outcome.WheelID] = list
	return nil
}

// ListOutcomes implements HistoryRepository.
func (m *MemoryStore) ListOutcomes(_ context.Context, wheelID uuid.UUID, limit int) ([]wheel.SpinOutcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.outcomes[wheelID]
	out := make([]wheel.SpinOutcome, 0, min(limit, len(list)))
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

// DeleteBefore implements HistoryRepository.
func (m *MemoryStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for wheelID, list := range m.outcomes {
		kept := list[:0]
		for _, o := range list {
			if o.SettledAt.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, o)
		}
		if len(kept) == 0 {
			delete(m.outcomes, wheelID)
			continue
		}
		m.outcomes[wheelID] = kept
	}
	return deleted, nil
}
