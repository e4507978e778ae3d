package gateway

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// DefaultMaxWheels bounds how many wheels a gateway keeps in memory.
const DefaultMaxWheels = 128

// Registry holds the open rooms. When full, the least recently used room is
// evicted and closed, which cancels its spin and disconnects its clients.
type Registry struct {
	rooms *lru.Cache[uuid.UUID, *Room]
}

// NewRegistry creates a registry holding at most size rooms.
func NewRegistry(size int) (*Registry, error) {
	if size <= 0 {
		size = DefaultMaxWheels
	}
	rooms, err := lru.NewWithEvict(size, func(id uuid.UUID, room *Room) {
		log.Info().Str("wheel_id", id.String()).Msg("evicting wheel room")
		room.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create wheel registry: %w", err)
	}
	return &Registry{rooms: rooms}, nil
}

// Add stores a room, evicting the oldest one if the registry is full.
func (r *Registry) Add(room *Room) {
	r.rooms.Add(room.ID(), room)
}

// Get returns the room for a wheel and marks it recently used.
func (r *Registry) Get(id uuid.UUID) (*Room, bool) {
	return r.rooms.Get(id)
}

// Remove closes and forgets a room.
func (r *Registry) Remove(id uuid.UUID) bool {
	return r.rooms.Remove(id)
}

// Len returns the number of open rooms.
func (r *Registry) Len() int {
	return r.rooms.Len()
}

// IDs lists open wheels from oldest to newest.
func (r *Registry) IDs() []uuid.UUID {
	return r.rooms.Keys()
}

// Close closes every room.
func (r *Registry) Close() {
	r.rooms.Purge()
}
