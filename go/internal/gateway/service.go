package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/mcdev12/wheelspin/go/internal/audio"
	"github.com/mcdev12/wheelspin/go/internal/models"
	"github.com/mcdev12/wheelspin/go/internal/wheel"
	"github.com/rs/zerolog/log"
)

// HistoryStore records settled spins and serves them back per wheel.
type HistoryStore interface {
	wheel.OutcomeListener
	List(ctx context.Context, wheelID uuid.UUID, limit int) ([]wheel.SpinOutcome, error)
}

// Service is the wheel gateway: it owns the rooms and serves the REST and
// WebSocket surfaces over them.
type Service struct {
	config            Config
	connectionManager *ConnectionManager
	registry          *Registry
	wsHandler         *WebSocketHandler
	apiHandler        *APIHandler
	sink              EventSink
	history           HistoryStore
}

// Config holds configuration for the wheel gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
	MaxWheels        int
	Timing           wheel.Timing
	Cues             map[wheel.Cue]audio.CueConfig
	DefaultRoster    []models.SeedEntry

	// WheelOptions are applied to every controller, after the room's own.
	WheelOptions []wheel.Option
}

// DefaultConfig returns default configuration for the wheel gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		MaxWheels:        DefaultMaxWheels,
		Timing:           wheel.DefaultTiming(),
		Cues:             audio.DefaultCues(),
	}
}

// NewService creates a new wheel gateway service. sink and history may be nil.
func NewService(config Config, sink EventSink, history HistoryStore) (*Service, error) {
	if err := config.Timing.Validate(); err != nil {
		return nil, err
	}
	if config.Cues == nil {
		config.Cues = audio.DefaultCues()
	}

	registry, err := NewRegistry(config.MaxWheels)
	if err != nil {
		return nil, err
	}
	connectionManager := NewConnectionManager(config.ConnectionConfig)

	s := &Service{
		config:            config,
		connectionManager: connectionManager,
		registry:          registry,
		wsHandler:         NewWebSocketHandler(connectionManager, registry),
		sink:              sink,
		history:           history,
	}
	s.apiHandler = NewAPIHandler(s)
	return s, nil
}

// CreateWheel opens a new room. With seed set, the wheel starts with the
// configured default roster.
func (s *Service) CreateWheel(ctx context.Context, seed bool) (*Room, error) {
	cfg := RoomConfig{
		Timing:  s.config.Timing,
		Cues:    s.config.Cues,
		Options: s.config.WheelOptions,
	}
	if s.history != nil {
		cfg.Listeners = append(cfg.Listeners, s.history)
	}

	room, err := NewRoom(uuid.New(), s.connectionManager, s.sink, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create wheel: %w", err)
	}
	if seed && len(s.config.DefaultRoster) > 0 {
		if err := room.Controller().Seed(ctx, s.config.DefaultRoster); err != nil {
			room.Close()
			return nil, fmt.Errorf("failed to seed wheel: %w", err)
		}
	}
	s.registry.Add(room)

	log.Info().
		Str("wheel_id", room.ID().String()).
		Bool("seeded", seed).
		Int("open_wheels", s.registry.Len()).
		Msg("wheel created")
	return room, nil
}

// Wheel returns an open room.
func (s *Service) Wheel(id uuid.UUID) (*Room, bool) {
	return s.registry.Get(id)
}

// CloseWheel cancels a wheel's spin, disconnects its clients and forgets it.
func (s *Service) CloseWheel(id uuid.UUID) bool {
	return s.registry.Remove(id)
}

// History returns the recent outcomes of a wheel, newest first.
func (s *Service) History(ctx context.Context, wheelID uuid.UUID, limit int) ([]wheel.SpinOutcome, error) {
	if s.history == nil {
		return []wheel.SpinOutcome{}, nil
	}
	return s.history.List(ctx, wheelID, limit)
}

// Start begins the gateway service and blocks until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting wheel gateway service")

	go s.connectionManager.Start(ctx)

	<-ctx.Done()

	log.Info().Msg("wheel gateway service shutting down")
	return s.Stop()
}

// Stop closes every room.
func (s *Service) Stop() error {
	s.registry.Close()
	log.Info().Msg("wheel gateway service stopped")
	return nil
}

// RegisterRoutes registers the REST and WebSocket routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.apiHandler.RegisterRoutes(mux)
	log.Info().Msg("wheel gateway routes registered")
}

// ServiceStats summarizes the gateway.
type ServiceStats struct {
	Service     string          `json:"service"`
	OpenWheels  int             `json:"open_wheels"`
	Connections ConnectionStats `json:"connections"`
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() ServiceStats {
	return ServiceStats{
		Service:     "wheel_gateway",
		OpenWheels:  s.registry.Len(),
		Connections: s.connectionManager.GetConnectionStats(),
	}
}
