package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mcdev12/wheelspin/go/internal/config"
	"github.com/mcdev12/wheelspin/go/internal/eventbus"
	"github.com/mcdev12/wheelspin/go/internal/gateway"
	"github.com/mcdev12/wheelspin/go/internal/history"
	historydb "github.com/mcdev12/wheelspin/go/internal/history/db"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Gateway *gateway.Service
	History *history.App

	database *sql.DB
	bus      *eventbus.Publisher
}

func setupServices(ctx context.Context, cfg config.Config) (*Services, error) {
	// Wire up dependency injection chain
	// Storage → History app → Event bus → Gateway

	s := &Services{}

	// History: Postgres when enabled, otherwise in memory
	if cfg.History.DatabaseEnabled {
		database, err := setupDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		s.database = database
		s.History = history.NewApp(history.NewRepository(historydb.New(database)))
	} else {
		log.Info().Int("capacity", cfg.History.MemoryCapacity).Msg("spin history kept in memory")
		s.History = history.NewApp(history.NewMemoryStore(cfg.History.MemoryCapacity))
	}

	// Event bus: optional NATS fan-out
	var sink gateway.EventSink
	if cfg.NATS.URL != "" {
		busCfg := eventbus.DefaultConfig()
		busCfg.URL = cfg.NATS.URL
		busCfg.StreamName = cfg.NATS.StreamName
		busCfg.MaxAge = cfg.NATS.MaxAge
		bus, err := eventbus.Connect(ctx, busCfg)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect event bus: %w", err)
		}
		s.bus = bus
		sink = bus
	}

	// Gateway
	gatewayCfg := gateway.DefaultConfig()
	gatewayCfg.MaxWheels = cfg.Server.MaxWheels
	gatewayCfg.Timing = cfg.Timing
	gatewayCfg.Cues = cfg.Cues
	gatewayCfg.DefaultRoster = cfg.Roster

	gw, err := gateway.NewService(gatewayCfg, sink, s.History)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create wheel gateway: %w", err)
	}
	s.Gateway = gw

	return s, nil
}

// Close releases the event bus and database connections.
func (s *Services) Close() {
	if s.bus != nil {
		s.bus.Close()
	}
	if s.database != nil {
		if err := s.database.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}
