package main

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const pruneInterval = time.Hour

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

type historyPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// runHistoryPruner drops spin results older than retention once an hour.
func runHistoryPruner(ctx context.Context, clock clockwork.Clock, pruner historyPruner, retention time.Duration) {
	ticker := clock.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			cutoff := clock.Now().Add(-retention)
			deleted, err := pruner.Prune(ctx, cutoff)
			if err != nil {
				log.Error().Err(err).Msg("history prune failed")
				continue
			}
			log.Debug().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("history pruned")
		}
	}
}
