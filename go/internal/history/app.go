package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/wheelspin/go/internal/wheel"
	"github.com/rs/zerolog/log"
)

// ErrInvalidLimit is returned when a listing asks for no results.
var ErrInvalidLimit = errors.New("limit must be positive")

const defaultSaveTimeout = 5 * time.Second

// HistoryRepository defines what the app layer needs from storage
type HistoryRepository interface {
	SaveOutcome(ctx context.Context, outcome wheel.SpinOutcome) error
	ListOutcomes(ctx context.Context, wheelID uuid.UUID, limit int) ([]wheel.SpinOutcome, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// App records spin outcomes and serves them back. It is registered on every
// wheel as an outcome listener.
type App struct {
	repo        HistoryRepository
	saveTimeout time.Duration
}

// NewApp creates a new history App
func NewApp(repo HistoryRepository) *App {
	return &App{
		repo:        repo,
		saveTimeout: defaultSaveTimeout,
	}
}

// OnSpinOutcome implements wheel.OutcomeListener. Failures are logged; a
// spin never fails because its result could not be stored.
func (a *App) OnSpinOutcome(ctx context.Context, outcome wheel.SpinOutcome) {
	// The spin's context ends with the spin; the write must not.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.saveTimeout)
	defer cancel()

	if err := a.repo.SaveOutcome(saveCtx, outcome); err != nil {
		log.Error().
			Err(err).
			Str("wheel_id", outcome.WheelID.String()).
			Str("spin_id", outcome.SpinID.String()).
			Msg("failed to record spin outcome")
		return
	}

	log.Debug().
		Str("wheel_id", outcome.WheelID.String()).
		Str("spin_id", outcome.SpinID.String()).
		Str("winner", outcome.Winner.Name).
		Msg("spin outcome recorded")
}

// List returns the most recent outcomes of a wheel, newest first
func (a *App) List(ctx context.Context, wheelID uuid.UUID, limit int) ([]wheel.SpinOutcome, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	outcomes, err := a.repo.ListOutcomes(ctx, wheelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for wheel %s: %w", wheelID, err)
	}
	return outcomes, nil
}

// Prune deletes outcomes settled before cutoff and reports how many were removed
func (a *App) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := a.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	log.Info().Time("cutoff", cutoff).Int64("deleted", n).Msg("spin history pruned")
	return n, nil
}
