package history

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/wheelspin/go/internal/history/db"
	"github.com/mcdev12/wheelspin/go/internal/models"
	"github.com/mcdev12/wheelspin/go/internal/sqlutil"
	"github.com/mcdev12/wheelspin/go/internal/wheel"
	"github.com/sqlc-dev/pqtype"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	InsertSpinResult(ctx context.Context, arg db.InsertSpinResultParams) (db.SpinResult, error)
	ListSpinResults(ctx context.Context, arg db.ListSpinResultsParams) ([]db.SpinResult, error)
	DeleteSpinResultsBefore(ctx context.Context, settledAt time.Time) (int64, error)
}

// Repository implements spin result data access operations
type Repository struct {
	queries Querier
}

// NewRepository creates a new history repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// SaveOutcome stores a settled spin
func (r *Repository) SaveOutcome(ctx context.Context, outcome wheel.SpinOutcome) error {
	layout, err := json.Marshal(outcome.Layout)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	_, err = r.queries.InsertSpinResult(ctx, db.InsertSpinResultParams{
		ID:             outcome.SpinID,
		WheelID:        outcome.WheelID,
		WinnerID:       outcome.Winner.ID,
		WinnerName:     outcome.Winner.Name,
		WinnerImageRef: sqlutil.ToSqlString(sqlutil.NonEmpty(outcome.Winner.ImageRef)),
		WinnerIndex:    int32(outcome.WinnerIndex),
		SliceCount:     int32(outcome.SliceCount),
		TargetOffset:   outcome.TargetOffset,
		Travel:         outcome.Travel,
		Rotation:       outcome.Rotation,
		Layout:         pqtype.NullRawMessage{RawMessage: layout, Valid: len(outcome.Layout) > 0},
		StartedAt:      outcome.StartedAt,
		SettledAt:      outcome.SettledAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert spin result: %w", err)
	}
	return nil
}

// ListOutcomes returns the most recent outcomes of a wheel, newest first
func (r *Repository) ListOutcomes(ctx context.Context, wheelID uuid.UUID, limit int) ([]wheel.SpinOutcome, error) {
	rows, err := r.queries.ListSpinResults(ctx, db.ListSpinResultsParams{
		WheelID: wheelID,
		Limit:   int32(min(limit, math.MaxInt32)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list spin results: %w", err)
	}

	outcomes := make([]wheel.SpinOutcome, 0, len(rows))
	for _, row := range rows {
		outcome, err := r.dbResultToOutcome(row)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// DeleteBefore removes outcomes settled before cutoff
func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := r.queries.DeleteSpinResultsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete spin results: %w", err)
	}
	return n, nil
}

func (r *Repository) dbResultToOutcome(row db.SpinResult) (wheel.SpinOutcome, error) {
	var layout []wheel.Slice
	if row.Layout.Valid {
		if err := json.Unmarshal(row.Layout.RawMessage, &layout); err != nil {
			return wheel.SpinOutcome{}, fmt.Errorf("failed to decode layout of spin %s: %w", row.ID, err)
		}
	}

	return wheel.SpinOutcome{
		SpinID:  row.ID,
		WheelID: row.WheelID,
		Winner: models.Entry{
			ID:       row.WinnerID,
			Name:     row.WinnerName,
			ImageRef: sqlutil.FromSqlString(row.WinnerImageRef, ""),
		},
		WinnerIndex:  int(row.WinnerIndex),
		SliceCount:   int(row.SliceCount),
		TargetOffset: row.TargetOffset,
		Travel:       row.Travel,
		Rotation:     row.Rotation,
		Layout:       layout,
		StartedAt:    row.StartedAt,
		SettledAt:    row.SettledAt,
	}, nil
}
