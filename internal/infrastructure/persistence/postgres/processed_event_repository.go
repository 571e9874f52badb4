package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type ProcessedEventRepository struct {
	db *DB
}

func NewProcessedEventRepository(db *DB) *ProcessedEventRepository {
	return &ProcessedEventRepository{db: db}
}

// Insert records an event id in the dedup table. Returns false without
// error when the id is already present: the first writer wins.
func (r *ProcessedEventRepository) Insert(ctx context.Context, eventID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO processed_events (event_id)
		VALUES ($1)
		ON CONFLICT (event_id) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query, eventID)
	if err != nil {
		return false, fmt.Errorf("insert processed event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
