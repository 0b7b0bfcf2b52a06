package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Vibush01/BeFit/internal/models"
)

type AnalyticsRepository struct {
	db DBTX
}

func NewAnalyticsRepository(db DBTX) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) Create(
	ctx context.Context,
	action string,
	actorID int64,
	actorRole string,
	details any,
) (*models.AnalyticsEntry, error) {
	payload, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode analytics details: %w", err)
	}
	if details == nil {
		payload = []byte("{}")
	}

	query := `
		INSERT INTO analytics_entries (action, actor_id, actor_role, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, action, actor_id, actor_role, details, created_at, published_at
	`

	var entry models.AnalyticsEntry
	err = r.db.QueryRow(ctx, query, action, actorID, actorRole, payload).Scan(
		&entry.ID,
		&entry.Action,
		&entry.ActorID,
		&entry.ActorRole,
		&entry.Details,
		&entry.CreatedAt,
		&entry.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ClaimUnpublished locks up to limit unpublished entries for the surrounding
// transaction. Rows locked by a concurrent dispatcher are skipped.
func (r *AnalyticsRepository) ClaimUnpublished(ctx context.Context, limit int) ([]models.AnalyticsEntry, error) {
	query := `
		SELECT id, action, actor_id, actor_role, details, created_at, published_at
		FROM analytics_entries
		WHERE published_at IS NULL
		ORDER BY id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.AnalyticsEntry, 0)
	for rows.Next() {
		var entry models.AnalyticsEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.ActorID,
			&entry.ActorRole,
			&entry.Details,
			&entry.CreatedAt,
			&entry.PublishedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *AnalyticsRepository) MarkPublished(ctx context.Context, entryIDs []int64) error {
	if len(entryIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		UPDATE analytics_entries
		SET published_at = NOW()
		WHERE id = ANY($1)
		  AND published_at IS NULL
	`, entryIDs)
	return err
}
