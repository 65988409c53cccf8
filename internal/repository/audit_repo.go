package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-user-auth/internal/model"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Log(ctx context.Context, event model.AuthEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO auth_events (action, status, user_id, identifier, client_ip, reason, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.Action, event.Status, event.UserID, event.Identifier, event.ClientIP, event.Reason, event.OccurredAt)
	if err != nil {
		return fmt.Errorf("log auth event: %w", err)
	}
	return nil
}

// ListForUser returns the most recent events for a user, newest first.
func (r *AuditRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]model.AuthEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx,
		`SELECT action, status, user_id, identifier, client_ip, reason, occurred_at
		 FROM auth_events
		 WHERE user_id = $1
		 ORDER BY occurred_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list auth events: %w", err)
	}
	defer rows.Close()

	events := make([]model.AuthEvent, 0)
	for rows.Next() {
		var e model.AuthEvent
		if err := rows.Scan(&e.Action, &e.Status, &e.UserID, &e.Identifier, &e.ClientIP, &e.Reason, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan auth event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
