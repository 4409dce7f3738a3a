package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SubscriptionSQLite struct {
	db *sql.DB
}

func NewSubscriptionSQLite(db *sql.DB) *SubscriptionSQLite {
	return &SubscriptionSQLite{db: db}
}

var _ SubscriptionRepo = (*SubscriptionSQLite)(nil)

const (
	insertSubscriptionSQL = `
		INSERT INTO push_subscriptions (user_id, topic, created_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id, topic) DO NOTHING
	`
	deleteSubscriptionSQL = `DELETE FROM push_subscriptions WHERE user_id = ? AND topic = ?`
	selectTopicsSQL       = `SELECT topic FROM push_subscriptions WHERE user_id = ? ORDER BY topic ASC`
	countSubscribersSQL   = `SELECT COUNT(*) FROM push_subscriptions WHERE topic = ?`
)

// Subscribe is idempotent.
func (r *SubscriptionSQLite) Subscribe(ctx context.Context, userID int, topic string) error {
	if _, err := r.db.ExecContext(ctx, insertSubscriptionSQL, userID, topic, time.Now().UTC()); err != nil {
		return fmt.Errorf("subscribe user %d to %q: %w", userID, topic, err)
	}
	return nil
}

func (r *SubscriptionSQLite) Unsubscribe(ctx context.Context, userID int, topic string) error {
	if _, err := r.db.ExecContext(ctx, deleteSubscriptionSQL, userID, topic); err != nil {
		return fmt.Errorf("unsubscribe user %d from %q: %w", userID, topic, err)
	}
	return nil
}

func (r *SubscriptionSQLite) Topics(ctx context.Context, userID int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, selectTopicsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list topics for user %d: %w", userID, err)
	}
	defer rows.Close()

	topics := make([]string, 0, 4)
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

func (r *SubscriptionSQLite) CountSubscribers(ctx context.Context, topic string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countSubscribersSQL, topic).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribers of %q: %w", topic, err)
	}
	return n, nil
}
