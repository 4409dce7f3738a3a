package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eggtimer/internal/models"
)

type WakeupSQLite struct {
	db *sql.DB
}

func NewWakeupSQLite(db *sql.DB) *WakeupSQLite {
	return &WakeupSQLite{db: db}
}

var _ WakeupRepo = (*WakeupSQLite)(nil)

const (
	upsertWakeupSQL = `
		INSERT INTO wakeups (key, trigger_at, cron_expr, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			trigger_at=excluded.trigger_at,
			cron_expr=excluded.cron_expr,
			created_at=excluded.created_at
	`

	selectWakeupSQL = `SELECT key, trigger_at, cron_expr, created_at FROM wakeups WHERE key = ?`
	listWakeupsSQL  = `SELECT key, trigger_at, cron_expr, created_at FROM wakeups ORDER BY trigger_at ASC`
	deleteWakeupSQL = `DELETE FROM wakeups WHERE key = ?`
)

// Save inserts or replaces the registration for w.Key.
func (r *WakeupSQLite) Save(ctx context.Context, w models.Wakeup) error {
	if w.Key == "" {
		return errors.New("wakeup key is empty")
	}
	created := w.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx, upsertWakeupSQL, w.Key, w.TriggerAt, w.CronExpr, created.UTC()); err != nil {
		return fmt.Errorf("save wakeup %q: %w", w.Key, err)
	}
	return nil
}

// Get returns the registration for key, or (nil, nil) if there is none.
func (r *WakeupSQLite) Get(ctx context.Context, key string) (*models.Wakeup, error) {
	var w models.Wakeup
	err := r.db.QueryRowContext(ctx, selectWakeupSQL, key).Scan(&w.Key, &w.TriggerAt, &w.CronExpr, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wakeup %q: %w", key, err)
	}
	w.CreatedAt = w.CreatedAt.UTC()
	return &w, nil
}

// Delete removes the registration; deleting a missing key is not an error.
func (r *WakeupSQLite) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, deleteWakeupSQL, key); err != nil {
		return fmt.Errorf("delete wakeup %q: %w", key, err)
	}
	return nil
}

// List returns every registration ordered by trigger time.
func (r *WakeupSQLite) List(ctx context.Context) ([]models.Wakeup, error) {
	rows, err := r.db.QueryContext(ctx, listWakeupsSQL)
	if err != nil {
		return nil, fmt.Errorf("list wakeups: %w", err)
	}
	defer rows.Close()

	var out []models.Wakeup
	for rows.Next() {
		var w models.Wakeup
		if err := rows.Scan(&w.Key, &w.TriggerAt, &w.CronExpr, &w.CreatedAt); err != nil {
			return nil, err
		}
		w.CreatedAt = w.CreatedAt.UTC()
		out = append(out, w)
	}
	return out, rows.Err()
}
