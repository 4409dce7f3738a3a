package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

type TriggerSQLite struct {
	db *sql.DB
}

func NewTriggerSQLite(db *sql.DB) *TriggerSQLite {
	return &TriggerSQLite{db: db}
}

var _ TriggerStore = (*TriggerSQLite)(nil)

const (
	triggerSettingKey = "trigger_at"

	upsertSettingSQL = `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`

	selectSettingSQL = `SELECT value FROM settings WHERE key = ?`
)

// Put stores the trigger time. The write is synchronous: when Put returns
// nil the value is committed.
func (r *TriggerSQLite) Put(ctx context.Context, triggerAtMillis int64) error {
	if triggerAtMillis < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeTrigger, triggerAtMillis)
	}
	if _, err := r.db.ExecContext(ctx, upsertSettingSQL,
		triggerSettingKey,
		strconv.FormatInt(triggerAtMillis, 10),
	); err != nil {
		return fmt.Errorf("put %s: %w", triggerSettingKey, err)
	}
	return nil
}

// Get returns the stored trigger time; ok is false when none is set.
func (r *TriggerSQLite) Get(ctx context.Context) (int64, bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, selectSettingSQL, triggerSettingKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get %s: %w", triggerSettingKey, err)
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s %q: %w", triggerSettingKey, raw, err)
	}
	if v == 0 {
		return 0, false, nil
	}
	return v, true, nil
}
