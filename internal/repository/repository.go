package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eggtimer/internal/models"
)

// ErrNegativeTrigger is returned when a trigger time before the epoch is stored.
var ErrNegativeTrigger = errors.New("trigger time must be non-negative")

// ErrUsernameTaken is returned by Authorization.Create for a duplicate username.
var ErrUsernameTaken = errors.New("username already taken")

// Authorization stores sign-in accounts. GetByUsername returns (nil, nil)
// for an unknown name.
type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TriggerStore persists the single absolute trigger time (unix ms).
// A zero or missing value means no timer is scheduled.
type TriggerStore interface {
	Put(ctx context.Context, triggerAtMillis int64) error
	Get(ctx context.Context) (triggerAtMillis int64, ok bool, err error)
}

// WakeupRepo is the durable side of the wake-up scheduler.
type WakeupRepo interface {
	Save(ctx context.Context, w models.Wakeup) error
	Get(ctx context.Context, key string) (*models.Wakeup, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]models.Wakeup, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.TimerEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.TimerEvent, error)
}

// SubscriptionRepo stores push topic subscriptions per user.
type SubscriptionRepo interface {
	Subscribe(ctx context.Context, userID int, topic string) error
	Unsubscribe(ctx context.Context, userID int, topic string) error
	Topics(ctx context.Context, userID int) ([]string, error)
	CountSubscribers(ctx context.Context, topic string) (int, error)
}

type Repository struct {
	Trigger       TriggerStore
	Wakeups       WakeupRepo
	EventRepo     EventRepo
	Subscriptions SubscriptionRepo
	Auth          Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Trigger:       NewTriggerSQLite(db),
		Wakeups:       NewWakeupSQLite(db),
		EventRepo:     NewEventSQLite(db),
		Subscriptions: NewSubscriptionSQLite(db),
		Auth:          NewUserSQLite(db),
	}
}
