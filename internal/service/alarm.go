package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eggtimer/internal/clock"
	"eggtimer/internal/logger"
	"eggtimer/internal/models"
	"eggtimer/internal/repository"
	"eggtimer/internal/scheduler"
)

var (
	ErrEmptyKey       = errors.New("wake-up key must not be empty")
	ErrInvalidTrigger = errors.New("wake-up trigger time must be positive")
	ErrInvalidCron    = errors.New("invalid cron expression")
)

// WakeFunc handles a fired wake-up. It runs on the scheduler goroutine, so it
// must not block for long.
type WakeFunc func(ctx context.Context, w models.Wakeup)

// AlarmService is the durable wake-up scheduler. Registrations are written to
// the wakeups table before they are armed in memory, and Start re-arms them
// after a restart. Registrations that came due while the process was down
// fire as soon as Start runs.
type AlarmService struct {
	repo  repository.WakeupRepo
	clock clock.Clock
	log   *logger.Logger

	// mu serialises repository writes against the fire path so a wake-up
	// re-registered while firing is not deleted.
	mu     sync.Mutex
	sched  *scheduler.Scheduler
	ctx    context.Context
	onWake WakeFunc
}

func NewAlarmService(repo repository.WakeupRepo, clk clock.Clock, log *logger.Logger) *AlarmService {
	if clk == nil {
		clk = clock.Real()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AlarmService{repo: repo, clock: clk, log: log}
}

// Start loads durable registrations, fires the ones already due and arms the
// rest. Registrations made before Start are persisted and picked up here.
// The scheduler goroutine exits when ctx is done.
func (a *AlarmService) Start(ctx context.Context, onWake WakeFunc) error {
	stored, err := a.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load wake-ups: %w", err)
	}

	events := make([]scheduler.Event, 0, len(stored))
	for _, w := range stored {
		events = append(events, toSchedulerEvent(w))
	}
	missed, future := scheduler.Recover(events, a.clock.Now())

	a.mu.Lock()
	if a.sched != nil {
		a.mu.Unlock()
		return errors.New("alarm service already started")
	}
	a.ctx = ctx
	a.onWake = onWake
	a.sched = scheduler.New(ctx, a.fire)
	sched := a.sched
	a.mu.Unlock()

	a.log.Infow("wakeups_recovered", "missed", len(missed), "future", len(future))
	for _, e := range future {
		sched.Add(e)
	}
	for _, e := range missed {
		a.fire(e)
	}
	return nil
}

// Register arms a one-shot wake-up at triggerAtMillis (unix ms), replacing
// any registration with the same key.
func (a *AlarmService) Register(ctx context.Context, key string, triggerAtMillis int64) error {
	if key == "" {
		return ErrEmptyKey
	}
	if triggerAtMillis <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTrigger, triggerAtMillis)
	}
	return a.save(ctx, models.Wakeup{
		Key:       key,
		TriggerAt: triggerAtMillis,
		CreatedAt: a.clock.Now().UTC(),
	})
}

// RegisterRecurring arms a wake-up that fires at every occurrence of a
// 5-field cron expression.
func (a *AlarmService) RegisterRecurring(ctx context.Context, key, cronExpr string) error {
	if key == "" {
		return ErrEmptyKey
	}
	now := a.clock.Now()
	if !scheduler.ValidCron(cronExpr, now) {
		return fmt.Errorf("%w: %q", ErrInvalidCron, cronExpr)
	}
	next, err := scheduler.NextOccurrence(cronExpr, now)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidCron, cronExpr, err)
	}
	return a.save(ctx, models.Wakeup{
		Key:       key,
		TriggerAt: next.UnixMilli(),
		CronExpr:  cronExpr,
		CreatedAt: now.UTC(),
	})
}

func (a *AlarmService) save(ctx context.Context, w models.Wakeup) error {
	a.mu.Lock()
	err := a.repo.Save(ctx, w)
	sched := a.sched
	a.mu.Unlock()
	if err != nil {
		return fmt.Errorf("save wake-up %q: %w", w.Key, err)
	}
	if sched != nil {
		sched.Add(toSchedulerEvent(w))
	}
	a.log.Infow("wakeup_registered", "key", w.Key, "trigger_at", w.TriggerAt, "cron", w.CronExpr)
	return nil
}

// Cancel removes the registration for key. Cancelling an unknown key is not
// an error.
func (a *AlarmService) Cancel(ctx context.Context, key string) error {
	a.mu.Lock()
	err := a.repo.Delete(ctx, key)
	sched := a.sched
	a.mu.Unlock()
	if err != nil {
		return fmt.Errorf("delete wake-up %q: %w", key, err)
	}
	if sched != nil {
		sched.Remove(key)
	}
	a.log.Infow("wakeup_cancelled", "key", key)
	return nil
}

func (a *AlarmService) Exists(ctx context.Context, key string) (bool, error) {
	w, err := a.repo.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get wake-up %q: %w", key, err)
	}
	return w != nil, nil
}

// Pending lists every durable registration.
func (a *AlarmService) Pending(ctx context.Context) ([]models.Wakeup, error) {
	return a.repo.List(ctx)
}

// fire runs for every due event. Events whose durable registration was
// cancelled or replaced in the meantime are dropped; one-shot registrations
// are deleted and recurring ones are moved to their next occurrence before
// the handler runs.
func (a *AlarmService) fire(e scheduler.Event) {
	a.mu.Lock()
	ctx, onWake := a.ctx, a.onWake
	w, ok := a.claimLocked(ctx, e)
	a.mu.Unlock()
	if !ok {
		return
	}

	late := a.clock.Now().UnixMilli() - e.TriggerAt.UnixMilli()
	a.log.Infow("wakeup_fired", "key", w.Key, "late_ms", late)
	if onWake != nil {
		onWake(ctx, w)
	}
}

func (a *AlarmService) claimLocked(ctx context.Context, e scheduler.Event) (models.Wakeup, bool) {
	stored, err := a.repo.Get(ctx, e.Key)
	if err != nil {
		// Prefer a duplicate delivery to a lost one.
		a.log.Errorw("wakeup_lookup_failed", "key", e.Key, "err", err)
		return models.Wakeup{Key: e.Key, TriggerAt: e.TriggerAt.UnixMilli(), CronExpr: e.CronExpr}, true
	}
	if stored == nil {
		a.log.Infow("wakeup_dropped", "key", e.Key, "reason", "cancelled")
		return models.Wakeup{}, false
	}
	fired := *stored

	if stored.Recurring() {
		next, err := scheduler.NextOccurrence(stored.CronExpr, a.clock.Now())
		if err != nil {
			a.log.Errorw("wakeup_rearm_failed", "key", stored.Key, "err", err)
			return fired, true
		}
		stored.TriggerAt = next.UnixMilli()
		if err := a.repo.Save(ctx, *stored); err != nil {
			a.log.Errorw("wakeup_rearm_failed", "key", stored.Key, "err", err)
		}
		return fired, true
	}

	if stored.TriggerAt != e.TriggerAt.UnixMilli() {
		a.log.Infow("wakeup_dropped", "key", e.Key, "reason", "replaced")
		return models.Wakeup{}, false
	}
	if err := a.repo.Delete(ctx, stored.Key); err != nil {
		a.log.Errorw("wakeup_delete_failed", "key", stored.Key, "err", err)
	}
	return fired, true
}

func toSchedulerEvent(w models.Wakeup) scheduler.Event {
	return scheduler.Event{
		Key:       w.Key,
		TriggerAt: time.UnixMilli(w.TriggerAt),
		CronExpr:  w.CronExpr,
	}
}
