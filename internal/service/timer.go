package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eggtimer/internal/broadcast"
	"eggtimer/internal/clock"
	"eggtimer/internal/config"
	"eggtimer/internal/logger"
	"eggtimer/internal/models"
	"eggtimer/internal/repository"
)

// Wake-up keys owned by the timer. Registering under the same key replaces
// the previous registration.
const (
	TimerKey  = "egg_timer"
	SnoozeKey = "egg_snooze"
)

const millisPerMinute = int64(time.Minute / time.Millisecond)

var (
	ErrInvalidSelection   = errors.New("invalid duration selection")
	ErrNoDurationSelected = errors.New("no duration selected")
	ErrPersistence        = errors.New("could not arm timer")
)

// WakeupScheduler fires a callback at an absolute time, even across restarts.
type WakeupScheduler interface {
	Register(ctx context.Context, key string, triggerAtMillis int64) error
	Cancel(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Presenter shows and clears user-visible notifications.
type Presenter interface {
	Show(ctx context.Context, channelID, message string) (models.Notification, error)
	CancelAll(ctx context.Context) error
}

// DurationOptions resolves the configured minute list. Index 0 is always the
// short test timer.
func DurationOptions(cfg config.TimerConfig) []models.DurationOption {
	out := make([]models.DurationOption, len(cfg.Options))
	for i, minutes := range cfg.Options {
		if i == 0 {
			out[i] = models.DurationOption{
				Index:    0,
				Millis:   cfg.TestDuration.Milliseconds(),
				Label:    fmt.Sprintf("%s (test)", cfg.TestDuration),
				TestOnly: true,
			}
			continue
		}
		out[i] = models.DurationOption{
			Index:   i,
			Minutes: minutes,
			Millis:  int64(minutes) * millisPerMinute,
			Label:   fmt.Sprintf("%d min", minutes),
		}
	}
	return out
}

type TimerDeps struct {
	Alarms    WakeupScheduler
	Store     repository.TriggerStore
	Presenter Presenter
	Events    repository.EventRepo
	Clock     clock.Clock
	Log       *logger.Logger
}

// TimerController owns the countdown. The wake-up registration under
// TimerKey decides whether a timer is pending; the trigger store decides
// when it fires.
type TimerController struct {
	options   []models.DurationOption
	tick      time.Duration
	alarms    WakeupScheduler
	store     repository.TriggerStore
	presenter Presenter
	events    repository.EventRepo
	clock     clock.Clock
	log       *logger.Logger
	hub       *broadcast.Hub[models.TimerState]

	mu     sync.Mutex
	state  models.TimerState
	stop   chan struct{}
	ticker clock.Ticker
}

// NewTimerController performs no I/O; call Restore before serving.
func NewTimerController(cfg config.TimerConfig, d TimerDeps) *TimerController {
	clk := d.Clock
	if clk == nil {
		clk = clock.Real()
	}
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	tick := cfg.Tick
	if tick <= 0 {
		tick = time.Second
	}
	return &TimerController{
		options:   DurationOptions(cfg),
		tick:      tick,
		alarms:    d.Alarms,
		store:     d.Store,
		presenter: d.Presenter,
		events:    d.Events,
		clock:     clk,
		log:       log,
		hub:       broadcast.NewHub[models.TimerState](),
		state:     models.TimerState{DurationIndex: models.NoDuration},
	}
}

// Restore reads the scheduler for a pending registration and resumes the
// countdown when one exists.
func (c *TimerController) Restore(ctx context.Context) error {
	active, err := c.alarms.Exists(ctx, TimerKey)
	if err != nil {
		c.log.Errorw("timer_restore_failed", "err", err)
		return fmt.Errorf("%w: query wake-up: %w", ErrPersistence, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.IsActive = active
	if !active {
		c.publishLocked()
		return nil
	}
	return c.resumeLocked(ctx)
}

func (c *TimerController) resumeLocked(ctx context.Context) error {
	at, ok, err := c.store.Get(ctx)
	if err != nil {
		c.log.Errorw("timer_resume_failed", "err", err)
		c.publishLocked()
		return fmt.Errorf("%w: load trigger time: %w", ErrPersistence, err)
	}
	if !ok {
		c.log.Warnw("timer_inconsistent_state", "key", TimerKey, "reason", "wake-up pending without trigger time")
		c.record(ctx, models.EventError, "Pending wake-up has no trigger time", nil)
		c.expireLocked(ctx, "inconsistent")
		return nil
	}

	c.state.TriggerAtMillis = at
	c.log.Infow("timer_resumed", "trigger_at", at)
	c.record(ctx, models.EventResume, "Countdown resumed", map[string]any{"trigger_at": at})
	c.startLoopLocked(ctx)
	return nil
}

func (c *TimerController) Options() []models.DurationOption {
	out := make([]models.DurationOption, len(c.options))
	copy(out, c.options)
	return out
}

// SetDuration selects an option. Out-of-range indices are rejected.
func (c *TimerController) SetDuration(_ context.Context, index int) (models.TimerState, error) {
	if index < 0 || index >= len(c.options) {
		return c.State(), fmt.Errorf("%w: index %d not in [0, %d)", ErrInvalidSelection, index, len(c.options))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.DurationIndex = index
	c.publishLocked()
	return c.snapshotLocked(), nil
}

// Start arms the timer. It is a no-op while a timer is already running.
// The trigger time is persisted before Start returns; if that fails the
// wake-up registration is rolled back.
func (c *TimerController) Start(ctx context.Context) (models.TimerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsActive {
		return c.snapshotLocked(), nil
	}
	idx := c.state.DurationIndex
	if idx == models.NoDuration {
		return c.snapshotLocked(), ErrNoDurationSelected
	}

	duration := c.options[idx].Millis
	triggerAt := c.clock.Now().UnixMilli() + duration

	if err := c.presenter.CancelAll(ctx); err != nil {
		c.log.Warnw("timer_clear_notifications_failed", "err", err)
	}

	if err := c.alarms.Register(ctx, TimerKey, triggerAt); err != nil {
		c.log.Errorw("timer_start_failed", "step", "register", "err", err)
		return c.snapshotLocked(), fmt.Errorf("%w: register wake-up: %w", ErrPersistence, err)
	}
	// Once the wake-up is registered, persist and rollback run to completion
	// even if the caller's context is cancelled.
	armCtx := context.WithoutCancel(ctx)
	if err := c.store.Put(armCtx, triggerAt); err != nil {
		if cerr := c.alarms.Cancel(armCtx, TimerKey); cerr != nil {
			c.log.Errorw("timer_rollback_failed", "err", cerr)
		}
		c.log.Errorw("timer_start_failed", "step", "persist", "err", err)
		return c.snapshotLocked(), fmt.Errorf("%w: persist trigger time: %w", ErrPersistence, err)
	}

	c.state.IsActive = true
	c.state.TriggerAtMillis = triggerAt
	c.log.Infow("timer_started", "duration_index", idx, "duration_ms", duration, "trigger_at", triggerAt)
	c.record(armCtx, models.EventStart, "Timer started", map[string]any{
		"duration_index": idx,
		"duration_ms":    duration,
		"trigger_at":     triggerAt,
	})
	c.startLoopLocked(armCtx)
	return c.snapshotLocked(), nil
}

// Cancel disarms the timer and clears the displayed notification. The
// persisted trigger time is left in place.
func (c *TimerController) Cancel(ctx context.Context) (models.TimerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.alarms.Cancel(ctx, TimerKey); err != nil {
		c.log.Errorw("timer_cancel_failed", "err", err)
		return c.snapshotLocked(), fmt.Errorf("cancel wake-up: %w", err)
	}
	if err := c.presenter.CancelAll(ctx); err != nil {
		c.log.Warnw("timer_clear_notifications_failed", "err", err)
	}

	wasActive := c.state.IsActive
	c.resetLocked()
	if wasActive {
		c.log.Infow("timer_cancelled")
		c.record(ctx, models.EventCancel, "Timer cancelled", nil)
	}
	return c.snapshotLocked(), nil
}

// Expire moves the timer to idle without touching the wake-up registration
// or the notification. Called when the timer's wake-up fires. triggerAtMillis
// is the fired trigger time: a wake-up left over from an earlier run does not
// expire a timer armed since. Zero expires whatever is running.
func (c *TimerController) Expire(ctx context.Context, triggerAtMillis int64) models.TimerState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsActive && c.stop == nil {
		return c.snapshotLocked()
	}
	// TriggerAtMillis is zero when a resume could not read the record; the
	// scheduler is authoritative then.
	if triggerAtMillis != 0 && c.state.TriggerAtMillis != 0 && triggerAtMillis != c.state.TriggerAtMillis {
		c.log.Infow("timer_stale_wakeup_ignored", "fired", triggerAtMillis, "trigger_at", c.state.TriggerAtMillis)
		return c.snapshotLocked()
	}
	c.expireLocked(ctx, "wakeup")
	return c.snapshotLocked()
}

func (c *TimerController) State() models.TimerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// WatchState subscribes to state snapshots. Call the returned func to stop.
func (c *TimerController) WatchState() (<-chan models.TimerState, func()) {
	return c.hub.Subscribe(broadcast.DefaultBuffer)
}

// Close stops the countdown loop and disconnects observers. The wake-up
// registration stays armed.
func (c *TimerController) Close() {
	c.mu.Lock()
	c.stopLoopLocked()
	c.mu.Unlock()
	c.hub.Close()
}

func (c *TimerController) expireLocked(ctx context.Context, source string) {
	c.resetLocked()
	c.log.Infow("timer_expired", "source", source)
	c.record(ctx, models.EventExpire, "Timer expired", map[string]any{"source": source})
}

func (c *TimerController) resetLocked() {
	c.stopLoopLocked()
	c.state.IsActive = false
	c.state.RemainingMillis = 0
	c.state.TriggerAtMillis = 0
	c.publishLocked()
}

// startLoopLocked publishes the current remaining time and starts ticking.
// A trigger time already in the past expires immediately.
func (c *TimerController) startLoopLocked(ctx context.Context) {
	c.stopLoopLocked()

	remaining := c.state.TriggerAtMillis - c.clock.Now().UnixMilli()
	if remaining <= 0 {
		c.expireLocked(ctx, "countdown")
		return
	}
	c.state.RemainingMillis = remaining

	stop := make(chan struct{})
	ticker := c.clock.NewTicker(c.tick)
	c.stop = stop
	c.ticker = ticker
	c.publishLocked()

	go c.countdown(ticker, stop)
}

// stopLoopLocked is synchronous: once it returns no further tick is
// published, because onTick re-checks c.stop under the same lock.
func (c *TimerController) stopLoopLocked() {
	if c.stop == nil {
		return
	}
	close(c.stop)
	c.ticker.Stop()
	c.stop = nil
	c.ticker = nil
}

func (c *TimerController) countdown(ticker clock.Ticker, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			if !c.onTick(stop) {
				return
			}
		}
	}
}

func (c *TimerController) onTick(stop chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != stop {
		return false
	}
	remaining := c.state.TriggerAtMillis - c.clock.Now().UnixMilli()
	if remaining <= 0 {
		c.expireLocked(context.Background(), "countdown")
		return false
	}
	c.state.RemainingMillis = remaining
	c.publishLocked()
	return true
}

func (c *TimerController) snapshotLocked() models.TimerState {
	return c.state
}

func (c *TimerController) publishLocked() {
	c.state.UpdatedAt = c.clock.Now().UTC()
	c.hub.Publish(c.state)
}

func (c *TimerController) record(ctx context.Context, typ, desc string, meta map[string]any) {
	recordEvent(ctx, c.events, c.log, c.clock.Now(), typ, desc, meta)
}
