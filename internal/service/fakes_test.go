package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eggtimer/internal/config"
	"eggtimer/internal/models"
)

var t0 = time.Date(2026, time.March, 1, 7, 0, 0, 0, time.UTC)

func testTimerConfig() config.TimerConfig {
	return config.TimerConfig{
		Options:      []int{0, 5, 10, 15, 20},
		TestDuration: 10 * time.Second,
		Tick:         time.Second,
	}
}

func testNotifyConfig() config.NotifyConfig {
	return config.NotifyConfig{
		Enabled: true,
		AppName: "eggtimer",
		Snooze:  time.Minute,
		Channels: []config.Channel{
			{ID: EggChannelID, Name: "Egg", Sound: true},
			{ID: BreakfastChannelID, Name: "Breakfast"},
		},
	}
}

// fakeWakeups is an in-memory WakeupScheduler and RecurringScheduler.
type fakeWakeups struct {
	mu          sync.Mutex
	regs        map[string]models.Wakeup
	registerErr error
	cancelErr   error
	existsErr   error
	registers   []models.Wakeup
	cancels     []string
}

func newFakeWakeups() *fakeWakeups {
	return &fakeWakeups{regs: map[string]models.Wakeup{}}
}

func (f *fakeWakeups) Register(_ context.Context, key string, at int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := models.Wakeup{Key: key, TriggerAt: at}
	f.registers = append(f.registers, w)
	if f.registerErr != nil {
		return f.registerErr
	}
	f.regs[key] = w
	return nil
}

func (f *fakeWakeups) RegisterRecurring(_ context.Context, key, expr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := models.Wakeup{Key: key, CronExpr: expr}
	f.registers = append(f.registers, w)
	if f.registerErr != nil {
		return f.registerErr
	}
	f.regs[key] = w
	return nil
}

func (f *fakeWakeups) Cancel(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, key)
	if f.cancelErr != nil {
		return f.cancelErr
	}
	delete(f.regs, key)
	return nil
}

func (f *fakeWakeups) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.regs[key]
	return ok, nil
}

func (f *fakeWakeups) Pending(_ context.Context) ([]models.Wakeup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Wakeup, 0, len(f.regs))
	for _, w := range f.regs {
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeWakeups) registerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.registers)
}

// fakeTriggerStore is an in-memory repository.TriggerStore.
type fakeTriggerStore struct {
	mu     sync.Mutex
	value  int64
	putErr error
	getErr error
	puts   []int64
}

func (f *fakeTriggerStore) Put(_ context.Context, at int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, at)
	if f.putErr != nil {
		return f.putErr
	}
	f.value = at
	return nil
}

func (f *fakeTriggerStore) Get(_ context.Context) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return 0, false, f.getErr
	}
	return f.value, f.value != 0, nil
}

// fakePresenter records Show and CancelAll calls.
type fakePresenter struct {
	mu        sync.Mutex
	shown     []models.Notification
	cancelAll int
	showErr   error
}

func (f *fakePresenter) Show(_ context.Context, channelID, message string) (models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.showErr != nil {
		return models.Notification{}, f.showErr
	}
	n := models.Notification{ChannelID: channelID, Message: message}
	f.shown = append(f.shown, n)
	return n, nil
}

func (f *fakePresenter) CancelAll(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelAll++
	return nil
}

func (f *fakePresenter) shownCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.shown)
}

// localEventRepo is an in-memory repository.EventRepo safe for the
// countdown goroutine.
type localEventRepo struct {
	mu        sync.Mutex
	appendErr error
	events    []models.TimerEvent
}

func (f *localEventRepo) Append(_ context.Context, e models.TimerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.appendErr
}

func (f *localEventRepo) List(_ context.Context, from, to time.Time, typ string) ([]models.TimerEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TimerEvent
	for _, e := range f.events {
		if (from.IsZero() || !e.OccurredAt.Before(from)) && (to.IsZero() || !e.OccurredAt.After(to)) {
			if typ == "" || e.Type == typ {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *localEventRepo) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

var errDBDown = errors.New("db down")

// waitForState reads snapshots until match returns true.
func waitForState(t *testing.T, ch <-chan models.TimerState, match func(models.TimerState) bool) models.TimerState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				t.Fatal("state channel closed")
			}
			if match(st) {
				return st
			}
		case <-deadline:
			t.Fatal("timed out waiting for state")
		}
	}
}

func drainStates(ch <-chan models.TimerState) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
