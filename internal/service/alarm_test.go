package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eggtimer/internal/clock"
	"eggtimer/internal/models"
)

// memWakeupRepo is an in-memory repository.WakeupRepo.
type memWakeupRepo struct {
	mu      sync.Mutex
	rows    map[string]models.Wakeup
	listErr error
}

func newMemWakeupRepo(rows ...models.Wakeup) *memWakeupRepo {
	r := &memWakeupRepo{rows: map[string]models.Wakeup{}}
	for _, w := range rows {
		r.rows[w.Key] = w
	}
	return r
}

func (r *memWakeupRepo) Save(_ context.Context, w models.Wakeup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[w.Key] = w
	return nil
}

func (r *memWakeupRepo) Get(_ context.Context, key string) (*models.Wakeup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.rows[key]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *memWakeupRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, key)
	return nil
}

func (r *memWakeupRepo) List(_ context.Context) ([]models.Wakeup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.Wakeup, 0, len(r.rows))
	for _, w := range r.rows {
		out = append(out, w)
	}
	return out, nil
}

func (r *memWakeupRepo) row(key string) (models.Wakeup, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.rows[key]
	return w, ok
}

func startAlarms(t *testing.T, repo *memWakeupRepo) (*AlarmService, <-chan models.Wakeup) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fired := make(chan models.Wakeup, 16)
	a := NewAlarmService(repo, clock.Real(), nil)
	if err := a.Start(ctx, func(_ context.Context, w models.Wakeup) { fired <- w }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return a, fired
}

func expectFire(t *testing.T, fired <-chan models.Wakeup, key string) models.Wakeup {
	t.Helper()
	select {
	case w := <-fired:
		if w.Key != key {
			t.Fatalf("expected %s to fire, got %s", key, w.Key)
		}
		return w
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", key)
	}
	return models.Wakeup{}
}

func expectNoFire(t *testing.T, fired <-chan models.Wakeup, wait time.Duration) {
	t.Helper()
	select {
	case w := <-fired:
		t.Fatalf("unexpected wake-up %+v", w)
	case <-time.After(wait):
	}
}

func TestAlarmService_RegisterFiresAndDeletes(t *testing.T) {
	repo := newMemWakeupRepo()
	a, fired := startAlarms(t, repo)
	ctx := context.Background()

	at := time.Now().Add(100 * time.Millisecond).UnixMilli()
	if err := a.Register(ctx, TimerKey, at); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if ok, _ := a.Exists(ctx, TimerKey); !ok {
		t.Fatal("expected registration to exist before firing")
	}

	w := expectFire(t, fired, TimerKey)
	if w.TriggerAt != at {
		t.Fatalf("expected trigger %d, got %d", at, w.TriggerAt)
	}
	if ok, _ := a.Exists(ctx, TimerKey); ok {
		t.Fatal("one-shot registration should be deleted once fired")
	}
}

func TestAlarmService_CancelBeforeFire(t *testing.T) {
	repo := newMemWakeupRepo()
	a, fired := startAlarms(t, repo)
	ctx := context.Background()

	if err := a.Register(ctx, TimerKey, time.Now().Add(150*time.Millisecond).UnixMilli()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := a.Cancel(ctx, TimerKey); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if ok, _ := a.Exists(ctx, TimerKey); ok {
		t.Fatal("expected no registration after cancel")
	}
	expectNoFire(t, fired, 400*time.Millisecond)
}

func TestAlarmService_ReplaceSameKey(t *testing.T) {
	repo := newMemWakeupRepo()
	a, fired := startAlarms(t, repo)
	ctx := context.Background()

	_ = a.Register(ctx, TimerKey, time.Now().Add(100*time.Millisecond).UnixMilli())
	later := time.Now().Add(time.Hour).UnixMilli()
	_ = a.Register(ctx, TimerKey, later)

	expectNoFire(t, fired, 300*time.Millisecond)
	w, ok := repo.row(TimerKey)
	if !ok || w.TriggerAt != later {
		t.Fatalf("expected replaced registration at %d, got %+v", later, w)
	}
}

func TestAlarmService_StartFiresMissedAndRearmsFuture(t *testing.T) {
	now := time.Now()
	repo := newMemWakeupRepo(
		models.Wakeup{Key: TimerKey, TriggerAt: now.Add(-time.Minute).UnixMilli()},
		models.Wakeup{Key: SnoozeKey, TriggerAt: now.Add(150 * time.Millisecond).UnixMilli()},
	)

	a, fired := startAlarms(t, repo)

	expectFire(t, fired, TimerKey)
	expectFire(t, fired, SnoozeKey)
	if ok, _ := a.Exists(context.Background(), TimerKey); ok {
		t.Fatal("missed one-shot should be deleted after firing")
	}
}

func TestAlarmService_RegisterBeforeStartIsPersisted(t *testing.T) {
	repo := newMemWakeupRepo()
	a := NewAlarmService(repo, clock.Real(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Register(ctx, TimerKey, time.Now().Add(50*time.Millisecond).UnixMilli()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, ok := repo.row(TimerKey); !ok {
		t.Fatal("registration should be persisted before Start")
	}

	fired := make(chan models.Wakeup, 1)
	if err := a.Start(ctx, func(_ context.Context, w models.Wakeup) { fired <- w }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	expectFire(t, fired, TimerKey)
}

func TestAlarmService_StartTwice(t *testing.T) {
	a, _ := startAlarms(t, newMemWakeupRepo())
	if err := a.Start(context.Background(), nil); err == nil {
		t.Fatal("expected error on second Start")
	}
}

func TestAlarmService_StartListError(t *testing.T) {
	repo := newMemWakeupRepo()
	repo.listErr = errDBDown
	a := NewAlarmService(repo, clock.Real(), nil)

	if err := a.Start(context.Background(), nil); !errors.Is(err, errDBDown) {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestAlarmService_RegisterValidation(t *testing.T) {
	a := NewAlarmService(newMemWakeupRepo(), clock.Real(), nil)
	ctx := context.Background()

	if err := a.Register(ctx, "", 1); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if err := a.Register(ctx, TimerKey, 0); !errors.Is(err, ErrInvalidTrigger) {
		t.Errorf("expected ErrInvalidTrigger, got %v", err)
	}
	if err := a.RegisterRecurring(ctx, "push:0:breakfast", "every morning"); !errors.Is(err, ErrInvalidCron) {
		t.Errorf("expected ErrInvalidCron, got %v", err)
	}
}

func TestAlarmService_RegisterRecurring(t *testing.T) {
	fake := clock.NewFake(t0)
	repo := newMemWakeupRepo()
	a := NewAlarmService(repo, fake, nil)

	if err := a.RegisterRecurring(context.Background(), "push:0:breakfast", "0 8 * * *"); err != nil {
		t.Fatalf("RegisterRecurring: %v", err)
	}

	w, ok := repo.row("push:0:breakfast")
	if !ok {
		t.Fatal("expected recurring registration to be stored")
	}
	want := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC).UnixMilli()
	if w.TriggerAt != want || w.CronExpr != "0 8 * * *" {
		t.Fatalf("unexpected registration: %+v", w)
	}

	pending, err := a.Pending(context.Background())
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected 1 pending wake-up, got %v (%v)", pending, err)
	}
}

func TestAlarmService_MissedRecurringIsRearmed(t *testing.T) {
	now := time.Now()
	repo := newMemWakeupRepo(models.Wakeup{
		Key:       "push:0:breakfast",
		TriggerAt: now.Add(-time.Hour).UnixMilli(),
		CronExpr:  "* * * * *",
	})

	_, fired := startAlarms(t, repo)
	expectFire(t, fired, "push:0:breakfast")

	w, ok := repo.row("push:0:breakfast")
	if !ok {
		t.Fatal("recurring registration must survive firing")
	}
	if w.TriggerAt <= now.UnixMilli() {
		t.Fatalf("expected next occurrence after now, got %d", w.TriggerAt)
	}
}
