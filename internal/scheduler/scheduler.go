package scheduler

import (
	"container/heap"
	"context"
	"strings"
	"time"

	"github.com/adhocore/gronx"
)

const maxSleepCap = 60 * time.Second

// TriggerFunc is called from the scheduler goroutine when an event fires.
// It must not block on the Scheduler's own Add/Remove for long; both are
// buffered.
type TriggerFunc func(Event)

// Scheduler sleeps until the next event's trigger time and then calls the
// TriggerFunc. Recurring events are re-queued at their next cron occurrence.
type Scheduler struct {
	addChan    chan Event
	removeChan chan string
	ctx        context.Context
	now        func() time.Time
}

// New creates and starts a Scheduler. The goroutine exits when ctx is done.
func New(ctx context.Context, onTrigger TriggerFunc) *Scheduler {
	return newWithClock(ctx, onTrigger, time.Now)
}

func newWithClock(ctx context.Context, onTrigger TriggerFunc, now func() time.Time) *Scheduler {
	s := &Scheduler{
		addChan:    make(chan Event, 64),
		removeChan: make(chan string, 64),
		ctx:        ctx,
		now:        now,
	}
	go s.run(onTrigger)
	return s
}

// Add queues an event, replacing a queued event with the same key.
func (s *Scheduler) Add(event Event) {
	select {
	case s.addChan <- event:
	case <-s.ctx.Done():
	}
}

// Remove drops the queued event with the given key, if any.
func (s *Scheduler) Remove(key string) {
	select {
	case s.removeChan <- key:
	case <-s.ctx.Done():
	}
}

func (s *Scheduler) run(onTrigger TriggerFunc) {
	h := &eventHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			return nil
		}
		dur := (*h)[0].TriggerAt.Sub(s.now())
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case event := <-s.addChan:
			heapUpsert(h, event)
			timerCh = resetTimer()

		case key := <-s.removeChan:
			heapRemoveByKey(h, key)
			timerCh = resetTimer()

		case <-timerCh:
			now := s.now()
			for h.Len() > 0 && !(*h)[0].TriggerAt.After(now) {
				event := heapPop(h)
				onTrigger(event)
				if event.CronExpr != "" {
					if next, err := NextOccurrence(event.CronExpr, s.now()); err == nil {
						heapUpsert(h, Event{Key: event.Key, TriggerAt: next, CronExpr: event.CronExpr})
					}
				}
			}
			timerCh = resetTimer()
		}
	}
}

// NextOccurrence returns the first time strictly after start at which the
// cron expression fires.
func NextOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

// ValidCron reports whether expr is a 5-field cron expression that fires at
// least once within a year of from. gronx alone also accepts a seconds field.
func ValidCron(expr string, from time.Time) bool {
	if len(strings.Fields(expr)) != 5 || !gronx.IsValid(expr) {
		return false
	}
	next, err := gronx.NextTickAfter(expr, from, false)
	if err != nil {
		return false
	}
	return next.Before(from.Add(365 * 24 * time.Hour))
}

// Recover splits durable registrations at startup. Events due at or before
// now are returned in missed and should fire immediately; the rest are
// returned in future for Add. A missed recurring event is also re-armed at
// its next occurrence in future.
func Recover(events []Event, now time.Time) (missed, future []Event) {
	for _, e := range events {
		if e.TriggerAt.IsZero() {
			continue
		}
		if e.TriggerAt.After(now) {
			future = append(future, e)
			continue
		}
		missed = append(missed, e)
		if e.CronExpr != "" {
			if next, err := NextOccurrence(e.CronExpr, now); err == nil {
				future = append(future, Event{Key: e.Key, TriggerAt: next, CronExpr: e.CronExpr})
			}
		}
	}
	return missed, future
}
