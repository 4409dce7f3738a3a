package service

import (
	"context"
	"strings"

	"eggtimer/internal/config"
	"eggtimer/internal/logger"
	"eggtimer/internal/models"
)

// Expirer is the part of the timer the wake-up path needs.
type Expirer interface {
	Expire(ctx context.Context, triggerAtMillis int64) models.TimerState
}

// Publisher delivers a topic message.
type Publisher interface {
	Publish(ctx context.Context, msg models.PushMessage) (int, error)
}

// WakeReceiver routes fired wake-ups. Timer and snooze wake-ups show the
// time's-up notification; push schedule wake-ups publish their message.
type WakeReceiver struct {
	timer     Expirer
	presenter Presenter
	push      Publisher
	schedules map[string]config.PushSchedule
	log       *logger.Logger
}

// NewWakeReceiver wires the handler. timer and push may be nil.
func NewWakeReceiver(timer Expirer, presenter Presenter, push Publisher, schedules []config.PushSchedule, log *logger.Logger) *WakeReceiver {
	if log == nil {
		log = logger.Nop()
	}
	r := &WakeReceiver{
		timer:     timer,
		presenter: presenter,
		push:      push,
		schedules: make(map[string]config.PushSchedule, len(schedules)),
		log:       log,
	}
	for i, s := range schedules {
		r.schedules[PushScheduleKey(i, s)] = s
	}
	return r
}

// Handle is a WakeFunc.
func (r *WakeReceiver) Handle(ctx context.Context, w models.Wakeup) {
	switch {
	case w.Key == TimerKey || w.Key == SnoozeKey:
		if _, err := r.presenter.Show(ctx, EggChannelID, TimesUpMessage); err != nil {
			r.log.Errorw("wake_notification_failed", "key", w.Key, "err", err)
		}
		if w.Key == TimerKey && r.timer != nil {
			r.timer.Expire(ctx, w.TriggerAt)
		}

	case strings.HasPrefix(w.Key, PushKeyPrefix):
		s, ok := r.schedules[w.Key]
		if !ok {
			r.log.Warnw("wake_unknown_schedule", "key", w.Key)
			return
		}
		if r.push == nil {
			return
		}
		msg := models.PushMessage{
			From:         "schedule",
			Topic:        s.Topic,
			Notification: &models.PushNotification{Title: s.Title, Body: s.Body},
		}
		if _, err := r.push.Publish(ctx, msg); err != nil {
			r.log.Errorw("wake_push_failed", "key", w.Key, "err", err)
		}

	default:
		r.log.Warnw("wake_unknown_key", "key", w.Key)
	}
}
