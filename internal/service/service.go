package service

import (
	"context"
	"errors"
	"fmt"

	"eggtimer/internal/clock"
	"eggtimer/internal/config"
	"eggtimer/internal/logger"
	"eggtimer/internal/models"
	"eggtimer/internal/notify"
	"eggtimer/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Timer exposes the countdown: duration selection, start/cancel and state.
type Timer interface {
	Options() []models.DurationOption
	State() models.TimerState
	WatchState() (<-chan models.TimerState, func())
	SetDuration(ctx context.Context, index int) (models.TimerState, error)
	Start(ctx context.Context) (models.TimerState, error)
	Cancel(ctx context.Context) (models.TimerState, error)
}

// Notifications exposes the displayed notification and the snooze action.
type Notifications interface {
	Current() (models.Notification, bool)
	CancelAll(ctx context.Context) error
	Snooze(ctx context.Context) (int64, error)
	WatchNotifications() (<-chan NotificationUpdate, func())
}

// Push exposes topic subscriptions and publishing.
type Push interface {
	SubscribeTopic(ctx context.Context, userID int, topic string) error
	UnsubscribeTopic(ctx context.Context, userID int, topic string) error
	Topics(ctx context.Context, userID int) ([]string, error)
	Publish(ctx context.Context, msg models.PushMessage) (int, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.TimerEvent, error)
}

// Service aggregates the sub-services used by the HTTP layer.
type Service struct {
	Timer
	Notifications
	Push
	EventLog
	Authorization

	alarms    *AlarmService
	timer     *TimerController
	presenter *NotificationService
	push      *PushService
	receiver  *WakeReceiver
	schedules []config.PushSchedule
}

// Deps carries what NewService cannot build itself.
type Deps struct {
	Clock    clock.Clock
	Notifier notify.Notifier
	Log      *logger.Logger
}

// NewService wires the repository layer into concrete services. Nothing runs
// until Run is called.
func NewService(repos *repository.Repository, cfg config.Config, d Deps) *Service {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	clk := d.Clock
	if clk == nil {
		clk = clock.Real()
	}

	alarms := NewAlarmService(repos.Wakeups, clk, log.With("component", "alarm"))
	presenter := NewNotificationService(cfg.Notify, d.Notifier, alarms, repos.EventRepo, clk, log.With("component", "notify"))
	timer := NewTimerController(cfg.Timer, TimerDeps{
		Alarms:    alarms,
		Store:     repos.Trigger,
		Presenter: presenter,
		Events:    repos.EventRepo,
		Clock:     clk,
		Log:       log.With("component", "timer"),
	})
	push := NewPushService(cfg.Push, repos.Subscriptions, presenter, alarms, repos.EventRepo, clk, log.With("component", "push"))
	receiver := NewWakeReceiver(timer, presenter, push, cfg.Push.Schedules, log.With("component", "wake"))

	return &Service{
		Timer:         timer,
		Notifications: presenter,
		Push:          push,
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, cfg.Auth.SigningKey, cfg.Auth.TokenTTL),

		alarms:    alarms,
		timer:     timer,
		presenter: presenter,
		push:      push,
		receiver:  receiver,
		schedules: cfg.Push.Schedules,
	}
}

// Run starts the wake-up scheduler, registers push schedules and restores
// the timer. Due wake-ups fire before the timer is restored, so a timer that
// expired while the process was down comes back idle.
func (s *Service) Run(ctx context.Context) error {
	if s.alarms == nil {
		return nil
	}
	if err := s.alarms.Start(ctx, s.receiver.Handle); err != nil {
		return fmt.Errorf("start alarms: %w", err)
	}
	if err := s.push.SyncSchedules(ctx, s.schedules); err != nil {
		return fmt.Errorf("push schedules: %w", err)
	}
	// The scheduler stays authoritative when the trigger time cannot be
	// read, so a failed restore leaves the service running.
	if err := s.timer.Restore(ctx); err != nil && !errors.Is(err, ErrPersistence) {
		return fmt.Errorf("restore timer: %w", err)
	}
	return nil
}

// Close stops the countdown and disconnects observers.
func (s *Service) Close() {
	if s.timer != nil {
		s.timer.Close()
	}
	if s.presenter != nil {
		s.presenter.Close()
	}
}
