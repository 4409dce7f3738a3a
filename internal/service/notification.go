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
	"eggtimer/internal/notify"
	"eggtimer/internal/repository"

	"github.com/google/uuid"
)

// Channel ids and the message shown when the egg timer goes off.
const (
	EggChannelID       = "egg"
	BreakfastChannelID = "breakfast"
	TimesUpMessage     = "Time's up! Your eggs are ready."
)

var (
	ErrUnknownChannel    = errors.New("unknown notification channel")
	ErrEmptyMessage      = errors.New("notification message must not be empty")
	ErrSnoozeUnavailable = errors.New("snooze needs a wake-up scheduler")
	ErrNothingToSnooze   = errors.New("no notification is displayed")
)

const defaultSnoozeDuration = time.Minute

// NotificationService is the notification presenter. It needs no timer
// state, so the wake-up path and the notify command can use it on its own.
type NotificationService struct {
	notifier notify.Notifier
	channels map[string]config.Channel
	order    []string
	alarms   WakeupScheduler
	snooze   time.Duration
	events   repository.EventRepo
	clock    clock.Clock
	log      *logger.Logger
	hub      *broadcast.Hub[NotificationUpdate]

	mu      sync.Mutex
	current *models.Notification
}

// NewNotificationService builds a presenter for the configured channels.
// alarms and events may be nil; without alarms Snooze is unavailable.
func NewNotificationService(cfg config.NotifyConfig, n notify.Notifier, alarms WakeupScheduler, events repository.EventRepo, clk clock.Clock, log *logger.Logger) *NotificationService {
	if n == nil {
		n = notify.Nop()
	}
	if clk == nil {
		clk = clock.Real()
	}
	if log == nil {
		log = logger.Nop()
	}
	snooze := cfg.Snooze
	if snooze <= 0 {
		snooze = defaultSnoozeDuration
	}
	s := &NotificationService{
		notifier: n,
		channels: make(map[string]config.Channel, len(cfg.Channels)),
		alarms:   alarms,
		snooze:   snooze,
		events:   events,
		clock:    clk,
		log:      log,
		hub:      broadcast.NewHub[NotificationUpdate](),
	}
	for _, ch := range cfg.Channels {
		if _, dup := s.channels[ch.ID]; !dup {
			s.order = append(s.order, ch.ID)
		}
		s.channels[ch.ID] = ch
	}
	return s
}

// Show displays message on the given channel and makes it the current
// notification. A failing desktop notifier is logged; observers still get
// the notification.
func (s *NotificationService) Show(ctx context.Context, channelID, message string) (models.Notification, error) {
	ch, ok := s.channels[channelID]
	if !ok {
		return models.Notification{}, fmt.Errorf("%w: %q", ErrUnknownChannel, channelID)
	}
	if message == "" {
		return models.Notification{}, ErrEmptyMessage
	}

	title := ch.Name
	if title == "" {
		title = ch.ID
	}
	var err error
	if ch.Sound {
		err = s.notifier.SendWithSound(title, message)
	} else {
		err = s.notifier.Send(title, message)
	}
	if err != nil {
		s.log.Warnw("notification_delivery_failed", "channel", channelID, "err", err)
	}

	n := models.Notification{
		ID:        uuid.NewString(),
		ChannelID: ch.ID,
		Title:     title,
		Message:   message,
		Sound:     ch.Sound,
		ShownAt:   s.clock.Now().UTC(),
	}

	s.mu.Lock()
	s.current = &n
	shown := n
	s.hub.Publish(NotificationUpdate{Current: &shown})
	s.mu.Unlock()

	s.log.Infow("notification_shown", "channel", channelID, "id", n.ID)
	recordEvent(ctx, s.events, s.log, s.clock.Now(), models.EventNotify, message, map[string]any{"channel": channelID})
	return n, nil
}

// CancelAll clears the current notification.
func (s *NotificationService) CancelAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	s.current = nil
	s.hub.Publish(NotificationUpdate{})
	s.log.Infow("notifications_cleared")
	return nil
}

// Current returns the displayed notification, if any.
func (s *NotificationService) Current() (models.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Notification{}, false
	}
	return *s.current, true
}

// Snooze dismisses the current notification and shows the time's-up message
// again after the configured snooze interval. It returns the new trigger
// time in unix ms.
func (s *NotificationService) Snooze(ctx context.Context) (int64, error) {
	if s.alarms == nil {
		return 0, ErrSnoozeUnavailable
	}
	if _, ok := s.Current(); !ok {
		return 0, ErrNothingToSnooze
	}

	triggerAt := s.clock.Now().Add(s.snooze).UnixMilli()
	if err := s.alarms.Register(ctx, SnoozeKey, triggerAt); err != nil {
		s.log.Errorw("snooze_failed", "err", err)
		return 0, fmt.Errorf("register snooze: %w", err)
	}
	if err := s.CancelAll(ctx); err != nil {
		s.log.Warnw("snooze_clear_notification_failed", "err", err)
	}

	s.log.Infow("notification_snoozed", "trigger_at", triggerAt)
	recordEvent(ctx, s.events, s.log, s.clock.Now(), models.EventSnooze, "Notification snoozed", map[string]any{"trigger_at": triggerAt})
	return triggerAt, nil
}

// Channels lists the configured channels in configuration order.
func (s *NotificationService) Channels() []config.Channel {
	out := make([]config.Channel, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.channels[id])
	}
	return out
}

// WatchNotifications subscribes to changes of the current notification.
func (s *NotificationService) WatchNotifications() (<-chan NotificationUpdate, func()) {
	return s.hub.Subscribe(broadcast.DefaultBuffer)
}

func (s *NotificationService) Close() {
	s.hub.Close()
}
