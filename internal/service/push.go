package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"eggtimer/internal/clock"
	"eggtimer/internal/config"
	"eggtimer/internal/logger"
	"eggtimer/internal/models"
	"eggtimer/internal/repository"
)

// PushKeyPrefix prefixes wake-up keys owned by scheduled pushes.
const PushKeyPrefix = "push:"

var topicPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_.~%]+$`)

var (
	ErrInvalidTopic    = errors.New("invalid topic name")
	ErrEmptyPush       = errors.New("push message has neither data nor notification")
	ErrInvalidSchedule = errors.New("invalid push schedule")
)

// RecurringScheduler is the part of the wake-up scheduler that scheduled
// pushes need.
type RecurringScheduler interface {
	RegisterRecurring(ctx context.Context, key, cronExpr string) error
	Cancel(ctx context.Context, key string) error
	Pending(ctx context.Context) ([]models.Wakeup, error)
}

// PushService is a local stand-in for topic messaging: users subscribe to
// topics and messages published to a topic are shown on the push channel
// when anyone is subscribed.
type PushService struct {
	subs      repository.SubscriptionRepo
	presenter Presenter
	alarms    RecurringScheduler
	channel   string
	events    repository.EventRepo
	clock     clock.Clock
	log       *logger.Logger
}

func NewPushService(cfg config.PushConfig, subs repository.SubscriptionRepo, presenter Presenter, alarms RecurringScheduler, events repository.EventRepo, clk clock.Clock, log *logger.Logger) *PushService {
	if clk == nil {
		clk = clock.Real()
	}
	if log == nil {
		log = logger.Nop()
	}
	channel := cfg.DefaultChannel
	if channel == "" {
		channel = BreakfastChannelID
	}
	return &PushService{
		subs:      subs,
		presenter: presenter,
		alarms:    alarms,
		channel:   channel,
		events:    events,
		clock:     clk,
		log:       log,
	}
}

// ValidTopic reports whether topic matches [a-zA-Z0-9-_.~%]+.
func ValidTopic(topic string) bool {
	return topicPattern.MatchString(topic)
}

func (s *PushService) SubscribeTopic(ctx context.Context, userID int, topic string) error {
	if !ValidTopic(topic) {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	if err := s.subs.Subscribe(ctx, userID, topic); err != nil {
		return fmt.Errorf("subscribe %q: %w", topic, err)
	}
	s.log.Infow("push_subscribed", "user_id", userID, "topic", topic)
	return nil
}

func (s *PushService) UnsubscribeTopic(ctx context.Context, userID int, topic string) error {
	if !ValidTopic(topic) {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	if err := s.subs.Unsubscribe(ctx, userID, topic); err != nil {
		return fmt.Errorf("unsubscribe %q: %w", topic, err)
	}
	s.log.Infow("push_unsubscribed", "user_id", userID, "topic", topic)
	return nil
}

func (s *PushService) Topics(ctx context.Context, userID int) ([]string, error) {
	return s.subs.Topics(ctx, userID)
}

// Publish delivers msg to msg.Topic and returns the number of subscribers.
// The data payload is only logged. The notification part is shown on the
// push channel when the topic has at least one subscriber.
func (s *PushService) Publish(ctx context.Context, msg models.PushMessage) (int, error) {
	if !ValidTopic(msg.Topic) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, msg.Topic)
	}
	if len(msg.Data) == 0 && (msg.Notification == nil || msg.Notification.Body == "") {
		return 0, ErrEmptyPush
	}

	n, err := s.subs.CountSubscribers(ctx, msg.Topic)
	if err != nil {
		return 0, fmt.Errorf("count subscribers of %q: %w", msg.Topic, err)
	}

	s.log.Infow("push_received", "from", msg.From, "topic", msg.Topic, "subscribers", n)
	if len(msg.Data) > 0 {
		s.log.Infow("push_data", "topic", msg.Topic, "data", msg.Data)
	}

	if msg.Notification != nil && msg.Notification.Body != "" && n > 0 {
		if _, err := s.presenter.Show(ctx, s.channel, msg.Notification.Body); err != nil {
			return n, fmt.Errorf("show push notification: %w", err)
		}
	}

	recordEvent(ctx, s.events, s.log, s.clock.Now(), models.EventPush, "Push to "+msg.Topic, map[string]any{
		"topic":       msg.Topic,
		"from":        msg.From,
		"subscribers": n,
	})
	return n, nil
}

// PushScheduleKey is the wake-up key of the i-th configured schedule.
func PushScheduleKey(i int, s config.PushSchedule) string {
	return fmt.Sprintf("%s%d:%s", PushKeyPrefix, i, s.Topic)
}

// SyncSchedules registers every configured schedule as a recurring wake-up
// and cancels push wake-ups that are no longer configured.
func (s *PushService) SyncSchedules(ctx context.Context, schedules []config.PushSchedule) error {
	if s.alarms == nil {
		return nil
	}
	want := make(map[string]struct{}, len(schedules))
	for i, sch := range schedules {
		if !ValidTopic(sch.Topic) {
			return fmt.Errorf("%w %d: %w: %q", ErrInvalidSchedule, i, ErrInvalidTopic, sch.Topic)
		}
		key := PushScheduleKey(i, sch)
		if err := s.alarms.RegisterRecurring(ctx, key, sch.Cron); err != nil {
			return fmt.Errorf("%w %d: %w", ErrInvalidSchedule, i, err)
		}
		want[key] = struct{}{}
	}

	pending, err := s.alarms.Pending(ctx)
	if err != nil {
		return fmt.Errorf("list wake-ups: %w", err)
	}
	for _, w := range pending {
		if !strings.HasPrefix(w.Key, PushKeyPrefix) {
			continue
		}
		if _, ok := want[w.Key]; ok {
			continue
		}
		if err := s.alarms.Cancel(ctx, w.Key); err != nil {
			return err
		}
		s.log.Infow("push_schedule_removed", "key", w.Key)
	}
	return nil
}
