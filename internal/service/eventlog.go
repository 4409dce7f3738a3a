package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"eggtimer/internal/logger"
	"eggtimer/internal/models"
	"eggtimer/internal/repository"

	"github.com/google/uuid"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errUnknownEventType = errors.New("unknown event type")
)

var knownEventTypes = map[string]struct{}{
	models.EventStart:  {},
	models.EventCancel: {},
	models.EventExpire: {},
	models.EventResume: {},
	models.EventNotify: {},
	models.EventSnooze: {},
	models.EventPush:   {},
	models.EventError:  {},
}

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the
// time range and event type.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	eventType := normalizeEventType(f.Type)
	if eventType != "" {
		if _, ok := knownEventTypes[eventType]; !ok {
			return time.Time{}, time.Time{}, "", errUnknownEventType
		}
	}
	return from, to, eventType, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.TimerEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, typ)
}

// IsFilterError reports whether err came from an invalid LogFilter.
func IsFilterError(err error) bool {
	return errors.Is(err, errInvalidTimeRange) || errors.Is(err, errUnknownEventType)
}

// recordEvent appends to the event log. Failures are logged and dropped so
// that logging never fails a timer operation.
func recordEvent(ctx context.Context, repo repository.EventRepo, log *logger.Logger, now time.Time, typ, desc string, meta map[string]any) {
	if repo == nil {
		return
	}
	e := models.TimerEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now.UTC(),
		Type:        typ,
		Description: desc,
	}
	if len(meta) > 0 {
		e.Metadata = meta
	}
	if err := repo.Append(ctx, e); err != nil {
		log.Warnw("event_append_failed", "type", typ, "err", err)
	}
}
