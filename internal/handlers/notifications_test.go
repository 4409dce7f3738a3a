package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"eggtimer/internal/models"
	"eggtimer/internal/service"
)

func newNotificationRouter(n *mockNotifications) http.Handler {
	return newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 7}, Notifications: n})
}

func TestNotificationHandlers_Current(t *testing.T) {
	n := &mockNotifications{}
	r := newNotificationRouter(n)

	w := doRequest(r, http.MethodGet, "/api/v1/notifications/current", "", "valid")
	if w.Code != http.StatusOK || w.Body.String() != `{"notification":null}` {
		t.Fatalf("expected null notification, got %d %s", w.Code, w.Body.String())
	}

	n.current = &models.Notification{ID: "n1", ChannelID: service.EggChannelID, Message: service.TimesUpMessage, Sound: true}
	w = doRequest(r, http.MethodGet, "/api/v1/notifications/current", "", "valid")
	var out struct {
		Notification *models.Notification `json:"notification"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Notification == nil || out.Notification.Message != service.TimesUpMessage || !out.Notification.Sound {
		t.Fatalf("unexpected notification: %s", w.Body.String())
	}
}

func TestNotificationHandlers_Dismiss(t *testing.T) {
	n := &mockNotifications{}
	r := newNotificationRouter(n)

	w := doRequest(r, http.MethodDelete, "/api/v1/notifications", "", "valid")
	if w.Code != http.StatusOK || n.cancelAlls != 1 {
		t.Fatalf("dismiss: status=%d calls=%d", w.Code, n.cancelAlls)
	}

	n.cancelErr = errTest
	if w := doRequest(r, http.MethodDelete, "/api/v1/notifications", "", "valid"); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestNotificationHandlers_Snooze(t *testing.T) {
	cases := []struct {
		name string
		at   int64
		err  error
		code int
	}{
		{"ok", 1_772_348_460_000, nil, http.StatusOK},
		{"nothing displayed", 0, service.ErrNothingToSnooze, http.StatusConflict},
		{"no scheduler", 0, service.ErrSnoozeUnavailable, http.StatusServiceUnavailable},
		{"register failed", 0, fmt.Errorf("register snooze: %w", errTest), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newNotificationRouter(&mockNotifications{snoozeAt: tc.at, snoozeErr: tc.err})
			w := doRequest(r, http.MethodPost, "/api/v1/notifications/snooze", "", "valid")
			if w.Code != tc.code {
				t.Fatalf("expected %d, got %d (%s)", tc.code, w.Code, w.Body.String())
			}
			if tc.err != nil {
				return
			}
			var out struct {
				Status          string `json:"status"`
				TriggerAtMillis int64  `json:"trigger_at_millis"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Status != statusSnoozed || out.TriggerAtMillis != tc.at {
				t.Fatalf("unexpected body %+v", out)
			}
		})
	}
}
