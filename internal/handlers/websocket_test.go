package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"eggtimer/internal/models"
	"eggtimer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialStream(t *testing.T, s *service.Service, opts ...Option) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil, opts...)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestWebSocket_InitialStateThenUpdates(t *testing.T) {
	tm := &mockTimer{
		state:    models.TimerState{DurationIndex: 2, IsActive: true, RemainingMillis: 60_000},
		watchers: make(chan models.TimerState, 4),
	}
	nt := &mockNotifications{updates: make(chan service.NotificationUpdate, 4)}
	conn := dialStream(t, &service.Service{Timer: tm, Notifications: nt})

	env := readEnvelope(t, conn)
	if env.Type != envelopeState || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var st models.TimerState
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.DurationIndex != 2 || !st.IsActive || st.RemainingMillis != 60_000 {
		t.Fatalf("unexpected state: %+v", st)
	}

	tm.watchers <- models.TimerState{DurationIndex: 2, IsActive: true, RemainingMillis: 59_000}
	env = readEnvelope(t, conn)
	_ = json.Unmarshal(env.Data, &st)
	if env.Type != envelopeState || st.RemainingMillis != 59_000 {
		t.Fatalf("expected tick, got %+v", env)
	}

	nt.updates <- service.NotificationUpdate{Current: &models.Notification{ChannelID: service.EggChannelID, Message: service.TimesUpMessage}}
	env = readEnvelope(t, conn)
	var n models.Notification
	_ = json.Unmarshal(env.Data, &n)
	if env.Type != envelopeNotification || n.Message != service.TimesUpMessage {
		t.Fatalf("expected notification, got %+v", env)
	}
}

func TestWebSocket_SendsDisplayedNotificationOnConnect(t *testing.T) {
	nt := &mockNotifications{current: &models.Notification{ChannelID: service.EggChannelID, Message: service.TimesUpMessage}}
	conn := dialStream(t, &service.Service{Timer: &mockTimer{}, Notifications: nt})

	if env := readEnvelope(t, conn); env.Type != envelopeState {
		t.Fatalf("expected state first, got %+v", env)
	}
	if env := readEnvelope(t, conn); env.Type != envelopeNotification {
		t.Fatalf("expected notification second, got %+v", env)
	}
}

func TestWebSocket_ClosesWhenServiceStops(t *testing.T) {
	tm := &mockTimer{watchers: make(chan models.TimerState)}
	conn := dialStream(t, &service.Service{Timer: tm, Notifications: &mockNotifications{}})
	readEnvelope(t, conn)

	close(tm.watchers)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var raw json.RawMessage
	err := conn.ReadJSON(&raw)
	if err == nil {
		t.Fatalf("expected the stream to close, got message: %s", string(raw))
	}
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going-away close, got %v", err)
	}
}

func TestWebSocket_Pings(t *testing.T) {
	conn := dialStream(t, &service.Service{Timer: &mockTimer{}, Notifications: &mockNotifications{}}, WithPingPeriod(20*time.Millisecond))

	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(data string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	// Control frames are handled inside ReadMessage.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(time.Second):
		t.Fatal("expected a ping")
	}
}
