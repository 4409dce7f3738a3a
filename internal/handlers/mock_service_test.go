package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"eggtimer/internal/models"
	"eggtimer/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockTimer struct {
	options  []models.DurationOption
	state    models.TimerState
	setErr   error
	startErr error
	stopErr  error
	lastIdx  int
	starts   int
	cancels  int
	watchers chan models.TimerState
}

func (m *mockTimer) Options() []models.DurationOption { return m.options }
func (m *mockTimer) State() models.TimerState         { return m.state }

func (m *mockTimer) WatchState() (<-chan models.TimerState, func()) {
	if m.watchers == nil {
		m.watchers = make(chan models.TimerState, 4)
	}
	return m.watchers, func() {}
}

func (m *mockTimer) SetDuration(ctx context.Context, index int) (models.TimerState, error) {
	m.lastIdx = index
	if m.setErr != nil {
		return models.TimerState{}, m.setErr
	}
	m.state.DurationIndex = index
	return m.state, nil
}

func (m *mockTimer) Start(ctx context.Context) (models.TimerState, error) {
	m.starts++
	if m.startErr != nil {
		return models.TimerState{}, m.startErr
	}
	m.state.IsActive = true
	return m.state, nil
}

func (m *mockTimer) Cancel(ctx context.Context) (models.TimerState, error) {
	m.cancels++
	if m.stopErr != nil {
		return models.TimerState{}, m.stopErr
	}
	m.state.IsActive = false
	return m.state, nil
}

type mockNotifications struct {
	current    *models.Notification
	cancelErr  error
	snoozeAt   int64
	snoozeErr  error
	cancelAlls int
	updates    chan service.NotificationUpdate
}

func (m *mockNotifications) Current() (models.Notification, bool) {
	if m.current == nil {
		return models.Notification{}, false
	}
	return *m.current, true
}

func (m *mockNotifications) CancelAll(ctx context.Context) error {
	m.cancelAlls++
	return m.cancelErr
}

func (m *mockNotifications) Snooze(ctx context.Context) (int64, error) {
	return m.snoozeAt, m.snoozeErr
}

func (m *mockNotifications) WatchNotifications() (<-chan service.NotificationUpdate, func()) {
	if m.updates == nil {
		m.updates = make(chan service.NotificationUpdate, 4)
	}
	return m.updates, func() {}
}

type mockPush struct {
	mu           sync.Mutex
	topics       []string
	err          error
	subscribers  int
	lastUserID   int
	lastTopic    string
	lastMessage  models.PushMessage
	subscribed   bool
	unsubscribed bool
}

func (m *mockPush) SubscribeTopic(ctx context.Context, userID int, topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUserID, m.lastTopic, m.subscribed = userID, topic, true
	if m.err != nil {
		return m.err
	}
	if !service.ValidTopic(topic) {
		return service.ErrInvalidTopic
	}
	return nil
}

func (m *mockPush) UnsubscribeTopic(ctx context.Context, userID int, topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUserID, m.lastTopic, m.unsubscribed = userID, topic, true
	return m.err
}

func (m *mockPush) Topics(ctx context.Context, userID int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUserID = userID
	return m.topics, m.err
}

func (m *mockPush) Publish(ctx context.Context, msg models.PushMessage) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastMessage = msg
	return m.subscribers, m.err
}

type mockEventLog struct {
	resp     []models.TimerEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.TimerEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// doRequest serves one request through r, with a JSON body when body != "".
func doRequest(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var errTest = errors.New("boom")
