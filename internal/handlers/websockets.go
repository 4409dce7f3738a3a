package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	defaultPingPeriod = 54 * time.Second
	maxMsgSize        = 1 << 12 // 4 KB

	envelopeState        = "state"
	envelopeNotification = "notification"
)

// wsEnvelope wraps every message written to /ws.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// TODO: restrict CheckOrigin once the web client has a fixed origin.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// pongWait bounds the silence between pongs: one ping period plus the time
// the ping itself may take to write.
func (h *Handler) pongWait() time.Duration {
	return h.pingPeriod + writeWait
}

// @Summary      Timer stream
// @Description  WebSocket. Sends the current state, then a "state" envelope per snapshot and a "notification" envelope whenever the displayed notification changes.
// @Tags         timer
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait()))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait()))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	// Subscribe before the initial snapshot so no update falls in between.
	states, stopStates := h.services.WatchState()
	defer stopStates()
	notifications, stopNotifications := h.services.WatchNotifications()
	defer stopNotifications()

	if err := h.writeEnvelope(conn, wsEnvelope{Type: envelopeState, Data: h.services.State()}); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}
	if n, ok := h.services.Current(); ok {
		if err := h.writeEnvelope(conn, wsEnvelope{Type: envelopeNotification, Data: n}); err != nil {
			return
		}
	}

	ping := time.NewTicker(h.pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case st, ok := <-states:
			if !ok {
				h.closeStream(conn)
				return
			}
			if err := h.writeEnvelope(conn, wsEnvelope{Type: envelopeState, Data: st}); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		case upd, ok := <-notifications:
			if !ok {
				h.closeStream(conn)
				return
			}
			if err := h.writeEnvelope(conn, wsEnvelope{Type: envelopeNotification, Data: upd.Current}); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func (h *Handler) writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}

// closeStream tells the client the service is going away.
func (h *Handler) closeStream(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
