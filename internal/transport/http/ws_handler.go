package http

import (
	"log"
	"net/http"
	"time"

	"assessment-engine/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// ClockHandler streams a session's countdown over a websocket: one tick per interval
// with the deadline-relative remaining seconds, then the result once the session ends.
type ClockHandler struct {
	service  *app.AssessmentService
	tick     time.Duration
	upgrader websocket.Upgrader
}

func NewClockHandler(service *app.AssessmentService, tick time.Duration) *ClockHandler {
	if tick <= 0 {
		tick = time.Second
	}
	return &ClockHandler{
		service: service,
		tick:    tick,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type tickPayload struct {
	RemainingSeconds int `json:"remainingSeconds"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func (h *ClockHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Session(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// the client sends nothing; reading only surfaces close frames
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	if !h.sendTick(conn, session) {
		return
	}
	for {
		select {
		case <-session.Done():
			result, err := session.Result()
			if err != nil {
				h.write(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				return
			}
			if h.write(conn, outboundMessage[any]{Type: "result", Payload: result}) {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session finished"),
					time.Now().Add(writeWait))
			}
			return
		case <-ticker.C:
			if !h.sendTick(conn, session) {
				return
			}
		case <-gone:
			return
		}
	}
}

func (h *ClockHandler) sendTick(conn *websocket.Conn, session *app.Session) bool {
	snap := session.Snapshot()
	return h.write(conn, outboundMessage[tickPayload]{Type: "tick", Payload: tickPayload{RemainingSeconds: snap.RemainingSeconds}})
}

func (h *ClockHandler) write(conn *websocket.Conn, msg any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("ws write error: %v", err)
		return false
	}
	return true
}
