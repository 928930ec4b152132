// Package ws is the WebSocket upgrade handler for the presence bus: a
// dashboard viewer subscribes to a course and receives an attendance_update
// message every time a submission is recorded for it.
package ws

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rollcall/server/api/common"
	"github.com/rollcall/server/logging"
	"github.com/rollcall/server/realtime"
)

const (
	// pingInterval and pongWait implement the liveness probe described for
	// the presence bus: a subscriber that misses the grace window is
	// dropped.
	pingInterval = 10 * time.Second
	pongWait     = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// CourseChecker reports whether a course id names an existing course, so the
// handler can refuse an upgrade for an unknown course_id with close code
// 1008 rather than silently subscribing to nothing.
type CourseChecker interface {
	CourseExists(r *http.Request, courseID string) bool
}

// Resource is the WebSocket presence-feed HTTP resource.
type Resource struct {
	hub     *realtime.Hub
	checker CourseChecker
}

// NewResource builds a ws Resource.
func NewResource(hub *realtime.Hub, checker CourseChecker) *Resource {
	return &Resource{hub: hub, checker: checker}
}

// Router returns a configured router mounted at /ws.
func (rs *Resource) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/{course_id}", rs.subscribe)
	return r
}

func (rs *Resource) subscribe(w http.ResponseWriter, r *http.Request) {
	courseID, ok := common.StringParam(w, r, "course_id", "course id is required")
	if !ok {
		return
	}

	if rs.checker != nil && !rs.checker.CourseExists(r, courseID) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		closeWithCode(conn, websocket.ClosePolicyViolation, "unknown course_id")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := rs.hub.Subscribe(courseID)
	defer rs.hub.Unsubscribe(sub)

	done := make(chan struct{})
	go readPump(conn, done)

	writePump(conn, sub.Channel, done)
}

// readPump drains client frames (pings, and any close frame) until the
// connection errors out, closing done so writePump can stop.
func readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump pushes presence updates to the client and sends liveness pings
// until the channel closes (Unsubscribe) or the client disconnects.
func writePump(conn *websocket.Conn, updates <-chan realtime.Update, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(pingInterval))
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(pingInterval))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func closeWithCode(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.Close()
}
