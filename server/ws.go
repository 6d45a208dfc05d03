package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled by the middleware; the upgrade itself accepts any
	// origin the middleware let through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleJobStream serves GET /ws/jobs: a websocket pushing every job
// status change as a JSON message. Slow consumers miss updates rather
// than stall the queue; the stream is a live view, not a replay log.
func (s *Server) HandleJobStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	updates := s.queue.Subscribe()
	defer s.queue.Unsubscribe(updates)

	s.logger.Debugw("Job stream client connected", "remote", r.RemoteAddr)

	// Reader goroutine: drain client messages and surface disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case job := <-updates:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(job); err != nil {
				s.logger.Debugw("Job stream client gone", "remote", r.RemoteAddr, "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
