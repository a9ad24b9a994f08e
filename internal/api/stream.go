package api

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxStreamConns  = 8
	streamCatchUp   = 50
	streamHeartbeat = 15 * time.Second
	writeWait       = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

var streamConns atomic.Int32

// handleStream pushes events to a websocket client: the latest few as
// catch-up, then each new one as it is recorded.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if streamConns.Add(1) > maxStreamConns {
		streamConns.Add(-1)
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}
	defer streamConns.Add(-1)

	// Subscribe before the handshake so nothing recorded after the client
	// connects is missed.
	subID, ch := s.Sim.Subscribe()
	defer s.Sim.Unsubscribe(subID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for _, e := range s.Sim.RecentEvents(streamCatchUp) {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(e); err != nil {
			return
		}
	}
	slog.Info("stream client connected", "sub_id", subID)

	// The reader only notices the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			slog.Info("stream client disconnected", "sub_id", subID)
			return
		case <-r.Context().Done():
			return
		}
	}
}
