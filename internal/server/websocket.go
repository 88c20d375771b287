package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/daikin-humid/internal/coordinator"
	"github.com/muurk/daikin-humid/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Documents queued per client before it is considered too slow
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Local API with no authentication of its own.
		return true
	},
}

// stream is one websocket client. It receives a StateDocument for every
// completed refresh cycle.
type stream struct {
	conn       *websocket.Conn
	remoteAddr string
	send       chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func (st *stream) close() {
	st.closeOnce.Do(func() {
		close(st.done)
		_ = st.conn.Close()
	})
}

// enqueue queues msg without blocking. A full queue closes the stream.
func (st *stream) enqueue(msg []byte) bool {
	select {
	case <-st.done:
		return false
	default:
	}
	select {
	case st.send <- msg:
		return true
	default:
		st.close()
		return false
	}
}

// handleStream upgrades the request and pushes the current state followed
// by one document per coordinator update until the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	st := &stream{
		conn:       conn,
		remoteAddr: r.RemoteAddr,
		send:       make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	s.streams[st] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Stream opened", logging.ConnectionFields(st.remoteAddr, "stream_opened")...)

	id := s.coord.Subscribe(func(u coordinator.Update) {
		msg, err := json.Marshal(NewStateDocument(u.Snapshot, u.State, u.Err))
		if err != nil {
			return
		}
		if !st.enqueue(msg) {
			s.logger.Debug("Dropping update for closed or slow stream", zap.String("remote_addr", st.remoteAddr))
		}
	})

	defer func() {
		s.coord.Unsubscribe(id)
		st.close()
		s.mu.Lock()
		delete(s.streams, st)
		s.mu.Unlock()
		s.wg.Done()
		s.logger.Info("Stream closed", logging.ConnectionFields(st.remoteAddr, "stream_closed")...)
	}()

	if msg, err := json.Marshal(s.currentDocument()); err == nil {
		st.enqueue(msg)
	}

	go s.readPump(st)
	s.writePump(st)
}

// readPump discards client messages and closes the stream when the client
// disconnects or stops answering pings.
func (s *Server) readPump(st *stream) {
	defer st.close()

	st.conn.SetReadLimit(maxMessageSize)
	_ = st.conn.SetReadDeadline(time.Now().Add(pongWait))
	st.conn.SetPongHandler(func(string) error {
		return st.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := st.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("Stream read error",
					zap.String("remote_addr", st.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
	}
}

func (s *Server) writePump(st *stream) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-st.done:
			return
		case msg := <-st.send:
			_ = st.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := st.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = st.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := st.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
