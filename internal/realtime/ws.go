package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	DefaultSendBuffer = 16
)

// WSSubscriber adapts a gorilla connection to Subscriber. Frames are queued
// into a bounded buffer and written by WritePump.
type WSSubscriber struct {
	id   string
	conn *websocket.Conn
	log  *logger.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewWSSubscriber(conn *websocket.Conn, log *logger.Logger, buffer int) *WSSubscriber {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	id := uuid.New().String()
	return &WSSubscriber{
		id:   id,
		conn: conn,
		log:  log.With("subscriber_id", id),
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (s *WSSubscriber) ID() string { return s.id }

func (s *WSSubscriber) Send(frame []byte) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.send <- frame:
		return nil
	case <-s.done:
		return ErrClosed
	default:
		return ErrBufferFull
	}
}

func (s *WSSubscriber) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Serve registers s with hub, runs both pumps and blocks until the peer goes
// away or s is closed.
func (s *WSSubscriber) Serve(hub *Hub, info ClientInfo) {
	hub.Add(s, info)
	go s.writePump()
	s.readPump()
	hub.Remove(s.id)
	_ = s.Close()
}

// readPump only services control frames; dashboards do not send data.
func (s *WSSubscriber) readPump() {
	defer s.conn.Close()
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Debug("WebSocket read error", "error", err)
			}
			return
		}
	}
}

func (s *WSSubscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case frame := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.log.Debug("WebSocket write error", "error", err)
				_ = s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.log.Debug("WebSocket ping error", "error", err)
				_ = s.Close()
				return
			}
		}
	}
}
