// Package realtime fans plant snapshots out to connected dashboards.
package realtime

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/yungbote/cementplant-backend/internal/observability"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

var (
	ErrClosed     = errors.New("realtime: subscriber closed")
	ErrBufferFull = errors.New("realtime: subscriber buffer full")
)

// Subscriber is one connected client. Send must not block.
type Subscriber interface {
	ID() string
	Send(frame []byte) error
	Close() error
}

type ClientInfo struct {
	ClientID     string    `json:"client_id"`
	Subscription string    `json:"subscription"`
	RemoteAddr   string    `json:"remote_addr,omitempty"`
	ConnectedAt  time.Time `json:"connected_at"`
	// MinPriority filters alert frames; zero accepts all.
	MinPriority int `json:"priority_filter,omitempty"`
}

type entry struct {
	sub  Subscriber
	info ClientInfo
}

type Hub struct {
	log     *logger.Logger
	metrics *observability.Metrics

	mu   sync.RWMutex
	subs map[string]entry
}

func NewHub(log *logger.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{
		log:     log.With("component", "RealtimeHub"),
		metrics: metrics,
		subs:    map[string]entry{},
	}
}

func (h *Hub) Add(sub Subscriber, info ClientInfo) {
	if info.Subscription == "" {
		info.Subscription = TopicPlantData
	}
	if info.ConnectedAt.IsZero() {
		info.ConnectedAt = time.Now().UTC()
	}
	if info.ClientID == "" {
		info.ClientID = sub.ID()
	}
	h.mu.Lock()
	h.subs[sub.ID()] = entry{sub: sub, info: info}
	n := len(h.subs)
	h.mu.Unlock()
	h.metrics.SetConnections(n)
	h.log.Info("Client connected", "subscriber_id", sub.ID(), "client_id", info.ClientID, "subscription", info.Subscription, "active", n)
}

// Remove drops a subscriber without closing it. It reports whether it was present.
func (h *Hub) Remove(id string) bool {
	h.mu.Lock()
	_, ok := h.subs[id]
	delete(h.subs, id)
	n := len(h.subs)
	h.mu.Unlock()
	if ok {
		h.metrics.SetConnections(n)
		h.log.Info("Client disconnected", "subscriber_id", id, "active", n)
	}
	return ok
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Clients lists connection details ordered by connect time.
func (h *Hub) Clients() []ClientInfo {
	h.mu.RLock()
	out := make([]ClientInfo, 0, len(h.subs))
	for _, e := range h.subs {
		out = append(out, e.info)
	}
	h.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectedAt.Before(out[j].ConnectedAt) })
	return out
}

// Broadcast encodes msg once and sends it to every subscriber of its topic.
// Subscribers whose Send fails are removed and closed; the rest still receive
// the frame. It returns the number of successful deliveries. With no
// subscribers nothing is encoded or written.
func (h *Hub) Broadcast(msg Message) (int, error) {
	targets := h.targets(msg)
	if len(targets) == 0 {
		return 0, nil
	}
	frame, err := msg.Encode()
	if err != nil {
		return 0, err
	}
	return h.deliver(msg.Type, targets, frame), nil
}

// BroadcastFrame delivers an already encoded frame.
func (h *Hub) BroadcastFrame(msg Message, frame []byte) int {
	targets := h.targets(msg)
	if len(targets) == 0 {
		return 0
	}
	return h.deliver(msg.Type, targets, frame)
}

func (h *Hub) targets(msg Message) []Subscriber {
	topic := msg.Type.Topic()
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Subscriber, 0, len(h.subs))
	for _, e := range h.subs {
		if e.info.Subscription != topic {
			continue
		}
		if msg.Priority > 0 && e.info.MinPriority > msg.Priority {
			continue
		}
		out = append(out, e.sub)
	}
	return out
}

func (h *Hub) deliver(t MessageType, targets []Subscriber, frame []byte) int {
	delivered, dropped := 0, 0
	for _, sub := range targets {
		if err := sub.Send(frame); err != nil {
			dropped++
			h.log.Warn("Dropping subscriber after failed send", "subscriber_id", sub.ID(), "error", err)
			h.Remove(sub.ID())
			_ = sub.Close()
			continue
		}
		delivered++
	}
	h.metrics.MessagesSent(string(t), delivered, dropped)
	return delivered
}

// SendTo encodes msg and sends it to one subscriber.
func SendTo(sub Subscriber, msg Message) error {
	frame, err := msg.Encode()
	if err != nil {
		return err
	}
	return sub.Send(frame)
}

// CloseAll closes and removes every subscriber.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	subs := h.subs
	h.subs = map[string]entry{}
	h.mu.Unlock()
	for _, e := range subs {
		_ = e.sub.Close()
	}
	h.metrics.SetConnections(0)
}
