package server

import (
	"log/slog"
	"sync"
	"time"

	"go-mingle/domain/session"
)

// Hub fans notifications out to the streams each player has open.
// Sends never block: a subscriber with a full buffer misses the message.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan *NotificationMessage
	nextID int
	buffer int
	now    func() time.Time
	log    *slog.Logger
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[string]map[int]chan *NotificationMessage),
		buffer: buffer,
		now:    time.Now,
		log:    logger,
	}
}

// Subscribe opens a delivery channel for playerID. The returned func closes it.
func (h *Hub) Subscribe(playerID string) (<-chan *NotificationMessage, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[playerID] == nil {
		h.subs[playerID] = make(map[int]chan *NotificationMessage)
	}
	h.nextID++
	id := h.nextID
	ch := make(chan *NotificationMessage, h.buffer)
	h.subs[playerID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[playerID], id)
			if len(h.subs[playerID]) == 0 {
				delete(h.subs, playerID)
			}
			close(ch)
		})
	}
}

// Publish delivers each notification to every stream of its target player
// and reports how many messages were handed over.
func (h *Hub) Publish(notifications []session.Notification) (delivered int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ts := h.now().Unix()
	for _, n := range notifications {
		msg := toMessage(n, ts)
		for _, ch := range h.subs[n.PlayerID] {
			select {
			case ch <- msg:
				delivered++
			default:
				h.log.Warn("notification dropped, stream buffer full", slog.String("player_id", n.PlayerID))
			}
		}
	}
	return delivered
}

// Connected reports whether playerID has at least one open stream.
func (h *Hub) Connected(playerID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[playerID]) > 0
}

func toMessage(n session.Notification, ts int64) *NotificationMessage {
	msg := &NotificationMessage{
		PlayerID:  n.PlayerID,
		Text:      n.Text,
		Timestamp: ts,
	}
	for _, c := range n.Choices {
		msg.Choices = append(msg.Choices, ChoiceMessage{Label: c.Label, Token: c.Token})
	}
	return msg
}
