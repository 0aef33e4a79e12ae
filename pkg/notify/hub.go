// Package notify delivers store success and error messages to users.
//
// Hub keeps a short history and pushes each notification to every connected
// websocket client. LogNotifier writes them to a slog logger, and Multi fans
// one notification out to several notifiers.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/nna-wms/wmsconsole/pkg/logging"
)

// Kind is the severity of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a single user-facing message.
type Notification struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

const (
	defaultHistory    = 50
	defaultBuffer     = 16
	defaultWriteLimit = 5 * time.Second
)

// Hub fans notifications out to websocket subscribers.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]chan Notification
	recent  []Notification
	history int
	buffer  int

	log    *slog.Logger
	now    func() time.Time
	accept websocket.AcceptOptions
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHistory sets how many recent notifications are replayed to new
// subscribers.
func WithHistory(n int) HubOption {
	return func(h *Hub) {
		if n >= 0 {
			h.history = n
		}
	}
}

// WithBuffer sets the per-subscriber queue length. Notifications for a full
// queue are dropped.
func WithBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithLogger sets the hub logger.
func WithLogger(log *slog.Logger) HubOption {
	return func(h *Hub) {
		h.log = log
	}
}

// WithOriginPatterns restricts websocket origins. Without patterns only
// same-origin requests are accepted.
func WithOriginPatterns(patterns ...string) HubOption {
	return func(h *Hub) {
		h.accept.OriginPatterns = patterns
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs:    make(map[string]chan Notification),
		history: defaultHistory,
		buffer:  defaultBuffer,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = logging.Component(h.log, "notify")
	return h
}

// NotifySuccess publishes a success message.
func (h *Hub) NotifySuccess(message string) {
	h.Publish(KindSuccess, message)
}

// NotifyError publishes an error message.
func (h *Hub) NotifyError(message string) {
	h.Publish(KindError, message)
}

// Publish records a notification and queues it for every subscriber.
func (h *Hub) Publish(kind Kind, message string) Notification {
	n := Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: message,
		Time:    h.now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.history > 0 {
		h.recent = append(h.recent, n)
		if len(h.recent) > h.history {
			h.recent = h.recent[len(h.recent)-h.history:]
		}
	}
	for id, ch := range h.subs {
		select {
		case ch <- n:
		default:
			h.log.Warn("subscriber queue full, dropping notification", "subscriber", id, "notification", n.ID)
		}
	}
	return n
}

// Recent returns the retained history, oldest first.
func (h *Hub) Recent() []Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Notification, len(h.recent))
	copy(out, h.recent)
	return out
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release it; it closes the channel.
func (h *Hub) Subscribe() (string, <-chan Notification, func()) {
	id := uuid.NewString()
	ch := make(chan Notification, h.buffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}
	return id, ch, cancel
}

// ServeHTTP upgrades the request to a websocket, replays recent
// notifications, then streams new ones until either side goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &h.accept)
	if err != nil {
		h.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	// Subscribe before reading the backlog so nothing published in between
	// is missed. A notification may then arrive twice; clients dedupe by id.
	id, ch, cancel := h.Subscribe()
	defer cancel()
	backlog := h.Recent()

	log := h.log.With("subscriber", id)
	log.Debug("subscriber connected")
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
		log.Debug("subscriber disconnected")
	}()

	// Clients never send anything; CloseRead handles control frames and
	// cancels ctx once the peer closes.
	ctx := conn.CloseRead(r.Context())

	for _, n := range backlog {
		if err := h.write(ctx, conn, n); err != nil {
			return
		}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			if err := h.write(ctx, conn, n); err != nil {
				log.Debug("write failed", "error", err)
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultWriteLimit)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}
