package web

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"storyteller/internal/interfaces"
	"storyteller/internal/observe"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256
)

// Client represents a WebSocket client connection
type Client struct {
	ID     string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *PlaybackHub
	mu     sync.Mutex
	closed bool
}

// HubStats is a snapshot of the feed counters.
type HubStats struct {
	Clients   int   `json:"clients"`
	Published int64 `json:"published"`
	Dropped   int64 `json:"dropped"`
}

// PlaybackHub fans dispatched playback events out to websocket clients.
// Slow clients lose frames rather than stall the skill endpoint.
type PlaybackHub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan interfaces.PlaybackEvent
	done       chan struct{}
	mu         sync.RWMutex

	published *atomic.Int64
	dropped   *atomic.Int64

	logger  *zap.Logger
	metrics *observe.Metrics
	now     func() time.Time
}

// NewPlaybackHub creates a hub; call Run to start it.
func NewPlaybackHub(logger *zap.Logger, metrics *observe.Metrics) *PlaybackHub {
	return &PlaybackHub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 100),
		unregister: make(chan *Client, 100),
		broadcast:  make(chan interfaces.PlaybackEvent, 1000),
		done:       make(chan struct{}),
		published:  atomic.NewInt64(0),
		dropped:    atomic.NewInt64(0),
		logger:     logger.Named("hub"),
		metrics:    metrics,
		now:        time.Now,
	}
}

// Run starts the hub's event loop and blocks until ctx is done, then closes
// every client.
func (h *PlaybackHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(ctx, client)

		case client := <-h.unregister:
			h.unregisterClient(ctx, client)

		case evt := <-h.broadcast:
			h.broadcastEvent(evt)
		}
	}
}

func (h *PlaybackHub) registerClient(ctx context.Context, client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.metrics.FeedClients.Add(ctx, 1)
	h.logger.Info("client connected", zap.String("client_id", client.ID), zap.Int("total", total))

	go client.writePump()
}

func (h *PlaybackHub) unregisterClient(ctx context.Context, client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client.ID]
	if ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.metrics.FeedClients.Add(ctx, -1)
		h.logger.Info("client disconnected", zap.String("client_id", client.ID), zap.Int("total", total))
	}
}

func (h *PlaybackHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.Send)
		delete(h.clients, id)
		h.metrics.FeedClients.Add(context.Background(), -1)
	}
}

type feedFrame struct {
	Type string                   `json:"type"`
	Data interfaces.PlaybackEvent `json:"data"`
	Time int64                    `json:"time"`
}

func (h *PlaybackHub) broadcastEvent(evt interfaces.PlaybackEvent) {
	data, err := json.Marshal(feedFrame{Type: "playback", Data: evt, Time: h.now().Unix()})
	if err != nil {
		h.logger.Error("failed to marshal playback event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.dropped.Inc()
			h.logger.Debug("client send buffer full", zap.String("client_id", client.ID))
		}
	}
}

// Publish queues evt for broadcast. It never blocks; events are dropped
// when the hub is saturated.
func (h *PlaybackHub) Publish(evt interfaces.PlaybackEvent) {
	select {
	case h.broadcast <- evt:
		h.published.Inc()
	default:
		h.dropped.Inc()
	}
}

// ClientCount returns the number of connected clients
func (h *PlaybackHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *PlaybackHub) Stats() HubStats {
	return HubStats{
		Clients:   h.ClientCount(),
		Published: h.published.Load(),
		Dropped:   h.dropped.Load(),
	}
}

// attach registers a freshly upgraded connection and starts its read pump.
func (h *PlaybackHub) attach(client *Client, welcome []byte) bool {
	client.Send <- welcome
	select {
	case h.register <- client:
	case <-h.done:
		return false
	}
	go client.readPump()
	return true
}

func (h *PlaybackHub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				c.mu.Unlock()
				return
			}
			err := c.Conn.WriteMessage(websocket.TextMessage, message)
			c.mu.Unlock()
			if err != nil {
				c.Hub.logger.Debug("write failed", zap.String("client_id", c.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.Conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
			if err != nil {
				c.Hub.logger.Debug("ping failed", zap.String("client_id", c.ID), zap.Error(err))
				return
			}
		}
	}
}

// Close closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	_ = c.Conn.Close()
}

// readPump drains the connection so control frames are processed; the feed
// is one-way.
func (c *Client) readPump() {
	defer func() {
		c.Hub.detach(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("unexpected close", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
	}
}
