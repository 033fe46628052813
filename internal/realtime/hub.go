package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/slate-hq/slate-api/internal/observability"
	"github.com/slate-hq/slate-api/internal/service"
)

const sendBufferSize = 32

// ConnectionOptions wraps metadata established during the HTTP upgrade.
// Membership in the workspace has already been verified by the handler.
type ConnectionOptions struct {
	UserID      string
	WorkspaceID string
}

// subscribeCommand is what connected clients send: room subscription
// changes within their workspace.
type subscribeCommand struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

// wireEvent is the cross-node envelope carried over redis and NATS.
type wireEvent struct {
	Source string        `json:"source"`
	Event  service.Event `json:"event"`
	SentAt time.Time     `json:"sent_at"`
}

// Hub fans domain events out to websocket subscribers. Local clients
// receive events directly; redis pub/sub and NATS bridge events between
// nodes. Hub implements service.EventPublisher.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}

	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	nodeID       string
	logger       zerolog.Logger
}

type client struct {
	conn    *websocket.Conn
	send    chan service.Event
	options ConnectionOptions
	hub     *Hub
	rooms   map[string]struct{}
	closed  chan struct{}
	once    sync.Once
}

// NewHub creates a realtime hub. redisClient and natsConn may each be
// nil; the hub then runs single-node over whatever remains.
func NewHub(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) *Hub {
	redisChannel := ""
	natsSubject := ""
	if channelBase != "" {
		redisChannel = channelBase + ":events"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &Hub{
		rooms:        make(map[string]map[*client]struct{}),
		redis:        redisClient,
		redisChannel: redisChannel,
		nats:         natsConn,
		natsSubject:  natsSubject,
		nodeID:       uuid.NewString(),
		logger:       logger.With().Str("component", "realtime_hub").Logger(),
	}
}

// Start launches the cross-node consumers. It returns immediately.
func (h *Hub) Start(ctx context.Context) {
	if h.redis != nil && h.redisChannel != "" {
		go h.consumeRedis(ctx)
	}
	if h.nats != nil && h.natsSubject != "" {
		go h.consumeNATS(ctx)
	}
}

// Publish implements service.EventPublisher: deliver locally, then
// forward to the other nodes. Delivery is best-effort.
func (h *Hub) Publish(event service.Event) {
	h.broadcast(event)
	observability.RealtimeEvents().WithLabelValues(event.Type).Inc()

	payload, err := json.Marshal(wireEvent{Source: h.nodeID, Event: event, SentAt: time.Now().UTC()})
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to marshal realtime event")
		return
	}

	if h.redis != nil && h.redisChannel != "" {
		if err := h.redis.Publish(context.Background(), h.redisChannel, payload).Err(); err != nil {
			h.logger.Warn().Err(err).Msg("failed to publish realtime event to redis")
		}
	}
	if h.nats != nil && h.natsSubject != "" {
		if err := h.nats.Publish(h.natsSubject, payload); err != nil {
			h.logger.Warn().Err(err).Msg("failed to publish realtime event to nats")
		}
	}
}

// ServeConnection runs the read loop for one websocket client. It
// blocks until the connection closes. Every client is subscribed to its
// workspace room; additional channel and conversation rooms are joined
// via subscribe commands.
func (h *Hub) ServeConnection(conn *websocket.Conn, opts ConnectionOptions) {
	c := &client{
		conn:    conn,
		send:    make(chan service.Event, sendBufferSize),
		options: opts,
		hub:     h,
		rooms:   make(map[string]struct{}),
		closed:  make(chan struct{}),
	}

	h.join(c, service.WorkspaceRoom(opts.WorkspaceID))
	observability.RealtimeConnections().Inc()

	go c.writer()
	c.reader()
}

func (h *Hub) join(c *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	c.rooms[room] = struct{}{}
	h.logger.Debug().Str("room", room).Str("user_id", c.options.UserID).Msg("realtime client joined room")
}

func (h *Hub) leave(c *client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c, room)
}

func (h *Hub) dropLocked(c *client, room string) {
	if clients, ok := h.rooms[room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range c.rooms {
		h.dropLocked(c, room)
	}
}

func (h *Hub) broadcast(event service.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[event.Room] {
		if c.options.WorkspaceID != event.WorkspaceID {
			continue
		}
		select {
		case c.send <- event:
		default:
			h.logger.Warn().Str("room", event.Room).Str("user_id", c.options.UserID).Msg("dropping realtime event for slow client")
		}
	}
}

func (h *Hub) consumeRedis(ctx context.Context) {
	pubsub := h.redis.Subscribe(ctx, h.redisChannel)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			h.logger.Error().Err(err).Msg("realtime redis subscription closed")
			return
		}
		h.handleWire([]byte(msg.Payload))
	}
}

func (h *Hub) consumeNATS(ctx context.Context) {
	sub, err := h.nats.QueueSubscribe(h.natsSubject, "slate-realtime", func(msg *nats.Msg) {
		h.handleWire(msg.Data)
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to subscribe to nats realtime subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			h.logger.Warn().Err(err).Msg("failed to drain realtime nats subscription")
		}
	}()
}

func (h *Hub) handleWire(data []byte) {
	var envelope wireEvent
	if err := json.Unmarshal(data, &envelope); err != nil {
		h.logger.Warn().Err(err).Msg("invalid realtime event payload")
		return
	}
	if envelope.Source == h.nodeID {
		return
	}
	h.broadcast(envelope.Event)
}

// allowedRoom restricts subscriptions to room kinds the hub serves.
// Conversation rooms are capability-style: the id is only known to the
// two participants who resolved the conversation.
func allowedRoom(room string) bool {
	return strings.HasPrefix(room, "channel:") || strings.HasPrefix(room, "conversation:")
}

func (c *client) reader() {
	defer c.close()

	for {
		var cmd subscribeCommand
		if err := c.conn.ReadJSON(&cmd); err != nil {
			c.hub.logger.Debug().Err(err).Msg("realtime read loop ended")
			return
		}

		if !allowedRoom(cmd.Room) {
			continue
		}

		switch cmd.Action {
		case "subscribe":
			c.hub.join(c, cmd.Room)
		case "unsubscribe":
			c.hub.leave(c, cmd.Room)
		}
	}
}

func (c *client) writer() {
	defer c.close()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.hub.logger.Debug().Err(err).Msg("realtime write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.hub.logger.Debug().Err(err).Msg("realtime ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.closed)
		c.hub.unregister(c)
		observability.RealtimeConnections().Dec()
		_ = c.conn.Close()
	})
}
