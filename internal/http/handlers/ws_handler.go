package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/auth"
	"github.com/sponsorconnect/backend/internal/config"
	"github.com/sponsorconnect/backend/internal/events"
	"github.com/sponsorconnect/backend/internal/middleware"
	"go.uber.org/zap"
)

// wsConn serialises writes; the underlying connection allows one writer at a time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub pushes marketplace events to the connected accounts they concern.
type WSHub struct {
	cfg         *config.Config
	sessions    auth.SessionStore
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[uuid.UUID][]*wsConn
}

func NewWSHub(cfg *config.Config, sessions auth.SessionStore, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		cfg:         cfg,
		sessions:    sessions,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[uuid.UUID][]*wsConn),
	}
}

func (h *WSHub) Start(ctx context.Context) error {
	return h.subscriber.Subscribe(ctx, events.StreamMarketplace, h.dispatch)
}

func (h *WSHub) dispatch(event events.Event) {
	if len(event.Audience) == 0 {
		h.broadcast(event)
		return
	}
	for _, id := range event.Audience {
		h.SendToUser(id, event)
	}
}

func (h *WSHub) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.connections {
		for _, conn := range conns {
			_ = conn.write(data)
		}
	}
}

func (h *WSHub) SendToUser(userID uuid.UUID, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[userID] {
		_ = conn.write(data)
	}
}

// Connected reports how many sockets the account has open.
func (h *WSHub) Connected(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// UpgradeMiddleware authenticates the token query parameter before the
// websocket handshake, so a bad token gets a plain 401.
func (h *WSHub) UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		claims, err := middleware.Authenticate(c, h.cfg, h.sessions)
		if err != nil {
			return respondError(c, h.log, err)
		}
		c.Locals(middleware.CtxUserID, claims.UserID)
		return c.Next()
	}
}

func (h *WSHub) register(userID uuid.UUID, conn *wsConn) {
	h.mu.Lock()
	h.connections[userID] = append(h.connections[userID], conn)
	h.mu.Unlock()
}

func (h *WSHub) unregister(userID uuid.UUID, conn *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.connections[userID]
	for i, c := range conns {
		if c == conn {
			h.connections[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[userID]) == 0 {
		delete(h.connections, userID)
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	userID, _ := conn.Locals(middleware.CtxUserID).(uuid.UUID)
	if userID == uuid.Nil {
		conn.Close()
		return
	}

	wc := &wsConn{conn: conn}
	h.register(userID, wc)
	defer func() {
		h.unregister(userID, wc)
		conn.Close()
	}()

	// Clients only send pings; the read loop ends when the socket closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
