package events

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"transportadoras-server-go/internal/domain/eventbus"
	platformerrors "transportadoras-server-go/internal/platform/errors"
	"transportadoras-server-go/internal/platform/logging"
)

const writeTimeout = 5 * time.Second

// Service exposes the record-change feed over a websocket. Clients still
// reconcile through polling; the feed just lets them refresh sooner after
// someone else's mutation.
type Service struct {
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	created func(eventbus.CarrierEventData)
	updated func(eventbus.CarrierEventData)
	deleted func(eventbus.CarrierEventData)
}

func NewService(logger *logging.Logger) (*Service, error) {
	if logger == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "events.new", "logger is required")
	}
	return &Service{
		logger: logger,
		upgrader: websocket.Upgrader{
			// The API is already CORS-open; the feed follows the same policy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}, nil
}

// Register wires the feed route and subscribes to the record-change topics.
func (s *Service) Register(ctx context.Context, secured *gin.RouterGroup) error {
	s.created = func(data eventbus.CarrierEventData) { s.broadcast("created", data) }
	s.updated = func(data eventbus.CarrierEventData) { s.broadcast("updated", data) }
	s.deleted = func(data eventbus.CarrierEventData) { s.broadcast("deleted", data) }

	if err := eventbus.SubscribeAsync(eventbus.EventCarrierCreated, s.created); err != nil {
		return platformerrors.Wrap(platformerrors.KindTransport, "events.register", "subscribe created", err)
	}
	if err := eventbus.SubscribeAsync(eventbus.EventCarrierUpdated, s.updated); err != nil {
		return platformerrors.Wrap(platformerrors.KindTransport, "events.register", "subscribe updated", err)
	}
	if err := eventbus.SubscribeAsync(eventbus.EventCarrierDeleted, s.deleted); err != nil {
		return platformerrors.Wrap(platformerrors.KindTransport, "events.register", "subscribe deleted", err)
	}

	secured.GET("/events", s.handleEvents)

	go func() {
		<-ctx.Done()
		s.shutdown()
	}()

	s.logger.InfoTag("HTTP", "change feed route registered")
	return nil
}

type message struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"nome"`
}

func (s *Service) handleEvents(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WarnTag("eventos", "websocket upgrade failed: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	total := len(s.clients)
	s.mu.Unlock()
	s.logger.InfoTag("eventos", "feed client connected (%d total)", total)

	// Reader loop only exists to observe the close handshake.
	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Service) broadcast(kind string, data eventbus.CarrierEventData) {
	payload, err := sonic.Marshal(message{Type: kind, ID: data.ID, Name: data.Name})
	if err != nil {
		s.logger.ErrorTag("eventos", "marshal event: %v", err)
		return
	}

	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.drop(conn)
		}
	}
}

func (s *Service) drop(conn *websocket.Conn) {
	s.mu.Lock()
	_, ok := s.clients[conn]
	delete(s.clients, conn)
	s.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}

func (s *Service) shutdown() {
	_ = eventbus.Unsubscribe(eventbus.EventCarrierCreated, s.created)
	_ = eventbus.Unsubscribe(eventbus.EventCarrierUpdated, s.updated)
	_ = eventbus.Unsubscribe(eventbus.EventCarrierDeleted, s.deleted)

	s.mu.Lock()
	for conn := range s.clients {
		_ = conn.Close()
	}
	s.clients = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()
}
