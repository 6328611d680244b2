package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/peter-kozarec/equitygym/pkg/simulation"
	"go.uber.org/zap"
)

const (
	hubComponentName = "middleware.hub"
	hubBacklog       = 256
	hubWriteTimeout  = 5 * time.Second
)

// Hub streams transitions as JSON text frames to every connected websocket
// client. Slow clients lose messages instead of stalling the episode.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	lock      sync.Mutex
	clients   map[*websocket.Conn]struct{}
	broadcast chan []byte
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger.With(zap.String("component", hubComponentName)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan []byte, hubBacklog),
	}
}

// Run fans queued messages out until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case message := <-h.broadcast:
			h.write(message)
		}
	}
}

func (h *Hub) write(message []byte) {
	h.lock.Lock()
	defer h.lock.Unlock()

	for client := range h.clients {
		_ = client.SetWriteDeadline(time.Now().Add(hubWriteTimeout))
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Debug("dropping client", zap.String("remote", client.RemoteAddr().String()), zap.Error(err))
			_ = client.Close()
			delete(h.clients, client)
		}
	}
}

func (h *Hub) closeAll() {
	h.lock.Lock()
	defer h.lock.Unlock()

	for client := range h.clients {
		_ = client.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = client.Close()
		delete(h.clients, client)
	}
}

func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("telemetry backlog full, message dropped")
	}
}

func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.lock.Lock()
	h.clients[conn] = struct{}{}
	h.lock.Unlock()
	h.logger.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))

	// clients only listen; reading detects the close frame
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				h.unregister(conn)
				return
			}
		}
	}()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.clients[conn]; ok {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) WithTransition(handler simulation.TransitionHandler) simulation.TransitionHandler {
	return func(ctx context.Context, tr simulation.Transition) {
		message, err := json.Marshal(tr)
		if err != nil {
			h.logger.Warn("unable to encode transition", zap.Int("step", tr.Step), zap.Error(err))
		} else {
			h.Broadcast(message)
		}
		handler(ctx, tr)
	}
}

// ListenAndServe exposes hub on addr under /ws until ctx is done.
func ListenAndServe(ctx context.Context, hub *Hub, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	hub.logger.Info("telemetry server listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
