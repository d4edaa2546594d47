package device

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// SocketHub implements Channel over websocket connections. Every connected
// client receives the same outgoing records, and lines typed by any client
// are funneled into a single inbound queue.
type SocketHub struct {
	Addr    string
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	server  *http.Server
	inbound chan string
	done    chan struct{}
}

// NewSocketHub constructs a hub listening on addr.
func NewSocketHub(addr string) *SocketHub {
	return &SocketHub{
		Addr:    addr,
		clients: map[*websocket.Conn]bool{},
		inbound: make(chan string, 64),
		done:    make(chan struct{}),
	}
}

// Start launches the HTTP server for the websocket endpoint.
// This call blocks until the server stops or fails.
func (h *SocketHub) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	h.server = &http.Server{Addr: h.Addr, Handler: mux}
	log.Infof("[socket] listening on %s", h.Addr)
	if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Errorf("[socket] server stopped: %v", err)
	}
}

// handleWS upgrades HTTP to websocket and registers the client for broadcasts.
func (h *SocketHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	log.Debugf("[socket] client connected from %s", conn.RemoteAddr())

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			if err := conn.Close(); err != nil {
				log.Warnf("[socket] failed to close websocket: %v", err)
			}
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			// Clients may batch several commands in one frame.
			for _, line := range strings.Split(string(data), "\n") {
				if line == "" {
					continue
				}
				select {
				case h.inbound <- line + "\n":
				case <-h.done:
					return
				}
			}
		}
	}()
}

// ReadLine returns the next line received from any connected client.
func (h *SocketHub) ReadLine(timeout time.Duration) (string, error) {
	if timeout <= 0 {
		select {
		case line := <-h.inbound:
			return line, nil
		case <-h.done:
			return "", http.ErrServerClosed
		}
	}
	select {
	case line := <-h.inbound:
		return line, nil
	case <-h.done:
		return "", http.ErrServerClosed
	case <-time.After(timeout):
		return "", ErrReadTimeout
	}
}

// Write broadcasts text to all connected websocket clients.
func (h *SocketHub) Write(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
			log.Warnf("[socket] write to %s failed: %v", c.RemoteAddr(), err)
		}
	}
	return nil
}

// Close shuts down the HTTP server and disconnects all clients.
func (h *SocketHub) Close() error {
	close(h.done)
	if h.server != nil {
		return h.server.Close()
	}
	return nil
}
