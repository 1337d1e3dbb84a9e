package remote

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// watchFrame is one completed decision as streamed to watchers.
type watchFrame struct {
	State json.RawMessage `json:"state"`
	Seat  string          `json:"seat"`
	Move  string          `json:"move"`
	Score float64         `json:"score"`
	Stats statsDTO        `json:"stats"`
}

type watchClient struct {
	send chan []byte
}

// watchHub fans decision frames out to the connected watchers. A watcher
// that cannot keep up drops frames rather than stalling the engine.
type watchHub struct {
	mu      sync.Mutex
	clients map[*watchClient]struct{}
}

func newWatchHub() *watchHub {
	return &watchHub{clients: make(map[*watchClient]struct{})}
}

func (h *watchHub) register(c *watchClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *watchHub) unregister(c *watchClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *watchHub) hasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (h *watchHub) publish(frame watchFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
		}
	}
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &watchClient{send: make(chan []byte, 16)}
	s.hub.register(client)

	go func() {
		defer conn.Close()
		_ = writeWithHeartbeat(conn, client.send)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.unregister(client)
			return
		}
	}
}

const idlePingInterval = 30 * time.Second

// writeWithHeartbeat drains frames to the connection, pinging through
// idle stretches so half-dead connections get noticed.
func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(idlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < idlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
