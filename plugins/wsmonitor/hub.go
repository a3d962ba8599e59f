package wsmonitor

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/bft-labs/scalesim/pkg/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans frames out to connected WebSocket clients. A client whose buffer
// is full is dropped rather than slowing playback down.
type Hub struct {
	lock    sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	buffer  int
	logger  log.Logger
}

// NewHub creates a hub that buffers up to buffer messages per client.
func NewHub(buffer int, logger log.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		clients: make(map[*websocket.Conn]chan []byte),
		buffer:  buffer,
		logger:  logger,
	}
}

// HandleWS upgrades the request and registers the connection.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", log.Err(err))
		return
	}

	ch := make(chan []byte, h.buffer)
	h.lock.Lock()
	h.clients[conn] = ch
	count := len(h.clients)
	h.lock.Unlock()

	h.logger.Info("monitor client connected",
		log.String("remote", r.RemoteAddr),
		log.Int("clients", count))

	go h.writeLoop(conn, ch)
	go h.readLoop(conn)
}

// writeLoop sends queued messages until the channel is closed or a write
// fails. It owns closing the connection.
func (h *Hub) writeLoop(conn *websocket.Conn, ch chan []byte) {
	defer func() {
		h.remove(conn)
		_ = conn.Close()
	}()
	for msg := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("monitor write failed", log.Err(err))
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readLoop discards client messages so control frames are processed, and
// notices when the client goes away.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// remove unregisters conn and closes its queue, which ends writeLoop.
// Safe to call more than once.
func (h *Hub) remove(conn *websocket.Conn) {
	h.lock.Lock()
	ch, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(ch)
	}
	remaining := len(h.clients)
	h.lock.Unlock()

	if !ok {
		return
	}
	h.logger.Info("monitor client disconnected", log.Int("clients", remaining))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client.
func (h *Hub) Broadcast(msg []byte) {
	h.lock.Lock()
	var slow []*websocket.Conn
	for conn, ch := range h.clients {
		select {
		case ch <- msg:
		default:
			slow = append(slow, conn)
		}
	}
	for _, conn := range slow {
		close(h.clients[conn])
		delete(h.clients, conn)
	}
	h.lock.Unlock()

	for _, conn := range slow {
		h.logger.Warn("dropping slow monitor client", log.String("remote", conn.RemoteAddr().String()))
	}
}

// Close disconnects every client. The write loops send a close frame first.
func (h *Hub) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()
	for conn, ch := range h.clients {
		close(ch)
		delete(h.clients, conn)
	}
}
