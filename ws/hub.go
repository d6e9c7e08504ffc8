// server/ws/hub.go
package ws

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"github.com/lumina-notes/lumina-server/domain"
)

type Message struct {
	Type string       `json:"type"`
	Note *domain.Note `json:"note,omitempty"`
}

type event struct {
	userID string
	msg    Message
}

type client struct {
	conn   *websocket.Conn
	userID string
}

// Hub fans note lifecycle events out to the owner's connections. Events for
// one user are never delivered to another.
type Hub struct {
	clients    map[*websocket.Conn]string
	broadcast  chan event
	register   chan client
	unregister chan *websocket.Conn
	mu         sync.RWMutex
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]string),
		broadcast:  make(chan event, 256),
		register:   make(chan client),
		unregister: make(chan *websocket.Conn),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.conn] = c.userID
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			h.mu.RLock()
			for conn, userID := range h.clients {
				if userID != ev.userID {
					continue
				}
				if err := conn.WriteJSON(ev.msg); err != nil {
					h.log.Warn().Err(err).Msg("websocket write failed")
					go h.Unregister(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a note event for every connection of the note's owner.
func (h *Hub) Broadcast(userID, msgType string, note *domain.Note) {
	h.broadcast <- event{userID: userID, msg: Message{Type: msgType, Note: note}}
}

func (h *Hub) Register(conn *websocket.Conn, userID string) {
	h.register <- client{conn: conn, userID: userID}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.unregister <- conn
}

// HandleConnection reads until the peer goes away, then unregisters.
func (h *Hub) HandleConnection(conn *websocket.Conn) {
	defer h.Unregister(conn)

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
	}
}
