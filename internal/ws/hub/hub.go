package hub

import (
	"sync"

	"github.com/gorilla/websocket"
)

type Connection struct {
	conn      *websocket.Conn
	send      chan []byte
	userID    string
	closeOnce sync.Once
}

func (c *Connection) UserID() string { return c.userID }

type BroadcastCmd struct {
	UserID  string
	Payload []byte
}

// Hub fans server events out to every live session of a member. Sessions are
// keyed by user id: one subscription per signed-in session, registered on
// socket open and removed on handler return.
type Hub struct {
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan BroadcastCmd
	sessions   map[string]map[*Connection]struct{}
}

func NewConnection(conn *websocket.Conn, userID string) *Connection {
	return &Connection{
		conn:   conn,
		send:   make(chan []byte, 128),
		userID: userID,
	}
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Connection, 64),
		unregister: make(chan *Connection, 64),
		broadcast:  make(chan BroadcastCmd, 256),
		sessions:   make(map[string]map[*Connection]struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			room := h.sessions[c.userID]
			if room == nil {
				room = make(map[*Connection]struct{})
				h.sessions[c.userID] = room
			}
			room[c] = struct{}{}

		case c := <-h.unregister:
			room := h.sessions[c.userID]
			if room != nil {
				delete(room, c)
				if len(room) == 0 {
					delete(h.sessions, c.userID)
				}
			}
			c.CloseSend()

		case b := <-h.broadcast:
			room := h.sessions[b.UserID]
			if room == nil {
				continue
			}

			for c := range room {
				c.Send(b.Payload)
			}
		}
	}
}

func (h *Hub) Register(c *Connection) {
	h.register <- c
}

func (h *Hub) Unregister(c *Connection) {
	h.unregister <- c
}

// Broadcast delivers the payload to every live session of the member.
func (h *Hub) Broadcast(userID string, payload []byte) {
	h.broadcast <- BroadcastCmd{
		UserID:  userID,
		Payload: payload,
	}
}

func (c *Connection) Send(b []byte) {
	select {
	case c.send <- b:
	default:
	}
}

func (c *Connection) CloseSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
