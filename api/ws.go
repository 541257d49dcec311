package api

import (
	"net/http"

	"github.com/gorilla/websocket"
)

type connection struct {
	// The websocket connection
	ws *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	// The hub
	h *hub
}

// reader drains the socket so control frames are processed. Dashboard
// clients only listen; anything they send is ignored.
func (c *connection) reader() {
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Errorf("Websocket read error: %s", err.Error())
			}
			break
		}
	}
	c.ws.Close()
}

func (c *connection) writer() {
	for message := range c.send {
		err := c.ws.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			log.Errorf("Websocket write error: %s", err.Error())
			break
		}
	}
	c.ws.Close()
}

var upgrader = &websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type hub struct {
	// Registered connections
	connections map[*connection]bool

	// Outbound messages to the connections
	Broadcast chan []byte

	// Register requests from the connections
	register chan *connection

	// Unregister requests from connections
	unregister chan *connection

	quit chan struct{}
}

func newHub() *hub {
	return &hub{
		Broadcast:   make(chan []byte),
		register:    make(chan *connection),
		unregister:  make(chan *connection),
		connections: make(map[*connection]bool),
		quit:        make(chan struct{}),
	}
}

func (h *hub) run() {
	for {
		select {
		case c := <-h.register:
			h.connections[c] = true
			log.Debug("Registered new websocket connection")
		case c := <-h.unregister:
			if _, ok := h.connections[c]; ok {
				delete(h.connections, c)
				close(c.send)
			}
			log.Debug("Unregistered websocket connection")
		case m := <-h.Broadcast:
			for c := range h.connections {
				select {
				case c.send <- m:
				default:
					// Slow client. Drop it rather than stall the notifier.
					delete(h.connections, c)
					close(c.send)
				}
			}
		case <-h.quit:
			for c := range h.connections {
				delete(h.connections, c)
				close(c.send)
			}
			return
		}
	}
}

// broadcast hands the message to the hub. It returns false once the hub
// has shut down.
func (h *hub) broadcast(m []byte) bool {
	select {
	case <-h.quit:
		return false
	default:
	}
	select {
	case h.Broadcast <- m:
		return true
	case <-h.quit:
		return false
	}
}

func (h *hub) stop() {
	close(h.quit)
}

type websocketHandler struct {
	hub *hub
}

func newWebsocketHandler(hub *hub) *websocketHandler {
	handler := websocketHandler{
		hub: hub,
	}
	return &handler
}

func (wsh websocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Error upgrading websocket: %s", err)
		return
	}
	c := &connection{send: make(chan []byte, 256), ws: ws, h: wsh.hub}
	select {
	case c.h.register <- c:
	case <-c.h.quit:
		ws.Close()
		return
	}
	defer func() {
		select {
		case c.h.unregister <- c:
		case <-c.h.quit:
		}
	}()
	go c.writer()
	c.reader()
}
