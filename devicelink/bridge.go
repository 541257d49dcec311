// Package devicelink connects the engine to the Bluetooth transport daemon.
//
// The daemon owns the radio and the phone's notification service. It dials
// the bridge's websocket and relays what the phone sends as binary messages
// of the form [kind][frame], where kind selects the characteristic the
// frame arrived on. Commands for the phone travel the other way as bare
// control point frames.
package devicelink

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/version"
	"github.com/gorilla/websocket"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("LINK")

// Path is where the bridge is mounted on the gateway.
const Path = "/v1/device"

// FrameKind identifies the characteristic a frame was read from.
type FrameKind byte

const (
	// KindNotification frames come from the notification source.
	KindNotification FrameKind = 0

	// KindData frames come from the data source and carry attributes.
	KindData FrameKind = 1
)

func (k FrameKind) String() string {
	switch k {
	case KindNotification:
		return "notification"
	case KindData:
		return "data"
	}
	return "unknown"
}

var (
	// ErrNotConnected is returned by SendCommand when no transport daemon
	// is attached.
	ErrNotConnected = errors.New("device transport not connected")

	// ErrBridgeClosed is returned once the bridge has been closed.
	ErrBridgeClosed = errors.New("device bridge closed")
)

// WriteTimeout bounds how long a command write may block on the socket.
var WriteTimeout = time.Second * 10

var upgrader = &websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler processes a frame of a given kind.
type Handler func(frame []byte) error

// Bridge is the websocket endpoint the transport daemon attaches to. Only
// one daemon is served at a time. A new connection replaces the old one.
type Bridge struct {
	ctx       context.Context
	ctxCancel context.CancelFunc

	bus events.Bus

	handlers   map[FrameKind]Handler
	handlerMtx sync.RWMutex

	connMtx sync.Mutex
	conn    *websocket.Conn

	writeMtx sync.Mutex
}

// NewBridge returns a bridge with no handlers registered. Changes to the
// connection state are published on bus as ConnectionChanged. The bus may
// be nil.
func NewBridge(bus events.Bus) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bridge{
		ctx:       ctx,
		ctxCancel: cancel,
		bus:       bus,
		handlers:  make(map[FrameKind]Handler),
	}
}

func (b *Bridge) connectionChanged(connected bool) {
	if b.bus != nil {
		b.bus.Emit(&events.ConnectionChanged{Connected: connected})
	}
}

// RegisterHandler sets the handler for frames of the given kind.
func (b *Bridge) RegisterHandler(kind FrameKind, handler Handler) {
	b.handlerMtx.Lock()
	defer b.handlerMtx.Unlock()
	b.handlers[kind] = handler
}

// ServeOption mounts the bridge on a gateway mux.
func (b *Bridge) ServeOption() func(mux *http.ServeMux) error {
	return func(mux *http.ServeMux) error {
		mux.Handle(Path, b)
		return nil
	}
}

// Connected reports whether a transport daemon is attached.
func (b *Bridge) Connected() bool {
	b.connMtx.Lock()
	defer b.connMtx.Unlock()
	return b.conn != nil
}

// SendCommand writes a control point frame to the attached daemon.
func (b *Bridge) SendCommand(frame []byte) error {
	select {
	case <-b.ctx.Done():
		return ErrBridgeClosed
	default:
	}

	b.connMtx.Lock()
	conn := b.conn
	b.connMtx.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	b.writeMtx.Lock()
	defer b.writeMtx.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(WriteTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.BinaryMessage, frame)
}

// Close disconnects the daemon and refuses further connections.
func (b *Bridge) Close() error {
	b.ctxCancel()

	b.connMtx.Lock()
	conn := b.conn
	b.conn = nil
	b.connMtx.Unlock()
	if conn != nil {
		b.connectionChanged(false)
		return conn.Close()
	}
	return nil
}

func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-b.ctx.Done():
		http.Error(w, ErrBridgeClosed.Error(), http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := upgrader.Upgrade(w, r, http.Header{"Server": []string{version.UserAgent()}})
	if err != nil {
		log.Errorf("Error upgrading device connection: %s", err)
		return
	}

	b.connMtx.Lock()
	old := b.conn
	b.conn = conn
	b.connMtx.Unlock()
	if old != nil {
		log.Notice("Device transport reconnected, dropping previous connection")
		old.Close()
	} else {
		b.connectionChanged(true)
	}
	log.Infof("Device transport connected from %s", r.RemoteAddr)

	b.readLoop(conn)

	b.connMtx.Lock()
	detached := b.conn == conn
	if detached {
		b.conn = nil
	}
	b.connMtx.Unlock()
	conn.Close()
	if detached {
		b.connectionChanged(false)
	}
	log.Infof("Device transport %s disconnected", r.RemoteAddr)
}

func (b *Bridge) readLoop(conn *websocket.Conn) {
	for {
		select {
		case <-b.ctx.Done():
			return
		default:
		}

		typ, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warningf("Device transport read error: %s", err)
			}
			return
		}
		if typ != websocket.BinaryMessage || len(msg) == 0 {
			log.Warningf("Ignoring non-frame message from device transport")
			continue
		}

		kind := FrameKind(msg[0])
		b.handlerMtx.RLock()
		handler, ok := b.handlers[kind]
		b.handlerMtx.RUnlock()
		if !ok {
			log.Warningf("Received %s frame with unregistered handler", kind)
			continue
		}
		if err := handler(msg[1:]); err != nil {
			log.Errorf("Error processing %s frame: %s", kind, err)
		}
	}
}
