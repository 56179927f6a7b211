package webserver

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"briefdesk/internal/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSurface adapts one websocket connection to events.Surface. Send is
// non-blocking: events queue into a small buffer drained by the write pump,
// and are dropped when the buffer is full or the connection is gone. The
// protocol is fire-and-forget, so a dropped event is just a missed refresh
// hint.
type wsSurface struct {
	conn *websocket.Conn
	ch   chan events.Event
	done chan struct{}
	once sync.Once
}

func newWSSurface(conn *websocket.Conn) *wsSurface {
	return &wsSurface{
		conn: conn,
		ch:   make(chan events.Event, 16),
		done: make(chan struct{}),
	}
}

func (ws *wsSurface) Send(e events.Event) {
	select {
	case <-ws.done:
		return
	default:
	}
	select {
	case ws.ch <- e:
	default:
	}
}

func (ws *wsSurface) Destroyed() bool {
	select {
	case <-ws.done:
		return true
	default:
		return false
	}
}

func (ws *wsSurface) destroy() {
	ws.once.Do(func() { close(ws.done) })
}

// writePump serializes queued events onto the connection until the surface
// is destroyed or a write fails.
func (ws *wsSurface) writePump() {
	for {
		select {
		case <-ws.done:
			return
		case e := <-ws.ch:
			if err := ws.conn.WriteJSON(e); err != nil {
				ws.destroy()
				return
			}
		}
	}
}

// handleWS turns the connection into a registered UI surface for its
// lifetime. The surface is destroyed before it is detached so the relay
// never picks a surface whose connection is already closing.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	surface := newWSSurface(conn)
	s.registry.Attach(surface)
	s.logger.Debug("webserver: surface attached", "remote", r.RemoteAddr)

	go surface.writePump()

	// Clients never send application data; the read loop exists to notice
	// the close handshake or a dead peer.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	surface.destroy()
	s.registry.Detach(surface)
	s.logger.Debug("webserver: surface detached", "remote", r.RemoteAddr)
}
