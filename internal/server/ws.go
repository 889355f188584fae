package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/idilsaglam/questlog/internal/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 16
)

// event is one websocket frame: the full list of a collection after a change.
type event struct {
	Kind  model.Kind `json:"kind"`
	Items any        `json:"items"`
}

func newEvent[C model.Category](kind model.Kind, items []model.Item[C]) event {
	if items == nil {
		items = []model.Item[C]{}
	}
	return event{Kind: kind, Items: items}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// hub fans store changes out to connected websocket clients. Clients are
// receive-only; new ones get a snapshot of every collection first.
type hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[*client]struct{}
	snapshots []func() event
	closed    bool
}

func newHub(log *slog.Logger, allowedOrigin string) *hub {
	return &hub{
		log:     log,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

func (h *hub) addSnapshot(fn func() event) {
	h.mu.Lock()
	h.snapshots = append(h.snapshots, fn)
	h.mu.Unlock()
}

func (h *hub) serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade", "err", err)
		return
	}
	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	snaps := append([]func() event(nil), h.snapshots...)
	// queue the snapshot before registering so no change can jump ahead of it
	for _, fn := range snaps {
		if b, err := json.Marshal(fn()); err == nil {
			select {
			case cl.send <- b:
			default:
			}
		}
	}
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	go h.writePump(cl)
	go h.readPump(cl)
}

func (h *hub) broadcast(ev event) {
	b, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("ws encode", "err", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- b:
		default:
			// too slow to keep up, it can reconnect for a fresh snapshot
			h.drop(cl)
		}
	}
}

// drop unregisters cl. Callers hold h.mu.
func (h *hub) drop(cl *client) {
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for cl := range h.clients {
		h.drop(cl)
	}
}

// readPump only watches for pongs and disconnects.
func (h *hub) readPump(cl *client) {
	defer func() {
		h.mu.Lock()
		h.drop(cl)
		h.mu.Unlock()
		cl.conn.Close()
	}()
	cl.conn.SetReadLimit(512)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
