// internal/events/hub.go
//
// WebSocket fan-out of round transitions.
//
// The page opens one socket per tab. The server publishes an event whenever
// a player's round changes phase; the display timer's reveal is the one the
// page depends on, since it re-enables input.
//
// Each connection gets a buffered send channel drained by its own writer
// goroutine. A client whose buffer is full is disconnected instead of
// blocking the publisher.

package events

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pathrecall/internal/game"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Event is one message pushed to the page.
type Event struct {
	Type    string     `json:"type"` // "round"
	RoundID string     `json:"roundId"`
	Phase   game.Phase `json:"phase"`
	Status  string     `json:"status"`
}

// RoundEvent builds the event describing r.
func RoundEvent(r game.Round) Event {
	return Event{Type: "round", RoundID: r.ID, Phase: r.CurrentPhase(), Status: r.Status()}
}

// client is a single socket belonging to a player.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	player string
}

// Hub tracks sockets by player.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub creates an empty hub. Upgrades are accepted from the server's own
// host and from allowedOrigin.
func NewHub(allowedOrigin string) *Hub {
	h := &Hub{clients: make(map[string]map[*client]struct{})}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r, allowedOrigin)
		},
	}
	return h
}

func originAllowed(r *http.Request, allowed string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if allowed != "" && strings.EqualFold(origin, allowed) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// Serve upgrades the request and streams player's events until the socket
// closes. It blocks for the lifetime of the connection.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, player string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Debug().Err(err).Str("player", player).Msg("websocket upgrade")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer), player: player}
	h.register(c)

	go c.writeLoop()
	c.readLoop()
	h.unregister(c)
}

// Publish sends ev to every socket of player.
func (h *Hub) Publish(player string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("marshal event")
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients[player] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warn().Str("player", player).Msg("dropping slow websocket client")
		h.unregister(c)
	}
}

// Count returns the number of open sockets for player.
func (h *Hub) Count(player string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[player])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.player]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.player] = set
	}
	set[c] = struct{}{}
}

// unregister removes c and closes its send channel once.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.player]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.player)
	}
	close(c.send)
}

// readLoop discards client messages and returns when the socket dies.
func (c *client) readLoop() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("player", c.player).Msg("websocket read")
			}
			return
		}
	}
}

// writeLoop drains send and keeps the connection alive with pings.
func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
