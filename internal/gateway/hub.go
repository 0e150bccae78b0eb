// Package gateway fans evaluation reports out to WebSocket clients and
// serves report history over REST.
package gateway

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"trend-systemv1/internal/metrics"
	"trend-systemv1/internal/model"

	"github.com/gorilla/websocket"
)

// Hub manages WebSocket clients and report fan-out. It keeps the latest
// report per symbol for initial state, and a replay buffer of recent
// envelopes for client gap backfill.
type Hub struct {
	Metrics *metrics.Metrics // optional

	mu      sync.RWMutex
	clients map[*Client]bool
	latest  map[string]latestEntry // key = symbol
	seq     int64
	replay  *ReplayBuffer

	Broadcaster *Broadcaster
}

type latestEntry struct {
	Report model.Report
	Data   json.RawMessage
	TS     time.Time
	Seq    int64
}

// NewHub creates a new Hub for managing WS clients.
func NewHub(m *metrics.Metrics) *Hub {
	h := &Hub{
		Metrics: m,
		clients: make(map[*Client]bool),
		latest:  make(map[string]latestEntry),
		replay:  NewReplayBuffer(1000),
	}
	h.Broadcaster = NewBroadcaster(h)
	return h
}

// HandleWSRequest registers an upgraded WebSocket connection as a client.
func (h *Hub) HandleWSRequest(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
		subs: make(map[string]bool),
	}

	conn.EnableWriteCompression(true)

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	if h.Metrics != nil {
		h.Metrics.WSClientsConnected.Set(float64(count))
	}
	log.Printf("[gateway] ws client connected (%d total)", count)

	go client.sendInitialState()
	go client.writePump()
	go client.readPump()
}

// RemoveClient removes a client from the hub.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()
	close(c.send)

	if h.Metrics != nil {
		h.Metrics.WSClientsConnected.Set(float64(count))
	}
}

// LatestReports returns a snapshot of the newest report per symbol.
func (h *Hub) LatestReports() []model.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]model.Report, 0, len(h.latest))
	for _, e := range h.latest {
		out = append(out, e.Report)
	}
	return out
}

// GetReplayRange returns buffered envelopes with seq in [fromSeq, toSeq].
// Used by the /api/missed REST endpoint for client gap backfill.
func (h *Hub) GetReplayRange(fromSeq, toSeq int64) [][]byte {
	entries := h.replay.Range(fromSeq, toSeq)
	result := make([][]byte, len(entries))
	for i, e := range entries {
		result[i] = e.Data
	}
	return result
}

// CurrentSeq returns the last envelope sequence number.
func (h *Hub) CurrentSeq() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.seq
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
