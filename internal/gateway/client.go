package gateway

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client represents a single WebSocket peer.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	// Per-client symbol subscriptions. Empty set = receive everything.
	subMu sync.RWMutex
	subs  map[string]bool
}

// sendInitialState pushes the latest report per symbol to a new client.
func (c *Client) sendInitialState() {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	for symbol, entry := range c.hub.latest {
		envelope, _ := json.Marshal(map[string]interface{}{
			"symbol":  symbol,
			"data":    entry.Data,
			"ts":      entry.TS.Format(time.RFC3339Nano),
			"seq":     entry.Seq,
			"initial": true,
		})
		select {
		case c.send <- envelope:
		default:
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			// Write coalescing: use NextWriter to batch queued messages
			// into a single WebSocket frame with newline separators
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)

			// Drain any queued messages into the same write
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.RemoveClient(c)
		c.conn.Close()
		log.Println("[gateway] ws client disconnected")
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var base struct {
			Type string `json:"type"`
			Ping int64  `json:"ping"`
		}
		if json.Unmarshal(msg, &base) != nil {
			continue
		}

		switch base.Type {
		case "SUBSCRIBE":
			var subMsg SubscribeMsg
			if err := json.Unmarshal(msg, &subMsg); err != nil {
				SendError(c, "", "invalid SUBSCRIBE: "+err.Error())
				continue
			}
			c.handleSubscribe(subMsg)

		case "UNSUBSCRIBE":
			var unsubMsg UnsubscribeMsg
			if err := json.Unmarshal(msg, &unsubMsg); err != nil {
				continue
			}
			c.handleUnsubscribe(unsubMsg)

		default:
			if base.Ping > 0 {
				pong, _ := json.Marshal(map[string]interface{}{
					"type":      "pong",
					"ping":      base.Ping,
					"server_ts": time.Now().UnixMilli(),
				})
				select {
				case c.send <- pong:
				default:
				}
			}
		}
	}
}

// handleSubscribe adds the requested symbols to this client's filter.
func (c *Client) handleSubscribe(msg SubscribeMsg) {
	if len(msg.Symbols) == 0 {
		SendError(c, msg.ReqID, "symbols are required")
		return
	}

	c.subMu.Lock()
	for _, s := range msg.Symbols {
		c.subs[s] = true
	}
	c.subMu.Unlock()

	log.Printf("[gateway] client subscribed: symbols=%v", msg.Symbols)
	SendJSON(c, map[string]interface{}{
		"type":    "SUBSCRIBED",
		"req_id":  msg.ReqID,
		"symbols": msg.Symbols,
	})
}

// handleUnsubscribe removes symbols from the filter.
func (c *Client) handleUnsubscribe(msg UnsubscribeMsg) {
	c.subMu.Lock()
	for _, s := range msg.Symbols {
		delete(c.subs, s)
	}
	c.subMu.Unlock()

	log.Printf("[gateway] client unsubscribed: symbols=%v", msg.Symbols)
}

// matchesSymbol reports whether this client should receive the symbol's
// reports. A client with no explicit subscriptions receives everything.
func (c *Client) matchesSymbol(symbol string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	if len(c.subs) == 0 {
		return true
	}
	return c.subs[symbol]
}
