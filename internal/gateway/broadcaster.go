package gateway

import (
	"context"
	"strconv"
	"time"

	"trend-systemv1/internal/model"
)

// Broadcaster constructs envelope JSON and fans reports out to clients.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a Broadcaster backed by the given Hub.
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// Run consumes reports from reportCh and broadcasts each one.
// Blocks until ctx is cancelled or the channel is closed.
func (b *Broadcaster) Run(ctx context.Context, reportCh <-chan model.Report) {
	for {
		select {
		case <-ctx.Done():
			return
		case rep, ok := <-reportCh:
			if !ok {
				return
			}
			b.Broadcast(rep)
		}
	}
}

// Broadcast sends a report to all subscribed clients.
// Uses a hand-crafted JSON envelope rather than json.Marshal on the hot
// path, and a monotonic seq for client-side gap detection.
func (b *Broadcaster) Broadcast(rep model.Report) {
	now := time.Now().UTC()
	data := rep.JSON()

	b.hub.mu.Lock()
	b.hub.seq++
	seq := b.hub.seq
	b.hub.latest[rep.Symbol] = latestEntry{Report: rep, Data: data, TS: now, Seq: seq}
	b.hub.mu.Unlock()

	buf := buildEnvelope(rep.Symbol, data, now, seq)

	// Store in replay buffer for gap backfill
	b.hub.replay.Push(seq, buf)

	// Fan out to subscribed clients
	b.hub.mu.RLock()
	defer b.hub.mu.RUnlock()
	for client := range b.hub.clients {
		if !client.matchesSymbol(rep.Symbol) {
			continue
		}
		select {
		case client.send <- buf:
			if b.hub.Metrics != nil {
				b.hub.Metrics.WSMessagesSent.Inc()
			}
		default:
			if b.hub.Metrics != nil {
				b.hub.Metrics.WSSendDrops.Inc()
			}
		}
	}
}

// buildEnvelope hand-crafts the WS envelope:
// {"symbol":"...","data":{...},"ts":"...","seq":N}
func buildEnvelope(symbol string, data []byte, now time.Time, seq int64) []byte {
	buf := make([]byte, 0, len(symbol)+len(data)+128)
	buf = append(buf, `{"symbol":"`...)
	buf = append(buf, symbol...)
	buf = append(buf, `","data":`...)
	buf = append(buf, data...)
	buf = append(buf, `,"ts":"`...)
	buf = now.AppendFormat(buf, time.RFC3339Nano)
	buf = append(buf, `","seq":`...)
	buf = strconv.AppendInt(buf, seq, 10)
	buf = append(buf, '}')
	return buf
}
