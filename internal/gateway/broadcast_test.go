package gateway

import (
	"encoding/json"
	"testing"
	"time"
)

// envelope is the parsed WS message structure.
type envelope struct {
	Symbol string          `json:"symbol"`
	Data   json.RawMessage `json:"data"`
	TS     string          `json:"ts"`
	Seq    int64           `json:"seq"`
}

// TestBroadcastEnvelopeFormat verifies the hand-crafted JSON envelope
// matches the expected structure: {"symbol":"...","data":...,"ts":"...","seq":N}
func TestBroadcastEnvelopeFormat(t *testing.T) {
	symbol := "600000"
	data := []byte(`{"symbol":"600000","trend":"UPTREND","score":{"value":91,"valid":true}}`)
	now := time.Date(2026, 2, 25, 10, 0, 1, 0, time.UTC)
	var seq int64 = 42

	buf := buildEnvelope(symbol, data, now, seq)

	var env envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		t.Fatalf("envelope is not valid JSON: %v\nraw: %s", err, buf)
	}

	if env.Symbol != symbol {
		t.Errorf("symbol: got %q, want %q", env.Symbol, symbol)
	}
	if env.Seq != seq {
		t.Errorf("seq: got %d, want %d", env.Seq, seq)
	}

	// Data should be parseable JSON carrying the report fields
	var report map[string]interface{}
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("data is not valid JSON: %v", err)
	}
	if report["trend"] != "UPTREND" {
		t.Errorf("data trend: got %v, want UPTREND", report["trend"])
	}

	// TS should be valid RFC3339Nano
	parsed, err := time.Parse(time.RFC3339Nano, env.TS)
	if err != nil {
		t.Errorf("ts is not valid RFC3339Nano: %v", err)
	}
	if !parsed.Equal(now) {
		t.Errorf("ts: got %v, want %v", parsed, now)
	}
}

// TestEnvelopeSeqMonotonic verifies sequence numbers are reflected correctly.
func TestEnvelopeSeqMonotonic(t *testing.T) {
	data := []byte(`{}`)
	now := time.Now().UTC()

	for i := int64(1); i <= 100; i++ {
		buf := buildEnvelope("000001", data, now, i)
		var env envelope
		if err := json.Unmarshal(buf, &env); err != nil {
			t.Fatalf("seq=%d: invalid JSON: %v", i, err)
		}
		if env.Seq != i {
			t.Errorf("seq: got %d, want %d", env.Seq, i)
		}
	}
}

func TestClientSymbolFilter(t *testing.T) {
	c := &Client{subs: make(map[string]bool)}

	// No subscriptions: receive everything
	if !c.matchesSymbol("600000") {
		t.Error("client without subscriptions should receive all symbols")
	}

	c.handleSubscribe(SubscribeMsg{Symbols: []string{"600000", "000001"}})
	if !c.matchesSymbol("600000") || !c.matchesSymbol("000001") {
		t.Error("subscribed symbols should match")
	}
	if c.matchesSymbol("300750") {
		t.Error("unsubscribed symbol should not match")
	}

	c.handleUnsubscribe(UnsubscribeMsg{Symbols: []string{"600000"}})
	if c.matchesSymbol("600000") {
		t.Error("unsubscribed symbol should stop matching")
	}
	if !c.matchesSymbol("000001") {
		t.Error("remaining subscription should keep matching")
	}
}
