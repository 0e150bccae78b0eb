package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"trend-systemv1/internal/engine"
	"trend-systemv1/internal/store/sqlite"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// RegisterRoutes registers all HTTP routes on the provided mux.
// store may be nil when the daemon runs without SQLite history.
func RegisterRoutes(mux *http.ServeMux, hub *Hub, store *sqlite.Reader, processStart time.Time) {
	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[gateway] ws upgrade error: %v", err)
			return
		}
		hub.HandleWSRequest(conn)
	})

	// REST: newest report per symbol, sorted by score descending
	mux.HandleFunc("/api/reports/latest", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")

		reports := hub.LatestReports()
		sort.Slice(reports, func(i, j int) bool {
			if reports[i].Score.Valid != reports[j].Score.Valid {
				return reports[i].Score.Valid
			}
			if reports[i].Score.Value != reports[j].Score.Value {
				return reports[i].Score.Value > reports[j].Score.Value
			}
			return reports[i].Symbol < reports[j].Symbol
		})
		json.NewEncoder(w).Encode(reports)
	})

	// REST: one symbol's report history from SQLite
	mux.HandleFunc("/api/reports", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" || store == nil {
			json.NewEncoder(w).Encode([]interface{}{})
			return
		}

		afterTS := int64(0)
		if afterStr := r.URL.Query().Get("after"); afterStr != "" {
			if t, err := time.Parse("2006-01-02", afterStr); err == nil {
				afterTS = t.Unix()
			}
		}

		reports, err := store.ReadReports(symbol, afterTS)
		if err != nil {
			log.Printf("[gateway] report history error for %s: %v", symbol, err)
			http.Error(w, `{"error":"storage unavailable"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(reports)
	})

	// REST: industry groups ranked by average score
	mux.HandleFunc("/api/industries", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(engine.RankIndustries(hub.LatestReports()))
	})

	// REST: replay of missed envelopes in [from, to] for gap backfill
	mux.HandleFunc("/api/missed", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")

		from, _ := strconv.ParseInt(r.URL.Query().Get("from"), 10, 64)
		to, _ := strconv.ParseInt(r.URL.Query().Get("to"), 10, 64)
		if to == 0 {
			to = hub.CurrentSeq()
		}

		envelopes := hub.GetReplayRange(from, to)
		out := make([]json.RawMessage, len(envelopes))
		for i, e := range envelopes {
			out[i] = e
		}
		json.NewEncoder(w).Encode(out)
	})

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     "ok",
			"ws_clients": hub.ClientCount(),
			"symbols":    len(hub.LatestReports()),
			"uptime_sec": int64(time.Since(processStart).Seconds()),
			"ts":         time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
