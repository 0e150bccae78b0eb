package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the screening engine.
type Metrics struct {
	SymbolsEvaluated prometheus.Counter
	EvalErrors       prometheus.Counter
	EvalDuration     prometheus.Histogram
	BatchDuration    prometheus.Histogram
	ReportsPublished prometheus.Counter

	// Outcome breakdowns
	TrendStates  *prometheus.CounterVec // labels: state
	SignalsTotal *prometheus.CounterVec // labels: signal
	Conflicts    prometheus.Counter
	LimitUps     prometheus.Counter

	// Storage metrics
	RedisWriteDur   prometheus.Histogram
	SQLiteCommitDur prometheus.Histogram

	// Circuit breaker metrics
	RedisCircuitBreakerState prometheus.Gauge // 0=closed, 1=open, 2=half-open
	RedisCircuitBreakerTrips prometheus.Counter
	RedisBufferedReports     prometheus.Counter

	// Gateway metrics
	WSClientsConnected prometheus.Gauge
	WSMessagesSent     prometheus.Counter
	WSSendDrops        prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		SymbolsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_symbols_evaluated_total",
			Help: "Total symbol evaluations completed",
		}),
		EvalErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_eval_errors_total",
			Help: "Per-symbol evaluation failures",
		}),
		EvalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_eval_duration_seconds",
			Help:    "Single-symbol evaluation latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_batch_duration_seconds",
			Help:    "Full universe scan latency",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_reports_published_total",
			Help: "Reports written to storage and publishers",
		}),

		TrendStates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_trend_states_total",
			Help: "Trend classifications emitted (by state)",
		}, []string{"state"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_signals_total",
			Help: "Signals emitted (by band)",
		}, []string{"signal"}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_conflicts_total",
			Help: "Reports where trend state and score band disagree",
		}),
		LimitUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_limit_ups_total",
			Help: "Reports carrying the limit-up flag",
		}),

		RedisWriteDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_redis_write_duration_seconds",
			Help:    "Redis publish latency",
			Buckets: prometheus.DefBuckets,
		}),
		SQLiteCommitDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_sqlite_commit_duration_seconds",
			Help:    "SQLite batch commit latency",
			Buckets: prometheus.DefBuckets,
		}),

		RedisCircuitBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "screener_redis_circuit_breaker_state",
			Help: "Redis circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		RedisCircuitBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_redis_circuit_breaker_trips_total",
			Help: "Times the Redis circuit breaker tripped open",
		}),
		RedisBufferedReports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_redis_buffered_reports_total",
			Help: "Reports buffered locally during Redis circuit breaker open state",
		}),

		WSClientsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "screener_ws_clients_connected",
			Help: "Currently connected WebSocket clients",
		}),
		WSMessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_ws_messages_sent_total",
			Help: "Report messages delivered to WebSocket clients",
		}),
		WSSendDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_ws_send_drops_total",
			Help: "Messages dropped because a client send buffer was full",
		}),
	}

	prometheus.MustRegister(
		m.SymbolsEvaluated,
		m.EvalErrors,
		m.EvalDuration,
		m.BatchDuration,
		m.ReportsPublished,
		m.TrendStates,
		m.SignalsTotal,
		m.Conflicts,
		m.LimitUps,
		m.RedisWriteDur,
		m.SQLiteCommitDur,
		m.RedisCircuitBreakerState,
		m.RedisCircuitBreakerTrips,
		m.RedisBufferedReports,
		m.WSClientsConnected,
		m.WSMessagesSent,
		m.WSSendDrops,
	)

	return m
}

// HealthStatus represents the system health.
type HealthStatus struct {
	mu sync.RWMutex

	RedisConnected bool      `json:"redis_connected"`
	SQLiteOK       bool      `json:"sqlite_ok"`
	LastScanTime   time.Time `json:"last_scan_time"`
	SymbolCount    int       `json:"symbol_count"`

	// Liveness probe results
	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

func (h *HealthStatus) SetRedisConnected(v bool) {
	h.mu.Lock()
	h.RedisConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetSQLiteOK(v bool) {
	h.mu.Lock()
	h.SQLiteOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastScan(t time.Time, symbols int) {
	h.mu.Lock()
	h.LastScanTime = t
	h.SymbolCount = symbols
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK

	if !h.RedisConnected || !h.SQLiteOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}
	if !h.RedisConnected && !h.SQLiteOK {
		overallStatus = "unhealthy"
	}

	scanAge := ""
	if !h.LastScanTime.IsZero() {
		scanAge = time.Since(h.LastScanTime).Round(time.Second).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastScanTime    string  `json:"last_scan_time"`
		ScanAge         string  `json:"scan_age"`
		SymbolCount     int     `json:"symbol_count"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastScanTime:    h.LastScanTime.Format(time.RFC3339),
		ScanAge:         scanAge,
		SymbolCount:     h.SymbolCount,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
