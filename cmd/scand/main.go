// cmd/scand is the screening daemon: it scans the configured symbol
// universe after each session close, persists reports to SQLite and
// Redis, and serves them to dashboards over REST and WebSocket.
//
// Usage:
//
//	go run ./cmd/scand --config=config.yaml
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trend-systemv1/config"
	"trend-systemv1/internal/calendar"
	"trend-systemv1/internal/engine"
	"trend-systemv1/internal/gateway"
	"trend-systemv1/internal/logger"
	"trend-systemv1/internal/metrics"
	"trend-systemv1/internal/model"
	"trend-systemv1/internal/notification"
	"trend-systemv1/internal/scheduler"
	"trend-systemv1/internal/source"
	redisstore "trend-systemv1/internal/store/redis"
	sqlitestore "trend-systemv1/internal/store/sqlite"
)

// hubWriter feeds finished reports straight into the WS hub so local
// dashboards update even when Redis is down.
type hubWriter struct{ hub *gateway.Hub }

func (w *hubWriter) WriteReports(ctx context.Context, reports []model.Report) error {
	for _, rep := range reports {
		w.hub.Broadcaster.Broadcast(rep)
	}
	return nil
}

func (w *hubWriter) Close() error { return nil }

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[scand] starting...")

	configPath := flag.String("config", "config.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[scand] config load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[scand] config invalid: %v", err)
	}

	slogger := logger.Init("scand", slog.LevelInfo)

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Context for graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- Bar source ----
	src, err := source.NewCSVSource(cfg.Source.CSVDir, cfg.Source.IndustryFile)
	if err != nil {
		log.Fatalf("[scand] bar source init failed: %v", err)
	}

	// ---- SQLite writer (off hot path) ----
	os.MkdirAll("data", 0o755)
	sqlWriter, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: cfg.Database.SQLitePath})
	if err != nil {
		log.Fatalf("[scand] sqlite init failed: %v", err)
	}
	defer sqlWriter.Close()
	health.SetSQLiteOK(true)
	log.Println("[scand] sqlite writer ready")

	sqlReader, err := sqlitestore.NewReader(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[scand] sqlite reader init failed: %v", err)
	}
	defer sqlReader.Close()

	// ---- Redis writer behind a circuit breaker ----
	var redisWriter *redisstore.Writer
	var buffered *redisstore.BufferedWriter
	redisWriter, err = redisstore.New(redisstore.WriterConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Printf("[scand] WARNING: redis init failed: %v (continuing without redis)", err)
		health.SetRedisConnected(false)
	} else {
		health.SetRedisConnected(true)
		cb := redisstore.NewCircuitBreaker(5, 30*time.Second)
		cb.OnStateChange = func(from, to redisstore.State) {
			prom.RedisCircuitBreakerState.Set(float64(to))
			if to == redisstore.StateOpen {
				prom.RedisCircuitBreakerTrips.Inc()
			}
			log.Printf("[scand] redis circuit %s -> %s", from, to)
		}
		buffered = redisstore.NewBufferedWriter(ctx, redisWriter, cb, 0)
		buffered.OnBuffer = func() { prom.RedisBufferedReports.Inc() }
		buffered.OnFlush = func(count int) {
			log.Printf("[scand] flushed %d buffered reports to redis", count)
		}
		log.Println("[scand] redis writer ready")
	}

	// ---- Periodic liveness checks ----
	if redisWriter != nil {
		health.StartLivenessChecker(ctx, redisWriter.Client(), sqlWriter.DB(), 10*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, sqlWriter.DB(), 10*time.Second)
	}

	// ---- WS gateway ----
	hub := gateway.NewHub(prom)
	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux, hub, sqlReader, time.Now())
	gwSrv := &http.Server{Addr: cfg.Gateway.Addr, Handler: mux}
	go func() {
		log.Printf("[scand] gateway listening on %s", cfg.Gateway.Addr)
		if err := gwSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[scand] gateway error: %v", err)
		}
	}()

	// ---- Reports published by other processes reach the hub via pub/sub ----
	if redisWriter != nil {
		sub, err := redisstore.NewReader(redisstore.ReaderConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err == nil {
			subCh := make(chan model.Report, 1000)
			go hub.Broadcaster.Run(ctx, subCh)
			go func() {
				defer sub.Close()
				if err := sub.SubscribeReports(ctx, subCh); err != nil && ctx.Err() == nil {
					log.Printf("[scand] pubsub subscriber stopped: %v", err)
				}
			}()
		}
	}

	// ---- Notifiers ----
	var notifiers []notification.Notifier
	notifiers = append(notifiers, notification.NewLogNotifier())
	if cfg.Notify.WebhookURL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(cfg.Notify.WebhookURL))
	}
	if cfg.Notify.TelegramBotToken != "" && cfg.Notify.TelegramChatID != "" {
		notifiers = append(notifiers, notification.NewTelegramNotifier(cfg.Notify.TelegramBotToken, cfg.Notify.TelegramChatID))
	}

	// ---- Scheduler ----
	writers := []model.ReportWriter{sqlWriter, &hubWriter{hub: hub}}
	if buffered != nil {
		writers = append(writers, buffered)
	}
	batch := engine.NewBatch(src, cfg.Engine, cfg.Scan.Workers, slogger)
	sched := scheduler.New(ctx, batch, writers, slogger)
	sched.Metrics = prom
	sched.Health = health
	sched.Notifiers = notifiers
	if err := sched.Register(cfg.Scan.DailyCron); err != nil {
		log.Fatalf("[scand] scheduler init failed: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Scan.RunOnStart {
		go sched.RunNow()
	}

	log.Printf("[scand] ready — scan cron %q, workers=%d", cfg.Scan.DailyCron, cfg.Scan.Workers)
	log.Printf("[scand] %s", calendar.StatusString(time.Now()))

	// ---- Wait for shutdown signal ----
	<-sigCh
	log.Println("[scand] shutdown signal received, cleaning up...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	gwSrv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)

	if buffered != nil {
		buffered.Close()
	} else if redisWriter != nil {
		redisWriter.Close()
	}

	log.Println("[scand] shutdown complete.")
}
