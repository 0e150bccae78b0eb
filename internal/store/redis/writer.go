package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"trend-systemv1/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	// Stream trimming: ~2 years of daily reports.
	reportStreamMaxLen = 500
	defaultLatestTTL   = 48 * time.Hour
)

// WriterConfig configures the Redis writer.
type WriterConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// Writer publishes evaluation reports to Redis: XADD to the per-symbol
// stream, SET of the latest report, and PUBLISH for live subscribers.
type Writer struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (w *Writer) Client() *goredis.Client { return w.client }

// New creates a new Redis Writer and pings the server.
func New(cfg WriterConfig) (*Writer, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Writer{client: client}, nil
}

// WriteReports publishes a report batch in a single Redis pipeline.
// This batches XADD + SET + PUBLISH for all reports into one network
// roundtrip. It satisfies the ReportWriter port.
func (w *Writer) WriteReports(ctx context.Context, reports []model.Report) error {
	if len(reports) == 0 {
		return nil
	}

	pipe := w.client.Pipeline()
	for i := range reports {
		rep := &reports[i]
		jsonData := string(rep.JSON())

		pipe.XAdd(ctx, &goredis.XAddArgs{
			Stream: rep.StreamKey(),
			MaxLen: reportStreamMaxLen,
			Approx: true,
			Values: map[string]interface{}{"data": jsonData},
		})
		pipe.Set(ctx, rep.LatestKey(), jsonData, defaultLatestTTL)
		pipe.Publish(ctx, rep.PubSubChannel(), jsonData)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("redis report pipeline (%d reports): %w", len(reports), err)
	}
	return nil
}

// Run reads reports from reportCh and publishes them one at a time.
// Blocks until ctx is cancelled or reportCh is closed.
func (w *Writer) Run(ctx context.Context, reportCh <-chan model.Report) {
	for {
		select {
		case <-ctx.Done():
			return
		case rep, ok := <-reportCh:
			if !ok {
				return
			}
			if err := w.WriteReports(ctx, []model.Report{rep}); err != nil {
				log.Printf("[redis] publish error for %s: %v", rep.Key(), err)
			}
		}
	}
}

// Close closes the Redis client.
func (w *Writer) Close() error {
	return w.client.Close()
}
