package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"trend-systemv1/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

// ReaderConfig configures the Redis reader.
type ReaderConfig struct {
	Addr     string
	Password string
	DB       int
}

// Reader serves stored reports back out of Redis and feeds live report
// updates to the gateway via Pub/Sub.
type Reader struct {
	client *goredis.Client
}

// NewReader creates a new Redis Reader and pings the server.
func NewReader(cfg ReaderConfig) (*Reader, error) {
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

	log.Printf("[redis-reader] connected to %s", cfg.Addr)
	return &Reader{client: client}, nil
}

// LatestReport loads the most recent report for a symbol. Returns nil when
// none is stored.
func (r *Reader) LatestReport(ctx context.Context, symbol string) (*model.Report, error) {
	key := (&model.Report{Symbol: symbol}).LatestKey()
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var rep model.Report
	if err := json.Unmarshal([]byte(data), &rep); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &rep, nil
}

// ReportHistory reads the newest count reports from a symbol's stream,
// oldest first.
func (r *Reader) ReportHistory(ctx context.Context, symbol string, count int64) ([]model.Report, error) {
	stream := (&model.Report{Symbol: symbol}).StreamKey()
	msgs, err := r.client.XRevRangeN(ctx, stream, "+", "-", count).Result()
	if err != nil {
		return nil, fmt.Errorf("xrevrange %s: %w", stream, err)
	}

	reports := make([]model.Report, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		data, ok := msgs[i].Values["data"].(string)
		if !ok {
			continue
		}
		var rep model.Report
		if err := json.Unmarshal([]byte(data), &rep); err != nil {
			log.Printf("[redis-reader] unmarshal report error: %v", err)
			continue
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// SubscribeReports subscribes to the pub:report:* Pub/Sub pattern and feeds
// live reports into the output channel. Slow consumers drop updates rather
// than stalling the subscription. Blocks until ctx is cancelled.
func (r *Reader) SubscribeReports(ctx context.Context, out chan<- model.Report) error {
	pubsub := r.client.PSubscribe(ctx, "pub:report:*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var rep model.Report
			if err := json.Unmarshal([]byte(msg.Payload), &rep); err != nil {
				continue
			}
			select {
			case out <- rep:
			default:
			}
		}
	}
}

// Close closes the Redis client.
func (r *Reader) Close() error {
	return r.client.Close()
}
