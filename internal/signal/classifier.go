// Package signal maps the composite score onto an action band and flags
// disagreements between the trend state and the band.
package signal

import (
	"fmt"

	"trend-systemv1/internal/model"
)

// Config holds the lower bound of each band above Exit. Bounds must be
// strictly increasing within [1,100]; everything below Reduce is Exit.
type Config struct {
	Reduce     int `yaml:"reduce"`     // default 30
	Watch      int `yaml:"watch"`      // default 50
	Hold       int `yaml:"hold"`       // default 70
	Accumulate int `yaml:"accumulate"` // default 90
}

// DefaultConfig returns the standard 30/50/70/90 cut points.
func DefaultConfig() Config {
	return Config{Reduce: 30, Watch: 50, Hold: 70, Accumulate: 90}
}

// Validate rejects out-of-range or non-increasing cut points.
func (c Config) Validate() error {
	if c.Reduce < 1 || c.Accumulate > 100 ||
		c.Reduce >= c.Watch || c.Watch >= c.Hold || c.Hold >= c.Accumulate {
		return fmt.Errorf("signal: cut points %+v not strictly increasing within [1,100]", c)
	}
	return nil
}

// Classify maps a score onto its band. An unavailable score always yields
// SignalNone.
func Classify(score model.Score, cfg Config) model.Signal {
	if !score.Valid {
		return model.SignalNone
	}
	switch v := score.Value; {
	case v >= cfg.Accumulate:
		return model.SignalAccumulate
	case v >= cfg.Hold:
		return model.SignalHold
	case v >= cfg.Watch:
		return model.SignalWatch
	case v >= cfg.Reduce:
		return model.SignalReduce
	default:
		return model.SignalExit
	}
}

// Conflict reports whether the trend state and the band disagree: a Downtrend
// landing in a bullish band, or an Uptrend landing in a bearish one. Both
// facts stay on the report; neither is suppressed.
func Conflict(trend model.TrendState, sig model.Signal) bool {
	switch trend {
	case model.Downtrend:
		return sig.Bullish()
	case model.Uptrend:
		return sig.Bearish()
	default:
		return false
	}
}
