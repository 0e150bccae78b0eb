package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Score is the composite 0–100 strength score. Valid is false when history
// was insufficient — consumers must not read Value as a real zero then.
type Score struct {
	Value int  `json:"value"`
	Valid bool `json:"valid"`
}

// SubScores are the normalized [0,1] factors behind the composite score.
type SubScores struct {
	TrendPersistence float64 `json:"trend_persistence"`
	VolumeStrength   float64 `json:"volume_strength"`
	Momentum         float64 `json:"momentum"`
}

// KMJBreakdown carries the secondary KMJ-style 100-point technical score and
// the raw KMJ signal facts it was derived from.
type KMJBreakdown struct {
	Trend       int     `json:"trend"` // +1 up, -1 down, 0 flat
	GoldenCross bool    `json:"golden_cross"`
	DeadCross   bool    `json:"dead_cross"`
	TrendPts    float64 `json:"trend_pts"`    // 0 or 30
	CrossPts    float64 `json:"cross_pts"`    // 0 or 40
	VolumePts   float64 `json:"volume_pts"`   // 0, 10 or 15
	MomentumPts float64 `json:"momentum_pts"` // 0, 5, 10 or 15
	Total       float64 `json:"total"`
}

// Report is the immutable output record of one symbol evaluation. It is
// always tagged with the symbol and evaluation date that produced it.
type Report struct {
	Symbol   string    `json:"symbol"`
	Industry string    `json:"industry,omitempty"` // grouping tag only, never a scoring input
	AsOf     time.Time `json:"as_of"`

	Trend     TrendState      `json:"trend"`
	Checks    DimensionChecks `json:"checks"`
	Score     Score           `json:"score"`
	SubScores SubScores       `json:"sub_scores"`
	Signal    Signal          `json:"signal"`
	Conflict  bool            `json:"conflict"`

	KMJ     *KMJBreakdown `json:"kmj,omitempty"`
	LimitUp bool          `json:"limit_up"`
}

// Key returns "symbol@YYYY-MM-DD", unique per evaluation.
func (r *Report) Key() string {
	return r.Symbol + "@" + r.AsOf.Format("2006-01-02")
}

// StreamKey returns the Redis stream key for this symbol's report history.
func (r *Report) StreamKey() string {
	return "report:" + r.Symbol
}

// LatestKey returns the Redis key holding the most recent report.
func (r *Report) LatestKey() string {
	return "report:latest:" + r.Symbol
}

// PubSubChannel returns the channel live consumers subscribe to.
func (r *Report) PubSubChannel() string {
	return "pub:report:" + r.Symbol
}

// JSON returns the JSON-encoded report.
func (r *Report) JSON() []byte {
	data, _ := json.Marshal(r)
	return data
}

// SymbolError records a per-symbol failure during batch evaluation.
// One symbol's failure never aborts the batch.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Err    error  `json:"-"`
}

func (e SymbolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Symbol, e.Err)
}

func (e SymbolError) Unwrap() error { return e.Err }

// BatchResult aggregates a full universe scan: successful reports alongside
// the collected per-symbol errors.
type BatchResult struct {
	AsOf    time.Time
	Reports []Report
	Errors  []SymbolError
}
