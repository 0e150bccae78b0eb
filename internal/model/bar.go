// Package model defines the core data types shared across the trend engine:
// daily bars, indicator snapshots, trend states, signals, and evaluation reports.
package model

import (
	"encoding/json"
	"time"
)

// Bar represents one trading day of OHLCV data for a single symbol.
// Prices are in the quote currency (yuan for A-shares); Volume is in shares.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"` // trading day (UTC, midnight-aligned)
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Day normalizes a timestamp to its UTC trading-day bucket.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// JSON returns the JSON-encoded bar.
func (b *Bar) JSON() []byte {
	data, _ := json.Marshal(b)
	return data
}
