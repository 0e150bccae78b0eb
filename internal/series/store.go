// Package series owns validated, indexed daily bar history for one symbol.
// A Store is immutable once ingested: evaluations over it are pure reads.
package series

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"trend-systemv1/internal/model"
)

var (
	// ErrInvalidSeries marks a candidate bar sequence with non-monotonic or
	// duplicate dates. The symbol is rejected; the batch continues.
	ErrInvalidSeries = errors.New("invalid series")

	// ErrInsufficientHistory marks a windowed lookup with fewer bars than
	// the window requires. Callers surface it as an explicit Insufficient
	// state, never a numeric default.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// Store indexes an ordered bar sequence for one symbol and serves windowed
// lookups in O(1) amortized time (exact trading days hit a hash index; other
// dates fall back to a binary search).
type Store struct {
	symbol   string
	industry string
	bars     []model.Bar
	byDay    map[int64]int // unix day → bar index
}

// Ingest validates a candidate sequence and builds the index. Dates must be
// strictly increasing and unique; otherwise the sequence is rejected with
// ErrInvalidSeries. The input slice is copied — later mutation by the caller
// cannot leak into an evaluation run.
func Ingest(symbol string, bars []model.Bar) (*Store, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s: empty bar sequence", ErrInvalidSeries, symbol)
	}

	owned := make([]model.Bar, len(bars))
	byDay := make(map[int64]int, len(bars))
	var prev time.Time
	for i, b := range bars {
		day := model.Day(b.Date)
		if i > 0 && !day.After(prev) {
			return nil, fmt.Errorf("%w: %s: date %s at position %d does not advance past %s",
				ErrInvalidSeries, symbol, day.Format("2006-01-02"), i, prev.Format("2006-01-02"))
		}
		b.Date = day
		b.Symbol = symbol
		owned[i] = b
		byDay[day.Unix()] = i
		prev = day
	}

	return &Store{symbol: symbol, bars: owned, byDay: byDay}, nil
}

// SetIndustry attaches the optional grouping tag supplied by the data source.
func (s *Store) SetIndustry(industry string) { s.industry = industry }

// Industry returns the grouping tag ("" when the source had none).
func (s *Store) Industry() string { return s.industry }

// Symbol returns the symbol this store owns.
func (s *Store) Symbol() string { return s.symbol }

// Len returns the number of bars.
func (s *Store) Len() int { return len(s.bars) }

// At returns the bar at index i.
func (s *Store) At(i int) model.Bar { return s.bars[i] }

// LastDate returns the date of the newest bar.
func (s *Store) LastDate() time.Time { return s.bars[len(s.bars)-1].Date }

// IndexOnOrBefore returns the index of the latest bar dated on or before the
// given day, or ErrInsufficientHistory when no bar qualifies.
func (s *Store) IndexOnOrBefore(date time.Time) (int, error) {
	day := model.Day(date)
	if i, ok := s.byDay[day.Unix()]; ok {
		return i, nil
	}
	// Non-trading day: binary search for the first bar after it.
	n := sort.Search(len(s.bars), func(i int) bool {
		return s.bars[i].Date.After(day)
	})
	if n == 0 {
		return 0, fmt.Errorf("%w: %s: no bars on or before %s",
			ErrInsufficientHistory, s.symbol, day.Format("2006-01-02"))
	}
	return n - 1, nil
}

// Window returns the last `length` bars ending at the latest bar on or
// before `date`. Fails with ErrInsufficientHistory when fewer than `length`
// bars are available. No gap filling or interpolation is performed — any
// trading-calendar alignment is the caller's concern.
func (s *Store) Window(date time.Time, length int) ([]model.Bar, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: %s: non-positive window %d", ErrInsufficientHistory, s.symbol, length)
	}
	end, err := s.IndexOnOrBefore(date)
	if err != nil {
		return nil, err
	}
	if end+1 < length {
		return nil, fmt.Errorf("%w: %s: need %d bars ending %s, have %d",
			ErrInsufficientHistory, s.symbol, length, s.bars[end].Date.Format("2006-01-02"), end+1)
	}
	return s.bars[end+1-length : end+1], nil
}

// Prefix returns all bars up to and including the latest bar on or before
// `date`. This is the lookahead guard: an evaluation for date t only ever
// sees bars with date ≤ t.
func (s *Store) Prefix(date time.Time) ([]model.Bar, error) {
	end, err := s.IndexOnOrBefore(date)
	if err != nil {
		return nil, err
	}
	return s.bars[:end+1], nil
}
