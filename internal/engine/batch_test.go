package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"trend-systemv1/internal/model"
	"trend-systemv1/internal/series"
)

// memSource is an in-memory universe for batch tests.
type memSource struct {
	bars       map[string][]model.Bar
	industries map[string]string
	failOn     string
}

func (m *memSource) Symbols(ctx context.Context) ([]string, error) {
	syms := make([]string, 0, len(m.bars))
	for s := range m.bars {
		syms = append(syms, s)
	}
	return syms, nil
}

func (m *memSource) Bars(ctx context.Context, symbol string) ([]model.Bar, string, error) {
	if symbol == m.failOn {
		return nil, "", fmt.Errorf("%s: backend unavailable", symbol)
	}
	return m.bars[symbol], m.industries[symbol], nil
}

func flatBars(n int) []model.Bar {
	closes := make([]float64, n)
	vols := make([]float64, n)
	for i := range closes {
		closes[i] = 10 + 0.01*float64(i)
		vols[i] = 1e6
	}
	return genBars(closes, vols)
}

func TestBatch_CollectsPerSymbolErrors(t *testing.T) {
	dup := flatBars(10)
	dup[9].Date = dup[8].Date // duplicate date, rejected at ingest

	src := &memSource{
		bars: map[string][]model.Bar{
			"000001": flatBars(130),
			"600000": flatBars(130),
			"BADSEQ": dup,
			"NOFEED": flatBars(130),
		},
		industries: map[string]string{"000001": "bank", "600000": "bank"},
		failOn:     "NOFEED",
	}

	res, err := NewBatch(src, DefaultConfig(), 3, nil).Run(context.Background(), time.Now())
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Reports) != 2 {
		t.Fatalf("reports=%d, want 2 (got %+v)", len(res.Reports), res.Reports)
	}
	if res.Reports[0].Symbol != "000001" || res.Reports[1].Symbol != "600000" {
		t.Errorf("reports not sorted by symbol: %s, %s", res.Reports[0].Symbol, res.Reports[1].Symbol)
	}
	if res.Reports[0].Industry != "bank" {
		t.Errorf("industry tag lost: %q", res.Reports[0].Industry)
	}

	if len(res.Errors) != 2 {
		t.Fatalf("errors=%d, want 2 (got %+v)", len(res.Errors), res.Errors)
	}
	if res.Errors[0].Symbol != "BADSEQ" || res.Errors[1].Symbol != "NOFEED" {
		t.Errorf("errors not sorted by symbol: %+v", res.Errors)
	}
	if !errors.Is(res.Errors[0], series.ErrInvalidSeries) {
		t.Errorf("BADSEQ error %v should wrap ErrInvalidSeries", res.Errors[0].Err)
	}
}

func TestBatch_CancelledContext(t *testing.T) {
	src := &memSource{bars: map[string][]model.Bar{"000001": flatBars(130)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBatch(src, DefaultConfig(), 2, nil).Run(ctx, time.Now())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}
