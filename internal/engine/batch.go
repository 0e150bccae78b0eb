package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"trend-systemv1/internal/model"
	"trend-systemv1/internal/series"
)

// Batch evaluates a whole symbol universe with a fixed-size worker pool.
// Workers share nothing: each symbol is loaded, ingested and evaluated in
// isolation, so one bad series never poisons another.
type Batch struct {
	src     model.BarSource
	cfg     Config
	workers int
	log     *slog.Logger
}

// NewBatch wires a batch runner. workers < 1 falls back to 4.
func NewBatch(src model.BarSource, cfg Config, workers int, log *slog.Logger) *Batch {
	if workers < 1 {
		workers = 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &Batch{src: src, cfg: cfg, workers: workers, log: log}
}

// Run evaluates every symbol the source lists at asOf. Per-symbol failures
// are collected into the result instead of aborting the scan; only a failure
// to list the universe (or a cancelled context) returns an error.
func (b *Batch) Run(ctx context.Context, asOf time.Time) (model.BatchResult, error) {
	symbols, err := b.src.Symbols(ctx)
	if err != nil {
		return model.BatchResult{}, fmt.Errorf("batch: list symbols: %w", err)
	}

	type outcome struct {
		report model.Report
		err    *model.SymbolError
	}

	jobs := make(chan string)
	results := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				rep, err := b.evalSymbol(ctx, sym, asOf)
				if err != nil {
					results <- outcome{err: &model.SymbolError{Symbol: sym, Err: err}}
					continue
				}
				results <- outcome{report: rep}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, sym := range symbols {
			select {
			case jobs <- sym:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	out := model.BatchResult{AsOf: model.Day(asOf)}
	for oc := range results {
		if oc.err != nil {
			b.log.Warn("symbol evaluation failed", "symbol", oc.err.Symbol, "err", oc.err.Err)
			out.Errors = append(out.Errors, *oc.err)
			continue
		}
		out.Reports = append(out.Reports, oc.report)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	// Deterministic ordering regardless of worker scheduling.
	sort.Slice(out.Reports, func(i, j int) bool { return out.Reports[i].Symbol < out.Reports[j].Symbol })
	sort.Slice(out.Errors, func(i, j int) bool { return out.Errors[i].Symbol < out.Errors[j].Symbol })

	b.log.Info("batch complete",
		"as_of", out.AsOf.Format("2006-01-02"),
		"reports", len(out.Reports),
		"errors", len(out.Errors))
	return out, nil
}

func (b *Batch) evalSymbol(ctx context.Context, sym string, asOf time.Time) (model.Report, error) {
	bars, industry, err := b.src.Bars(ctx, sym)
	if err != nil {
		return model.Report{}, fmt.Errorf("load bars: %w", err)
	}
	st, err := series.Ingest(sym, bars)
	if err != nil {
		return model.Report{}, err
	}
	st.SetIndustry(industry)
	return Evaluate(st, asOf, b.cfg)
}
