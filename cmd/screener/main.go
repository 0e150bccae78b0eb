// cmd/screener runs a one-shot scan over a directory of daily bar CSVs
// and prints the ranked results. Useful for ad-hoc screening and for
// validating rule changes against historical dates without the daemon.
//
// Usage:
//
//	go run ./cmd/screener --csv=data/bars --as-of=2024-06-03 --top=20
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"trend-systemv1/internal/engine"
	"trend-systemv1/internal/logger"
	"trend-systemv1/internal/model"
	"trend-systemv1/internal/source"
	sqlitestore "trend-systemv1/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	// Flags
	csvDir := flag.String("csv", "data/bars", "Directory of <symbol>.csv daily bars")
	industryFile := flag.String("industries", "", "Optional symbol,industry mapping file")
	asOfStr := flag.String("as-of", "", "Evaluation date YYYY-MM-DD (default: today)")
	workers := flag.Int("workers", 4, "Parallel evaluation workers")
	top := flag.Int("top", 20, "Rows to print")
	dbPath := flag.String("db", "", "Optional SQLite path to persist reports")
	fromDB := flag.String("from-db", "", "Read bars from this SQLite database instead of CSV")
	flag.Parse()

	asOf := time.Now()
	if *asOfStr != "" {
		t, err := time.Parse("2006-01-02", *asOfStr)
		if err != nil {
			log.Fatalf("[screener] bad --as-of %q: %v", *asOfStr, err)
		}
		asOf = t
	}

	var src model.BarSource
	if *fromDB != "" {
		reader, err := sqlitestore.NewReader(*fromDB)
		if err != nil {
			log.Fatalf("[screener] sqlite source init failed: %v", err)
		}
		defer reader.Close()
		src = reader
	} else {
		csvSrc, err := source.NewCSVSource(*csvDir, *industryFile)
		if err != nil {
			log.Fatalf("[screener] source init failed: %v", err)
		}
		src = csvSrc
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	slogger := logger.Init("screener", slog.LevelWarn)
	batch := engine.NewBatch(src, engine.DefaultConfig(), *workers, slogger)

	started := time.Now()
	res, err := batch.Run(ctx, asOf)
	if err != nil {
		log.Fatalf("[screener] scan failed: %v", err)
	}

	// Rank by score, strongest first.
	reports := res.Reports
	sort.Slice(reports, func(i, j int) bool {
		av, bv := -1, -1
		if reports[i].Score.Valid {
			av = reports[i].Score.Value
		}
		if reports[j].Score.Valid {
			bv = reports[j].Score.Value
		}
		if av != bv {
			return av > bv
		}
		return reports[i].Symbol < reports[j].Symbol
	})

	fmt.Printf("\nScan %s — %d symbols, %d errors (%.1fs)\n\n",
		res.AsOf.Format("2006-01-02"), len(reports), len(res.Errors), time.Since(started).Seconds())
	fmt.Printf("%-10s %-12s %-6s %-12s %-8s %s\n", "SYMBOL", "TREND", "SCORE", "SIGNAL", "CONFLICT", "FLAGS")
	for i, rep := range reports {
		if i >= *top {
			break
		}
		score := "n/a"
		if rep.Score.Valid {
			score = fmt.Sprintf("%d", rep.Score.Value)
		}
		conflict := ""
		if rep.Conflict {
			conflict = "yes"
		}
		flags := ""
		if rep.LimitUp {
			flags = "limit-up"
		}
		fmt.Printf("%-10s %-12s %-6s %-12s %-8s %s\n",
			rep.Symbol, rep.Trend, score, rep.Signal, conflict, flags)
	}

	for _, e := range res.Errors {
		fmt.Printf("ERROR %-10s %v\n", e.Symbol, e.Err)
	}

	if *dbPath != "" {
		w, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: *dbPath})
		if err != nil {
			log.Fatalf("[screener] sqlite open failed: %v", err)
		}
		defer w.Close()
		if err := w.WriteReports(ctx, res.Reports); err != nil {
			log.Fatalf("[screener] persist failed: %v", err)
		}
		fmt.Printf("\n%d reports written to %s\n", len(res.Reports), *dbPath)
	}
}
