// Package source provides offline bar feeds for the screener. The CSV
// source reads one file per symbol from a directory, which is how daily
// A-share history is commonly distributed.
package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"trend-systemv1/internal/model"
)

// CSVSource serves bars from a directory of <symbol>.csv files.
// Each file holds "date,open,high,low,close,volume" rows, oldest first,
// with an optional header line. An optional industry file maps symbols
// to industry tags, one "symbol,industry" line per entry.
type CSVSource struct {
	dir        string
	industries map[string]string
}

// NewCSVSource opens a CSV directory. The industryFile may be empty.
func NewCSVSource(dir, industryFile string) (*CSVSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("csv source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("csv source: %s is not a directory", dir)
	}

	s := &CSVSource{dir: dir, industries: map[string]string{}}
	if industryFile != "" {
		if err := s.loadIndustries(industryFile); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Symbols lists every symbol with a .csv file in the directory, sorted.
func (s *CSVSource) Symbols(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("csv source: list %s: %w", s.dir, err)
	}
	var syms []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		syms = append(syms, strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(syms)
	return syms, nil
}

// Bars reads the full history for a symbol plus its industry tag.
func (s *CSVSource) Bars(ctx context.Context, symbol string) ([]model.Bar, string, error) {
	f, err := os.Open(filepath.Join(s.dir, symbol+".csv"))
	if err != nil {
		return nil, "", fmt.Errorf("csv source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	var bars []model.Bar
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("csv source: %s line %d: %w", symbol, line+1, err)
		}
		line++
		if len(rec) < 6 {
			return nil, "", fmt.Errorf("csv source: %s line %d: want 6 fields, got %d", symbol, line, len(rec))
		}

		first := strings.TrimPrefix(strings.TrimSpace(rec[0]), "\ufeff")
		if line == 1 && strings.EqualFold(first, "date") {
			continue
		}

		date, err := time.Parse("2006-01-02", first)
		if err != nil {
			return nil, "", fmt.Errorf("csv source: %s line %d: bad date %q", symbol, line, first)
		}
		vals := make([]float64, 5)
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
			if err != nil {
				return nil, "", fmt.Errorf("csv source: %s line %d field %d: %w", symbol, line, i+2, err)
			}
			vals[i] = v
		}
		bars = append(bars, model.Bar{
			Symbol: symbol,
			Date:   model.Day(date),
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return bars, s.industries[symbol], nil
}

func (s *CSVSource) loadIndustries(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("csv source: industry file: %w", err)
	}
	for _, ln := range strings.Split(string(data), "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		sym, ind, ok := strings.Cut(ln, ",")
		if !ok {
			continue
		}
		s.industries[strings.TrimSpace(sym)] = strings.TrimSpace(ind)
	}
	return nil
}
