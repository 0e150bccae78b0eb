// Package engine composes indicators, trend rules, scoring and signal
// classification into the per-symbol evaluation pipeline and its batch runner.
package engine

import (
	"time"

	"trend-systemv1/internal/indicator"
	"trend-systemv1/internal/model"
	"trend-systemv1/internal/rules"
	"trend-systemv1/internal/scoring"
	"trend-systemv1/internal/series"
	"trend-systemv1/internal/signal"
)

// limitUpFactor marks a daily close more than 9.85% above the previous close.
const limitUpFactor = 1.0985

// Config aggregates the configuration of every pipeline stage.
type Config struct {
	Indicator indicator.Config `yaml:"indicator"`
	Rules     rules.Config     `yaml:"rules"`
	Scoring   scoring.Config   `yaml:"scoring"`
	Signal    signal.Config    `yaml:"signal"`
}

// DefaultConfig returns the canonical thresholds for every stage.
func DefaultConfig() Config {
	return Config{
		Indicator: indicator.DefaultConfig(),
		Rules:     rules.DefaultConfig(),
		Scoring:   scoring.DefaultConfig(),
		Signal:    signal.DefaultConfig(),
	}
}

// Validate checks the stages that carry invariants.
func (c Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	return c.Signal.Validate()
}

// Evaluate runs the full pipeline for one symbol at asOf. It is a pure
// function of the store's contents: no global state, no side effects, and the
// prefix guard keeps bars after asOf invisible. Evaluating the same store at
// the same date always yields an identical report.
func Evaluate(store *series.Store, asOf time.Time, cfg Config) (model.Report, error) {
	bars, err := store.Prefix(asOf)
	if err != nil {
		return model.Report{}, err
	}
	t := len(bars) - 1

	snaps := indicator.NewCalculator(cfg.Indicator).Compute(bars)
	res := rules.Evaluate(bars, snaps, t, cfg.Rules)
	score, subs := scoring.Compute(bars, snaps, t, cfg.Scoring)
	sig := signal.Classify(score, cfg.Signal)

	rep := model.Report{
		Symbol:    store.Symbol(),
		Industry:  store.Industry(),
		AsOf:      bars[t].Date,
		Trend:     res.State,
		Checks:    res.Checks,
		Score:     score,
		SubScores: subs,
		Signal:    sig,
		Conflict:  signal.Conflict(res.State, sig),
		KMJ:       scoring.KMJScore(bars, snaps, t, cfg.Scoring),
	}
	if t > 0 && bars[t].Close > bars[t-1].Close*limitUpFactor {
		rep.LimitUp = true
	}
	return rep, nil
}
