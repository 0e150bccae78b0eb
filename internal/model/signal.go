package model

// Signal is the actionable classification derived from the composite score
// band, cross-checked against the trend state.
type Signal string

const (
	SignalAccumulate Signal = "ACCUMULATE"
	SignalHold       Signal = "HOLD"
	SignalWatch      Signal = "WATCH"
	SignalReduce     Signal = "REDUCE"
	SignalExit       Signal = "EXIT"
	SignalNone       Signal = "NONE" // score unavailable
)

// Bearish reports whether the signal sits in the Exit/Reduce bands.
func (s Signal) Bearish() bool { return s == SignalExit || s == SignalReduce }

// Bullish reports whether the signal sits in the Hold/Accumulate bands.
func (s Signal) Bullish() bool { return s == SignalHold || s == SignalAccumulate }
