package indicator

import "trend-systemv1/internal/model"

// LinearWMA maintains a linearly weighted moving average: the newest value
// carries weight n, the oldest weight 1.
//
// The steady-state update uses the identity
//
//	num' = num − total + n·x
//
// subtracting the window's plain sum demotes every existing weight by one
// (the oldest, at weight 1, drops out entirely), then the new value enters
// at weight n. Same O(1) amortized shape as RollingMean.
type LinearWMA struct {
	window  int
	buf     []float64
	idx     int // oldest position once the window is full
	count   int
	num     float64 // weighted numerator Σ i·vᵢ
	total   float64 // plain sum of the window
	divisor float64 // 1+2+…+n
}

// NewLinearWMA creates a linearly weighted moving average with window n.
func NewLinearWMA(window int) *LinearWMA {
	return &LinearWMA{
		window:  window,
		buf:     make([]float64, window),
		divisor: float64(window) * float64(window+1) / 2,
	}
}

// Update feeds the next value.
func (w *LinearWMA) Update(v float64) {
	if w.count < w.window {
		// Filling: existing values keep their weights (oldest stays at 1),
		// the new value enters at weight count.
		w.buf[w.count] = v
		w.count++
		w.total += v
		w.num += float64(w.count) * v
		return
	}

	oldest := w.buf[w.idx]
	w.num -= w.total
	w.total -= oldest
	w.buf[w.idx] = v
	w.idx = (w.idx + 1) % w.window
	w.num += float64(w.window) * v
	w.total += v
	w.count++
}

// Ready reports whether the window is fully populated.
func (w *LinearWMA) Ready() bool { return w.count >= w.window }

// Opt returns the weighted mean as an optional value, absent until ready.
func (w *LinearWMA) Opt() model.OptFloat {
	if !w.Ready() {
		return model.None()
	}
	return model.Some(w.num / w.divisor)
}
