package indicator

import "trend-systemv1/internal/model"

// RollingMean maintains a simple moving average over a fixed window.
// Uses a preallocated circular buffer for zero-allocation updates.
type RollingMean struct {
	window int
	buf    []float64 // preallocated circular buffer
	idx    int       // current write position
	count  int       // total values received
	sum    float64
}

// NewRollingMean creates a rolling mean with the given window size.
func NewRollingMean(window int) *RollingMean {
	return &RollingMean{
		window: window,
		buf:    make([]float64, window),
	}
}

// Update feeds the next value: add the newest, subtract the value leaving
// the window.
func (m *RollingMean) Update(v float64) {
	if m.count >= m.window {
		m.sum -= m.buf[m.idx]
	}
	m.buf[m.idx] = v
	m.sum += v
	m.idx = (m.idx + 1) % m.window
	m.count++
}

// Ready reports whether the window is fully populated.
func (m *RollingMean) Ready() bool { return m.count >= m.window }

// Value returns the current mean. Only meaningful once Ready.
func (m *RollingMean) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.sum / float64(m.window)
}

// Opt returns the current mean as an optional value: absent until the window
// is fully populated, never a numeric placeholder.
func (m *RollingMean) Opt() model.OptFloat {
	if !m.Ready() {
		return model.None()
	}
	return model.Some(m.sum / float64(m.window))
}
