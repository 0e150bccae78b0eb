// Package indicator computes rolling indicators over daily bar series.
//
// All rolling windows are maintained incrementally (running sum + circular
// buffer), never recomputed from scratch per bar. This keeps a full-series
// pass O(n) and makes the floating-point result deterministic for a given
// input — the same series always produces bit-identical values.
package indicator

// Config holds the indicator window sizes. Zero values are invalid; use
// DefaultConfig as the baseline and override from the configuration surface.
type Config struct {
	PriceMAWindow  int `yaml:"price_ma_window"`  // MA of closes, default 20
	VolumeMAWindow int `yaml:"volume_ma_window"` // MA of volumes, default 120

	// KMJ chain windows.
	KMJWeightWindow int `yaml:"kmj_weight_window"` // linearly weighted MA of KMJ1, default 21
	KMJSmoothWindow int `yaml:"kmj_smooth_window"` // SMA of KMJ2, default 5
}

// DefaultConfig returns the standard Yang Kai / KMJ windows.
func DefaultConfig() Config {
	return Config{
		PriceMAWindow:   20,
		VolumeMAWindow:  120,
		KMJWeightWindow: 21,
		KMJSmoothWindow: 5,
	}
}
