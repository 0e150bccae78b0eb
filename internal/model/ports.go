package model

import "context"

// ── Collaborator Port Interfaces ──
// These keep the scoring core free of any concrete data vendor or store.

// BarSource supplies ordered daily price/volume history per symbol. The single
// capability the engine needs from any data vendor: history is fetched before
// evaluation begins, never interleaved with it.
type BarSource interface {
	// Symbols lists the universe this source can serve.
	Symbols(ctx context.Context) ([]string, error)

	// Bars returns the full ordered bar history for a symbol, plus the
	// optional industry tag used only for downstream grouping.
	Bars(ctx context.Context, symbol string) ([]Bar, string, error)
}

// ReportWriter persists finished evaluation reports.
type ReportWriter interface {
	// WriteReports persists a batch of reports. Implementations batch
	// internally; a write failure must not corrupt prior reports.
	WriteReports(ctx context.Context, reports []Report) error

	// Close releases underlying resources.
	Close() error
}
