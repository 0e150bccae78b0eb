package series

import (
	"errors"
	"testing"
	"time"

	"trend-systemv1/internal/model"
)

func mkBars(dates ...string) []model.Bar {
	bars := make([]model.Bar, len(dates))
	for i, d := range dates {
		ts, err := time.Parse("2006-01-02", d)
		if err != nil {
			panic(err)
		}
		bars[i] = model.Bar{Date: ts, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 1e6}
	}
	return bars
}

func TestIngest_RejectsNonMonotonicDates(t *testing.T) {
	_, err := Ingest("600000", mkBars("2024-01-02", "2024-01-04", "2024-01-03"))
	if !errors.Is(err, ErrInvalidSeries) {
		t.Fatalf("err=%v, want ErrInvalidSeries", err)
	}
}

func TestIngest_RejectsDuplicateDates(t *testing.T) {
	_, err := Ingest("600000", mkBars("2024-01-02", "2024-01-03", "2024-01-03"))
	if !errors.Is(err, ErrInvalidSeries) {
		t.Fatalf("err=%v, want ErrInvalidSeries", err)
	}
}

func TestIngest_RejectsEmpty(t *testing.T) {
	_, err := Ingest("600000", nil)
	if !errors.Is(err, ErrInvalidSeries) {
		t.Fatalf("err=%v, want ErrInvalidSeries", err)
	}
}

func TestIngest_CopiesInput(t *testing.T) {
	bars := mkBars("2024-01-02", "2024-01-03")
	st, err := Ingest("600000", bars)
	if err != nil {
		t.Fatal(err)
	}
	bars[0].Close = 999 // caller mutates after ingest
	if st.At(0).Close == 999 {
		t.Fatal("store shares memory with the caller's slice")
	}
}

func TestWindow_ReturnsTrailingBars(t *testing.T) {
	st, err := Ingest("600000", mkBars("2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"))
	if err != nil {
		t.Fatal(err)
	}

	win, err := st.Window(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(win) != 3 {
		t.Fatalf("len=%d, want 3", len(win))
	}
	if got := win[0].Date.Format("2006-01-02"); got != "2024-01-03" {
		t.Errorf("window starts at %s, want 2024-01-03", got)
	}
	if got := win[2].Date.Format("2006-01-02"); got != "2024-01-05" {
		t.Errorf("window ends at %s, want 2024-01-05", got)
	}
}

func TestWindow_InsufficientHistory(t *testing.T) {
	st, err := Ingest("600000", mkBars("2024-01-02", "2024-01-03"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = st.Window(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), 5)
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("err=%v, want ErrInsufficientHistory", err)
	}
}

func TestWindow_NonTradingDateResolvesBackward(t *testing.T) {
	// Friday 2024-01-05 then Monday 2024-01-08; querying Sunday resolves to Friday.
	st, err := Ingest("600000", mkBars("2024-01-04", "2024-01-05", "2024-01-08"))
	if err != nil {
		t.Fatal(err)
	}
	win, err := st.Window(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := win[1].Date.Format("2006-01-02"); got != "2024-01-05" {
		t.Errorf("window ends at %s, want 2024-01-05", got)
	}
}

func TestPrefix_NoLookahead(t *testing.T) {
	st, err := Ingest("600000", mkBars("2024-01-02", "2024-01-03", "2024-01-04"))
	if err != nil {
		t.Fatal(err)
	}
	prefix, err := st.Prefix(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if len(prefix) != 2 {
		t.Fatalf("prefix covers %d bars, want 2 (no bar after the evaluation date)", len(prefix))
	}
}

func TestPrefix_BeforeFirstBarFails(t *testing.T) {
	st, err := Ingest("600000", mkBars("2024-01-02"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = st.Prefix(time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("err=%v, want ErrInsufficientHistory", err)
	}
}
