package calendar

import (
	"testing"
	"time"
)

func cstDate(month time.Month, day, hour, min int) time.Time {
	return time.Date(2026, month, day, hour, min, 0, 0, CST)
}

func TestIsTradingDay(t *testing.T) {
	cases := []struct {
		name string
		when time.Time
		want bool
	}{
		{"ordinary wednesday", cstDate(time.March, 4, 10, 0), true},
		{"saturday", cstDate(time.March, 7, 10, 0), false},
		{"sunday", cstDate(time.March, 8, 10, 0), false},
		{"spring festival", cstDate(time.February, 18, 10, 0), false},
		{"national day", cstDate(time.October, 1, 10, 0), false},
	}
	for _, tc := range cases {
		if got := IsTradingDay(tc.when); got != tc.want {
			t.Errorf("%s: IsTradingDay=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsMarketOpen(t *testing.T) {
	if IsMarketOpen(cstDate(time.March, 4, 9, 29)) {
		t.Error("market should be closed at 9:29")
	}
	if !IsMarketOpen(cstDate(time.March, 4, 9, 30)) {
		t.Error("market should be open at 9:30")
	}
	if !IsMarketOpen(cstDate(time.March, 4, 14, 59)) {
		t.Error("market should be open at 14:59")
	}
	if IsMarketOpen(cstDate(time.March, 4, 15, 0)) {
		t.Error("market should be closed at 15:00")
	}
	if IsMarketOpen(cstDate(time.February, 18, 10, 0)) {
		t.Error("market should be closed on a holiday")
	}
}

func TestNextScanTime(t *testing.T) {
	// Mid-session on a trading day: scan later the same afternoon.
	next := NextScanTime(cstDate(time.March, 4, 10, 0))
	want := cstDate(time.March, 4, 15, 30)
	if !next.Equal(want) {
		t.Errorf("same-day scan: got %v, want %v", next, want)
	}

	// After today's scan has run: tomorrow.
	next = NextScanTime(cstDate(time.March, 4, 16, 0))
	want = cstDate(time.March, 5, 15, 30)
	if !next.Equal(want) {
		t.Errorf("next-day scan: got %v, want %v", next, want)
	}

	// Friday evening skips the weekend.
	next = NextScanTime(cstDate(time.March, 6, 18, 0))
	want = cstDate(time.March, 9, 15, 30)
	if !next.Equal(want) {
		t.Errorf("weekend skip: got %v, want %v", next, want)
	}

	// Eve of Spring Festival week jumps past all five closure days.
	next = NextScanTime(cstDate(time.February, 13, 18, 0))
	want = cstDate(time.February, 23, 15, 30)
	if !next.Equal(want) {
		t.Errorf("spring festival skip: got %v, want %v", next, want)
	}
}

func TestPrevTradingDay(t *testing.T) {
	// Monday looks back to Friday.
	prev := PrevTradingDay(cstDate(time.March, 9, 10, 0))
	want := cstDate(time.March, 6, 0, 0)
	if !prev.Equal(want) {
		t.Errorf("monday lookback: got %v, want %v", prev, want)
	}

	// First day after Spring Festival looks back across the closure.
	prev = PrevTradingDay(cstDate(time.February, 23, 10, 0))
	want = cstDate(time.February, 13, 0, 0)
	if !prev.Equal(want) {
		t.Errorf("post-holiday lookback: got %v, want %v", prev, want)
	}
}
