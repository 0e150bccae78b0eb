package calendar

import (
	"fmt"
	"time"
)

// CST is China Standard Time (UTC+8). A-share sessions run in this zone.
var CST = time.FixedZone("CST", 8*3600)

// A-share session times in CST.
const (
	OpenHour    = 9
	OpenMinute  = 30
	CloseHour   = 15
	CloseMinute = 0

	// Daily scan timing: EOD bars settle a few minutes after close,
	// so the screener runs with a buffer past 15:00.
	ScanMinutesAfterClose = 30
)

// IsMarketOpen returns true if t falls within A-share trading hours
// (9:30 AM – 3:00 PM CST, Mon–Fri, excluding holidays). The midday
// break is ignored; EOD screening never runs inside the session anyway.
func IsMarketOpen(t time.Time) bool {
	cst := t.In(CST)
	wd := cst.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	if IsHoliday(cst) {
		return false
	}
	hm := cst.Hour()*60 + cst.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// IsWeekday returns true if t is Mon–Fri.
func IsWeekday(t time.Time) bool {
	wd := t.In(CST).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not an exchange holiday.
func IsTradingDay(t time.Time) bool {
	cst := t.In(CST)
	return IsWeekday(cst) && !IsHoliday(cst)
}

// TodayClose returns today's market close time (3:00 PM CST).
func TodayClose(t time.Time) time.Time {
	cst := t.In(CST)
	return time.Date(cst.Year(), cst.Month(), cst.Day(), CloseHour, CloseMinute, 0, 0, CST)
}

// NextScanTime returns the next EOD scan time: close + buffer on the
// next trading day, or today if today's scan time has not yet passed.
func NextScanTime(t time.Time) time.Time {
	cst := t.In(CST)

	todayScan := TodayClose(cst).Add(ScanMinutesAfterClose * time.Minute)
	if cst.Before(todayScan) && IsTradingDay(cst) {
		return todayScan
	}

	d := cst.AddDate(0, 0, 1)
	for i := 0; i < 15; i++ { // Spring Festival plus weekends fit in this window
		if IsTradingDay(d) {
			close := time.Date(d.Year(), d.Month(), d.Day(), CloseHour, CloseMinute, 0, 0, CST)
			return close.Add(ScanMinutesAfterClose * time.Minute)
		}
		d = d.AddDate(0, 0, 1)
	}
	// Fallback: next day
	return time.Date(cst.Year(), cst.Month(), cst.Day()+1, CloseHour, CloseMinute, 0, 0, CST)
}

// PrevTradingDay returns the most recent trading day strictly before t.
func PrevTradingDay(t time.Time) time.Time {
	d := t.In(CST).AddDate(0, 0, -1)
	for i := 0; i < 15; i++ {
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, CST)
		}
		d = d.AddDate(0, 0, -1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, CST)
}

// StatusString returns a human-readable market status.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		d := TodayClose(t).Sub(t.In(CST))
		return fmt.Sprintf("Market Open — closes in %s", fmtDur(d))
	}
	next := NextScanTime(t)
	d := next.Sub(t)
	cst := next.In(CST)
	return fmt.Sprintf("Market Closed — next scan %s %s (%s)",
		cst.Weekday().String()[:3], cst.Format("15:04"), fmtDur(d))
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
