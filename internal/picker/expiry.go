package picker

import (
	"math"
	"time"
)

// marketCloseHour is the local hour after which a same-day Friday expiry
// is no longer tradable.
const marketCloseHour = 16

// preferredDTE is the days-to-expiry target used when no expiry falls
// inside the selection window.
const preferredDTE = 30

// SelectExpiry picks an expiry date from the available YYYY-MM-DD
// strings: the earliest expiry within [minDays, maxDays] of now, else the
// expiry closest to 30 days out, else the next Friday. Unparseable
// entries are ignored.
func SelectExpiry(expiries []string, minDays, maxDays int, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var all []time.Time
	for _, s := range expiries {
		d, err := time.ParseInLocation("2006-01-02", s, now.Location())
		if err != nil {
			continue
		}
		all = append(all, d)
	}

	var best time.Time
	for _, d := range all {
		dte := daysBetween(today, d)
		if dte < minDays || dte > maxDays {
			continue
		}
		if best.IsZero() || d.Before(best) {
			best = d
		}
	}
	if !best.IsZero() {
		return best
	}

	if len(all) > 0 {
		closest := all[0]
		for _, d := range all[1:] {
			if abs(daysBetween(today, d)-preferredDTE) < abs(daysBetween(today, closest)-preferredDTE) {
				closest = d
			}
		}
		return closest
	}

	return NextFriday(now)
}

// NextFriday returns the next Friday relative to now. On a Friday at or
// after the market close it rolls to the following week, never returning
// a same-day expiry that can no longer trade.
func NextFriday(now time.Time) time.Time {
	daysUntil := (int(time.Friday) - int(now.Weekday()) + 7) % 7
	if daysUntil == 0 && now.Hour() >= marketCloseHour {
		daysUntil = 7
	}
	d := now.AddDate(0, 0, daysUntil)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
}

// daysBetween counts calendar days, rounding so DST transitions don't
// shave a day off.
func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
