package domain

import (
	"sort"
	"time"
)

// Classify maps a timestamp into exactly one band. The holiday-calendar
// override takes precedence over plain weekday rules: on a national holiday
// only holiday-applicable windows are considered, so a weekday peak window
// never matches. Timestamps outside every window default to fora_ponta.
func Classify(sched *Schedule, at time.Time) Band {
	if sched == nil {
		return BandForaPonta
	}

	local := at
	if loc := sched.Location(); loc != nil {
		local = at.In(loc)
	}

	holiday := IsNationalHoliday(local)
	minute := local.Hour()*60 + local.Minute()
	weekdayBit := 1 << uint(local.Weekday())

	windows := make([]Window, len(sched.Windows))
	copy(windows, sched.Windows)
	sort.Slice(windows, func(i, j int) bool { return windows[i].Position < windows[j].Position })

	for _, w := range windows {
		if holiday {
			if !w.OnHolidays {
				continue
			}
		} else if w.WeekdayMask&weekdayBit == 0 {
			continue
		}
		if minuteInWindow(minute, w.StartMinute, w.EndMinute) {
			return w.Band
		}
	}
	return BandForaPonta
}

func minuteInWindow(minute, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return minute >= start && minute < end
	}
	// Wraps past midnight.
	return minute >= start || minute < end
}
