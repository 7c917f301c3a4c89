package alarm

import "time"

// NextTrigger computes the next instant the alarm should fire, relative to now.
//
// A snooze still in the future takes precedence over the recurrence rule.
// A snooze that has already passed is cleared on the alarm; this is the only
// mutation the resolver performs, so for a fixed now and alarm state the
// result is stable across calls.
func NextTrigger(a *Alarm, now time.Time) (time.Time, error) {
	if a.Repeat == RepeatCustom && a.Weekdays.IsEmpty() {
		return time.Time{}, ErrEmptyWeekdays
	}

	if a.SnoozedUntil != nil {
		if a.SnoozedUntil.After(now) {
			return *a.SnoozedUntil, nil
		}

		a.SnoozedUntil = nil
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), a.Hour, a.Minute, 0, 0, now.Location())

	switch a.Repeat {
	case RepeatOnce, RepeatDaily:
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
	case RepeatCustom:
		// Advance day by day, wrapping weeks, until the candidate is strictly
		// in the future and lands on a selected weekday.
		for !candidate.After(now) || !a.Weekdays.Contains(candidate.Weekday()) {
			candidate = candidate.AddDate(0, 0, 1)
		}
	}

	return candidate, nil
}
