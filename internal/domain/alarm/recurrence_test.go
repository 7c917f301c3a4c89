package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// at builds a UTC instant on 2026-03-01 (a Sunday) at the given clock time.
func at(hour, minute, second int) time.Time {
	return time.Date(2026, time.March, 1, hour, minute, second, 0, time.UTC)
}

// TestNextTrigger_DailyAdvancesPastTimes ensures a daily alarm whose time has
// passed resolves to the same wall-clock time on the next date.
func TestNextTrigger_DailyAdvancesPastTimes(t *testing.T) {
	t.Parallel()

	a := &Alarm{Hour: 7, Minute: 0, Repeat: RepeatDaily}

	got, err := NextTrigger(a, at(8, 0, 0))
	require.NoError(t, err)
	require.Equal(t, at(7, 0, 0).AddDate(0, 0, 1), got)
	require.True(t, got.After(at(8, 0, 0)))
}

// TestNextTrigger_SameDayWhenStillAhead resolves to today when the time has not passed.
func TestNextTrigger_SameDayWhenStillAhead(t *testing.T) {
	t.Parallel()

	a := &Alarm{Hour: 7, Minute: 0, Repeat: RepeatOnce}

	got, err := NextTrigger(a, at(6, 0, 0))
	require.NoError(t, err)
	require.Equal(t, at(7, 0, 0), got)
}

// TestNextTrigger_ExactInstantAdvances treats a candidate equal to now as passed.
func TestNextTrigger_ExactInstantAdvances(t *testing.T) {
	t.Parallel()

	a := &Alarm{Hour: 7, Minute: 0, Repeat: RepeatDaily}

	got, err := NextTrigger(a, at(7, 0, 0))
	require.NoError(t, err)
	require.Equal(t, at(7, 0, 0).AddDate(0, 0, 1), got)
}

// TestNextTrigger_CustomSundayToMonday resolves a Mon/Wed/Fri alarm created on
// a Sunday to the following Monday.
func TestNextTrigger_CustomSundayToMonday(t *testing.T) {
	t.Parallel()

	a := &Alarm{
		Hour:     7,
		Repeat:   RepeatCustom,
		Weekdays: NewWeekdaySet(time.Monday, time.Wednesday, time.Friday),
	}

	now := at(12, 0, 0) // Sunday noon.
	got, err := NextTrigger(a, now)
	require.NoError(t, err)
	require.Equal(t, time.Monday, got.Weekday())
	require.Equal(t, at(7, 0, 0).AddDate(0, 0, 1), got)
}

// TestNextTrigger_CustomAlwaysLandsOnMember checks weekday membership and
// strict futureness across every non-empty weekday set.
func TestNextTrigger_CustomAlwaysLandsOnMember(t *testing.T) {
	t.Parallel()

	now := at(10, 30, 0)

	for mask := WeekdaySet(1); mask < 1<<7; mask++ {
		a := &Alarm{Hour: 7, Minute: 45, Repeat: RepeatCustom, Weekdays: mask}

		got, err := NextTrigger(a, now)
		require.NoError(t, err)
		require.True(t, got.After(now))
		require.True(t, mask.Contains(got.Weekday()))
		require.Equal(t, 7, got.Hour())
		require.Equal(t, 45, got.Minute())
	}
}

// TestNextTrigger_CustomEmptyWeekdaysFails asserts the precondition violation is reported.
func TestNextTrigger_CustomEmptyWeekdaysFails(t *testing.T) {
	t.Parallel()

	a := &Alarm{Hour: 7, Repeat: RepeatCustom}

	_, err := NextTrigger(a, at(6, 0, 0))
	require.ErrorIs(t, err, ErrEmptyWeekdays)
}

// TestNextTrigger_SnoozeOverridesRecurrence returns a future snooze instant untouched.
func TestNextTrigger_SnoozeOverridesRecurrence(t *testing.T) {
	t.Parallel()

	until := at(7, 5, 0)
	a := &Alarm{Hour: 7, Minute: 0, Repeat: RepeatDaily, SnoozedUntil: &until}

	got, err := NextTrigger(a, at(7, 1, 0))
	require.NoError(t, err)
	require.Equal(t, until, got)
	require.NotNil(t, a.SnoozedUntil)
}

// TestNextTrigger_StaleSnoozeCleared verifies an expired snooze is removed and
// the recurrence takes over.
func TestNextTrigger_StaleSnoozeCleared(t *testing.T) {
	t.Parallel()

	until := at(7, 5, 0)
	a := &Alarm{Hour: 7, Minute: 0, Repeat: RepeatDaily, SnoozedUntil: &until}

	got, err := NextTrigger(a, at(7, 6, 0))
	require.NoError(t, err)
	require.Nil(t, a.SnoozedUntil)
	require.Equal(t, at(7, 0, 0).AddDate(0, 0, 1), got)
}

// TestNextTrigger_Idempotent checks repeated calls with a fixed now agree.
func TestNextTrigger_Idempotent(t *testing.T) {
	t.Parallel()

	a := &Alarm{Hour: 22, Minute: 15, Repeat: RepeatDaily}
	now := at(23, 0, 0)

	first, err := NextTrigger(a, now)
	require.NoError(t, err)

	second, err := NextTrigger(a, now)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
