package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestNew_FillsDefaults verifies defaults for label, repeat mode, and sound.
func TestNew_FillsDefaults(t *testing.T) {
	t.Parallel()

	a, err := New(Spec{Hour: 7, Minute: 30, Enabled: true, SnoozeMinutes: 5})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.Equal(t, DefaultLabel, a.Label)
	require.Equal(t, RepeatOnce, a.Repeat)
	require.Equal(t, SoundDefault, a.Sound)
}

// TestNew_UniqueIDs ensures consecutive creations get distinct identifiers.
func TestNew_UniqueIDs(t *testing.T) {
	t.Parallel()

	a, err := New(Spec{Hour: 7, SnoozeMinutes: 5})
	require.NoError(t, err)

	b, err := New(Spec{Hour: 7, SnoozeMinutes: 5})
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}

// TestValidate_Boundaries covers the invariants enforced at the mutation boundary.
func TestValidate_Boundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		spec Spec
		want error
	}{
		{"bad hour", Spec{Hour: 24, SnoozeMinutes: 5}, ErrInvalidTime},
		{"bad minute", Spec{Minute: 60, SnoozeMinutes: 5}, ErrInvalidTime},
		{"custom without weekdays", Spec{Repeat: RepeatCustom, SnoozeMinutes: 5}, ErrEmptyWeekdays},
		{"zero snooze", Spec{Hour: 7}, ErrInvalidSnooze},
		{"unknown repeat", Spec{Repeat: "sometimes", SnoozeMinutes: 5}, ErrInvalidRepeat},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tc.spec)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

// TestWeekdaySet covers membership, emptiness, and ordering.
func TestWeekdaySet(t *testing.T) {
	t.Parallel()

	s := NewWeekdaySet(time.Monday, time.Wednesday, time.Friday)
	require.True(t, s.Contains(time.Monday))
	require.False(t, s.Contains(time.Sunday))
	require.False(t, s.IsEmpty())
	require.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, s.Days())

	require.True(t, WeekdaySet(0).IsEmpty())
}

// TestClone verifies deep copies of pointer and slice fields and nil safety.
func TestClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Alarm)(nil).Clone())

	until := time.Date(2026, time.March, 2, 7, 5, 0, 0, time.UTC)
	a := &Alarm{
		ID:           "a-1",
		Hour:         7,
		CustomSound:  []byte{1, 2, 3},
		SnoozedUntil: &until,
	}

	c := a.Clone()
	require.Equal(t, a, c)
	require.NotSame(t, a, c)
	require.NotSame(t, a.SnoozedUntil, c.SnoozedUntil)

	c.CustomSound[0] = 9
	require.Equal(t, byte(1), a.CustomSound[0])
}
