package alarms

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

func newTestRepository(t *testing.T) *BadgerRepository {
	t.Helper()

	repo, err := OpenBadger(Options{InMemory: true})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, repo.Close())
	})

	return repo
}

// TestLoadAll_EmptyDatabase ensures a fresh database yields an empty collection.
func TestLoadAll_EmptyDatabase(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)

	got, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}

// TestSaveLoad_Roundtrip verifies SaveAll followed by LoadAll returns equal alarms.
func TestSaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	until := time.Date(2026, time.March, 2, 7, 5, 0, 0, time.UTC)

	want := []*domain.Alarm{
		{
			ID:            "a",
			Hour:          7,
			Minute:        30,
			Label:         "Workday",
			Enabled:       true,
			Repeat:        domain.RepeatCustom,
			Weekdays:      domain.NewWeekdaySet(time.Monday, time.Friday),
			Sound:         domain.SoundBell,
			SnoozeMinutes: 5,
			Vibration:     true,
			GradualVolume: true,
			SnoozedUntil:  &until,
		},
		{
			ID:            "b",
			Hour:          22,
			Label:         domain.DefaultLabel,
			Repeat:        domain.RepeatOnce,
			Sound:         domain.SoundCustom,
			CustomSound:   []byte{0x52, 0x49, 0x46, 0x46},
			SnoozeMinutes: 10,
		},
	}

	require.NoError(t, repo.SaveAll(context.Background(), want))

	got, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, want[0], got[0])
	require.Equal(t, want[1], got[1])
	require.Equal(t, until.Unix(), got[0].SnoozedUntil.Unix())
}

// TestSaveAll_RemovesStaleRecords ensures records absent from the new
// collection are deleted.
func TestSaveAll_RemovesStaleRecords(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	first := []*domain.Alarm{
		{ID: "a", Hour: 7, Repeat: domain.RepeatDaily, SnoozeMinutes: 5},
		{ID: "b", Hour: 8, Repeat: domain.RepeatDaily, SnoozeMinutes: 5},
	}
	require.NoError(t, repo.SaveAll(ctx, first))

	second := []*domain.Alarm{first[1]}
	require.NoError(t, repo.SaveAll(ctx, second))

	got, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "b", got[0].ID)
}

// TestSaveAll_LastWriteWins checks that rewriting an alarm replaces its record.
func TestSaveAll_LastWriteWins(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	a := &domain.Alarm{ID: "a", Hour: 7, Repeat: domain.RepeatDaily, SnoozeMinutes: 5}
	require.NoError(t, repo.SaveAll(ctx, []*domain.Alarm{a}))

	updated := a.Clone()
	updated.Hour = 9
	updated.Enabled = true
	require.NoError(t, repo.SaveAll(ctx, []*domain.Alarm{updated}))

	got, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 9, got[0].Hour)
	require.True(t, got[0].Enabled)
}
