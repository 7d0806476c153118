package ritual

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datesOf(days ...time.Time) map[string]bool {
	out := map[string]bool{}
	for _, d := range days {
		out[DayKey(d)] = true
	}
	return out
}

func TestCountStreak(t *testing.T) {
	today := day(2026, 8, 28)

	t.Run("no completions ever", func(t *testing.T) {
		require.Equal(t, 0, CountStreak(map[string]bool{}, today))
	})

	t.Run("today only", func(t *testing.T) {
		require.Equal(t, 1, CountStreak(datesOf(today), today))
	})

	t.Run("grace day keeps the streak before today's completion", func(t *testing.T) {
		q := datesOf(day(2026, 8, 26), day(2026, 8, 27))
		require.Equal(t, 2, CountStreak(q, today))
	})

	t.Run("two day old completion does not count", func(t *testing.T) {
		q := datesOf(day(2026, 8, 25), day(2026, 8, 26))
		require.Equal(t, 0, CountStreak(q, today))
	})

	t.Run("gap resets", func(t *testing.T) {
		// D, D+1, skip D+2, complete D+3
		q := datesOf(day(2026, 8, 24), day(2026, 8, 25), day(2026, 8, 27))
		require.Equal(t, 1, CountStreak(q, day(2026, 8, 27))) // measured on D+3
		require.Equal(t, 2, CountStreak(q, day(2026, 8, 25))) // measured on D+1
	})

	t.Run("adding today extends yesterday's streak by one", func(t *testing.T) {
		q := datesOf(day(2026, 8, 25), day(2026, 8, 26), day(2026, 8, 27))
		without := CountStreak(q, day(2026, 8, 27))
		q[DayKey(today)] = true
		require.Equal(t, without+1, CountStreak(q, today))
	})
}

func TestStoreStreak(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	today := day(2026, 8, 28)

	_, err := s.CreateRitual(ctx, 1, "Run 5km", "health", testBlueprint())
	require.NoError(t, err)
	goals, err := s.ActiveGoals(ctx, 1)
	require.NoError(t, err)
	sys := goals[0].Systems[0]
	ideal := sys.MicroActions[0]
	second := sys.MicroActions[1]

	complete := func(d time.Time, actionID uint64, version string) {
		dl, err := s.EnsureDailyLog(ctx, 1, d, MoodNormal)
		require.NoError(t, err)
		_, err = s.InsertCompletion(ctx, dl.ID, actionID, version)
		require.NoError(t, err)
	}

	// no history yet
	n, err := s.Streak(ctx, 1, sys, today)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	// bad-day versions count the same as ideal ones
	complete(day(2026, 8, 26), ideal.ID, VersionBadDay)
	complete(day(2026, 8, 27), second.ID, VersionIdeal)
	complete(today, ideal.ID, VersionIdeal)

	n, err = s.Streak(ctx, 1, sys, today)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	// another user's identical dates do not leak in
	n, err = s.Streak(ctx, 2, sys, today)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestStreakEmptySystem(t *testing.T) {
	s := newTestStore(t)

	n, err := s.Streak(context.Background(), 1, System{ID: 7}, day(2026, 8, 28))
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
