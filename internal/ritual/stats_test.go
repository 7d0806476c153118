package ritual

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeeklySeriesZeroFilled(t *testing.T) {
	end := day(2026, 8, 28)

	series := WeeklySeries(nil, end)
	require.Len(t, series, 7)
	require.Equal(t, "2026-08-22", series[0].Date)
	require.Equal(t, "2026-08-28", series[6].Date)
	for i, dc := range series {
		require.Zero(t, dc.Count)
		if i > 0 {
			require.Less(t, series[i-1].Date, dc.Date) // chronological
		}
	}
}

func TestWeeklyStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	end := day(2026, 8, 28)

	_, err := s.CreateRitual(ctx, 1, "Run 5km", "health", testBlueprint())
	require.NoError(t, err)
	goals, err := s.ActiveGoals(ctx, 1)
	require.NoError(t, err)
	actions := goals[0].Systems[0].MicroActions

	complete := func(userID uint64, d time.Time, actionID uint64) {
		dl, err := s.EnsureDailyLog(ctx, userID, d, MoodNormal)
		require.NoError(t, err)
		_, err = s.InsertCompletion(ctx, dl.ID, actionID, VersionIdeal)
		require.NoError(t, err)
	}

	complete(1, day(2026, 8, 28), actions[0].ID)
	complete(1, day(2026, 8, 28), actions[1].ID)
	complete(1, day(2026, 8, 25), actions[0].ID)
	complete(1, day(2026, 8, 20), actions[0].ID) // outside the window
	complete(2, day(2026, 8, 28), actions[1].ID) // other user

	series, err := s.WeeklyStats(ctx, 1, end)
	require.NoError(t, err)
	require.Len(t, series, 7)

	byDate := map[string]int{}
	total := 0
	for _, dc := range series {
		require.GreaterOrEqual(t, dc.Count, 0)
		byDate[dc.Date] = dc.Count
		total += dc.Count
	}
	require.Equal(t, 2, byDate["2026-08-28"])
	require.Equal(t, 1, byDate["2026-08-25"])
	require.Equal(t, 0, byDate["2026-08-22"])
	require.Equal(t, 3, total) // window total, out-of-window day excluded
}
