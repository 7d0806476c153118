package ritual

import (
	"context"
	"time"
)

const statsWindowDays = 7

// DayCount is one cell of the weekly heatmap.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// WeeklySeries zero-fills counts into a fixed, chronologically ordered 7-day
// series ending at end. Every date in the window is present, even with no
// activity.
func WeeklySeries(counts map[string]int, end time.Time) []DayCount {
	series := make([]DayCount, 0, statsWindowDays)
	start := Day(end).AddDate(0, 0, -(statsWindowDays - 1))
	for i := 0; i < statsWindowDays; i++ {
		key := DayKey(start.AddDate(0, 0, i))
		series = append(series, DayCount{Date: key, Count: counts[key]})
	}
	return series
}

// WeeklyStats returns the user's completion counts for the last 7 calendar
// days inclusive of end.
func (s *Store) WeeklyStats(ctx context.Context, userID uint64, end time.Time) ([]DayCount, error) {
	from := Day(end).AddDate(0, 0, -(statsWindowDays - 1))
	counts, err := s.CompletionCounts(ctx, userID, from, end)
	if err != nil {
		return nil, err
	}
	return WeeklySeries(counts, end), nil
}
