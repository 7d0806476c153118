package ritual

import (
	"context"
	"time"
)

// CountStreak walks backward from today over the set of qualifying ISO dates
// and counts consecutive qualifying days. A day qualifies when at least one
// of the system's actions was completed, either version. Today not yet acted
// on does not break the chain: if today is missing the walk starts at
// yesterday instead, so the streak survives until that grace day is over.
func CountStreak(qualifying map[string]bool, today time.Time) int {
	day := Day(today)
	if !qualifying[DayKey(day)] {
		day = day.AddDate(0, 0, -1)
		if !qualifying[DayKey(day)] {
			return 0
		}
	}

	streak := 0
	for qualifying[DayKey(day)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// Streak computes the current consecutive-day streak for one system.
// A system with no micro-actions has streak 0.
func (s *Store) Streak(ctx context.Context, userID uint64, sys System, today time.Time) (int, error) {
	actionIDs := make([]uint64, 0, len(sys.MicroActions))
	for _, ma := range sys.MicroActions {
		actionIDs = append(actionIDs, ma.ID)
	}
	if len(actionIDs) == 0 {
		return 0, nil
	}

	dates, err := s.QualifyingDates(ctx, userID, actionIDs)
	if err != nil {
		return 0, err
	}
	return CountStreak(dates, today), nil
}
