package ritual

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Blueprint is the generation contract: one System plus its MicroActions,
// produced by the ritual generation gateway (or its fallback).
type Blueprint struct {
	SystemTitle string
	Description string
	Frequency   string
	TimeOfDay   string
	Actions     []ActionSpec
}

type ActionSpec struct {
	ActionIdeal     string
	ActionBadDay    string
	DurationMinutes int
}

// Store is the durable entity store for goals, systems, micro-actions, daily
// logs and the completion ledger. Uniqueness violations surface as
// ErrConflict, missing rows as ErrNotFound.
type Store struct {
	DB *gorm.DB
}

// CreateRitual persists a Goal with one System and its MicroActions as a
// single transaction and returns the new system id.
func (s *Store) CreateRitual(ctx context.Context, userID uint64, goalTitle, pillar string, bp Blueprint) (uint64, error) {
	var systemID uint64

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g := Goal{
			UserID: userID,
			Title:  goalTitle,
			Pillar: pillar,
			Status: GoalActive,
		}
		if err := tx.Create(&g).Error; err != nil {
			return err
		}

		sys := System{
			GoalID:      g.ID,
			Title:       bp.SystemTitle,
			Description: bp.Description,
			Frequency:   bp.Frequency,
			TimeOfDay:   bp.TimeOfDay,
		}
		if err := tx.Create(&sys).Error; err != nil {
			return err
		}
		systemID = sys.ID

		for _, a := range bp.Actions {
			ma := MicroAction{
				SystemID:        sys.ID,
				ActionIdeal:     a.ActionIdeal,
				ActionBadDay:    a.ActionBadDay,
				DurationMinutes: a.DurationMinutes,
			}
			if err := tx.Create(&ma).Error; err != nil {
				return err
			}
		}
		return nil
	})

	return systemID, err
}

// ActiveGoals returns the user's active goals with systems and micro-actions
// preloaded in creation order.
func (s *Store) ActiveGoals(ctx context.Context, userID uint64) ([]Goal, error) {
	var goals []Goal
	err := s.DB.WithContext(ctx).
		Preload("Systems", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Systems.MicroActions", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("user_id = ? AND status = ?", userID, GoalActive).
		Order("id asc").
		Find(&goals).Error
	return goals, err
}

func (s *Store) CountActiveGoals(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&Goal{}).
		Where("user_id = ? AND status = ?", userID, GoalActive).
		Count(&n).Error
	return n, err
}

// ActionOwnedBy resolves a micro-action and verifies it belongs to one of the
// user's goals. Foreign actions are indistinguishable from missing ones.
func (s *Store) ActionOwnedBy(ctx context.Context, actionID, userID uint64) (MicroAction, error) {
	var ma MicroAction
	err := s.DB.WithContext(ctx).
		Joins("JOIN systems ON systems.id = micro_actions.system_id").
		Joins("JOIN goals ON goals.id = systems.goal_id").
		Where("micro_actions.id = ? AND goals.user_id = ?", actionID, userID).
		First(&ma).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return MicroAction{}, ErrNotFound
	}
	return ma, err
}

func (s *Store) FindDailyLog(ctx context.Context, userID uint64, date time.Time) (DailyLog, error) {
	var dl DailyLog
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, Day(date)).
		First(&dl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DailyLog{}, ErrNotFound
	}
	return dl, err
}

// CreateDailyLog inserts the log for (user, date). A second insert for the
// same pair hits the composite unique index and returns ErrConflict.
func (s *Store) CreateDailyLog(ctx context.Context, userID uint64, date time.Time, mood string) (DailyLog, error) {
	dl := DailyLog{
		UserID: userID,
		Date:   Day(date),
		Mood:   mood,
	}
	err := s.DB.WithContext(ctx).Create(&dl).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return DailyLog{}, ErrConflict
	}
	return dl, err
}

// EnsureDailyLog finds or creates the log for (user, date). The mood is only
// stored when this call creates the row; a concurrent creator winning the
// race is resolved by re-reading the committed row.
func (s *Store) EnsureDailyLog(ctx context.Context, userID uint64, date time.Time, mood string) (DailyLog, error) {
	dl, err := s.FindDailyLog(ctx, userID, date)
	if err == nil {
		return dl, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return DailyLog{}, err
	}

	dl, err = s.CreateDailyLog(ctx, userID, date, mood)
	if errors.Is(err, ErrConflict) {
		return s.FindDailyLog(ctx, userID, date)
	}
	return dl, err
}

// InsertCompletion appends one row to the completion ledger. A duplicate
// (daily log, action) pair returns ErrConflict and leaves the ledger
// untouched.
func (s *Store) InsertCompletion(ctx context.Context, dailyLogID, actionID uint64, version string) (CompletedAction, error) {
	ca := CompletedAction{
		DailyLogID:    dailyLogID,
		MicroActionID: actionID,
		Version:       version,
	}
	err := s.DB.WithContext(ctx).Create(&ca).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return CompletedAction{}, ErrConflict
	}
	return ca, err
}

func (s *Store) FindCompletion(ctx context.Context, dailyLogID, actionID uint64) (CompletedAction, error) {
	var ca CompletedAction
	err := s.DB.WithContext(ctx).
		Where("daily_log_id = ? AND micro_action_id = ?", dailyLogID, actionID).
		First(&ca).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CompletedAction{}, ErrNotFound
	}
	return ca, err
}

// CompletedActionIDs returns the set of micro-action ids completed under the
// given daily log.
func (s *Store) CompletedActionIDs(ctx context.Context, dailyLogID uint64) (map[uint64]bool, error) {
	var rows []CompletedAction
	if err := s.DB.WithContext(ctx).
		Where("daily_log_id = ?", dailyLogID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	done := make(map[uint64]bool, len(rows))
	for _, r := range rows {
		done[r.MicroActionID] = true
	}
	return done, nil
}

// QualifyingDates returns the set of ISO dates on which the user completed at
// least one of the given micro-actions (either version).
func (s *Store) QualifyingDates(ctx context.Context, userID uint64, actionIDs []uint64) (map[string]bool, error) {
	dates := map[string]bool{}
	if len(actionIDs) == 0 {
		return dates, nil
	}

	var logIDs []uint64
	if err := s.DB.WithContext(ctx).Model(&CompletedAction{}).
		Where("micro_action_id IN ?", actionIDs).
		Distinct().
		Pluck("daily_log_id", &logIDs).Error; err != nil {
		return nil, err
	}
	if len(logIDs) == 0 {
		return dates, nil
	}

	var logs []DailyLog
	if err := s.DB.WithContext(ctx).
		Where("id IN ? AND user_id = ?", logIDs, userID).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	for _, l := range logs {
		dates[DayKey(l.Date)] = true
	}
	return dates, nil
}

// CompletionCounts returns per-date completion counts for the user over
// [from, to], keyed by ISO date. Dates without activity are absent; the
// weekly aggregator zero-fills them.
func (s *Store) CompletionCounts(ctx context.Context, userID uint64, from, to time.Time) (map[string]int, error) {
	var logs []DailyLog
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, Day(from), Day(to)).
		Find(&logs).Error; err != nil {
		return nil, err
	}

	counts := map[string]int{}
	if len(logs) == 0 {
		return counts, nil
	}

	logIDs := make([]uint64, 0, len(logs))
	byID := make(map[uint64]string, len(logs))
	for _, l := range logs {
		logIDs = append(logIDs, l.ID)
		byID[l.ID] = DayKey(l.Date)
	}

	type row struct {
		DailyLogID uint64
		N          int
	}
	var rows []row
	if err := s.DB.WithContext(ctx).Model(&CompletedAction{}).
		Select("daily_log_id, count(*) as n").
		Where("daily_log_id IN ?", logIDs).
		Group("daily_log_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[byID[r.DailyLogID]] = r.N
	}
	return counts, nil
}
