package ritual

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Generator is the narrow capability the engine needs from the ritual
// generation gateway. Implementations must be total: on any collaborator
// failure they return a valid fallback blueprint instead of an error.
type Generator interface {
	GenerateRitual(ctx context.Context, goal, pillar string) Blueprint
}

const (
	StatusRecorded        = "recorded"
	StatusAlreadyRecorded = "already_recorded"
)

// CompletionResult is the outcome of RecordCompletion. The operation is
// idempotent: replaying it yields AlreadyRecorded with the stored version.
type CompletionResult struct {
	Status  string
	Version string
}

// Service wires the entity store, the generation gateway and the free-tier
// policy into the engine's write and read paths.
type Service struct {
	Store         *Store
	Gen           Generator
	FreeGoalLimit int64
	Log           *zap.Logger

	// Now is the clock; tests override it.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateGoal turns a free-text goal into a persisted Goal + System +
// MicroAction set via the generation gateway. Free-tier users are capped at
// FreeGoalLimit active goals.
func (s *Service) CreateGoal(ctx context.Context, userID uint64, goal, pillar, plan string) (uint64, error) {
	goal = strings.TrimSpace(goal)
	pillar = strings.TrimSpace(pillar)
	if pillar == "" {
		pillar = "general"
	}

	if plan != "pro" && s.FreeGoalLimit > 0 {
		n, err := s.Store.CountActiveGoals(ctx, userID)
		if err != nil {
			return 0, err
		}
		if n >= s.FreeGoalLimit {
			return 0, ErrPlanLimit
		}
	}

	bp := s.Gen.GenerateRitual(ctx, goal, pillar)

	systemID, err := s.Store.CreateRitual(ctx, userID, goal, pillar, bp)
	if err != nil {
		return 0, err
	}

	s.Log.Info("ritual_created",
		zap.Uint64("user_id", userID),
		zap.Uint64("system_id", systemID),
		zap.String("pillar", pillar),
		zap.Int("actions", len(bp.Actions)),
	)
	return systemID, nil
}

// RecordCompletion records that the user performed a micro-action today,
// exactly once. The completed version is decided here, once, from the mood:
// "hard" records the bad-day variant, anything else the ideal one. Streaks
// are never touched; they are derived on read from the ledger.
func (s *Service) RecordCompletion(ctx context.Context, userID, actionID uint64, mood string) (CompletionResult, error) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		mood = MoodNormal
	}

	if _, err := s.Store.ActionOwnedBy(ctx, actionID, userID); err != nil {
		return CompletionResult{}, err
	}

	today := Day(s.now())
	dl, err := s.Store.EnsureDailyLog(ctx, userID, today, mood)
	if err != nil {
		return CompletionResult{}, err
	}

	version := VersionIdeal
	if mood == MoodHard {
		version = VersionBadDay
	}

	ca, err := s.Store.InsertCompletion(ctx, dl.ID, actionID, version)
	if errors.Is(err, ErrConflict) {
		// Double tap or retried request: report the row that already exists.
		existing, ferr := s.Store.FindCompletion(ctx, dl.ID, actionID)
		if ferr != nil {
			return CompletionResult{}, ferr
		}
		return CompletionResult{Status: StatusAlreadyRecorded, Version: existing.Version}, nil
	}
	if err != nil {
		return CompletionResult{}, err
	}

	s.Log.Info("completion_recorded",
		zap.Uint64("user_id", userID),
		zap.Uint64("action_id", actionID),
		zap.String("version", ca.Version),
	)
	return CompletionResult{Status: StatusRecorded, Version: ca.Version}, nil
}

// SystemRow is one dashboard entry: a micro-action of an active goal with
// today's completion state and the owning system's streak.
type SystemRow struct {
	ID              uint64 `json:"id"`
	SystemID        uint64 `json:"system_id"`
	GoalTitle       string `json:"goal_title"`
	SystemTitle     string `json:"system_title"`
	ActionIdeal     string `json:"action_ideal"`
	ActionBadDay    string `json:"action_bad_day"`
	DurationMinutes int    `json:"duration_minutes"`
	Completed       bool   `json:"completed"`
	Streak          int    `json:"streak"`
}

// Dashboard lists every micro-action of the caller's active goals, flagging
// the ones already completed today and the current streak per system.
func (s *Service) Dashboard(ctx context.Context, userID uint64) ([]SystemRow, error) {
	goals, err := s.Store.ActiveGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := Day(s.now())
	doneToday := map[uint64]bool{}
	if dl, err := s.Store.FindDailyLog(ctx, userID, today); err == nil {
		if doneToday, err = s.Store.CompletedActionIDs(ctx, dl.ID); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	rows := []SystemRow{}
	for _, g := range goals {
		for _, sys := range g.Systems {
			streak, err := s.Store.Streak(ctx, userID, sys, today)
			if err != nil {
				return nil, err
			}
			for _, ma := range sys.MicroActions {
				rows = append(rows, SystemRow{
					ID:              ma.ID,
					SystemID:        sys.ID,
					GoalTitle:       g.Title,
					SystemTitle:     sys.Title,
					ActionIdeal:     ma.ActionIdeal,
					ActionBadDay:    ma.ActionBadDay,
					DurationMinutes: ma.DurationMinutes,
					Completed:       doneToday[ma.ID],
					Streak:          streak,
				})
			}
		}
	}
	return rows, nil
}

// WeeklyStats returns the caller's zero-filled 7-day completion series
// ending today.
func (s *Service) WeeklyStats(ctx context.Context, userID uint64) ([]DayCount, error) {
	return s.Store.WeeklyStats(ctx, userID, s.now())
}
