package ritual

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// one connection: every query must see the same in-memory database
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&Goal{}, &System{}, &MicroAction{}, &DailyLog{}, &CompletedAction{},
	))
	return gdb
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return &Store{DB: newTestDB(t)}
}

func testBlueprint() Blueprint {
	return Blueprint{
		SystemTitle: "Runner protocol",
		Description: "Small steps, every day.",
		Frequency:   FrequencyDaily,
		TimeOfDay:   "morning",
		Actions: []ActionSpec{
			{ActionIdeal: "Run 5km", ActionBadDay: "Put on running shoes and walk 5min", DurationMinutes: 30},
			{ActionIdeal: "Stretch 10min", ActionBadDay: "Touch your toes once", DurationMinutes: 10},
		},
	}
}

func TestCreateRitualPersistsGoalSystemActions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	systemID, err := s.CreateRitual(ctx, 1, "Run a marathon", "health", testBlueprint())
	require.NoError(t, err)
	require.NotZero(t, systemID)

	goals, err := s.ActiveGoals(ctx, 1)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	require.Equal(t, "Run a marathon", goals[0].Title)
	require.Equal(t, GoalActive, goals[0].Status)

	require.Len(t, goals[0].Systems, 1)
	sys := goals[0].Systems[0]
	require.Equal(t, systemID, sys.ID)
	require.Equal(t, "Runner protocol", sys.Title)

	require.Len(t, sys.MicroActions, 2)
	// creation order
	require.Equal(t, "Run 5km", sys.MicroActions[0].ActionIdeal)
	require.Equal(t, "Stretch 10min", sys.MicroActions[1].ActionIdeal)
}

func TestActiveGoalsExcludesOtherUsersAndInactive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateRitual(ctx, 1, "Mine", "general", testBlueprint())
	require.NoError(t, err)
	_, err = s.CreateRitual(ctx, 2, "Not mine", "general", testBlueprint())
	require.NoError(t, err)

	require.NoError(t, s.DB.Model(&Goal{}).
		Where("user_id = ?", 1).
		Update("status", GoalAbandoned).Error)

	goals, err := s.ActiveGoals(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, goals)

	n, err := s.CountActiveGoals(ctx, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestDailyLogUniquePerUserDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	dl, err := s.CreateDailyLog(ctx, 1, day, MoodNormal)
	require.NoError(t, err)
	require.Equal(t, MoodNormal, dl.Mood)

	_, err = s.CreateDailyLog(ctx, 1, day, MoodHard)
	require.ErrorIs(t, err, ErrConflict)

	// same date, other user is fine
	_, err = s.CreateDailyLog(ctx, 2, day, MoodNormal)
	require.NoError(t, err)

	var n int64
	require.NoError(t, s.DB.Model(&DailyLog{}).Where("user_id = ?", 1).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestEnsureDailyLogKeepsFirstMood(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC) // truncated to the date

	first, err := s.EnsureDailyLog(ctx, 1, day, MoodHard)
	require.NoError(t, err)
	require.Equal(t, MoodHard, first.Mood)

	second, err := s.EnsureDailyLog(ctx, 1, day, MoodNormal)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, MoodHard, second.Mood)
}

func TestCompletionUniquePerDayAction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateRitual(ctx, 1, "Goal", "general", testBlueprint())
	require.NoError(t, err)
	goals, err := s.ActiveGoals(ctx, 1)
	require.NoError(t, err)
	action := goals[0].Systems[0].MicroActions[0]

	dl, err := s.CreateDailyLog(ctx, 1, time.Now(), MoodNormal)
	require.NoError(t, err)

	ca, err := s.InsertCompletion(ctx, dl.ID, action.ID, VersionIdeal)
	require.NoError(t, err)
	require.Equal(t, VersionIdeal, ca.Version)

	_, err = s.InsertCompletion(ctx, dl.ID, action.ID, VersionBadDay)
	require.ErrorIs(t, err, ErrConflict)

	// ledger untouched: one row, original version
	stored, err := s.FindCompletion(ctx, dl.ID, action.ID)
	require.NoError(t, err)
	require.Equal(t, VersionIdeal, stored.Version)

	var n int64
	require.NoError(t, s.DB.Model(&CompletedAction{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestActionOwnedBy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateRitual(ctx, 1, "Goal", "general", testBlueprint())
	require.NoError(t, err)
	goals, err := s.ActiveGoals(ctx, 1)
	require.NoError(t, err)
	action := goals[0].Systems[0].MicroActions[0]

	got, err := s.ActionOwnedBy(ctx, action.ID, 1)
	require.NoError(t, err)
	require.Equal(t, action.ID, got.ID)

	_, err = s.ActionOwnedBy(ctx, action.ID, 2)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.ActionOwnedBy(ctx, 9999, 1)
	require.ErrorIs(t, err, ErrNotFound)
}
