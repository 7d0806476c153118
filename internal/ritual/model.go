package ritual

import "time"

const (
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalAbandoned = "abandoned"
)

// Version of a micro-action a completion was recorded under.
// Modeled as a string enum, not a bool, so new variants don't need schema churn.
const (
	VersionIdeal  = "ideal"
	VersionBadDay = "bad_day"
)

const (
	MoodNormal = "normal"
	MoodHard   = "hard"
)

// Goal is a user's abstract objective ("get fit").
type Goal struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"index;not null"`
	Title     string    `gorm:"type:text;not null"`
	Pillar    string    `gorm:"type:text;not null;default:'general'"`
	Status    string    `gorm:"index;not null;default:'active'"`
	CreatedAt time.Time `gorm:"not null"`

	Systems []System `gorm:"foreignKey:GoalID"`
}

// System is a concrete, repeatable ritual serving a Goal.
type System struct {
	ID          uint64    `gorm:"primaryKey"`
	GoalID      uint64    `gorm:"index;not null"`
	Title       string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text;not null;default:''"`
	Frequency   string    `gorm:"type:text;not null;default:'daily'"` // "daily" or "mon,wed,fri"
	TimeOfDay   string    `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time `gorm:"not null"`

	MicroActions []MicroAction `gorm:"foreignKey:SystemID"`
}

// MicroAction is the smallest completable unit of a System. It carries two
// textual variants: the full-effort version and the minimum-viable one that
// keeps the chain alive on a bad day.
type MicroAction struct {
	ID              uint64    `gorm:"primaryKey"`
	SystemID        uint64    `gorm:"index;not null"`
	ActionIdeal     string    `gorm:"type:text;not null"`
	ActionBadDay    string    `gorm:"type:text;not null"`
	DurationMinutes int       `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

// DailyLog anchors one user-day. At most one row per (user, date); the date
// is always a UTC calendar date at midnight.
type DailyLog struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uq_daily_logs_user_date"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:uq_daily_logs_user_date"`
	Mood      string    `gorm:"type:text;not null;default:'normal'"`
	CreatedAt time.Time `gorm:"not null"`

	CompletedActions []CompletedAction `gorm:"foreignKey:DailyLogID"`
}

// CompletedAction is the append-only completion ledger: one row per
// (daily log, micro action), never updated or deleted. Streaks and stats are
// derived from it on read.
type CompletedAction struct {
	ID            uint64    `gorm:"primaryKey"`
	DailyLogID    uint64    `gorm:"not null;uniqueIndex:uq_completed_log_action"`
	MicroActionID uint64    `gorm:"not null;uniqueIndex:uq_completed_log_action"`
	Version       string    `gorm:"type:text;not null;default:'ideal'"`
	CreatedAt     time.Time `gorm:"not null"`
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey renders a date as its ISO key ("2026-08-28").
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
