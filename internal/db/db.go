package db

import (
	"fmt"

	"ritualos/internal/auth"
	"ritualos/internal/jobs"
	"ritualos/internal/notify"
	"ritualos/internal/ritual"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables. The two composite uniques that carry the engine's invariants —
	// daily_logs(user_id, date) and completed_actions(daily_log_id,
	// micro_action_id) — are declared as gorm uniqueIndex tags on the models
	// so they exist on every driver.
	if err := gdb.AutoMigrate(
		&auth.User{},
		&ritual.Goal{},
		&ritual.System{},
		&ritual.MicroAction{},
		&ritual.DailyLog{},
		&ritual.CompletedAction{},
		&notify.Notification{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// Helpful indexes (Postgres)
	stmts := []string{
		`create index if not exists idx_goals_user_status on goals(user_id, status);`,
		`create index if not exists idx_completed_actions_action on completed_actions(micro_action_id);`,
		`create index if not exists idx_notifications_user_created on notifications(user_id, id desc);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
