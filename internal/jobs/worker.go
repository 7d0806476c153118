package jobs

import (
	"context"
	"fmt"
	"math"
	"time"

	"ritualos/internal/auth"
	"ritualos/internal/notify"
	"ritualos/internal/ritual"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sweep hours, UTC. Briefing in the morning, streak saver late in the day so
// there is still time to act on it.
const (
	BriefingHourUTC    = 10
	StreakSweepHourUTC = 23
)

type Worker struct {
	ID      string
	Repo    *Repo
	DB      *gorm.DB
	Rituals *ritual.Store
	Notify  *notify.Store
	Log     *zap.Logger
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				w.Log.Warn("job_claim_failed", zap.Error(err))
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	var err error
	switch job.Type {
	case TypeMorningBriefing:
		err = w.morningBriefing(ctx)
	case TypeStreakSweep:
		err = w.streakSweep(ctx)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
		return
	}

	if err != nil {
		w.retry(job, err.Error())
		return
	}

	_ = w.Repo.MarkDone(job.ID)
	w.reschedule(job.Type)
}

// morningBriefing tells each user how many rituals are due today.
func (w *Worker) morningBriefing(ctx context.Context) error {
	users, err := w.users()
	if err != nil {
		return err
	}
	weekday := time.Now().UTC().Weekday()

	for _, u := range users {
		goals, err := w.Rituals.ActiveGoals(ctx, u.ID)
		if err != nil {
			return err
		}

		due := 0
		for _, g := range goals {
			for _, sys := range g.Systems {
				if ritual.DueOn(sys.Frequency, weekday) {
					due++
				}
			}
		}
		if due == 0 {
			continue
		}

		n := &notify.Notification{
			UserID:  u.ID,
			Title:   "Morning briefing",
			Content: fmt.Sprintf("You have %d rituals today. Focus!", due),
			Type:    notify.TypeBriefing,
			Link:    "/dashboard",
		}
		if err := w.Notify.Create(ctx, n); err != nil {
			return err
		}
	}

	w.Log.Info("morning_briefing_done", zap.Int("users", len(users)))
	return nil
}

// streakSweep alerts users with an active goal and no completion today.
func (w *Worker) streakSweep(ctx context.Context) error {
	users, err := w.users()
	if err != nil {
		return err
	}
	today := ritual.Day(time.Now())

	alerted := 0
	for _, u := range users {
		active, err := w.Rituals.CountActiveGoals(ctx, u.ID)
		if err != nil {
			return err
		}
		if active == 0 {
			continue
		}

		hasActivity := false
		if dl, err := w.Rituals.FindDailyLog(ctx, u.ID, today); err == nil {
			done, err := w.Rituals.CompletedActionIDs(ctx, dl.ID)
			if err != nil {
				return err
			}
			hasActivity = len(done) > 0
		} else if err != ritual.ErrNotFound {
			return err
		}
		if hasActivity {
			continue
		}

		n := &notify.Notification{
			UserID:  u.ID,
			Title:   "Your streak is at risk",
			Content: "No ritual completed today yet. Do the minimum version to keep the chain alive.",
			Type:    notify.TypeAlert,
			Link:    "/dashboard",
		}
		if err := w.Notify.Create(ctx, n); err != nil {
			return err
		}
		alerted++
	}

	w.Log.Info("streak_sweep_done", zap.Int("alerted", alerted))
	return nil
}

func (w *Worker) users() ([]auth.User, error) {
	var users []auth.User
	if err := w.DB.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (w *Worker) reschedule(typ string) {
	hour := StreakSweepHourUTC
	if typ == TypeMorningBriefing {
		hour = BriefingHourUTC
	}
	if err := w.Repo.EnsureScheduled(typ, NextRun(time.Now(), hour)); err != nil {
		w.Log.Warn("job_reschedule_failed", zap.String("type", typ), zap.Error(err))
	}
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		w.reschedule(job.Type)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
