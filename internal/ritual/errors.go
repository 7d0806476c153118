package ritual

import "errors"

var (
	// ErrNotFound: the referenced goal/system/action does not exist or does
	// not belong to the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a uniqueness invariant fired (duplicate DailyLog for a
	// date, duplicate CompletedAction for a day/action pair). Callers treat
	// this as "already recorded", never as a user-facing failure.
	ErrConflict = errors.New("conflict")

	// ErrPlanLimit: the free tier's active-goal cap was reached.
	ErrPlanLimit = errors.New("plan limit exceeded")
)
