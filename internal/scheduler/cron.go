package scheduler

import (
	"errors"
	"time"

	"github.com/adhocore/gronx"
)

var ErrInvalidCron = errors.New("invalid cron expression")

// NextCronDelay returns how long to wait from now until the next time
// expr fires strictly after now. Expressions without an occurrence within
// a year are rejected.
func NextCronDelay(expr string, now time.Time) (time.Duration, error) {
	if !gronx.New().IsValid(expr) {
		return 0, ErrInvalidCron
	}
	next, err := nextCronOccurrence(expr, now)
	if err != nil {
		return 0, errors.Join(ErrInvalidCron, err)
	}
	if !next.Before(now.Add(365 * 24 * time.Hour)) {
		return 0, ErrInvalidCron
	}
	return next.Sub(now), nil
}

// nextCronOccurrence uses gronx.NextTickAfter with inclRefTime=false.
func nextCronOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}
