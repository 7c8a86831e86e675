package reminder

import (
	"context"
	"time"

	"github.com/brk3/habitstate/internal/logger"
)

// Notifier delivers reminder messages for the named habits.
type Notifier interface {
	Notify(ctx context.Context, habitNames []string) error
}

// maxCatchUp bounds how far back a dispatch looks after a long gap.
const maxCatchUp = 24 * time.Hour

// Dispatch sends every reminder due since the previous successful dispatch,
// or within window when there is none, and records now as the new mark. It
// returns the number of reminders sent.
func Dispatch(ctx context.Context, d *Daily, n Notifier, now time.Time, window time.Duration) (int, error) {
	since := now.Add(-window)
	if last, ok, err := d.LastRun(ctx); err != nil {
		return 0, err
	} else if ok && last.After(now.Add(-maxCatchUp)) {
		since = last
	}

	due, err := d.Due(ctx, since, now)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		logger.DebugContext(ctx, "No reminders due", "since", since, "now", now)
		return 0, d.MarkSent(ctx, now)
	}

	names := make([]string, 0, len(due))
	for _, e := range due {
		names = append(names, e.HabitName)
	}
	if err := n.Notify(ctx, names); err != nil {
		return 0, err
	}
	logger.InfoContext(ctx, "Sent reminders", "count", len(names))
	return len(names), d.MarkSent(ctx, now)
}
