// Package reminder keeps each habit's scheduled notification consistent with
// its name and reminder time.
package reminder

import (
	"context"
	"time"

	"github.com/brk3/habitstate/internal/logger"
	"github.com/brk3/habitstate/pkg/habit"
)

// Scheduler is the external reminder service. An empty handle with a nil
// error means no reminder was scheduled, which is not a failure.
type Scheduler interface {
	Schedule(ctx context.Context, habitName string, hour, minute int) (handle string, err error)
	Cancel(ctx context.Context, handle string) error
}

// Disabled never schedules anything.
type Disabled struct{}

func (Disabled) Schedule(context.Context, string, int, int) (string, error) { return "", nil }
func (Disabled) Cancel(context.Context, string) error                       { return nil }

// Coordinator decides when to cancel and reschedule. Scheduler failures are
// logged and never returned: a habit is saved whether or not its reminder
// could be set.
type Coordinator struct {
	scheduler Scheduler
	loc       *time.Location
}

func NewCoordinator(s Scheduler, loc *time.Location) *Coordinator {
	if s == nil {
		s = Disabled{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Coordinator{scheduler: s, loc: loc}
}

// Add schedules the reminder of a newly created habit, if it has one.
func (c *Coordinator) Add(ctx context.Context, h habit.Habit) habit.Habit {
	h.NotificationID = ""
	return c.arm(ctx, h)
}

// Reconcile returns next with NotificationID matching its post-edit reminder
// state. A changed reminder time, including a cleared one, replaces the old
// notification. A rename with an unchanged reminder reschedules it so the
// notification text carries the new name.
func (c *Coordinator) Reconcile(ctx context.Context, old, next habit.Habit) habit.Habit {
	switch {
	case next.ReminderTime != old.ReminderTime:
		c.Release(ctx, old)
		next.NotificationID = ""
		return c.arm(ctx, next)
	case next.Name != old.Name:
		switch old.Reminder(c.loc).(type) {
		case habit.Pending, habit.Scheduled:
			c.Release(ctx, old)
			next.NotificationID = ""
			return c.arm(ctx, next)
		case habit.NoReminder:
		}
	}
	return next
}

// Release cancels the habit's notification, if any. It is best-effort.
func (c *Coordinator) Release(ctx context.Context, h habit.Habit) {
	if h.NotificationID == "" {
		return
	}
	if err := c.scheduler.Cancel(ctx, h.NotificationID); err != nil {
		logger.WarnContext(ctx, "Failed to cancel reminder", "habit_id", h.ID, "notification_id", h.NotificationID, "error", err)
	}
}

func (c *Coordinator) arm(ctx context.Context, h habit.Habit) habit.Habit {
	switch r := h.Reminder(c.loc).(type) {
	case habit.NoReminder:
		h.NotificationID = ""
	case habit.Pending:
		handle, err := c.scheduler.Schedule(ctx, h.Name, r.Hour, r.Minute)
		if err != nil {
			logger.WarnContext(ctx, "Failed to schedule reminder", "habit_id", h.ID, "hour", r.Hour, "minute", r.Minute, "error", err)
			handle = ""
		}
		h.NotificationID = handle
	case habit.Scheduled:
		// already active
	}
	return h
}
