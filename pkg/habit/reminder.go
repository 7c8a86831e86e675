package habit

import (
	"fmt"
	"time"
)

// ReminderState is the reminder status of a habit. It is one of NoReminder,
// Pending or Scheduled.
type ReminderState interface {
	reminderState()
}

// NoReminder means the habit has no reminder time.
type NoReminder struct{}

// Pending means a reminder time is set but no notification is scheduled,
// usually because the scheduler declined.
type Pending struct {
	Hour, Minute int
}

// Scheduled means a notification is active under Handle.
type Scheduled struct {
	Hour, Minute int
	Handle       string
}

func (NoReminder) reminderState() {}
func (Pending) reminderState()    {}
func (Scheduled) reminderState()  {}

// Reminder derives the reminder state from ReminderTime and NotificationID.
// An unparseable reminder time counts as no reminder.
func (h Habit) Reminder(loc *time.Location) ReminderState {
	if h.ReminderTime == "" {
		return NoReminder{}
	}
	hour, minute, err := ParseReminderTime(h.ReminderTime, loc)
	if err != nil {
		return NoReminder{}
	}
	if h.NotificationID == "" {
		return Pending{Hour: hour, Minute: minute}
	}
	return Scheduled{Hour: hour, Minute: minute, Handle: h.NotificationID}
}

// ParseReminderTime extracts the wall-clock hour and minute from either an
// RFC 3339 datetime, read in loc, or an HH:MM string.
func ParseReminderTime(s string, loc *time.Location) (hour, minute int, err error) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.In(loc)
		return t.Hour(), t.Minute(), nil
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Hour(), t.Minute(), nil
	}
	return 0, 0, fmt.Errorf("reminder time %q is neither RFC 3339 nor HH:MM", s)
}
