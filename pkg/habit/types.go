package habit

import "slices"

// TimestampLayout is the ISO-8601 form used for createdAt and deletedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Habit is a recurring task tracked by daily completion. The JSON field names
// are the persisted layout and must not change.
type Habit struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	CreatedAt      string   `json:"createdAt"`
	CompletedDates []string `json:"completedDates"`
	Color          string   `json:"color,omitempty"`
	Category       string   `json:"category,omitempty"`
	Streak         int      `json:"streak"`
	BestStreak     int      `json:"bestStreak"`
	ReminderTime   string   `json:"reminderTime,omitempty"`
	NotificationID string   `json:"notificationId,omitempty"`
}

// DeletedHabit is a snapshot of a habit taken when it was removed.
type DeletedHabit struct {
	Habit
	DeletedAt string `json:"deletedAt"`
}

// Clone returns a copy that shares no slices with h.
func (h Habit) Clone() Habit {
	h.CompletedDates = slices.Clone(h.CompletedDates)
	if h.CompletedDates == nil {
		h.CompletedDates = []string{}
	}
	return h
}

// CompletedOn reports whether date is one of the habit's completion days.
func (h Habit) CompletedOn(date string) bool {
	return slices.Contains(h.CompletedDates, date)
}

// Input carries the caller-supplied fields of a new habit. Everything else is
// assigned by the store.
type Input struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category,omitempty"`
	Color        string `json:"color,omitempty"`
	ReminderTime string `json:"reminderTime,omitempty"`
}

// Update is a partial edit. A nil field is left untouched; a pointer to the
// empty string clears optional fields, including the reminder.
type Update struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Category     *string `json:"category,omitempty"`
	Color        *string `json:"color,omitempty"`
	ReminderTime *string `json:"reminderTime,omitempty"`
}

// Apply overwrites the fields of h that u sets.
func (u Update) Apply(h Habit) Habit {
	if u.Name != nil {
		h.Name = *u.Name
	}
	if u.Description != nil {
		h.Description = *u.Description
	}
	if u.Category != nil {
		h.Category = *u.Category
	}
	if u.Color != nil {
		h.Color = *u.Color
	}
	if u.ReminderTime != nil {
		h.ReminderTime = *u.ReminderTime
	}
	return h
}

// Categories are the suggested habit categories. They are not enforced.
var Categories = []string{
	"Wellness",
	"Learning",
	"Fitness",
	"Productivity",
	"Health",
	"Mindfulness",
	"Other",
}

// Colors are the suggested display colors. They are not enforced.
var Colors = []string{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#96CEB4",
	"#FFEEAD",
	"#D4A5A5",
	"#9B59B6",
	"#3498DB",
	"#E67E22",
	"#2ECC71",
}
