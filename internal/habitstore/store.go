// Package habitstore holds the authoritative in-memory habit collection.
//
// Every mutator applies its change in memory first and then writes the state
// through to the persistence gateway. A failed write is returned to the
// caller but never rolls the change back: memory stays the source of truth
// until the next successful save. Reminder failures are logged only.
package habitstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/brk3/habitstate/internal/logger"
	"github.com/brk3/habitstate/internal/persist"
	"github.com/brk3/habitstate/internal/reminder"
	"github.com/brk3/habitstate/internal/streak"
	"github.com/brk3/habitstate/pkg/habit"
	"github.com/google/uuid"
)

// MaxDeleted is the capacity of the recently-deleted buffer.
const MaxDeleted = 10

// Gateway persists the store's collections.
type Gateway interface {
	Load(ctx context.Context) (persist.State, error)
	SaveHabits(ctx context.Context, habits []habit.Habit) error
	Save(ctx context.Context, habits []habit.Habit, deleted []habit.DeletedHabit) error
}

type Options struct {
	// Now returns the current time in the zone whose calendar defines
	// "today". Defaults to time.Now.
	Now func() time.Time
	// NewID returns a fresh habit id. Defaults to a UUIDv7.
	NewID func() string
}

// Store serializes all operations; each one completes, including its reminder
// and persistence side effects, before the next begins.
type Store struct {
	mu        sync.Mutex
	habits    []habit.Habit
	deleted   []habit.DeletedHabit
	gateway   Gateway
	reminders *reminder.Coordinator
	now       func() time.Time
	newID     func() string
}

// Open loads persisted state through gw and returns a running store. A load
// failure is logged and the store starts empty.
func Open(ctx context.Context, gw Gateway, rc *reminder.Coordinator, opts Options) *Store {
	st, err := gw.Load(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load habits, starting empty", "error", err)
		st = persist.State{}
	}
	return New(st, gw, rc, opts)
}

// New returns a store seeded with st.
func New(st persist.State, gw Gateway, rc *reminder.Coordinator, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string {
			return uuid.Must(uuid.NewV7()).String()
		}
	}
	if rc == nil {
		rc = reminder.NewCoordinator(nil, opts.Now().Location())
	}

	s := &Store{
		habits:    make([]habit.Habit, 0, len(st.Habits)),
		deleted:   make([]habit.DeletedHabit, 0, MaxDeleted),
		gateway:   gw,
		reminders: rc,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	for _, h := range st.Habits {
		s.habits = append(s.habits, h.Clone())
	}
	for _, d := range st.Deleted {
		if len(s.deleted) == MaxDeleted {
			break
		}
		s.deleted = append(s.deleted, habit.DeletedHabit{Habit: d.Habit.Clone(), DeletedAt: d.DeletedAt})
	}
	return s
}

// AddHabit creates a habit from in and schedules its reminder if it has one.
// Only invalid input prevents the habit from being created.
func (s *Store) AddHabit(ctx context.Context, in habit.Input) (habit.Habit, error) {
	if err := in.Validate(); err != nil {
		return habit.Habit{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := habit.Habit{
		ID:             s.uniqueID(),
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		CreatedAt:      s.timestamp(),
		CompletedDates: []string{},
		Color:          in.Color,
		Category:       in.Category,
		ReminderTime:   in.ReminderTime,
	}
	h = s.reminders.Add(ctx, h)
	s.habits = append(s.habits, h)

	logger.DebugContext(ctx, "Added habit", "habit_id", h.ID, "reminder", h.NotificationID != "")
	return h.Clone(), s.saveHabits(ctx, "add")
}

// EditHabit merges u over the habit with the given id. found is false, with
// no other effect, when the id is unknown.
func (s *Store) EditHabit(ctx context.Context, id string, u habit.Update) (h habit.Habit, found bool, err error) {
	if err := u.Validate(); err != nil {
		return habit.Habit{}, false, err
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		u.Name = &name
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return habit.Habit{}, false, nil
	}

	old := s.habits[i]
	next := u.Apply(old.Clone())
	next = s.reminders.Reconcile(ctx, old, next)
	s.habits[i] = next

	logger.DebugContext(ctx, "Edited habit", "habit_id", id)
	return next.Clone(), true, s.saveHabits(ctx, "edit")
}

// DeleteHabit removes the habit, cancels its reminder and records it at the
// front of the deleted buffer.
func (s *Store) DeleteHabit(ctx context.Context, id string) (found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false, nil
	}

	h := s.habits[i]
	s.habits = slices.Delete(s.habits, i, i+1)
	s.reminders.Release(ctx, h)

	snapshot := habit.DeletedHabit{Habit: h, DeletedAt: s.timestamp()}
	s.deleted = slices.Insert(s.deleted, 0, snapshot)
	if len(s.deleted) > MaxDeleted {
		s.deleted = s.deleted[:MaxDeleted]
	}

	logger.DebugContext(ctx, "Deleted habit", "habit_id", id, "deleted_buffer", len(s.deleted))
	if err := s.gateway.Save(ctx, s.habitsCopy(), s.deletedCopy()); err != nil {
		logger.ErrorContext(ctx, "Failed to save habits", "op", "delete", "error", err)
		return true, err
	}
	return true, nil
}

// ToggleCompletion adds date to the habit's completion days, or removes it if
// already present, then recomputes the streaks.
func (s *Store) ToggleCompletion(ctx context.Context, id, date string) (h habit.Habit, found bool, err error) {
	if err := habit.ValidateDate(date); err != nil {
		return habit.Habit{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return habit.Habit{}, false, nil
	}

	p := &s.habits[i]
	if j := slices.Index(p.CompletedDates, date); j >= 0 {
		p.CompletedDates = slices.Delete(p.CompletedDates, j, j+1)
	} else {
		p.CompletedDates = append(p.CompletedDates, date)
	}
	p.Streak = streak.Current(p.CompletedDates, s.now())
	p.BestStreak = streak.Best(p.BestStreak, p.Streak)

	logger.DebugContext(ctx, "Toggled completion", "habit_id", id, "date", date, "streak", p.Streak)
	return p.Clone(), true, s.saveHabits(ctx, "toggle")
}

// Habits returns a copy of the live collection in insertion order.
func (s *Store) Habits() []habit.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.habitsCopy()
}

// Deleted returns a copy of the deleted buffer, most recent first.
func (s *Store) Deleted() []habit.DeletedHabit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletedCopy()
}

func (s *Store) Get(id string) (habit.Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return habit.Habit{}, false
	}
	return s.habits[i].Clone(), true
}

// CompletedOn returns the habits marked done on date.
func (s *Store) CompletedOn(date string) []habit.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []habit.Habit{}
	for _, h := range s.habits {
		if h.CompletedOn(date) {
			out = append(out, h.Clone())
		}
	}
	return out
}

// Today is the current calendar day as a YYYY-MM-DD string.
func (s *Store) Today() string {
	return habit.DateOf(s.now()).String()
}

func (s *Store) saveHabits(ctx context.Context, op string) error {
	if err := s.gateway.SaveHabits(ctx, s.habitsCopy()); err != nil {
		logger.ErrorContext(ctx, "Failed to save habits", "op", op, "error", err)
		return err
	}
	return nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.habits, func(h habit.Habit) bool { return h.ID == id })
}

func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if s.index(id) < 0 {
			return id
		}
	}
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(habit.TimestampLayout)
}

func (s *Store) habitsCopy() []habit.Habit {
	out := make([]habit.Habit, len(s.habits))
	for i, h := range s.habits {
		out[i] = h.Clone()
	}
	return out
}

func (s *Store) deletedCopy() []habit.DeletedHabit {
	out := make([]habit.DeletedHabit, len(s.deleted))
	for i, d := range s.deleted {
		out[i] = habit.DeletedHabit{Habit: d.Habit.Clone(), DeletedAt: d.DeletedAt}
	}
	return out
}
