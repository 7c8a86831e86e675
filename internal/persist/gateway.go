// Package persist moves habit state between memory and the key-value store.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brk3/habitstate/internal/kv"
	"github.com/brk3/habitstate/internal/streak"
	"github.com/brk3/habitstate/pkg/habit"
)

const (
	HabitsKey        = "habits"
	DeletedHabitsKey = "deletedHabits"
)

// ErrPersistence matches every read, write or encoding failure of the gateway.
var ErrPersistence = errors.New("persistence failed")

// State is the persisted habit state.
type State struct {
	Habits  []habit.Habit
	Deleted []habit.DeletedHabit
}

type Gateway struct {
	store kv.Store
	now   func() time.Time
}

func New(store kv.Store, now func() time.Time) *Gateway {
	if now == nil {
		now = time.Now
	}
	return &Gateway{store: store, now: now}
}

// Load reads both collections and recomputes every habit's streak against
// the current day. Missing keys load as empty collections.
func (g *Gateway) Load(ctx context.Context) (State, error) {
	st := State{Habits: []habit.Habit{}, Deleted: []habit.DeletedHabit{}}

	ok, err := g.read(ctx, HabitsKey, &st.Habits)
	if err != nil {
		return State{}, err
	}
	if ok {
		st.Habits = Reconcile(st.Habits, g.now())
	}

	if _, err := g.read(ctx, DeletedHabitsKey, &st.Deleted); err != nil {
		return State{}, err
	}
	if st.Deleted == nil {
		st.Deleted = []habit.DeletedHabit{}
	}
	return st, nil
}

// Reconcile recomputes streaks and drops duplicate dates. It never lowers
// BestStreak, and BestStreak is raised to at least Streak.
func Reconcile(habits []habit.Habit, now time.Time) []habit.Habit {
	if habits == nil {
		return []habit.Habit{}
	}
	for i := range habits {
		h := &habits[i]
		h.CompletedDates = dedupe(h.CompletedDates)
		h.Streak = streak.Current(h.CompletedDates, now)
		h.BestStreak = streak.Best(h.BestStreak, h.Streak)
	}
	return habits
}

// dedupe drops repeated dates, keeping the first occurrence of each.
func dedupe(dates []string) []string {
	seen := make(map[string]bool, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// SaveHabits writes the live collection and leaves the deleted buffer as it
// is in the store.
func (g *Gateway) SaveHabits(ctx context.Context, habits []habit.Habit) error {
	return g.write(ctx, HabitsKey, nonNil(habits))
}

// Save writes both collections.
func (g *Gateway) Save(ctx context.Context, habits []habit.Habit, deleted []habit.DeletedHabit) error {
	if err := g.SaveHabits(ctx, habits); err != nil {
		return err
	}
	return g.write(ctx, DeletedHabitsKey, nonNil(deleted))
}

func (g *Gateway) read(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := g.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: read %q: %w", ErrPersistence, key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: decode %q: %w", ErrPersistence, key, err)
	}
	return true, nil
}

func (g *Gateway) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %w", ErrPersistence, key, err)
	}
	if err := g.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("%w: write %q: %w", ErrPersistence, key, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
