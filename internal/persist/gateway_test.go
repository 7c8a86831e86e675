package persist

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/brk3/habitstate/internal/kv"
	"github.com/brk3/habitstate/pkg/habit"
)

var today = time.Date(2025, time.June, 10, 9, 0, 0, 0, time.Local)

func fixedNow() time.Time { return today }

type failingStore struct {
	getErr, setErr error
	kv.Store
}

func (f failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f failingStore) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func TestLoad_Empty(t *testing.T) {
	g := New(kv.NewMemory(), fixedNow)

	st, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if st.Habits == nil || len(st.Habits) != 0 {
		t.Fatalf("expected empty non-nil habits, got %#v", st.Habits)
	}
	if st.Deleted == nil || len(st.Deleted) != 0 {
		t.Fatalf("expected empty non-nil deleted, got %#v", st.Deleted)
	}
}

func TestLoad_RecomputesStreak(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()
	// stored streak of 5 went stale: last completion was 2025-06-07
	_ = mem.Set(ctx, HabitsKey, `[{"id":"1","name":"Read","createdAt":"2025-06-01T08:00:00.000Z","completedDates":["2025-06-06","2025-06-07"],"streak":5,"bestStreak":5},
		{"id":"2","name":"Walk","createdAt":"2025-06-01T08:00:00.000Z","completedDates":["2025-06-09","2025-06-10"],"streak":0,"bestStreak":0}]`)

	st, err := New(mem, fixedNow).Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(st.Habits) != 2 {
		t.Fatalf("got %d habits want 2", len(st.Habits))
	}
	if st.Habits[0].Streak != 0 || st.Habits[0].BestStreak != 5 {
		t.Fatalf("Read: got streak=%d best=%d want 0/5", st.Habits[0].Streak, st.Habits[0].BestStreak)
	}
	if st.Habits[1].Streak != 2 || st.Habits[1].BestStreak != 2 {
		t.Fatalf("Walk: got streak=%d best=%d want 2/2", st.Habits[1].Streak, st.Habits[1].BestStreak)
	}
}

func TestReconcile_RaisesBestAndDedupes(t *testing.T) {
	habits := Reconcile([]habit.Habit{
		{ID: "a", CompletedDates: []string{"2025-06-10", "2025-06-09", "2025-06-08"}, Streak: 3, BestStreak: 1},
		{ID: "b", CompletedDates: []string{"2025-06-10", "2025-06-10", "2025-06-09", "2025-06-10"}, Streak: 2, BestStreak: 2},
		{ID: "c"},
	}, today)

	if a := habits[0]; a.Streak != 3 || a.BestStreak != 3 {
		t.Fatalf("a: streak=%d best=%d want 3/3", a.Streak, a.BestStreak)
	}
	b := habits[1]
	if want := []string{"2025-06-10", "2025-06-09"}; !reflect.DeepEqual(b.CompletedDates, want) {
		t.Fatalf("b: completedDates=%v want %v", b.CompletedDates, want)
	}
	if b.Streak != 2 || b.BestStreak != 2 {
		t.Fatalf("b: streak=%d best=%d want 2/2", b.Streak, b.BestStreak)
	}
	if c := habits[2]; c.CompletedDates == nil || len(c.CompletedDates) != 0 {
		t.Fatalf("c: completedDates=%#v want empty non-nil", c.CompletedDates)
	}
}

func TestLoad_Malformed(t *testing.T) {
	mem := kv.NewMemory()
	_ = mem.Set(context.Background(), HabitsKey, `{not json`)

	_, err := New(mem, fixedNow).Load(context.Background())
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestLoad_MalformedDeleted(t *testing.T) {
	mem := kv.NewMemory()
	_ = mem.Set(context.Background(), HabitsKey, `[]`)
	_ = mem.Set(context.Background(), DeletedHabitsKey, `[{"id":`)

	if _, err := New(mem, fixedNow).Load(context.Background()); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestLoad_ReadError(t *testing.T) {
	boom := errors.New("disk gone")
	g := New(failingStore{Store: kv.NewMemory(), getErr: boom}, fixedNow)

	_, err := g.Load(context.Background())
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}

func TestSaveHabits_LeavesDeletedAlone(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()
	_ = mem.Set(ctx, DeletedHabitsKey, `[{"id":"old","name":"Old","createdAt":"","completedDates":[],"streak":0,"bestStreak":0,"deletedAt":"x"}]`)
	g := New(mem, fixedNow)

	if err := g.SaveHabits(ctx, nil); err != nil {
		t.Fatalf("SaveHabits failed: %v", err)
	}

	raw, _, _ := mem.Get(ctx, HabitsKey)
	if raw != "[]" {
		t.Fatalf("habits = %q want []", raw)
	}
	st, err := g.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(st.Deleted) != 1 || st.Deleted[0].ID != "old" {
		t.Fatalf("deleted buffer was touched: %+v", st.Deleted)
	}
}

func TestSave_WritesEmptyDeleted(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()
	_ = mem.Set(ctx, DeletedHabitsKey, `[{"id":"old"}]`)

	if err := New(mem, fixedNow).Save(ctx, []habit.Habit{}, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	raw, ok, _ := mem.Get(ctx, DeletedHabitsKey)
	if !ok || raw != "[]" {
		t.Fatalf("deletedHabits = %q want []", raw)
	}
}

func TestSave_WriteError(t *testing.T) {
	g := New(failingStore{Store: kv.NewMemory(), setErr: errors.New("read-only")}, fixedNow)

	if err := g.SaveHabits(context.Background(), nil); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()
	g := New(mem, fixedNow)

	habits := []habit.Habit{
		{
			ID:             "a",
			Name:           "Read",
			Description:    "20 pages",
			CreatedAt:      "2025-06-01T08:00:00.000Z",
			CompletedDates: []string{"2025-06-10", "2025-06-09"},
			Color:          "#4ECDC4",
			Category:       "Learning",
			Streak:         2,
			BestStreak:     4,
			ReminderTime:   "08:30",
			NotificationID: "n-1",
		},
		{ID: "b", Name: "Walk", CreatedAt: "2025-06-02T08:00:00.000Z", CompletedDates: []string{}},
	}
	deleted := []habit.DeletedHabit{{Habit: habit.Habit{ID: "c", Name: "Gone", CompletedDates: []string{}}, DeletedAt: "2025-06-05T10:00:00.000Z"}}

	if err := g.Save(ctx, habits, deleted); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	first, _, _ := mem.Get(ctx, HabitsKey)

	st, err := g.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(st.Habits, habits) {
		t.Fatalf("habits changed on round trip:\n got %+v\nwant %+v", st.Habits, habits)
	}
	if !reflect.DeepEqual(st.Deleted, deleted) {
		t.Fatalf("deleted changed on round trip:\n got %+v\nwant %+v", st.Deleted, deleted)
	}

	if err := g.Save(ctx, st.Habits, st.Deleted); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	second, _, _ := mem.Get(ctx, HabitsKey)
	if first != second {
		t.Fatalf("encoding not stable:\n%s\n%s", first, second)
	}

	again, err := g.Load(ctx)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	for i := range again.Habits {
		if again.Habits[i].Streak != st.Habits[i].Streak {
			t.Fatalf("reconciliation not idempotent for %s", again.Habits[i].ID)
		}
	}
}
