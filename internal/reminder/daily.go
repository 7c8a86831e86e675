package reminder

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/brk3/habitstate/internal/kv"
	"github.com/google/uuid"
)

const (
	EntriesKey = "reminders"
	LastRunKey = "reminders.lastRun"
)

// Entry is one daily reminder.
type Entry struct {
	Handle    string `json:"handle"`
	HabitName string `json:"habitName"`
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
}

// Daily is a Scheduler that records daily reminders in a kv.Store. Delivery
// happens separately, see Dispatch. A disabled Daily declines every request,
// the same way a device without notification permission would.
type Daily struct {
	store   kv.Store
	enabled bool
	newID   func() string
}

func NewDaily(store kv.Store, enabled bool) *Daily {
	return &Daily{
		store:   store,
		enabled: enabled,
		newID: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
}

func (d *Daily) Schedule(ctx context.Context, habitName string, hour, minute int) (string, error) {
	if !d.enabled {
		return "", nil
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("reminder time %02d:%02d out of range", hour, minute)
	}

	entries, err := d.load(ctx)
	if err != nil {
		return "", err
	}
	e := Entry{Handle: d.newID(), HabitName: habitName, Hour: hour, Minute: minute}
	entries[e.Handle] = e
	if err := d.save(ctx, entries); err != nil {
		return "", err
	}
	return e.Handle, nil
}

func (d *Daily) Cancel(ctx context.Context, handle string) error {
	entries, err := d.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := entries[handle]; !ok {
		return nil
	}
	delete(entries, handle)
	return d.save(ctx, entries)
}

// Entries returns every active reminder ordered by time of day.
func (d *Daily) Entries(ctx context.Context) ([]Entry, error) {
	entries, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return cmp.Or(
			cmp.Compare(a.Hour, b.Hour),
			cmp.Compare(a.Minute, b.Minute),
			cmp.Compare(a.HabitName, b.HabitName),
			cmp.Compare(a.Handle, b.Handle),
		)
	})
	return out, nil
}

// Due returns the reminders whose time of day fell in (since, now], read in
// now's location. Each reminder appears at most once.
func (d *Daily) Due(ctx context.Context, since, now time.Time) ([]Entry, error) {
	all, err := d.Entries(ctx)
	if err != nil {
		return nil, err
	}
	since = since.In(now.Location())

	var out []Entry
	for _, e := range all {
		for day := startOfDay(since); !day.After(now); day = day.AddDate(0, 0, 1) {
			at := time.Date(day.Year(), day.Month(), day.Day(), e.Hour, e.Minute, 0, 0, now.Location())
			if at.After(since) && !at.After(now) {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

// LastRun returns the time of the last successful dispatch.
func (d *Daily) LastRun(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := d.store.Get(ctx, LastRunKey)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse %s: %w", LastRunKey, err)
	}
	return t, true, nil
}

func (d *Daily) MarkSent(ctx context.Context, at time.Time) error {
	return d.store.Set(ctx, LastRunKey, at.UTC().Format(time.RFC3339))
}

func (d *Daily) load(ctx context.Context) (map[string]Entry, error) {
	entries := map[string]Entry{}
	raw, ok, err := d.store.Get(ctx, EntriesKey)
	if err != nil {
		return nil, fmt.Errorf("read reminders: %w", err)
	}
	if !ok {
		return entries, nil
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode reminders: %w", err)
	}
	return entries, nil
}

func (d *Daily) save(ctx context.Context, entries map[string]Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := d.store.Set(ctx, EntriesKey, string(data)); err != nil {
		return fmt.Errorf("write reminders: %w", err)
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var _ Scheduler = (*Daily)(nil)
